// Package wmapi is the HTTP client of the wealth management reporting API.
package wmapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnexpectedStatus is wrapped with the status code of a rejected call.
var ErrUnexpectedStatus = errors.New("unexpected status")

type Config struct {
	PortfolioURL       string
	CommonURL          string
	CreditURL          string
	ReportURL          string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client posts JSON bodies with basic auth. 200 and 202 are accepted.
type Client struct {
	portfolioURL string
	commonURL    string
	creditURL    string
	reportURL    string
	username     string
	password     string
	httpClient   *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		portfolioURL: cfg.PortfolioURL,
		commonURL:    cfg.CommonURL,
		creditURL:    cfg.CreditURL,
		reportURL:    cfg.ReportURL,
		username:     cfg.Username,
		password:     cfg.Password,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// post sends body to base+path and decodes the response into out.
// The path is appended verbatim: portfolio endpoints are ".wealth" style suffixes.
func (c *Client) post(ctx context.Context, base, path string, body, out any) error {
	if strings.TrimSpace(base) == "" {
		return fmt.Errorf("%s: base url not configured", path)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := base + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%s: %w %d: %s", path, ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode: %w", path, err)
	}
	return nil
}

// pair is a [key, value] array as served by series endpoints.
type pair struct {
	Key   string
	Value float64
}

func (p *pair) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("pair: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	var v *float64
	if err := json.Unmarshal(raw[1], &v); err != nil {
		return err
	}
	if v != nil {
		p.Value = *v
	}
	return nil
}
