package wmapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

// pageSize is the number of rows asked per page of a paged table.
var pageSize = 500

// maxPages bounds a paged read against a server that never serves a short page.
const maxPages = 1000

type pageBody struct {
	PortfolioID int64    `json:"portfolioId"`
	Page        int      `json:"page"`
	Size        int      `json:"size"`
	Order       topOrder `json:"order"`
	Confirmed   bool     `json:"confirmed"`
}

type pageResponse[T any] struct {
	Content []T  `json:"content"`
	Last    bool `json:"last"`
}

// paged reads every page of a table ordered ascending by field.
func paged[T any](ctx context.Context, c *Client, path string, portfolioID int64, field string) ([]T, error) {
	var out []T
	for page := 0; page < maxPages; page++ {
		body := pageBody{
			PortfolioID: portfolioID,
			Page:        page,
			Size:        pageSize,
			Order:       topOrder{Name: field, Direction: "ASC"},
			Confirmed:   true,
		}
		var resp pageResponse[T]
		if err := c.post(ctx, c.portfolioURL, path, body, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Content...)
		if resp.Last || len(resp.Content) < pageSize {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%s: more than %d pages", path, maxPages)
}

type snapshotRow struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"currentPriceNative"`
	Currency      string  `json:"currencyNative"`
	Amount        float64 `json:"amount"`
	ProfitAndLoss float64 `json:"profitAndLoss"`
}

func (c *Client) Snapshot(ctx context.Context, portfolioID int64) ([]model.Position, error) {
	rows, err := paged[snapshotRow](ctx, c, ".snapshot", portfolioID, "name")
	if err != nil {
		return nil, err
	}
	out := make([]model.Position, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Position{
			Name:     r.Name,
			Currency: r.Currency,
			Quantity: r.Quantity,
			Price:    r.Price,
			Value:    r.Amount,
			PnL:      r.ProfitAndLoss,
		})
	}
	return out, nil
}

type tradeRow struct {
	Key        json.Number `json:"key"`
	Instrument struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"instrument"`
	Operation  string  `json:"operation"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Amount     float64 `json:"amount"`
	Commission float64 `json:"commission"`
	FXRate     float64 `json:"fxRate"`
	Currency   string  `json:"currency"`
	Custodian  *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"custodian"`
	Investable bool   `json:"investable"`
	TradeTime  string `json:"tradeTime"`
}

// parseTradeTime accepts a day or a timestamp starting with one.
func parseTradeTime(s string) (time.Time, error) {
	if len(s) > len(model.DayLayout) {
		s = s[:len(model.DayLayout)]
	}
	return model.ParseDay(s)
}

func (c *Client) Trades(ctx context.Context, portfolioID int64) ([]port.TradeRow, error) {
	rows, err := paged[tradeRow](ctx, c, ".trades", portfolioID, "tradeTime")
	if err != nil {
		return nil, err
	}
	out := make([]port.TradeRow, 0, len(rows))
	for _, r := range rows {
		id, err := r.Key.Int64()
		if err != nil {
			return nil, fmt.Errorf(".trades: key %q: %w", r.Key, err)
		}
		at, err := parseTradeTime(r.TradeTime)
		if err != nil {
			return nil, fmt.Errorf(".trades: trade %d: %w", id, err)
		}
		sign := 1.0
		if strings.EqualFold(r.Operation, "SELL") {
			sign = -1
		}
		row := port.TradeRow{
			Trade: model.Trade{
				ID:          id,
				PortfolioID: portfolioID,
				Instrument:  model.Instrument{Code: r.Instrument.Code, Name: r.Instrument.Name, Currency: r.Currency},
				Time:        at,
				Quantity:    math.Abs(r.Quantity) * sign,
				Price:       r.Price,
				Commission:  r.Commission,
				FXRate:      r.FXRate,
				Investable:  r.Investable,
			},
			Amount: math.Abs(r.Amount) * sign,
		}
		if r.Custodian != nil {
			row.Custodian = r.Custodian.Name
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) Principal(ctx context.Context, portfolioID int64) (map[string]float64, error) {
	var resp seriesResponse
	if err := c.post(ctx, c.creditURL, ".principal.repayments", portfolioBody{PortfolioID: portfolioID}, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(resp.Data))
	for _, p := range resp.Data {
		out[p.Key] += p.Value
	}
	return out, nil
}

// instantPeriod is a period sent as midnight UTC timestamps.
type instantPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newInstantPeriod(from, to time.Time) instantPeriod {
	const layout = "2006-01-02T15:04:05Z"
	return instantPeriod{From: model.Day(from).Format(layout), To: model.Day(to).Format(layout)}
}

func (c *Client) History(ctx context.Context, portfolioID int64, from, to time.Time) (map[string]model.Series, error) {
	body := struct {
		PortfolioID int64         `json:"portfolioId"`
		Period      instantPeriod `json:"period"`
	}{PortfolioID: portfolioID, Period: newInstantPeriod(from, to)}

	var resp profitResponse
	if err := c.post(ctx, c.reportURL, ".history", body, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]model.Series, len(resp))
	for _, row := range resp {
		s := model.Series{}
		for _, p := range row.Data {
			d, err := model.ParseDay(p.Key)
			if err != nil {
				return nil, fmt.Errorf(".history: %s: %w", row.Name, err)
			}
			s.Add(d, p.Value)
		}
		out[row.Name] = s
	}
	return out, nil
}
