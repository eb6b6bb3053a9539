package wmapi

import (
	"context"
	"fmt"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

type period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newPeriod(from, to time.Time) period {
	return period{From: model.FormatDay(from), To: model.FormatDay(to)}
}

type portfolioBody struct {
	PortfolioID  int64   `json:"portfolioId"`
	Period       *period `json:"period,omitempty"`
	Detalization string  `json:"detalization,omitempty"`
}

type valueField struct {
	Value float64 `json:"value"`
	Diff  float64 `json:"diff"`
}

type wealthResponse struct {
	Total      valueField `json:"total"`
	Investable valueField `json:"investable"`
	Income     valueField `json:"income"`
}

func (c *Client) Wealth(ctx context.Context, portfolioID int64) (port.Wealth, error) {
	var resp wealthResponse
	if err := c.post(ctx, c.portfolioURL, ".wealth", portfolioBody{PortfolioID: portfolioID}, &resp); err != nil {
		return port.Wealth{}, err
	}
	return port.Wealth{
		Total:       resp.Total.Value,
		Investable:  resp.Investable.Value,
		Income:      resp.Income.Value,
		IncomeYield: resp.Income.Diff * 100,
	}, nil
}

type seriesResponse struct {
	Data []pair `json:"data"`
}

func points(data []pair) ([]model.PerformancePoint, error) {
	out := make([]model.PerformancePoint, 0, len(data))
	for _, p := range data {
		day, err := model.ParseDay(p.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PerformancePoint{Date: day, Value: p.Value})
	}
	return out, nil
}

// Performance serves the portfolio series, or the index series when q names a benchmark.
func (c *Client) Performance(ctx context.Context, q port.PerformanceQuery) ([]model.PerformancePoint, error) {
	var resp seriesResponse
	per := newPeriod(q.From, q.To)
	if q.Benchmark != "" {
		body := struct {
			Name   string `json:"name"`
			Period period `json:"period"`
		}{Name: q.Benchmark, Period: per}
		if err := c.post(ctx, c.commonURL, "index.performance", body, &resp); err != nil {
			return nil, err
		}
		return points(resp.Data)
	}

	body := portfolioBody{PortfolioID: q.PortfolioID, Period: &per, Detalization: q.Detail}
	if err := c.post(ctx, c.portfolioURL, ".performance", body, &resp); err != nil {
		return nil, err
	}
	return points(resp.Data)
}

// profitResponse is [pnl, income], each with [asset class, amount] rows.
type profitResponse []struct {
	Name string `json:"name"`
	Data []pair `json:"data"`
}

func (c *Client) Profit(ctx context.Context, portfolioID int64, from, to time.Time) (map[string]float64, error) {
	var resp profitResponse
	per := newPeriod(from, to)
	if err := c.post(ctx, c.portfolioURL, ".profit", portfolioBody{PortfolioID: portfolioID, Period: &per}, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf(".profit: empty response")
	}
	out := make(map[string]float64, len(resp[0].Data))
	for _, p := range resp[0].Data {
		out[p.Key] += p.Value
	}
	return out, nil
}

type incomeResponse struct {
	Data map[string][]pair `json:"data"`
}

// Income fetches the monthly income report per asset class.
func (c *Client) Income(ctx context.Context, portfolioID int64, from, to time.Time) (map[string]model.Series, error) {
	var resp incomeResponse
	per := newPeriod(from, to)
	body := portfolioBody{PortfolioID: portfolioID, Period: &per, Detalization: "Monthly"}
	if err := c.post(ctx, c.portfolioURL, ".income", body, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]model.Series, len(resp.Data))
	for class, rows := range resp.Data {
		s := model.Series{}
		for _, p := range rows {
			day, err := model.ParseDay(p.Key)
			if err != nil {
				return nil, err
			}
			s.Add(day, p.Value)
		}
		out[class] = s
	}
	return out, nil
}

type allocationRow struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

func (c *Client) Allocation(ctx context.Context, portfolioID int64, dimension string) (map[string]float64, error) {
	body := struct {
		PortfolioID  int64    `json:"portfolioId"`
		WithChildren bool     `json:"withChildren"`
		Allocations  []string `json:"allocations"`
	}{PortfolioID: portfolioID, Allocations: []string{dimension}}

	var resp map[string][]allocationRow
	if err := c.post(ctx, c.portfolioURL, ".allocation", body, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(resp[dimension]))
	for _, row := range resp[dimension] {
		out[row.Name] += row.Percentage
	}
	return out, nil
}

type topFilter struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type topOrder struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

type topBody struct {
	PortfolioID int64      `json:"portfolioId"`
	Number      int        `json:"number"`
	Filter      *topFilter `json:"filter,omitempty"`
	Order       topOrder   `json:"order"`
}

type topRow struct {
	Name       string  `json:"name"`
	AssetClass string  `json:"assetClass"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

func (c *Client) TopPositions(ctx context.Context, q port.TopQuery) ([]model.TopPosition, error) {
	body := topBody{
		PortfolioID: q.PortfolioID,
		Number:      q.Number,
		Order:       topOrder{Name: "name", Direction: "DESC"},
	}
	if q.AssetClass != "" {
		body.Filter = &topFilter{Type: "AssetClass", ID: q.AssetClass}
	}
	if q.ByIssuer {
		body.Order.Name = "company.name"
	}
	if q.Ascending {
		body.Order.Direction = "ASC"
	}

	var rows []topRow
	if err := c.post(ctx, c.commonURL, "position.top", body, &rows); err != nil {
		return nil, err
	}
	out := make([]model.TopPosition, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.TopPosition{
			Name:       r.Name,
			AssetClass: model.AssetClass(r.AssetClass),
			Value:      r.Value,
			Percentage: r.Percentage,
		})
	}
	return out, nil
}

var _ port.WealthAPI = (*Client)(nil)
