package service

import (
	"context"
	"fmt"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
	dsvc "wmrecon/internal/domain/service"
)

// PerformanceService builds cumulative performance series.
type PerformanceService struct {
	data   port.MarketData
	totals *TotalsService
}

func NewPerformanceService(data port.MarketData, totals *TotalsService) *PerformanceService {
	return &PerformanceService{data: data, totals: totals}
}

// Portfolio returns the performance of the whole portfolio over [start, end].
func (s *PerformanceService) Portfolio(ctx context.Context, p model.Portfolio, start, end time.Time) ([]model.PerformancePoint, error) {
	return s.build(ctx, p, start, end, model.PortfolioOptions())
}

// Class returns the performance of one asset class of the portfolio.
func (s *PerformanceService) Class(ctx context.Context, p model.Portfolio, class model.AssetClass, start, end time.Time) ([]model.PerformancePoint, error) {
	opts := model.ClassOptions(class)
	opts.Aggregated = true
	opts.Specific = true
	return s.build(ctx, p, start, end, opts)
}

func (s *PerformanceService) build(ctx context.Context, p model.Portfolio, start, end time.Time, opts model.Options) ([]model.PerformancePoint, error) {
	t, err := s.totals.Totals(ctx, TotalsRequest{Portfolio: p, Start: start, End: end, Options: opts})
	if err != nil {
		return nil, err
	}
	return dsvc.BuildPerformance(t.NAV, t.Income.Total(), t.PnL, t.Interval), nil
}

// benchmarkLookback widens the price window before the origin so that a
// weekend or holiday origin still finds the last close.
const benchmarkLookback = 7

// Benchmark returns the performance of a market index over [start, end],
// bucketed like the portfolio series and anchored at the same origin.
func (s *PerformanceService) Benchmark(ctx context.Context, name string, start, end time.Time) ([]model.PerformancePoint, error) {
	dates, interval := dsvc.BucketDates(start, end)
	if len(dates) == 0 {
		return nil, nil
	}
	origin := dsvc.PerformanceOrigin(dates[0], interval)
	prices, err := s.data.BenchmarkPrices(ctx, name, origin.AddDate(0, 0, -benchmarkLookback), model.Day(end))
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", name, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("benchmark %s: %w", name, model.ErrBenchmarkNotFound)
	}
	return dsvc.BenchmarkPerformance(prices, origin, dates), nil
}
