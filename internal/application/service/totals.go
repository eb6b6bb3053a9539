package service

import (
	"context"
	"fmt"
	"time"

	"wmrecon/internal/domain/model"
	dsvc "wmrecon/internal/domain/service"

	"github.com/rs/zerolog/log"
)

// Metric names one series the totals orchestrator can build.
type Metric string

const (
	MetricNAV    Metric = "nav"
	MetricPnL    Metric = "pnl"
	MetricIncome Metric = "income"
)

// AllMetrics is every metric in build order.
var AllMetrics = []Metric{MetricNAV, MetricPnL, MetricIncome}

// TotalsRequest asks for the bucketed totals of one portfolio.
type TotalsRequest struct {
	Portfolio model.Portfolio
	Start     time.Time
	End       time.Time
	Options   model.Options
	Metrics   []Metric // nil builds every metric
}

func (r TotalsRequest) wants(m Metric) bool {
	if len(r.Metrics) == 0 {
		return true
	}
	for _, x := range r.Metrics {
		if x == m {
			return true
		}
	}
	return false
}

// Totals are the per bucket values of a portfolio over a period.
type Totals struct {
	Interval model.Interval
	Dates    []time.Time
	NAV      model.Series
	PnL      model.Series
	Income   IncomeResult

	// NAVByClass holds the class and subclass NAV per bucket when the
	// options shape NAV by class.
	NAVByClass map[time.Time]map[string]float64
}

// TotalsService builds NAV, P&L and income series over representative dates.
type TotalsService struct {
	calc    *Calculator
	workers int
}

// NewTotalsService builds per date values with at most workers goroutines,
// one per date when workers is 0.
func NewTotalsService(calc *Calculator, workers int) *TotalsService {
	return &TotalsService{calc: calc, workers: workers}
}

type bucket struct {
	nav     float64
	byClass map[string]float64
	pnl     float64
}

// Totals computes every requested metric per bucket date. Daily buckets take
// the P&L of the day itself; monthly buckets take the P&L since the month
// start, or since Start for the first month.
func (s *TotalsService) Totals(ctx context.Context, req TotalsRequest) (*Totals, error) {
	start, end := model.Day(req.Start), model.Day(req.End)
	dates, interval := dsvc.BucketDates(start, end)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%s %s..%s: %w", req.Portfolio.Name, model.FormatDay(start), model.FormatDay(end), model.ErrNoDates)
	}
	opts := req.Options.WithInterval(interval)

	began := time.Now()
	buckets, err := ParallelMap(ctx, dates, s.workers, func(ctx context.Context, d time.Time) (bucket, error) {
		var b bucket
		if req.wants(MetricNAV) {
			nav, err := s.calc.NAV(ctx, req.Portfolio, d, opts)
			if err != nil {
				return b, err
			}
			b.nav = nav.Value()
			if nav.Shape == model.ShapeByClass {
				b.byClass = nav.ByClass
			}
		}
		if req.wants(MetricPnL) {
			from := d
			if interval == model.IntervalMonthly {
				from = model.MaxDay(model.MonthStart(d), start)
			}
			pnl, err := s.calc.PnL(ctx, req.Portfolio, from, d, opts)
			if err != nil {
				return b, err
			}
			b.pnl = pnl.Value()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	out := &Totals{Interval: interval, Dates: dates, NAV: model.Series{}, PnL: model.Series{}}
	if opts.NAVShape() == model.ShapeByClass {
		out.NAVByClass = make(map[time.Time]map[string]float64, len(dates))
	}
	for i, d := range dates {
		if req.wants(MetricNAV) {
			out.NAV[d] = buckets[i].nav
			if out.NAVByClass != nil {
				out.NAVByClass[d] = buckets[i].byClass
			}
		}
		if req.wants(MetricPnL) {
			out.PnL[d] = buckets[i].pnl
		}
	}
	if req.wants(MetricIncome) {
		out.Income, err = s.calc.Income(ctx, req.Portfolio, start, end, opts)
		if err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("portfolio", req.Portfolio.Name).
		Str("interval", interval.String()).
		Int("buckets", len(dates)).
		Dur("took", time.Since(began)).
		Msg("totals built")
	return out, nil
}
