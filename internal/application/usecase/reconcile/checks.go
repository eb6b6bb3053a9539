package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/application/service"
	"wmrecon/internal/domain/model"
	dsvc "wmrecon/internal/domain/service"
)

const (
	CheckWealth       = "wealth"
	CheckPerformance  = "performance"
	CheckPnL          = "pnl"
	CheckIncome       = "income"
	CheckAllocation   = "allocation"
	CheckTopPositions = "top_positions"
	CheckPrincipal    = "principal"
	CheckSnapshot     = "snapshot"
	CheckTrades       = "trades"
	CheckHistory      = "history"
)

// CheckNames lists every check in run order.
var CheckNames = []string{
	CheckWealth, CheckPerformance, CheckPnL, CheckIncome, CheckAllocation, CheckTopPositions,
	CheckPrincipal, CheckSnapshot, CheckTrades, CheckHistory,
}

var ErrUnknownCheck = errors.New("unknown check")

// Harness is what a check compares: the API under test against the
// recomputation services, over one reporting window.
type Harness struct {
	API         port.WealthAPI
	Calculator  *service.Calculator
	Performance *service.PerformanceService
	Allocation  *service.AllocationService
	Totals      *service.TotalsService

	AsOf      time.Time
	From      time.Time
	To        time.Time
	TopLimit  int
	Benchmark string // optional index compared by the performance check
}

// Check compares one metric of one portfolio.
type Check func(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error

var checks = map[string]Check{
	CheckWealth:       checkWealth,
	CheckPerformance:  checkPerformance,
	CheckPnL:          checkPnL,
	CheckIncome:       checkIncome,
	CheckAllocation:   checkAllocation,
	CheckTopPositions: checkTopPositions,
	CheckPrincipal:    checkPrincipal,
	CheckSnapshot:     checkSnapshot,
	CheckTrades:       checkTrades,
	CheckHistory:      checkHistory,
}

// checkPrecision raises the comparison precision of single checks above the
// configured one. Cumulative performance is reported to three decimals.
var checkPrecision = map[string]int32{
	CheckPerformance: 3,
}

// PrecisionFor is the number of decimals check name compares at.
func PrecisionFor(name string, configured int32) int32 {
	if p, ok := checkPrecision[name]; ok && p > configured {
		return p
	}
	return configured
}

// ParseChecks validates check names; none selects every check.
func ParseChecks(names []string) ([]string, error) {
	if len(names) == 0 {
		return CheckNames, nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := checks[n]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, n)
		}
		out = append(out, n)
	}
	return out, nil
}

func checkWealth(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	want, err := h.Allocation.Wealth(ctx, p, h.AsOf)
	if err != nil {
		return err
	}
	got, err := h.API.Wealth(ctx, p.ID)
	if err != nil {
		return err
	}
	e.Equal("total wealth", want.Total, got.Total)
	e.Equal("investable wealth", want.Investable, got.Investable)
	e.Equal("projected income", want.Income, got.Income)
	e.Equal("income yield", want.IncomeYield, got.IncomeYield)
	return nil
}

func detail(i model.Interval) string {
	if i == model.IntervalDaily {
		return "Daily"
	}
	return "Monthly"
}

func checkPerformance(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	want, err := h.Performance.Portfolio(ctx, p, h.From, h.To)
	if err != nil {
		return err
	}
	_, interval := dsvc.BucketDates(h.From, h.To)
	q := port.PerformanceQuery{PortfolioID: p.ID, From: h.From, To: h.To, Detail: detail(interval)}
	got, err := h.API.Performance(ctx, q)
	if err != nil {
		return err
	}
	e.EqualSeries("performance", dsvc.PerformanceSeries(want), dsvc.PerformanceSeries(got))

	if h.Benchmark == "" {
		return nil
	}
	want, err = h.Performance.Benchmark(ctx, h.Benchmark, h.From, h.To)
	if err != nil {
		return err
	}
	q.Benchmark = h.Benchmark
	if got, err = h.API.Performance(ctx, q); err != nil {
		return err
	}
	e.EqualSeries("benchmark "+h.Benchmark, dsvc.PerformanceSeries(want), dsvc.PerformanceSeries(got))
	return nil
}

func checkPnL(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	res, err := h.Calculator.PnL(ctx, p, h.From, h.To, model.Options{All: true})
	if err != nil {
		return err
	}
	want := make(map[string]float64, len(res.ByClass))
	for cls, v := range res.ByClass {
		want[string(cls)] = v
	}
	got, err := h.API.Profit(ctx, p.ID, h.From, h.To)
	if err != nil {
		return err
	}
	e.EqualMap("pnl", want, got)
	return nil
}

func checkIncome(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	opts := model.Options{Aggregated: true}.WithInterval(model.IntervalMonthly)
	res, err := h.Calculator.Income(ctx, p, h.From, h.To, opts)
	if err != nil {
		return err
	}
	got, err := h.API.Income(ctx, p.ID, h.From, h.To)
	if err != nil {
		return err
	}
	for _, cls := range model.AssetClasses {
		want, ok := res.ByClass[cls]
		if !ok && got[string(cls)] == nil {
			continue
		}
		e.EqualSeries("income "+string(cls), want, got[string(cls)])
	}
	return nil
}

// allocationDimensions are the breakdowns served by the allocation endpoint.
var allocationDimensions = []dsvc.Dimension{
	dsvc.ByAssetClass, dsvc.BySubclass, dsvc.ByCurrency, dsvc.ByRegion,
	dsvc.ByCustodian, dsvc.ByIndustry, dsvc.ByRating,
}

func checkAllocation(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	for _, dim := range allocationDimensions {
		shares, err := h.Allocation.Allocation(ctx, p, h.AsOf, dim)
		if err != nil {
			return err
		}
		want := make(map[string]float64, len(shares))
		for _, s := range shares {
			want[s.Name] = s.Percentage
		}
		got, err := h.API.Allocation(ctx, p.ID, string(dim))
		if err != nil {
			return err
		}
		e.EqualMap(string(dim), want, got)
	}
	return nil
}

func checkTopPositions(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	want, err := h.Allocation.TopPositions(ctx, p, h.AsOf, dsvc.TopQuery{Limit: h.TopLimit})
	if err != nil {
		return err
	}
	got, err := h.API.TopPositions(ctx, port.TopQuery{PortfolioID: p.ID, Number: h.TopLimit})
	if err != nil {
		return err
	}
	e.Truef(len(want) == len(got), "top positions: expected %d rows, got %d", len(want), len(got))
	for i := 0; i < len(want) && i < len(got); i++ {
		row := fmt.Sprintf("top positions #%d", i+1)
		e.Truef(want[i].Name == got[i].Name, "%s: expected %q, got %q", row, want[i].Name, got[i].Name)
		e.Equal(row+" value", want[i].Value, got[i].Value)
		e.Equal(row+" percentage", want[i].Percentage, got[i].Percentage)
	}
	return nil
}

func checkPrincipal(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	want, err := h.Calculator.Principal(ctx, p, h.AsOf)
	if err != nil {
		return err
	}
	got, err := h.API.Principal(ctx, p.ID)
	if err != nil {
		return err
	}
	e.EqualMap("principal", want, got)
	return nil
}

// snapshotPnLTolerance is the accepted P&L distance of a snapshot line.
const snapshotPnLTolerance = 0.1

func checkSnapshot(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	want, err := h.Calculator.Snapshot(ctx, p, h.AsOf)
	if err != nil {
		return err
	}
	got, err := h.API.Snapshot(ctx, p.ID)
	if err != nil {
		return err
	}
	served := make(map[string]model.Position, len(got))
	for _, g := range got {
		served[g.Name] = g
	}
	for _, w := range want {
		row := "snapshot " + w.Name
		g, ok := served[w.Name]
		if !e.Truef(ok, "%s: missing in response", row) {
			continue
		}
		delete(served, w.Name)
		e.Equal(row+" quantity", w.Quantity, g.Quantity)
		e.Equal(row+" price", w.Price, g.Price)
		e.Truef(w.Currency == g.Currency, "%s currency: expected %s, got %s", row, w.Currency, g.Currency)
		e.EqualAt(row+" value", w.Value, g.Value, 0)
		e.Within(row+" pnl", w.PnL, g.PnL, snapshotPnLTolerance)
	}
	for _, g := range got {
		if _, extra := served[g.Name]; extra {
			e.Truef(false, "snapshot %s: not held", g.Name)
		}
	}
	return nil
}

// tradeAmountTolerance is the rounding slack of the served gross amount.
const tradeAmountTolerance = 0.01

func checkTrades(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	want, err := h.Calculator.Trades(ctx, p, h.AsOf)
	if err != nil {
		return err
	}
	got, err := h.API.Trades(ctx, p.ID)
	if err != nil {
		return err
	}
	served := make(map[int64]port.TradeRow, len(got))
	for _, g := range got {
		served[g.ID] = g
	}
	for _, w := range want {
		row := fmt.Sprintf("trade %d %s", w.ID, w.Instrument.Code)
		g, ok := served[w.ID]
		if !e.Truef(ok, "%s: missing in response", row) {
			continue
		}
		delete(served, w.ID)
		e.Truef(w.Instrument.Code == g.Instrument.Code, "%s code: expected %q, got %q", row, w.Instrument.Code, g.Instrument.Code)
		e.Truef(w.Instrument.Name == g.Instrument.Name, "%s name: expected %q, got %q", row, w.Instrument.Name, g.Instrument.Name)
		e.Equal(row+" quantity", w.Quantity, g.Quantity)
		e.Equal(row+" price", w.Price, g.Price)
		e.Within(row+" amount", w.Amount(), g.Amount, tradeAmountTolerance)
		e.Equal(row+" commission", w.Commission, g.Commission)
		e.Equal(row+" fx rate", w.FXRate, g.FXRate)
		e.Truef(w.Instrument.Currency == g.Instrument.Currency, "%s currency: expected %s, got %s", row, w.Instrument.Currency, g.Instrument.Currency)
		e.Truef(w.Custodian == g.Custodian, "%s custodian: expected %q, got %q", row, w.Custodian, g.Custodian)
		e.Truef(w.Investable == g.Investable, "%s investable: expected %t, got %t", row, w.Investable, g.Investable)
		e.Truef(w.Day().Equal(g.Day()), "%s trade time: expected %s, got %s", row, model.FormatDay(w.Time), model.FormatDay(g.Time))
	}
	asOf := model.Day(h.AsOf)
	for _, g := range got {
		if _, extra := served[g.ID]; extra && !g.Day().After(asOf) {
			e.Truef(false, "trade %d %s: not booked", g.ID, g.Instrument.Code)
		}
	}
	return nil
}

// historyOptions shape NAV per asset class and subclass.
var historyOptions = model.Options{All: true}

func checkHistory(ctx context.Context, h *Harness, p model.Portfolio, e *Expect) error {
	t, err := h.Totals.Totals(ctx, service.TotalsRequest{
		Portfolio: p,
		Start:     h.From,
		End:       h.To,
		Options:   historyOptions,
		Metrics:   []service.Metric{service.MetricNAV},
	})
	if err != nil {
		return err
	}
	got, err := h.API.History(ctx, p.ID, h.From, h.To)
	if err != nil {
		return err
	}

	names := make(map[string]struct{}, len(got))
	for name := range got {
		names[name] = struct{}{}
	}
	for _, byClass := range t.NAVByClass {
		for name, v := range byClass {
			if v != 0 && model.IsAssetClass(name) {
				names[name] = struct{}{}
			}
		}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		series, ok := got[name]
		if !e.Truef(ok, "history %s: missing in response", name) {
			continue
		}
		for _, d := range series.Dates() {
			label := "history " + name + " " + model.FormatDay(d)
			byClass, ok := t.NAVByClass[d]
			if !e.Truef(ok, "%s: not a reporting date", label) {
				continue
			}
			e.Equal(label, byClass[name], series[d])
		}
	}
	return nil
}
