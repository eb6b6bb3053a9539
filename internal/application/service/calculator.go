package service

import (
	"context"
	"fmt"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
	dsvc "wmrecon/internal/domain/service"
)

// incomeClasses are the asset classes that produce income, in reporting order.
var incomeClasses = []model.AssetClass{model.CashAndEquivalents, model.Credit, model.Equities, model.RealEstate}

// Calculator recomputes NAV, P&L and income of a portfolio from market data.
// Every call loads its own data; calls are independent and safe to run in parallel.
type Calculator struct {
	data port.MarketData
}

func NewCalculator(data port.MarketData) *Calculator {
	return &Calculator{data: data}
}

func (c *Calculator) fx(ctx context.Context) dsvc.FXFunc {
	return func(from, to string, day time.Time) (float64, error) {
		return c.data.FXRate(ctx, from, to, day)
	}
}

// book is the read-only data of one portfolio.
type book struct {
	trades    []model.Trade
	dividends []model.DividendEvent
	coupons   []model.CouponEvent
	schedules []model.NonMarketSchedule
}

func (c *Calculator) load(ctx context.Context, p model.Portfolio, withEvents bool) (*book, error) {
	trades, err := c.data.Trades(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("trades of %s: %w", p.Name, err)
	}
	b := &book{trades: trades}
	if !withEvents {
		return b, nil
	}
	if b.dividends, err = c.data.Dividends(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("dividends of %s: %w", p.Name, err)
	}
	if b.coupons, err = c.data.Coupons(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("coupons of %s: %w", p.Name, err)
	}
	if b.schedules, err = c.data.NonMarketSchedules(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("non-market schedules of %s: %w", p.Name, err)
	}
	return b, nil
}

// ========== NAV ==========

// NAVResult is a NAV shaped by Options.NAVShape.
type NAVResult struct {
	Shape   model.Shape
	Day     time.Time
	Total   float64            // portfolio or single class value
	ByClass map[string]float64 // asset class and subclass values
}

// Value returns the scalar NAV of the result.
func (r NAVResult) Value() float64 { return r.Total }

// Holdings values the portfolio positions at day.
func (c *Calculator) Holdings(ctx context.Context, p model.Portfolio, day time.Time) ([]model.Holding, error) {
	b, err := c.load(ctx, p, false)
	if err != nil {
		return nil, err
	}
	closes, err := c.data.ClosePrices(ctx, p.ID, day)
	if err != nil {
		return nil, fmt.Errorf("closes of %s at %s: %w", p.Name, model.FormatDay(day), err)
	}
	return dsvc.Valuate(b.trades, day, closes, p.Currency, c.fx(ctx))
}

// NAV values the portfolio at day.
func (c *Calculator) NAV(ctx context.Context, p model.Portfolio, day time.Time, opts model.Options) (NAVResult, error) {
	holdings, err := c.Holdings(ctx, p, day)
	if err != nil {
		return NAVResult{}, err
	}
	res := NAVResult{Shape: opts.NAVShape(), Day: model.Day(day), ByClass: dsvc.WealthByClass(holdings)}
	if res.Shape == model.ShapeSingleClass {
		if cls, ok := opts.FirstClass(); ok {
			res.Total = res.ByClass[string(cls)]
		}
		return res, nil
	}
	res.Total = dsvc.TotalWealth(holdings, false)
	return res, nil
}

// ========== P&L ==========

// PnLResult is a period P&L shaped by Options.PnLShape.
type PnLResult struct {
	Shape        model.Shape
	End          time.Time
	Total        float64 // portfolio or single class value
	ByClass      map[model.AssetClass]float64
	ByInstrument map[string]float64
}

// Value returns the scalar P&L of the result.
func (r PnLResult) Value() float64 { return r.Total }

// Series returns the result keyed by the period end.
func (r PnLResult) Series() model.Series { return model.Series{r.End: r.Total} }

// snapshot decomposes the value of every instrument at day.
func (c *Calculator) snapshot(ctx context.Context, p model.Portfolio, b *book, curves map[string]dsvc.CostCurve, day time.Time) (dsvc.Snapshot, error) {
	fx := c.fx(ctx)
	closes, err := c.data.ClosePrices(ctx, p.ID, day)
	if err != nil {
		return dsvc.Snapshot{}, fmt.Errorf("closes of %s at %s: %w", p.Name, model.FormatDay(day), err)
	}
	records := dsvc.ExplainPnL(day, b.trades, curves, closes)

	fees, err := dsvc.CumulativeFees(b.trades, day, p.Currency, fx)
	if err != nil {
		return dsvc.Snapshot{}, fmt.Errorf("fees of %s at %s: %w", p.Name, model.FormatDay(day), err)
	}
	income, err := c.incomeRecords(ctx, p, b, c.inception(p, b), day, model.PortfolioOptions())
	if err != nil {
		return dsvc.Snapshot{}, err
	}
	var all []model.IncomeRecord
	for _, recs := range income {
		all = append(all, recs...)
	}
	local := dsvc.LocalByInstrument(all)

	instruments := model.Instruments(b.trades)
	for code, rec := range records {
		rate, err := fx(p.Currency, instruments[code].Currency, day)
		if err != nil {
			return dsvc.Snapshot{}, fmt.Errorf("fx of %s at %s: %w", code, model.FormatDay(day), err)
		}
		rec.Fees = fees[code]
		rec.Income = local[code]
		rec.FX = rate
		records[code] = rec
	}
	return dsvc.Snapshot{Day: model.Day(day), Records: records}, nil
}

// PnL returns the P&L over [start, end] as the difference of the portfolio
// values at end and at the day before start.
func (c *Calculator) PnL(ctx context.Context, p model.Portfolio, start, end time.Time, opts model.Options) (PnLResult, error) {
	b, err := c.load(ctx, p, true)
	if err != nil {
		return PnLResult{}, err
	}
	start, end = model.Day(start), model.Day(end)
	curves := dsvc.BuildCostCurves(b.trades)

	before, err := c.snapshot(ctx, p, b, curves, start.AddDate(0, 0, -1))
	if err != nil {
		return PnLResult{}, err
	}
	after, err := c.snapshot(ctx, p, b, curves, end)
	if err != nil {
		return PnLResult{}, err
	}
	br := dsvc.PeriodPnL(before, after, dsvc.OpenInstruments(b.trades, end))

	res := PnLResult{Shape: opts.PnLShape(), End: end, ByClass: br.ByClass, ByInstrument: br.ByInstrument}
	switch res.Shape {
	case model.ShapeSingleClass:
		if cls, ok := opts.FirstClass(); ok {
			res.Total = br.ByClass[cls]
		}
	default:
		res.Total = br.Total
	}
	return res, nil
}

// ========== Income ==========

// IncomeResult is income shaped by Options.IncomeShape.
type IncomeResult struct {
	Shape        model.Shape
	Interval     model.Interval
	End          time.Time
	Series       model.Series                      // portfolio or single class
	ByClass      map[model.AssetClass]model.Series // per class
	ByInstrument map[string]float64                // local currency
}

// Total returns the portfolio series whatever the shape.
func (r IncomeResult) Total() model.Series {
	switch r.Shape {
	case model.ShapeByClass:
		out := model.Series{}
		for _, s := range r.ByClass {
			out.Merge(s)
		}
		return out
	case model.ShapeByInstrument:
		var sum float64
		for _, v := range r.ByInstrument {
			sum += v
		}
		return model.Series{r.End: sum}
	default:
		return r.Series
	}
}

func (c *Calculator) inception(p model.Portfolio, b *book) time.Time {
	if !p.Inception.IsZero() {
		return p.Inception
	}
	var first time.Time
	for _, t := range b.trades {
		if first.IsZero() || t.Day().Before(first) {
			first = t.Day()
		}
	}
	return first
}

func (c *Calculator) incomeRecords(ctx context.Context, p model.Portfolio, b *book, start, end time.Time, opts model.Options) (map[model.AssetClass][]model.IncomeRecord, error) {
	e := dsvc.NewIncomeEngine(p.Currency, c.fx(ctx))
	out := make(map[model.AssetClass][]model.IncomeRecord)
	for _, cls := range incomeClasses {
		if !opts.Includes(cls) {
			continue
		}
		var (
			recs []model.IncomeRecord
			err  error
		)
		switch cls {
		case model.Equities:
			recs, err = e.Dividends(b.trades, b.dividends, start, end)
		case model.Credit:
			recs, err = e.Coupons(b.trades, b.coupons, start, end)
		case model.CashAndEquivalents:
			recs, err = e.Cash(b.trades, start, end)
		case model.RealEstate:
			recs, err = e.NonMarket(b.trades, b.schedules, start, end)
		}
		if err != nil {
			return nil, fmt.Errorf("%s income of %s: %w", cls, p.Name, err)
		}
		out[cls] = recs
	}
	return out, nil
}

// Income returns the income of [start, end]. A zero start means inception.
func (c *Calculator) Income(ctx context.Context, p model.Portfolio, start, end time.Time, opts model.Options) (IncomeResult, error) {
	b, err := c.load(ctx, p, true)
	if err != nil {
		return IncomeResult{}, err
	}
	if start.IsZero() {
		start = c.inception(p, b)
	}
	end = model.Day(end)
	records, err := c.incomeRecords(ctx, p, b, start, end, opts)
	if err != nil {
		return IncomeResult{}, err
	}

	classSeries := func(cls model.AssetClass) model.Series {
		if opts.Interval.Series() {
			return dsvc.BucketByMonth(records[cls], end)
		}
		return model.Series{end: dsvc.ClassTotal(cls, records[cls])}
	}

	res := IncomeResult{Shape: opts.IncomeShape(), Interval: opts.Interval, End: end}
	switch res.Shape {
	case model.ShapeByInstrument:
		res.ByInstrument = make(map[string]float64)
		for _, recs := range records {
			for code, v := range dsvc.LocalByInstrument(recs) {
				res.ByInstrument[code] += v
			}
		}
	case model.ShapeTotal:
		res.Series = model.Series{}
		for cls := range records {
			res.Series.Merge(classSeries(cls))
		}
		if !opts.Interval.Series() && len(res.Series) == 0 {
			res.Series[end] = 0
		}
	case model.ShapeSingleClass:
		res.Series = model.Series{}
		if cls, ok := opts.FirstClass(); ok {
			res.Series = classSeries(cls)
		}
	case model.ShapeByClass:
		res.ByClass = make(map[model.AssetClass]model.Series, len(records))
		for cls := range records {
			res.ByClass[cls] = classSeries(cls)
		}
	}
	return res, nil
}

// ========== Portfolio views ==========

// Trades returns the visible trades booked on or before day.
func (c *Calculator) Trades(ctx context.Context, p model.Portfolio, day time.Time) ([]model.Trade, error) {
	b, err := c.load(ctx, p, false)
	if err != nil {
		return nil, err
	}
	day = model.Day(day)
	out := b.trades[:0:0]
	for _, t := range b.trades {
		if !t.Day().After(day) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Snapshot returns the open positions at day with their P&L since inception.
func (c *Calculator) Snapshot(ctx context.Context, p model.Portfolio, day time.Time) ([]model.Position, error) {
	b, err := c.load(ctx, p, false)
	if err != nil {
		return nil, err
	}
	holdings, err := c.Holdings(ctx, p, day)
	if err != nil {
		return nil, err
	}
	pnl, err := c.PnL(ctx, p, c.inception(p, b), day, model.Options{Detailed: true})
	if err != nil {
		return nil, err
	}
	return dsvc.SnapshotPositions(holdings, pnl.ByInstrument), nil
}

// Principal returns the principal still to be repaid after day per call year.
func (c *Calculator) Principal(ctx context.Context, p model.Portfolio, day time.Time) (map[string]float64, error) {
	b, err := c.load(ctx, p, true)
	if err != nil {
		return nil, err
	}
	out, err := dsvc.PrincipalRepayments(b.trades, b.coupons, day, p.Currency, c.fx(ctx))
	if err != nil {
		return nil, fmt.Errorf("principal of %s: %w", p.Name, err)
	}
	return out, nil
}
