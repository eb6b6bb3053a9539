package service

import (
	"time"

	"wmrecon/internal/domain/model"
)

// Tranche is a holding period of one instrument between consecutive trade days.
// Income events dated in (From, To] accrue to Position; an open tranche has a zero To.
type Tranche struct {
	Instrument model.Instrument
	From       time.Time
	To         time.Time
	Position   float64
}

// Covers reports whether an event at day falls in the tranche window.
func (t Tranche) Covers(day time.Time) bool {
	if !day.After(t.From) {
		return false
	}
	return t.To.IsZero() || !day.After(t.To)
}

// Tranches splits each instrument's history into holding periods carrying the
// cumulative quantity after the last trade of each trade day.
func Tranches(trades []model.Trade) map[string][]Tranche {
	out := make(map[string][]Tranche)
	for code, ts := range model.GroupByInstrument(trades) {
		var (
			list []Tranche
			pos  float64
		)
		for _, t := range ts {
			pos += t.Quantity
			day := t.Day()
			if n := len(list); n > 0 && list[n-1].From.Equal(day) {
				list[n-1].Position = pos
				continue
			}
			if n := len(list); n > 0 {
				list[n-1].To = day
			}
			list = append(list, Tranche{Instrument: t.Instrument, From: day, Position: pos})
		}
		out[code] = list
	}
	return out
}

// IncomeEngine derives income records from trades and income events.
type IncomeEngine struct {
	Base string
	FX   FXFunc
}

func NewIncomeEngine(base string, fx FXFunc) *IncomeEngine {
	return &IncomeEngine{Base: base, FX: fx}
}

func inRange(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

func filterClass(trades []model.Trade, class model.AssetClass) []model.Trade {
	out := make([]model.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Instrument.AssetClass == class {
			out = append(out, t)
		}
	}
	return out
}

func (e *IncomeEngine) record(instr model.Instrument, ccy string, day time.Time, local float64) (model.IncomeRecord, error) {
	rec := model.IncomeRecord{
		Instrument: instr.Code,
		AssetClass: instr.AssetClass,
		Date:       model.Day(day),
		Local:      local,
	}
	if local == 0 {
		return rec, nil
	}
	rate, err := e.FX(e.Base, ccy, day)
	if err != nil {
		return rec, err
	}
	rec.Base = local / rate
	return rec, nil
}

// Dividends accrues equity dividends with ex-date in [start, end].
func (e *IncomeEngine) Dividends(trades []model.Trade, events []model.DividendEvent, start, end time.Time) ([]model.IncomeRecord, error) {
	byInstr := make(map[int64][]model.DividendEvent)
	for _, ev := range events {
		byInstr[ev.InstrumentID] = append(byInstr[ev.InstrumentID], ev)
	}
	start, end = model.Day(start), model.Day(end)

	var out []model.IncomeRecord
	tranches := Tranches(filterClass(trades, model.Equities))
	for _, code := range model.InstrumentCodes(tranches) {
		for _, tr := range tranches[code] {
			if tr.Position <= 0 {
				continue
			}
			for _, ev := range byInstr[tr.Instrument.ID] {
				ex := model.Day(ev.ExDate)
				if !inRange(ex, start, end) || !tr.Covers(ex) {
					continue
				}
				local := tr.Position * ev.Amount * tr.Instrument.PointValue()
				rec, err := e.record(tr.Instrument, tr.Instrument.Currency, ex, local)
				if err != nil {
					return nil, err
				}
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// Coupons accrues bond coupons dated in [start, end], normalised by the
// instrument's total principal.
func (e *IncomeEngine) Coupons(trades []model.Trade, events []model.CouponEvent, start, end time.Time) ([]model.IncomeRecord, error) {
	byInstr := make(map[int64][]model.CouponEvent)
	principal := make(map[int64]float64)
	for _, ev := range events {
		byInstr[ev.InstrumentID] = append(byInstr[ev.InstrumentID], ev)
		principal[ev.InstrumentID] += ev.Principal
	}
	start, end = model.Day(start), model.Day(end)

	var out []model.IncomeRecord
	tranches := Tranches(filterClass(trades, model.Credit))
	for _, code := range model.InstrumentCodes(tranches) {
		for _, tr := range tranches[code] {
			total := principal[tr.Instrument.ID]
			if tr.Position <= 0 || total == 0 {
				continue
			}
			for _, ev := range byInstr[tr.Instrument.ID] {
				day := model.Day(ev.Date)
				if !inRange(day, start, end) || !tr.Covers(day) {
					continue
				}
				rec, err := e.record(tr.Instrument, tr.Instrument.Currency, day, tr.Position*ev.Amount/total)
				if err != nil {
					return nil, err
				}
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// monthEnds lists the month ends from the month of start up to end inclusive.
func monthEnds(start, end time.Time) []time.Time {
	var out []time.Time
	for m := model.MonthStart(start); !model.MonthEnd(m).After(end); m = m.AddDate(0, 1, 0) {
		out = append(out, model.MonthEnd(m))
	}
	return out
}

// Cash accrues the flat cash yield on the USD cash position held at each
// month end, one record per month including months paying nothing.
func (e *IncomeEngine) Cash(trades []model.Trade, start, end time.Time) ([]model.IncomeRecord, error) {
	var cash []model.Trade
	instr := model.Instrument{Code: model.CashInstrument, AssetClass: model.CashAndEquivalents, Currency: "USD"}
	for _, t := range trades {
		if t.Instrument.Code == model.CashInstrument {
			cash = append(cash, t)
			instr = t.Instrument
		}
	}

	var out []model.IncomeRecord
	for _, me := range monthEnds(model.Day(start), model.Day(end)) {
		var pos float64
		for _, t := range cash {
			if !t.Day().After(me) {
				pos += t.Quantity
			}
		}
		rec, err := e.record(instr, "USD", me, model.CashYieldRate*pos/12)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// NonMarket accrues flat annual schedules monthly, for month ends after the
// schedule start, on the quantity held at each month end.
func (e *IncomeEngine) NonMarket(trades []model.Trade, schedules []model.NonMarketSchedule, start, end time.Time) ([]model.IncomeRecord, error) {
	re := model.GroupByInstrument(filterClass(trades, model.RealEstate))
	byID := make(map[int64][]model.Trade, len(re))
	for _, ts := range re {
		byID[ts[0].Instrument.ID] = ts
	}
	start, end = model.Day(start), model.Day(end)

	var out []model.IncomeRecord
	for _, s := range schedules {
		ts := byID[s.InstrumentID]
		if len(ts) == 0 {
			continue
		}
		first := model.Day(s.StartDate).AddDate(0, 0, 1)
		for _, me := range monthEnds(start, end) {
			if me.Before(first) {
				continue
			}
			var qty float64
			for _, t := range ts {
				if !t.Day().After(me) {
					qty += t.Quantity
				}
			}
			rec, err := e.record(ts[0].Instrument, s.Currency, me, qty*s.Amount/12)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// ========== aggregation ==========

// SumBase totals the base amounts of records.
func SumBase(records []model.IncomeRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Base
	}
	return total
}

// ClassTotal is the period total of one asset class. Cash reports nothing
// when its last month paid nothing.
func ClassTotal(class model.AssetClass, records []model.IncomeRecord) float64 {
	if class == model.CashAndEquivalents && len(records) > 0 && records[len(records)-1].Local == 0 {
		return 0
	}
	return SumBase(records)
}

// BucketByMonth keys base amounts by month end, capped at end.
func BucketByMonth(records []model.IncomeRecord, end time.Time) model.Series {
	out := model.Series{}
	end = model.Day(end)
	for _, r := range records {
		out.Add(model.MinDay(model.MonthEnd(r.Date), end), r.Base)
	}
	return out
}

// LocalByInstrument totals local amounts per instrument.
func LocalByInstrument(records []model.IncomeRecord) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range records {
		out[r.Instrument] += r.Local
	}
	return out
}
