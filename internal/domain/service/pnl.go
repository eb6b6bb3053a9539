package service

import (
	"time"

	"wmrecon/internal/domain/model"
)

// ExplainPnL decomposes the P&L of every instrument traded on or before day.
//
// Unrealized marks the net position (with multiplier) against the average
// cost; it is 0 when the instrument has no close. Realized accumulates sells
// strictly before day against the average cost of the sell's trade day.
func ExplainPnL(day time.Time, trades []model.Trade, curves map[string]CostCurve, closes map[string]float64) map[string]model.PnLRecord {
	day = model.Day(day)
	positions := NetPositions(trades, day)
	out := make(map[string]model.PnLRecord, len(positions))
	for code, pos := range positions {
		rec := model.PnLRecord{Instrument: code}
		curve := curves[code]
		if px, ok := closes[code]; ok {
			rec.Unrealized = pos * (px - curve.At(day))
		}
		out[code] = rec
	}
	for _, t := range trades {
		if t.Quantity >= 0 || !t.Day().Before(day) {
			continue
		}
		code := t.Instrument.Code
		rec := out[code]
		rec.Realized += t.Instrument.PointValue() * t.Quantity * (curves[code].At(t.Day()) - t.Price)
		out[code] = rec
	}
	return out
}

// Snapshot is the point-in-time value decomposition of a portfolio at one day.
type Snapshot struct {
	Day     time.Time
	Records map[string]model.PnLRecord
}

// Value returns the base currency value of an instrument, 0 when unknown.
func (s Snapshot) Value(code string) float64 {
	rec, ok := s.Records[code]
	if !ok {
		return 0
	}
	return rec.Value()
}

// PnLBreakdown is a period P&L split by instrument and asset class.
type PnLBreakdown struct {
	ByInstrument map[string]float64
	ByClass      map[model.AssetClass]float64
	Total        float64
}

// PeriodPnL differences two snapshots for the instruments open at the
// period end. before is the snapshot of the day preceding the period start.
func PeriodPnL(before, end Snapshot, open map[string]model.AssetClass) PnLBreakdown {
	b := PnLBreakdown{
		ByInstrument: make(map[string]float64, len(open)),
		ByClass:      make(map[model.AssetClass]float64),
	}
	for _, code := range model.InstrumentCodes(open) {
		v := end.Value(code) - before.Value(code)
		b.ByInstrument[code] = v
		b.ByClass[open[code]] += v
		b.Total += v
	}
	return b
}
