package service

import (
	"time"

	"wmrecon/internal/domain/model"
)

// FXFunc resolves the rate converting base currency amounts into ccy at day.
// Local amounts are divided by the rate to obtain base amounts.
type FXFunc func(from, to string, day time.Time) (float64, error)

// NetPositions returns quantity x multiplier per instrument for trades on or
// before day. Instruments traded but flat are present with 0.
func NetPositions(trades []model.Trade, day time.Time) map[string]float64 {
	day = model.Day(day)
	qty := make(map[string]float64)
	mult := make(map[string]float64)
	for _, t := range trades {
		if t.Day().After(day) {
			continue
		}
		qty[t.Instrument.Code] += t.Quantity
		if m := t.Instrument.PointValue(); m > mult[t.Instrument.Code] {
			mult[t.Instrument.Code] = m
		}
	}
	for code := range qty {
		qty[code] *= mult[code]
	}
	return qty
}

// OpenInstruments returns the asset class of every instrument with a nonzero
// net quantity at day.
func OpenInstruments(trades []model.Trade, day time.Time) map[string]model.AssetClass {
	day = model.Day(day)
	qty := make(map[string]float64)
	class := make(map[string]model.AssetClass)
	for _, t := range trades {
		if t.Day().After(day) {
			continue
		}
		qty[t.Instrument.Code] += t.Quantity
		class[t.Instrument.Code] = t.Instrument.AssetClass
	}
	out := make(map[string]model.AssetClass)
	for code, q := range qty {
		if q != 0 {
			out[code] = class[code]
		}
	}
	return out
}

// CumulativeFees returns minus the fees booked up to day per instrument,
// converted at the close rate of the trade day over the booked trade rate.
func CumulativeFees(trades []model.Trade, day time.Time, base string, fx FXFunc) (map[string]float64, error) {
	day = model.Day(day)
	out := make(map[string]float64)
	for _, t := range trades {
		if t.Day().After(day) {
			continue
		}
		fees := t.Fees()
		if fees == 0 {
			out[t.Instrument.Code] += 0
			continue
		}
		closeFX, err := fx(base, t.Instrument.Currency, t.Time)
		if err != nil {
			return nil, err
		}
		out[t.Instrument.Code] -= fees * closeFX * t.Instrument.PointValue() / t.BookedFX()
	}
	return out, nil
}
