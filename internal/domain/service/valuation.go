package service

import (
	"sort"
	"strings"
	"time"

	"wmrecon/internal/domain/model"
)

const unknown = "Unknown"

type holdingKey struct {
	code       string
	custodian  string
	investable bool
}

// Valuate values the holdings at day: quantity x multiplier x close / fx,
// one holding per instrument, custodian and investable flag. Instruments
// without a close are left out.
func Valuate(trades []model.Trade, day time.Time, closes map[string]float64, base string, fx FXFunc) ([]model.Holding, error) {
	day = model.Day(day)
	qty := make(map[holdingKey]float64)
	instr := make(map[string]model.Instrument)
	var keys []holdingKey
	for _, t := range trades {
		if t.Day().After(day) {
			continue
		}
		k := holdingKey{code: t.Instrument.Code, custodian: t.Custodian, investable: t.Investable}
		if _, ok := qty[k]; !ok {
			keys = append(keys, k)
		}
		qty[k] += t.Quantity
		instr[k.code] = t.Instrument
	}

	rates := make(map[string]float64)
	var out []model.Holding
	for _, k := range keys {
		px, ok := closes[k.code]
		if !ok || qty[k] == 0 {
			continue
		}
		in := instr[k.code]
		rate, seen := rates[in.Currency]
		if !seen {
			r, err := fx(base, in.Currency, day)
			if err != nil {
				return nil, err
			}
			rates[in.Currency], rate = r, r
		}
		q := qty[k] * in.PointValue()
		out = append(out, model.Holding{
			Instrument: in,
			Custodian:  k.custodian,
			Quantity:   q,
			Close:      px,
			FX:         rate,
			Value:      q * px / rate,
			Investable: k.investable,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Instrument.Code) < strings.ToLower(out[j].Instrument.Code)
	})
	return out, nil
}

// TotalWealth sums holding values, optionally only investable ones.
func TotalWealth(holdings []model.Holding, investableOnly bool) float64 {
	var total float64
	for _, h := range holdings {
		if investableOnly && !h.Investable {
			continue
		}
		total += h.Value
	}
	return total
}

// WealthByClass sums holding values per asset class and per subclass.
func WealthByClass(holdings []model.Holding) map[string]float64 {
	out := make(map[string]float64)
	for _, h := range holdings {
		out[string(h.Instrument.AssetClass)] += h.Value
		if h.Instrument.Subclass != "" && h.Instrument.Subclass != string(h.Instrument.AssetClass) {
			out[h.Instrument.Subclass] += h.Value
		}
	}
	return out
}

// FilterClass keeps the holdings of one asset class.
func FilterClass(holdings []model.Holding, class model.AssetClass) []model.Holding {
	out := make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.Instrument.AssetClass == class {
			out = append(out, h)
		}
	}
	return out
}
