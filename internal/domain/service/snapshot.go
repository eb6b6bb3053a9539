package service

import (
	"sort"
	"strings"
	"time"

	"wmrecon/internal/domain/model"
)

// SnapshotPositions nets valued holdings per instrument and attaches the P&L
// of each instrument. Instruments flat across custodians are dropped; lines
// are ordered by name, case insensitively.
func SnapshotPositions(holdings []model.Holding, pnl map[string]float64) []model.Position {
	idx := make(map[string]int)
	var out []model.Position
	for _, h := range holdings {
		code := h.Instrument.Code
		i, ok := idx[code]
		if !ok {
			i = len(out)
			idx[code] = i
			out = append(out, model.Position{
				Code:     code,
				Name:     h.Instrument.Name,
				Currency: h.Instrument.Currency,
				Price:    h.Close,
				PnL:      pnl[code],
			})
		}
		out[i].Quantity += h.Quantity / h.Instrument.PointValue()
		out[i].Value += h.Value
	}

	kept := out[:0]
	for _, p := range out {
		if p.Quantity != 0 {
			kept = append(kept, p)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return strings.ToLower(kept[i].Name) < strings.ToLower(kept[j].Name)
	})
	return kept
}

// PrincipalRepayments projects the face value of the bonds held at day onto
// the year of their last principal bearing coupon after day, in base
// currency. Perpetual bonds are summed under model.PerpetualBucket, the other
// buckets are keyed by the last day of the call year. Matured bonds, short
// or flat positions and bonds without such a coupon are left out.
func PrincipalRepayments(trades []model.Trade, coupons []model.CouponEvent, day time.Time, base string, fx FXFunc) (map[string]float64, error) {
	day = model.Day(day)
	qty := make(map[int64]float64)
	bonds := make(map[int64]model.Instrument)
	for _, t := range trades {
		if t.Instrument.AssetClass != model.Credit || t.Day().After(day) {
			continue
		}
		qty[t.Instrument.ID] += t.Quantity
		bonds[t.Instrument.ID] = t.Instrument
	}

	calls := make(map[int64]time.Time)
	for _, c := range coupons {
		if c.Principal == 0 || !c.Date.After(day) {
			continue
		}
		if d := model.Day(c.Date); d.After(calls[c.InstrumentID]) {
			calls[c.InstrumentID] = d
		}
	}

	out := make(map[string]float64)
	for id, in := range bonds {
		call, ok := calls[id]
		if !ok || qty[id] <= 0 {
			continue
		}
		if !in.Expiry.IsZero() && !in.Expiry.After(day) {
			continue
		}
		rate, err := fx(base, in.Currency, call)
		if err != nil {
			return nil, err
		}
		key := model.PerpetualBucket
		if !in.Perpetual {
			key = model.FormatDay(model.Date(call.Year(), time.December, 31))
		}
		out[key] += qty[id] / rate
	}
	return out, nil
}
