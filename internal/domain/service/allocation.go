package service

import (
	"sort"
	"strings"

	"wmrecon/internal/domain/model"
)

// Dimension is an allocation breakdown axis.
type Dimension string

const (
	ByAssetClass Dimension = "AssetClass"
	BySubclass   Dimension = "AssetSubclass"
	ByCurrency   Dimension = "Currency"
	ByRegion     Dimension = "Region"
	ByCustodian  Dimension = "Custodian"
	ByIndustry   Dimension = "Industry"
	ByRating     Dimension = "CreditRating"
)

// Key returns the bucket of a holding along the dimension.
func (d Dimension) Key(h model.Holding) string {
	switch d {
	case ByAssetClass:
		return string(h.Instrument.AssetClass)
	case BySubclass:
		return orUnknown(h.Instrument.Subclass)
	case ByCurrency:
		return strings.ToUpper(h.Instrument.Currency)
	case ByRegion:
		return orUnknown(h.Instrument.Region)
	case ByCustodian:
		return orUnknown(h.Custodian)
	case ByIndustry:
		return orUnknown(h.Instrument.Industry)
	case ByRating:
		return orUnknown(h.Instrument.Rating)
	}
	return unknown
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

// Allocate partitions holdings along dim as percentages of their total.
// Empty shares are dropped; the result is ordered by percentage descending.
func Allocate(holdings []model.Holding, dim Dimension) []model.Share {
	values := make(map[string]float64)
	var total float64
	for _, h := range holdings {
		values[dim.Key(h)] += h.Value
		total += h.Value
	}
	out := make([]model.Share, 0, len(values))
	for name, v := range values {
		if v == 0 {
			continue
		}
		out = append(out, model.Share{Name: name, Value: v, Percentage: Yield(v, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopQuery selects and orders top positions.
type TopQuery struct {
	Class     model.AssetClass // empty for the whole portfolio
	ByIssuer  bool
	Ascending bool
	Limit     int
}

// TopPositions ranks instruments (or issuers) by value. Percentages are of
// the selected class when Class is set, else of the whole portfolio.
func TopPositions(holdings []model.Holding, q TopQuery) []model.TopPosition {
	scope := holdings
	if q.Class != "" {
		scope = FilterClass(holdings, q.Class)
	}
	total := TotalWealth(scope, false)

	type agg struct {
		class model.AssetClass
		value float64
	}
	rows := make(map[string]*agg)
	for _, h := range scope {
		name := h.Instrument.Name
		if name == "" {
			name = h.Instrument.Code
		}
		if q.ByIssuer {
			name = orUnknown(h.Instrument.Issuer)
		}
		a, ok := rows[name]
		if !ok {
			a = &agg{class: h.Instrument.AssetClass}
			rows[name] = a
		}
		a.value += h.Value
	}

	out := make([]model.TopPosition, 0, len(rows))
	for name, a := range rows {
		if a.value == 0 {
			continue
		}
		out = append(out, model.TopPosition{
			Name:       name,
			AssetClass: a.class,
			Value:      a.value,
			Percentage: Yield(a.value, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			if q.Ascending {
				return out[i].Value < out[j].Value
			}
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
