package service

import (
	"sort"
	"time"

	"wmrecon/internal/domain/model"
)

// CostCurve is the day-indexed running average cost of one instrument.
// The entry of a day is the average after the last trade of that day.
type CostCurve struct {
	days  []time.Time
	costs []float64
}

// BuildCostCurve replays the trades of a single instrument in
// (time, quantity desc, price) order.
//
// A trade moves the average only when it adds exposure in the direction of
// the position it lands in: a buy into a long (or flat) book, a sell into a
// short (or flat) book. Reductions, closes and flips carry the average forward.
func BuildCostCurve(trades []model.Trade) CostCurve {
	sorted := append([]model.Trade(nil), trades...)
	model.SortTrades(sorted)

	var (
		c   CostCurve
		pos float64
		avg float64
	)
	for i, t := range sorted {
		next := pos + t.Quantity
		switch {
		case i == 0:
			avg = t.Price
		case increasesExposure(pos, t.Quantity, next):
			avg = (t.Quantity*t.Price + pos*avg) / next
		}
		pos = next
		c.set(t.Day(), avg)
	}
	return c
}

func increasesExposure(prev, qty, next float64) bool {
	if next == 0 || qty == 0 {
		return false
	}
	if (next > 0) != (qty > 0) {
		return false
	}
	return prev == 0 || (prev > 0) == (qty > 0)
}

func (c *CostCurve) set(day time.Time, avg float64) {
	if n := len(c.days); n > 0 && c.days[n-1].Equal(day) {
		c.costs[n-1] = avg
		return
	}
	c.days = append(c.days, day)
	c.costs = append(c.costs, avg)
}

// At returns the latest average cost at or before day, 0 before the first trade.
func (c CostCurve) At(day time.Time) float64 {
	day = model.Day(day)
	i := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(day) })
	if i == 0 {
		return 0
	}
	return c.costs[i-1]
}

// Len returns the number of distinct trade days on the curve.
func (c CostCurve) Len() int { return len(c.days) }

// BuildCostCurves builds one curve per instrument code.
func BuildCostCurves(trades []model.Trade) map[string]CostCurve {
	groups := model.GroupByInstrument(trades)
	out := make(map[string]CostCurve, len(groups))
	for code, ts := range groups {
		out[code] = BuildCostCurve(ts)
	}
	return out
}
