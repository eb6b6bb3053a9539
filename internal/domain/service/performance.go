package service

import (
	"time"

	"wmrecon/internal/domain/model"
)

// Yield returns base as a percentage of nav, 0 when nav is 0.
func Yield(base, nav float64) float64 {
	if nav == 0 {
		return 0
	}
	return base * 100 / nav
}

// PeriodReturn is (income + pnl) / nav, 0 when nav is 0.
func PeriodReturn(income, pnl, nav float64) float64 {
	if nav == 0 {
		return 0
	}
	return (income + pnl) / nav
}

// Compound chains a period return onto a cumulative percentage.
func Compound(cum, r float64) float64 {
	return cum + (100+cum)*r
}

// BuildPerformance compounds the period returns at the NAV dates into a
// cumulative percentage series. The series starts with a zero point dated the
// day before the first period (the day before its month start for monthly data).
func BuildPerformance(nav, income, pnl model.Series, interval model.Interval) []model.PerformancePoint {
	dates := nav.Dates()
	if len(dates) == 0 {
		return nil
	}
	out := make([]model.PerformancePoint, 0, len(dates)+1)
	out = append(out, model.PerformancePoint{Date: PerformanceOrigin(dates[0], interval)})
	cum := 0.0
	for _, d := range dates {
		cum = Compound(cum, PeriodReturn(income.Get(d), pnl.Get(d), nav.Get(d)))
		out = append(out, model.PerformancePoint{Date: d, Value: cum})
	}
	return out
}

// PerformanceOrigin is the date of the zero point of a series whose first
// period ends at first.
func PerformanceOrigin(first time.Time, interval model.Interval) time.Time {
	if interval == model.IntervalMonthly {
		first = model.MonthStart(first)
	}
	return model.Day(first).AddDate(0, 0, -1)
}

// LevelAt is the last value of s dated on or before day.
func LevelAt(s model.Series, day time.Time) (float64, bool) {
	var (
		v  float64
		ok bool
	)
	for _, d := range s.Dates() {
		if d.After(day) {
			break
		}
		v, ok = s[d], true
	}
	return v, ok
}

// BenchmarkPerformance compounds the index returns p[k]/p[k-1]-1 between the
// levels at origin and at each bucket date. The zero sits on origin; bucket
// dates before the first known level are left out.
func BenchmarkPerformance(prices model.Series, origin time.Time, dates []time.Time) []model.PerformancePoint {
	out := make([]model.PerformancePoint, 0, len(dates)+1)
	var (
		prev    float64
		started bool
		cum     float64
	)
	for _, d := range append([]time.Time{origin}, dates...) {
		level, ok := LevelAt(prices, d)
		if !ok {
			continue
		}
		if started && prev != 0 {
			cum = Compound(cum, level/prev-1)
		}
		prev, started = level, true
		out = append(out, model.PerformancePoint{Date: d, Value: cum})
	}
	return out
}

// PerformanceSeries converts points to a date keyed series.
func PerformanceSeries(points []model.PerformancePoint) model.Series {
	out := make(model.Series, len(points))
	for _, p := range points {
		out[model.Day(p.Date)] = p.Value
	}
	return out
}

// BucketDates enumerates the representative dates of [start, end]: every day
// for spans up to 31 days, else the last day in range of each month.
func BucketDates(start, end time.Time) ([]time.Time, model.Interval) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, model.IntervalNone
	}
	if model.DaysBetween(start, end) <= 31 {
		var out []time.Time
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			out = append(out, d)
		}
		return out, model.IntervalDaily
	}
	var out []time.Time
	for m := model.MonthStart(start); !m.After(end); m = m.AddDate(0, 1, 0) {
		out = append(out, model.MinDay(model.MonthEnd(m), end))
	}
	return out, model.IntervalMonthly
}
