package model

import (
	"sort"
	"time"
)

// DayLayout is the wire format of calendar dates.
const DayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

func FormatDay(t time.Time) string { return t.Format(DayLayout) }

func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return Date(y, m, 1)
}

func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MinDay returns the earlier of two days.
func MinDay(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDay returns the later of two days.
func MaxDay(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// Series maps calendar days to values.
type Series map[time.Time]float64

// Add accumulates v at day.
func (s Series) Add(day time.Time, v float64) {
	s[Day(day)] += v
}

// Get returns the value at day, 0 when absent.
func (s Series) Get(day time.Time) float64 {
	return s[Day(day)]
}

// Dates returns the keys in ascending order.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Sum returns the total over all days.
func (s Series) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Merge adds every value of o into s.
func (s Series) Merge(o Series) {
	for d, v := range o {
		s[d] += v
	}
}
