package reconcile

import (
	"fmt"
	"math"
	"sort"

	"wmrecon/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Expect collects soft assertions. Values are compared after rounding half
// away from zero to the configured number of decimals; a mismatch is recorded
// and comparison goes on.
type Expect struct {
	precision int32
	steps     int
	failures  []string
}

func NewExpect(precision int32) *Expect {
	return &Expect{precision: precision}
}

func round(v float64, places int32) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v).Round(places), true
}

func (e *Expect) fail(format string, args ...any) bool {
	e.failures = append(e.failures, fmt.Sprintf(format, args...))
	return false
}

// Equal compares want and got as one step.
func (e *Expect) Equal(step string, want, got float64) bool {
	return e.EqualAt(step, want, got, e.precision)
}

// EqualAt compares want and got rounded to places decimals.
func (e *Expect) EqualAt(step string, want, got float64, places int32) bool {
	e.steps++
	w, okW := round(want, places)
	g, okG := round(got, places)
	if !okW || !okG {
		return e.fail("%s: expected %v, got %v", step, want, got)
	}
	if w.Equal(g) {
		return true
	}
	return e.fail("%s: expected %s, got %s", step, w.StringFixed(places), g.StringFixed(places))
}

// Within passes when want and got, rounded to the configured precision, are
// at most tol apart.
func (e *Expect) Within(step string, want, got, tol float64) bool {
	e.steps++
	w, okW := round(want, e.precision)
	g, okG := round(got, e.precision)
	if !okW || !okG {
		return e.fail("%s: expected %v, got %v", step, want, got)
	}
	if w.Sub(g).Abs().LessThanOrEqual(decimal.NewFromFloat(tol)) {
		return true
	}
	return e.fail("%s: expected %s +/- %v, got %s", step, w.StringFixed(e.precision), tol, g.StringFixed(e.precision))
}

// Truef records one step that passes when ok holds.
func (e *Expect) Truef(ok bool, format string, args ...any) bool {
	e.steps++
	if ok {
		return true
	}
	return e.fail(format, args...)
}

// EqualSeries compares two date series point by point. Dates only present in
// got must round to zero.
func (e *Expect) EqualSeries(step string, want, got model.Series) bool {
	ok := true
	for _, d := range want.Dates() {
		label := step + " " + model.FormatDay(d)
		g, present := got[d]
		if !present {
			ok = e.Truef(false, "%s: missing in response", label) && ok
			continue
		}
		ok = e.Equal(label, want[d], g) && ok
	}
	for _, d := range got.Dates() {
		if _, present := want[d]; !present {
			ok = e.Equal(step+" "+model.FormatDay(d), 0, got[d]) && ok
		}
	}
	return ok
}

// EqualMap compares two keyed values. A key absent on one side counts as 0.
func (e *Expect) EqualMap(step string, want, got map[string]float64) bool {
	keys := make(map[string]struct{}, len(want)+len(got))
	for k := range want {
		keys[k] = struct{}{}
	}
	for k := range got {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	ok := true
	for _, k := range sorted {
		ok = e.Equal(step+" "+k, want[k], got[k]) && ok
	}
	return ok
}

func (e *Expect) Steps() int { return e.steps }

func (e *Expect) Failures() []string { return e.failures }
