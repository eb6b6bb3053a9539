package reconcile

import (
	"math"
	"testing"

	"wmrecon/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestExpectEqualRounds(t *testing.T) {
	tests := []struct {
		name      string
		want, got float64
		ok        bool
	}{
		{"same", 10, 10, true},
		{"below half", 1.004, 1.0, true},
		{"half away from zero", 1.005, 1.0, false},
		{"negative half", -2.345, -2.35, true},
		{"different", 1.01, 1.02, false},
		{"nan", math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpect(2)
			assert.Equal(t, tt.ok, e.Equal("v", tt.want, tt.got))
			assert.Equal(t, 1, e.Steps())
			if tt.ok {
				assert.Empty(t, e.Failures())
			} else {
				assert.Len(t, e.Failures(), 1)
			}
		})
	}
}

func TestExpectKeepsGoing(t *testing.T) {
	e := NewExpect(2)
	e.Equal("a", 1, 2)
	e.Truef(false, "b broken")
	e.Equal("c", 3, 3)
	assert.Equal(t, 3, e.Steps())
	assert.Equal(t, []string{"a: expected 1.00, got 2.00", "b broken"}, e.Failures())
}

func TestExpectEqualSeries(t *testing.T) {
	jan, feb, mar := model.Date(2024, 1, 31), model.Date(2024, 2, 29), model.Date(2024, 3, 31)

	e := NewExpect(2)
	ok := e.EqualSeries("perf", model.Series{jan: 1.5, feb: 2}, model.Series{jan: 1.499, feb: 2, mar: 0})
	assert.True(t, ok)
	assert.Equal(t, 3, e.Steps())

	e = NewExpect(2)
	ok = e.EqualSeries("perf", model.Series{jan: 1.5, feb: 2}, model.Series{jan: 1.5, mar: 4})
	assert.False(t, ok)
	assert.Equal(t, []string{
		"perf 2024-02-29: missing in response",
		"perf 2024-03-31: expected 0.00, got 4.00",
	}, e.Failures())
}

func TestExpectEqualMap(t *testing.T) {
	e := NewExpect(1)
	ok := e.EqualMap("alloc", map[string]float64{"USD": 60, "EUR": 40}, map[string]float64{"USD": 60, "GBP": 40})
	assert.False(t, ok)
	assert.Equal(t, 3, e.Steps())
	assert.Equal(t, []string{"alloc EUR: expected 40.0, got 0.0", "alloc GBP: expected 0.0, got 40.0"}, e.Failures())
}

func TestExpectEqualAt(t *testing.T) {
	e := NewExpect(2)
	assert.True(t, e.EqualAt("value", 1875.4, 1875.2, 0))
	assert.False(t, e.EqualAt("value", 1875.6, 1875.2, 0))
	assert.False(t, e.EqualAt("perf", 1.2344, 1.2346, 3))
	assert.Equal(t, 3, e.Steps())
	assert.Equal(t, []string{"value: expected 1876, got 1875", "perf: expected 1.234, got 1.235"}, e.Failures())
}

func TestExpectWithin(t *testing.T) {
	e := NewExpect(2)
	assert.True(t, e.Within("pnl", 415.0, 415.1, 0.1))
	assert.True(t, e.Within("pnl", 415.0, 414.904, 0.1), "rounds to 414.90 before the distance")
	assert.False(t, e.Within("pnl", 415.0, 415.12, 0.1))
	assert.False(t, e.Within("pnl", math.Inf(1), 415, 0.1))
	assert.Equal(t, 4, e.Steps())
	assert.Equal(t, "pnl: expected 415.00 +/- 0.1, got 415.12", e.Failures()[0])
}
