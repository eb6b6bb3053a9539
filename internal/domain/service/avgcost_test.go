package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wmrecon/internal/domain/model"
)

func TestCostCurveWeightedMeanOfSameDirectionBuys(t *testing.T) {
	trades := []model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(acme, day(2024, 1, 3), 20, 130),
		trade(acme, day(2024, 1, 4), 30, 90),
	}
	c := BuildCostCurve(trades)
	want := (10*100.0 + 20*130.0 + 30*90.0) / 60
	assert.InDelta(t, want, c.At(day(2024, 1, 4)), 1e-9)
}

func TestCostCurveScenario(t *testing.T) {
	trades := []model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(acme, day(2024, 1, 3), 10, 110),
		trade(acme, day(2024, 1, 5), -5, 120),
	}
	c := BuildCostCurve(trades)
	assert.InDelta(t, 100, c.At(day(2024, 1, 2)), 1e-9)
	assert.InDelta(t, 105, c.At(day(2024, 1, 3)), 1e-9)
	assert.InDelta(t, 105, c.At(day(2024, 1, 4)), 1e-9, "forward filled between trades")
	assert.InDelta(t, 105, c.At(day(2024, 1, 5)), 1e-9, "sell carries the average")
	assert.InDelta(t, 105, c.At(day(2024, 6, 30)), 1e-9)
}

func TestCostCurveBeforeFirstTradeIsZero(t *testing.T) {
	c := BuildCostCurve([]model.Trade{trade(acme, day(2024, 1, 2), 10, 100)})
	assert.Equal(t, 0.0, c.At(day(2024, 1, 1)))
	assert.Equal(t, 100.0, c.At(day(2030, 1, 1)))

	var empty CostCurve
	assert.Equal(t, 0.0, empty.At(day(2024, 1, 1)))
}

func TestCostCurveCloseAndReopenResets(t *testing.T) {
	c := BuildCostCurve([]model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(acme, day(2024, 1, 3), -10, 120),
		trade(acme, day(2024, 1, 4), 4, 90),
	})
	assert.InDelta(t, 100, c.At(day(2024, 1, 3)), 1e-9)
	assert.InDelta(t, 90, c.At(day(2024, 1, 4)), 1e-9)
}

func TestCostCurveFlipCarriesForward(t *testing.T) {
	c := BuildCostCurve([]model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(acme, day(2024, 1, 3), -15, 120),
	})
	assert.InDelta(t, 100, c.At(day(2024, 1, 3)), 1e-9)
}

func TestCostCurveShortSideAveraging(t *testing.T) {
	c := BuildCostCurve([]model.Trade{
		trade(acme, day(2024, 1, 2), -10, 100),
		trade(acme, day(2024, 1, 3), -10, 80),
		trade(acme, day(2024, 1, 4), 5, 70),
	})
	assert.InDelta(t, 90, c.At(day(2024, 1, 3)), 1e-9)
	assert.InDelta(t, 90, c.At(day(2024, 1, 4)), 1e-9)
}

func TestCostCurveSameDayUsesTieBreakOrder(t *testing.T) {
	// sorted (quantity desc): +10@100, then -5@120; the day keeps the last state.
	c := BuildCostCurve([]model.Trade{
		trade(acme, day(2024, 1, 2), -5, 120),
		trade(acme, day(2024, 1, 2), 10, 100),
	})
	assert.Equal(t, 1, c.Len())
	assert.InDelta(t, 100, c.At(day(2024, 1, 2)), 1e-9)
}

func TestBuildCostCurvesPerInstrument(t *testing.T) {
	curves := BuildCostCurves([]model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(bund, day(2024, 1, 2), 1000, 98.5),
	})
	assert.Len(t, curves, 2)
	assert.InDelta(t, 98.5, curves["DE10Y"].At(day(2024, 2, 1)), 1e-9)
}
