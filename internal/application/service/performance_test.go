package service

import (
	"context"
	"testing"

	"wmrecon/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformancePortfolio(t *testing.T) {
	md := newBook()
	svc := NewPerformanceService(md, NewTotalsService(NewCalculator(md), 4))

	points, err := svc.Portfolio(context.Background(), md.portfolio, day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, points, 32)
	assert.Equal(t, day(2023, 12, 31), points[0].Date)
	assert.Zero(t, points[0].Value)
	assert.Zero(t, points[30].Value)

	last := points[31]
	assert.Equal(t, day(2024, 1, 31), last.Date)
	assert.InDelta(t, (40.0+300.0)/1875.0*100, last.Value, 1e-9)

	class, err := svc.Class(context.Background(), md.portfolio, model.Equities, day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, class, 32)
	assert.InDelta(t, last.Value, class[31].Value, 1e-9)
}

func TestPerformanceBenchmark(t *testing.T) {
	md := newBook()
	svc := NewPerformanceService(md, NewTotalsService(NewCalculator(md), 1))

	points, err := svc.Benchmark(context.Background(), "SPX", day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, points, 32)
	assert.Equal(t, day(2023, 12, 31), points[0].Date)
	assert.Zero(t, points[0].Value, "zero anchored on the close before start")
	assert.Zero(t, points[1].Value, "new year holiday carries the 12-29 close")
	assert.InDelta(t, 10.0, points[2].Value, 1e-9)
	assert.InDelta(t, -1.0, points[3].Value, 1e-9)
	assert.InDelta(t, -1.0, points[31].Value, 1e-9)
	assert.Equal(t, day(2024, 1, 31), points[31].Date)

	_, err = svc.Benchmark(context.Background(), "NDX", day(2024, 1, 1), day(2024, 1, 31))
	assert.ErrorIs(t, err, model.ErrBenchmarkNotFound)
}

func TestPerformanceBenchmarkMonthly(t *testing.T) {
	md := newBook()
	md.benchmarks["SPX"] = model.Series{
		day(2024, 1, 31): 100, day(2024, 2, 15): 104, day(2024, 2, 29): 105, day(2024, 3, 28): 126,
	}
	svc := NewPerformanceService(md, NewTotalsService(NewCalculator(md), 1))

	points, err := svc.Benchmark(context.Background(), "SPX", day(2024, 2, 10), day(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, day(2024, 1, 31), points[0].Date, "zero before the month start of the window")
	assert.Equal(t, day(2024, 2, 29), points[1].Date)
	assert.InDelta(t, 5.0, points[1].Value, 1e-9)
	assert.Equal(t, day(2024, 3, 31), points[2].Date)
	assert.InDelta(t, 26.0, points[2].Value, 1e-9)
}
