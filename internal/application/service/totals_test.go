package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wmrecon/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalsDaily(t *testing.T) {
	md := newBook()
	svc := NewTotalsService(NewCalculator(md), 4)

	tot, err := svc.Totals(context.Background(), TotalsRequest{
		Portfolio: md.portfolio,
		Start:     day(2024, 1, 1),
		End:       day(2024, 1, 31),
		Options:   model.PortfolioOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.IntervalDaily, tot.Interval)
	require.Len(t, tot.Dates, 31)
	assert.Len(t, tot.NAV, 31)
	assert.Len(t, tot.PnL, 31)

	end := day(2024, 1, 31)
	assert.InDelta(t, 1875.0, tot.NAV[end], 1e-9)
	assert.Zero(t, tot.NAV[day(2024, 1, 30)])
	assert.InDelta(t, 300.0, tot.PnL[end], 1e-9)
	assert.InDelta(t, 40.0, tot.PnL[day(2024, 1, 15)], 1e-9)
	assert.InDelta(t, 40.0, tot.Income.Total()[end], 1e-9)
}

func TestTotalsMonthly(t *testing.T) {
	md := newBook()
	svc := NewTotalsService(NewCalculator(md), 0)

	tot, err := svc.Totals(context.Background(), TotalsRequest{
		Portfolio: md.portfolio,
		Start:     day(2024, 1, 1),
		End:       day(2024, 3, 15),
		Options:   model.PortfolioOptions(),
		Metrics:   []Metric{MetricNAV, MetricPnL},
	})
	require.NoError(t, err)
	assert.Equal(t, model.IntervalMonthly, tot.Interval)
	assert.Equal(t, []time.Time{day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 15)}, tot.Dates)
	assert.InDelta(t, 415.0, tot.PnL[day(2024, 1, 31)], 1e-9)
	assert.Zero(t, tot.PnL[day(2024, 2, 29)])
	assert.InDelta(t, 1875.0, tot.NAV[day(2024, 3, 15)], 1e-9)
	assert.Nil(t, tot.Income.Series)
}

func TestTotalsErrors(t *testing.T) {
	md := newBook()
	svc := NewTotalsService(NewCalculator(md), 2)

	_, err := svc.Totals(context.Background(), TotalsRequest{Portfolio: md.portfolio, Start: day(2024, 2, 1), End: day(2024, 1, 1)})
	assert.ErrorIs(t, err, model.ErrNoDates)

	boom := errors.New("db down")
	md.tradeErr = boom
	_, err = svc.Totals(context.Background(), TotalsRequest{Portfolio: md.portfolio, Start: day(2024, 1, 1), End: day(2024, 1, 5)})
	assert.ErrorIs(t, err, boom)
}
