package service

import (
	"context"
	"testing"

	"wmrecon/internal/domain/model"
	dsvc "wmrecon/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationWealth(t *testing.T) {
	md := newBook()
	svc := NewAllocationService(NewCalculator(md))

	w, err := svc.Wealth(context.Background(), md.portfolio, day(2024, 1, 31))
	require.NoError(t, err)
	assert.InDelta(t, 1875.0, w.Total, 1e-9)
	assert.InDelta(t, 1875.0, w.Investable, 1e-9)
	// the June dividend on 15 shares is the only income of the next year
	assert.InDelta(t, 15.0, w.Income, 1e-9)
	assert.InDelta(t, 0.8, w.IncomeYield, 1e-9)
}

func TestAllocationShares(t *testing.T) {
	md := newBook()
	md.trades[2].Investable = false
	svc := NewAllocationService(NewCalculator(md))
	ctx := context.Background()

	w, err := svc.Wealth(ctx, md.portfolio, day(2024, 1, 31))
	require.NoError(t, err)
	assert.InDelta(t, 2500.0, w.Investable, 1e-9)

	shares, err := svc.Allocation(ctx, md.portfolio, day(2024, 1, 31), dsvc.ByCurrency)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "USD", shares[0].Name)
	assert.InDelta(t, 100.0, shares[0].Percentage, 1e-9)

	top, err := svc.TopPositions(ctx, md.portfolio, day(2024, 1, 31), dsvc.TopQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Acme Corp", top[0].Name)
	assert.Equal(t, model.Equities, top[0].AssetClass)
	assert.InDelta(t, 1875.0, top[0].Value, 1e-9)
}
