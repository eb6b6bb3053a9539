package service

import (
	"testing"

	"wmrecon/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotPositions(t *testing.T) {
	future := model.Instrument{ID: 9, Code: "ESZ4", Name: "e-mini S&P", AssetClass: model.Equities, Currency: "USD", Multiplier: 50}
	holdings := []model.Holding{
		{Instrument: acme, Custodian: "A", Quantity: 10, Close: 120, FX: 1, Value: 1200},
		{Instrument: acme, Custodian: "B", Quantity: 5, Close: 120, FX: 1, Value: 600},
		{Instrument: future, Custodian: "A", Quantity: 100, Close: 5000, FX: 1, Value: 500000},
		{Instrument: bund, Custodian: "A", Quantity: 20, Close: 99, FX: 0.9, Value: 2200},
		{Instrument: bund, Custodian: "B", Quantity: -20, Close: 99, FX: 0.9, Value: -2200},
	}
	pnl := map[string]float64{"ACME": 250.5, "ESZ4": -1000}

	got := SnapshotPositions(holdings, pnl)
	require.Len(t, got, 2, "bund is flat across custodians")

	assert.Equal(t, "Acme Corp", got[0].Name)
	assert.Equal(t, "USD", got[0].Currency)
	assert.InDelta(t, 15, got[0].Quantity, 1e-12)
	assert.InDelta(t, 120, got[0].Price, 1e-12)
	assert.InDelta(t, 1800, got[0].Value, 1e-9)
	assert.InDelta(t, 250.5, got[0].PnL, 1e-12)

	assert.Equal(t, "ESZ4", got[1].Code, "lower-case names sort with the rest")
	assert.InDelta(t, 2, got[1].Quantity, 1e-12, "multiplier taken out of the units")
	assert.InDelta(t, -1000, got[1].PnL, 1e-12)
}

func TestPrincipalRepayments(t *testing.T) {
	perp := model.Instrument{ID: 6, Code: "HSBC-PERP", Name: "HSBC Perp", AssetClass: model.Credit, Currency: "USD", Perpetual: true}
	matured := model.Instrument{ID: 7, Code: "UST23", Name: "UST 2023", AssetClass: model.Credit, Currency: "USD", Expiry: day(2024, 5, 1)}
	sold := model.Instrument{ID: 8, Code: "BTP30", Name: "BTP 2030", AssetClass: model.Credit, Currency: "EUR"}
	bund := bund
	bund.Expiry = day(2034, 2, 15)

	trades := []model.Trade{
		trade(bund, day(2024, 2, 1), 200, 98),
		trade(bund, day(2024, 3, 1), 100, 99),
		trade(perp, day(2024, 2, 1), 50, 100),
		trade(matured, day(2024, 1, 10), 70, 100),
		trade(sold, day(2024, 1, 10), 30, 100),
		trade(sold, day(2024, 4, 10), -30, 100),
		trade(acme, day(2024, 1, 10), 10, 100),
		trade(bund, day(2024, 7, 1), 1000, 99),
	}
	coupons := []model.CouponEvent{
		{InstrumentID: bund.ID, Date: day(2033, 2, 15), Amount: 2.5, Principal: 100},
		{InstrumentID: bund.ID, Date: day(2034, 2, 15), Amount: 2.5, Principal: 100},
		{InstrumentID: bund.ID, Date: day(2035, 2, 15), Amount: 2.5},
		{InstrumentID: perp.ID, Date: day(2029, 6, 1), Amount: 6, Principal: 100},
		{InstrumentID: matured.ID, Date: day(2025, 1, 1), Amount: 1, Principal: 100},
		{InstrumentID: sold.ID, Date: day(2030, 1, 1), Amount: 1, Principal: 100},
	}

	got, err := PrincipalRepayments(trades, coupons, day(2024, 6, 30), "USD", fixedFX(map[string]float64{"EUR": 0.9}))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.InDelta(t, 300/0.9, got["2034-12-31"], 1e-9, "last principal coupon year, trades after day ignored")
	assert.InDelta(t, 50, got[model.PerpetualBucket], 1e-12)

	_, err = PrincipalRepayments(trades, coupons, day(2024, 6, 30), "USD", fixedFX(nil))
	assert.ErrorIs(t, err, model.ErrFXRateNotFound)
}
