package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wmrecon/internal/domain/model"
)

func TestTranchesCollapseSameDay(t *testing.T) {
	tr := Tranches([]model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(acme, day(2024, 1, 2), 5, 101),
		trade(acme, day(2024, 3, 1), -15, 110),
	})["ACME"]
	require.Len(t, tr, 2)
	assert.Equal(t, 15.0, tr[0].Position)
	assert.Equal(t, day(2024, 3, 1), tr[0].To)
	assert.True(t, tr[1].To.IsZero())
	assert.True(t, tr[0].Covers(day(2024, 3, 1)))
	assert.False(t, tr[0].Covers(day(2024, 1, 2)))
}

func TestDividendsAccrueToHoldingTranche(t *testing.T) {
	trades := []model.Trade{
		trade(acme, day(2024, 1, 2), 10, 100),
		trade(acme, day(2024, 2, 10), 10, 105),
		trade(acme, day(2024, 4, 1), -20, 110),
	}
	events := []model.DividendEvent{
		{InstrumentID: 1, ExDate: day(2024, 1, 15), Amount: 1},
		{InstrumentID: 1, ExDate: day(2024, 3, 15), Amount: 2},
		{InstrumentID: 1, ExDate: day(2024, 5, 15), Amount: 3}, // flat book
	}
	e := NewIncomeEngine("USD", fixedFX(nil))
	recs, err := e.Dividends(trades, events, day(2024, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.InDelta(t, 10, recs[0].Base, 1e-9)
	assert.InDelta(t, 40, recs[1].Base, 1e-9)

	recs, err = e.Dividends(trades, events, day(2024, 2, 1), day(2024, 12, 31))
	require.NoError(t, err)
	assert.Len(t, recs, 1, "event outside the range is dropped")
}

func TestDividendsConvertAtBase(t *testing.T) {
	eu := acme
	eu.ID, eu.Code, eu.Currency = 9, "SAP", "EUR"
	e := NewIncomeEngine("USD", fixedFX(map[string]float64{"EUR": 0.8}))
	recs, err := e.Dividends([]model.Trade{trade(eu, day(2024, 1, 2), 10, 100)},
		[]model.DividendEvent{{InstrumentID: 9, ExDate: day(2024, 2, 1), Amount: 2}}, day(2024, 1, 1), day(2024, 3, 1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 20, recs[0].Local, 1e-9)
	assert.InDelta(t, 25, recs[0].Base, 1e-9)
}

func TestCouponsNormalisedByPrincipal(t *testing.T) {
	trades := []model.Trade{trade(bund, day(2024, 1, 2), 1000, 99)}
	events := []model.CouponEvent{
		{InstrumentID: 2, Date: day(2024, 6, 30), Amount: 25, Principal: 500},
		{InstrumentID: 2, Date: day(2024, 12, 31), Amount: 25, Principal: 500},
	}
	e := NewIncomeEngine("EUR", fixedFX(nil))
	recs, err := e.Coupons(trades, events, day(2024, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.InDelta(t, 1000*25/1000.0, recs[0].Base, 1e-9)

	recs, err = e.Coupons(trades, []model.CouponEvent{{InstrumentID: 2, Date: day(2024, 6, 30), Amount: 25}}, day(2024, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, recs, "zero principal accrues nothing")
}

func TestCashIncomeMonthly(t *testing.T) {
	trades := []model.Trade{
		trade(cash, day(2024, 1, 10), 12000, 1),
		trade(cash, day(2024, 3, 5), -12000, 1),
	}
	e := NewIncomeEngine("USD", fixedFX(nil))
	recs, err := e.Cash(trades, day(2024, 1, 1), day(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, day(2024, 1, 31), recs[0].Date)
	assert.InDelta(t, 20, recs[0].Base, 1e-9)
	assert.InDelta(t, 20, recs[1].Base, 1e-9)
	assert.Equal(t, 0.0, recs[2].Base)

	assert.Equal(t, 0.0, ClassTotal(model.CashAndEquivalents, recs), "last month paid nothing")
	assert.InDelta(t, 40, ClassTotal(model.CashAndEquivalents, recs[:2]), 1e-9)
	assert.InDelta(t, 40, SumBase(recs), 1e-9)

	recs, err = e.Cash(trades, day(2024, 1, 1), day(2024, 3, 30))
	require.NoError(t, err)
	assert.Len(t, recs, 2, "partial last month is not paid")
}

func TestNonMarketIncomeAfterStartDate(t *testing.T) {
	trades := []model.Trade{trade(flat, day(2023, 12, 1), 2, 500000)}
	schedules := []model.NonMarketSchedule{{InstrumentID: 4, StartDate: day(2024, 1, 31), Amount: 12000, Currency: "GBP"}}
	e := NewIncomeEngine("USD", fixedFX(map[string]float64{"GBP": 0.8}))
	recs, err := e.NonMarket(trades, schedules, day(2024, 1, 1), day(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, day(2024, 2, 29), recs[0].Date)
	assert.InDelta(t, 2000, recs[0].Local, 1e-9)
	assert.InDelta(t, 2500, recs[0].Base, 1e-9)
}

func TestBucketByMonthCapsAtEnd(t *testing.T) {
	recs := []model.IncomeRecord{
		{Instrument: "ACME", Date: day(2024, 1, 15), Base: 10},
		{Instrument: "ACME", Date: day(2024, 1, 20), Base: 5},
		{Instrument: "ACME", Date: day(2024, 2, 3), Base: 7},
	}
	s := BucketByMonth(recs, day(2024, 2, 10))
	assert.InDelta(t, 15, s.Get(day(2024, 1, 31)), 1e-9)
	assert.InDelta(t, 7, s.Get(day(2024, 2, 10)), 1e-9)
	assert.Len(t, s, 2)
}

func TestLocalByInstrument(t *testing.T) {
	got := LocalByInstrument([]model.IncomeRecord{
		{Instrument: "ACME", Local: 1}, {Instrument: "ACME", Local: 2}, {Instrument: "DE10Y", Local: 4},
	})
	assert.Equal(t, map[string]float64{"ACME": 3, "DE10Y": 4}, got)
}
