package sqlite

import (
	"context"
	"time"

	"wmrecon/internal/domain/model"
)

// DemoFixture is a one portfolio book covering every income class: a US
// equity, a Bund, USD cash, a London flat and an index benchmark.
func DemoFixture() Fixture {
	acme := model.Instrument{ID: 1, Code: "ACME", Name: "Acme Corp", AssetClass: model.Equities, Subclass: "Large Cap", Currency: "USD", Multiplier: 1, Region: "North America", Industry: "Technology", Issuer: "Acme Corp"}
	bund := model.Instrument{ID: 2, Code: "DE10Y", Name: "Bund 2034", AssetClass: model.Credit, Subclass: "Government", Currency: "EUR", Multiplier: 1, Region: "Europe", Rating: "AAA", Issuer: "Federal Republic of Germany", Expiry: model.Date(2034, 2, 15)}
	cash := model.Instrument{ID: 3, Code: model.CashInstrument, Name: "US Dollar", AssetClass: model.CashAndEquivalents, Currency: "USD", Multiplier: 1}
	flat := model.Instrument{ID: 4, Code: "LDN-FLAT", Name: "London Flat", AssetClass: model.RealEstate, Subclass: "Residential", Currency: "GBP", Multiplier: 1, Region: "Europe"}
	spx := model.Instrument{ID: 5, Code: "SPX", Name: "S&P 500", AssetClass: model.Equities, Currency: "USD", Multiplier: 1}

	d := model.Date
	tr := func(in model.Instrument, on time.Time, qty, px, fx float64, investable bool) FixtureTrade {
		return FixtureTrade{Trade: model.Trade{
			PortfolioID: 1, Instrument: in, Time: on.Add(10 * time.Hour), Quantity: qty, Price: px,
			Commission: 0.01, FXRate: fx, Custodian: "Northern Custody", Investable: investable,
		}}
	}

	f := Fixture{
		Portfolios:  []model.Portfolio{{ID: 1, Name: "Balanced", Currency: "USD"}},
		Instruments: []model.Instrument{acme, bund, cash, flat, spx},
		Trades: []FixtureTrade{
			tr(cash, d(2024, 1, 2), 50000, 1, 1, true),
			tr(acme, d(2024, 1, 5), 100, 150, 1, true),
			tr(bund, d(2024, 2, 1), 200, 98, 0.92, true),
			tr(acme, d(2024, 3, 10), 50, 160, 1, true),
			tr(flat, d(2024, 4, 1), 1, 450000, 0.79, false),
			tr(acme, d(2024, 6, 14), -30, 170, 1, true),
		},
		Indices: []FixtureIndex{{InstrumentID: spx.ID, Name: "S&P 500"}},
		Dividends: []model.DividendEvent{
			{InstrumentID: acme.ID, ExDate: d(2024, 2, 15), Amount: 0.5},
			{InstrumentID: acme.ID, ExDate: d(2024, 5, 15), Amount: 0.5},
			{InstrumentID: acme.ID, ExDate: d(2024, 8, 15), Amount: 0.55},
			{InstrumentID: acme.ID, ExDate: d(2024, 11, 15), Amount: 0.55},
		},
		Coupons: []model.CouponEvent{
			{InstrumentID: bund.ID, Date: d(2024, 8, 15), Amount: 2.5, Principal: 100},
		},
		NonMarket: []model.NonMarketSchedule{
			{InstrumentID: flat.ID, StartDate: d(2024, 4, 1), Amount: 24000, Currency: "GBP"},
		},
	}

	hidden := tr(acme, d(2024, 5, 1), 999, 1, 1, true)
	hidden.Hidden = true
	f.Trades = append(f.Trades, hidden)

	for m := time.January; m <= time.December; m++ {
		at := model.MonthEnd(d(2024, m, 1)).Add(21 * time.Hour)
		k := float64(m)
		f.Closes = append(f.Closes,
			FixtureClose{InstrumentID: acme.ID, At: at, Price: 150 + 2*k},
			FixtureClose{InstrumentID: bund.ID, At: at, Price: 98 + 0.2*k},
			FixtureClose{InstrumentID: cash.ID, At: at, Price: 1},
			FixtureClose{InstrumentID: flat.ID, At: at, Price: 450000},
			FixtureClose{InstrumentID: spx.ID, At: at, Price: 4700 + 50*k},
		)
		first := d(2024, m, 1)
		f.Rates = append(f.Rates,
			FixtureRate{From: "USD", To: "EUR", At: first, Rate: 0.92 - 0.002*k},
			FixtureRate{From: "USD", To: "GBP", At: first, Rate: 0.79},
		)
	}
	return f
}

// SeedDemo writes the demo book unless the database already holds portfolios.
func (r *Repo) SeedDemo(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wm_portfolio`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, r.Seed(ctx, DemoFixture())
}
