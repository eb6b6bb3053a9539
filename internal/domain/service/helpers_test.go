package service

import (
	"time"

	"wmrecon/internal/domain/model"
)

var (
	acme = model.Instrument{ID: 1, Code: "ACME", Name: "Acme Corp", AssetClass: model.Equities, Subclass: "Large Cap", Currency: "USD", Multiplier: 1, Region: "North America", Issuer: "Acme"}
	bund = model.Instrument{ID: 2, Code: "DE10Y", Name: "Bund 2034", AssetClass: model.Credit, Subclass: "Government", Currency: "EUR", Multiplier: 1, Region: "Europe", Rating: "AAA", Issuer: "Germany"}
	cash = model.Instrument{ID: 3, Code: model.CashInstrument, Name: "US Dollar", AssetClass: model.CashAndEquivalents, Currency: "USD", Multiplier: 1}
	flat = model.Instrument{ID: 4, Code: "LDN-FLAT", Name: "London Flat", AssetClass: model.RealEstate, Currency: "GBP", Multiplier: 1, Region: "Europe"}
)

func day(y int, m time.Month, d int) time.Time { return model.Date(y, m, d) }

func trade(in model.Instrument, on time.Time, qty, price float64) model.Trade {
	return model.Trade{Instrument: in, Time: on, Quantity: qty, Price: price, FXRate: 1, Investable: true}
}

// fixedFX converts with a constant rate per target currency; 1 for the base.
func fixedFX(rates map[string]float64) FXFunc {
	return func(from, to string, _ time.Time) (float64, error) {
		if from == to {
			return 1, nil
		}
		r, ok := rates[to]
		if !ok {
			return 0, model.ErrFXRateNotFound
		}
		return r, nil
	}
}
