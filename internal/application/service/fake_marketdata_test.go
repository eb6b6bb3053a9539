package service

import (
	"context"
	"strings"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

var _ port.MarketData = (*fakeMarketData)(nil)

// fakeMarketData serves a fixed book for one portfolio.
type fakeMarketData struct {
	portfolio  model.Portfolio
	trades     []model.Trade
	closes     map[string]model.Series
	rates      map[string]float64 // "FROM/TO" -> rate
	dividends  []model.DividendEvent
	coupons    []model.CouponEvent
	schedules  []model.NonMarketSchedule
	benchmarks map[string]model.Series
	tradeErr   error
}

func (f *fakeMarketData) Portfolios(context.Context) ([]model.Portfolio, error) {
	return []model.Portfolio{f.portfolio}, nil
}

func (f *fakeMarketData) Portfolio(_ context.Context, name string) (model.Portfolio, error) {
	if name != f.portfolio.Name {
		return model.Portfolio{}, model.ErrPortfolioNotFound
	}
	return f.portfolio, nil
}

func (f *fakeMarketData) Trades(context.Context, int64) ([]model.Trade, error) {
	if f.tradeErr != nil {
		return nil, f.tradeErr
	}
	out := make([]model.Trade, len(f.trades))
	copy(out, f.trades)
	return out, nil
}

func (f *fakeMarketData) ClosePrices(_ context.Context, _ int64, day time.Time) (map[string]float64, error) {
	out := make(map[string]float64)
	for code, s := range f.closes {
		for _, d := range s.Dates() {
			if d.After(day) {
				break
			}
			out[code] = s[d]
		}
	}
	return out, nil
}

func (f *fakeMarketData) FXRate(_ context.Context, from, to string, _ time.Time) (float64, error) {
	switch {
	case from == to:
		return 1, nil
	case strings.EqualFold(from, to):
		return 100, nil
	}
	r, ok := f.rates[from+"/"+to]
	if !ok {
		return 0, model.ErrFXRateNotFound
	}
	return r, nil
}

func (f *fakeMarketData) Dividends(context.Context, int64) ([]model.DividendEvent, error) {
	return f.dividends, nil
}

func (f *fakeMarketData) Coupons(context.Context, int64) ([]model.CouponEvent, error) {
	return f.coupons, nil
}

func (f *fakeMarketData) NonMarketSchedules(context.Context, int64) ([]model.NonMarketSchedule, error) {
	return f.schedules, nil
}

func (f *fakeMarketData) BenchmarkPrices(_ context.Context, name string, from, to time.Time) (model.Series, error) {
	out := model.Series{}
	for d, v := range f.benchmarks[name] {
		if !d.Before(from) && !d.After(to) {
			out[d] = v
		}
	}
	return out, nil
}

var acme = model.Instrument{ID: 1, Code: "ACME", Name: "Acme Corp", AssetClass: model.Equities, Subclass: "Large Cap", Currency: "USD", Multiplier: 1, Region: "North America", Issuer: "Acme"}

func day(y int, m time.Month, d int) time.Time { return model.Date(y, m, d) }

// newBook is a USD portfolio holding Acme: buys 10@100 and 10@110, sells
// 5@120, a 2.00 dividend in January and a 1.00 dividend in June.
func newBook() *fakeMarketData {
	mk := func(on time.Time, qty, px float64) model.Trade {
		return model.Trade{PortfolioID: 7, Instrument: acme, Time: on, Quantity: qty, Price: px, FXRate: 1, Custodian: "Custody Bank", Investable: true}
	}
	return &fakeMarketData{
		portfolio: model.Portfolio{ID: 7, Name: "Growth", Currency: "USD", Inception: day(2024, 1, 2)},
		trades: []model.Trade{
			mk(day(2024, 1, 2), 10, 100),
			mk(day(2024, 1, 10), 10, 110),
			mk(day(2024, 1, 20), -5, 120),
		},
		closes: map[string]model.Series{"ACME": {day(2024, 1, 31): 125}},
		dividends: []model.DividendEvent{
			{InstrumentID: 1, ExDate: day(2024, 1, 15), Amount: 2},
			{InstrumentID: 1, ExDate: day(2024, 6, 15), Amount: 1},
		},
		benchmarks: map[string]model.Series{
			"SPX": {day(2023, 12, 29): 100, day(2024, 1, 2): 110, day(2024, 1, 3): 99},
		},
	}
}
