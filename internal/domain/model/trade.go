package model

import (
	"math"
	"sort"
	"strings"
	"time"
)

// ========== Portfolio ==========

// Portfolio is the metadata of a reported book.
type Portfolio struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`  // base currency
	Inception time.Time `json:"inception"` // first trade day
}

// ========== Instrument ==========

// Instrument carries the reference data attached to every trade row.
type Instrument struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	AssetClass AssetClass `json:"asset_class"`
	Subclass   string     `json:"asset_subclass"`
	Currency   string     `json:"currency"`
	Multiplier float64    `json:"multiplier"` // point value
	Region     string     `json:"region"`
	Industry   string     `json:"industry"`
	Rating     string     `json:"credit_rating"`
	Issuer     string     `json:"issuer"`
	Expiry     time.Time  `json:"expiry"` // bonds, zero when open ended
	Perpetual  bool       `json:"perpetual"`
}

// PointValue returns the contract multiplier, 1 when unset.
func (i Instrument) PointValue() float64 {
	if i.Multiplier == 0 {
		return 1
	}
	return i.Multiplier
}

// CashInstrument is the instrument code that accrues cash income.
const CashInstrument = "USDCash"

// ========== Trade ==========

// Trade is one confirmed, visible portfolio trade.
type Trade struct {
	ID          int64      `json:"id"`
	PortfolioID int64      `json:"portfolio_id"`
	Instrument  Instrument `json:"instrument"`
	Time        time.Time  `json:"trade_time"`
	Quantity    float64    `json:"quantity"` // signed: buys > 0, sells < 0
	Price       float64    `json:"price"`
	Commission  float64    `json:"commission"`
	TradeCosts  float64    `json:"trade_costs"`
	FXRate      float64    `json:"fx_trade"` // base -> instrument rate booked with the trade
	Custodian   string     `json:"custodian"`
	Investable  bool       `json:"investable"`
}

// Amount is the signed gross value of the trade in instrument currency.
func (t Trade) Amount() float64 {
	return t.Price * t.Quantity * t.Instrument.PointValue()
}

// Day returns the calendar day of the trade.
func (t Trade) Day() time.Time { return Day(t.Time) }

// Fees returns the booked fees in instrument currency.
func (t Trade) Fees() float64 {
	return (t.Commission + t.TradeCosts) * math.Abs(t.Quantity)
}

// BookedFX returns the trade FX rate, 1 when the row has none.
func (t Trade) BookedFX() float64 {
	if t.FXRate == 0 {
		return 1
	}
	return t.FXRate
}

// SortTrades orders trades by (time, quantity desc, price).
func SortTrades(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Price < b.Price
	})
}

// GroupByInstrument partitions trades by instrument code, each partition sorted.
func GroupByInstrument(trades []Trade) map[string][]Trade {
	out := make(map[string][]Trade)
	for _, t := range trades {
		out[t.Instrument.Code] = append(out[t.Instrument.Code], t)
	}
	for _, ts := range out {
		SortTrades(ts)
	}
	return out
}

// Instruments indexes the instrument reference data found in trades.
func Instruments(trades []Trade) map[string]Instrument {
	out := make(map[string]Instrument)
	for _, t := range trades {
		out[t.Instrument.Code] = t.Instrument
	}
	return out
}

// InstrumentCodes returns the instrument codes sorted case-insensitively.
func InstrumentCodes[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}
