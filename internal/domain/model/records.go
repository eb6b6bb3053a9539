package model

import "time"

// PnLRecord is the decomposition of one instrument at one day.
type PnLRecord struct {
	Instrument string  `json:"instrument"`
	Unrealized float64 `json:"unrealized"`
	Realized   float64 `json:"realized"`
	Fees       float64 `json:"fees"`
	Income     float64 `json:"income"`
	FX         float64 `json:"fx"`
}

// Value returns the base currency total value of the record.
func (r PnLRecord) Value() float64 {
	fx := r.FX
	if fx == 0 {
		fx = 1
	}
	return (r.Fees + r.Unrealized + r.Realized + r.Income) / fx
}

// PerformancePoint is one point of a cumulative performance series, in percent.
type PerformancePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Holding is one valued position at a day.
type Holding struct {
	Instrument Instrument `json:"instrument"`
	Custodian  string     `json:"custodian"`
	Quantity   float64    `json:"quantity"` // net quantity including multiplier
	Close      float64    `json:"close"`    // local currency
	FX         float64    `json:"fx"`
	Value      float64    `json:"value"` // base currency
	Investable bool       `json:"investable"`
}

// Share is one slice of an allocation.
type Share struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// TopPosition is one row of the top positions table.
type TopPosition struct {
	Name       string     `json:"name"`
	AssetClass AssetClass `json:"asset_class"`
	Value      float64    `json:"value"`
	Percentage float64    `json:"percentage"`
}

// Position is one instrument line of the portfolio snapshot.
type Position struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Quantity float64 `json:"quantity"` // units, without multiplier
	Price    float64 `json:"price"`    // last close, local currency
	Value    float64 `json:"value"`    // base currency
	PnL      float64 `json:"pnl"`      // since inception, base currency
}

// PerpetualBucket keys the principal of bonds without a call date.
const PerpetualBucket = "Perpetual"
