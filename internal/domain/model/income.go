package model

import "time"

// DividendEvent is an equity dividend per share.
type DividendEvent struct {
	InstrumentID int64     `json:"instrument_id"`
	ExDate       time.Time `json:"ex_date"`
	Amount       float64   `json:"amount"`
}

// CouponEvent is a bond coupon payment; amounts are normalised by the
// instrument's total principal.
type CouponEvent struct {
	InstrumentID int64     `json:"instrument_id"`
	Date         time.Time `json:"coupon_date"`
	Amount       float64   `json:"amount"`
	Principal    float64   `json:"principal"`
}

// NonMarketSchedule is a flat annual income schedule (real-estate-like).
type NonMarketSchedule struct {
	InstrumentID int64     `json:"instrument_id"`
	StartDate    time.Time `json:"start_date"`
	Amount       float64   `json:"amount"` // annual, per unit
	Currency     string    `json:"currency"`
}

// IncomeRecord is one income accrual in local and base currency.
type IncomeRecord struct {
	Instrument string     `json:"instrument"`
	AssetClass AssetClass `json:"asset_class"`
	Date       time.Time  `json:"date"`
	Local      float64    `json:"local"`
	Base       float64    `json:"base"`
}

// CashYieldRate is the flat annual rate paid on cash positions.
const CashYieldRate = 0.02
