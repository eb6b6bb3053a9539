package model

import (
	"fmt"
	"strings"
)

// ========== Asset classes ==========

// AssetClass is the top level classification of an instrument.
type AssetClass string

const (
	Alternatives       AssetClass = "Alternatives"
	CashAndEquivalents AssetClass = "Cash and Equivalents"
	Commodities        AssetClass = "Commodities"
	Credit             AssetClass = "Credit"
	Equities           AssetClass = "Equities"
	RealAssets         AssetClass = "Real Assets"
	RealEstate         AssetClass = "Real Estate"
)

// AssetClasses lists every asset class in reporting order.
var AssetClasses = []AssetClass{
	Alternatives, CashAndEquivalents, Commodities, Credit, Equities, RealAssets, RealEstate,
}

// ParseAssetClass matches a class name case-insensitively.
func ParseAssetClass(s string) (AssetClass, error) {
	for _, c := range AssetClasses {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAssetClass, s)
}

// IsAssetClass reports whether name is a top level class (not a subclass).
func IsAssetClass(name string) bool {
	_, err := ParseAssetClass(name)
	return err == nil
}

// ========== Interval ==========

type Interval int

const (
	IntervalNone Interval = iota
	IntervalDaily
	IntervalMonthly
)

func (i Interval) String() string {
	switch i {
	case IntervalDaily:
		return "Daily"
	case IntervalMonthly:
		return "Monthly"
	default:
		return ""
	}
}

// ParseInterval accepts "", "Daily" and "Monthly" (any case).
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return IntervalNone, nil
	case "daily":
		return IntervalDaily, nil
	case "monthly":
		return IntervalMonthly, nil
	}
	return IntervalNone, fmt.Errorf("%w: %q", ErrUnknownInterval, s)
}

// Series reports whether results are keyed per bucket rather than a single total.
func (i Interval) Series() bool { return i != IntervalNone }

// ========== Options ==========

// Options selects how NAV, P&L and income results are shaped.
type Options struct {
	Aggregated bool
	All        bool
	Specific   bool
	Detailed   bool
	Interval   Interval
	Classes    []AssetClass // nil selects every class
}

// PortfolioOptions is the default when no asset class is requested: every flag set.
func PortfolioOptions() Options {
	return Options{Aggregated: true, All: true, Specific: true, Detailed: true}
}

// ClassOptions restricts computation to the given classes with every flag cleared.
func ClassOptions(classes ...AssetClass) Options {
	return Options{Classes: classes}
}

func (o Options) WithInterval(i Interval) Options {
	o.Interval = i
	return o
}

// Includes reports whether class c is selected.
func (o Options) Includes(c AssetClass) bool {
	if len(o.Classes) == 0 {
		return true
	}
	for _, x := range o.Classes {
		if x == c {
			return true
		}
	}
	return false
}

// FirstClass returns the first selected class in reporting order.
func (o Options) FirstClass() (AssetClass, bool) {
	for _, c := range AssetClasses {
		if len(o.Classes) > 0 && o.Includes(c) {
			return c, true
		}
	}
	return "", false
}

// Shape is the layout of a computed result.
type Shape int

const (
	ShapeTotal        Shape = iota // one portfolio value
	ShapeSingleClass               // one asset class value
	ShapeByClass                   // value per asset class
	ShapeByInstrument              // value per instrument
)

func (s Shape) String() string {
	switch s {
	case ShapeTotal:
		return "total"
	case ShapeSingleClass:
		return "class"
	case ShapeByClass:
		return "by_class"
	default:
		return "by_instrument"
	}
}

// IncomeShape is the income decision table.
func (o Options) IncomeShape() Shape {
	switch {
	case !o.Aggregated:
		return ShapeByInstrument
	case o.All:
		return ShapeTotal
	case o.Specific:
		return ShapeSingleClass
	default:
		return ShapeByClass
	}
}

// PnLShape is the P&L decision table.
func (o Options) PnLShape() Shape {
	switch {
	case o.All && o.Aggregated:
		return ShapeTotal
	case o.All:
		return ShapeByClass
	case o.Detailed:
		return ShapeByInstrument
	default:
		return ShapeSingleClass
	}
}

// NAVShape is the NAV decision table.
func (o Options) NAVShape() Shape {
	switch {
	case o.All && o.Aggregated:
		return ShapeTotal
	case o.All:
		return ShapeByClass
	default:
		return ShapeSingleClass
	}
}
