package model

import "errors"

var (
	ErrFXRateNotFound    = errors.New("fx rate not found")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrNoDates           = errors.New("empty date range")
	ErrUnknownAssetClass = errors.New("unknown asset class")
	ErrUnknownInterval   = errors.New("unknown interval")
	ErrBenchmarkNotFound = errors.New("benchmark not found")
)
