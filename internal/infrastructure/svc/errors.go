package svc

import "errors"

// ErrNoPortfolios is returned when the source holds no portfolio to check.
var ErrNoPortfolios = errors.New("no portfolios to check")
