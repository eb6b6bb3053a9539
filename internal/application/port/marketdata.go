package port

import (
	"context"
	"time"

	"wmrecon/internal/domain/model"
)

// MarketData is the read-only source every computation pulls from.
// Implementations must be safe for concurrent use.
type MarketData interface {
	Portfolios(ctx context.Context) ([]model.Portfolio, error)
	// Portfolio returns model.ErrPortfolioNotFound for an unknown name.
	Portfolio(ctx context.Context, name string) (model.Portfolio, error)

	// Trades returns every visible trade of the portfolio with its instrument data.
	Trades(ctx context.Context, portfolioID int64) ([]model.Trade, error)
	// ClosePrices returns the latest close at or before day per instrument code, local currency.
	ClosePrices(ctx context.Context, portfolioID int64, day time.Time) (map[string]float64, error)
	// FXRate returns the latest from->to rate at or before day, or model.ErrFXRateNotFound.
	FXRate(ctx context.Context, from, to string, day time.Time) (float64, error)

	Dividends(ctx context.Context, portfolioID int64) ([]model.DividendEvent, error)
	Coupons(ctx context.Context, portfolioID int64) ([]model.CouponEvent, error)
	NonMarketSchedules(ctx context.Context, portfolioID int64) ([]model.NonMarketSchedule, error)

	BenchmarkPrices(ctx context.Context, benchmark string, from, to time.Time) (model.Series, error)
}
