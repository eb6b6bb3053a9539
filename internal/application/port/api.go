package port

import (
	"context"
	"time"

	"wmrecon/internal/domain/model"
)

// Wealth is the wealth widget of a portfolio.
type Wealth struct {
	Total       float64
	Investable  float64
	Income      float64 // projected annual income
	IncomeYield float64 // percent of total
}

// PerformanceQuery selects a performance series.
type PerformanceQuery struct {
	PortfolioID int64
	From        time.Time
	To          time.Time
	Detail      string // "Monthly" or "Daily"
	Benchmark   string // index name, empty for the portfolio itself
}

// TopQuery selects a top positions table.
type TopQuery struct {
	PortfolioID int64
	Number      int
	AssetClass  string // empty for every class
	ByIssuer    bool
	Ascending   bool
}

// TradeRow is one line of the trades blotter. Quantity and Amount are signed
// by the operation.
type TradeRow struct {
	model.Trade
	Amount float64
}

// WealthAPI is the reporting API under test.
type WealthAPI interface {
	Wealth(ctx context.Context, portfolioID int64) (Wealth, error)
	Performance(ctx context.Context, q PerformanceQuery) ([]model.PerformancePoint, error)
	// Profit returns the period P&L per asset class.
	Profit(ctx context.Context, portfolioID int64, from, to time.Time) (map[string]float64, error)
	// Income returns the income report: asset class -> month end -> amount.
	Income(ctx context.Context, portfolioID int64, from, to time.Time) (map[string]model.Series, error)
	// Allocation returns name -> percentage along one dimension.
	Allocation(ctx context.Context, portfolioID int64, dimension string) (map[string]float64, error)
	TopPositions(ctx context.Context, q TopQuery) ([]model.TopPosition, error)
	// Principal returns the outstanding principal per call year end, plus
	// model.PerpetualBucket.
	Principal(ctx context.Context, portfolioID int64) (map[string]float64, error)
	// Snapshot returns the open positions, ordered by name.
	Snapshot(ctx context.Context, portfolioID int64) ([]model.Position, error)
	Trades(ctx context.Context, portfolioID int64) ([]TradeRow, error)
	// History returns the NAV per asset class: class -> day -> value.
	History(ctx context.Context, portfolioID int64, from, to time.Time) (map[string]model.Series, error)
}
