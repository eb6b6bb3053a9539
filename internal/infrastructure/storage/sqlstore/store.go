// Package sqlstore reads the wealth management tables over database/sql.
// Queries are written with ? placeholders and rebound per dialect, and day
// bounds are bound as YYYY-MM-DD text so the same SQL runs on Postgres and
// on the SQLite fixture database.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Store implements port.MarketData and port.ResultRepository on one *sql.DB.
// The owner of the *sql.DB closes it.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) DB() *sql.DB { return s.db }

// Rebind rewrites ? placeholders into $n for Postgres.
func (s *Store) Rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var sb strings.Builder
	sb.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// nextDayParam is the exclusive upper bound of day.
func nextDayParam(day time.Time) string {
	return model.FormatDay(model.Day(day).AddDate(0, 0, 1))
}

// instrumentCode is the reporting code of instrument i: its smallest
// identifier, else its name.
const instrumentCode = `COALESCE((SELECT MIN(ii.instrument_code) FROM wm_instrument_identifier ii WHERE ii.instrument_id = i.id), i.name)`

// portfolioInstruments lists the instruments with a visible trade in portfolio ?.
const portfolioInstruments = `SELECT DISTINCT pt.instrument_id FROM wm_portfolio_trade pt WHERE pt.portfolio_id = ? AND NOT pt.hidden`

// ========== portfolios ==========

const portfolioSelect = `
SELECT p.id, p.name, c.code,
       (SELECT MIN(t.trade_time) FROM wm_portfolio_trade t WHERE t.portfolio_id = p.id AND NOT t.hidden)
FROM wm_portfolio p
JOIN wm_currency c ON c.id = p.currency_id`

func scanPortfolio(sc interface{ Scan(...any) error }) (model.Portfolio, error) {
	var (
		p     model.Portfolio
		first timeValue
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Currency, &first); err != nil {
		return p, err
	}
	if first.Valid {
		p.Inception = model.Day(first.Time)
	}
	return p, nil
}

func (s *Store) Portfolios(ctx context.Context) ([]model.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, s.Rebind(portfolioSelect+` ORDER BY p.name`))
	if err != nil {
		return nil, fmt.Errorf("query portfolios: %w", err)
	}
	defer rows.Close()

	var out []model.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Portfolio(ctx context.Context, name string) (model.Portfolio, error) {
	row := s.db.QueryRowContext(ctx, s.Rebind(portfolioSelect+` WHERE p.name = ?`), name)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%q: %w", name, model.ErrPortfolioNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("query portfolio %q: %w", name, err)
	}
	return p, nil
}

// ========== trades ==========

// signedQuantity applies the trade direction to the unsigned stored quantity.
// operation holds 'BUY'/'SELL' or 1/-1 depending on the loader.
const signedQuantity = `CASE WHEN UPPER(CAST(t.operation AS TEXT)) IN ('SELL', '-1') THEN -ABS(t.quantity) ELSE ABS(t.quantity) END`

const tradeSelect = `
SELECT t.id, t.portfolio_id, t.trade_time, ` + signedQuantity + `, t.price,
       COALESCE(t.commission, 0), COALESCE(t.trade_costs, 0), COALESCE(t.exchange_rate_value, 0),
       t.investable, COALESCE(cu.name, ''),
       i.id, ` + instrumentCode + `, i.name, ac.name, COALESCE(sc.name, ''), ic.code,
       COALESCE(i.point_value, 1), COALESCE(gr.name, ''), COALESCE(ins.name, ''),
       COALESCE(i.credit_rating, ''), COALESCE(co.name, ''),
       b.expiry, COALESCE(b.perpetual, FALSE)
FROM wm_portfolio_trade t
JOIN wm_instrument i ON i.id = t.instrument_id
JOIN wm_asset_class ac ON ac.id = i.asset_class_id
JOIN wm_currency ic ON ic.id = i.currency_id
LEFT JOIN wm_asset_subclass sc ON sc.id = i.asset_subclass_id
LEFT JOIN wm_geo_region gr ON gr.id = i.geo_region_id
LEFT JOIN wm_industry_sector ins ON ins.id = i.industry_sector_id
LEFT JOIN wm_company co ON co.id = i.company_id
LEFT JOIN wm_custodian cu ON cu.id = t.custodian_id
LEFT JOIN wm_bond_instrument b ON b.instrument_id = i.id
WHERE t.portfolio_id = ? AND NOT t.hidden
ORDER BY t.trade_time, ` + signedQuantity + ` DESC, t.price`

func (s *Store) Trades(ctx context.Context, portfolioID int64) ([]model.Trade, error) {
	rows, err := s.db.QueryContext(ctx, s.Rebind(tradeSelect), portfolioID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []model.Trade
	for rows.Next() {
		var (
			t      model.Trade
			at     timeValue
			expiry timeValue
			class  string
		)
		in := &t.Instrument
		if err := rows.Scan(
			&t.ID, &t.PortfolioID, &at, &t.Quantity, &t.Price,
			&t.Commission, &t.TradeCosts, &t.FXRate,
			&t.Investable, &t.Custodian,
			&in.ID, &in.Code, &in.Name, &class, &in.Subclass, &in.Currency,
			&in.Multiplier, &in.Region, &in.Industry,
			&in.Rating, &in.Issuer,
			&expiry, &in.Perpetual,
		); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Time = at.Time
		if expiry.Valid {
			in.Expiry = model.Day(expiry.Time)
		}
		in.AssetClass = model.AssetClass(class)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	model.SortTrades(out)
	return out, nil
}

// ========== prices ==========

func (s *Store) ClosePrices(ctx context.Context, portfolioID int64, day time.Time) (map[string]float64, error) {
	q := `
SELECT ` + instrumentCode + `, m.close_price
FROM wm_market_data m
JOIN wm_instrument i ON i.id = m.instrument_id
JOIN (
  SELECT md.instrument_id, MAX(md.close_timestamp) AS ts
  FROM wm_market_data md
  WHERE md.close_timestamp < ? AND md.instrument_id IN (` + portfolioInstruments + `)
  GROUP BY md.instrument_id
) last ON last.instrument_id = m.instrument_id AND last.ts = m.close_timestamp`

	rows, err := s.db.QueryContext(ctx, s.Rebind(q), nextDayParam(day), portfolioID)
	if err != nil {
		return nil, fmt.Errorf("query closes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			code string
			px   float64
		)
		if err := rows.Scan(&code, &px); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		out[code] = px
	}
	return out, rows.Err()
}

func (s *Store) FXRate(ctx context.Context, from, to string, day time.Time) (float64, error) {
	if from == to {
		return 1, nil
	}
	if strings.EqualFold(from, to) {
		return 100, nil
	}
	q := `
SELECT r.rate_value FROM wm_exchange_rate r
WHERE r.from_currency = ? AND r.to_currency = ? AND r.rate_timestamp < ?
ORDER BY r.rate_timestamp DESC
LIMIT 1`
	var rate float64
	err := s.db.QueryRowContext(ctx, s.Rebind(q), from, to, nextDayParam(day)).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s/%s at %s: %w", from, to, model.FormatDay(day), model.ErrFXRateNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query fx %s/%s: %w", from, to, err)
	}
	return rate, nil
}

func (s *Store) BenchmarkPrices(ctx context.Context, name string, from, to time.Time) (model.Series, error) {
	q := `
SELECT m.close_timestamp, m.close_price
FROM wm_market_data m
JOIN wm_stock_market_index x ON x.instrument_id = m.instrument_id
WHERE x.name = ? AND m.close_timestamp >= ? AND m.close_timestamp < ?
ORDER BY m.close_timestamp`
	rows, err := s.db.QueryContext(ctx, s.Rebind(q), name, model.FormatDay(from), nextDayParam(to))
	if err != nil {
		return nil, fmt.Errorf("query benchmark %s: %w", name, err)
	}
	defer rows.Close()

	out := model.Series{}
	for rows.Next() {
		var (
			at timeValue
			px float64
		)
		if err := rows.Scan(&at, &px); err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		out[model.Day(at.Time)] = px
	}
	return out, rows.Err()
}

// ========== income events ==========

func (s *Store) Dividends(ctx context.Context, portfolioID int64) ([]model.DividendEvent, error) {
	q := `
SELECT d.instrument_id, d.ex_date, d.amount
FROM wm_income_equity_dividends_data_view d
WHERE d.instrument_id IN (` + portfolioInstruments + `)
ORDER BY d.ex_date`
	rows, err := s.db.QueryContext(ctx, s.Rebind(q), portfolioID)
	if err != nil {
		return nil, fmt.Errorf("query dividends: %w", err)
	}
	defer rows.Close()

	var out []model.DividendEvent
	for rows.Next() {
		var (
			ev model.DividendEvent
			at timeValue
		)
		if err := rows.Scan(&ev.InstrumentID, &at, &ev.Amount); err != nil {
			return nil, fmt.Errorf("scan dividend: %w", err)
		}
		ev.ExDate = at.Time
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) Coupons(ctx context.Context, portfolioID int64) ([]model.CouponEvent, error) {
	q := `
SELECT c.instrument_id, c.coupon_date, c.amount, COALESCE(c.principal, 0)
FROM wm_income_credit_coupons_data c
WHERE c.instrument_id IN (` + portfolioInstruments + `)
ORDER BY c.coupon_date`
	rows, err := s.db.QueryContext(ctx, s.Rebind(q), portfolioID)
	if err != nil {
		return nil, fmt.Errorf("query coupons: %w", err)
	}
	defer rows.Close()

	var out []model.CouponEvent
	for rows.Next() {
		var (
			ev model.CouponEvent
			at timeValue
		)
		if err := rows.Scan(&ev.InstrumentID, &at, &ev.Amount, &ev.Principal); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		ev.Date = at.Time
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) NonMarketSchedules(ctx context.Context, portfolioID int64) ([]model.NonMarketSchedule, error) {
	q := `
SELECT n.instrument_id, n.start_date, n.amount, n.currency
FROM wm_income_non_market_data n
WHERE n.instrument_id IN (` + portfolioInstruments + `)
ORDER BY n.start_date`
	rows, err := s.db.QueryContext(ctx, s.Rebind(q), portfolioID)
	if err != nil {
		return nil, fmt.Errorf("query non-market schedules: %w", err)
	}
	defer rows.Close()

	var out []model.NonMarketSchedule
	for rows.Next() {
		var (
			sc model.NonMarketSchedule
			at timeValue
		)
		if err := rows.Scan(&sc.InstrumentID, &at, &sc.Amount, &sc.Currency); err != nil {
			return nil, fmt.Errorf("scan non-market schedule: %w", err)
		}
		sc.StartDate = at.Time
		out = append(out, sc)
	}
	return out, rows.Err()
}

var _ port.MarketData = (*Store)(nil)
