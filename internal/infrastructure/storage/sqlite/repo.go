package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"wmrecon/internal/application/port"
	"wmrecon/internal/infrastructure/storage/sqlstore"
)

// Repo is the SQLite fixture database: the wealth management tables plus the
// reconciliation result tables.
type Repo struct {
	*sqlstore.Store
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{Store: sqlstore.New(db, sqlstore.DialectSQLite), db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) GetDB() *sql.DB {
	return r.db
}

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS wm_currency (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS wm_asset_class (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS wm_asset_subclass (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS wm_geo_region (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS wm_industry_sector (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS wm_company (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS wm_custodian (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS wm_portfolio (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  currency_id INTEGER NOT NULL REFERENCES wm_currency(id)
);

CREATE TABLE IF NOT EXISTS wm_instrument (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  currency_id INTEGER NOT NULL REFERENCES wm_currency(id),
  asset_class_id INTEGER NOT NULL REFERENCES wm_asset_class(id),
  asset_subclass_id INTEGER REFERENCES wm_asset_subclass(id),
  point_value REAL,
  geo_region_id INTEGER REFERENCES wm_geo_region(id),
  industry_sector_id INTEGER REFERENCES wm_industry_sector(id),
  credit_rating TEXT,
  company_id INTEGER REFERENCES wm_company(id)
);
CREATE TABLE IF NOT EXISTS wm_bond_instrument (
  instrument_id INTEGER PRIMARY KEY REFERENCES wm_instrument(id),
  expiry TEXT,
  perpetual INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS wm_instrument_identifier (
  instrument_id INTEGER NOT NULL REFERENCES wm_instrument(id),
  instrument_code TEXT NOT NULL,
  UNIQUE(instrument_id, instrument_code)
);

CREATE TABLE IF NOT EXISTS wm_portfolio_trade (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  portfolio_id INTEGER NOT NULL REFERENCES wm_portfolio(id),
  instrument_id INTEGER NOT NULL REFERENCES wm_instrument(id),
  trade_time TEXT NOT NULL,
  quantity REAL NOT NULL,
  operation TEXT NOT NULL,
  price REAL NOT NULL,
  commission REAL,
  trade_costs REAL,
  exchange_rate_value REAL,
  custodian_id INTEGER REFERENCES wm_custodian(id),
  investable INTEGER NOT NULL DEFAULT 1,
  hidden INTEGER NOT NULL DEFAULT 0,
  notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_trade_portfolio ON wm_portfolio_trade(portfolio_id, trade_time);

CREATE TABLE IF NOT EXISTS wm_market_data (
  instrument_id INTEGER NOT NULL REFERENCES wm_instrument(id),
  close_timestamp TEXT NOT NULL,
  close_price REAL NOT NULL,
  UNIQUE(instrument_id, close_timestamp)
);
CREATE TABLE IF NOT EXISTS wm_exchange_rate (
  rate_timestamp TEXT NOT NULL,
  from_currency TEXT NOT NULL,
  to_currency TEXT NOT NULL,
  rate_value REAL NOT NULL,
  UNIQUE(from_currency, to_currency, rate_timestamp)
);
CREATE TABLE IF NOT EXISTS wm_stock_market_index (
  instrument_id INTEGER NOT NULL REFERENCES wm_instrument(id),
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS wm_income_equity_dividends_data_view (
  instrument_id INTEGER NOT NULL,
  ex_date TEXT NOT NULL,
  amount REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS wm_income_credit_coupons_data (
  instrument_id INTEGER NOT NULL,
  coupon_date TEXT NOT NULL,
  amount REAL NOT NULL,
  principal REAL
);
CREATE TABLE IF NOT EXISTS wm_income_non_market_data (
  instrument_id INTEGER NOT NULL,
  start_date TEXT NOT NULL,
  amount REAL NOT NULL,
  currency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recon_runs (
  id TEXT PRIMARY KEY,
  env TEXT NOT NULL,
  as_of TEXT NOT NULL,
  started_at TEXT NOT NULL,
  finished_at TEXT,
  checks INTEGER NOT NULL,
  failed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS recon_checks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL REFERENCES recon_runs(id),
  check_name TEXT NOT NULL,
  portfolio TEXT NOT NULL,
  steps INTEGER NOT NULL,
  failed_steps INTEGER NOT NULL,
  error TEXT NOT NULL,
  failures TEXT NOT NULL,
  duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recon_checks_run ON recon_checks(run_id);
`)
	return err
}

var (
	_ port.MarketData       = (*Repo)(nil)
	_ port.ResultRepository = (*Repo)(nil)
)
