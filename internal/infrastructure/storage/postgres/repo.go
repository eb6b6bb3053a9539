package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"wmrecon/internal/application/port"
	"wmrecon/internal/infrastructure/storage/sqlstore"
)

// Repo reads the production wealth management tables and owns the
// reconciliation result tables.
type Repo struct {
	*sqlstore.Store
	db *sql.DB
}

type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	// Results creates the result tables; the market data tables are never migrated.
	Results bool
}

func New(dsn string, opts Options) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)

	r := &Repo{Store: sqlstore.New(db, sqlstore.DialectPostgres), db: db}
	if opts.Results {
		if err := r.migrate(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS recon_runs (
  id TEXT PRIMARY KEY,
  env TEXT NOT NULL,
  as_of DATE NOT NULL,
  started_at TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ,
  checks INTEGER NOT NULL,
  failed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS recon_checks (
  id BIGSERIAL PRIMARY KEY,
  run_id TEXT NOT NULL REFERENCES recon_runs(id),
  check_name TEXT NOT NULL,
  portfolio TEXT NOT NULL,
  steps INTEGER NOT NULL,
  failed_steps INTEGER NOT NULL,
  error TEXT NOT NULL,
  failures JSONB NOT NULL,
  duration_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recon_checks_run ON recon_checks(run_id);
`)
	return err
}

var (
	_ port.MarketData       = (*Repo)(nil)
	_ port.ResultRepository = (*Repo)(nil)
)
