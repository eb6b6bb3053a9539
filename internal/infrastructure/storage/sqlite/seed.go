package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"wmrecon/internal/domain/model"
)

const timestampLayout = "2006-01-02 15:04:05"

// FixtureTrade is a trade row; hidden rows are stored but never read back.
type FixtureTrade struct {
	model.Trade
	Hidden bool
}

type FixtureClose struct {
	InstrumentID int64
	At           time.Time
	Price        float64
}

type FixtureRate struct {
	From, To string
	At       time.Time
	Rate     float64
}

type FixtureIndex struct {
	InstrumentID int64
	Name         string
}

// Fixture is a self-contained wealth management book.
type Fixture struct {
	Portfolios  []model.Portfolio
	Instruments []model.Instrument
	Trades      []FixtureTrade
	Closes      []FixtureClose
	Rates       []FixtureRate
	Indices     []FixtureIndex
	Dividends   []model.DividendEvent
	Coupons     []model.CouponEvent
	NonMarket   []model.NonMarketSchedule
}

type seeder struct {
	ctx context.Context
	tx  *sql.Tx
	ids map[string]int64 // table/name -> id
}

// lookup returns the id of name in a lookup table, inserting it when new.
// An empty name is NULL.
func (s *seeder) lookup(table, column, name string) (sql.NullInt64, error) {
	if name == "" {
		return sql.NullInt64{}, nil
	}
	key := table + "/" + name
	if id, ok := s.ids[key]; ok {
		return sql.NullInt64{Int64: id, Valid: true}, nil
	}
	if _, err := s.tx.ExecContext(s.ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s(%s) VALUES(?)`, table, column), name); err != nil {
		return sql.NullInt64{}, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	var id int64
	if err := s.tx.QueryRowContext(s.ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s = ?`, table, column), name).Scan(&id); err != nil {
		return sql.NullInt64{}, err
	}
	s.ids[key] = id
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func (s *seeder) exec(query string, args ...any) error {
	_, err := s.tx.ExecContext(s.ctx, query, args...)
	return err
}

// Seed writes the fixture in one transaction.
func (r *Repo) Seed(ctx context.Context, f Fixture) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	s := &seeder{ctx: ctx, tx: tx, ids: make(map[string]int64)}
	if err := s.seed(f); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *seeder) seed(f Fixture) error {
	for _, p := range f.Portfolios {
		ccy, err := s.lookup("wm_currency", "code", p.Currency)
		if err != nil {
			return err
		}
		if err := s.exec(`INSERT INTO wm_portfolio(id, name, currency_id) VALUES(?, ?, ?)`, p.ID, p.Name, ccy); err != nil {
			return fmt.Errorf("insert portfolio %s: %w", p.Name, err)
		}
	}

	for _, in := range f.Instruments {
		if err := s.instrument(in); err != nil {
			return fmt.Errorf("insert instrument %s: %w", in.Code, err)
		}
	}

	for _, t := range f.Trades {
		custodian, err := s.lookup("wm_custodian", "name", t.Custodian)
		if err != nil {
			return err
		}
		op := "BUY"
		if t.Quantity < 0 {
			op = "SELL"
		}
		var id any
		if t.ID != 0 {
			id = t.ID
		}
		if err := s.exec(`
INSERT INTO wm_portfolio_trade(id, portfolio_id, instrument_id, trade_time, quantity, operation, price,
  commission, trade_costs, exchange_rate_value, custodian_id, investable, hidden)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, t.PortfolioID, t.Instrument.ID, t.Time.UTC().Format(timestampLayout), math.Abs(t.Quantity), op, t.Price,
			t.Commission, t.TradeCosts, t.FXRate, custodian, t.Investable, t.Hidden,
		); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	for _, c := range f.Closes {
		if err := s.exec(`INSERT INTO wm_market_data(instrument_id, close_timestamp, close_price) VALUES(?, ?, ?)`,
			c.InstrumentID, c.At.UTC().Format(timestampLayout), c.Price); err != nil {
			return fmt.Errorf("insert close: %w", err)
		}
	}
	for _, r := range f.Rates {
		if err := s.exec(`INSERT INTO wm_exchange_rate(rate_timestamp, from_currency, to_currency, rate_value) VALUES(?, ?, ?, ?)`,
			r.At.UTC().Format(timestampLayout), r.From, r.To, r.Rate); err != nil {
			return fmt.Errorf("insert rate: %w", err)
		}
	}
	for _, x := range f.Indices {
		if err := s.exec(`INSERT INTO wm_stock_market_index(instrument_id, name) VALUES(?, ?)`, x.InstrumentID, x.Name); err != nil {
			return fmt.Errorf("insert index %s: %w", x.Name, err)
		}
	}

	for _, d := range f.Dividends {
		if err := s.exec(`INSERT INTO wm_income_equity_dividends_data_view(instrument_id, ex_date, amount) VALUES(?, ?, ?)`,
			d.InstrumentID, model.FormatDay(d.ExDate), d.Amount); err != nil {
			return fmt.Errorf("insert dividend: %w", err)
		}
	}
	for _, c := range f.Coupons {
		if err := s.exec(`INSERT INTO wm_income_credit_coupons_data(instrument_id, coupon_date, amount, principal) VALUES(?, ?, ?, ?)`,
			c.InstrumentID, model.FormatDay(c.Date), c.Amount, c.Principal); err != nil {
			return fmt.Errorf("insert coupon: %w", err)
		}
	}
	for _, n := range f.NonMarket {
		if err := s.exec(`INSERT INTO wm_income_non_market_data(instrument_id, start_date, amount, currency) VALUES(?, ?, ?, ?)`,
			n.InstrumentID, model.FormatDay(n.StartDate), n.Amount, n.Currency); err != nil {
			return fmt.Errorf("insert non-market schedule: %w", err)
		}
	}
	return nil
}

func (s *seeder) instrument(in model.Instrument) error {
	ccy, err := s.lookup("wm_currency", "code", in.Currency)
	if err != nil {
		return err
	}
	class, err := s.lookup("wm_asset_class", "name", string(in.AssetClass))
	if err != nil {
		return err
	}
	sub, err := s.lookup("wm_asset_subclass", "name", in.Subclass)
	if err != nil {
		return err
	}
	region, err := s.lookup("wm_geo_region", "name", in.Region)
	if err != nil {
		return err
	}
	industry, err := s.lookup("wm_industry_sector", "name", in.Industry)
	if err != nil {
		return err
	}
	company, err := s.lookup("wm_company", "name", in.Issuer)
	if err != nil {
		return err
	}
	rating := sql.NullString{String: in.Rating, Valid: in.Rating != ""}
	pointValue := sql.NullFloat64{Float64: in.Multiplier, Valid: in.Multiplier != 0}

	if err := s.exec(`
INSERT INTO wm_instrument(id, name, currency_id, asset_class_id, asset_subclass_id, point_value,
  geo_region_id, industry_sector_id, credit_rating, company_id)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, ccy, class, sub, pointValue, region, industry, rating, company); err != nil {
		return err
	}
	if in.AssetClass == model.Credit {
		expiry := sql.NullString{String: model.FormatDay(in.Expiry), Valid: !in.Expiry.IsZero()}
		if err := s.exec(`INSERT INTO wm_bond_instrument(instrument_id, expiry, perpetual) VALUES(?, ?, ?)`,
			in.ID, expiry, in.Perpetual); err != nil {
			return err
		}
	}
	if in.Code == "" {
		return nil
	}
	return s.exec(`INSERT INTO wm_instrument_identifier(instrument_id, instrument_code) VALUES(?, ?)`, in.ID, in.Code)
}
