package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Env      string `toml:"env"`
		LogLevel string `toml:"log_level"`
		AsOf     string `toml:"as_of"` // YYYY-MM-DD, empty for yesterday
		Workers  int    `toml:"workers"`
	} `toml:"app"`

	Source struct {
		Driver string `toml:"driver"` // postgres | sqlite
	} `toml:"source"`

	Postgres struct {
		DSN          string `toml:"dsn"`
		MaxOpenConns int    `toml:"max_open_conns"`
		MaxIdleConns int    `toml:"max_idle_conns"`
		Results      bool   `toml:"results"` // persist runs
	} `toml:"postgres"`

	SQLite struct {
		Path     string `toml:"path"`
		SeedDemo bool   `toml:"seed_demo"`
		Results  bool   `toml:"results"`
	} `toml:"sqlite"`

	Redis struct {
		Enabled       bool   `toml:"enabled"`
		Addr          string `toml:"addr"`
		Password      string `toml:"password"`
		DB            int    `toml:"db"`
		Prefix        string `toml:"prefix"`
		TTLSeconds    int    `toml:"ttl_seconds"`
		ResultStream  string `toml:"result_stream"`
		ResultChannel string `toml:"result_channel"`
	} `toml:"redis"`

	API struct {
		PortfolioURL       string `toml:"portfolio_url"` // portfolio endpoints: wealth, performance, profit
		CommonURL          string `toml:"common_url"`    // index performance, top positions
		CreditURL          string `toml:"credit_url"`    // principal repayments
		ReportURL          string `toml:"report_url"`    // nav history
		Username           string `toml:"username"`
		Password           string `toml:"password"`
		TimeoutSeconds     int    `toml:"timeout_seconds"`
		InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	} `toml:"api"`

	Check struct {
		Portfolios []string `toml:"portfolios"` // names, empty for every portfolio
		Checks     []string `toml:"checks"`     // empty for every check
		From       string   `toml:"from"`
		To         string   `toml:"to"`
		Precision  int      `toml:"precision"`
		TopLimit   int      `toml:"top_limit"`
		Benchmark  string   `toml:"benchmark"`
	} `toml:"check"`
}

// ResolvePath picks the config file: the explicit path when given, else
// configs/config.<WM_ENV>.toml, else configs/config.toml.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := strings.TrimSpace(os.Getenv("WM_ENV")); env != "" {
		return filepath.Join("configs", "config."+env+".toml")
	}
	return filepath.Join("configs", "config.toml")
}

// Load reads .env when present, decodes the TOML file and applies
// environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&cfg.App.Env, "WM_ENV")
	override(&cfg.Postgres.DSN, "WM_DB_DSN")
	override(&cfg.API.Username, "WM_API_USERNAME")
	override(&cfg.API.Password, "WM_API_PASSWORD")
	override(&cfg.Redis.Password, "WM_REDIS_PASSWORD")
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "dev"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.AsOf == "" {
		cfg.App.AsOf = time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	}
	if cfg.Source.Driver == "" {
		cfg.Source.Driver = DriverSQLite
	}
	if cfg.Postgres.MaxOpenConns <= 0 {
		cfg.Postgres.MaxOpenConns = 10
	}
	if cfg.Postgres.MaxIdleConns <= 0 {
		cfg.Postgres.MaxIdleConns = 5
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "data/wmrecon.db"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "wmrecon"
	}
	if cfg.Redis.TTLSeconds <= 0 {
		cfg.Redis.TTLSeconds = 300
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 5
	}
	if cfg.Check.Precision <= 0 {
		cfg.Check.Precision = 2
	}
	if cfg.Check.TopLimit <= 0 {
		cfg.Check.TopLimit = 100
	}
	if cfg.Check.To == "" {
		cfg.Check.To = cfg.App.AsOf
	}
	if cfg.Check.From == "" {
		if to, err := time.Parse(time.DateOnly, cfg.Check.To); err == nil {
			cfg.Check.From = to.AddDate(-1, 0, 0).Format(time.DateOnly)
		}
	}
}

func validate(cfg *Config) error {
	cfg.Source.Driver = strings.ToLower(strings.TrimSpace(cfg.Source.Driver))
	switch cfg.Source.Driver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.Postgres.DSN) == "" {
			return errors.New("postgres.dsn empty but source.driver is postgres")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("source.driver %q unsupported", cfg.Source.Driver)
	}

	if cfg.Postgres.Results && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but postgres.results is set")
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	if strings.TrimSpace(cfg.API.PortfolioURL) == "" {
		return errors.New("api.portfolio_url is empty")
	}

	for _, d := range []struct{ key, val string }{
		{"app.as_of", cfg.App.AsOf},
		{"check.from", cfg.Check.From},
		{"check.to", cfg.Check.To},
	} {
		if _, err := time.Parse(time.DateOnly, d.val); err != nil {
			return fmt.Errorf("%s %q: want YYYY-MM-DD", d.key, d.val)
		}
	}
	if cfg.Check.From > cfg.Check.To {
		return errors.New("check.from after check.to")
	}

	cfg.Check.Portfolios = normalizeNames(cfg.Check.Portfolios, false)
	cfg.Check.Checks = normalizeNames(cfg.Check.Checks, true)
	return nil
}

// Overrides are command line values taking precedence over the file.
type Overrides struct {
	Portfolios []string
	Checks     []string
	From       string
	To         string
}

// Override applies o and validates the result again.
func (c *Config) Override(o Overrides) error {
	if len(o.Portfolios) > 0 {
		c.Check.Portfolios = o.Portfolios
	}
	if len(o.Checks) > 0 {
		c.Check.Checks = o.Checks
	}
	if o.From != "" {
		c.Check.From = o.From
	}
	if o.To != "" {
		c.Check.To = o.To
	}
	return validate(c)
}

// AsOf returns the valuation day.
func (c *Config) AsOf() time.Time {
	t, _ := time.Parse(time.DateOnly, c.App.AsOf)
	return t
}

// Window returns the reporting window of the checks.
func (c *Config) Window() (from, to time.Time) {
	from, _ = time.Parse(time.DateOnly, c.Check.From)
	to, _ = time.Parse(time.DateOnly, c.Check.To)
	return from, to
}

// Timeout is the per request timeout of the reporting API.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func normalizeNames(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.TrimSpace(s)
		if lower {
			u = strings.ToLower(u)
		}
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
