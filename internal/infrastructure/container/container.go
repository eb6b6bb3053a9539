package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wmrecon/internal/application/port"
	"wmrecon/internal/infrastructure/config"
	"wmrecon/internal/infrastructure/storage/composite"
	pgrepo "wmrecon/internal/infrastructure/storage/postgres"
	redisrepo "wmrecon/internal/infrastructure/storage/redis"
	sqliterepo "wmrecon/internal/infrastructure/storage/sqlite"
)

// Container owns the storage backends: the market data source, the optional
// redis cache and every result store.
type Container struct {
	cfg          *config.Config
	redisClient  *redis.Client
	sqliteRepo   *sqliterepo.Repo
	postgresRepo *pgrepo.Repo
	redisRepo    *redisrepo.Repo
	marketData   port.MarketData
	results      *composite.Repo
	closeOnce    sync.Once
	closerChain  []func() error
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}
	if err := c.initStorage(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	if c.cfg.Source.Driver == config.DriverPostgres || c.cfg.Postgres.Results {
		if err := c.initPostgres(ctx); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
	}
	if c.cfg.Source.Driver == config.DriverSQLite || c.cfg.SQLite.Results {
		if err := c.initSQLite(ctx); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
	}
	if c.cfg.Redis.Enabled {
		if err := c.initRedis(ctx); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
	}

	var source port.MarketData
	switch c.cfg.Source.Driver {
	case config.DriverPostgres:
		source = c.postgresRepo
	default:
		source = c.sqliteRepo
	}
	c.marketData = source
	if c.redisClient != nil {
		c.marketData = redisrepo.NewCachedMarketData(source, c.redisClient, c.cfg.Redis.Prefix, c.ttl())
	}

	var results []port.ResultRepository
	if c.postgresRepo != nil && c.cfg.Postgres.Results {
		results = append(results, c.postgresRepo)
	}
	if c.sqliteRepo != nil && c.cfg.SQLite.Results {
		results = append(results, c.sqliteRepo)
	}
	if c.redisRepo != nil {
		results = append(results, c.redisRepo)
	}
	c.results = composite.New(results...)
	return nil
}

func (c *Container) ttl() time.Duration {
	return time.Duration(c.cfg.Redis.TTLSeconds) * time.Second
}

func (c *Container) initPostgres(ctx context.Context) error {
	repo, err := pgrepo.New(c.cfg.Postgres.DSN, pgrepo.Options{
		MaxOpenConns: c.cfg.Postgres.MaxOpenConns,
		MaxIdleConns: c.cfg.Postgres.MaxIdleConns,
		Results:      c.cfg.Postgres.Results,
	})
	if err != nil {
		return err
	}
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	c.postgresRepo = repo

	log.Info().
		Bool("results", c.cfg.Postgres.Results).
		Msg("postgres initialized")
	return nil
}

func (c *Container) initSQLite(ctx context.Context) error {
	repo, err := sqliterepo.New(c.cfg.SQLite.Path)
	if err != nil {
		return err
	}
	c.sqliteRepo = repo
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	if c.cfg.SQLite.SeedDemo {
		seeded, err := repo.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
		if seeded {
			log.Info().Msg("sqlite demo portfolio seeded")
		}
	}

	log.Info().
		Str("path", c.cfg.SQLite.Path).
		Msg("sqlite initialized")
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb
	c.redisRepo = redisrepo.New(
		rdb,
		c.cfg.Redis.Prefix,
		c.ttl(),
		c.cfg.Redis.ResultStream,
		c.cfg.Redis.ResultChannel,
	)
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", c.cfg.Redis.Addr).
		Int("db", c.cfg.Redis.DB).
		Msg("redis initialized")
	return nil
}

func (c *Container) Config() *config.Config {
	return c.cfg
}

// MarketData is the configured source, behind the redis cache when enabled.
func (c *Container) MarketData() port.MarketData {
	return c.marketData
}

// Results fans out to every enabled result store; it may hold none.
func (c *Container) Results() port.ResultRepository {
	return c.results
}

func (c *Container) SQLiteRepo() *sqliterepo.Repo {
	return c.sqliteRepo
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
