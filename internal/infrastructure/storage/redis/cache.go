package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CachedMarketData is a read-through cache in front of a MarketData source.
// Cache failures are logged and fall through to the source; errors of the
// source are never cached.
type CachedMarketData struct {
	next   port.MarketData
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedMarketData(next port.MarketData, rdb *redis.Client, prefix string, ttl time.Duration) *CachedMarketData {
	return &CachedMarketData{next: next, rdb: rdb, prefix: prefix + ":md", ttl: ttl}
}

func (c *CachedMarketData) key(parts ...any) string {
	var sb strings.Builder
	sb.WriteString(c.prefix)
	for _, p := range parts {
		sb.WriteByte(':')
		switch v := p.(type) {
		case time.Time:
			sb.WriteString(model.FormatDay(v))
		default:
			sb.WriteString(fmt.Sprint(v))
		}
	}
	return sb.String()
}

func cached[T any](ctx context.Context, c *CachedMarketData, key string, load func() (T, error)) (T, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		log.Debug().Str("key", key).Msg("cache entry undecodable")
	case !errors.Is(err, redis.Nil):
		log.Debug().Err(err).Str("key", key).Msg("cache read failed")
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return v, nil
}

func (c *CachedMarketData) Portfolios(ctx context.Context) ([]model.Portfolio, error) {
	return cached(ctx, c, c.key("portfolios"), func() ([]model.Portfolio, error) {
		return c.next.Portfolios(ctx)
	})
}

func (c *CachedMarketData) Portfolio(ctx context.Context, name string) (model.Portfolio, error) {
	return cached(ctx, c, c.key("portfolio", name), func() (model.Portfolio, error) {
		return c.next.Portfolio(ctx, name)
	})
}

func (c *CachedMarketData) Trades(ctx context.Context, portfolioID int64) ([]model.Trade, error) {
	return cached(ctx, c, c.key("trades", portfolioID), func() ([]model.Trade, error) {
		return c.next.Trades(ctx, portfolioID)
	})
}

func (c *CachedMarketData) ClosePrices(ctx context.Context, portfolioID int64, day time.Time) (map[string]float64, error) {
	return cached(ctx, c, c.key("close", portfolioID, day), func() (map[string]float64, error) {
		return c.next.ClosePrices(ctx, portfolioID, day)
	})
}

func (c *CachedMarketData) FXRate(ctx context.Context, from, to string, day time.Time) (float64, error) {
	if strings.EqualFold(from, to) {
		return c.next.FXRate(ctx, from, to, day)
	}
	return cached(ctx, c, c.key("fx", from, to, day), func() (float64, error) {
		return c.next.FXRate(ctx, from, to, day)
	})
}

func (c *CachedMarketData) Dividends(ctx context.Context, portfolioID int64) ([]model.DividendEvent, error) {
	return cached(ctx, c, c.key("dividends", portfolioID), func() ([]model.DividendEvent, error) {
		return c.next.Dividends(ctx, portfolioID)
	})
}

func (c *CachedMarketData) Coupons(ctx context.Context, portfolioID int64) ([]model.CouponEvent, error) {
	return cached(ctx, c, c.key("coupons", portfolioID), func() ([]model.CouponEvent, error) {
		return c.next.Coupons(ctx, portfolioID)
	})
}

func (c *CachedMarketData) NonMarketSchedules(ctx context.Context, portfolioID int64) ([]model.NonMarketSchedule, error) {
	return cached(ctx, c, c.key("nonmarket", portfolioID), func() ([]model.NonMarketSchedule, error) {
		return c.next.NonMarketSchedules(ctx, portfolioID)
	})
}

func (c *CachedMarketData) BenchmarkPrices(ctx context.Context, name string, from, to time.Time) (model.Series, error) {
	return cached(ctx, c, c.key("benchmark", name, from, to), func() (model.Series, error) {
		return c.next.BenchmarkPrices(ctx, name, from, to)
	})
}

var _ port.MarketData = (*CachedMarketData)(nil)
