package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/metrics"
)

// RedisCache wraps a Provider with a Redis read-through cache on GetPrice.
// Absent prices are not cached; downloads invalidate the key so the next
// read picks up the fresh value.
type RedisCache struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
	log   *zap.SugaredLogger
}

// NewRedisCache creates a cached wrapper around inner.
func NewRedisCache(inner Provider, rdb *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *RedisCache {
	return &RedisCache{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   logger.OrNop(log),
	}
}

var _ Provider = (*RedisCache)(nil)

// GetPrice implements Provider.
func (c *RedisCache) GetPrice(symbol string, date time.Time) (*PricePoint, error) {
	ctx := context.Background()
	key := priceKey(symbol, date)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var p PricePoint
		if json.Unmarshal(data, &p) == nil {
			metrics.PriceLookupsTotal.WithLabelValues("redis", metrics.PriceHit).Inc()
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warnw("redis get failed", "key", key, "error", err)
	}

	// Cache miss: read from the wrapped provider.
	p, err := c.inner.GetPrice(symbol, date)
	if err != nil || p == nil {
		return p, err
	}

	c.cache(ctx, key, p)
	return p, nil
}

// GetPrices implements Provider. Ranges are not cached.
func (c *RedisCache) GetPrices(symbol string, start, end time.Time) ([]PricePoint, error) {
	return c.inner.GetPrices(symbol, start, end)
}

// DownloadPrice implements Provider.
func (c *RedisCache) DownloadPrice(symbol string, date time.Time) (*PricePoint, error) {
	p, err := c.inner.DownloadPrice(symbol, date)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if err := c.rdb.Del(context.Background(), priceKey(symbol, date)).Err(); err != nil {
			c.log.Warnw("redis invalidate failed", "symbol", symbol, "error", err)
		}
	}
	return p, nil
}

func (c *RedisCache) cache(ctx context.Context, key string, p *PricePoint) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warnw("redis set failed", "key", key, "error", err)
	}
}

// --- Key helpers ---

func priceKey(symbol string, date time.Time) string {
	return fmt.Sprintf("price:%s:%s", NormalizeSymbol(symbol), Day(date).Format(time.DateOnly))
}
