package prices

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlexyDarius/finarius/internal/config"
	"github.com/AlexyDarius/finarius/internal/logger"
)

const redisPingTimeout = 3 * time.Second

// NewProvider assembles the production price stack from cfg: a gorm Store,
// the Yahoo downloader behind a Service, and a RedisCache in front when
// REDIS_URL is set. An unreachable Redis is logged and skipped. The returned
// close function releases the Redis client, if any.
func NewProvider(db *gorm.DB, cfg *config.Config, log *zap.SugaredLogger) (Provider, func(), error) {
	log = logger.OrNop(log)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	service := NewService(NewStore(db), NewYahooDownloader(httpClient, cfg.YahooBaseURL), cfg.RequestTimeout, log)
	noop := func() {}

	if cfg.RedisURL == "" {
		return service, noop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, price cache disabled", "addr", opts.Addr, "error", err)
		_ = rdb.Close()
		return service, noop, nil
	}

	log.Infow("price cache enabled", "addr", opts.Addr, "ttl", cfg.PriceCacheTTL.String())
	return NewRedisCache(service, rdb, cfg.PriceCacheTTL, log), func() { _ = rdb.Close() }, nil
}
