package prices_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/AlexyDarius/finarius/internal/config"
	"github.com/AlexyDarius/finarius/internal/prices"
	"github.com/AlexyDarius/finarius/internal/testutil"
)

func stackConfig(redisURL string) *config.Config {
	return &config.Config{
		RedisURL:       redisURL,
		PriceCacheTTL:  time.Hour,
		YahooBaseURL:   "http://127.0.0.1:0",
		RequestTimeout: time.Second,
	}
}

func TestNewProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	t.Run("without_redis", func(t *testing.T) {
		provider, closeFn, err := prices.NewProvider(db, stackConfig(""), nil)
		testutil.AssertNoError(t, err)
		defer closeFn()

		if _, ok := provider.(*prices.Service); !ok {
			t.Errorf("expected *prices.Service, got %T", provider)
		}
	})

	t.Run("with_redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		provider, closeFn, err := prices.NewProvider(db, stackConfig("redis://"+mr.Addr()), nil)
		testutil.AssertNoError(t, err)
		defer closeFn()

		if _, ok := provider.(*prices.RedisCache); !ok {
			t.Fatalf("expected *prices.RedisCache, got %T", provider)
		}

		testutil.CreateTestPrice(t, db, "AAPL", testutil.Date(2024, 1, 2), 185.5)
		p, err := provider.GetPrice("AAPL", testutil.Date(2024, 1, 2))
		testutil.AssertNoError(t, err)
		if p == nil || p.Close != 185.5 {
			t.Fatalf("expected close 185.5, got %+v", p)
		}
		if len(mr.Keys()) != 1 {
			t.Errorf("expected the lookup to be cached, keys: %v", mr.Keys())
		}
	})

	t.Run("unreachable_redis_falls_back", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		provider, closeFn, err := prices.NewProvider(db, stackConfig("redis://"+addr), nil)
		testutil.AssertNoError(t, err)
		defer closeFn()

		if _, ok := provider.(*prices.Service); !ok {
			t.Errorf("expected fallback to *prices.Service, got %T", provider)
		}
	})

	t.Run("invalid_url", func(t *testing.T) {
		if _, _, err := prices.NewProvider(db, stackConfig("mysql://nope"), nil); err == nil {
			t.Fatal("expected error for invalid redis url")
		}
	})
}
