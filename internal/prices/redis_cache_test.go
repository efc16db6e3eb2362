package prices_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/AlexyDarius/finarius/internal/prices"
	"github.com/AlexyDarius/finarius/internal/testutil"
)

// mockProvider implements prices.Provider for testing.
type mockProvider struct {
	getPriceFn      func(symbol string, date time.Time) (*prices.PricePoint, error)
	downloadPriceFn func(symbol string, date time.Time) (*prices.PricePoint, error)
	getPricesFn     func(symbol string, start, end time.Time) ([]prices.PricePoint, error)
	getCalls        int
}

var _ prices.Provider = (*mockProvider)(nil)

func (m *mockProvider) GetPrice(symbol string, date time.Time) (*prices.PricePoint, error) {
	m.getCalls++
	return m.getPriceFn(symbol, date)
}

func (m *mockProvider) GetPrices(symbol string, start, end time.Time) ([]prices.PricePoint, error) {
	if m.getPricesFn == nil {
		return nil, nil
	}
	return m.getPricesFn(symbol, start, end)
}

func (m *mockProvider) DownloadPrice(symbol string, date time.Time) (*prices.PricePoint, error) {
	return m.downloadPriceFn(symbol, date)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCache_GetPrice(t *testing.T) {
	day := testutil.Date(2024, 1, 2)

	t.Run("second_read_served_from_cache", func(t *testing.T) {
		mr, rdb := setupRedis(t)
		inner := &mockProvider{getPriceFn: func(symbol string, date time.Time) (*prices.PricePoint, error) {
			return &prices.PricePoint{Symbol: symbol, Date: date, Close: 185}, nil
		}}
		cache := prices.NewRedisCache(inner, rdb, time.Hour, nil)

		for i := 0; i < 2; i++ {
			p, err := cache.GetPrice("aapl", day)
			testutil.AssertNoError(t, err)
			if p == nil || p.Close != 185 {
				t.Fatalf("read %d: expected close 185, got %+v", i, p)
			}
		}

		if inner.getCalls != 1 {
			t.Errorf("expected inner provider to be called once, got %d", inner.getCalls)
		}
		if !mr.Exists("price:AAPL:2024-01-02") {
			t.Error("expected the point to be cached under its symbol/date key")
		}
		if ttl := mr.TTL("price:AAPL:2024-01-02"); ttl != time.Hour {
			t.Errorf("expected 1h TTL, got %v", ttl)
		}
	})

	t.Run("absent_not_cached", func(t *testing.T) {
		mr, rdb := setupRedis(t)
		inner := &mockProvider{getPriceFn: func(string, time.Time) (*prices.PricePoint, error) {
			return nil, nil
		}}
		cache := prices.NewRedisCache(inner, rdb, time.Hour, nil)

		for i := 0; i < 2; i++ {
			p, err := cache.GetPrice("AAPL", day)
			testutil.AssertNoError(t, err)
			if p != nil {
				t.Fatalf("expected nil, got %+v", p)
			}
		}
		if inner.getCalls != 2 {
			t.Errorf("expected absent lookups to reach the inner provider each time, got %d", inner.getCalls)
		}
		if len(mr.Keys()) != 0 {
			t.Errorf("expected no keys, got %v", mr.Keys())
		}
	})

	t.Run("redis_down_falls_through", func(t *testing.T) {
		mr, rdb := setupRedis(t)
		mr.Close()
		inner := &mockProvider{getPriceFn: func(symbol string, date time.Time) (*prices.PricePoint, error) {
			return &prices.PricePoint{Symbol: symbol, Date: date, Close: 10}, nil
		}}
		cache := prices.NewRedisCache(inner, rdb, time.Hour, nil)

		p, err := cache.GetPrice("AAPL", day)
		testutil.AssertNoError(t, err)
		if p == nil || p.Close != 10 {
			t.Errorf("expected inner value, got %+v", p)
		}
	})
}

func TestRedisCache_GetPrices(t *testing.T) {
	mr, rdb := setupRedis(t)
	inner := &mockProvider{getPricesFn: func(symbol string, start, end time.Time) ([]prices.PricePoint, error) {
		return []prices.PricePoint{
			{Symbol: symbol, Date: start, Close: 470},
			{Symbol: symbol, Date: end, Close: 472},
		}, nil
	}}
	c := prices.NewRedisCache(inner, rdb, time.Hour, nil)

	points, err := c.GetPrices("SPY", testutil.Date(2024, 1, 2), testutil.Date(2024, 1, 4))
	testutil.AssertNoError(t, err)
	if len(points) != 2 {
		t.Fatalf("expected inner points, got %+v", points)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("expected ranges to bypass redis, keys: %v", keys)
	}
}

func TestRedisCache_DownloadPrice(t *testing.T) {
	day := testutil.Date(2024, 1, 2)
	mr, rdb := setupRedis(t)

	closePrice := 185.0
	inner := &mockProvider{
		getPriceFn: func(symbol string, date time.Time) (*prices.PricePoint, error) {
			return &prices.PricePoint{Symbol: symbol, Date: date, Close: closePrice}, nil
		},
		downloadPriceFn: func(symbol string, date time.Time) (*prices.PricePoint, error) {
			closePrice = 190
			return &prices.PricePoint{Symbol: symbol, Date: date, Close: closePrice}, nil
		},
	}
	cache := prices.NewRedisCache(inner, rdb, time.Hour, nil)

	_, err := cache.GetPrice("AAPL", day)
	testutil.AssertNoError(t, err)

	_, err = cache.DownloadPrice("AAPL", day)
	testutil.AssertNoError(t, err)
	if mr.Exists("price:AAPL:2024-01-02") {
		t.Error("expected download to invalidate the cached key")
	}

	p, err := cache.GetPrice("AAPL", day)
	testutil.AssertNoError(t, err)
	if p.Close != 190 {
		t.Errorf("expected refreshed close 190, got %v", p.Close)
	}
}
