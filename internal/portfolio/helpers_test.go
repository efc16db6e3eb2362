package portfolio_test

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AlexyDarius/finarius/internal/cache"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// mockDownloader implements prices.Downloader for testing.
type mockDownloader struct {
	downloadFn func(ctx context.Context, symbol string, date time.Time) (*prices.PricePoint, error)
	calls      int
}

var _ prices.Downloader = (*mockDownloader)(nil)

func (m *mockDownloader) Download(ctx context.Context, symbol string, date time.Time) (*prices.PricePoint, error) {
	m.calls++
	if m.downloadFn == nil {
		return nil, nil
	}
	return m.downloadFn(ctx, symbol, date)
}

// newProvider builds the production price stack over db. dl may be nil.
func newProvider(db *gorm.DB, dl prices.Downloader) *prices.Service {
	return prices.NewService(prices.NewStore(db), dl, 0, nil)
}

// newEngine builds an engine over db with a memoization cache.
func newEngine(db *gorm.DB, dl prices.Downloader, clock portfolio.Clock) *portfolio.Engine {
	return portfolio.NewEngine(ledger.NewGormReader(db), newProvider(db, dl), cache.New("portfolio_test"), clock, nil)
}

func fixedClock(t time.Time) portfolio.Clock {
	return func() time.Time { return t }
}
