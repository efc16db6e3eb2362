package performance_test

import (
	"time"

	"gorm.io/gorm"

	"github.com/AlexyDarius/finarius/internal/cache"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/performance"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// mockReader implements ledger.Reader for testing.
type mockReader struct {
	listTransactionsFn func(accountID uint, start, end *time.Time) ([]ledger.Transaction, error)
	listAccountsFn     func() ([]ledger.Account, error)
}

var _ ledger.Reader = (*mockReader)(nil)

func (m *mockReader) ListTransactions(accountID uint, start, end *time.Time) ([]ledger.Transaction, error) {
	if m.listTransactionsFn == nil {
		return nil, nil
	}
	return m.listTransactionsFn(accountID, start, end)
}

func (m *mockReader) ListAccounts() ([]ledger.Account, error) {
	if m.listAccountsFn == nil {
		return nil, nil
	}
	return m.listAccountsFn()
}

// newEngine builds an uncached engine over db with no downloader.
func newEngine(db *gorm.DB) *portfolio.Engine {
	provider := prices.NewService(prices.NewStore(db), nil, 0, nil)
	return portfolio.NewEngine(ledger.NewGormReader(db), provider, nil, nil, nil)
}

// newCalculator builds a caching metrics calculator over db.
func newCalculator(db *gorm.DB) *performance.Calculator {
	return performance.NewCalculator(newEngine(db), cache.New("performance_test"), nil)
}
