package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexyDarius/finarius/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns the UTC midnight for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// CreateTestAccount creates an active USD account with a unique name.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Broker:   "Test Broker",
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction inserts a raw ledger row. Qty and price may be nil.
// It bypasses validation so tests can seed malformed entries.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID uint, txType models.TransactionType, date time.Time, symbol string, qty, price *float64, fee float64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID: accountID,
		Date:      date,
		Type:      txType,
		Symbol:    symbol,
		Qty:       nullDecimal(qty),
		Price:     nullDecimal(price),
		Fee:       decimal.NewFromFloat(fee),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBuy records a BUY of qty shares at price.
func CreateTestBuy(t *testing.T, db *gorm.DB, accountID uint, date time.Time, symbol string, qty, price, fee float64) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, accountID, models.TransactionTypeBuy, date, symbol, Float(qty), Float(price), fee)
}

// CreateTestSell records a SELL of qty shares at price.
func CreateTestSell(t *testing.T, db *gorm.DB, accountID uint, date time.Time, symbol string, qty, price, fee float64) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, accountID, models.TransactionTypeSell, date, symbol, Float(qty), Float(price), fee)
}

// CreateTestCashFlow records a DEPOSIT or WITHDRAW carrying amount in qty.
func CreateTestCashFlow(t *testing.T, db *gorm.DB, accountID uint, txType models.TransactionType, date time.Time, amount float64) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, accountID, txType, date, "", Float(amount), nil, 0)
}

// CreateTestPrice stores a daily close for symbol.
func CreateTestPrice(t *testing.T, db *gorm.DB, symbol string, date time.Time, closePrice float64) *models.PricePoint {
	t.Helper()

	p := &models.PricePoint{
		Symbol: symbol,
		Date:   date,
		Close:  decimal.NewFromFloat(closePrice),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test price: %v", err)
	}
	return p
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f))
}
