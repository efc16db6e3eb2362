package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeBuy      TransactionType = "BUY"
	TransactionTypeSell     TransactionType = "SELL"
	TransactionTypeDividend TransactionType = "DIVIDEND"
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeDividend,
		TransactionTypeDeposit, TransactionTypeWithdraw:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry. Qty and Price are optional because
// cash movements may carry their amount in either column.
type Transaction struct {
	Base
	AccountID uint                `gorm:"not null;index:idx_transactions_account_date" json:"account_id"`
	Date      time.Time           `gorm:"not null;index:idx_transactions_account_date" json:"date"`
	Type      TransactionType     `gorm:"not null" json:"type"`
	Symbol    string              `gorm:"index" json:"symbol,omitempty"`
	Qty       decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"qty"`
	Price     decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"price"`
	Fee       decimal.Decimal     `gorm:"type:decimal(20,8);not null;default:0" json:"fee"`
	Notes     string              `json:"notes,omitempty"`

	// Relationships
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}
