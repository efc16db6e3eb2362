// Package ledger reads and records account transactions. The metrics engine
// consumes the ledger only through Reader.
package ledger

import (
	"time"

	"github.com/AlexyDarius/finarius/internal/models"
)

// Transaction is a single ledger entry as seen by the engine. Qty and Price
// are nil when not recorded.
type Transaction struct {
	ID        uint                   `json:"id"`
	Date      time.Time              `json:"date" validate:"required"`
	AccountID uint                   `json:"account_id" validate:"required"`
	Type      models.TransactionType `json:"type" validate:"required,transaction_type"`
	Symbol    string                 `json:"symbol,omitempty" validate:"max=32"`
	Qty       *float64               `json:"qty"`
	Price     *float64               `json:"price" validate:"omitempty,gte=0"`
	Fee       float64                `json:"fee" validate:"gte=0"`
	Notes     string                 `json:"notes,omitempty" validate:"max=500"`
}

// Account is a container of transactions.
type Account struct {
	ID          uint   `json:"id"`
	Name        string `json:"name" validate:"required,max=200"`
	Broker      string `json:"broker,omitempty"`
	Currency    string `json:"currency" validate:"omitempty,iso4217"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// TransactionFilter narrows a paginated transaction listing. Zero fields
// match everything.
type TransactionFilter struct {
	Type   models.TransactionType
	Symbol string
}

// Reader is the read-only view of the ledger the engine depends on.
type Reader interface {
	// ListTransactions returns the account's transactions with start <= date <= end,
	// ordered by (date, id). A nil bound is open.
	ListTransactions(accountID uint, start, end *time.Time) ([]Transaction, error)
	ListAccounts() ([]Account, error)
}

// Float returns a pointer to v, for building transactions with optional fields.
func Float(v float64) *float64 {
	return &v
}
