package ledger

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/models"
	rules "github.com/AlexyDarius/finarius/internal/validator"
)

// Recorder appends validated transactions and accounts to the ledger.
// Recorded transactions are never updated.
type Recorder struct {
	db       *gorm.DB
	reader   *GormReader
	validate *validator.Validate
}

// NewRecorder creates a new Recorder.
func NewRecorder(db *gorm.DB) *Recorder {
	validate := validator.New(validator.WithRequiredStructEnabled())
	rules.RegisterRules(validate)
	return &Recorder{
		db:       db,
		reader:   NewGormReader(db),
		validate: validate,
	}
}

// CreateAccount stores a new account.
func (r *Recorder) CreateAccount(a Account) (*Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if err := r.validate.Struct(a); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if a.Currency == "" {
		a.Currency = "USD"
	}

	row := &models.Account{
		Name:        a.Name,
		Broker:      a.Broker,
		Currency:    a.Currency,
		Description: a.Description,
		IsActive:    true,
	}
	if err := r.db.Create(row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	created := accountFromModel(row)
	return &created, nil
}

// Record validates tx and appends it to its account. The returned transaction
// carries the assigned ID and normalized fields.
func (r *Recorder) Record(tx Transaction) (*Transaction, error) {
	tx.Type = models.TransactionType(strings.ToUpper(string(tx.Type)))
	tx.Symbol = strings.ToUpper(strings.TrimSpace(tx.Symbol))

	if err := r.validate.Struct(tx); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransaction, err.Error())
	}
	if err := ValidateTransaction(tx); err != nil {
		return nil, err
	}

	if _, err := r.reader.GetAccount(tx.AccountID); err != nil {
		return nil, err
	}

	row := &models.Transaction{
		AccountID: tx.AccountID,
		Date:      startOfDay(tx.Date),
		Type:      tx.Type,
		Symbol:    tx.Symbol,
		Qty:       nullDecimal(tx.Qty),
		Price:     nullDecimal(tx.Price),
		Fee:       decimal.NewFromFloat(tx.Fee),
		Notes:     tx.Notes,
	}
	if err := r.db.Create(row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	recorded := transactionFromModel(row)
	return &recorded, nil
}

// ValidateTransaction applies the per-type field rules: BUY and SELL need a
// symbol, a positive qty and a non-negative price; DIVIDEND needs a symbol and
// a positive qty; DEPOSIT and WITHDRAW need a positive amount in qty or price.
func ValidateTransaction(tx Transaction) error {
	if tx.Fee < 0 {
		return invalid("fee cannot be negative")
	}

	switch tx.Type {
	case models.TransactionTypeBuy, models.TransactionTypeSell:
		if tx.Symbol == "" {
			return invalid("symbol is required for %s transactions", tx.Type)
		}
		if tx.Qty == nil || *tx.Qty <= 0 {
			return invalid("quantity must be positive for %s transactions", tx.Type)
		}
		if tx.Price == nil || *tx.Price < 0 {
			return invalid("price is required and cannot be negative for %s transactions", tx.Type)
		}
	case models.TransactionTypeDividend:
		if tx.Symbol == "" {
			return invalid("symbol is required for DIVIDEND transactions")
		}
		if tx.Qty == nil || *tx.Qty <= 0 {
			return invalid("quantity must be positive for DIVIDEND transactions")
		}
	case models.TransactionTypeDeposit, models.TransactionTypeWithdraw:
		amount := tx.Qty
		if amount == nil {
			amount = tx.Price
		}
		if amount == nil || *amount <= 0 {
			return invalid("amount must be positive for %s transactions", tx.Type)
		}
	default:
		return invalid("unknown transaction type %q", tx.Type)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperrors.WithMessage(apperrors.ErrInvalidTransaction, fmt.Sprintf(format, args...))
}
