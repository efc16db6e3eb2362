package ledger

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/pagination"
)

// GormReader implements Reader on top of the gorm models.
type GormReader struct {
	db *gorm.DB
}

// NewGormReader creates a new GormReader.
func NewGormReader(db *gorm.DB) *GormReader {
	return &GormReader{db: db}
}

var _ Reader = (*GormReader)(nil)

// ListTransactions implements Reader. The end bound covers the whole calendar day.
func (r *GormReader) ListTransactions(accountID uint, start, end *time.Time) ([]Transaction, error) {
	q := r.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)
	q = applyDateRange(q, start, end)

	var rows []models.Transaction
	if err := q.Order("date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	txs := make([]Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, transactionFromModel(&rows[i]))
	}
	return txs, nil
}

// ListAccounts implements Reader.
func (r *GormReader) ListAccounts() ([]Account, error) {
	var rows []models.Account
	if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	accounts := make([]Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, accountFromModel(&rows[i]))
	}
	return accounts, nil
}

// GetAccount retrieves a single account by ID.
func (r *GormReader) GetAccount(accountID uint) (*Account, error) {
	var row models.Account
	if err := r.db.First(&row, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}
	account := accountFromModel(&row)
	return &account, nil
}

// ListTransactionsPage returns one page of an account's transactions, newest first.
func (r *GormReader) ListTransactionsPage(accountID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[Transaction], error) {
	if _, err := r.GetAccount(accountID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := r.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)
	if filter.Type != "" {
		base = base.Where("type = ?", models.TransactionType(strings.ToUpper(string(filter.Type))))
	}
	if filter.Symbol != "" {
		base = base.Where("UPPER(symbol) = ?", strings.ToUpper(strings.TrimSpace(filter.Symbol)))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	var rows []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	txs := make([]Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, transactionFromModel(&rows[i]))
	}

	result := pagination.NewPageResponse(txs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// HeldSymbols returns the distinct symbols that appear in BUY transactions on or
// before date, across all accounts.
func (r *GormReader) HeldSymbols(date time.Time) ([]string, error) {
	var symbols []string
	if err := r.db.Model(&models.Transaction{}).
		Where("type = ? AND symbol <> '' AND date < ?", models.TransactionTypeBuy, nextDay(date)).
		Distinct().Order("symbol").Pluck("symbol", &symbols).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func applyDateRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("date >= ?", startOfDay(*start))
	}
	if end != nil {
		q = q.Where("date < ?", nextDay(*end))
	}
	return q
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1)
}

func transactionFromModel(m *models.Transaction) Transaction {
	return Transaction{
		ID:        m.ID,
		Date:      startOfDay(m.Date),
		AccountID: m.AccountID,
		Type:      models.TransactionType(strings.ToUpper(string(m.Type))),
		Symbol:    strings.ToUpper(strings.TrimSpace(m.Symbol)),
		Qty:       nullFloat(m.Qty),
		Price:     nullFloat(m.Price),
		Fee:       m.Fee.InexactFloat64(),
		Notes:     m.Notes,
	}
}

func accountFromModel(m *models.Account) Account {
	return Account{
		ID:          m.ID,
		Name:        m.Name,
		Broker:      m.Broker,
		Currency:    m.Currency,
		Description: m.Description,
		IsActive:    m.IsActive,
	}
}

func nullFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f))
}
