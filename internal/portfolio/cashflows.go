package portfolio

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// CashFlow is an external money movement. Deposits and dividends are
// positive, withdrawals negative.
type CashFlow struct {
	Date          time.Time              `json:"date"`
	Type          models.TransactionType `json:"type"`
	Amount        float64                `json:"amount"`
	Symbol        string                 `json:"symbol,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	TransactionID uint                   `json:"transaction_id"`
}

// CashFlowAmount returns the signed amount tx contributes as a cash flow.
// ok is false for trades and for flows carrying neither qty nor price.
func CashFlowAmount(tx ledger.Transaction) (amount float64, ok bool) {
	switch tx.Type {
	case models.TransactionTypeDeposit:
		if v := firstOf(tx.Qty, tx.Price); v != nil {
			return *v, true
		}
	case models.TransactionTypeWithdraw:
		if v := firstOf(tx.Qty, tx.Price); v != nil {
			return -*v, true
		}
	case models.TransactionTypeDividend:
		if tx.Qty != nil && tx.Price != nil {
			return *tx.Qty * *tx.Price, true
		}
		if v := firstOf(tx.Qty, tx.Price); v != nil {
			return *v, true
		}
	}
	return 0, false
}

func isCashFlowType(t models.TransactionType) bool {
	return t == models.TransactionTypeDeposit || t == models.TransactionTypeWithdraw || t == models.TransactionTypeDividend
}

func firstOf(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// CashFlowTracker derives cash flows and the running cash balance.
type CashFlowTracker struct {
	ledger ledger.Reader
	log    *zap.SugaredLogger
}

// NewCashFlowTracker creates a CashFlowTracker.
func NewCashFlowTracker(reader ledger.Reader, log *zap.SugaredLogger) *CashFlowTracker {
	return &CashFlowTracker{ledger: reader, log: logger.OrNop(log)}
}

// GetCashFlows returns the deposit, withdrawal and dividend flows dated in
// [start, end], oldest first.
func (c *CashFlowTracker) GetCashFlows(accountID uint, start, end time.Time) ([]CashFlow, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	start, end = Day(start), Day(end)
	txs, err := c.ledger.ListTransactions(accountID, &start, &end)
	if err != nil {
		return nil, err
	}

	flows := make([]CashFlow, 0)
	for _, tx := range txs {
		if !isCashFlowType(tx.Type) {
			continue
		}
		amount, ok := CashFlowAmount(tx)
		if !ok {
			c.log.Warnw("cash flow has no amount, skipping", "transaction_id", tx.ID, "type", tx.Type)
			continue
		}
		flows = append(flows, CashFlow{
			Date:          Day(tx.Date),
			Type:          tx.Type,
			Amount:        amount,
			Symbol:        prices.NormalizeSymbol(tx.Symbol),
			Notes:         tx.Notes,
			TransactionID: tx.ID,
		})
	}

	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})
	return flows, nil
}

// NetCashFlow returns the sum of the flows in [start, end].
func (c *CashFlowTracker) NetCashFlow(accountID uint, start, end time.Time) (float64, error) {
	flows, err := c.GetCashFlows(accountID, start, end)
	if err != nil {
		return 0, err
	}

	var net float64
	for _, f := range flows {
		net += f.Amount
	}
	return net, nil
}

// GetCashBalance returns the uninvested cash on date: every flow since
// inception plus sale proceeds minus purchase costs. Trades use the recorded
// quantity, so an oversized SELL credits its full proceeds.
func (c *CashFlowTracker) GetCashBalance(accountID uint, date time.Time) (float64, error) {
	end := Day(date)
	txs, err := c.ledger.ListTransactions(accountID, nil, &end)
	if err != nil {
		return 0, err
	}

	var balance float64
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeBuy, models.TransactionTypeSell:
			if tx.Qty == nil || tx.Price == nil {
				continue
			}
			gross := *tx.Qty * *tx.Price
			if tx.Type == models.TransactionTypeBuy {
				balance -= gross + tx.Fee
			} else {
				balance += gross - tx.Fee
			}
		default:
			if amount, ok := CashFlowAmount(tx); ok {
				balance += amount
			}
		}
	}
	return balance, nil
}
