// Package portfolio reconstructs positions, cash flows and valuations from the
// transaction ledger.
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

// Position is the holding in one symbol at a point in time.
type Position struct {
	Symbol    string  `json:"symbol"`
	Qty       float64 `json:"qty"`
	CostBasis float64 `json:"cost_basis"`
	AvgCost   float64 `json:"avg_cost"`
}

// Positions maps symbol to its open position.
type Positions map[string]Position

// Symbols returns the held symbols in sorted order.
func (p Positions) Symbols() []string {
	symbols := make([]string, 0, len(p))
	for s := range p {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// PositionAt is a position observed on a given day.
type PositionAt struct {
	Date     time.Time `json:"date"`
	Position Position  `json:"position"`
}

// Replay folds transactions into positions using the average-cost method.
// Transactions are ordered by (date, id) before replay. Non-trade types and
// trades missing symbol, qty or price are skipped; symbols whose quantity
// reaches zero are dropped.
func Replay(txs []ledger.Transaction, log *zap.SugaredLogger) Positions {
	log = logger.OrNop(log)

	ordered := make([]ledger.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID < ordered[j].ID
	})

	positions := make(Positions)
	for _, tx := range ordered {
		if tx.Type != models.TransactionTypeBuy && tx.Type != models.TransactionTypeSell {
			continue
		}
		symbol := prices.NormalizeSymbol(tx.Symbol)
		if symbol == "" || tx.Qty == nil || tx.Price == nil {
			log.Debugw("skipping incomplete trade", "transaction_id", tx.ID, "type", tx.Type)
			continue
		}

		pos := positions[symbol]
		pos.Symbol = symbol
		qty, price := *tx.Qty, *tx.Price

		switch tx.Type {
		case models.TransactionTypeBuy:
			pos.Qty += qty
			pos.CostBasis += qty*price + tx.Fee
			if pos.Qty > 0 {
				pos.AvgCost = pos.CostBasis / pos.Qty
			}
		case models.TransactionTypeSell:
			sellQty := qty
			if sellQty > pos.Qty {
				log.Warnw("sell exceeds held quantity, clamping",
					"symbol", symbol, "transaction_id", tx.ID, "requested", qty, "held", pos.Qty)
				sellQty = pos.Qty
			}
			pos.CostBasis -= sellQty * pos.AvgCost
			pos.Qty -= sellQty
			if pos.Qty > 0 {
				pos.AvgCost = pos.CostBasis / pos.Qty
			} else {
				pos.AvgCost = 0
			}
		}
		positions[symbol] = pos
	}

	for symbol, pos := range positions {
		if pos.Qty <= 0 {
			delete(positions, symbol)
		}
	}
	return positions
}

// Reconstructor derives positions for an account as of a date.
type Reconstructor struct {
	ledger ledger.Reader
	clock  Clock
	log    *zap.SugaredLogger
}

// NewReconstructor creates a Reconstructor. A nil clock means time.Now.
func NewReconstructor(reader ledger.Reader, clock Clock, log *zap.SugaredLogger) *Reconstructor {
	if clock == nil {
		clock = time.Now
	}
	return &Reconstructor{ledger: reader, clock: clock, log: logger.OrNop(log)}
}

// GetPositions returns the open positions for accountID after replaying every
// transaction dated on or before asOf.
func (r *Reconstructor) GetPositions(accountID uint, asOf time.Time) (Positions, error) {
	end := Day(asOf)
	txs, err := r.ledger.ListTransactions(accountID, nil, &end)
	if err != nil {
		return nil, err
	}
	return Replay(txs, r.log), nil
}

// GetAllPositions returns positions for every account; accounts with nothing
// open are omitted.
func (r *Reconstructor) GetAllPositions(asOf time.Time) (map[uint]Positions, error) {
	accounts, err := r.ledger.ListAccounts()
	if err != nil {
		return nil, err
	}

	all := make(map[uint]Positions, len(accounts))
	for _, a := range accounts {
		positions, err := r.GetPositions(a.ID, asOf)
		if err != nil {
			return nil, err
		}
		if len(positions) > 0 {
			all[a.ID] = positions
		}
	}
	return all, nil
}

// GetCurrentPositions returns positions as of today.
func (r *Reconstructor) GetCurrentPositions(accountID uint) (Positions, error) {
	return r.GetPositions(accountID, r.clock())
}

// Today returns the current calendar day according to the injected clock.
func (r *Reconstructor) Today() time.Time {
	return Day(r.clock())
}

// GetPositionHistory returns the position in symbol for each day in
// [start, end]. Days without a holding carry a zero position.
func (r *Reconstructor) GetPositionHistory(symbol string, accountID uint, start, end time.Time) ([]PositionAt, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	symbol = prices.NormalizeSymbol(symbol)

	days := EachDay(start, end)
	history := make([]PositionAt, 0, len(days))
	for _, day := range days {
		positions, err := r.GetPositions(accountID, day)
		if err != nil {
			return nil, err
		}
		pos, ok := positions[symbol]
		if !ok {
			pos = Position{Symbol: symbol}
		}
		history = append(history, PositionAt{Date: day, Position: pos})
	}
	return history, nil
}

// CalculatePRU returns the average cost per unit (prix de revient unitaire)
// of symbol on date, or 0 when nothing is held.
func (r *Reconstructor) CalculatePRU(symbol string, accountID uint, date time.Time) (float64, error) {
	positions, err := r.GetPositions(accountID, date)
	if err != nil {
		return 0, err
	}
	return positions[prices.NormalizeSymbol(symbol)].AvgCost, nil
}

// GetPRUHistory returns the PRU of symbol for each day in [start, end].
func (r *Reconstructor) GetPRUHistory(symbol string, accountID uint, start, end time.Time) ([]ValuePoint, error) {
	history, err := r.GetPositionHistory(symbol, accountID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]ValuePoint, 0, len(history))
	for _, h := range history {
		out = append(out, ValuePoint{Date: h.Date, Value: h.Position.AvgCost})
	}
	return out, nil
}
