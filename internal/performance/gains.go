// Package performance computes gains, returns, risk and dividend metrics on
// top of the portfolio engine. Metrics that cannot be computed are reported
// as nil or zero, never as errors.
package performance

import (
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// Gains computes realized and unrealized profit and loss.
type Gains struct {
	ledger    ledger.Reader
	positions *portfolio.Reconstructor
	valuation *portfolio.Valuation
	log       *zap.SugaredLogger
}

// NewGains creates a Gains calculator over engine's components.
func NewGains(engine *portfolio.Engine, log *zap.SugaredLogger) *Gains {
	return &Gains{
		ledger:    engine.Ledger(),
		positions: engine.Reconstructor(),
		valuation: engine.Valuation(),
		log:       logger.OrNop(log),
	}
}

// realizedSale is the profit of one SELL against the average cost held at the
// start of its day.
type realizedSale struct {
	symbol string
	gain   float64
}

func (g *Gains) sales(accountID uint, start, end time.Time) ([]realizedSale, error) {
	if err := portfolio.ValidateRange(start, end); err != nil {
		return nil, err
	}

	start, end = portfolio.Day(start), portfolio.Day(end)
	txs, err := g.ledger.ListTransactions(accountID, &start, &end)
	if err != nil {
		return nil, err
	}

	var sales []realizedSale
	for _, tx := range txs {
		if tx.Type != models.TransactionTypeSell {
			continue
		}
		symbol := prices.NormalizeSymbol(tx.Symbol)
		if symbol == "" || tx.Qty == nil || tx.Price == nil {
			continue
		}

		// Same-day sells all see the previous day's average cost.
		held, err := g.positions.GetPositions(accountID, portfolio.Day(tx.Date).AddDate(0, 0, -1))
		if err != nil {
			return nil, err
		}
		pos, ok := held[symbol]
		if !ok {
			g.log.Warnw("no position before sell, skipping",
				"symbol", symbol, "transaction_id", tx.ID, "date", tx.Date.Format(time.DateOnly))
			sales = append(sales, realizedSale{symbol: symbol})
			continue
		}

		qty, price := *tx.Qty, *tx.Price
		proceeds := qty*price - tx.Fee
		sales = append(sales, realizedSale{symbol: symbol, gain: proceeds - qty*pos.AvgCost})
	}
	return sales, nil
}

// Realized returns the realized gain of the SELLs dated in [start, end].
func (g *Gains) Realized(accountID uint, start, end time.Time) (float64, error) {
	sales, err := g.sales(accountID, start, end)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, s := range sales {
		total += s.gain
	}
	return total, nil
}

// RealizedBySymbol breaks Realized down per symbol. Every symbol sold in the
// range appears, even when its sales were skipped.
func (g *Gains) RealizedBySymbol(accountID uint, start, end time.Time) (map[string]float64, error) {
	sales, err := g.sales(accountID, start, end)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]float64)
	for _, s := range sales {
		bySymbol[s.symbol] += s.gain
	}
	return bySymbol, nil
}

// RealizedHistory returns the cumulative realized gain from start through
// each day in [start, end].
func (g *Gains) RealizedHistory(accountID uint, start, end time.Time) ([]portfolio.ValuePoint, error) {
	return history(start, end, func(day time.Time) (float64, error) {
		return g.Realized(accountID, start, day)
	})
}

// UnrealizedBySymbol returns qty × price − cost basis for each open position
// on date. Positions without a price are left out.
func (g *Gains) UnrealizedBySymbol(accountID uint, date time.Time) (map[string]float64, error) {
	positions, err := g.positions.GetPositions(accountID, date)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]float64, len(positions))
	for _, symbol := range positions.Symbols() {
		pos := positions[symbol]
		price := g.valuation.Price(symbol, date)
		if price == nil {
			g.log.Debugw("no price, excluding from unrealized gains",
				"symbol", symbol, "date", portfolio.Day(date).Format(time.DateOnly))
			continue
		}
		bySymbol[symbol] = pos.Qty*(*price) - pos.CostBasis
	}
	return bySymbol, nil
}

// Unrealized returns the total unrealized gain on date.
func (g *Gains) Unrealized(accountID uint, date time.Time) (float64, error) {
	bySymbol, err := g.UnrealizedBySymbol(accountID, date)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, gain := range bySymbol {
		total += gain
	}
	return total, nil
}

// UnrealizedHistory returns the unrealized gain on each day in [start, end].
func (g *Gains) UnrealizedHistory(accountID uint, start, end time.Time) ([]portfolio.ValuePoint, error) {
	return history(start, end, func(day time.Time) (float64, error) {
		return g.Unrealized(accountID, day)
	})
}
