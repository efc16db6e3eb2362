package performance

import (
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// yieldWindowDays is the trailing window used for dividend yields.
const yieldWindowDays = 365

// Dividends analyses dividend income.
type Dividends struct {
	cashFlows *portfolio.CashFlowTracker
	positions *portfolio.Reconstructor
	valuation *portfolio.Valuation
	log       *zap.SugaredLogger
}

// NewDividends creates a Dividends analyser.
func NewDividends(engine *portfolio.Engine, log *zap.SugaredLogger) *Dividends {
	return &Dividends{
		cashFlows: engine.CashFlowTracker(),
		positions: engine.Reconstructor(),
		valuation: engine.Valuation(),
		log:       logger.OrNop(log),
	}
}

// History returns the DIVIDEND cash flows in [start, end].
func (d *Dividends) History(accountID uint, start, end time.Time) ([]portfolio.CashFlow, error) {
	flows, err := d.cashFlows.GetCashFlows(accountID, start, end)
	if err != nil {
		return nil, err
	}

	dividends := make([]portfolio.CashFlow, 0, len(flows))
	for _, f := range flows {
		if f.Type == models.TransactionTypeDividend {
			dividends = append(dividends, f)
		}
	}
	return dividends, nil
}

// Income returns the dividends received in [start, end].
func (d *Dividends) Income(accountID uint, start, end time.Time) (float64, error) {
	dividends, err := d.History(accountID, start, end)
	if err != nil {
		return 0, err
	}
	return sumAmounts(dividends, ""), nil
}

// BySymbol returns the dividends received in [start, end] per symbol.
// Dividends without a symbol are left out.
func (d *Dividends) BySymbol(accountID uint, start, end time.Time) (map[string]float64, error) {
	dividends, err := d.History(accountID, start, end)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]float64)
	for _, div := range dividends {
		if div.Symbol == "" {
			continue
		}
		bySymbol[div.Symbol] += div.Amount
	}
	return bySymbol, nil
}

// Yield returns the trailing-year dividends over the portfolio value on date,
// or 0 when the portfolio is empty.
func (d *Dividends) Yield(accountID uint, date time.Time) (float64, error) {
	trailing, err := d.History(accountID, yearBefore(date), date)
	if err != nil {
		return 0, err
	}
	value, err := d.valuation.PortfolioValue(accountID, date)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, nil
	}
	return sumAmounts(trailing, "") / value, nil
}

// YieldBySymbol returns the trailing-year dividends of symbol over the market
// value of its position on date. It is 0 without a position or a price.
func (d *Dividends) YieldBySymbol(symbol string, accountID uint, date time.Time) (float64, error) {
	symbol = prices.NormalizeSymbol(symbol)

	trailing, err := d.History(accountID, yearBefore(date), date)
	if err != nil {
		return 0, err
	}
	positions, err := d.positions.GetPositions(accountID, date)
	if err != nil {
		return 0, err
	}

	pos, ok := positions[symbol]
	if !ok || pos.Qty <= 0 {
		return 0, nil
	}
	price := d.valuation.Price(symbol, date)
	if price == nil {
		return 0, nil
	}
	value := pos.Qty * *price
	if value == 0 {
		return 0, nil
	}
	return sumAmounts(trailing, symbol) / value, nil
}

func yearBefore(date time.Time) time.Time {
	return portfolio.Day(date).AddDate(0, 0, -yieldWindowDays)
}

// sumAmounts totals flows, restricted to symbol when it is not empty.
func sumAmounts(flows []portfolio.CashFlow, symbol string) float64 {
	var total float64
	for _, f := range flows {
		if symbol == "" || f.Symbol == symbol {
			total += f.Amount
		}
	}
	return total
}
