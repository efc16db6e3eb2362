package portfolio

import (
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// Frequency selects the stride of a value series.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// StrideDays returns the step in calendar days. Monthly is a fixed 30 days.
func (f Frequency) StrideDays() (int, bool) {
	switch f {
	case Daily:
		return 1, true
	case Weekly:
		return 7, true
	case Monthly:
		return 30, true
	}
	return 1, false
}

// Holding is one line of a portfolio breakdown.
type Holding struct {
	Qty            float64 `json:"qty"`
	CostBasis      float64 `json:"cost_basis"`
	CurrentValue   float64 `json:"current_value"`
	UnrealizedGain float64 `json:"unrealized_gain"`
}

// Valuation prices positions.
type Valuation struct {
	positions *Reconstructor
	prices    prices.Provider
	log       *zap.SugaredLogger
}

// NewValuation creates a Valuation.
func NewValuation(positions *Reconstructor, provider prices.Provider, log *zap.SugaredLogger) *Valuation {
	return &Valuation{positions: positions, prices: provider, log: logger.OrNop(log)}
}

// Price resolves the close of symbol on date: local lookup first, then a
// download. Provider errors are logged and reported as absent (nil).
func (v *Valuation) Price(symbol string, date time.Time) *float64 {
	day := Day(date)

	p, err := v.prices.GetPrice(symbol, day)
	if err != nil {
		v.log.Warnw("price lookup failed", "symbol", symbol, "date", day.Format(time.DateOnly), "error", err)
		p = nil
	}
	if p == nil {
		p, err = v.prices.DownloadPrice(symbol, day)
		if err != nil {
			v.log.Warnw("could not download price", "symbol", symbol, "date", day.Format(time.DateOnly), "error", err)
			p = nil
		}
	}
	if p == nil {
		return nil
	}
	closePrice := p.Close
	return &closePrice
}

// marketValue is qty × price, or the cost basis when no price is available.
func (v *Valuation) marketValue(pos Position, date time.Time) float64 {
	if price := v.Price(pos.Symbol, date); price != nil {
		return pos.Qty * *price
	}
	v.log.Warnw("no price available, using cost basis as value",
		"symbol", pos.Symbol, "date", Day(date).Format(time.DateOnly))
	return pos.CostBasis
}

// PortfolioValue returns the market value of the open positions on date.
// Uninvested cash is not included.
func (v *Valuation) PortfolioValue(accountID uint, date time.Time) (float64, error) {
	positions, err := v.positions.GetPositions(accountID, date)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, symbol := range positions.Symbols() {
		total += v.marketValue(positions[symbol], date)
	}
	return total, nil
}

// ValueOverTime samples PortfolioValue from start while <= end. An unknown
// frequency is logged and treated as daily.
func (v *Valuation) ValueOverTime(accountID uint, start, end time.Time, frequency Frequency) ([]ValuePoint, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	stride, ok := frequency.StrideDays()
	if !ok {
		v.log.Warnw("unknown frequency, using daily", "frequency", frequency)
	}

	days := Steps(start, end, stride)
	series := make([]ValuePoint, 0, len(days))
	for _, day := range days {
		value, err := v.PortfolioValue(accountID, day)
		if err != nil {
			return nil, err
		}
		series = append(series, ValuePoint{Date: day, Value: value})
	}
	return series, nil
}

// Breakdown returns per-symbol quantity, cost, value and unrealized gain.
func (v *Valuation) Breakdown(accountID uint, date time.Time) (map[string]Holding, error) {
	positions, err := v.positions.GetPositions(accountID, date)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]Holding, len(positions))
	for _, symbol := range positions.Symbols() {
		pos := positions[symbol]
		value := v.marketValue(pos, date)
		breakdown[symbol] = Holding{
			Qty:            pos.Qty,
			CostBasis:      pos.CostBasis,
			CurrentValue:   value,
			UnrealizedGain: value - pos.CostBasis,
		}
	}
	return breakdown, nil
}

// Positions returns the underlying reconstructor.
func (v *Valuation) Positions() *Reconstructor {
	return v.positions
}
