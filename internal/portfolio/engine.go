package portfolio

import (
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/cache"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// Engine is the portfolio facade. Every cached method takes useCache; the
// cache is only emptied by ClearCache, so callers must clear it after
// recording transactions. An Engine is not safe for concurrent use.
type Engine struct {
	ledger    ledger.Reader
	prices    prices.Provider
	positions *Reconstructor
	cashFlows *CashFlowTracker
	valuation *Valuation
	cache     *cache.Cache
	log       *zap.SugaredLogger
}

// NewEngine wires the portfolio components around reader and provider.
// A nil cache disables memoization.
func NewEngine(reader ledger.Reader, provider prices.Provider, c *cache.Cache, clock Clock, log *zap.SugaredLogger) *Engine {
	log = logger.OrNop(log)
	positions := NewReconstructor(reader, clock, log)
	return &Engine{
		ledger:    reader,
		prices:    provider,
		positions: positions,
		cashFlows: NewCashFlowTracker(reader, log),
		valuation: NewValuation(positions, provider, log),
		cache:     c,
		log:       log,
	}
}

// ClearCache drops every memoized result.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Ledger returns the ledger reader the engine was built with.
func (e *Engine) Ledger() ledger.Reader { return e.ledger }

// Prices returns the price provider the engine was built with.
func (e *Engine) Prices() prices.Provider { return e.prices }

// Reconstructor returns the position reconstructor.
func (e *Engine) Reconstructor() *Reconstructor { return e.positions }

// CashFlowTracker returns the cash flow tracker.
func (e *Engine) CashFlowTracker() *CashFlowTracker { return e.cashFlows }

// Valuation returns the valuation service.
func (e *Engine) Valuation() *Valuation { return e.valuation }

// GetPositions returns the open positions of accountID on date.
func (e *Engine) GetPositions(accountID uint, date time.Time, useCache bool) (Positions, error) {
	return cache.Memo(e.cache, useCache, cache.Key("positions", accountID, Day(date)), func() (Positions, error) {
		return e.positions.GetPositions(accountID, date)
	})
}

// GetAllPositions returns open positions for every account on date.
func (e *Engine) GetAllPositions(date time.Time, useCache bool) (map[uint]Positions, error) {
	return cache.Memo(e.cache, useCache, cache.Key("all_positions", Day(date)), func() (map[uint]Positions, error) {
		return e.positions.GetAllPositions(date)
	})
}

// GetCurrentPositions returns today's positions. It is never cached since
// "today" moves.
func (e *Engine) GetCurrentPositions(accountID uint) (Positions, error) {
	return e.positions.GetCurrentPositions(accountID)
}

// GetPositionHistory returns the daily position in symbol over [start, end].
func (e *Engine) GetPositionHistory(symbol string, accountID uint, start, end time.Time, useCache bool) ([]PositionAt, error) {
	key := cache.Key("position_history", prices.NormalizeSymbol(symbol), accountID, Day(start), Day(end))
	return cache.Memo(e.cache, useCache, key, func() ([]PositionAt, error) {
		return e.positions.GetPositionHistory(symbol, accountID, start, end)
	})
}

// CalculatePRU returns the average cost of symbol on date.
func (e *Engine) CalculatePRU(symbol string, accountID uint, date time.Time, useCache bool) (float64, error) {
	return cache.Memo(e.cache, useCache, cache.Key("pru", prices.NormalizeSymbol(symbol), accountID, Day(date)), func() (float64, error) {
		return e.positions.CalculatePRU(symbol, accountID, date)
	})
}

// GetPRUHistory returns the daily average cost of symbol over [start, end].
func (e *Engine) GetPRUHistory(symbol string, accountID uint, start, end time.Time, useCache bool) ([]ValuePoint, error) {
	key := cache.Key("pru_history", prices.NormalizeSymbol(symbol), accountID, Day(start), Day(end))
	return cache.Memo(e.cache, useCache, key, func() ([]ValuePoint, error) {
		return e.positions.GetPRUHistory(symbol, accountID, start, end)
	})
}

// PortfolioValue returns the market value of accountID on date.
func (e *Engine) PortfolioValue(accountID uint, date time.Time, useCache bool) (float64, error) {
	return cache.Memo(e.cache, useCache, cache.Key("portfolio_value", accountID, Day(date)), func() (float64, error) {
		return e.valuation.PortfolioValue(accountID, date)
	})
}

// ValueOverTime returns the value series of accountID at frequency.
func (e *Engine) ValueOverTime(accountID uint, start, end time.Time, frequency Frequency, useCache bool) ([]ValuePoint, error) {
	key := cache.Key("value_over_time", accountID, Day(start), Day(end), frequency)
	return cache.Memo(e.cache, useCache, key, func() ([]ValuePoint, error) {
		return e.valuation.ValueOverTime(accountID, start, end, frequency)
	})
}

// Breakdown returns the per-symbol breakdown of accountID on date.
func (e *Engine) Breakdown(accountID uint, date time.Time, useCache bool) (map[string]Holding, error) {
	return cache.Memo(e.cache, useCache, cache.Key("breakdown", accountID, Day(date)), func() (map[string]Holding, error) {
		return e.valuation.Breakdown(accountID, date)
	})
}

// GetCashFlows returns the cash flows of accountID in [start, end].
func (e *Engine) GetCashFlows(accountID uint, start, end time.Time, useCache bool) ([]CashFlow, error) {
	return cache.Memo(e.cache, useCache, cache.Key("cash_flows", accountID, Day(start), Day(end)), func() ([]CashFlow, error) {
		return e.cashFlows.GetCashFlows(accountID, start, end)
	})
}

// NetCashFlow returns the summed cash flows of accountID in [start, end].
func (e *Engine) NetCashFlow(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(e.cache, useCache, cache.Key("net_cash_flow", accountID, Day(start), Day(end)), func() (float64, error) {
		return e.cashFlows.NetCashFlow(accountID, start, end)
	})
}

// GetCashBalance returns the cash balance of accountID on date.
func (e *Engine) GetCashBalance(accountID uint, date time.Time, useCache bool) (float64, error) {
	return cache.Memo(e.cache, useCache, cache.Key("cash_balance", accountID, Day(date)), func() (float64, error) {
		return e.cashFlows.GetCashBalance(accountID, date)
	})
}
