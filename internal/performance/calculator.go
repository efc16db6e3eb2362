package performance

import (
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/cache"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// Calculator is the metrics facade over a portfolio.Engine. Every method
// takes useCache; memoized results live until ClearCache. A Calculator is
// not safe for concurrent use.
type Calculator struct {
	engine    *portfolio.Engine
	gains     *Gains
	returns   *Returns
	risk      *Risk
	dividends *Dividends
	cache     *cache.Cache
	log       *zap.SugaredLogger
}

// NewCalculator composes the metric calculators over engine. A nil cache
// disables memoization.
func NewCalculator(engine *portfolio.Engine, c *cache.Cache, log *zap.SugaredLogger) *Calculator {
	log = logger.OrNop(log)
	gains := NewGains(engine, log)
	returns := NewReturns(engine, gains, log)
	return &Calculator{
		engine:    engine,
		gains:     gains,
		returns:   returns,
		risk:      NewRisk(engine, returns, log),
		dividends: NewDividends(engine, log),
		cache:     c,
		log:       log,
	}
}

// Engine returns the portfolio engine the calculator reads from.
func (c *Calculator) Engine() *portfolio.Engine { return c.engine }

// ClearCache drops the calculator's memoized results. The engine's cache is
// separate.
func (c *Calculator) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
	c.log.Debug("metrics cache cleared")
}

func rangeKey(op string, accountID uint, start, end time.Time) string {
	return cache.Key(op, accountID, portfolio.Day(start), portfolio.Day(end))
}

func dayKey(op string, accountID uint, date time.Time) string {
	return cache.Key(op, accountID, portfolio.Day(date))
}

// Realized returns realized gains in [start, end].
func (c *Calculator) Realized(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("realized", accountID, start, end), func() (float64, error) {
		return c.gains.Realized(accountID, start, end)
	})
}

// RealizedBySymbol returns realized gains in [start, end] per symbol.
func (c *Calculator) RealizedBySymbol(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("realized_by_symbol", accountID, start, end), func() (map[string]float64, error) {
		return c.gains.RealizedBySymbol(accountID, start, end)
	})
}

// RealizedHistory returns cumulative realized gains per day.
func (c *Calculator) RealizedHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.ValuePoint, error) {
	return cache.Memo(c.cache, useCache, rangeKey("realized_history", accountID, start, end), func() ([]portfolio.ValuePoint, error) {
		return c.gains.RealizedHistory(accountID, start, end)
	})
}

// Unrealized returns unrealized gains on date.
func (c *Calculator) Unrealized(accountID uint, date time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, dayKey("unrealized", accountID, date), func() (float64, error) {
		return c.gains.Unrealized(accountID, date)
	})
}

// UnrealizedBySymbol returns unrealized gains on date per symbol.
func (c *Calculator) UnrealizedBySymbol(accountID uint, date time.Time, useCache bool) (map[string]float64, error) {
	return cache.Memo(c.cache, useCache, dayKey("unrealized_by_symbol", accountID, date), func() (map[string]float64, error) {
		return c.gains.UnrealizedBySymbol(accountID, date)
	})
}

// UnrealizedHistory returns unrealized gains per day.
func (c *Calculator) UnrealizedHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.ValuePoint, error) {
	return cache.Memo(c.cache, useCache, rangeKey("unrealized_history", accountID, start, end), func() ([]portfolio.ValuePoint, error) {
		return c.gains.UnrealizedHistory(accountID, start, end)
	})
}

// TotalReturn returns realized + unrealized + dividends.
func (c *Calculator) TotalReturn(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("total_return", accountID, start, end), func() (float64, error) {
		return c.returns.TotalReturn(accountID, start, end)
	})
}

// TotalReturnPct returns TotalReturn relative to the start value.
func (c *Calculator) TotalReturnPct(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("total_return_pct", accountID, start, end), func() (float64, error) {
		return c.returns.TotalReturnPct(accountID, start, end)
	})
}

// CAGR returns the compound annual growth rate.
func (c *Calculator) CAGR(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("cagr", accountID, start, end), func() (float64, error) {
		return c.returns.CAGR(accountID, start, end)
	})
}

// CAGRHistory returns CAGR from start to each day.
func (c *Calculator) CAGRHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.ValuePoint, error) {
	return cache.Memo(c.cache, useCache, rangeKey("cagr_history", accountID, start, end), func() ([]portfolio.ValuePoint, error) {
		return c.returns.CAGRHistory(accountID, start, end)
	})
}

// IRR returns the internal rate of return, or nil when undefined.
func (c *Calculator) IRR(accountID uint, start, end time.Time, useCache bool) (*float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("irr", accountID, start, end), func() (*float64, error) {
		return c.returns.IRR(accountID, start, end)
	})
}

// IRRHistory returns IRR from start to each day.
func (c *Calculator) IRRHistory(accountID uint, start, end time.Time, useCache bool) ([]RatePoint, error) {
	return cache.Memo(c.cache, useCache, rangeKey("irr_history", accountID, start, end), func() ([]RatePoint, error) {
		return c.returns.IRRHistory(accountID, start, end)
	})
}

// TWRR returns the time-weighted return.
func (c *Calculator) TWRR(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("twrr", accountID, start, end), func() (float64, error) {
		return c.returns.TWRR(accountID, start, end)
	})
}

// TWRRHistory returns TWRR from start to each day.
func (c *Calculator) TWRRHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.ValuePoint, error) {
	return cache.Memo(c.cache, useCache, rangeKey("twrr_history", accountID, start, end), func() ([]portfolio.ValuePoint, error) {
		return c.returns.TWRRHistory(accountID, start, end)
	})
}

// DividendHistory returns the dividends received in [start, end].
func (c *Calculator) DividendHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error) {
	return cache.Memo(c.cache, useCache, rangeKey("dividend_history", accountID, start, end), func() ([]portfolio.CashFlow, error) {
		return c.dividends.History(accountID, start, end)
	})
}

// DividendIncome returns the dividend total in [start, end].
func (c *Calculator) DividendIncome(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("dividend_income", accountID, start, end), func() (float64, error) {
		return c.dividends.Income(accountID, start, end)
	})
}

// DividendsBySymbol returns dividends in [start, end] per symbol.
func (c *Calculator) DividendsBySymbol(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("dividends_by_symbol", accountID, start, end), func() (map[string]float64, error) {
		return c.dividends.BySymbol(accountID, start, end)
	})
}

// DividendYield returns the trailing-year portfolio dividend yield.
func (c *Calculator) DividendYield(accountID uint, date time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, dayKey("dividend_yield", accountID, date), func() (float64, error) {
		return c.dividends.Yield(accountID, date)
	})
}

// DividendYieldBySymbol returns the trailing-year dividend yield of symbol.
func (c *Calculator) DividendYieldBySymbol(symbol string, accountID uint, date time.Time, useCache bool) (float64, error) {
	key := cache.Key("dividend_yield_by_symbol", prices.NormalizeSymbol(symbol), accountID, portfolio.Day(date))
	return cache.Memo(c.cache, useCache, key, func() (float64, error) {
		return c.dividends.YieldBySymbol(symbol, accountID, date)
	})
}

// SharpeRatio returns the annualized Sharpe ratio, or nil at zero volatility.
func (c *Calculator) SharpeRatio(accountID uint, start, end time.Time, riskFreeRate float64, useCache bool) (*float64, error) {
	key := cache.Key("sharpe", accountID, portfolio.Day(start), portfolio.Day(end), riskFreeRate)
	return cache.Memo(c.cache, useCache, key, func() (*float64, error) {
		return c.risk.SharpeRatio(accountID, start, end, riskFreeRate)
	})
}

// MaxDrawdown returns the largest decline from a running peak.
func (c *Calculator) MaxDrawdown(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("max_drawdown", accountID, start, end), func() (float64, error) {
		return c.risk.MaxDrawdown(accountID, start, end)
	})
}

// Volatility returns annualized daily-return volatility.
func (c *Calculator) Volatility(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	return cache.Memo(c.cache, useCache, rangeKey("volatility", accountID, start, end), func() (float64, error) {
		return c.risk.Volatility(accountID, start, end)
	})
}

// Beta returns the portfolio beta against benchmarkSymbol, or nil when
// undefined.
func (c *Calculator) Beta(accountID uint, benchmarkSymbol string, start, end time.Time, useCache bool) (*float64, error) {
	key := cache.Key("beta", accountID, prices.NormalizeSymbol(benchmarkSymbol), portfolio.Day(start), portfolio.Day(end))
	return cache.Memo(c.cache, useCache, key, func() (*float64, error) {
		return c.risk.Beta(accountID, benchmarkSymbol, start, end)
	})
}
