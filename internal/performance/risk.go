package performance

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// Risk computes volatility, drawdown and risk-adjusted return metrics from the
// daily value series.
type Risk struct {
	valuation *portfolio.Valuation
	returns   *Returns
	prices    prices.Provider
	log       *zap.SugaredLogger
}

// NewRisk creates a Risk calculator.
func NewRisk(engine *portfolio.Engine, returns *Returns, log *zap.SugaredLogger) *Risk {
	return &Risk{
		valuation: engine.Valuation(),
		returns:   returns,
		prices:    engine.Prices(),
		log:       logger.OrNop(log),
	}
}

func (k *Risk) dailySeries(accountID uint, start, end time.Time) ([]portfolio.ValuePoint, error) {
	return k.valuation.ValueOverTime(accountID, start, end, portfolio.Daily)
}

func values(series []portfolio.ValuePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}

// Volatility returns the annualized sample standard deviation of daily
// returns, or 0 with fewer than two returns.
func (k *Risk) Volatility(accountID uint, start, end time.Time) (float64, error) {
	series, err := k.dailySeries(accountID, start, end)
	if err != nil {
		return 0, err
	}

	returns := DailyReturns(values(series))
	if len(returns) < 2 {
		return 0, nil
	}
	return SampleStdDev(returns) * math.Sqrt(TradingDaysPerYear), nil
}

// MaxDrawdown returns the largest peak-to-trough decline of the daily value
// series as a fraction of the peak.
func (k *Risk) MaxDrawdown(accountID uint, start, end time.Time) (float64, error) {
	series, err := k.dailySeries(accountID, start, end)
	if err != nil {
		return 0, err
	}
	return MaxDrawdownOf(values(series)), nil
}

// SharpeRatio returns the annualized excess return over riskFreeRate per unit
// of volatility, or nil when volatility is zero. For periods shorter than a
// year the volatility is scaled up by √(365.25/days).
func (k *Risk) SharpeRatio(accountID uint, start, end time.Time, riskFreeRate float64) (*float64, error) {
	totalPct, err := k.returns.TotalReturnPct(accountID, start, end)
	if err != nil {
		return nil, err
	}
	volatility, err := k.Volatility(accountID, start, end)
	if err != nil {
		return nil, err
	}
	if volatility == 0 {
		return nil, nil
	}

	excess := totalPct - riskFreeRate
	if days := portfolio.DaysBetween(start, end); days > 0 {
		excess /= float64(days) / DaysPerYear
		if days < 365 {
			volatility *= math.Sqrt(DaysPerYear / float64(days))
		}
	}

	ratio := excess / volatility
	return &ratio, nil
}

// Beta returns the sample covariance of portfolio and benchmark daily returns
// over the benchmark variance. The benchmark is loaded from the local store in
// one range query; only days where it has a close on both the day and the day
// before are used. Nil means fewer than two aligned returns or a flat
// benchmark.
func (k *Risk) Beta(accountID uint, benchmarkSymbol string, start, end time.Time) (*float64, error) {
	series, err := k.dailySeries(accountID, start, end)
	if err != nil {
		return nil, err
	}

	points, err := k.prices.GetPrices(prices.NormalizeSymbol(benchmarkSymbol), start, end)
	if err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, nil
	}
	closes := make(map[int64]float64, len(points))
	for _, p := range points {
		closes[portfolio.Day(p.Date).Unix()] = p.Close
	}

	var portfolioReturns, benchmarkReturns []float64
	for i := 1; i < len(series); i++ {
		prevClose, okPrev := closes[series[i-1].Date.Unix()]
		curClose, okCur := closes[series[i].Date.Unix()]
		if !okPrev || !okCur {
			continue
		}
		prevValue := series[i-1].Value
		if prevValue <= 0 || prevClose <= 0 {
			continue
		}
		portfolioReturns = append(portfolioReturns, (series[i].Value-prevValue)/prevValue)
		benchmarkReturns = append(benchmarkReturns, (curClose-prevClose)/prevClose)
	}

	if len(portfolioReturns) < 2 {
		return nil, nil
	}
	variance := Covariance(benchmarkReturns, benchmarkReturns)
	if variance == 0 {
		return nil, nil
	}

	beta := Covariance(portfolioReturns, benchmarkReturns) / variance
	return &beta, nil
}
