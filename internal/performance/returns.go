package performance

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/portfolio"
)

// IRR solver parameters.
const (
	irrGuess         = 0.1
	irrMaxIterations = 100
	irrTolerance     = 1e-6
	irrRateFloor     = -0.99
)

// Flow is a signed amount on a date, seen from the investor: money put in is
// negative, money taken out is positive.
type Flow struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// RatePoint is a dated metric that may be undefined.
type RatePoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// Returns computes total, annualized and money- or time-weighted returns.
type Returns struct {
	gains     *Gains
	cashFlows *portfolio.CashFlowTracker
	valuation *portfolio.Valuation
	log       *zap.SugaredLogger
}

// NewReturns creates a Returns calculator.
func NewReturns(engine *portfolio.Engine, gains *Gains, log *zap.SugaredLogger) *Returns {
	return &Returns{
		gains:     gains,
		cashFlows: engine.CashFlowTracker(),
		valuation: engine.Valuation(),
		log:       logger.OrNop(log),
	}
}

// TotalReturn is realized gains in range, plus unrealized gains at end, plus
// dividends received in range.
func (r *Returns) TotalReturn(accountID uint, start, end time.Time) (float64, error) {
	realized, err := r.gains.Realized(accountID, start, end)
	if err != nil {
		return 0, err
	}
	unrealized, err := r.gains.Unrealized(accountID, end)
	if err != nil {
		return 0, err
	}
	flows, err := r.cashFlows.GetCashFlows(accountID, start, end)
	if err != nil {
		return 0, err
	}

	var dividends float64
	for _, f := range flows {
		if f.Type == models.TransactionTypeDividend {
			dividends += f.Amount
		}
	}
	return realized + unrealized + dividends, nil
}

// TotalReturnPct is TotalReturn relative to the value at start, or 0 when the
// portfolio was empty at start.
func (r *Returns) TotalReturnPct(accountID uint, start, end time.Time) (float64, error) {
	if err := portfolio.ValidateRange(start, end); err != nil {
		return 0, err
	}

	startValue, err := r.valuation.PortfolioValue(accountID, start)
	if err != nil {
		return 0, err
	}
	if startValue == 0 {
		return 0, nil
	}

	total, err := r.TotalReturn(accountID, start, end)
	if err != nil {
		return 0, err
	}
	return total / startValue, nil
}

// CAGR returns the compound annual growth rate between the values at start
// and end. It is 0 without a positive start value or elapsed time, and -1
// when the end value is not positive.
func (r *Returns) CAGR(accountID uint, start, end time.Time) (float64, error) {
	if err := portfolio.ValidateRange(start, end); err != nil {
		return 0, err
	}

	startValue, err := r.valuation.PortfolioValue(accountID, start)
	if err != nil {
		return 0, err
	}
	endValue, err := r.valuation.PortfolioValue(accountID, end)
	if err != nil {
		return 0, err
	}

	days := portfolio.DaysBetween(start, end)
	if startValue <= 0 || days <= 0 {
		return 0, nil
	}
	if endValue <= 0 {
		return -1, nil
	}
	return math.Pow(endValue/startValue, DaysPerYear/float64(days)) - 1, nil
}

// CAGRHistory evaluates CAGR from start to each day in [start, end].
func (r *Returns) CAGRHistory(accountID uint, start, end time.Time) ([]portfolio.ValuePoint, error) {
	return history(start, end, func(day time.Time) (float64, error) {
		return r.CAGR(accountID, start, day)
	})
}

// IRRFlows builds the cash-flow series for [start, end]: the value at start
// and every deposit as outflows, withdrawals at their ledger sign (negative),
// dividends as income, and the value at end as a final payout.
func (r *Returns) IRRFlows(accountID uint, start, end time.Time) ([]Flow, error) {
	if err := portfolio.ValidateRange(start, end); err != nil {
		return nil, err
	}

	cashFlows, err := r.cashFlows.GetCashFlows(accountID, start, end)
	if err != nil {
		return nil, err
	}
	startValue, err := r.valuation.PortfolioValue(accountID, start)
	if err != nil {
		return nil, err
	}
	endValue, err := r.valuation.PortfolioValue(accountID, end)
	if err != nil {
		return nil, err
	}

	flows := make([]Flow, 0, len(cashFlows)+2)
	if startValue > 0 {
		flows = append(flows, Flow{Date: portfolio.Day(start), Amount: -startValue})
	}
	for _, cf := range cashFlows {
		amount := cf.Amount
		if cf.Type == models.TransactionTypeDeposit {
			amount = -amount
		}
		flows = append(flows, Flow{Date: cf.Date, Amount: amount})
	}
	if endValue > 0 {
		flows = append(flows, Flow{Date: portfolio.Day(end), Amount: endValue})
	}
	return flows, nil
}

// IRR returns the internal rate of return over [start, end], or nil when
// there are too few flows or the solver does not converge.
func (r *Returns) IRR(accountID uint, start, end time.Time) (*float64, error) {
	flows, err := r.IRRFlows(accountID, start, end)
	if err != nil {
		return nil, err
	}

	rate := SolveIRR(flows)
	if rate == nil {
		r.log.Debugw("irr undefined", "account_id", accountID, "flows", len(flows))
	}
	return rate, nil
}

// IRRHistory evaluates IRR from start to each day in [start, end].
func (r *Returns) IRRHistory(accountID uint, start, end time.Time) ([]RatePoint, error) {
	if err := portfolio.ValidateRange(start, end); err != nil {
		return nil, err
	}

	days := portfolio.EachDay(start, end)
	out := make([]RatePoint, 0, len(days))
	for _, day := range days {
		rate, err := r.IRR(accountID, start, day)
		if err != nil {
			return nil, err
		}
		out = append(out, RatePoint{Date: day, Value: rate})
	}
	return out, nil
}

// SolveIRR finds the annual rate at which the net present value of flows is
// zero using Newton-Raphson. Time is measured in years from the first flow.
// It returns nil for fewer than two flows, a flat derivative, or no
// convergence within the iteration budget.
func SolveIRR(flows []Flow) *float64 {
	if len(flows) < 2 {
		return nil
	}

	origin := portfolio.Day(flows[0].Date)
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = float64(portfolio.DaysBetween(origin, f.Date)) / DaysPerYear
	}

	rate := irrGuess
	for i := 0; i < irrMaxIterations; i++ {
		var npv, deriv float64
		for j, f := range flows {
			npv += f.Amount / math.Pow(1+rate, years[j])
			deriv -= years[j] * f.Amount / math.Pow(1+rate, years[j]+1)
		}
		if math.Abs(npv) < irrTolerance {
			return &rate
		}
		if math.Abs(deriv) < irrTolerance {
			return nil
		}
		rate -= npv / deriv
		if rate < irrRateFloor {
			rate = irrRateFloor
		}
	}
	return nil
}

// TWRR returns the time-weighted return over [start, end]. The range is cut
// at every cash-flow date and the sub-period returns are chained. Periods
// starting from a zero value are skipped; with none left the result is 0.
func (r *Returns) TWRR(accountID uint, start, end time.Time) (float64, error) {
	flows, err := r.cashFlows.GetCashFlows(accountID, start, end)
	if err != nil {
		return 0, err
	}

	seen := make(map[int64]bool)
	var boundaries []time.Time
	for _, f := range flows {
		if !seen[f.Date.Unix()] {
			seen[f.Date.Unix()] = true
			boundaries = append(boundaries, f.Date)
		}
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })
	boundaries = append(boundaries, portfolio.Day(end))

	prevDate := portfolio.Day(start)
	prevValue, err := r.valuation.PortfolioValue(accountID, prevDate)
	if err != nil {
		return 0, err
	}

	growth, periods := 1.0, 0
	for _, boundary := range boundaries {
		if !boundary.After(prevDate) {
			continue
		}
		value, err := r.valuation.PortfolioValue(accountID, boundary)
		if err != nil {
			return 0, err
		}
		if prevValue > 0 {
			growth *= 1 + (value-prevValue)/prevValue
			periods++
		}
		prevDate, prevValue = boundary, value
	}

	if periods == 0 {
		return 0, nil
	}
	return growth - 1, nil
}

// TWRRHistory evaluates TWRR from start to each day in [start, end].
func (r *Returns) TWRRHistory(accountID uint, start, end time.Time) ([]portfolio.ValuePoint, error) {
	return history(start, end, func(day time.Time) (float64, error) {
		return r.TWRR(accountID, start, day)
	})
}

// history evaluates point for each day in [start, end].
func history(start, end time.Time, point func(day time.Time) (float64, error)) ([]portfolio.ValuePoint, error) {
	if err := portfolio.ValidateRange(start, end); err != nil {
		return nil, err
	}

	days := portfolio.EachDay(start, end)
	out := make([]portfolio.ValuePoint, 0, len(days))
	for _, day := range days {
		v, err := point(day)
		if err != nil {
			return nil, err
		}
		out = append(out, portfolio.ValuePoint{Date: day, Value: v})
	}
	return out, nil
}
