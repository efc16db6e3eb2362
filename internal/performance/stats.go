package performance

import "math"

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// DaysPerYear converts calendar days to years.
const DaysPerYear = 365.25

// DailyReturns returns the simple step returns of values. Steps whose
// previous value is not positive are skipped.
func DailyReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev <= 0 {
			continue
		}
		returns = append(returns, (values[i]-prev)/prev)
	}
	return returns
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev returns the n-1 standard deviation of xs, or 0 for fewer than
// two samples.
func SampleStdDev(xs []float64) float64 {
	return math.Sqrt(Covariance(xs, xs))
}

// Covariance returns the n-1 sample covariance of xs and ys. It is 0 when the
// slices differ in length or hold fewer than two samples.
func Covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}

	mx, my := mean(xs), mean(ys)
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}

// MaxDrawdownOf returns the largest peak-to-trough decline of values as a
// fraction of the peak. Fewer than two values yield 0.
func MaxDrawdownOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	peak := values[0]
	var maxDD float64
	for _, v := range values {
		if v > peak {
			peak = v
			continue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
