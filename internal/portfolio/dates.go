package portfolio

import (
	"time"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
)

// Clock returns the current time. Components take one so "today" is injectable.
type Clock func() time.Time

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours() / 24)
}

// EachDay returns every calendar day in [start, end].
func EachDay(start, end time.Time) []time.Time {
	return Steps(start, end, 1)
}

// Steps returns start, start+stride, ... while <= end.
func Steps(start, end time.Time, strideDays int) []time.Time {
	start, end = Day(start), Day(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, strideDays) {
		days = append(days, d)
	}
	return days
}

// ValidateRange rejects ranges whose start falls after end.
func ValidateRange(start, end time.Time) error {
	if Day(start).After(Day(end)) {
		return apperrors.WithMessage(apperrors.ErrInvalidDateRange,
			"start date "+Day(start).Format(time.DateOnly)+" is after end date "+Day(end).Format(time.DateOnly))
	}
	return nil
}

// ValuePoint is a dated scalar, used for every time series the engine produces.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
