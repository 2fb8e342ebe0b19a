package finance

import (
	"time"

	"moving_ops/internal/models"
)

type Period string

const (
	Period7D     Period = "7d"
	Period30D    Period = "30d"
	Period90D    Period = "90d"
	Period1Y     Period = "1y"
	PeriodCustom Period = "custom"
)

const dayLayout = "2006-01-02"

// MaxCustomDays caps the length of a custom period.
const MaxCustomDays = 5 * 366

// DateRange is a caller supplied window for the custom period. A nil bound
// means the bound was not given.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Between returns a range with both bounds set.
func Between(start, end time.Time) *DateRange {
	return &DateRange{Start: &start, End: &end}
}

func (r *DateRange) complete() bool {
	return r != nil && r.Start != nil && r.End != nil
}

// Days is the inclusive number of calendar days the range covers, 0 when a
// bound is missing or the end precedes the start.
func (r *DateRange) Days() int {
	if !r.complete() {
		return 0
	}
	n := daysBetween(*r.Start, *r.End) + 1
	if n < 0 {
		return 0
	}
	return n
}

// ParsePeriod returns the period for a query value, 30d when unrecognized.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case Period7D, Period30D, Period90D, Period1Y, PeriodCustom:
		return Period(s)
	}
	return Period30D
}

// PeriodRange computes the [start, end] window for a period relative to now.
// A custom period without both bounds falls back to the 30 day rule.
func PeriodRange(key Period, custom *DateRange, now time.Time) (time.Time, time.Time) {
	switch key {
	case Period7D:
		return now.AddDate(0, 0, -7), now
	case Period90D:
		return now.AddDate(0, 0, -90), now
	case Period1Y:
		return now.AddDate(-1, 0, 0), now
	case PeriodCustom:
		if custom.complete() {
			return *custom.Start, *custom.End
		}
	}
	return now.AddDate(0, 0, -30), now
}

// FilterByPeriod keeps transactions dated inside the period, both bounds
// inclusive.
func FilterByPeriod(txs []models.Transaction, key Period, custom *DateRange, now time.Time) []models.Transaction {
	start, end := PeriodRange(key, custom, now)

	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out
}

// PeriodDays is the number of calendar days a chart for the period covers.
func PeriodDays(key Period, custom *DateRange, now time.Time) int {
	switch key {
	case Period7D:
		return 7
	case Period90D:
		return 90
	case Period1Y:
		start, end := PeriodRange(key, custom, now)
		return daysBetween(start, end)
	case PeriodCustom:
		if custom.complete() {
			if n := custom.Days(); n > 0 {
				return n
			}
			return 1
		}
	}
	return 30
}

// daysBetween counts calendar days from start to end, both read in end's
// location.
func daysBetween(start, end time.Time) int {
	return int(dayNumber(end) - dayNumber(start.In(end.Location())))
}

// dayNumber is the Julian day number of t's calendar date.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	a := (14 - int64(m)) / 12
	yy := int64(y) + 4800 - a
	mm := int64(m) + 12*a - 3
	return int64(d) + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}

// DayKey formats a transaction date as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}
