package report

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Window is a concrete inclusive [Start, End] date range. Both bounds are
// dates at midnight UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// EndExclusive returns the first instant after the window, for use as the
// upper bound of a half-open SQL range.
func (w Window) EndExclusive() time.Time {
	return w.End.AddDate(0, 0, 1)
}

// Days returns the window length in days (a one-day window has length 1).
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Label renders the window for display, e.g. "2024-03-01 a 2024-03-31".
func (w Window) Label() string {
	return fmt.Sprintf("%s a %s", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

// Period is a current window paired with the immediately preceding window of
// identical length, the unit of every period-over-period comparison.
type Period struct {
	Current  Window
	Previous Window
}

// ResolvePeriod turns explicit or implicit date bounds into a Period.
//
// With both bounds given they become the current window verbatim; the
// previous window ends the day before the current one starts and spans the
// same number of days. With both omitted the current window is the calendar
// month containing now and the previous window is the whole prior month.
// One-sided, unparseable, or inverted bounds yield ErrInvalidRange.
func ResolvePeriod(fromStr, toStr string, now time.Time) (Period, error) {
	if fromStr == "" && toStr == "" {
		return currentMonthPeriod(now), nil
	}
	if fromStr == "" || toStr == "" {
		return Period{}, fmt.Errorf("%w: both date_from and date_to are required", ErrInvalidRange)
	}

	from, err := time.ParseInLocation(dateLayout, fromStr, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: date_from %q", ErrInvalidRange, fromStr)
	}
	to, err := time.ParseInLocation(dateLayout, toStr, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: date_to %q", ErrInvalidRange, toStr)
	}
	if to.Before(from) {
		return Period{}, fmt.Errorf("%w: date_to %s before date_from %s", ErrInvalidRange, toStr, fromStr)
	}

	current := Window{Start: from, End: to}
	prevEnd := from.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(current.Days() - 1))

	return Period{
		Current:  current,
		Previous: Window{Start: prevStart, End: prevEnd},
	}, nil
}

func currentMonthPeriod(now time.Time) Period {
	year, month, _ := now.UTC().Date()
	currentStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	currentEnd := currentStart.AddDate(0, 1, -1)
	prevStart := currentStart.AddDate(0, -1, 0)
	prevEnd := currentStart.AddDate(0, 0, -1)

	return Period{
		Current:  Window{Start: currentStart, End: currentEnd},
		Previous: Window{Start: prevStart, End: prevEnd},
	}
}

// MonthlyBuckets returns count consecutive calendar-month windows ending at
// the month containing now, oldest first. count is clamped to a minimum of 1.
func MonthlyBuckets(now time.Time, count int) []Window {
	if count < 1 {
		count = 1
	}
	year, month, _ := now.UTC().Date()
	firstOfCurrent := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]Window, count)
	for i := 0; i < count; i++ {
		start := firstOfCurrent.AddDate(0, i-count+1, 0)
		buckets[i] = Window{Start: start, End: start.AddDate(0, 1, -1)}
	}
	return buckets
}

var spanishMonths = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// MonthLabel renders a bucket's chart label, e.g. "mar 2024".
func MonthLabel(w Window) string {
	return fmt.Sprintf("%s %d", spanishMonths[w.Start.Month()-1], w.Start.Year())
}
