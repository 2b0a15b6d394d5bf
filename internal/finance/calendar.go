package finance

import "time"

// DateOnly returns midnight UTC of t's calendar day as seen in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns [start, end) covering the calendar month containing t.
func MonthRange(t time.Time) (start, end time.Time) {
	y, m, _ := t.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// SameMonth reports whether a and b fall in the same calendar month of the same year.
func SameMonth(a, b time.Time) bool {
	ya, ma, _ := a.Date()
	yb, mb, _ := b.Date()
	return ya == yb && ma == mb
}

// AddMonths moves t by n months, clamping the day to the end of the target
// month (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}

// DaysUntil returns the number of calendar days from now to target.
// Negative values mean target is in the past.
func DaysUntil(target, now time.Time) int {
	return int(DateOnly(target).Sub(DateOnly(now)).Hours() / 24)
}

// ParseMonth parses "YYYY-MM" into the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	return time.Parse("2006-01", s)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
