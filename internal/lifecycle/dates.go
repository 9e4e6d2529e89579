package lifecycle

import "time"

// DateOnly truncates a timestamp to UTC midnight. All comparisons in the
// engine are date-only.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves the month component forward by n. Day-of-month overflow
// rolls into the following month (2023-01-31 + 1 month = 2023-03-03); this
// matches the reference behavior and is pinned by tests.
func AddMonths(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, n, 0)
}

// onOrBefore reports whether d falls on or before ref, comparing dates only.
func onOrBefore(d, ref time.Time) bool {
	return !DateOnly(d).After(DateOnly(ref))
}

// daysUntil returns the whole number of days from today until d. Negative
// when d is in the past.
func daysUntil(d, today time.Time) int {
	return int(DateOnly(d).Sub(DateOnly(today)).Hours() / 24)
}
