// Package dates holds the calendar-date helpers used for check-in and check-out days.
// A date is represented as a time.Time at midnight UTC, which is also what pgx
// returns when scanning a PostgreSQL DATE column.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire format of a calendar date.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string into a normalized date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", s, Layout, err)
	}
	return t, nil
}

// Normalize drops the clock part of t, keeping the calendar day t falls on in its own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

const secondsPerDay = 24 * 60 * 60

// Nights returns the number of nights between checkIn and checkOut.
// It is zero or negative for an empty or inverted range.
// Unix seconds are used because time.Duration overflows past roughly 292 years.
func Nights(checkIn, checkOut time.Time) int {
	return int((Normalize(checkOut).Unix() - Normalize(checkIn).Unix()) / secondsPerDay)
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}
