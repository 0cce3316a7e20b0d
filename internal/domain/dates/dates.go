// Package dates holds the calendar-day conventions shared by the domain models.
// Calendar days travel as "2006-01-02" strings so that lexical order is date order.
package dates

import (
	"strings"
	"time"
)

// Layout is the wire and storage format for calendar days.
const Layout = "2006-01-02"

// MonthLayout is the format of a reporting month key.
const MonthLayout = "2006-01"

// Valid reports whether s is a well-formed calendar day.
func Valid(s string) bool {
	_, err := time.Parse(Layout, strings.TrimSpace(s))
	return err == nil
}

// Parse parses a calendar day. Timestamps with a time component are accepted
// and truncated to the day, since older records carry full ISO timestamps.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(Layout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		s = s[:len(Layout)]
	}
	return time.Parse(Layout, s)
}

// Normalize returns s as a plain calendar day, or "" if it cannot be parsed.
func Normalize(s string) string {
	t, err := Parse(s)
	if err != nil {
		return ""
	}
	return t.Format(Layout)
}

// Month returns the YYYY-MM key of a calendar day, or "" if s is malformed.
func Month(s string) string {
	t, err := Parse(s)
	if err != nil {
		return ""
	}
	return t.Format(MonthLayout)
}

// Today returns the current calendar day.
func Today(now time.Time) string {
	return now.Format(Layout)
}
