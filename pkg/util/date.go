package util

import (
	"strings"
	"time"
)

// TradeDateLayout is the calendar-date format used by the exchange exports,
// e.g. "28-Mar-2025".
const TradeDateLayout = "02-Jan-2006"

// ParseTradeDate parses a DD-Mon-YYYY date and normalizes it to midnight UTC.
// The time component is always stripped so dates compare with Equal.
func ParseTradeDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TradeDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return Day(t), true
}

// ParseQueryDate accepts a date in ISO (2006-01-02) or DD-Mon-YYYY layout,
// normalized to midnight UTC. Used for HTTP query parameters.
func ParseQueryDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return Day(t), true
	}
	return ParseTradeDate(s)
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
