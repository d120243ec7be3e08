package utils

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the date-only format used in tags and reports
	DateLayout = "2006-01-02"

	// StampLayout is the sortable run timestamp embedded in object keys
	StampLayout = "2006-01-02_15-04-05"
)

// Clock is the subset of github.com/juju/clock.Clock the passes need
type Clock interface {
	Now() time.Time
}

// Today truncates t to midnight UTC
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatStamp formats t as YYYY-MM-DD_HH-MM-SS in UTC
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// ParseStamp parses a YYYY-MM-DD_HH-MM-SS string
func ParseStamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(StampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the number of whole calendar days from since to until.
// Both arguments are reduced to UTC dates first.
func DaysBetween(since, until time.Time) int {
	return int(Today(until).Sub(Today(since)).Hours() / 24)
}

// AddDays returns the UTC date that is days after t
func AddDays(t time.Time, days int) time.Time {
	return Today(t).AddDate(0, 0, days)
}
