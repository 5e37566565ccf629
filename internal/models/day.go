package models

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// ParseDay parses an ISO calendar date as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PreviousDay is the UTC day before the one containing now.
func PreviousDay(now time.Time) time.Time {
	return DayOf(now).AddDate(0, 0, -1)
}

// DayWindow returns the half-open window [00:00:00Z, +24h).
func DayWindow(day time.Time) (from, to time.Time) {
	from = DayOf(day)
	return from, from.Add(24 * time.Hour)
}

func FormatDay(day time.Time) string {
	return day.UTC().Format(DayLayout)
}
