package utils

import (
	"fmt"
	"time"
)

// Constants
const (
	DATE_LAYOUT = "2006-01-02"
	TIME_LAYOUT = "15:04"
)

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns [start, end) covering the calendar day of t in loc
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses a YYYY-MM-DD date in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DATE_LAYOUT, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d, nil
}

// FormatDate formats t as YYYY-MM-DD in loc
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DATE_LAYOUT)
}

// AtClock combines a date with an HH:MM clock string. ok is false when clock does not parse.
func AtClock(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	c, err := time.Parse(TIME_LAYOUT, clock)
	if err != nil {
		return time.Time{}, false
	}
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), true
}
