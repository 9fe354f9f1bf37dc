/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package timeutil

import (
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// DateLayout is the canonical calendar-date format used for holidays,
	// capacity days and tentative due dates.
	DateLayout = "2006-01-02"
)

// FormatRFC3339 formats a time as RFC3339 without sub-second precision.
func FormatRFC3339(t time.Time) string {
	return t.Format("2006-01-02T15:04:05Z07:00")
}

// FormatDate formats a time as a calendar date in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar date in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}

// ParseClock parses "HH:MM" or "HH:MM:SS" wall-clock strings and returns the
// hour and minute. Used for shift schedule rows.
func ParseClock(value string) (hour, minute int, err error) {
	layouts := []string{"15:04:05", "15:04"}
	var t time.Time
	for _, layout := range layouts {
		if t, err = time.Parse(layout, value); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, err
}

// SameDate reports whether two times fall on the same calendar date in a's location.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay truncates a time to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseCronStandard parses a cron expression supporting the standard five
// fields plus descriptors such as "@hourly" and "@every 90s".
func ParseCronStandard(expr string) (cron.Schedule, error) {
	return cron.ParseStandard(expr)
}

// MaxTime returns the later of two times.
func MaxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
