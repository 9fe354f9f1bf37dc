/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package splitter

import (
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/printflow/scheduler/pkg/calendar"
)

var testLoc = time.FixedZone("SAST", 2*60*60)

// Monday 2026-03-02.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, testLoc)
}

func TestNeedsSplitting(t *testing.T) {
	s := New(calendar.Default(testLoc))

	assert.Assert(t, !s.NeedsSplitting(monday(9, 0), 60))
	assert.Assert(t, s.NeedsSplitting(monday(15, 0), 180))
	// outside working hours nothing fits without moving first
	assert.Assert(t, s.NeedsSplitting(monday(17, 0), 10))
}

func TestSplitFitsInOneDay(t *testing.T) {
	s := New(calendar.Default(testLoc))

	parts, err := s.Split(monday(9, 0), 60)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 1)
	assert.Equal(t, parts[0].Start, monday(9, 0))
	assert.Equal(t, parts[0].End, monday(10, 0))
	assert.Equal(t, parts[0].Minutes, 60)
	assert.Equal(t, parts[0].Sequence, 1)
}

func TestSplitOverflowsIntoNextDay(t *testing.T) {
	s := New(calendar.Default(testLoc))

	// 15:00 + 180m against a 16:30 close: 90m today, 90m tomorrow from 08:00
	parts, err := s.Split(monday(15, 0), 180)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 2)

	assert.Equal(t, parts[0].Start, monday(15, 0))
	assert.Equal(t, parts[0].End, monday(16, 30))
	assert.Equal(t, parts[0].Minutes, 90)
	assert.Assert(t, parts[0].IsPartial)
	assert.Equal(t, parts[0].TotalSplits, 2)

	assert.Equal(t, parts[1].Start, time.Date(2026, 3, 3, 8, 0, 0, 0, testLoc))
	assert.Equal(t, parts[1].End, time.Date(2026, 3, 3, 9, 30, 0, 0, testLoc))
	assert.Equal(t, parts[1].Minutes, 90)
	assert.Equal(t, parts[1].Sequence, 2)
	assert.Assert(t, !parts[1].IsPartial)
}

func TestSplitJumpsWeekend(t *testing.T) {
	s := New(calendar.Default(testLoc))

	// Friday 2026-03-06 16:00, 120 minutes: 30m before close, 90m on Monday
	friday := time.Date(2026, 3, 6, 16, 0, 0, 0, testLoc)
	parts, err := s.Split(friday, 120)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 2)

	assert.Equal(t, parts[0].Start, friday)
	assert.Equal(t, parts[0].Minutes, 30)

	assert.Equal(t, parts[1].Start, time.Date(2026, 3, 9, 8, 0, 0, 0, testLoc))
	assert.Equal(t, parts[1].End, time.Date(2026, 3, 9, 9, 30, 0, 0, testLoc))
	assert.Equal(t, parts[1].Minutes, 90)
}

func TestSplitSkipsHoliday(t *testing.T) {
	cal := calendar.Default(testLoc)
	cal.AddHoliday(time.Date(2026, 3, 3, 0, 0, 0, 0, testLoc))
	s := New(cal)

	parts, err := s.Split(monday(16, 0), 60)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 2)
	assert.Equal(t, parts[0].Minutes, 30)
	// Tuesday is a holiday, so the tail lands on Wednesday
	assert.Equal(t, parts[1].Start, time.Date(2026, 3, 4, 8, 0, 0, 0, testLoc))
	assert.Equal(t, parts[1].Minutes, 30)
}

func TestSplitMinutesSumToTotal(t *testing.T) {
	s := New(calendar.Default(testLoc))

	// 1300 minutes spans three 510-minute days: 90 + 510 + 510 + 190
	parts, err := s.Split(monday(15, 0), 1300)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 4)

	sum := 0
	for i, part := range parts {
		assert.Equal(t, part.Sequence, i+1)
		sum += part.Minutes
	}
	assert.Equal(t, sum, 1300)
	assert.Equal(t, parts[3].Minutes, 190)
}

func TestSplitZeroDuration(t *testing.T) {
	s := New(calendar.Default(testLoc))

	parts, err := s.Split(monday(17, 0), 0)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 1)
	assert.Equal(t, parts[0].Minutes, 0)
	// zero-length split still lands inside a working window
	assert.Equal(t, parts[0].Start, time.Date(2026, 3, 3, 8, 0, 0, 0, testLoc))
	assert.Equal(t, parts[0].Start, parts[0].End)
}

func TestSplitNoWorkingDays(t *testing.T) {
	cal := calendar.Default(testLoc)
	for day := time.Sunday; day <= time.Saturday; day++ {
		cal.SetWeekdayWorking(day, false)
	}
	s := New(cal)

	_, err := s.Split(monday(9, 0), 60)
	assert.ErrorContains(t, err, "no working day")
}
