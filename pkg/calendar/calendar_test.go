/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package calendar

import (
	"context"
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/printflow/scheduler/pkg/database/client"
	"github.com/printflow/scheduler/pkg/database/client/fake"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

// Monday 2026-03-02 in a fixed zone keeps the expectations stable.
var testLoc = time.FixedZone("SAST", 2*60*60)

func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, testLoc)
}

func TestIsWorkingDayWeekend(t *testing.T) {
	cal := Default(testLoc)

	assert.Assert(t, cal.IsWorkingDay(monday(10, 0)))
	saturday := monday(10, 0).AddDate(0, 0, 5)
	assert.Assert(t, !cal.IsWorkingDay(saturday))
	sunday := saturday.AddDate(0, 0, 1)
	assert.Assert(t, !cal.IsWorkingDay(sunday))
}

func TestIsWorkingDayHoliday(t *testing.T) {
	cal := Default(testLoc)
	cal.AddHoliday(monday(0, 0))

	assert.Assert(t, !cal.IsWorkingDay(monday(10, 0)))
}

func TestNextWorkingDaySkipsWeekend(t *testing.T) {
	cal := Default(testLoc)

	friday := monday(9, 0).AddDate(0, 0, 4)
	next, err := cal.NextWorkingDay(friday)
	assert.NilError(t, err)
	assert.Equal(t, next.Weekday(), time.Monday)
	assert.Equal(t, next.Day(), 9)
}

func TestNextWorkingDayNoneFound(t *testing.T) {
	cal := Default(testLoc)
	for day := time.Sunday; day <= time.Saturday; day++ {
		cal.SetWeekdayWorking(day, false)
	}

	_, err := cal.NextWorkingDay(monday(9, 0))
	assert.Assert(t, commonerrors.IsNoWorkingDayFound(err))
}

func TestWorkingWindow(t *testing.T) {
	cal := Default(testLoc)

	start := cal.WorkingDayStart(monday(12, 0))
	end := cal.WorkingDayEnd(monday(12, 0))
	assert.Equal(t, start.Hour(), 8)
	assert.Equal(t, start.Minute(), 0)
	assert.Equal(t, end.Hour(), 16)
	assert.Equal(t, end.Minute(), 30)
	assert.Equal(t, cal.DailyWorkingMinutes(), 510)
}

func TestRemainingWorkingMinutes(t *testing.T) {
	cal := Default(testLoc)

	assert.Equal(t, cal.RemainingWorkingMinutes(monday(15, 0)), 90)
	// before hours the full day remains
	assert.Equal(t, cal.RemainingWorkingMinutes(monday(6, 0)), 510)
	// after hours nothing remains
	assert.Equal(t, cal.RemainingWorkingMinutes(monday(17, 0)), 0)
	// weekend
	assert.Equal(t, cal.RemainingWorkingMinutes(monday(10, 0).AddDate(0, 0, 5)), 0)
}

func TestFitsInWorkingDay(t *testing.T) {
	cal := Default(testLoc)

	assert.Assert(t, cal.FitsInWorkingDay(monday(15, 0), 90))
	assert.Assert(t, !cal.FitsInWorkingDay(monday(15, 0), 91))
}

func TestSnapForward(t *testing.T) {
	cal := Default(testLoc)

	// inside the window stays put
	snapped, err := cal.SnapForward(monday(11, 30))
	assert.NilError(t, err)
	assert.Equal(t, snapped, monday(11, 30))

	// before hours snaps to the day's start
	snapped, err = cal.SnapForward(monday(6, 15))
	assert.NilError(t, err)
	assert.Equal(t, snapped, monday(8, 0))

	// after hours moves to the next working day
	snapped, err = cal.SnapForward(monday(16, 30))
	assert.NilError(t, err)
	assert.Equal(t, snapped.Day(), 3)
	assert.Equal(t, snapped.Hour(), 8)

	// Friday evening jumps the weekend
	snapped, err = cal.SnapForward(monday(17, 0).AddDate(0, 0, 4))
	assert.NilError(t, err)
	assert.Equal(t, snapped.Weekday(), time.Monday)
	assert.Equal(t, snapped.Day(), 9)
}

func TestLoadAppliesSettingsShiftsAndHolidays(t *testing.T) {
	db := fake.NewClient()
	db.Settings = []*client.AppSetting{
		{SettingKey: "work_start_hour", SettingValue: "7"},
		{SettingKey: "work_end_hour", SettingValue: "15"},
		{SettingKey: "work_end_minute", SettingValue: "0"},
	}
	db.Shifts = []*client.ShiftSchedule{
		{DayOfWeek: int(time.Monday), IsWorkingDay: true},
		{DayOfWeek: int(time.Friday), IsWorkingDay: true, ShiftStartTime: "09:00", ShiftEndTime: "12:00"},
	}
	db.Holidays = []*client.PublicHoliday{
		{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	cal := Load(context.Background(), db)

	// Monday 2026-03-02 is a holiday despite the working shift row.
	assert.Assert(t, !cal.IsWorkingDay(time.Date(2026, 3, 2, 10, 0, 0, 0, cal.Location())))
	// Tuesday has no shift row at all.
	assert.Assert(t, !cal.IsWorkingDay(time.Date(2026, 3, 3, 10, 0, 0, 0, cal.Location())))
	// Friday works the narrowed shift window.
	friday := time.Date(2026, 3, 6, 10, 0, 0, 0, cal.Location())
	assert.Assert(t, cal.IsWorkingDay(friday))
	assert.Equal(t, cal.WorkingDayStart(friday).Hour(), 9)
	assert.Equal(t, cal.WorkingDayEnd(friday).Hour(), 12)
	// The settings window applies to days without explicit shift times.
	nextMonday := time.Date(2026, 3, 9, 10, 0, 0, 0, cal.Location())
	assert.Equal(t, cal.WorkingDayStart(nextMonday).Hour(), 7)
	assert.Equal(t, cal.WorkingDayEnd(nextMonday).Hour(), 15)
}

func TestLoadShiftRowsCannotEnableWeekends(t *testing.T) {
	db := fake.NewClient()
	for day := time.Sunday; day <= time.Saturday; day++ {
		db.Shifts = append(db.Shifts, &client.ShiftSchedule{
			DayOfWeek: int(day), IsWorkingDay: true,
		})
	}

	cal := Load(context.Background(), db)

	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, cal.Location())
	sunday := saturday.AddDate(0, 0, 1)
	assert.Assert(t, !cal.IsWorkingDay(saturday))
	assert.Assert(t, !cal.IsWorkingDay(sunday))
	assert.Equal(t, cal.WorkingMinutes(saturday), 0)
	assert.Assert(t, cal.IsWorkingDay(time.Date(2026, 3, 2, 10, 0, 0, 0, cal.Location())))
}

func TestLoadBusyPeriodSettings(t *testing.T) {
	db := fake.NewClient()
	db.Settings = []*client.AppSetting{
		{SettingKey: "busy_period_active", SettingValue: "true"},
		{SettingKey: "busy_start_hour", SettingValue: "6"},
		{SettingKey: "busy_end_hour", SettingValue: "18"},
		{SettingKey: "busy_end_minute", SettingValue: "0"},
		{SettingKey: "work_start_hour", SettingValue: "9"},
	}

	cal := Load(context.Background(), db)

	day := time.Date(2026, 3, 2, 10, 0, 0, 0, cal.Location())
	assert.Equal(t, cal.WorkingDayStart(day).Hour(), 6)
	assert.Equal(t, cal.WorkingDayEnd(day).Hour(), 18)
	assert.Equal(t, cal.DailyWorkingMinutes(), 720)
}
