/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package calendar answers working-day and working-hours questions for the
// scheduler. A Calendar is loaded once per scheduling call from the shift
// schedule, public holiday and app-settings tables, and is read-only
// afterwards.
package calendar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/config"
	"github.com/printflow/scheduler/pkg/database/client"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/timeutil"
)

// nextWorkingDayHorizon bounds the forward search for a working day. Seven
// consecutive non-working days means the shift schedule is misconfigured.
const nextWorkingDayHorizon = 7

// window is a wall-clock working interval on one day.
type window struct {
	startHour   int
	startMinute int
	endHour     int
	endMinute   int
}

func (w window) minutes() int {
	return (w.endHour-w.startHour)*60 + w.endMinute - w.startMinute
}

// Calendar is the working-day oracle. All returned times carry the configured
// location so that working-hours comparisons survive DST transitions.
type Calendar struct {
	loc      *time.Location
	def      window
	perDay   map[time.Weekday]window
	working  map[time.Weekday]bool
	holidays map[string]bool
}

// Default returns a Mon-Fri calendar with the configured working window and
// no holidays. It is the fallback when the configuration tables cannot be read.
func Default(loc *time.Location) *Calendar {
	cal := &Calendar{
		loc: loc,
		def: window{
			startHour: config.GetWorkStartHour(),
			endHour:   config.GetWorkEndHour(),
			endMinute: config.GetWorkEndMinute(),
		},
		perDay:   map[time.Weekday]window{},
		working:  map[time.Weekday]bool{},
		holidays: map[string]bool{},
	}
	if config.IsBusyPeriodActive() {
		cal.def = window{
			startHour: config.GetBusyStartHour(),
			endHour:   config.GetBusyEndHour(),
			endMinute: config.GetBusyEndMinute(),
		}
	}
	for day := time.Monday; day <= time.Friday; day++ {
		cal.working[day] = true
	}
	return cal
}

// Load builds a Calendar from the configuration tables. Read failures are
// recovered locally: the affected source falls back to config-file values and
// the error is logged, so a scheduling call never dies on a settings read.
func Load(ctx context.Context, db client.CalendarInterface) *Calendar {
	loc, err := time.LoadLocation(config.GetTimezone())
	if err != nil {
		klog.ErrorS(err, "failed to load scheduler timezone, falling back to UTC", "timezone", config.GetTimezone())
		loc = time.UTC
	}
	cal := Default(loc)
	if db == nil {
		return cal
	}

	settings, err := db.ListAppSettings(ctx)
	if err != nil {
		klog.ErrorS(err, "failed to load app settings, using configured working hours")
	} else {
		cal.applySettings(settings)
	}

	shifts, err := db.ListShiftSchedules(ctx)
	if err != nil {
		klog.ErrorS(err, "failed to load shift schedules, assuming Mon-Fri")
	} else {
		cal.applyShifts(shifts)
	}

	holidays, err := db.ListPublicHolidays(ctx)
	if err != nil {
		klog.ErrorS(err, "failed to load public holidays, assuming none")
	} else {
		for _, holiday := range holidays {
			cal.holidays[timeutil.FormatDate(holiday.Date)] = true
		}
	}
	return cal
}

// applySettings overrides the working window from app_settings rows. Settings
// win over config-file values.
func (c *Calendar) applySettings(settings []*client.AppSetting) {
	values := map[string]string{}
	for _, setting := range settings {
		values[setting.SettingKey] = setting.SettingValue
	}
	intSetting := func(key string, dst *int) {
		raw, ok := values[key]
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			klog.ErrorS(err, "ignoring malformed app setting", "key", key, "value", raw)
			return
		}
		*dst = n
	}
	busy := false
	if raw, ok := values["busy_period_active"]; ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			klog.ErrorS(err, "ignoring malformed app setting", "key", "busy_period_active", "value", raw)
		} else {
			busy = parsed
		}
	}
	if busy {
		intSetting("busy_start_hour", &c.def.startHour)
		intSetting("busy_end_hour", &c.def.endHour)
		intSetting("busy_end_minute", &c.def.endMinute)
		return
	}
	intSetting("work_start_hour", &c.def.startHour)
	intSetting("work_end_hour", &c.def.endHour)
	intSetting("work_end_minute", &c.def.endMinute)
}

// applyShifts replaces the Mon-Fri default with the stored weekday pattern.
// A shift row with explicit times narrows that weekday's window. Weekend rows
// cannot make Saturday or Sunday working; IsWorkingDay pins them off.
func (c *Calendar) applyShifts(shifts []*client.ShiftSchedule) {
	if len(shifts) == 0 {
		return
	}
	c.working = map[time.Weekday]bool{}
	for _, shift := range shifts {
		day := time.Weekday(shift.DayOfWeek)
		c.working[day] = shift.IsWorkingDay
		if !shift.IsWorkingDay {
			continue
		}
		if shift.ShiftStartTime == "" || shift.ShiftEndTime == "" {
			continue
		}
		startHour, startMin, err := timeutil.ParseClock(shift.ShiftStartTime)
		if err != nil {
			klog.ErrorS(err, "ignoring malformed shift start", "day", day, "value", shift.ShiftStartTime)
			continue
		}
		endHour, endMin, err := timeutil.ParseClock(shift.ShiftEndTime)
		if err != nil {
			klog.ErrorS(err, "ignoring malformed shift end", "day", day, "value", shift.ShiftEndTime)
			continue
		}
		c.perDay[day] = window{startHour: startHour, startMinute: startMin, endHour: endHour, endMinute: endMin}
	}
}

// AddHoliday marks a calendar date as non-working.
func (c *Calendar) AddHoliday(date time.Time) {
	c.holidays[timeutil.FormatDate(date.In(c.loc))] = true
}

// SetWeekdayWorking overrides the working flag of one weekday.
func (c *Calendar) SetWeekdayWorking(day time.Weekday, workingDay bool) {
	c.working[day] = workingDay
}

// Location returns the scheduler's canonical timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// In converts a time into the calendar's location.
func (c *Calendar) In(t time.Time) time.Time {
	return t.In(c.loc)
}

func (c *Calendar) windowFor(date time.Time) window {
	if w, ok := c.perDay[date.Weekday()]; ok {
		return w
	}
	return c.def
}

// IsWorkingDay reports whether the calendar day of t is a working day.
// Weekends and holidays are never working days; shift rows can only disable
// further weekdays, not enable Saturday or Sunday.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	t = t.In(c.loc)
	if day := t.Weekday(); day == time.Saturday || day == time.Sunday {
		return false
	}
	if c.holidays[timeutil.FormatDate(t)] {
		return false
	}
	return c.working[t.Weekday()]
}

// NextWorkingDay returns the first working day strictly after from. The search
// gives up after a week, which only happens with a broken shift schedule.
func (c *Calendar) NextWorkingDay(from time.Time) (time.Time, error) {
	cursor := timeutil.StartOfDay(from.In(c.loc))
	for i := 0; i < nextWorkingDayHorizon; i++ {
		cursor = cursor.AddDate(0, 0, 1)
		if c.IsWorkingDay(cursor) {
			return cursor, nil
		}
	}
	return time.Time{}, commonerrors.NewNoWorkingDayFound(
		fmt.Sprintf("no working day within %d days after %s", nextWorkingDayHorizon, timeutil.FormatDate(from.In(c.loc))))
}

// WorkingDayStart returns the start of the working window on the given day.
func (c *Calendar) WorkingDayStart(date time.Time) time.Time {
	date = date.In(c.loc)
	w := c.windowFor(date)
	return time.Date(date.Year(), date.Month(), date.Day(), w.startHour, w.startMinute, 0, 0, c.loc)
}

// WorkingDayEnd returns the end of the working window on the given day.
func (c *Calendar) WorkingDayEnd(date time.Time) time.Time {
	date = date.In(c.loc)
	w := c.windowFor(date)
	return time.Date(date.Year(), date.Month(), date.Day(), w.endHour, w.endMinute, 0, 0, c.loc)
}

// RemainingWorkingMinutes returns how many working minutes are left from t
// until the end of t's working window. Zero on non-working days and after
// hours.
func (c *Calendar) RemainingWorkingMinutes(t time.Time) int {
	t = t.In(c.loc)
	if !c.IsWorkingDay(t) {
		return 0
	}
	end := c.WorkingDayEnd(t)
	if !t.Before(end) {
		return 0
	}
	if start := c.WorkingDayStart(t); t.Before(start) {
		t = start
	}
	return int(end.Sub(t) / time.Minute)
}

// FitsInWorkingDay reports whether a duration fits between t and the end of
// t's working window.
func (c *Calendar) FitsInWorkingDay(t time.Time, durationMinutes int) bool {
	return durationMinutes <= c.RemainingWorkingMinutes(t)
}

// DailyWorkingMinutes returns the length of the default working window.
func (c *Calendar) DailyWorkingMinutes() int {
	return c.def.minutes()
}

// WorkingMinutes returns the length of the working window on a specific day,
// honoring per-weekday shift overrides. Zero on non-working days.
func (c *Calendar) WorkingMinutes(date time.Time) int {
	if !c.IsWorkingDay(date) {
		return 0
	}
	return c.windowFor(date.In(c.loc)).minutes()
}

// SnapForward moves t forward to the nearest instant inside a working window:
// t itself if already inside, the same day's start if before hours, otherwise
// the next working day's start.
func (c *Calendar) SnapForward(t time.Time) (time.Time, error) {
	t = t.In(c.loc)
	if c.IsWorkingDay(t) {
		if start := c.WorkingDayStart(t); t.Before(start) {
			return start, nil
		}
		if t.Before(c.WorkingDayEnd(t)) {
			return t, nil
		}
	}
	next, err := c.NextWorkingDay(t)
	if err != nil {
		return time.Time{}, err
	}
	return c.WorkingDayStart(next), nil
}
