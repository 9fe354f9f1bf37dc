/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package splitter breaks a stage duration into per-working-day parts.
package splitter

import (
	"time"

	"github.com/printflow/scheduler/pkg/calendar"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/timeutil"
)

// Split is one contiguous part of a stage, entirely inside one working window.
type Split struct {
	Sequence    int
	TotalSplits int
	Date        time.Time
	Start       time.Time
	End         time.Time
	Minutes     int
	// IsPartial marks every part except the last.
	IsPartial bool
}

// Splitter converts (start, totalMinutes) into an ordered split sequence.
type Splitter struct {
	cal *calendar.Calendar
}

func New(cal *calendar.Calendar) *Splitter {
	return &Splitter{cal: cal}
}

// NeedsSplitting reports whether the duration overflows the remainder of the
// start time's working day.
func (s *Splitter) NeedsSplitting(start time.Time, durationMinutes int) bool {
	return !s.cal.FitsInWorkingDay(start, durationMinutes)
}

// Split walks forward from start, taking as many minutes as each working day
// still offers until the duration is exhausted. The first part's start is the
// input start snapped forward into a working window; consecutive parts begin
// at the next working day's start. The parts' minutes always sum to
// totalMinutes.
func (s *Splitter) Split(start time.Time, totalMinutes int) ([]Split, error) {
	cursor, err := s.cal.SnapForward(start)
	if err != nil {
		return nil, err
	}
	if totalMinutes <= 0 {
		return []Split{{
			Sequence:    1,
			TotalSplits: 1,
			Date:        timeutil.StartOfDay(cursor),
			Start:       cursor,
			End:         cursor,
		}}, nil
	}

	var parts []Split
	remaining := totalMinutes
	for remaining > 0 {
		avail := s.cal.RemainingWorkingMinutes(cursor)
		if avail == 0 {
			// SnapForward and the per-day advance land inside a window, so a
			// zero here means a zero-length working window.
			return nil, commonerrors.NewNoWorkingDayFound(
				"working window has no capacity on " + timeutil.FormatDate(cursor))
		}
		take := avail
		if remaining < take {
			take = remaining
		}
		parts = append(parts, Split{
			Sequence:  len(parts) + 1,
			Date:      timeutil.StartOfDay(cursor),
			Start:     cursor,
			End:       cursor.Add(time.Duration(take) * time.Minute),
			Minutes:   take,
			IsPartial: take < remaining,
		})
		remaining -= take
		if remaining > 0 {
			next, err := s.cal.NextWorkingDay(cursor)
			if err != nil {
				return nil, err
			}
			cursor = s.cal.WorkingDayStart(next)
		}
	}
	for i := range parts {
		parts[i].TotalSplits = len(parts)
	}
	return parts, nil
}
