/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package capacity maintains per-stage per-day FIFO queues and commits
// scheduled time slots. The store is the only shared mutable state of a
// scheduling call; commits on the same stage serialize on a per-stage lock.
package capacity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/calendar"
	"github.com/printflow/scheduler/pkg/database/client"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/splitter"
	"github.com/printflow/scheduler/pkg/timeutil"
)

// searchHorizonDays bounds the forward walk for an open queue slot. Hitting
// it means every candidate day is narrower than the requested duration.
const searchHorizonDays = 366

// Store exposes the earliest start time a stage can offer and commits slots.
type Store struct {
	db  client.Interface
	cal *calendar.Calendar
	now func() time.Time

	// stageLocks holds one *sync.Mutex per stage id.
	stageLocks sync.Map
}

func NewStore(db client.Interface, cal *calendar.Calendar) *Store {
	return &Store{db: db, cal: cal, now: time.Now}
}

// WithNow overrides the clock. Tests pin "now" to a fixed working instant.
func (s *Store) WithNow(now func() time.Time) *Store {
	s.now = now
	return s
}

// Calendar returns the working-day oracle the store schedules against.
func (s *Store) Calendar() *calendar.Calendar {
	return s.cal
}

// Now returns the store's current scheduling instant in the calendar location.
func (s *Store) Now() time.Time {
	return s.cal.In(s.now())
}

func (s *Store) lockStage(stageId string) func() {
	value, _ := s.stageLocks.LoadOrStore(stageId, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// QueueEndTime returns the latest committed slot end on (stageId, date), or
// the working-day start when the day is still empty.
func (s *Store) QueueEndTime(ctx context.Context, stageId string, date time.Time) (time.Time, error) {
	slots, err := s.db.ListTimeSlotsForStageDate(ctx, stageId, date)
	if err != nil {
		return time.Time{}, err
	}
	end := s.cal.WorkingDayStart(date)
	for _, slot := range slots {
		if slotEnd := s.cal.In(slot.SlotEnd); slotEnd.After(end) {
			end = slotEnd
		}
	}
	return end, nil
}

// NextStartTime walks forward from now and returns the earliest queue end
// that still fits the duration inside its working day. Callers that cannot
// pre-split use this non-splitting path only for durations up to one day.
func (s *Store) NextStartTime(ctx context.Context, stageId string, durationMinutes int) (time.Time, error) {
	if durationMinutes > s.cal.DailyWorkingMinutes() {
		return time.Time{}, commonerrors.NewBadRequest(
			fmt.Sprintf("duration %dm exceeds a working day, split it first", durationMinutes))
	}
	day, err := s.cal.SnapForward(s.Now())
	if err != nil {
		return time.Time{}, err
	}
	floor := day
	for i := 0; i < searchHorizonDays; i++ {
		t, err := s.QueueEndTime(ctx, stageId, day)
		if err != nil {
			return time.Time{}, err
		}
		t = timeutil.MaxTime(t, floor)
		if s.cal.FitsInWorkingDay(t, durationMinutes) {
			return t, nil
		}
		next, err := s.cal.NextWorkingDay(day)
		if err != nil {
			return time.Time{}, err
		}
		day = s.cal.WorkingDayStart(next)
		floor = day
	}
	return time.Time{}, commonerrors.NewNoWorkingDayFound(fmt.Sprintf(
		"stage %s offers no day fitting %dm within %d days", stageId, durationMinutes, searchHorizonDays))
}

// ScheduleSimple places a whole stage at the tail of its queue, no earlier
// than earliestStart, and commits the slot. Returns the committed window.
func (s *Store) ScheduleSimple(ctx context.Context, instanceId, jobId, stageId string, durationMinutes int, earliestStart time.Time) (time.Time, time.Time, error) {
	if durationMinutes > s.cal.DailyWorkingMinutes() {
		return time.Time{}, time.Time{}, commonerrors.NewBadRequest(
			fmt.Sprintf("duration %dm exceeds a working day, split it first", durationMinutes))
	}
	unlock := s.lockStage(stageId)
	defer unlock()

	earliest, err := s.cal.SnapForward(timeutil.MaxTime(earliestStart, s.Now()))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	day := earliest
	for i := 0; i < searchHorizonDays; i++ {
		t, err := s.QueueEndTime(ctx, stageId, day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		t = timeutil.MaxTime(t, earliest)
		if s.cal.FitsInWorkingDay(t, durationMinutes) {
			end := t.Add(time.Duration(durationMinutes) * time.Minute)
			if err = s.commitSlot(ctx, instanceId, jobId, stageId, t, end, durationMinutes, false); err != nil {
				return time.Time{}, time.Time{}, err
			}
			// A readback that disagrees with the commit means an external
			// writer mutated the queue mid-run; the run must halt.
			readback, err := s.QueueEndTime(ctx, stageId, t)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			if !readback.Equal(end) {
				return time.Time{}, time.Time{}, commonerrors.NewInconsistency(fmt.Sprintf(
					"stage %s on %s: committed end %s but queue reads back %s",
					stageId, timeutil.FormatDate(t), timeutil.FormatRFC3339(end), timeutil.FormatRFC3339(readback)))
			}
			return t, end, nil
		}
		next, err := s.cal.NextWorkingDay(day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		day = s.cal.WorkingDayStart(next)
	}
	return time.Time{}, time.Time{}, commonerrors.NewNoWorkingDayFound(fmt.Sprintf(
		"stage %s offers no day fitting %dm within %d days", stageId, durationMinutes, searchHorizonDays))
}

// CommitSplit commits one slot per split part. instanceIds pairs with parts:
// element i is the stage instance owning part i (the original instance first,
// then its continuations).
func (s *Store) CommitSplit(ctx context.Context, jobId, stageId string, instanceIds []string, parts []splitter.Split) error {
	if len(instanceIds) != len(parts) {
		return commonerrors.NewBadRequest(fmt.Sprintf(
			"split commit carries %d instances for %d parts", len(instanceIds), len(parts)))
	}
	unlock := s.lockStage(stageId)
	defer unlock()

	isSplit := len(parts) > 1
	days := map[string]time.Time{}
	for i, part := range parts {
		if err := s.commitSlotNoRecalc(ctx, instanceIds[i], jobId, stageId, part.Start, part.End, part.Minutes, isSplit); err != nil {
			return err
		}
		days[timeutil.FormatDate(part.Date)] = part.Date
	}
	for _, day := range days {
		if err := s.recalcCapacity(ctx, stageId, day); err != nil {
			return err
		}
	}
	return nil
}

// Recalculate rebuilds the capacity record of one (stageId, date) from its
// slots. Used after slots are deleted or moved outside the commit paths.
func (s *Store) Recalculate(ctx context.Context, stageId string, date time.Time) error {
	unlock := s.lockStage(stageId)
	defer unlock()
	return s.recalcCapacity(ctx, stageId, date)
}

// Reset clears every committed slot and capacity record. Batch recompute only.
func (s *Store) Reset(ctx context.Context) error {
	return s.db.ResetCapacity(ctx)
}

// FindGap scans the stage's committed slots for the earliest interval of the
// requested length that fits inside one working window without overlapping.
// The second return is false when no gap exists before the queue tail;
// callers fall back to NextStartTime.
func (s *Store) FindGap(ctx context.Context, stageId string, durationMinutes int, earliestStart time.Time) (time.Time, bool, error) {
	if durationMinutes > s.cal.DailyWorkingMinutes() {
		return time.Time{}, false, nil
	}
	slots, err := s.db.ListTimeSlotsForStage(ctx, stageId)
	if err != nil {
		return time.Time{}, false, err
	}
	cursor, err := s.cal.SnapForward(timeutil.MaxTime(earliestStart, s.Now()))
	if err != nil {
		return time.Time{}, false, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].SlotStart.Before(slots[j].SlotStart)
	})
	span := time.Duration(durationMinutes) * time.Minute
	for _, slot := range slots {
		slotStart, slotEnd := s.cal.In(slot.SlotStart), s.cal.In(slot.SlotEnd)
		if !slotEnd.After(cursor) {
			continue
		}
		if s.cal.FitsInWorkingDay(cursor, durationMinutes) && !cursor.Add(span).After(slotStart) {
			return cursor, true, nil
		}
		cursor = timeutil.MaxTime(cursor, slotEnd)
		if cursor, err = s.cal.SnapForward(cursor); err != nil {
			return time.Time{}, false, err
		}
	}
	if s.cal.FitsInWorkingDay(cursor, durationMinutes) {
		return cursor, true, nil
	}
	return time.Time{}, false, nil
}

// commitSlot writes one slot and refreshes that day's capacity record.
func (s *Store) commitSlot(ctx context.Context, instanceId, jobId, stageId string, start, end time.Time, minutes int, isSplit bool) error {
	if err := s.commitSlotNoRecalc(ctx, instanceId, jobId, stageId, start, end, minutes, isSplit); err != nil {
		return err
	}
	return s.recalcCapacity(ctx, stageId, start)
}

func (s *Store) commitSlotNoRecalc(ctx context.Context, instanceId, jobId, stageId string, start, end time.Time, minutes int, isSplit bool) error {
	slot := &client.StageTimeSlot{
		SlotId:          uuid.NewString(),
		StageId:         stageId,
		Date:            timeutil.StartOfDay(s.cal.In(start)),
		SlotStart:       start,
		SlotEnd:         end,
		DurationMinutes: minutes,
		JobId:           jobId,
		InstanceId:      instanceId,
		IsSplit:         isSplit,
	}
	return s.db.InsertTimeSlot(ctx, slot)
}

// recalcCapacity rebuilds the (stageId, date) workload record from its slots.
func (s *Store) recalcCapacity(ctx context.Context, stageId string, date time.Time) error {
	slots, err := s.db.ListTimeSlotsForStageDate(ctx, stageId, date)
	if err != nil {
		return err
	}
	committed := 0
	queueEnd := s.cal.WorkingDayStart(date)
	instanceIds := make([]string, 0, len(slots))
	for _, slot := range slots {
		committed += slot.DurationMinutes
		if slotEnd := s.cal.In(slot.SlotEnd); slotEnd.After(queueEnd) {
			queueEnd = slotEnd
		}
		instanceIds = append(instanceIds, slot.InstanceId)
	}
	pendingJobs, activeJobs, err := s.countJobsByStatus(ctx, instanceIds)
	if err != nil {
		// job counts are advisory; the queue math stands on the slots alone
		klog.ErrorS(err, "failed to count jobs for capacity record", "stage", stageId)
	}
	available := s.cal.WorkingMinutes(date) - committed
	if available < 0 {
		available = 0
	}
	record := &client.StageCapacityRecord{
		StageId:            stageId,
		Date:               timeutil.StartOfDay(s.cal.In(date)),
		CommittedMinutes:   committed,
		AvailableMinutes:   available,
		QueueLengthMinutes: committed,
		QueueEndsAt:        dbutils.NullTime(queueEnd),
		PendingJobsCount:   pendingJobs,
		ActiveJobsCount:    activeJobs,
		CalculatedAt:       dbutils.NullTime(s.Now()),
	}
	return s.db.UpsertCapacityRecord(ctx, record)
}

func (s *Store) countJobsByStatus(ctx context.Context, instanceIds []string) (pending, active int, err error) {
	if len(instanceIds) == 0 {
		return 0, 0, nil
	}
	instances, err := s.db.ListStageInstancesByIds(ctx, instanceIds)
	if err != nil {
		return 0, 0, err
	}
	pendingJobs := map[string]bool{}
	activeJobs := map[string]bool{}
	for _, inst := range instances {
		switch inst.Status {
		case client.StagePending:
			pendingJobs[inst.JobId] = true
		case client.StageActive:
			activeJobs[inst.JobId] = true
		}
	}
	return len(pendingJobs), len(activeJobs), nil
}
