/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package capacity

import (
	"context"
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/printflow/scheduler/pkg/calendar"
	"github.com/printflow/scheduler/pkg/database/client"
	"github.com/printflow/scheduler/pkg/database/client/fake"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/splitter"
)

var testLoc = time.FixedZone("SAST", 2*60*60)

// Monday 2026-03-02.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, testLoc)
}

func newTestStore(db *fake.Client) *Store {
	cal := calendar.Default(testLoc)
	return NewStore(db, cal).WithNow(func() time.Time { return monday(8, 0) })
}

func TestQueueEndTimeEmptyDay(t *testing.T) {
	store := newTestStore(fake.NewClient())

	end, err := store.QueueEndTime(context.Background(), "stage-x", monday(0, 0))
	assert.NilError(t, err)
	assert.Equal(t, end, monday(8, 0))
}

func TestScheduleSimpleFIFO(t *testing.T) {
	db := fake.NewClient()
	store := newTestStore(db)
	ctx := context.Background()

	startA, endA, err := store.ScheduleSimple(ctx, "si-a", "job-a", "stage-x", 60, monday(8, 0))
	assert.NilError(t, err)
	assert.Equal(t, startA, monday(8, 0))
	assert.Equal(t, endA, monday(9, 0))

	startB, endB, err := store.ScheduleSimple(ctx, "si-b", "job-b", "stage-x", 60, monday(8, 0))
	assert.NilError(t, err)
	assert.Equal(t, startB, monday(9, 0))
	assert.Equal(t, endB, monday(10, 0))

	queueEnd, err := store.QueueEndTime(ctx, "stage-x", monday(0, 0))
	assert.NilError(t, err)
	assert.Equal(t, queueEnd, monday(10, 0))

	record := db.Capacity["stage-x|2026-03-02"]
	assert.Assert(t, record != nil)
	assert.Equal(t, record.CommittedMinutes, 120)
	assert.Equal(t, record.AvailableMinutes, 390)
	assert.Equal(t, record.QueueEndsAt.Time, monday(10, 0))
}

func TestScheduleSimpleHonorsEarliestStart(t *testing.T) {
	store := newTestStore(fake.NewClient())

	start, end, err := store.ScheduleSimple(context.Background(), "si-a", "job-a", "stage-x", 30, monday(11, 0))
	assert.NilError(t, err)
	assert.Equal(t, start, monday(11, 0))
	assert.Equal(t, end, monday(11, 30))
}

func TestScheduleSimpleRollsToNextDay(t *testing.T) {
	store := newTestStore(fake.NewClient())
	ctx := context.Background()

	// fill Monday up to 16:00, then ask for 60m
	_, _, err := store.ScheduleSimple(ctx, "si-a", "job-a", "stage-x", 480, monday(8, 0))
	assert.NilError(t, err)

	start, end, err := store.ScheduleSimple(ctx, "si-b", "job-b", "stage-x", 60, monday(8, 0))
	assert.NilError(t, err)
	assert.Equal(t, start, time.Date(2026, 3, 3, 8, 0, 0, 0, testLoc))
	assert.Equal(t, end, time.Date(2026, 3, 3, 9, 0, 0, 0, testLoc))
}

func TestScheduleSimpleRejectsOversizedDuration(t *testing.T) {
	store := newTestStore(fake.NewClient())

	_, _, err := store.ScheduleSimple(context.Background(), "si-a", "job-a", "stage-x", 511, monday(8, 0))
	assert.ErrorContains(t, err, "split it first")
}

func TestNextStartTimeSkipsFullDays(t *testing.T) {
	store := newTestStore(fake.NewClient())
	ctx := context.Background()

	_, _, err := store.ScheduleSimple(ctx, "si-a", "job-a", "stage-x", 500, monday(8, 0))
	assert.NilError(t, err)

	// 20 minutes still fit today
	start, err := store.NextStartTime(ctx, "stage-x", 10)
	assert.NilError(t, err)
	assert.Equal(t, start, monday(16, 20))

	// 60 minutes do not
	start, err = store.NextStartTime(ctx, "stage-x", 60)
	assert.NilError(t, err)
	assert.Equal(t, start, time.Date(2026, 3, 3, 8, 0, 0, 0, testLoc))
}

func TestCommitSplitTouchesEachDay(t *testing.T) {
	db := fake.NewClient()
	store := newTestStore(db)
	ctx := context.Background()

	cal := store.Calendar()
	parts, err := splitter.New(cal).Split(monday(15, 0), 180)
	assert.NilError(t, err)
	assert.Equal(t, len(parts), 2)

	err = store.CommitSplit(ctx, "job-a", "stage-x", []string{"si-a", "si-a-2"}, parts)
	assert.NilError(t, err)

	assert.Equal(t, len(db.Slots), 2)
	assert.Assert(t, db.Slots[0].IsSplit)
	assert.Equal(t, db.Slots[0].InstanceId, "si-a")
	assert.Equal(t, db.Slots[1].InstanceId, "si-a-2")

	monRecord := db.Capacity["stage-x|2026-03-02"]
	tueRecord := db.Capacity["stage-x|2026-03-03"]
	assert.Assert(t, monRecord != nil)
	assert.Assert(t, tueRecord != nil)
	assert.Equal(t, monRecord.CommittedMinutes, 90)
	assert.Equal(t, tueRecord.CommittedMinutes, 90)
}

func TestCommitSplitLengthMismatch(t *testing.T) {
	store := newTestStore(fake.NewClient())

	err := store.CommitSplit(context.Background(), "job-a", "stage-x", []string{"si-a"}, []splitter.Split{{}, {}})
	assert.ErrorContains(t, err, "2 parts")
}

func TestResetClearsSlotsAndCapacity(t *testing.T) {
	db := fake.NewClient()
	store := newTestStore(db)
	ctx := context.Background()

	_, _, err := store.ScheduleSimple(ctx, "si-a", "job-a", "stage-x", 60, monday(8, 0))
	assert.NilError(t, err)
	assert.Equal(t, len(db.Slots), 1)

	assert.NilError(t, store.Reset(ctx))
	assert.Equal(t, len(db.Slots), 0)
	assert.Equal(t, len(db.Capacity), 0)

	end, err := store.QueueEndTime(ctx, "stage-x", monday(0, 0))
	assert.NilError(t, err)
	assert.Equal(t, end, monday(8, 0))
}

func TestFindGapBetweenSlots(t *testing.T) {
	db := fake.NewClient()
	store := newTestStore(db)
	ctx := context.Background()

	// 08:00-09:00 committed, then 10:00-11:00 leaves a 60m hole
	_, _, err := store.ScheduleSimple(ctx, "si-a", "job-a", "stage-x", 60, monday(8, 0))
	assert.NilError(t, err)
	_, _, err = store.ScheduleSimple(ctx, "si-b", "job-b", "stage-x", 60, monday(10, 0))
	assert.NilError(t, err)

	gap, found, err := store.FindGap(ctx, "stage-x", 60, monday(8, 0))
	assert.NilError(t, err)
	assert.Assert(t, found)
	assert.Equal(t, gap, monday(9, 0))

	// 90 minutes do not fit the hole; the tail after 11:00 serves it
	gap, found, err = store.FindGap(ctx, "stage-x", 90, monday(8, 0))
	assert.NilError(t, err)
	assert.Assert(t, found)
	assert.Equal(t, gap, monday(11, 0))
}

// vanishingInsertClient accepts slot inserts without persisting them, so the
// queue readback after a commit disagrees with the committed end.
type vanishingInsertClient struct {
	*fake.Client
}

func (c *vanishingInsertClient) InsertTimeSlot(_ context.Context, _ *client.StageTimeSlot) error {
	return nil
}

func TestScheduleSimpleInconsistentReadback(t *testing.T) {
	db := &vanishingInsertClient{Client: fake.NewClient()}
	store := NewStore(db, calendar.Default(testLoc)).WithNow(func() time.Time { return monday(8, 0) })

	_, _, err := store.ScheduleSimple(context.Background(), "si-a", "job-a", "stage-x", 60, monday(8, 0))
	assert.Assert(t, commonerrors.IsInconsistency(err))
}
