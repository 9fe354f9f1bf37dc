/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package reorder rewrites the slot times of one day's stages to match a
// requested processing order, preserving every stage's total duration.
package reorder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/database/client"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/timeutil"
)

// UpdatedStage is one instance's rewritten window.
type UpdatedStage struct {
	InstanceId     string    `json:"stageInstanceId"`
	ScheduledStart time.Time `json:"scheduledStart"`
	ScheduledEnd   time.Time `json:"scheduledEnd"`
}

// ShiftReorderer applies a desired stage order to one working day.
type ShiftReorderer struct {
	db    client.Interface
	store *capacity.Store
}

func NewShiftReorderer(db client.Interface, store *capacity.Store) *ShiftReorderer {
	return &ShiftReorderer{db: db, store: store}
}

// ReorderDay rewrites the slots of the supplied instances on date so they run
// back-to-back from shiftStart in the desired order. The final order keeps
// each job's stages contiguous in stageOrder and pushes split instances to
// the tail. Applying the same request twice yields identical windows.
func (r *ShiftReorderer) ReorderDay(ctx context.Context, date time.Time, desiredOrder []string, shiftStart time.Time) ([]UpdatedStage, error) {
	if len(desiredOrder) == 0 {
		return nil, commonerrors.NewBadRequest("no stage instances supplied")
	}
	instances, err := r.db.ListStageInstancesByIds(ctx, desiredOrder)
	if err != nil {
		return nil, err
	}
	byId := map[string]*client.StageInstance{}
	for _, inst := range instances {
		byId[inst.InstanceId] = inst
	}
	for _, id := range desiredOrder {
		if byId[id] == nil {
			return nil, commonerrors.NewNotFound(commonerrors.StageInstanceKind, id)
		}
	}

	slots, err := r.db.ListTimeSlotsForInstances(ctx, date, desiredOrder)
	if err != nil {
		return nil, err
	}
	slotsByInstance := map[string][]*client.StageTimeSlot{}
	for _, slot := range slots {
		slotsByInstance[slot.InstanceId] = append(slotsByInstance[slot.InstanceId], slot)
	}
	var missing []string
	for _, id := range desiredOrder {
		if len(slotsByInstance[id]) == 0 {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, commonerrors.NewStagesNotAllOnDate(fmt.Sprintf(
			"instances %v have no slot on %s", missing, timeutil.FormatDate(date)))
	}

	finalOrder := expandOrder(desiredOrder, byId)

	cal := r.store.Calendar()
	cursor := cal.In(shiftStart)
	var updated []UpdatedStage
	stageDays := map[string]time.Time{}
	for _, id := range finalOrder {
		instSlots := slotsByInstance[id]
		sort.SliceStable(instSlots, func(i, j int) bool {
			return instSlots[i].SlotStart.Before(instSlots[j].SlotStart)
		})
		first := cursor
		for _, slot := range instSlots {
			end := cursor.Add(time.Duration(slot.DurationMinutes) * time.Minute)
			if err = r.db.UpdateTimeSlotWindow(ctx, slot.SlotId, timeutil.StartOfDay(cal.In(date)), cursor, end); err != nil {
				return nil, err
			}
			stageDays[slot.StageId] = date
			cursor = end
		}
		if err = r.db.UpdateStageInstanceWindow(ctx, id, first, cursor); err != nil {
			return nil, err
		}
		updated = append(updated, UpdatedStage{InstanceId: id, ScheduledStart: first, ScheduledEnd: cursor})
	}

	for stageId, day := range stageDays {
		if err = r.store.Recalculate(ctx, stageId, day); err != nil {
			return nil, err
		}
	}
	klog.InfoS("reordered day", "date", timeutil.FormatDate(date), "stages", len(finalOrder))
	return updated, nil
}

// expandOrder produces the final processing order: walking the request, each
// first-seen job pulls in all of its supplied sibling stages in stageOrder,
// and split instances drop to the tail.
func expandOrder(desiredOrder []string, byId map[string]*client.StageInstance) []string {
	placed := map[string]bool{}
	var head, tail []string
	appendInst := func(inst *client.StageInstance) {
		if placed[inst.InstanceId] {
			return
		}
		placed[inst.InstanceId] = true
		if inst.IsSplit {
			tail = append(tail, inst.InstanceId)
			return
		}
		head = append(head, inst.InstanceId)
	}
	for _, id := range desiredOrder {
		if placed[id] {
			continue
		}
		jobId := byId[id].JobId
		var siblings []*client.StageInstance
		for _, otherId := range desiredOrder {
			if other := byId[otherId]; other.JobId == jobId {
				siblings = append(siblings, other)
			}
		}
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].StageOrder < siblings[j].StageOrder
		})
		for _, sibling := range siblings {
			appendInst(sibling)
		}
	}
	return append(head, tail...)
}
