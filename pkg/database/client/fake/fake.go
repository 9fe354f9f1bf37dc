/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package fake provides an in-memory implementation of the database client
// interface for engine tests.
package fake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	sqrl "github.com/Masterminds/squirrel"

	"github.com/printflow/scheduler/pkg/database/client"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

type Client struct {
	mu sync.Mutex

	Instances []*client.StageInstance
	Slots     []*client.StageTimeSlot
	Capacity  map[string]*client.StageCapacityRecord
	Jobs      []*client.ProductionJob
	Stages    []*client.ProductionStage
	Shifts    []*client.ShiftSchedule
	Holidays  []*client.PublicHoliday
	Settings  []*client.AppSetting

	nextSlotRow int64

	// FailInsertSlotFor makes time-slot inserts fail for one stage id, to
	// exercise per-stage error recording.
	FailInsertSlotFor string
}

var _ client.Interface = (*Client)(nil)

func NewClient() *Client {
	return &Client{Capacity: map[string]*client.StageCapacityRecord{}}
}

func capacityKey(stageId string, date time.Time) string {
	return stageId + "|" + date.Format("2006-01-02")
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.In(a.Location()).Format("2006-01-02")
}

func (f *Client) ListStageInstances(_ context.Context, jobId, jobTableName string) ([]*client.StageInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*client.StageInstance
	for _, inst := range f.Instances {
		if inst.JobId == jobId && inst.JobTableName == jobTableName {
			result = append(result, inst)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StageOrder != result[j].StageOrder {
			return result[i].StageOrder < result[j].StageOrder
		}
		return result[i].SplitSequence < result[j].SplitSequence
	})
	return result, nil
}

func (f *Client) GetStageInstance(_ context.Context, instanceId string) (*client.StageInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.Instances {
		if inst.InstanceId == instanceId {
			return inst, nil
		}
	}
	return nil, commonerrors.NewNotFound(commonerrors.StageInstanceKind, instanceId)
}

func (f *Client) ListStageInstancesByIds(_ context.Context, instanceIds []string) ([]*client.StageInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range instanceIds {
		wanted[id] = true
	}
	var result []*client.StageInstance
	for _, inst := range f.Instances {
		if wanted[inst.InstanceId] {
			result = append(result, inst)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StageOrder != result[j].StageOrder {
			return result[i].StageOrder < result[j].StageOrder
		}
		return result[i].SplitSequence < result[j].SplitSequence
	})
	return result, nil
}

func (f *Client) InsertStageInstance(_ context.Context, inst *client.StageInstance) error {
	if inst == nil {
		return commonerrors.NewBadRequest("the input is empty")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Instances = append(f.Instances, inst)
	return nil
}

func (f *Client) UpdateStageInstanceWindow(_ context.Context, instanceId string, start, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.Instances {
		if inst.InstanceId == instanceId {
			inst.ScheduledStart = dbutils.NullTime(start)
			inst.ScheduledEnd = dbutils.NullTime(end)
			return nil
		}
	}
	return commonerrors.NewNotFound(commonerrors.StageInstanceKind, instanceId)
}

func (f *Client) MarkStageInstanceSplit(_ context.Context, instanceId string, splitSequence, totalSplits int, parentSplitId, uniqueStageKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.Instances {
		if inst.InstanceId == instanceId {
			inst.IsSplit = true
			inst.SplitSequence = splitSequence
			inst.TotalSplits = totalSplits
			inst.ParentSplitId = dbutils.NullString(parentSplitId)
			inst.UniqueStageKey = dbutils.NullString(uniqueStageKey)
			return nil
		}
	}
	return commonerrors.NewNotFound(commonerrors.StageInstanceKind, instanceId)
}

// CountStageInstances ignores the query expression; the fake serves engine
// tests that never filter counts.
func (f *Client) CountStageInstances(_ context.Context, _ sqrl.Sqlizer) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Instances), nil
}

func (f *Client) InsertTimeSlot(_ context.Context, slot *client.StageTimeSlot) error {
	if slot == nil {
		return commonerrors.NewBadRequest("the input is empty")
	}
	if f.FailInsertSlotFor != "" && slot.StageId == f.FailInsertSlotFor {
		return commonerrors.NewPersistenceError("injected insert failure")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSlotRow++
	slot.Id = f.nextSlotRow
	f.Slots = append(f.Slots, slot)
	return nil
}

func (f *Client) ListTimeSlotsForStageDate(_ context.Context, stageId string, date time.Time) ([]*client.StageTimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*client.StageTimeSlot
	for _, slot := range f.Slots {
		if slot.StageId == stageId && sameDate(slot.Date, date) {
			result = append(result, slot)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SlotStart.Before(result[j].SlotStart)
	})
	return result, nil
}

func (f *Client) ListTimeSlotsForStage(_ context.Context, stageId string) ([]*client.StageTimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*client.StageTimeSlot
	for _, slot := range f.Slots {
		if slot.StageId == stageId {
			result = append(result, slot)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Id < result[j].Id
	})
	return result, nil
}

func (f *Client) ListTimeSlotsForInstances(_ context.Context, date time.Time, instanceIds []string) ([]*client.StageTimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range instanceIds {
		wanted[id] = true
	}
	var result []*client.StageTimeSlot
	for _, slot := range f.Slots {
		if wanted[slot.InstanceId] && sameDate(slot.Date, date) {
			result = append(result, slot)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].SlotStart.Equal(result[j].SlotStart) {
			return result[i].SlotStart.Before(result[j].SlotStart)
		}
		return result[i].Id < result[j].Id
	})
	return result, nil
}

func (f *Client) UpdateTimeSlotWindow(_ context.Context, slotId string, date, start, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slot := range f.Slots {
		if slot.SlotId == slotId {
			slot.Date = date
			slot.SlotStart = start
			slot.SlotEnd = end
			return nil
		}
	}
	return commonerrors.NewNotFoundWithMessage("slot " + slotId + " not found")
}

func (f *Client) DeleteTimeSlotsForInstance(_ context.Context, instanceId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Slots[:0]
	for _, slot := range f.Slots {
		if slot.InstanceId != instanceId {
			kept = append(kept, slot)
		}
	}
	f.Slots = kept
	return nil
}

func (f *Client) GetCapacityRecord(_ context.Context, stageId string, date time.Time) (*client.StageCapacityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.Capacity[capacityKey(stageId, date)]
	if !ok {
		return nil, nil
	}
	return record, nil
}

func (f *Client) UpsertCapacityRecord(_ context.Context, record *client.StageCapacityRecord) error {
	if record == nil {
		return commonerrors.NewBadRequest("the input is empty")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Capacity == nil {
		f.Capacity = map[string]*client.StageCapacityRecord{}
	}
	f.Capacity[capacityKey(record.StageId, record.Date)] = record
	return nil
}

func (f *Client) ResetCapacity(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Slots = nil
	f.Capacity = map[string]*client.StageCapacityRecord{}
	return nil
}

func (f *Client) ListShiftSchedules(_ context.Context) ([]*client.ShiftSchedule, error) {
	return f.Shifts, nil
}

func (f *Client) ListPublicHolidays(_ context.Context) ([]*client.PublicHoliday, error) {
	return f.Holidays, nil
}

func (f *Client) ListAppSettings(_ context.Context) ([]*client.AppSetting, error) {
	return f.Settings, nil
}

func (f *Client) GetJob(_ context.Context, jobId string) (*client.ProductionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.Jobs {
		if job.JobId == jobId {
			return job, nil
		}
	}
	return nil, commonerrors.NewNotFound(commonerrors.JobKind, jobId)
}

func (f *Client) ListActiveJobs(_ context.Context) ([]*client.ProductionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*client.ProductionJob
	for _, job := range f.Jobs {
		if job.Status != "completed" {
			result = append(result, job)
		}
	}
	sortJobsFIFO(result)
	return result, nil
}

func (f *Client) ListJobsByIds(_ context.Context, jobIds []string) ([]*client.ProductionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range jobIds {
		wanted[id] = true
	}
	var result []*client.ProductionJob
	for _, job := range f.Jobs {
		if wanted[job.JobId] {
			result = append(result, job)
		}
	}
	sortJobsFIFO(result)
	return result, nil
}

func (f *Client) ListJobsAwaitingProof(_ context.Context) ([]*client.ProductionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*client.ProductionJob
	for _, job := range f.Jobs {
		if job.ProofApprovedAt.Valid {
			continue
		}
		for _, inst := range f.Instances {
			if inst.JobId != job.JobId || inst.Status != client.StagePending {
				continue
			}
			if strings.Contains(strings.ToLower(inst.StageName.String), "proof") {
				result = append(result, job)
				break
			}
		}
	}
	sortJobsFIFO(result)
	return result, nil
}

func (f *Client) SetJobTentativeDueDate(_ context.Context, jobId string, due time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.Jobs {
		if job.JobId == jobId {
			job.TentativeDueDate = dbutils.NullTime(due)
			return nil
		}
	}
	return commonerrors.NewNotFound(commonerrors.JobKind, jobId)
}

func (f *Client) ListProductionStages(_ context.Context) ([]*client.ProductionStage, error) {
	return f.Stages, nil
}

func (f *Client) Ping() error {
	return nil
}

func sortJobsFIFO(jobs []*client.ProductionJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i].CreationTime.Time, jobs[j].CreationTime.Time
		if !a.Equal(b) {
			return a.Before(b)
		}
		return jobs[i].JobId < jobs[j].JobId
	})
}
