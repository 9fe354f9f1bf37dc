/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"time"

	sqrl "github.com/Masterminds/squirrel"
)

type Interface interface {
	StageInstanceInterface
	TimeSlotInterface
	CapacityInterface
	CalendarInterface
	JobInterface
	// Ping verifies the backing store is reachable.
	Ping() error
}

type StageInstanceInterface interface {
	// ListStageInstances returns every stage instance of a job ordered by
	// stage_order then split_sequence.
	ListStageInstances(ctx context.Context, jobId, jobTableName string) ([]*StageInstance, error)
	GetStageInstance(ctx context.Context, instanceId string) (*StageInstance, error)
	ListStageInstancesByIds(ctx context.Context, instanceIds []string) ([]*StageInstance, error)
	InsertStageInstance(ctx context.Context, inst *StageInstance) error
	// UpdateStageInstanceWindow persists the scheduled start/end of one instance.
	UpdateStageInstanceWindow(ctx context.Context, instanceId string, start, end time.Time) error
	// MarkStageInstanceSplit records split-chain metadata on an instance.
	MarkStageInstanceSplit(ctx context.Context, instanceId string, splitSequence, totalSplits int, parentSplitId, uniqueStageKey string) error
	CountStageInstances(ctx context.Context, query sqrl.Sqlizer) (int, error)
}

type TimeSlotInterface interface {
	InsertTimeSlot(ctx context.Context, slot *StageTimeSlot) error
	// ListTimeSlotsForStageDate returns the slots of a stage on a day ordered
	// by slot_start.
	ListTimeSlotsForStageDate(ctx context.Context, stageId string, date time.Time) ([]*StageTimeSlot, error)
	// ListTimeSlotsForStage returns every slot of a stage in insertion order.
	ListTimeSlotsForStage(ctx context.Context, stageId string) ([]*StageTimeSlot, error)
	// ListTimeSlotsForInstances returns the slots of the given instances on a day.
	ListTimeSlotsForInstances(ctx context.Context, date time.Time, instanceIds []string) ([]*StageTimeSlot, error)
	UpdateTimeSlotWindow(ctx context.Context, slotId string, date, start, end time.Time) error
	DeleteTimeSlotsForInstance(ctx context.Context, instanceId string) error
}

type CapacityInterface interface {
	// GetCapacityRecord returns nil when no record exists for the stage/day yet.
	GetCapacityRecord(ctx context.Context, stageId string, date time.Time) (*StageCapacityRecord, error)
	UpsertCapacityRecord(ctx context.Context, record *StageCapacityRecord) error
	// ResetCapacity clears stage_time_slots and stage_workload_tracking in one
	// transaction.
	ResetCapacity(ctx context.Context) error
}

type CalendarInterface interface {
	ListShiftSchedules(ctx context.Context) ([]*ShiftSchedule, error)
	ListPublicHolidays(ctx context.Context) ([]*PublicHoliday, error)
	ListAppSettings(ctx context.Context) ([]*AppSetting, error)
}

type JobInterface interface {
	GetJob(ctx context.Context, jobId string) (*ProductionJob, error)
	// ListActiveJobs returns every non-completed job ordered by created_at then job_id.
	ListActiveJobs(ctx context.Context) ([]*ProductionJob, error)
	ListJobsByIds(ctx context.Context, jobIds []string) ([]*ProductionJob, error)
	// ListJobsAwaitingProof returns jobs with a pending proof stage and no
	// proof approval timestamp.
	ListJobsAwaitingProof(ctx context.Context) ([]*ProductionJob, error)
	SetJobTentativeDueDate(ctx context.Context, jobId string, due time.Time) error
	ListProductionStages(ctx context.Context) ([]*ProductionStage, error)
}
