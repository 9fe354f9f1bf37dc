/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package schedule_handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/handlers/schedule-handlers/types"
	"github.com/printflow/scheduler/pkg/jobtable"
	"github.com/printflow/scheduler/pkg/reorder"
	"github.com/printflow/scheduler/pkg/scheduler"
	"github.com/printflow/scheduler/pkg/tentative"
	"github.com/printflow/scheduler/pkg/timeutil"
)

// ScheduleJob schedules every pending stage of one job.
func (h *Handler) ScheduleJob(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		var req types.ScheduleJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, commonerrors.NewBadRequest(err.Error())
		}
		orch := scheduler.NewOrchestrator(h.dbClient, h.newStore(c))
		result, err := orch.ScheduleJob(c.Request.Context(), req.JobId, req.JobTableName)
		if err != nil {
			return nil, err
		}
		return &types.ScheduleJobResponse{
			Response:         types.Response{Ok: true},
			SchedulingResult: *result,
		}, nil
	})
}

// RecalculateAll rebuilds the schedule of the given jobs, or of every active
// job, from a clean capacity baseline.
func (h *Handler) RecalculateAll(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		var req types.RecalculateAllRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, commonerrors.NewBadRequest(err.Error())
		}
		batch := scheduler.NewBatchRecomputer(h.dbClient, h.newStore(c))
		result, err := batch.RecalculateAll(c.Request.Context(), req.JobIds)
		if err != nil {
			return nil, err
		}
		return &types.RecalculateAllResponse{
			Response:    types.Response{Ok: true},
			BatchResult: *result,
		}, nil
	})
}

// ReorderDay rewrites the processing order of one day's stages.
func (h *Handler) ReorderDay(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		var req types.ReorderDayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, commonerrors.NewBadRequest(err.Error())
		}
		store := h.newStore(c)
		loc := store.Calendar().Location()
		date, err := timeutil.ParseDate(req.Date, loc)
		if err != nil {
			return nil, commonerrors.NewBadRequest("invalid date: " + err.Error())
		}
		startHour, startMinute, err := timeutil.ParseClock(req.ShiftStart)
		if err != nil {
			return nil, commonerrors.NewBadRequest("invalid shiftStart: " + err.Error())
		}
		if req.ShiftEnd != "" {
			if _, _, err = timeutil.ParseClock(req.ShiftEnd); err != nil {
				return nil, commonerrors.NewBadRequest("invalid shiftEnd: " + err.Error())
			}
		}
		shiftStart := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMinute, 0, 0, loc)

		reorderer := reorder.NewShiftReorderer(h.dbClient, store)
		updated, err := reorderer.ReorderDay(c.Request.Context(), date, req.StageInstanceIds, shiftStart)
		if err != nil {
			return nil, err
		}
		return &types.ReorderDayResponse{
			Response:      types.Response{Ok: true},
			UpdatedStages: updated,
		}, nil
	})
}

// RecalcTentativeDueDates projects due dates for jobs awaiting proof approval.
func (h *Handler) RecalcTentativeDueDates(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		estimator := tentative.NewEstimator(h.dbClient, h.newStore(c))
		estimates, err := estimator.RecalcTentativeDueDates(c.Request.Context())
		if err != nil {
			return nil, err
		}
		return &types.RecalcTentativeResponse{
			Response: types.Response{Ok: true},
			Count:    len(estimates),
			Results:  estimates,
		}, nil
	})
}

// ManualRescheduleStage moves one stage instance to a target working day.
func (h *Handler) ManualRescheduleStage(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		var req types.ManualRescheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, commonerrors.NewBadRequest(err.Error())
		}
		store := h.newStore(c)
		date, err := timeutil.ParseDate(req.TargetDate, store.Calendar().Location())
		if err != nil {
			return nil, commonerrors.NewBadRequest("invalid targetDate: " + err.Error())
		}
		orch := scheduler.NewOrchestrator(h.dbClient, store)
		start, end, err := orch.ManualRescheduleStage(c.Request.Context(), req.StageInstanceId, req.StageId, date)
		if err != nil {
			return nil, err
		}
		return &types.ManualRescheduleResponse{
			Response:       types.Response{Ok: true},
			ScheduledStart: start,
			ScheduledEnd:   end,
		}, nil
	})
}

// GetStageQueue reports one stage's committed queue on one day.
func (h *Handler) GetStageQueue(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		stageId := c.Param(ParamStageId)
		store := h.newStore(c)
		cal := store.Calendar()
		date := cal.In(store.Now())
		if raw := c.Query("date"); raw != "" {
			var err error
			if date, err = timeutil.ParseDate(raw, cal.Location()); err != nil {
				return nil, commonerrors.NewBadRequest("invalid date: " + err.Error())
			}
		}
		ctx := c.Request.Context()
		slots, err := h.dbClient.ListTimeSlotsForStageDate(ctx, stageId, date)
		if err != nil {
			return nil, err
		}
		queueEnd, err := store.QueueEndTime(ctx, stageId, date)
		if err != nil {
			return nil, err
		}
		rsp := &types.StageQueueResponse{
			Response:         types.Response{Ok: true},
			StageId:          stageId,
			Date:             timeutil.FormatDate(cal.In(date)),
			QueueEndsAt:      queueEnd,
			AvailableMinutes: cal.WorkingMinutes(date),
		}
		for _, slot := range slots {
			rsp.CommittedMinutes += slot.DurationMinutes
			rsp.Slots = append(rsp.Slots, types.SlotView{
				SlotId:          slot.SlotId,
				JobId:           slot.JobId,
				StageInstanceId: slot.InstanceId,
				SlotStart:       cal.In(slot.SlotStart),
				SlotEnd:         cal.In(slot.SlotEnd),
				DurationMinutes: slot.DurationMinutes,
				IsSplit:         slot.IsSplit,
			})
		}
		if rsp.CommittedMinutes < rsp.AvailableMinutes {
			rsp.AvailableMinutes -= rsp.CommittedMinutes
		} else {
			rsp.AvailableMinutes = 0
		}
		return rsp, nil
	})
}

// GetJobSchedule lists the scheduled windows of one job's stage instances.
func (h *Handler) GetJobSchedule(c *gin.Context) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		jobId := c.Param(ParamJobId)
		table, err := jobtable.Normalize(c.Query("jobTableName"))
		if err != nil {
			return nil, commonerrors.NewBadRequest(err.Error())
		}
		instances, err := h.dbClient.ListStageInstances(c.Request.Context(), jobId, table)
		if err != nil {
			return nil, err
		}
		if len(instances) == 0 {
			return nil, commonerrors.NewWorkflowNotFound(jobId)
		}
		rsp := &types.JobScheduleResponse{
			Response: types.Response{Ok: true},
			JobId:    jobId,
		}
		for _, inst := range instances {
			view := types.StageWindowView{
				StageInstanceId: inst.InstanceId,
				StageId:         inst.StageId,
				StageName:       dbutils.ParseNullString(inst.StageName),
				StageOrder:      inst.StageOrder,
				PartAssignment:  dbutils.ParseNullString(inst.PartAssignment),
				Status:          inst.Status,
				IsSplit:         inst.IsSplit,
				SplitSequence:   inst.SplitSequence,
			}
			if inst.ScheduledStart.Valid {
				start := inst.ScheduledStart.Time
				view.ScheduledStart = &start
			}
			if inst.ScheduledEnd.Valid {
				end := inst.ScheduledEnd.Time
				view.ScheduledEnd = &end
			}
			rsp.Stages = append(rsp.Stages, view)
		}
		return rsp, nil
	})
}
