/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"time"

	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/calendar"
	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/database/client"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/jobtable"
	"github.com/printflow/scheduler/pkg/timeutil"
	"github.com/printflow/scheduler/pkg/workflow"
)

// Orchestrator is the whole-job scheduling entry point. It analyzes the
// workflow, runs the two part paths from now, and converges them.
type Orchestrator struct {
	db       client.Interface
	store    *capacity.Store
	analyzer *workflow.Analyzer
	paths    *PathProcessor
	conv     *ConvergenceProcessor
}

func NewOrchestrator(db client.Interface, store *capacity.Store) *Orchestrator {
	return &Orchestrator{
		db:       db,
		store:    store,
		analyzer: workflow.NewAnalyzer(db),
		paths:    NewPathProcessor(db, store),
		conv:     NewConvergenceProcessor(db, store),
	}
}

// Calendar returns the working-day oracle scheduling runs against.
func (o *Orchestrator) Calendar() *calendar.Calendar {
	return o.store.Calendar()
}

// ScheduleJob schedules every pending stage of one job. Stage-level failures
// are aggregated in the result; the call itself only errors when the job has
// no workflow at all.
func (o *Orchestrator) ScheduleJob(ctx context.Context, jobId, jobTableName string) (*SchedulingResult, error) {
	table, err := jobtable.Normalize(jobTableName)
	if err != nil {
		return nil, commonerrors.NewBadRequest(err.Error())
	}
	w, err := o.analyzer.Analyze(ctx, jobId, table)
	if err != nil {
		return nil, err
	}

	now := o.store.Now()
	result := &SchedulingResult{JobId: jobId}
	var coverEnd, textEnd time.Time

	if !w.CoverPath.Empty() {
		coverResult, err := o.paths.Process(ctx, w.CoverPath, now)
		if err != nil {
			return nil, err
		}
		coverEnd = coverResult.PathCompletionTime
		result.CoverEnd = &coverEnd
		result.TotalMinutes += coverResult.TotalMinutes
		result.Errors = append(result.Errors, coverResult.Errors...)
	}
	if !w.TextPath.Empty() {
		textResult, err := o.paths.Process(ctx, w.TextPath, now)
		if err != nil {
			return nil, err
		}
		textEnd = textResult.PathCompletionTime
		result.TextEnd = &textEnd
		result.TotalMinutes += textResult.TotalMinutes
		result.Errors = append(result.Errors, textResult.Errors...)
	}

	completion := now
	if !coverEnd.IsZero() {
		completion = coverEnd
	}
	if textEnd.After(completion) {
		completion = textEnd
	}

	if !w.ConvergencePath.Empty() {
		convergenceStart := timeutil.MaxTime(coverEnd, textEnd)
		if convergenceStart.IsZero() {
			convergenceStart = now
		}
		if err = ValidateConvergenceTiming(convergenceStart, coverEnd, textEnd); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		convResult, err := o.conv.Process(ctx, w.ConvergencePath, convergenceStart)
		if err != nil {
			return nil, err
		}
		convergenceEnd := convResult.PathCompletionTime
		result.ConvergenceEnd = &convergenceEnd
		result.TotalMinutes += convResult.TotalMinutes
		result.Errors = append(result.Errors, convResult.Errors...)
		completion = convergenceEnd
	}

	result.ScheduledCompletionDate = completion
	result.Success = len(result.Errors) == 0
	if !result.Success {
		klog.InfoS("job scheduled with stage errors", "job", jobId, "errors", len(result.Errors))
	}
	return result, nil
}

// ManualRescheduleStage moves one stage instance to a target working day:
// its committed slots are discarded and the stage joins that day's queue.
func (o *Orchestrator) ManualRescheduleStage(ctx context.Context, instanceId, stageId string, targetDate time.Time) (time.Time, time.Time, error) {
	inst, err := o.db.GetStageInstance(ctx, instanceId)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if stageId == "" {
		stageId = inst.StageId
	}
	cal := o.store.Calendar()
	if !cal.IsWorkingDay(targetDate) {
		return time.Time{}, time.Time{}, commonerrors.NewBadRequest(
			"target date " + timeutil.FormatDate(cal.In(targetDate)) + " is not a working day")
	}

	previousStart := dbutils.ParseNullTime(inst.ScheduledStart)
	if err = o.db.DeleteTimeSlotsForInstance(ctx, instanceId); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !previousStart.IsZero() {
		if err = o.store.Recalculate(ctx, inst.StageId, previousStart); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	target := *inst
	target.StageId = stageId
	completion, err := o.paths.scheduleStage(ctx, &target, cal.WorkingDayStart(targetDate))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return completion.Start, completion.End, nil
}
