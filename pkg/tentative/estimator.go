/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package tentative projects completion dates for jobs still waiting on proof
// approval. The projection reads real queue tails but never commits slots.
package tentative

import (
	"context"
	"time"

	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/config"
	"github.com/printflow/scheduler/pkg/database/client"
	"github.com/printflow/scheduler/pkg/splitter"
	"github.com/printflow/scheduler/pkg/timeutil"
	"github.com/printflow/scheduler/pkg/workflow"
)

// Estimate is one job's projected due date.
type Estimate struct {
	JobId            string    `json:"jobId"`
	TentativeDueDate time.Time `json:"tentativeDueDate"`
}

// Estimator dry-runs the scheduling of unapproved jobs.
type Estimator struct {
	db       client.Interface
	store    *capacity.Store
	split    *splitter.Splitter
	analyzer *workflow.Analyzer
}

func NewEstimator(db client.Interface, store *capacity.Store) *Estimator {
	return &Estimator{
		db:       db,
		store:    store,
		split:    splitter.New(store.Calendar()),
		analyzer: workflow.NewAnalyzer(db),
	}
}

// RecalcTentativeDueDates projects and persists a tentative due date for
// every job that has a pending proof stage and no approval yet. A job that
// fails to project is logged and skipped.
func (e *Estimator) RecalcTentativeDueDates(ctx context.Context) ([]Estimate, error) {
	jobs, err := e.db.ListJobsAwaitingProof(ctx)
	if err != nil {
		return nil, err
	}
	var estimates []Estimate
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return estimates, err
		}
		due, err := e.EstimateJob(ctx, job.JobId, job.TableName)
		if err != nil {
			klog.ErrorS(err, "failed to project tentative due date, skipping job", "job", job.JobId)
			continue
		}
		if err = e.db.SetJobTentativeDueDate(ctx, job.JobId, due); err != nil {
			klog.ErrorS(err, "failed to persist tentative due date", "job", job.JobId)
			continue
		}
		estimates = append(estimates, Estimate{JobId: job.JobId, TentativeDueDate: due})
	}
	return estimates, nil
}

// EstimateJob dry-runs one job's workflow against the current queues and
// returns the projected due date: the simulated completion plus the SLA
// buffer in working days, truncated to a calendar date.
func (e *Estimator) EstimateJob(ctx context.Context, jobId, jobTableName string) (time.Time, error) {
	w, err := e.analyzer.Analyze(ctx, jobId, jobTableName)
	if err != nil {
		return time.Time{}, err
	}
	now := e.store.Now()
	// simulated queue tails per stage, seeded from real reads on first touch
	sim := map[string]time.Time{}

	coverEnd, err := e.simulatePath(ctx, sim, w.CoverPath, now)
	if err != nil {
		return time.Time{}, err
	}
	textEnd, err := e.simulatePath(ctx, sim, w.TextPath, now)
	if err != nil {
		return time.Time{}, err
	}
	completion := timeutil.MaxTime(coverEnd, textEnd)
	if completion.IsZero() {
		completion = now
	}
	if !w.ConvergencePath.Empty() {
		snapped, err := e.store.Calendar().SnapForward(completion)
		if err != nil {
			return time.Time{}, err
		}
		if completion, err = e.simulatePath(ctx, sim, w.ConvergencePath, snapped); err != nil {
			return time.Time{}, err
		}
	}

	buffer := config.GetSlaBufferWorkingDays() * e.store.Calendar().DailyWorkingMinutes()
	if buffer > 0 {
		parts, err := e.split.Split(completion, buffer)
		if err != nil {
			return time.Time{}, err
		}
		completion = parts[len(parts)-1].End
	}
	return timeutil.StartOfDay(e.store.Calendar().In(completion)), nil
}

// simulatePath walks one path sequentially without committing anything.
// Returns the zero time for empty paths.
func (e *Estimator) simulatePath(ctx context.Context, sim map[string]time.Time, path workflow.Path, startAt time.Time) (time.Time, error) {
	if path.Empty() {
		return time.Time{}, nil
	}
	lastEnd := startAt
	for _, stage := range path.Stages {
		tail, err := e.queueTail(ctx, sim, stage.StageId)
		if err != nil {
			return time.Time{}, err
		}
		earliest := timeutil.MaxTime(tail, lastEnd)
		parts, err := e.split.Split(earliest, stage.DurationMinutes)
		if err != nil {
			return time.Time{}, err
		}
		lastEnd = parts[len(parts)-1].End
		sim[stage.StageId] = lastEnd
	}
	return lastEnd, nil
}

func (e *Estimator) queueTail(ctx context.Context, sim map[string]time.Time, stageId string) (time.Time, error) {
	if tail, ok := sim[stageId]; ok {
		return tail, nil
	}
	day, err := e.store.Calendar().SnapForward(e.store.Now())
	if err != nil {
		return time.Time{}, err
	}
	tail, err := e.store.QueueEndTime(ctx, stageId, day)
	if err != nil {
		return time.Time{}, err
	}
	sim[stageId] = tail
	return tail, nil
}
