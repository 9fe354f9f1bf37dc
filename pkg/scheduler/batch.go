/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"sync"

	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/database/client"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

// batchMu serializes batch recomputes process-wide. A recompute resets the
// capacity baseline, so two concurrent runs would corrupt each other.
var batchMu sync.Mutex

// BatchRecomputer rebuilds the schedule of a job set from a clean baseline.
type BatchRecomputer struct {
	db    client.Interface
	store *capacity.Store
	orch  *Orchestrator
}

func NewBatchRecomputer(db client.Interface, store *capacity.Store) *BatchRecomputer {
	return &BatchRecomputer{
		db:    db,
		store: store,
		orch:  NewOrchestrator(db, store),
	}
}

// RecalculateAll clears all committed slots and capacity, then reschedules
// the given jobs, or every non-completed job when jobIds is empty, strictly
// in submission order. A failing job is recorded and the batch continues,
// except for run-wide fatal conditions which stop it.
func (b *BatchRecomputer) RecalculateAll(ctx context.Context, jobIds []string) (*BatchResult, error) {
	batchMu.Lock()
	defer batchMu.Unlock()

	if err := b.store.Reset(ctx); err != nil {
		return nil, err
	}

	var jobs []*client.ProductionJob
	var err error
	if len(jobIds) > 0 {
		jobs, err = b.db.ListJobsByIds(ctx, jobIds)
	} else {
		jobs, err = b.db.ListActiveJobs(ctx)
	}
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		jobResult, err := b.orch.ScheduleJob(ctx, job.JobId, job.TableName)
		if err != nil {
			// no working day and capacity inconsistency are run-wide
			// conditions: every remaining job would hit them too
			if commonerrors.IsNoWorkingDayFound(err) || commonerrors.IsInconsistency(err) || ctx.Err() != nil {
				klog.ErrorS(err, "batch recompute aborted", "job", job.JobId)
				return result, err
			}
			klog.ErrorS(err, "batch recompute failed for job, continuing", "job", job.JobId)
			jobResult = &SchedulingResult{JobId: job.JobId, Errors: []string{err.Error()}}
		}
		if jobResult.Success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, jobResult)
	}
	klog.InfoS("batch recompute finished", "jobs", len(jobs),
		"successful", result.Successful, "failed", result.Failed)
	return result, nil
}
