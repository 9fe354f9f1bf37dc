/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/database/client"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/timeutil"
	"github.com/printflow/scheduler/pkg/workflow"
)

// ConvergenceProcessor schedules the convergence path of a job. Its stages
// start no earlier than the later of the two part-path completions, snapped
// forward into working hours.
type ConvergenceProcessor struct {
	paths *PathProcessor
	store *capacity.Store
}

func NewConvergenceProcessor(db client.Interface, store *capacity.Store) *ConvergenceProcessor {
	return &ConvergenceProcessor{
		paths: NewPathProcessor(db, store),
		store: store,
	}
}

// Process snaps convergenceStart into a working window and then schedules the
// path like any other. A failed snap means the calendar offers no working day
// at all, which aborts the call.
func (c *ConvergenceProcessor) Process(ctx context.Context, path workflow.Path, convergenceStart time.Time) (*PathResult, error) {
	snapped, err := c.store.Calendar().SnapForward(convergenceStart)
	if err != nil {
		return nil, err
	}
	return c.paths.Process(ctx, path, snapped)
}

// ValidateConvergenceTiming rejects a convergence start that precedes either
// feeding path's completion. Zero path ends mean the path was absent.
func ValidateConvergenceTiming(convergenceStart, coverEnd, textEnd time.Time) error {
	if !coverEnd.IsZero() && convergenceStart.Before(coverEnd) {
		return commonerrors.NewInconsistency(fmt.Sprintf(
			"convergence start %s precedes cover path end %s",
			timeutil.FormatRFC3339(convergenceStart), timeutil.FormatRFC3339(coverEnd)))
	}
	if !textEnd.IsZero() && convergenceStart.Before(textEnd) {
		return commonerrors.NewInconsistency(fmt.Sprintf(
			"convergence start %s precedes text path end %s",
			timeutil.FormatRFC3339(convergenceStart), timeutil.FormatRFC3339(textEnd)))
	}
	return nil
}
