/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package workflow

import (
	"context"
	"testing"

	"gotest.tools/assert"

	"github.com/printflow/scheduler/pkg/database/client"
	"github.com/printflow/scheduler/pkg/database/client/fake"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

func instance(id, job, part string, order, minutes int, status string) *client.StageInstance {
	return &client.StageInstance{
		InstanceId:      id,
		JobId:           job,
		JobTableName:    "production_jobs",
		StageId:         "stage-" + id,
		StageOrder:      order,
		PartAssignment:  dbutils.NullString(part),
		DurationMinutes: minutes,
		Status:          status,
	}
}

func bookletFixture(db *fake.Client) {
	db.Instances = []*client.StageInstance{
		instance("cover-print", "job-1", client.PartCover, 1, 120, client.StagePending),
		instance("cover-lam", "job-1", client.PartCover, 2, 60, client.StagePending),
		instance("text-print", "job-1", client.PartText, 1, 180, client.StagePending),
		instance("gather", "job-1", client.PartBoth, 3, 60, client.StagePending),
		instance("trim", "job-1", "", 4, 30, client.StagePending),
	}
}

func TestAnalyzeGroupsPaths(t *testing.T) {
	db := fake.NewClient()
	bookletFixture(db)
	analyzer := NewAnalyzer(db)

	w, err := analyzer.Analyze(context.Background(), "job-1", "production_jobs")
	assert.NilError(t, err)

	assert.Equal(t, len(w.CoverPath.Stages), 2)
	assert.Equal(t, len(w.TextPath.Stages), 1)
	// "both" and unassigned stages both converge
	assert.Equal(t, len(w.ConvergencePath.Stages), 2)
	assert.Equal(t, w.CoverPath.TotalMinutes(), 180)
	assert.Equal(t, w.TextPath.TotalMinutes(), 180)
	assert.Equal(t, w.ConvergencePath.TotalMinutes(), 90)
}

func TestAnalyzeNoStages(t *testing.T) {
	analyzer := NewAnalyzer(fake.NewClient())

	_, err := analyzer.Analyze(context.Background(), "job-unknown", "production_jobs")
	assert.Assert(t, commonerrors.IsWorkflowNotFound(err))
}

func TestCanStageStartConvergenceBlockedByBothPaths(t *testing.T) {
	db := fake.NewClient()
	bookletFixture(db)
	analyzer := NewAnalyzer(db)
	w, err := analyzer.Analyze(context.Background(), "job-1", "production_jobs")
	assert.NilError(t, err)

	canStart, blockedBy, err := analyzer.CanStageStart(w, "gather")
	assert.NilError(t, err)
	assert.Assert(t, !canStart)
	assert.Equal(t, len(blockedBy), 3)
}

func TestCanStageStartConvergenceUnblocked(t *testing.T) {
	db := fake.NewClient()
	bookletFixture(db)
	for _, inst := range db.Instances {
		if inst.InstanceId != "gather" && inst.InstanceId != "trim" {
			inst.Status = client.StageCompleted
		}
	}
	analyzer := NewAnalyzer(db)
	w, err := analyzer.Analyze(context.Background(), "job-1", "production_jobs")
	assert.NilError(t, err)

	canStart, blockedBy, err := analyzer.CanStageStart(w, "gather")
	assert.NilError(t, err)
	assert.Assert(t, canStart)
	assert.Equal(t, len(blockedBy), 0)

	// trim additionally waits for gather
	canStart, blockedBy, err = analyzer.CanStageStart(w, "trim")
	assert.NilError(t, err)
	assert.Assert(t, !canStart)
	assert.DeepEqual(t, blockedBy, []string{"gather"})
}

func TestCanStageStartWithinPath(t *testing.T) {
	db := fake.NewClient()
	bookletFixture(db)
	analyzer := NewAnalyzer(db)
	w, err := analyzer.Analyze(context.Background(), "job-1", "production_jobs")
	assert.NilError(t, err)

	// first cover stage has no predecessors
	canStart, _, err := analyzer.CanStageStart(w, "cover-print")
	assert.NilError(t, err)
	assert.Assert(t, canStart)

	// second cover stage waits for the first
	canStart, blockedBy, err := analyzer.CanStageStart(w, "cover-lam")
	assert.NilError(t, err)
	assert.Assert(t, !canStart)
	assert.DeepEqual(t, blockedBy, []string{"cover-print"})
}

func TestCanStageStartUnknownInstance(t *testing.T) {
	db := fake.NewClient()
	bookletFixture(db)
	analyzer := NewAnalyzer(db)
	w, err := analyzer.Analyze(context.Background(), "job-1", "production_jobs")
	assert.NilError(t, err)

	_, _, err = analyzer.CanStageStart(w, "nope")
	assert.Assert(t, commonerrors.IsNotFound(err))
}
