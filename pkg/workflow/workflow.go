/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package workflow derives the cover/text/convergence structure of a job from
// its persisted stage instances.
package workflow

import (
	"context"

	"github.com/printflow/scheduler/pkg/database/client"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

// Path names.
const (
	PathCover       = "cover"
	PathText        = "text"
	PathConvergence = "convergence"
)

// Path is one ordered lane of a job's workflow.
type Path struct {
	Name   string
	Stages []*client.StageInstance
}

func (p *Path) Empty() bool {
	return len(p.Stages) == 0
}

// TotalMinutes sums the estimated durations of the path's stages.
func (p *Path) TotalMinutes() int {
	total := 0
	for _, stage := range p.Stages {
		total += stage.DurationMinutes
	}
	return total
}

// Workflow is the analyzed shape of one job: two parallel part paths that
// converge into a shared tail.
type Workflow struct {
	JobId           string
	JobTableName    string
	CoverPath       Path
	TextPath        Path
	ConvergencePath Path
}

// Stage returns the workflow's instance with the given id, or nil.
func (w *Workflow) Stage(instanceId string) *client.StageInstance {
	for _, path := range []Path{w.CoverPath, w.TextPath, w.ConvergencePath} {
		for _, stage := range path.Stages {
			if stage.InstanceId == instanceId {
				return stage
			}
		}
	}
	return nil
}

// Analyzer reads stage instances and groups them into paths.
type Analyzer struct {
	db client.StageInstanceInterface
}

func NewAnalyzer(db client.StageInstanceInterface) *Analyzer {
	return &Analyzer{db: db}
}

// Analyze builds the workflow of a job. Stages assigned to the cover or text
// part form the parallel paths; everything else, including stages with no
// part assignment, schedules on the convergence path.
func (a *Analyzer) Analyze(ctx context.Context, jobId, jobTableName string) (*Workflow, error) {
	instances, err := a.db.ListStageInstances(ctx, jobId, jobTableName)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, commonerrors.NewWorkflowNotFound(jobId)
	}
	w := &Workflow{
		JobId:           jobId,
		JobTableName:    jobTableName,
		CoverPath:       Path{Name: PathCover},
		TextPath:        Path{Name: PathText},
		ConvergencePath: Path{Name: PathConvergence},
	}
	for _, inst := range instances {
		switch dbutils.ParseNullString(inst.PartAssignment) {
		case client.PartCover:
			w.CoverPath.Stages = append(w.CoverPath.Stages, inst)
		case client.PartText:
			w.TextPath.Stages = append(w.TextPath.Stages, inst)
		default:
			w.ConvergencePath.Stages = append(w.ConvergencePath.Stages, inst)
		}
	}
	return w, nil
}

// CanStageStart reports whether an instance is unblocked, and if not, which
// instance ids block it. A convergence stage waits for both part paths; a
// part stage waits for its earlier-ordered path siblings.
func (a *Analyzer) CanStageStart(w *Workflow, instanceId string) (bool, []string, error) {
	stage := w.Stage(instanceId)
	if stage == nil {
		return false, nil, commonerrors.NewNotFound(commonerrors.StageInstanceKind, instanceId)
	}
	var blockedBy []string
	onConvergence := dbutils.ParseNullString(stage.PartAssignment) != client.PartCover &&
		dbutils.ParseNullString(stage.PartAssignment) != client.PartText
	if onConvergence {
		for _, path := range []Path{w.CoverPath, w.TextPath} {
			for _, blocker := range path.Stages {
				if blocker.Status != client.StageCompleted {
					blockedBy = append(blockedBy, blocker.InstanceId)
				}
			}
		}
		blockedBy = append(blockedBy, incompletePredecessors(w.ConvergencePath, stage)...)
	} else {
		path := w.CoverPath
		if dbutils.ParseNullString(stage.PartAssignment) == client.PartText {
			path = w.TextPath
		}
		blockedBy = incompletePredecessors(path, stage)
	}
	return len(blockedBy) == 0, blockedBy, nil
}

func incompletePredecessors(path Path, stage *client.StageInstance) []string {
	var blockedBy []string
	for _, other := range path.Stages {
		if other.InstanceId == stage.InstanceId {
			continue
		}
		if other.StageOrder < stage.StageOrder && other.Status != client.StageCompleted {
			blockedBy = append(blockedBy, other.InstanceId)
		}
	}
	return blockedBy
}
