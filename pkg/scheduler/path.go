/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/database/client"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	"github.com/printflow/scheduler/pkg/splitter"
	"github.com/printflow/scheduler/pkg/workflow"
)

// PathProcessor schedules the stages of one linear path sequentially: each
// stage's earliest start is the previous stage's end.
type PathProcessor struct {
	db    client.Interface
	store *capacity.Store
	split *splitter.Splitter
}

func NewPathProcessor(db client.Interface, store *capacity.Store) *PathProcessor {
	return &PathProcessor{
		db:    db,
		store: store,
		split: splitter.New(store.Calendar()),
	}
}

// Process schedules every stage of the path starting from startAt. Errors on
// a single stage are recorded and the path continues; the completion time
// only advances on committed stages. A calendar without working days, a
// capacity readback mismatch or a cancelled context aborts the whole call:
// these are not per-stage conditions and retrying the next stage would hit
// them again or race an external writer.
func (p *PathProcessor) Process(ctx context.Context, path workflow.Path, startAt time.Time) (*PathResult, error) {
	result := &PathResult{
		PathName:           path.Name,
		PathCompletionTime: startAt,
		TotalMinutes:       path.TotalMinutes(),
	}
	if path.Empty() {
		return result, nil
	}
	lastEnd := startAt
	for _, stage := range path.Stages {
		if err := ctx.Err(); err != nil {
			result.PathCompletionTime = lastEnd
			return result, err
		}
		completion, err := p.scheduleStage(ctx, stage, lastEnd)
		if err != nil {
			if commonerrors.IsNoWorkingDayFound(err) || commonerrors.IsInconsistency(err) {
				result.PathCompletionTime = lastEnd
				return result, err
			}
			klog.ErrorS(err, "failed to schedule stage, continuing path",
				"job", stage.JobId, "instance", stage.InstanceId, "path", path.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("stage %s: %v", stage.InstanceId, err))
			continue
		}
		lastEnd = completion.End
		result.StageCompletions = append(result.StageCompletions, completion)
	}
	result.PathCompletionTime = lastEnd
	return result, nil
}

// scheduleStage places one stage no earlier than earliest, splitting across
// working days when the duration overflows the day.
func (p *PathProcessor) scheduleStage(ctx context.Context, stage *client.StageInstance, earliest time.Time) (StageCompletion, error) {
	completion := StageCompletion{
		InstanceId: stage.InstanceId,
		StageId:    stage.StageId,
		StageName:  dbutils.ParseNullString(stage.StageName),
	}
	if !p.split.NeedsSplitting(earliest, stage.DurationMinutes) {
		start, end, err := p.store.ScheduleSimple(ctx, stage.InstanceId, stage.JobId, stage.StageId, stage.DurationMinutes, earliest)
		if err != nil {
			return completion, err
		}
		if err = p.db.UpdateStageInstanceWindow(ctx, stage.InstanceId, start, end); err != nil {
			return completion, err
		}
		completion.Start, completion.End = start, end
		return completion, nil
	}

	parts, err := p.split.Split(earliest, stage.DurationMinutes)
	if err != nil {
		return completion, err
	}
	instanceIds, err := p.materializeSplitChain(ctx, stage, parts)
	if err != nil {
		return completion, err
	}
	if err = p.store.CommitSplit(ctx, stage.JobId, stage.StageId, instanceIds, parts); err != nil {
		return completion, err
	}
	completion.Start = parts[0].Start
	completion.End = parts[len(parts)-1].End
	completion.WasSplit = len(parts) > 1
	return completion, nil
}

// materializeSplitChain persists the split metadata: the original instance
// becomes part 1 and each further part gets a new continuation instance
// carrying the original as parent.
func (p *PathProcessor) materializeSplitChain(ctx context.Context, stage *client.StageInstance, parts []splitter.Split) ([]string, error) {
	total := len(parts)
	instanceIds := make([]string, total)
	instanceIds[0] = stage.InstanceId

	if total > 1 {
		if err := p.db.MarkStageInstanceSplit(ctx, stage.InstanceId, 1, total, "",
			uniqueStageKey(stage.JobId, stage.StageId, 1)); err != nil {
			return nil, err
		}
	}
	if err := p.db.UpdateStageInstanceWindow(ctx, stage.InstanceId, parts[0].Start, parts[0].End); err != nil {
		return nil, err
	}

	for i := 1; i < total; i++ {
		part := parts[i]
		continuation := &client.StageInstance{
			InstanceId:      uuid.NewString(),
			JobId:           stage.JobId,
			JobTableName:    stage.JobTableName,
			StageId:         stage.StageId,
			StageName:       stage.StageName,
			StageOrder:      stage.StageOrder,
			PartAssignment:  stage.PartAssignment,
			DurationMinutes: part.Minutes,
			Status:          client.StagePending,
			ScheduledStart:  dbutils.NullTime(part.Start),
			ScheduledEnd:    dbutils.NullTime(part.End),
			IsSplit:         true,
			SplitSequence:   part.Sequence,
			TotalSplits:     total,
			ParentSplitId:   dbutils.NullString(stage.InstanceId),
			UniqueStageKey:  dbutils.NullString(uniqueStageKey(stage.JobId, stage.StageId, part.Sequence)),
		}
		if err := p.db.InsertStageInstance(ctx, continuation); err != nil {
			return nil, err
		}
		instanceIds[i] = continuation.InstanceId
	}
	return instanceIds, nil
}

func uniqueStageKey(jobId, stageId string, sequence int) string {
	return fmt.Sprintf("%s-%s-%d", jobId, stageId, sequence)
}
