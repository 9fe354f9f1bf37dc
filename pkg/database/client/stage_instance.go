/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"fmt"
	"time"

	sqrl "github.com/Masterminds/squirrel"
	"k8s.io/klog/v2"

	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

const (
	TStageInstance = "job_stage_instances"
)

var (
	insertStageInstanceFormat = `INSERT INTO ` + TStageInstance + ` (%s) VALUES (%s)`
)

// ListStageInstances returns every stage instance of a job ordered by
// stage_order then split_sequence.
func (c *Client) ListStageInstances(ctx context.Context, jobId, jobTableName string) ([]*StageInstance, error) {
	if jobId == "" {
		return nil, commonerrors.NewBadRequest("jobId is empty")
	}
	query := sqrl.And{
		sqrl.Eq{"job_id": jobId},
		sqrl.Eq{"job_table_name": jobTableName},
	}
	return c.selectStageInstances(ctx, query, []string{"stage_order " + ASC, "split_sequence " + ASC})
}

// GetStageInstance retrieves a stage instance by its instance id.
func (c *Client) GetStageInstance(ctx context.Context, instanceId string) (*StageInstance, error) {
	if instanceId == "" {
		return nil, commonerrors.NewBadRequest("instanceId is empty")
	}
	instances, err := c.selectStageInstances(ctx, sqrl.Eq{"instance_id": instanceId}, nil)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, commonerrors.NewNotFound(commonerrors.StageInstanceKind, instanceId)
	}
	return instances[0], nil
}

// ListStageInstancesByIds retrieves the given instances; missing ids are not an error.
func (c *Client) ListStageInstancesByIds(ctx context.Context, instanceIds []string) ([]*StageInstance, error) {
	if len(instanceIds) == 0 {
		return nil, nil
	}
	return c.selectStageInstances(ctx, sqrl.Eq{"instance_id": instanceIds},
		[]string{"stage_order " + ASC, "split_sequence " + ASC})
}

// InsertStageInstance inserts a new stage instance row.
func (c *Client) InsertStageInstance(ctx context.Context, inst *StageInstance) error {
	if inst == nil {
		return commonerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*inst, insertStageInstanceFormat, "id"), inst)
	if err != nil {
		klog.ErrorS(err, "failed to insert stage instance", "instance", inst.InstanceId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// UpdateStageInstanceWindow persists the scheduled start/end of one instance.
func (c *Client) UpdateStageInstanceWindow(ctx context.Context, instanceId string, start, end time.Time) error {
	if instanceId == "" {
		return commonerrors.NewBadRequest("instanceId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET scheduled_start_at=$1, scheduled_end_at=$2, updated_at=$3 WHERE instance_id=$4`,
		TStageInstance)
	_, err = db.ExecContext(ctx, cmd, start, end, time.Now().UTC(), instanceId)
	if err != nil {
		klog.ErrorS(err, "failed to update stage instance window", "instance", instanceId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// MarkStageInstanceSplit records split-chain metadata on an instance.
func (c *Client) MarkStageInstanceSplit(ctx context.Context, instanceId string, splitSequence, totalSplits int, parentSplitId, uniqueStageKey string) error {
	if instanceId == "" {
		return commonerrors.NewBadRequest("instanceId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s
		SET is_split=true,
		    split_sequence=$1,
		    total_splits=$2,
		    parent_split_id=$3,
		    unique_stage_key=$4,
		    updated_at=$5
		WHERE instance_id=$6`, TStageInstance)
	_, err = db.ExecContext(ctx, cmd, splitSequence, totalSplits,
		dbutils.NullString(parentSplitId), dbutils.NullString(uniqueStageKey), time.Now().UTC(), instanceId)
	if err != nil {
		klog.ErrorS(err, "failed to mark stage instance split", "instance", instanceId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// CountStageInstances returns the total count of stage instances matching the criteria.
func (c *Client) CountStageInstances(ctx context.Context, query sqrl.Sqlizer) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	sql, args, err := sqrl.Select("COUNT(*)").PlaceholderFormat(sqrl.Dollar).From(TStageInstance).Where(query).ToSql()
	if err != nil {
		return 0, err
	}
	var cnt int
	err = db.GetContext(ctx, &cnt, sql, args...)
	return cnt, err
}

// selectStageInstances retrieves stage instances for internal use.
func (c *Client) selectStageInstances(ctx context.Context, query sqrl.Sqlizer, orderBy []string) ([]*StageInstance, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TStageInstance)
	if query != nil {
		builder = builder.Where(query)
	}
	for _, order := range orderBy {
		builder = builder.OrderBy(order)
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var instances []*StageInstance
	if c.RequestTimeout > 0 {
		ctx2, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		err = db.SelectContext(ctx2, &instances, sql, args...)
	} else {
		err = db.SelectContext(ctx, &instances, sql, args...)
	}
	if err != nil {
		klog.ErrorS(err, "failed to select stage instances", "sql", dbutils.CvtToSqlStr(query))
		return nil, commonerrors.NewPersistenceError(err.Error())
	}
	return instances, nil
}
