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

	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

const (
	TCapacity = "stage_workload_tracking"
)

var (
	insertCapacityFormat = `INSERT INTO ` + TCapacity + ` (%s) VALUES (%s)`
	updateCapacityCmd    = fmt.Sprintf(`UPDATE %s
		SET committed_minutes = :committed_minutes,
		    available_minutes = :available_minutes,
		    queue_length_minutes = :queue_length_minutes,
		    queue_ends_at = :queue_ends_at,
		    pending_jobs_count = :pending_jobs_count,
		    active_jobs_count = :active_jobs_count,
		    calculated_at = :calculated_at
		WHERE production_stage_id = :production_stage_id AND capacity_date = :capacity_date`, TCapacity)
)

// GetCapacityRecord returns the capacity record for a stage/day, or nil when
// none exists yet. Records are created lazily on first commit.
func (c *Client) GetCapacityRecord(ctx context.Context, stageId string, date time.Time) (*StageCapacityRecord, error) {
	if stageId == "" {
		return nil, commonerrors.NewBadRequest("stageId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	query := sqrl.And{
		sqrl.Eq{"production_stage_id": stageId},
		sqrl.Expr("capacity_date = ?::date", date),
	}
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TCapacity).Where(query).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	var records []*StageCapacityRecord
	if err = db.SelectContext(ctx, &records, sql, args...); err != nil {
		klog.ErrorS(err, "failed to select capacity record", "stage", stageId)
		return nil, commonerrors.NewPersistenceError(err.Error())
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// UpsertCapacityRecord inserts or updates the record for (stage, day).
func (c *Client) UpsertCapacityRecord(ctx context.Context, record *StageCapacityRecord) error {
	if record == nil {
		return commonerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	existing, err := c.GetCapacityRecord(ctx, record.StageId, record.Date)
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = db.NamedExecContext(ctx, updateCapacityCmd, record)
	} else {
		_, err = db.NamedExecContext(ctx, generateCommand(*record, insertCapacityFormat, "id"), record)
	}
	if err != nil {
		klog.ErrorS(err, "failed to upsert capacity record", "stage", record.StageId, "date", record.Date)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// ResetCapacity clears stage_time_slots and stage_workload_tracking in one
// transaction. Used by the batch recompute only.
func (c *Client) ResetCapacity(ctx context.Context) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return commonerrors.NewPersistenceError(err.Error())
	}
	for _, table := range []string{TTimeSlot, TCapacity} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			_ = tx.Rollback()
			klog.ErrorS(err, "failed to reset capacity", "table", table)
			return commonerrors.NewPersistenceError(err.Error())
		}
	}
	if err = tx.Commit(); err != nil {
		return commonerrors.NewPersistenceError(err.Error())
	}
	klog.Info("capacity baseline cleared")
	return nil
}
