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
	TTimeSlot = "stage_time_slots"
)

var (
	insertTimeSlotFormat = `INSERT INTO ` + TTimeSlot + ` (%s) VALUES (%s)`
)

// InsertTimeSlot inserts one committed time slot.
func (c *Client) InsertTimeSlot(ctx context.Context, slot *StageTimeSlot) error {
	if slot == nil {
		return commonerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*slot, insertTimeSlotFormat, "id"), slot)
	if err != nil {
		klog.ErrorS(err, "failed to insert time slot", "slot", slot.SlotId, "stage", slot.StageId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// ListTimeSlotsForStageDate returns the slots of a stage on a day ordered by slot_start.
func (c *Client) ListTimeSlotsForStageDate(ctx context.Context, stageId string, date time.Time) ([]*StageTimeSlot, error) {
	if stageId == "" {
		return nil, commonerrors.NewBadRequest("stageId is empty")
	}
	query := sqrl.And{
		sqrl.Eq{"production_stage_id": stageId},
		sqrl.Expr("slot_date = ?::date", date),
	}
	return c.selectTimeSlots(ctx, query, []string{"slot_start " + ASC})
}

// ListTimeSlotsForStage returns every slot of a stage in insertion order.
func (c *Client) ListTimeSlotsForStage(ctx context.Context, stageId string) ([]*StageTimeSlot, error) {
	if stageId == "" {
		return nil, commonerrors.NewBadRequest("stageId is empty")
	}
	return c.selectTimeSlots(ctx, sqrl.Eq{"production_stage_id": stageId}, []string{"id " + ASC})
}

// ListTimeSlotsForInstances returns the slots of the given instances on a day.
func (c *Client) ListTimeSlotsForInstances(ctx context.Context, date time.Time, instanceIds []string) ([]*StageTimeSlot, error) {
	if len(instanceIds) == 0 {
		return nil, nil
	}
	query := sqrl.And{
		sqrl.Eq{"stage_instance_id": instanceIds},
		sqrl.Expr("slot_date = ?::date", date),
	}
	return c.selectTimeSlots(ctx, query, []string{"slot_start " + ASC, "id " + ASC})
}

// UpdateTimeSlotWindow rewrites the window of one slot.
func (c *Client) UpdateTimeSlotWindow(ctx context.Context, slotId string, date, start, end time.Time) error {
	if slotId == "" {
		return commonerrors.NewBadRequest("slotId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET slot_date=$1, slot_start=$2, slot_end=$3 WHERE slot_id=$4`, TTimeSlot)
	_, err = db.ExecContext(ctx, cmd, date, start, end, slotId)
	if err != nil {
		klog.ErrorS(err, "failed to update time slot window", "slot", slotId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// DeleteTimeSlotsForInstance removes every slot of one instance.
func (c *Client) DeleteTimeSlotsForInstance(ctx context.Context, instanceId string) error {
	if instanceId == "" {
		return commonerrors.NewBadRequest("instanceId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE stage_instance_id=$1`, TTimeSlot)
	_, err = db.ExecContext(ctx, cmd, instanceId)
	if err != nil {
		klog.ErrorS(err, "failed to delete time slots", "instance", instanceId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// selectTimeSlots retrieves time slots for internal use.
func (c *Client) selectTimeSlots(ctx context.Context, query sqrl.Sqlizer, orderBy []string) ([]*StageTimeSlot, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TTimeSlot)
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

	var slots []*StageTimeSlot
	if c.RequestTimeout > 0 {
		ctx2, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		err = db.SelectContext(ctx2, &slots, sql, args...)
	} else {
		err = db.SelectContext(ctx, &slots, sql, args...)
	}
	if err != nil {
		klog.ErrorS(err, "failed to select time slots", "sql", dbutils.CvtToSqlStr(query))
		return nil, commonerrors.NewPersistenceError(err.Error())
	}
	return slots, nil
}
