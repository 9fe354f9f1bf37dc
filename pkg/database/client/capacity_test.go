/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"testing"
	"time"

	"gotest.tools/assert"
)

func TestUpsertCapacityRecordNilInput(t *testing.T) {
	client := &Client{}

	err := client.UpsertCapacityRecord(context.Background(), nil)
	assert.ErrorContains(t, err, "the input is empty")
}

func TestGetCapacityRecordEmptyStage(t *testing.T) {
	client := &Client{}

	_, err := client.GetCapacityRecord(context.Background(), "", time.Now())
	assert.ErrorContains(t, err, "stageId is empty")
}

func TestResetCapacityNoDBConnection(t *testing.T) {
	client := &Client{}

	err := client.ResetCapacity(context.Background())
	assert.ErrorContains(t, err, "db has not been initialized")
}

func TestTCapacityConstant(t *testing.T) {
	assert.Equal(t, TCapacity, "stage_workload_tracking")
}

func TestGetStageCapacityRecordFieldTags(t *testing.T) {
	tags := GetStageCapacityRecordFieldTags()

	assert.Equal(t, tags["stageid"], "production_stage_id")
	assert.Equal(t, tags["date"], "capacity_date")
	assert.Equal(t, tags["committedminutes"], "committed_minutes")
	assert.Equal(t, tags["availableminutes"], "available_minutes")
	assert.Equal(t, tags["queuelengthminutes"], "queue_length_minutes")
	assert.Equal(t, tags["queueendsat"], "queue_ends_at")
	assert.Equal(t, tags["pendingjobscount"], "pending_jobs_count")
	assert.Equal(t, tags["activejobscount"], "active_jobs_count")
	assert.Equal(t, tags["calculatedat"], "calculated_at")
}

func TestTTimeSlotConstant(t *testing.T) {
	assert.Equal(t, TTimeSlot, "stage_time_slots")
}

func TestGetStageTimeSlotFieldTags(t *testing.T) {
	tags := GetStageTimeSlotFieldTags()

	assert.Equal(t, tags["slotid"], "slot_id")
	assert.Equal(t, tags["stageid"], "production_stage_id")
	assert.Equal(t, tags["date"], "slot_date")
	assert.Equal(t, tags["slotstart"], "slot_start")
	assert.Equal(t, tags["slotend"], "slot_end")
	assert.Equal(t, tags["durationminutes"], "duration_minutes")
	assert.Equal(t, tags["jobid"], "job_id")
	assert.Equal(t, tags["instanceid"], "stage_instance_id")
}
