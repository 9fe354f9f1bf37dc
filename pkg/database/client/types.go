/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	DESC = "desc"
	ASC  = "asc"

	CreatedTime = "created_at"
)

// Stage instance lifecycle states.
const (
	StagePending   = "pending"
	StageActive    = "active"
	StageCompleted = "completed"
)

// Part assignments. Anything other than cover/text schedules on the
// convergence path.
const (
	PartCover = "cover"
	PartText  = "text"
	PartBoth  = "both"
)

// StageInstance is one production stage applied to one job; the scheduling unit.
type StageInstance struct {
	Id               int64          `db:"id"`
	InstanceId       string         `db:"instance_id"`
	JobId            string         `db:"job_id"`
	JobTableName     string         `db:"job_table_name"`
	StageId          string         `db:"production_stage_id"`
	StageName        sql.NullString `db:"stage_name"`
	StageOrder       int            `db:"stage_order"`
	PartAssignment   sql.NullString `db:"part_assignment"`
	DurationMinutes  int            `db:"estimated_duration_minutes"`
	Status           string         `db:"status"`
	ScheduledStart   pq.NullTime    `db:"scheduled_start_at"`
	ScheduledEnd     pq.NullTime    `db:"scheduled_end_at"`
	IsSplit          bool           `db:"is_split"`
	SplitSequence    int            `db:"split_sequence"`
	TotalSplits      int            `db:"total_splits"`
	ParentSplitId    sql.NullString `db:"parent_split_id"`
	UniqueStageKey   sql.NullString `db:"unique_stage_key"`
	ProofApprovedAt  pq.NullTime    `db:"proof_approved_at"`
	CreationTime     pq.NullTime    `db:"created_at"`
	UpdateTime       pq.NullTime    `db:"updated_at"`
}

// GetStageInstanceFieldTags returns the StageInstanceFieldTags value.
func GetStageInstanceFieldTags() map[string]string {
	s := StageInstance{}
	return getFieldTags(s)
}

// StageTimeSlot is one committed window of a stage instance on one working day.
// Split instances own one slot per day touched.
type StageTimeSlot struct {
	Id              int64       `db:"id"`
	SlotId          string      `db:"slot_id"`
	StageId         string      `db:"production_stage_id"`
	Date            time.Time   `db:"slot_date"`
	SlotStart       time.Time   `db:"slot_start"`
	SlotEnd         time.Time   `db:"slot_end"`
	DurationMinutes int         `db:"duration_minutes"`
	JobId           string      `db:"job_id"`
	InstanceId      string      `db:"stage_instance_id"`
	IsSplit         bool        `db:"is_split"`
	CreationTime    pq.NullTime `db:"created_at"`
}

// GetStageTimeSlotFieldTags returns the StageTimeSlotFieldTags value.
func GetStageTimeSlotFieldTags() map[string]string {
	s := StageTimeSlot{}
	return getFieldTags(s)
}

// StageCapacityRecord tracks the committed workload of one stage on one day.
type StageCapacityRecord struct {
	Id                 int64       `db:"id"`
	StageId            string      `db:"production_stage_id"`
	Date               time.Time   `db:"capacity_date"`
	CommittedMinutes   int         `db:"committed_minutes"`
	AvailableMinutes   int         `db:"available_minutes"`
	QueueLengthMinutes int         `db:"queue_length_minutes"`
	QueueEndsAt        pq.NullTime `db:"queue_ends_at"`
	PendingJobsCount   int         `db:"pending_jobs_count"`
	ActiveJobsCount    int         `db:"active_jobs_count"`
	CalculatedAt       pq.NullTime `db:"calculated_at"`
}

// GetStageCapacityRecordFieldTags returns the StageCapacityRecordFieldTags value.
func GetStageCapacityRecordFieldTags() map[string]string {
	s := StageCapacityRecord{}
	return getFieldTags(s)
}

// ProductionStage is a configured production step with a queue and capacity.
type ProductionStage struct {
	Id                  int64           `db:"id"`
	StageId             string          `db:"stage_id"`
	Name                string          `db:"name"`
	RunningSpeedPerHour sql.NullFloat64 `db:"running_speed_per_hour"`
	MakeReadyMinutes    sql.NullInt64   `db:"make_ready_minutes"`
	StageGroupId        sql.NullString  `db:"stage_group_id"`
	ParallelEnabled     bool            `db:"parallel_enabled"`
	IsActive            bool            `db:"is_active"`
}

// GetProductionStageFieldTags returns the ProductionStageFieldTags value.
func GetProductionStageFieldTags() map[string]string {
	s := ProductionStage{}
	return getFieldTags(s)
}

// ProductionJob is the job header row shared by every storage partition.
type ProductionJob struct {
	Id                int64          `db:"id"`
	JobId             string         `db:"job_id"`
	WorkOrderNumber   string         `db:"work_order_number"`
	TableName         string         `db:"job_table_name"`
	CategoryId        sql.NullString `db:"category_id"`
	Status            string         `db:"status"`
	DueDate           pq.NullTime    `db:"due_date"`
	TentativeDueDate  pq.NullTime    `db:"tentative_due_date"`
	ProofApprovedAt   pq.NullTime    `db:"proof_approved_at"`
	HasCustomWorkflow bool           `db:"has_custom_workflow"`
	IsExpedited       bool           `db:"is_expedited"`
	CreationTime      pq.NullTime    `db:"created_at"`
}

// GetProductionJobFieldTags returns the ProductionJobFieldTags value.
func GetProductionJobFieldTags() map[string]string {
	j := ProductionJob{}
	return getFieldTags(j)
}

// ShiftSchedule is the per-weekday working pattern. Served through gorm.
type ShiftSchedule struct {
	Id             int64  `gorm:"column:id;primaryKey"`
	DayOfWeek      int    `gorm:"column:day_of_week"`
	ShiftStartTime string `gorm:"column:shift_start_time"`
	ShiftEndTime   string `gorm:"column:shift_end_time"`
	IsWorkingDay   bool   `gorm:"column:is_working_day"`
	IsActive       bool   `gorm:"column:is_active"`
}

// TableName implements the gorm naming interface.
func (ShiftSchedule) TableName() string { return "shift_schedules" }

// PublicHoliday marks a non-working calendar date. Served through gorm.
type PublicHoliday struct {
	Id       int64     `gorm:"column:id;primaryKey"`
	Date     time.Time `gorm:"column:holiday_date"`
	Name     string    `gorm:"column:name"`
	IsActive bool      `gorm:"column:is_active"`
}

// TableName implements the gorm naming interface.
func (PublicHoliday) TableName() string { return "public_holidays" }

// AppSetting is a key/value row holding working-hours overrides. Served
// through gorm.
type AppSetting struct {
	Id           int64  `gorm:"column:id;primaryKey"`
	SettingKey   string `gorm:"column:setting_key"`
	SettingValue string `gorm:"column:setting_value"`
}

// TableName implements the gorm naming interface.
func (AppSetting) TableName() string { return "app_settings" }

// getFieldTags retrieves FieldTags for internal use.
func getFieldTags(obj interface{}) map[string]string {
	result := make(map[string]string)
	t := reflect.TypeOf(obj)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		result[strings.ToLower(field.Name)] = field.Tag.Get("db")
	}
	return result
}

// generateCommand generates SQL command string using reflection
// Iterates through struct fields and builds column and value lists
// Skips fields with specified ignoreTag
// Returns formatted SQL command with columns and values
func generateCommand(obj interface{}, format, ignoreTag string) string {
	t := reflect.TypeOf(obj)
	columns := make([]string, 0, t.NumField())
	values := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("db")
		if tag == ignoreTag {
			continue
		}
		columns = append(columns, tag)
		values = append(values, fmt.Sprintf(":%s", tag))
	}
	cmd := fmt.Sprintf(format, strings.Join(columns, ", "), strings.Join(values, ", "))
	return cmd
}

// GetFieldTag returns the FieldTag value.
func GetFieldTag(tags map[string]string, name string) string {
	name = strings.ToLower(name)
	return tags[name]
}
