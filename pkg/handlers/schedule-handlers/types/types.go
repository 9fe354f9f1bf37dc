/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package types defines the request and response bodies of the scheduling API.
package types

import (
	"time"

	"github.com/printflow/scheduler/pkg/reorder"
	"github.com/printflow/scheduler/pkg/scheduler"
	"github.com/printflow/scheduler/pkg/tentative"
)

// Response is the common success envelope.
type Response struct {
	Ok bool `json:"ok"`
}

// ScheduleJobRequest asks for one job to be scheduled.
type ScheduleJobRequest struct {
	JobId        string `json:"jobId" binding:"required"`
	JobTableName string `json:"jobTableName,omitempty"`
}

// ScheduleJobResponse carries the whole-job scheduling outcome.
type ScheduleJobResponse struct {
	Response
	scheduler.SchedulingResult
}

// RecalculateAllRequest limits a batch recompute to the given jobs; an empty
// list recomputes every active job.
type RecalculateAllRequest struct {
	JobIds []string `json:"jobIds,omitempty"`
}

// RecalculateAllResponse carries the batch outcome.
type RecalculateAllResponse struct {
	Response
	scheduler.BatchResult
}

// ReorderDayRequest rewrites the order of one day's stages. Date is a
// calendar date (2006-01-02); ShiftStart and ShiftEnd are wall clocks (15:04).
type ReorderDayRequest struct {
	Date             string   `json:"date" binding:"required"`
	StageInstanceIds []string `json:"stageInstanceIds" binding:"required"`
	ShiftStart       string   `json:"shiftStart" binding:"required"`
	ShiftEnd         string   `json:"shiftEnd,omitempty"`
	DayWideReorder   bool     `json:"dayWideReorder,omitempty"`
	GroupingType     string   `json:"groupingType,omitempty"`
}

// ReorderDayResponse lists the rewritten stage windows.
type ReorderDayResponse struct {
	Response
	UpdatedStages []reorder.UpdatedStage `json:"updatedStages"`
}

// RecalcTentativeResponse lists the projected due dates.
type RecalcTentativeResponse struct {
	Response
	Count   int                  `json:"count"`
	Results []tentative.Estimate `json:"results"`
}

// ManualRescheduleRequest moves one stage instance to a target working day.
type ManualRescheduleRequest struct {
	StageInstanceId string `json:"stageInstanceId" binding:"required"`
	TargetDate      string `json:"targetDate" binding:"required"`
	StageId         string `json:"stageId,omitempty"`
}

// ManualRescheduleResponse carries the stage's new window.
type ManualRescheduleResponse struct {
	Response
	ScheduledStart time.Time `json:"scheduledStart"`
	ScheduledEnd   time.Time `json:"scheduledEnd"`
}

// SlotView is one committed slot in queue inspection responses.
type SlotView struct {
	SlotId          string    `json:"slotId"`
	JobId           string    `json:"jobId"`
	StageInstanceId string    `json:"stageInstanceId"`
	SlotStart       time.Time `json:"slotStart"`
	SlotEnd         time.Time `json:"slotEnd"`
	DurationMinutes int       `json:"durationMinutes"`
	IsSplit         bool      `json:"isSplit"`
}

// StageQueueResponse describes one stage's queue on one day.
type StageQueueResponse struct {
	Response
	StageId          string     `json:"stageId"`
	Date             string     `json:"date"`
	QueueEndsAt      time.Time  `json:"queueEndsAt"`
	CommittedMinutes int        `json:"committedMinutes"`
	AvailableMinutes int        `json:"availableMinutes"`
	Slots            []SlotView `json:"slots"`
}

// StageWindowView is one instance's window in job schedule responses.
type StageWindowView struct {
	StageInstanceId string     `json:"stageInstanceId"`
	StageId         string     `json:"stageId"`
	StageName       string     `json:"stageName,omitempty"`
	StageOrder      int        `json:"stageOrder"`
	PartAssignment  string     `json:"partAssignment,omitempty"`
	Status          string     `json:"status"`
	ScheduledStart  *time.Time `json:"scheduledStart,omitempty"`
	ScheduledEnd    *time.Time `json:"scheduledEnd,omitempty"`
	IsSplit         bool       `json:"isSplit"`
	SplitSequence   int        `json:"splitSequence,omitempty"`
}

// JobScheduleResponse lists the scheduled windows of one job.
type JobScheduleResponse struct {
	Response
	JobId  string            `json:"jobId"`
	Stages []StageWindowView `json:"stages"`
}
