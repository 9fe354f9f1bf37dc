/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package scheduler runs the scheduling passes: per-path stage placement,
// convergence, whole-job orchestration and batch recompute.
package scheduler

import (
	"time"
)

// StageCompletion records the committed window of one stage.
type StageCompletion struct {
	InstanceId string    `json:"instanceId"`
	StageId    string    `json:"stageId"`
	StageName  string    `json:"stageName,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	WasSplit   bool      `json:"wasSplit"`
}

// PathResult is the outcome of scheduling one workflow path. A stage error
// is recorded and the path continues with the remaining stages.
type PathResult struct {
	PathName           string            `json:"pathName"`
	PathCompletionTime time.Time         `json:"pathCompletionTime"`
	TotalMinutes       int               `json:"totalMinutes"`
	StageCompletions   []StageCompletion `json:"stageCompletions"`
	Errors             []string          `json:"errors,omitempty"`
}

// SchedulingResult is the outcome of scheduling one whole job.
type SchedulingResult struct {
	Success                 bool       `json:"success"`
	JobId                   string     `json:"jobId"`
	ScheduledCompletionDate time.Time  `json:"scheduledCompletionDate"`
	TotalMinutes            int        `json:"totalMinutes"`
	Errors                  []string   `json:"errors,omitempty"`
	CoverEnd                *time.Time `json:"coverEnd,omitempty"`
	TextEnd                 *time.Time `json:"textEnd,omitempty"`
	ConvergenceEnd          *time.Time `json:"convergenceEnd,omitempty"`
}

// BatchResult aggregates a batch recompute.
type BatchResult struct {
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
	Results    []*SchedulingResult `json:"results"`
}
