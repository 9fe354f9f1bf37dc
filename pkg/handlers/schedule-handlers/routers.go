/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package schedule_handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// RouterRootPath is the prefix of every scheduling route.
const RouterRootPath = "/api/v1/scheduler/"

// route parameter names.
const (
	ParamStageId = "stageId"
	ParamJobId   = "jobId"
)

// InitScheduleRouters registers the scheduling API routes with the gin engine.
func InitScheduleRouters(e *gin.Engine, h *Handler) {
	group := e.Group(RouterRootPath)
	{
		group.POST("jobs/schedule", h.ScheduleJob)
		group.POST("jobs/recalculate", h.RecalculateAll)
		group.POST("days/reorder", h.ReorderDay)
		group.POST("jobs/tentative-due-dates", h.RecalcTentativeDueDates)
		group.POST("stages/reschedule", h.ManualRescheduleStage)

		group.GET(fmt.Sprintf("stages/:%s/queue", ParamStageId), h.GetStageQueue)
		group.GET(fmt.Sprintf("jobs/:%s/schedule", ParamJobId), h.GetJobSchedule)
	}
}
