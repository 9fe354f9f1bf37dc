/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package schedule_handlers serves the scheduling API: job scheduling, batch
// recompute, day reorder, tentative due dates and schedule inspection.
package schedule_handlers

import (
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/calendar"
	"github.com/printflow/scheduler/pkg/capacity"
	dbclient "github.com/printflow/scheduler/pkg/database/client"
	apiutils "github.com/printflow/scheduler/pkg/utils"
)

// Handler handles HTTP requests for scheduling operations.
type Handler struct {
	dbClient dbclient.Interface
}

// NewHandler creates a new scheduling handler.
func NewHandler(dbClient dbclient.Interface) *Handler {
	return &Handler{dbClient: dbClient}
}

// newStore builds the per-call scheduling state: the calendar is loaded once
// at call entry and the capacity store wraps it for the call's lifetime.
func (h *Handler) newStore(c *gin.Context) *capacity.Store {
	cal := calendar.Load(c.Request.Context(), h.dbClient)
	return capacity.NewStore(h.dbClient, cal)
}

// handle is a common handler wrapper for HTTP requests.
func handle(c *gin.Context, fn func(c *gin.Context) (interface{}, error)) {
	result, err := fn(c)
	if err != nil {
		klog.ErrorS(err, "handler error", "path", c.Request.URL.Path)
		apiutils.AbortWithApiError(c, err)
		return
	}
	c.JSON(200, result)
}
