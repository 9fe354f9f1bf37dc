/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package handlers assembles the HTTP surface of the scheduler service.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printflow/scheduler/pkg/config"
	dbclient "github.com/printflow/scheduler/pkg/database/client"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
	schedulehandlers "github.com/printflow/scheduler/pkg/handlers/schedule-handlers"
	apiutils "github.com/printflow/scheduler/pkg/utils"
)

// InitHttpHandlers builds the gin engine: logging and recovery middleware,
// the health endpoint, and the scheduling routes.
func InitHttpHandlers(_ context.Context, dbClient dbclient.Interface) (*gin.Engine, error) {
	if dbClient == nil {
		return nil, commonerrors.NewInternalError("the database client is not initialized")
	}
	engine := gin.New()
	engine.Use(apiutils.Logger(), gin.Recovery())
	engine.NoRoute(func(c *gin.Context) {
		apiutils.AbortWithApiError(c, commonerrors.NewNotFoundWithMessage(c.Request.RequestURI+" not found"))
	})
	if config.IsHealthCheckEnabled() {
		engine.GET("/healthz", func(c *gin.Context) {
			if err := dbClient.Ping(); err != nil {
				apiutils.AbortWithApiError(c, commonerrors.NewInternalError(err.Error()))
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	}
	schedulehandlers.InitScheduleRouters(engine, schedulehandlers.NewHandler(dbClient))
	return engine, nil
}
