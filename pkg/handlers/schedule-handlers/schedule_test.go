/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package schedule_handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gotest.tools/assert"

	"github.com/printflow/scheduler/pkg/database/client"
	"github.com/printflow/scheduler/pkg/database/client/fake"
	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

func newTestEngine(db *fake.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	InitScheduleRouters(engine, NewHandler(db))
	return engine
}

func seedJob(db *fake.Client) {
	db.Jobs = []*client.ProductionJob{{
		JobId:        "job-1",
		TableName:    "production_jobs",
		Status:       "pending",
		CreationTime: dbutils.NullTime(time.Now().Add(-time.Hour)),
	}}
	db.Instances = []*client.StageInstance{{
		InstanceId:      "si-1",
		JobId:           "job-1",
		JobTableName:    "production_jobs",
		StageId:         "stage-x",
		StageOrder:      1,
		DurationMinutes: 30,
		Status:          client.StagePending,
	}}
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NilError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	var parsed map[string]interface{}
	assert.NilError(t, json.Unmarshal(recorder.Body.Bytes(), &parsed))
	return recorder, parsed
}

func TestScheduleJobEndpoint(t *testing.T) {
	db := fake.NewClient()
	seedJob(db)
	engine := newTestEngine(db)

	recorder, parsed := doRequest(t, engine, http.MethodPost, "/api/v1/scheduler/jobs/schedule",
		map[string]string{"jobId": "job-1"})

	assert.Equal(t, recorder.Code, http.StatusOK)
	assert.Equal(t, parsed["ok"], true)
	assert.Equal(t, parsed["success"], true)
	assert.Equal(t, parsed["jobId"], "job-1")
}

func TestScheduleJobEndpointMissingBody(t *testing.T) {
	engine := newTestEngine(fake.NewClient())

	recorder, parsed := doRequest(t, engine, http.MethodPost, "/api/v1/scheduler/jobs/schedule",
		map[string]string{})

	assert.Equal(t, recorder.Code, http.StatusBadRequest)
	assert.Equal(t, parsed["ok"], false)
	assert.Equal(t, parsed["errorCode"], commonerrors.BadRequest)
}

func TestScheduleJobEndpointUnknownJob(t *testing.T) {
	engine := newTestEngine(fake.NewClient())

	recorder, parsed := doRequest(t, engine, http.MethodPost, "/api/v1/scheduler/jobs/schedule",
		map[string]string{"jobId": "job-ghost"})

	assert.Equal(t, recorder.Code, http.StatusNotFound)
	assert.Equal(t, parsed["errorCode"], commonerrors.WorkflowNotFound)
}

func TestRecalculateAllEndpoint(t *testing.T) {
	db := fake.NewClient()
	seedJob(db)
	engine := newTestEngine(db)

	recorder, parsed := doRequest(t, engine, http.MethodPost, "/api/v1/scheduler/jobs/recalculate",
		map[string]interface{}{})

	assert.Equal(t, recorder.Code, http.StatusOK)
	assert.Equal(t, parsed["ok"], true)
	assert.Equal(t, parsed["successful"], float64(1))
	assert.Equal(t, parsed["failed"], float64(0))
}

func TestReorderDayEndpointInvalidDate(t *testing.T) {
	engine := newTestEngine(fake.NewClient())

	recorder, parsed := doRequest(t, engine, http.MethodPost, "/api/v1/scheduler/days/reorder",
		map[string]interface{}{
			"date":             "03/02/2026",
			"stageInstanceIds": []string{"si-1"},
			"shiftStart":       "08:00",
		})

	assert.Equal(t, recorder.Code, http.StatusBadRequest)
	assert.Equal(t, parsed["errorCode"], commonerrors.BadRequest)
}

func TestTentativeDueDatesEndpointEmpty(t *testing.T) {
	engine := newTestEngine(fake.NewClient())

	recorder, parsed := doRequest(t, engine, http.MethodPost, "/api/v1/scheduler/jobs/tentative-due-dates", nil)

	assert.Equal(t, recorder.Code, http.StatusOK)
	assert.Equal(t, parsed["ok"], true)
	assert.Equal(t, parsed["count"], float64(0))
}

func TestGetJobScheduleEndpoint(t *testing.T) {
	db := fake.NewClient()
	seedJob(db)
	engine := newTestEngine(db)

	recorder, parsed := doRequest(t, engine, http.MethodGet, "/api/v1/scheduler/jobs/job-1/schedule", nil)

	assert.Equal(t, recorder.Code, http.StatusOK)
	assert.Equal(t, parsed["ok"], true)
	stages := parsed["stages"].([]interface{})
	assert.Equal(t, len(stages), 1)
}

func TestGetStageQueueEndpoint(t *testing.T) {
	db := fake.NewClient()
	engine := newTestEngine(db)

	recorder, parsed := doRequest(t, engine, http.MethodGet, "/api/v1/scheduler/stages/stage-x/queue?date=2026-03-02", nil)

	assert.Equal(t, recorder.Code, http.StatusOK)
	assert.Equal(t, parsed["ok"], true)
	assert.Equal(t, parsed["stageId"], "stage-x")
	assert.Equal(t, parsed["date"], "2026-03-02")
	assert.Equal(t, parsed["committedMinutes"], float64(0))
}
