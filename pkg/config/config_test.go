/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"testing"

	"github.com/spf13/viper"
	"gotest.tools/assert"
)

func TestWorkingWindowDefaults(t *testing.T) {
	viper.Reset()
	assert.Equal(t, GetWorkStartHour(), 8)
	assert.Equal(t, GetWorkEndHour(), 16)
	assert.Equal(t, GetWorkEndMinute(), 30)
	assert.Equal(t, GetTimezone(), "Africa/Johannesburg")
	assert.Equal(t, GetSlaBufferWorkingDays(), 1)
	assert.Equal(t, GetTentativeCron(), "@hourly")
	assert.Assert(t, !IsBusyPeriodActive())
}

func TestWorkingWindowOverride(t *testing.T) {
	viper.Reset()
	SetValue("scheduler.work_start_hour", 7)
	SetValue("scheduler.work_end_hour", 18)
	SetValue("scheduler.work_end_minute", 0)
	SetValue("scheduler.sla_buffer_working_days", 2)
	assert.Equal(t, GetWorkStartHour(), 7)
	assert.Equal(t, GetWorkEndHour(), 18)
	assert.Equal(t, GetWorkEndMinute(), 0)
	assert.Equal(t, GetSlaBufferWorkingDays(), 2)
}

func TestNegativeSlaBufferClamped(t *testing.T) {
	viper.Reset()
	SetValue("scheduler.sla_buffer_working_days", -3)
	assert.Equal(t, GetSlaBufferWorkingDays(), 0)
}

func TestDBDefaults(t *testing.T) {
	viper.Reset()
	assert.Assert(t, !IsDBEnable())
	assert.Equal(t, GetDBSslMode(), "disable")
	assert.Equal(t, GetDBConnectTimeoutSecond(), 10)
	assert.Equal(t, GetDBRequestTimeoutSecond(), 30)
}
