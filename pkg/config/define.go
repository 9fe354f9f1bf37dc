/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// server
	serverPrefix = "server."
	serverPort   = serverPrefix + "port"

	// health_check
	healthCheckPrefix = "health_check."
	healthCheckEnable = healthCheckPrefix + "enable"

	// db
	dbPrefix                 = "db."
	dbEnable                 = dbPrefix + "enable"
	dbHost                   = dbPrefix + "host"
	dbPort                   = dbPrefix + "port"
	dbName                   = dbPrefix + "dbname"
	dbUser                   = dbPrefix + "user"
	dbPassword               = dbPrefix + "password"
	dbSslMode                = dbPrefix + "ssl_mode"
	dbMaxOpenConns           = dbPrefix + "max_open_conns"
	dbMaxIdleConns           = dbPrefix + "max_idle_conns"
	dbMaxLifetimeSecond      = dbPrefix + "max_lifetime_second"
	dbMaxIdleTimeSecond      = dbPrefix + "max_idle_time_second"
	dbConnectTimeoutSecond   = dbPrefix + "connect_timeout_second"
	dbRequestTimeoutSecond   = dbPrefix + "request_timeout_second"

	// scheduler: working hours, timezone and SLA buffer
	schedulerPrefix      = "scheduler."
	workStartHour        = schedulerPrefix + "work_start_hour"
	workEndHour          = schedulerPrefix + "work_end_hour"
	workEndMinute        = schedulerPrefix + "work_end_minute"
	busyPeriodActive     = schedulerPrefix + "busy_period_active"
	busyStartHour        = schedulerPrefix + "busy_start_hour"
	busyEndHour          = schedulerPrefix + "busy_end_hour"
	busyEndMinute        = schedulerPrefix + "busy_end_minute"
	timezone             = schedulerPrefix + "timezone"
	slaBufferWorkingDays = schedulerPrefix + "sla_buffer_working_days"
	tentativeCron        = schedulerPrefix + "tentative_cron"
)

const (
	DefaultWorkStartHour = 8
	DefaultWorkEndHour   = 16
	DefaultWorkEndMinute = 30
	DefaultTimezone      = "Africa/Johannesburg"
	DefaultTentativeCron = "@hourly"
)
