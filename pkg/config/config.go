/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"github.com/spf13/viper"
)

// SetValue sets a configuration value for the specified key.
func SetValue(key string, value interface{}) {
	viper.Set(key, value)
}

// LoadConfig loads configuration from the specified file path.
func LoadConfig(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	return viper.ReadInConfig()
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getBool(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetBool(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}

// GetServerPort returns the API server port.
func GetServerPort() int {
	return getInt(serverPort, 0)
}

// IsHealthCheckEnabled returns whether health checks are enabled.
func IsHealthCheckEnabled() bool {
	return getBool(healthCheckEnable, true)
}

// IsDBEnable returns whether the database is enabled.
func IsDBEnable() bool {
	return getBool(dbEnable, false)
}

// GetDBHost returns the database host address.
func GetDBHost() string {
	return getString(dbHost, "")
}

// GetDBPort returns the database port number.
func GetDBPort() int {
	return getInt(dbPort, 0)
}

// GetDBName returns the database name.
func GetDBName() string {
	return getString(dbName, "")
}

// GetDBUser returns the database username.
func GetDBUser() string {
	return getString(dbUser, "")
}

// GetDBPassword returns the database password.
func GetDBPassword() string {
	return getString(dbPassword, "")
}

// GetDBSslMode returns the database SSL mode.
func GetDBSslMode() string {
	return getString(dbSslMode, "disable")
}

// GetDBMaxOpenConns returns the maximum number of open database connections.
func GetDBMaxOpenConns() int {
	return getInt(dbMaxOpenConns, 0)
}

// GetDBMaxIdleConns returns the maximum number of idle database connections.
func GetDBMaxIdleConns() int {
	return getInt(dbMaxIdleConns, 0)
}

// GetDBMaxLifetimeSecond returns the maximum lifetime of a connection in seconds.
func GetDBMaxLifetimeSecond() int {
	return getInt(dbMaxLifetimeSecond, 0)
}

// GetDBMaxIdleTimeSecond returns the maximum idle time of a connection in seconds.
func GetDBMaxIdleTimeSecond() int {
	return getInt(dbMaxIdleTimeSecond, 0)
}

// GetDBConnectTimeoutSecond returns the database connect timeout in seconds.
func GetDBConnectTimeoutSecond() int {
	return getInt(dbConnectTimeoutSecond, 10)
}

// GetDBRequestTimeoutSecond returns the per-request database timeout in seconds.
func GetDBRequestTimeoutSecond() int {
	return getInt(dbRequestTimeoutSecond, 30)
}

// GetWorkStartHour returns the configured start of the working window.
func GetWorkStartHour() int {
	return getInt(workStartHour, DefaultWorkStartHour)
}

// GetWorkEndHour returns the configured end hour of the working window.
func GetWorkEndHour() int {
	return getInt(workEndHour, DefaultWorkEndHour)
}

// GetWorkEndMinute returns the configured end minute of the working window.
func GetWorkEndMinute() int {
	return getInt(workEndMinute, DefaultWorkEndMinute)
}

// IsBusyPeriodActive returns whether the busy-period working window override is on.
func IsBusyPeriodActive() bool {
	return getBool(busyPeriodActive, false)
}

// GetBusyStartHour returns the busy-period start hour.
func GetBusyStartHour() int {
	return getInt(busyStartHour, DefaultWorkStartHour)
}

// GetBusyEndHour returns the busy-period end hour.
func GetBusyEndHour() int {
	return getInt(busyEndHour, DefaultWorkEndHour)
}

// GetBusyEndMinute returns the busy-period end minute.
func GetBusyEndMinute() int {
	return getInt(busyEndMinute, DefaultWorkEndMinute)
}

// GetTimezone returns the IANA timezone name the scheduler operates in.
func GetTimezone() string {
	return getString(timezone, DefaultTimezone)
}

// GetSlaBufferWorkingDays returns the number of working days added to a
// tentative completion before it becomes a due date.
func GetSlaBufferWorkingDays() int {
	n := getInt(slaBufferWorkingDays, 1)
	if n < 0 {
		return 0
	}
	return n
}

// GetTentativeCron returns the cron expression for the background
// tentative-due-date recompute.
func GetTentativeCron() string {
	return getString(tentativeCron, DefaultTentativeCron)
}
