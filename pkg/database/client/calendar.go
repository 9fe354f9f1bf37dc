/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"

	"k8s.io/klog/v2"

	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

// ListShiftSchedules returns the active per-weekday working pattern.
func (c *Client) ListShiftSchedules(ctx context.Context) ([]*ShiftSchedule, error) {
	g, err := c.getGorm()
	if err != nil {
		return nil, err
	}
	var shifts []*ShiftSchedule
	result := g.WithContext(ctx).Where("is_active = ?", true).Order("day_of_week asc").Find(&shifts)
	if result.Error != nil {
		klog.ErrorS(result.Error, "failed to list shift schedules")
		return nil, commonerrors.NewConfigUnavailable(result.Error.Error())
	}
	return shifts, nil
}

// ListPublicHolidays returns the active public holiday dates.
func (c *Client) ListPublicHolidays(ctx context.Context) ([]*PublicHoliday, error) {
	g, err := c.getGorm()
	if err != nil {
		return nil, err
	}
	var holidays []*PublicHoliday
	result := g.WithContext(ctx).Where("is_active = ?", true).Order("holiday_date asc").Find(&holidays)
	if result.Error != nil {
		klog.ErrorS(result.Error, "failed to list public holidays")
		return nil, commonerrors.NewConfigUnavailable(result.Error.Error())
	}
	return holidays, nil
}

// ListAppSettings returns the key/value settings rows, which carry the
// working-hours overrides.
func (c *Client) ListAppSettings(ctx context.Context) ([]*AppSetting, error) {
	g, err := c.getGorm()
	if err != nil {
		return nil, err
	}
	var settings []*AppSetting
	result := g.WithContext(ctx).Find(&settings)
	if result.Error != nil {
		klog.ErrorS(result.Error, "failed to list app settings")
		return nil, commonerrors.NewConfigUnavailable(result.Error.Error())
	}
	return settings, nil
}
