/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

// PrintflowApiError is the unified error response: HTTP code, error code and
// message. The Ok field is always false so clients can branch on one flag.
type PrintflowApiError struct {
	HttpCode     int    `json:"-"`
	Ok           bool   `json:"ok"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"error"`
}

// Error returns the error message string.
func (err *PrintflowApiError) Error() string {
	return err.ErrorMessage
}

// AbortWithApiError converts err into the standardized error format and
// aborts the request with a JSON error response.
func AbortWithApiError(c *gin.Context, err error) {
	handleErrors(c, err)
	rsp := convertToErrResponse(err)
	c.AbortWithStatusJSON(rsp.HttpCode, rsp)
}

// convertToErrResponse converts an error into a PrintflowApiError. Status
// errors keep their code and reason; anything else maps onto the closest
// generic error.
func convertToErrResponse(err error) PrintflowApiError {
	var result *PrintflowApiError
	if errors.As(err, &result) {
		return *result
	}
	var statusErr *apierrors.StatusError
	if !errors.As(err, &statusErr) {
		switch {
		case apierrors.IsNotFound(err):
			statusErr = commonerrors.NewNotFoundWithMessage(err.Error())
		case apierrors.IsBadRequest(err), apierrors.IsInvalid(err):
			statusErr = commonerrors.NewBadRequest(err.Error())
		case apierrors.IsAlreadyExists(err):
			statusErr = commonerrors.NewAlreadyExist(err.Error())
		case apierrors.IsForbidden(err):
			statusErr = commonerrors.NewForbidden(err.Error())
		default:
			statusErr = commonerrors.NewInternalError(err.Error())
		}
	}
	return PrintflowApiError{
		HttpCode:     int(statusErr.Status().Code),
		Ok:           false,
		ErrorCode:    string(statusErr.Status().Reason),
		ErrorMessage: statusErr.Error(),
	}
}

// handleErrors adds single errors or error aggregates to the gin context.
func handleErrors(c *gin.Context, err error) {
	var errs []error
	if aggregate, ok := err.(utilerrors.Aggregate); ok {
		errs = aggregate.Errors()
	} else {
		errs = []error{err}
	}
	for _, val := range errs {
		if val != nil {
			_ = c.Error(val)
		}
	}
}
