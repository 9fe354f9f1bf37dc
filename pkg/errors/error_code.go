/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"fmt"
	"net/http"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const PrintflowPrefix = "Printflow."

/*
   5-digit Error Code Convention: [xx][yyy]
   [xx] Business ID (00–99), used to distinguish errors from different business interfaces.
   00: General errors
   01: Scheduling-engine errors
   02: Calendar/configuration errors
   03: Reorder errors
   [yyy] Error code range (000–999)
*/

// public: 00xxx
const (
	InternalError = PrintflowPrefix + "00001"
	BadRequest    = PrintflowPrefix + "00002"
	Forbidden     = PrintflowPrefix + "00003"
	AlreadyExist  = PrintflowPrefix + "00004"
	NotFound      = PrintflowPrefix + "00005"
)

// scheduling: 01xxx
const (
	WorkflowNotFound      = PrintflowPrefix + "01001"
	PersistenceError      = PrintflowPrefix + "01002"
	Inconsistency         = PrintflowPrefix + "01003"
	StageInstanceNotFound = PrintflowPrefix + "01004"
	JobNotFound           = PrintflowPrefix + "01005"
)

// calendar: 02xxx
const (
	NoWorkingDayFound = PrintflowPrefix + "02001"
	ConfigUnavailable = PrintflowPrefix + "02002"
)

// reorder: 03xxx
const (
	StagesNotAllOnDate = PrintflowPrefix + "03001"
)

// resource kinds used in not-found details.
const (
	JobKind           = "Job"
	StageInstanceKind = "StageInstance"
	StageKind         = "ProductionStage"
	WorkflowKind      = "Workflow"
)

// IsPrintflow returns true if the specified error carries a printflow error reason.
func IsPrintflow(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(string(apierrors.ReasonForError(err)), PrintflowPrefix)
}

func IsBadRequest(err error) bool {
	return apierrors.ReasonForError(err) == BadRequest
}

func IsInternal(err error) bool {
	return apierrors.ReasonForError(err) == InternalError
}

func IsNotFound(err error) bool {
	reason := apierrors.ReasonForError(err)
	if reason == NotFound || reason == WorkflowNotFound ||
		reason == StageInstanceNotFound || reason == JobNotFound {
		return true
	}
	return false
}

func IsWorkflowNotFound(err error) bool {
	return apierrors.ReasonForError(err) == WorkflowNotFound
}

func IsNoWorkingDayFound(err error) bool {
	return apierrors.ReasonForError(err) == NoWorkingDayFound
}

func IsInconsistency(err error) bool {
	return apierrors.ReasonForError(err) == Inconsistency
}

func IsPersistence(err error) bool {
	return apierrors.ReasonForError(err) == PersistenceError
}

func IsConfigUnavailable(err error) bool {
	return apierrors.ReasonForError(err) == ConfigUnavailable
}

func IsStagesNotAllOnDate(err error) bool {
	return apierrors.ReasonForError(err) == StagesNotAllOnDate
}

func IgnoreFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}

func GetErrorCode(err error) string {
	if err == nil || !IsPrintflow(err) {
		return ""
	}
	return string(apierrors.ReasonForError(err))
}

func NewBadRequest(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadRequest,
		Reason:  BadRequest,
		Message: fmt.Sprintf("Bad request. %s", message),
	}}
}

func NewInternalError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  InternalError,
		Message: fmt.Sprintf("Internal error. %s", message),
	}}
}

func NewAlreadyExist(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusConflict,
		Reason:  AlreadyExist,
		Message: message,
	}}
}

func NewForbidden(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusForbidden,
		Reason:  Forbidden,
		Message: message,
	}}
}

func NotFoundErrorCode(kind string) metav1.StatusReason {
	switch kind {
	case JobKind:
		return JobNotFound
	case StageInstanceKind:
		return StageInstanceNotFound
	case WorkflowKind:
		return WorkflowNotFound
	default:
		return NotFound
	}
}

func NewNotFound(kind, name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status: metav1.StatusFailure,
		Code:   http.StatusNotFound,
		Reason: NotFoundErrorCode(kind),
		Details: &metav1.StatusDetails{
			Kind: kind,
			Name: name,
		},
		Message: fmt.Sprintf("%s %s not found.", kind, name),
	}}
}

func NewNotFoundWithMessage(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusNotFound,
		Reason:  NotFound,
		Message: message,
	}}
}

// NewWorkflowNotFound reports a job that owns no stage instances.
func NewWorkflowNotFound(jobId string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status: metav1.StatusFailure,
		Code:   http.StatusNotFound,
		Reason: WorkflowNotFound,
		Details: &metav1.StatusDetails{
			Kind: WorkflowKind,
			Name: jobId,
		},
		Message: fmt.Sprintf("no workflow stages found for job %s.", jobId),
	}}
}

// NewNoWorkingDayFound reports a calendar that yields no working day within the
// search horizon. This indicates a shift-schedule or holiday configuration error.
func NewNoWorkingDayFound(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  NoWorkingDayFound,
		Message: fmt.Sprintf("no working day found. %s", message),
	}}
}

func NewPersistenceError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  PersistenceError,
		Message: fmt.Sprintf("persistence failure. %s", message),
	}}
}

// NewInconsistency reports a capacity readback that disagrees with a commit,
// which means an external writer mutated the schedule mid-run.
func NewInconsistency(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusConflict,
		Reason:  Inconsistency,
		Message: fmt.Sprintf("capacity inconsistency. %s", message),
	}}
}

func NewConfigUnavailable(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusServiceUnavailable,
		Reason:  ConfigUnavailable,
		Message: fmt.Sprintf("configuration unavailable. %s", message),
	}}
}

func NewStagesNotAllOnDate(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadRequest,
		Reason:  StagesNotAllOnDate,
		Message: fmt.Sprintf("reorder rejected. %s", message),
	}}
}
