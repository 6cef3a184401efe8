// Package errors provides standardized error handling for the review API.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeTransportFailed  ErrorCode = "TRANSPORT_FAILED"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrCodeStatusConflict   ErrorCode = "STATUS_CONFLICT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Field     string                 `json:"field,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable validation error tied to a field.
func NewValidationError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable not-found error for a record.
func NewNotFoundError(kind, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", kind),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError creates a retryable error for a failed backend call.
func NewTransportError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   fmt.Sprintf("%s failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPermissionDeniedError creates a non-retryable authorization error.
func NewPermissionDeniedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePermissionDenied,
		Message:   "Permission denied",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusConflictError creates a non-retryable error for a record whose
// status changed since it was read.
func NewStatusConflictError(id, expected string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStatusConflict,
		Message:   "Application status changed since last read",
		Details:   fmt.Sprintf("id: %s, expectedStatus: %s", id, expected),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Metadata: map[string]interface{}{
			"expectedStatus": expected,
		},
	}
}

// ==========================
// 3. Error Classification
// ==========================

// AsStandard extracts a *StandardError from an error chain, or nil.
func AsStandard(err error) *StandardError {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

func hasCode(err error, code ErrorCode) bool {
	if se := AsStandard(err); se != nil {
		return se.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidationFailed)
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsTransport reports whether err is a backend transport failure.
func IsTransport(err error) bool {
	return hasCode(err, ErrCodeTransportFailed)
}

// IsPermissionDenied reports whether err is an authorization failure.
func IsPermissionDenied(err error) bool {
	return hasCode(err, ErrCodePermissionDenied)
}

// IsStatusConflict reports whether err is an optimistic-concurrency failure.
func IsStatusConflict(err error) bool {
	return hasCode(err, ErrCodeStatusConflict)
}

// IsRetryable reports whether the operation that produced err may be retried.
func IsRetryable(err error) bool {
	if se := AsStandard(err); se != nil {
		return se.Retryable
	}
	return false
}
