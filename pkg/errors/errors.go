// Package errors provides structured error handling for the application
// Following enterprise patterns for error management and observability
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes used across the planning engine
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"

	// Server errors (5xx)
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
	CodeUpstreamError ErrorCode = "UPSTREAM_ERROR"

	// Business logic errors
	CodePlanNotFound       ErrorCode = "PLAN_NOT_FOUND"
	CodeDayNotFound        ErrorCode = "DAY_NOT_FOUND"
	CodeSlotNotFound       ErrorCode = "SLOT_NOT_FOUND"
	CodeDayConfirmed       ErrorCode = "DAY_ALREADY_CONFIRMED"
	CodeNoAlternative      ErrorCode = "NO_ALTERNATIVE_RECIPE"
	CodeInventoryExhausted ErrorCode = "INVENTORY_EXHAUSTED"
	CodeNoCandidates       ErrorCode = "NO_RECIPE_CANDIDATES"
	CodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
)

// AppError represents an application error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeInventoryExhausted:
		return http.StatusBadRequest
	case CodeNotFound, CodePlanNotFound, CodeDayNotFound, CodeSlotNotFound, CodeNoCandidates, CodeJobNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDayConfirmed, CodeNoAlternative:
		return http.StatusConflict
	case CodeUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Predefined error constructors for common scenarios

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), "")
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(CodeConflict, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewUpstreamError creates an error for a failed external collaborator call
func NewUpstreamError(service string, cause error) *AppError {
	return NewAppError(
		CodeUpstreamError,
		"Upstream service error",
		fmt.Sprintf("Failed to communicate with %s", service),
	).WithCause(cause)
}

// Business domain specific errors

// NewPlanNotFoundError creates a meal plan not found error
func NewPlanNotFoundError(planID string) *AppError {
	return NewAppError(
		CodePlanNotFound,
		"Meal plan not found",
		"Plan does not exist or you don't have permission",
	).WithMetadata("plan_id", planID)
}

// NewDayNotFoundError creates a plan day not found error
func NewDayNotFoundError(dayID string) *AppError {
	return NewAppError(
		CodeDayNotFound,
		"Plan day not found",
		"Day does not exist or you don't have permission",
	).WithMetadata("day_id", dayID)
}

// NewSlotNotFoundError creates a plan slot not found error
func NewSlotNotFoundError(slotID string) *AppError {
	return NewAppError(
		CodeSlotNotFound,
		"Plan slot not found",
		"Slot does not exist or you don't have permission",
	).WithMetadata("slot_id", slotID)
}

// NewDayConfirmedError signals an attempt to re-confirm or mutate a confirmed day
func NewDayConfirmedError(dayID string) *AppError {
	return NewAppError(
		CodeDayConfirmed,
		"Day already confirmed",
		"This day has already been confirmed",
	).WithMetadata("day_id", dayID)
}

// NewNoAlternativeError signals that no distinct replacement recipe exists
func NewNoAlternativeError(slotID string) *AppError {
	return NewAppError(
		CodeNoAlternative,
		"No alternative recipe available",
		"No distinct replacement could be found for this slot",
	).WithMetadata("slot_id", slotID)
}

// NewInventoryExhaustedError signals that the user has no usable inventory
func NewInventoryExhaustedError() *AppError {
	return NewAppError(
		CodeInventoryExhausted,
		"No usable inventory",
		"No available food inventory to base a meal plan on",
	)
}

// NewNoCandidatesError signals that no recipe candidate matched the inventory
func NewNoCandidatesError() *AppError {
	return NewAppError(
		CodeNoCandidates,
		"No recipe candidates found",
		"No suitable recipes matched the available inventory",
	)
}

// NewJobNotFoundError creates a generation job not found error
func NewJobNotFoundError(jobID string) *AppError {
	return NewAppError(
		CodeJobNotFound,
		"Generation job not found",
		"Job does not exist or has expired",
	).WithMetadata("job_id", jobID)
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}
