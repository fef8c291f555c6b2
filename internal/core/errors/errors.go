package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication & Authorization
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrSessionNotFound  = errors.New("session not found")
	ErrUserInactive     = errors.New("user account is inactive")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotAuthenticated = errors.New("authentication required")
	ErrInsufficientPerm = errors.New("insufficient permissions for this event")

	// Realtime message validation
	ErrEventIDRequired  = errors.New("eventId is required")
	ErrCueRequired      = errors.New("cue is required")
	ErrTimecodeRequired = errors.New("timecode is required and must be a number")
	ErrTimecodeNegative = errors.New("timecode must not be negative")
	ErrNotInRoom        = errors.New("connection has not joined an event")
	ErrBadSubscription  = errors.New("unsupported subscription type")

	// Lookups
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Stable machine-readable codes used in error envelopes and HTTP responses.
const (
	CodeValidationError         = "VALIDATION_ERROR"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeAuthenticationRequired  = "AUTHENTICATION_REQUIRED"
	CodeEventNotFound           = "EVENT_NOT_FOUND"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeRateLimited             = "RATE_LIMITED"
	CodeInternalError           = "INTERNAL_ERROR"
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Err:        ErrInsufficientPerm,
		Message:    message,
		Code:       CodeInsufficientPermissions,
		StatusCode: 403,
	}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "NOT_FOUND",
		StatusCode: 404,
	}
}

func NewValidationError(err error, message string, details map[string]interface{}) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       CodeValidationError,
		StatusCode: 422,
		Details:    details,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       CodeInternalError,
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
