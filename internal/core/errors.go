package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error code constants
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeProvider       = "PROVIDER_ERROR"
	ErrCodeModelSelection = "MODEL_SELECTION_FAILED"
	ErrCodeConfig         = "CONFIG_LOAD_FAILED"
)

// AppError is the unified application error type. Code identifies the error
// class for callers, HTTPStatus is the status the HTTP layer should respond
// with, Cause preserves the underlying error for wrapping.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	// UpstreamStatus is the raw provider status code for provider errors,
	// 0 for network-level failures.
	UpstreamStatus int
	Cause          error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap supports errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a client-input error (HTTP 400).
func NewValidationError(format string, args ...any) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewProviderError creates an upstream failure error. Upstream 4xx statuses
// are passed through to the caller, everything else maps to 502.
func NewProviderError(upstreamStatus int, message string, cause error) *AppError {
	httpStatus := http.StatusBadGateway
	if upstreamStatus >= 400 && upstreamStatus < 500 {
		httpStatus = upstreamStatus
	}
	return &AppError{
		Code:           ErrCodeProvider,
		Message:        message,
		HTTPStatus:     httpStatus,
		UpstreamStatus: upstreamStatus,
		Cause:          cause,
	}
}

// IsTransientProviderError reports whether err is a provider error worth
// retrying: rate limiting or an upstream server-side failure.
func IsTransientProviderError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeProvider {
		return false
	}
	switch appErr.UpstreamStatus {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return true
	}
	return false
}

// NewModelSelectionError creates an error for failed automatic model selection.
func NewModelSelectionError(message string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeModelSelection,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// IsProviderError reports whether err is an upstream provider error.
func IsProviderError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeProvider
}

// HTTPStatusFor returns the response status for err, defaulting to 500.
func HTTPStatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// ClientMessageFor returns the error message safe to show callers.
// Internal errors get a generic message, details stay in the logs.
func ClientMessageFor(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
