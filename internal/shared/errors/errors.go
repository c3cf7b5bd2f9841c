// Package errors provides application-level error types and utilities.
// It defines the error taxonomy of the ticket service: validation,
// configuration, ledger read/write and conflict errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeConfiguration ErrorType = "configuration_error"
	ErrorTypeLedgerRead    ErrorType = "ledger_read_error"
	ErrorTypeLedgerWrite   ErrorType = "ledger_write_error"
	ErrorTypeConflict      ErrorType = "conflict"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeInternal      ErrorType = "internal_error"
	ErrorTypeBadRequest    ErrorType = "bad_request"
)

const (
	msgFetchLastTicketFailed = "Failed to fetch last ticket"
	msgSubmitTicketFailed    = "Failed to submit ticket"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
	// UpstreamCode carries the ledger's own error code, if any.
	UpstreamCode string `json:"upstream_code,omitempty"`

	cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.cause
}

func newAppError(t ErrorType, status int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    status,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewConfigurationError creates an error for missing or invalid server settings.
func NewConfigurationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConfiguration, http.StatusInternalServerError, message, details)
}

// NewLedgerReadError wraps a failure to read the ledger.
func NewLedgerReadError(cause error, upstreamCode string) *AppError {
	e := newAppError(ErrorTypeLedgerRead, http.StatusInternalServerError, msgFetchLastTicketFailed, nil)
	e.cause = cause
	e.UpstreamCode = upstreamCode
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewLedgerWriteError wraps a failure to append to the ledger. The row is
// presumed not persisted.
func NewLedgerWriteError(cause error, upstreamCode string) *AppError {
	e := newAppError(ErrorTypeLedgerWrite, http.StatusInternalServerError, msgSubmitTicketFailed, nil)
	e.cause = cause
	e.UpstreamCode = upstreamCode
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsConfigurationError checks if the error is a configuration error
func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsLedgerReadError checks if the error is a ledger read error
func IsLedgerReadError(err error) bool {
	return isType(err, ErrorTypeLedgerRead)
}

// IsLedgerWriteError checks if the error is a ledger write error
func IsLedgerWriteError(err error) bool {
	return isType(err, ErrorTypeLedgerWrite)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return isType(err, ErrorTypeConflict)
}
