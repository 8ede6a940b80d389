package utils

import (
	"errors"
	"fmt"
)

// Error codes for the safety core. Permission, timeout, transport and
// storage failures all degrade gracefully; conflicts are coalesced, not
// raised to the user.
const (
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeTimeout          = "TIMEOUT"
	CodeTransportFailure = "TRANSPORT_FAILURE"
	CodeStorageFailure   = "STORAGE_FAILURE"
	CodeConflict         = "CONCURRENCY_VIOLATION"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(code, message string) error {
	return ServiceError{Code: code, Message: message}
}

// NewServiceErrorWithCause creates a service error that wraps another error
func NewServiceErrorWithCause(code, message string, cause error) error {
	return ServiceError{Code: code, Message: message, Cause: cause}
}

// IsServiceError checks if an error is a service error
func IsServiceError(err error) bool {
	var serviceErr ServiceError
	return errors.As(err, &serviceErr)
}

// GetServiceError extracts a ServiceError from an error
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// HasCode reports whether err carries the given service error code.
func HasCode(err error, code string) bool {
	serviceErr, ok := GetServiceError(err)
	return ok && serviceErr.Code == code
}

// Taxonomy constructors

func NewPermissionDeniedError(message string) error {
	return ServiceError{Code: CodePermissionDenied, Message: message}
}

func NewTimeoutError(message string) error {
	return ServiceError{Code: CodeTimeout, Message: message}
}

func NewTransportError(message string, cause error) error {
	return ServiceError{Code: CodeTransportFailure, Message: message, Cause: cause}
}

func NewStorageError(message string, cause error) error {
	return ServiceError{Code: CodeStorageFailure, Message: message, Cause: cause}
}

func NewConflictError(message string) error {
	return ServiceError{Code: CodeConflict, Message: message}
}

func NewValidationError(message string) error {
	return ServiceError{Code: CodeValidation, Message: message}
}

func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}
