package errors

import (
	"context"
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error. The cause usually carries
// the field-level details.
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewAuthRequiredError creates an error for an operation attempted without an active session
func NewAuthRequiredError(operation string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuthRequired,
		Message: fmt.Sprintf("an active session is required to %s", operation),
		Code:    "AUTH_REQUIRED",
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidCredentialsError reports a rejected sign-in. It is a validation
// failure: the user can fix it by retyping.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: "invalid login credentials",
		Code:    "INVALID_CREDENTIALS",
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewBackendError creates an error for a failed call to the remote store.
// The cause is kept for diagnostics.
func NewBackendError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeBackend,
		Message: fmt.Sprintf("backend operation failed: %s", operation),
		Code:    "BACKEND_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// FromTransport classifies a failed backend call: a fired deadline becomes a
// timeout, anything else a backend error. AppErrors pass through untouched.
func FromTransport(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		timeoutErr := NewTimeoutError(operation, nil)
		timeoutErr.Cause = err
		return timeoutErr
	}
	return NewBackendError(operation, err)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation:
			return appErr.Message
		case ErrorTypeNotFound:
			return appErr.Message
		case ErrorTypeInvalidInput:
			return appErr.Message
		case ErrorTypeAuthRequired:
			return "You need to sign in first."
		case ErrorTypeBackend:
			return "The server could not complete the request. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeAuthRequired:
			return false // user-facing, not system failures
		case ErrorTypeBackend, ErrorTypeTimeout:
			return true
		default:
			return true
		}
	}
	return true
}
