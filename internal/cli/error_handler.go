package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"todo-sync/internal/errors"
	"todo-sync/internal/logging"
	"todo-sync/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if errors.ShouldLogError(err) {
		logging.Logger().Debug("command failed", "op", operation, "err", err)
	}
	return fmt.Errorf("failed to %s: %s", operation, eh.message(err))
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	return stderrors.New(eh.message(err))
}

func (eh *ErrorHandler) message(err error) string {
	// Field-level details first, so every broken field is listed.
	if ve, ok := validation.AsValidationError(err); ok && ve.HasErrors() {
		return fieldMessages(ve)
	}

	if appErr, ok := errors.AsAppError(err); ok {
		msg := errors.GetUserMessage(err)
		if appErr.IsType(errors.ErrorTypeNotFound) {
			msg += ". The list was out of date and has been refreshed"
		}
		return msg
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.GetUserMessage(errors.NewTimeoutError("command", nil))
	case stderrors.Is(err, context.Canceled):
		return "cancelled"
	}
	return err.Error()
}

func fieldMessages(ve *validation.ValidationError) string {
	messages := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		messages = append(messages, fe.Message)
	}
	return strings.Join(messages, "; ")
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsAuthRequiredError checks if an error asks the user to sign in
func (eh *ErrorHandler) IsAuthRequiredError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeAuthRequired)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
