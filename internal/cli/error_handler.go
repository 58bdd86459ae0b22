package cli

import (
	"fmt"

	"notes/internal/errors"
	"notes/internal/validation"

	"go.uber.org/zap"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct {
	log *zap.Logger
}

// NewErrorHandler creates a new error handler. System failures are logged to
// log before being turned into user messages; user mistakes are not.
func NewErrorHandler(log *zap.Logger) *ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorHandler{log: log}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	eh.record(operation, err)

	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.UserMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	// Fallback for unknown errors
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	eh.record("", err)

	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("%s", validationErr.UserMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("%s", errors.GetUserMessage(err))
	}

	return err
}

// Warning formats a non-fatal persistence problem for display
func (eh *ErrorHandler) Warning(err error) string {
	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err)
	}
	return err.Error()
}

// record logs err when it points at a system failure rather than bad input
func (eh *ErrorHandler) record(operation string, err error) {
	if err == nil || validation.IsValidationError(err) || !errors.ShouldLogError(err) {
		return
	}
	fields := []zap.Field{zap.String("code", errors.GetErrorCode(err)), zap.Error(err)}
	if operation != "" {
		fields = append(fields, zap.String("operation", operation))
	}
	if appErr, ok := errors.AsAppError(err); ok && len(appErr.Context) > 0 {
		fields = append(fields, zap.Any("context", appErr.Context))
	}
	eh.log.Error("command failed", fields...)
}
