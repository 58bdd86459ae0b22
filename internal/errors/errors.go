package errors

import (
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
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

// NewStorageError creates a new error for a failed durable storage operation
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("storage operation failed: %s", operation),
		Code:    "STORAGE_ERROR",
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

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Context: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// NewDecodeError creates an error for persisted data that cannot be read back
func NewDecodeError(source string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDecode,
		Message: fmt.Sprintf("cannot decode %s", source),
		Code:    "DECODE_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"source": source,
		},
	}
}

// NewEncodeError creates an error for state that cannot be serialized
func NewEncodeError(target string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeEncode,
		Message: fmt.Sprintf("cannot encode %s", target),
		Code:    "ENCODE_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"target": target,
		},
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
		case ErrorTypeStorage:
			return "A storage error occurred. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		case ErrorTypePermission:
			return appErr.Message
		case ErrorTypeDecode:
			return "Saved items could not be read; starting with an empty list."
		case ErrorTypeEncode:
			return "Items could not be saved; changes are kept in memory only."
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
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput:
			return false // These are user errors, not system errors
		case ErrorTypeStorage, ErrorTypeTimeout, ErrorTypePermission, ErrorTypeDecode, ErrorTypeEncode:
			return true
		default:
			return true
		}
	}
	return true // Unknown errors should be logged
}
