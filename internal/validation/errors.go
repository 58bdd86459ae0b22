package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Rule names the check a field failed
type Rule string

const (
	RuleRequired Rule = "required"
	RuleFormat   Rule = "format"
	RuleLength   Rule = "length"
	RuleValue    Rule = "value"
	RuleControl  Rule = "control_characters"
)

// FieldError is one failed check on one field. Message is shown to users as is.
type FieldError struct {
	Field   string
	Rule    Rule
	Message string
	Value   interface{}
}

func (fe FieldError) Error() string {
	return fe.Message
}

// ValidationError collects every field that failed so all problems are
// reported at once.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError returns an empty collector
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return ve.Errors[0].Message
	}
	return fmt.Sprintf("%d validation errors: %s", len(ve.Errors), strings.Join(ve.messages(""), "; "))
}

// IsValidationError checks if an error is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HasErrors reports whether any check failed
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Err returns ve when a check failed and nil otherwise
func (ve *ValidationError) Err() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Merge appends the field errors carried by err. Errors of other types are ignored.
func (ve *ValidationError) Merge(err error) {
	var other *ValidationError
	if errors.As(err, &other) {
		ve.Errors = append(ve.Errors, other.Errors...)
	}
}

func (ve *ValidationError) add(field string, rule Rule, value interface{}, format string, args ...interface{}) {
	ve.Errors = append(ve.Errors, FieldError{
		Field:   field,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
	})
}

// Required records a missing value
func (ve *ValidationError) Required(field string) {
	ve.add(field, RuleRequired, nil, "%s is required", field)
}

// Format records a value with the wrong shape
func (ve *ValidationError) Format(field string, value interface{}, expected string) {
	ve.add(field, RuleFormat, value, "%s must be a %s", field, expected)
}

// TooLong records a value over max characters; length is the measured size
func (ve *ValidationError) TooLong(field string, length, max int) {
	ve.add(field, RuleLength, length, "%s must be at most %d characters long (got %d)", field, max, length)
}

// Invalid records a value outside the accepted set
func (ve *ValidationError) Invalid(field string, value interface{}, reason string) {
	ve.add(field, RuleValue, value, "%s has invalid value: %s", field, reason)
}

// ControlCharacters records text carrying terminal control codes
func (ve *ValidationError) ControlCharacters(field string, value interface{}) {
	ve.add(field, RuleControl, value, "%s contains control characters", field)
}

// UserMessage renders the failures for display, one per line when there are several
func (ve *ValidationError) UserMessage() string {
	switch len(ve.Errors) {
	case 0:
		return "Input validation failed"
	case 1:
		return ve.Errors[0].Message
	}
	return "Please fix the following:\n" + strings.Join(ve.messages("- "), "\n")
}

func (ve *ValidationError) messages(prefix string) []string {
	out := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = prefix + fe.Message
	}
	return out
}
