package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"notes/internal/config"

	"github.com/google/uuid"
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{config: nil} // Use defaults
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ContentLength is the length limits apply to: characters, not bytes
func (v *Validator) ContentLength(content string) int {
	return utf8.RuneCountInString(content)
}

// IsValidContentLength checks the content against the configured maximum.
// Zero disables the limit.
func (v *Validator) IsValidContentLength(content string) bool {
	maxLen := v.getContentMaxLength()
	return maxLen <= 0 || v.ContentLength(content) <= maxLen
}

// HasOnlyPrintableContent rejects control characters other than newlines and tabs
func (v *Validator) HasOnlyPrintableContent(content string) bool {
	for _, r := range content {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return false
		}
	}
	return utf8.ValidString(content)
}

// IsValidItemID checks that an id is a UUID in canonical lowercase form,
// the only form the store generates
func (v *Validator) IsValidItemID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// RequiresContent reports whether empty content is rejected
func (v *Validator) RequiresContent() bool {
	if v.config != nil {
		return v.config.Validation.RequireContent
	}
	return true
}

// getContentMaxLength returns configured maximum content length or default
func (v *Validator) getContentMaxLength() int {
	if v.config != nil {
		return v.config.Validation.ContentMaxLength
	}
	return 10000 // Default maximum
}
