package validation

import (
	"strings"
	"testing"

	"notes/internal/config"
	"notes/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemValidator_ValidateContent(t *testing.T) {
	validator := NewItemValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
		errorType   Rule
	}{
		{"Valid content", "buy milk", false, ""},
		{"Multiline markdown", "# Plan\n\n- [ ] write tests", false, ""},
		{"Empty content", "", true, RuleRequired},
		{"Whitespace only", " \n\t ", true, RuleRequired},
		{"Too long", strings.Repeat("a", 10001), true, RuleLength},
		{"Longest allowed", strings.Repeat("a", 10000), false, ""},
		{"Control characters", "bell\a", true, RuleControl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateContent(tt.input)
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "expected *ValidationError, got %T", err)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.errorType, validationErr.Errors[0].Rule)
			assert.Equal(t, "content", validationErr.Errors[0].Field)
		})
	}
}

func TestItemValidator_ContentLengthCountsCharacters(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.ContentMaxLength = 5
	validator := NewItemValidatorWithConfig(cfg)

	assert.NoError(t, validator.ValidateContent("héllo"))

	err := validator.ValidateContent("héllo wörld")
	require.Error(t, err)
	fieldErr := err.(*ValidationError).Errors[0]
	assert.Equal(t, RuleLength, fieldErr.Rule)
	assert.Equal(t, 11, fieldErr.Value)
	assert.Equal(t, "content must be at most 5 characters long (got 11)", fieldErr.Message)
}

func TestItemValidator_EmptyContentAllowedByConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.RequireContent = false
	validator := NewItemValidatorWithConfig(cfg)

	assert.NoError(t, validator.ValidateContent(""))
}

func TestItemValidator_ValidateKind(t *testing.T) {
	validator := NewItemValidator()

	assert.NoError(t, validator.ValidateKind(domain.KindNote))
	assert.NoError(t, validator.ValidateKind(domain.KindTask))

	err := validator.ValidateKind("event")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "must be note or task")
}

func TestItemValidator_ValidateItemID(t *testing.T) {
	validator := NewItemValidator()

	assert.NoError(t, validator.ValidateItemID("9b2f1d8e-4c3a-4f6b-8a1e-2d3c4b5a6f70"))

	err := validator.ValidateItemID("9B2F1D8E-4C3A-4F6B-8A1E-2D3C4B5A6F70")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id must be a lowercase UUID")

	err = validator.ValidateItemID("abc")
	require.Error(t, err)
	assert.Equal(t, RuleFormat, err.(*ValidationError).Errors[0].Rule)
}

func TestItemValidator_ValidateNewItem(t *testing.T) {
	validator := NewItemValidator()

	assert.NoError(t, validator.ValidateNewItem("x", domain.KindTask))

	err := validator.ValidateNewItem("", "event")
	require.Error(t, err)
	fieldErrs := err.(*ValidationError)
	assert.Len(t, fieldErrs.Errors, 2)
	assert.Equal(t, "kind", fieldErrs.Errors[0].Field)
	assert.Equal(t, "content", fieldErrs.Errors[1].Field)
	assert.Contains(t, fieldErrs.UserMessage(), "Please fix the following")
}
