package validation

import (
	"notes/internal/config"
	"notes/internal/domain"
)

// ItemValidator validates user supplied item fields
type ItemValidator struct {
	validator *Validator
}

// NewItemValidator creates an item validator with default rules
func NewItemValidator() *ItemValidator {
	return &ItemValidator{
		validator: NewValidator(),
	}
}

// NewItemValidatorWithConfig creates an item validator using the configured rules
func NewItemValidatorWithConfig(cfg *config.Config) *ItemValidator {
	return &ItemValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// ValidateContent checks item content for creation or update.
// Content is stored as given; trimming only decides emptiness.
func (iv *ItemValidator) ValidateContent(content string) error {
	validationError := NewValidationError()

	if iv.validator.RequiresContent() && !iv.validator.IsNonEmptyString(content) {
		validationError.Required("content")
		return validationError
	}

	if !iv.validator.IsValidContentLength(content) {
		validationError.TooLong("content", iv.validator.ContentLength(content), iv.validator.getContentMaxLength())
	}

	if !iv.validator.HasOnlyPrintableContent(content) {
		validationError.ControlCharacters("content", content)
	}

	return validationError.Err()
}

// ValidateKind checks that kind is note or task
func (iv *ItemValidator) ValidateKind(kind domain.Kind) error {
	if kind.IsValid() {
		return nil
	}
	validationError := NewValidationError()
	validationError.Invalid("kind", string(kind), "must be note or task")
	return validationError
}

// ValidateItemID checks that id looks like a generated item id
func (iv *ItemValidator) ValidateItemID(id string) error {
	if iv.validator.IsValidItemID(id) {
		return nil
	}
	validationError := NewValidationError()
	validationError.Format("id", id, "lowercase UUID")
	return validationError
}

// ValidateNewItem validates the arguments of an add operation
func (iv *ItemValidator) ValidateNewItem(content string, kind domain.Kind) error {
	validationError := NewValidationError()
	validationError.Merge(iv.ValidateKind(kind))
	validationError.Merge(iv.ValidateContent(content))
	return validationError.Err()
}
