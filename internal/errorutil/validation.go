package errorutil

import (
	"fmt"
	"strings"
)

// ValidationError represents a collection of validation failures
type ValidationError struct {
	Context string
	Errors  []FieldError
}

// FieldError represents a single field validation failure
type FieldError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s validation failed", e.Context)
	}

	messages := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", fieldErr.Field, fieldErr.Message))
	}

	return fmt.Sprintf("%s validation failed: %s", e.Context, strings.Join(messages, "; "))
}

// Fields returns the names of the failing fields in order
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Errors))
	for i, fieldErr := range e.Errors {
		fields[i] = fieldErr.Field
	}
	return fields
}

// ValidationBuilder accumulates field failures so a whole configuration
// section is reported at once
type ValidationBuilder struct {
	context string
	errors  []FieldError
}

// NewValidationBuilder creates a new validation builder with context
func NewValidationBuilder(context string) *ValidationBuilder {
	return &ValidationBuilder{
		context: context,
		errors:  make([]FieldError, 0),
	}
}

func (vb *ValidationBuilder) add(field string, value interface{}, message string) *ValidationBuilder {
	vb.errors = append(vb.errors, FieldError{Field: field, Value: value, Message: message})
	return vb
}

// RequiredString validates that a string field is not empty
func (vb *ValidationBuilder) RequiredString(field, value string) *ValidationBuilder {
	if IsEmptyString(value) {
		return vb.add(field, value, "is required")
	}
	return vb
}

// RequiredInt validates that an integer field is positive
func (vb *ValidationBuilder) RequiredInt(field string, value int) *ValidationBuilder {
	if value <= 0 {
		return vb.add(field, value, "must be greater than 0")
	}
	return vb
}

// InRange validates min <= value <= max
func (vb *ValidationBuilder) InRange(field string, value, min, max int) *ValidationBuilder {
	if value < min || value > max {
		return vb.add(field, value, fmt.Sprintf("must be between %d and %d, got %d", min, max, value))
	}
	return vb
}

// OneOf validates that value is one of the allowed options
func (vb *ValidationBuilder) OneOf(field, value string, options []string) *ValidationBuilder {
	if value == "" {
		return vb // Skip validation for empty strings
	}

	for _, option := range options {
		if value == option {
			return vb
		}
	}
	return vb.add(field, value, fmt.Sprintf("must be one of: %s", strings.Join(options, ", ")))
}

// Check records err against field when it is non-nil. It adapts validators
// that already return an error, such as locale or zone parsing.
func (vb *ValidationBuilder) Check(field string, value interface{}, err error) *ValidationBuilder {
	if err != nil {
		return vb.add(field, value, err.Error())
	}
	return vb
}

// Custom allows adding custom validation with a predicate function
func (vb *ValidationBuilder) Custom(field string, value interface{}, predicate func(interface{}) bool, message string) *ValidationBuilder {
	if !predicate(value) {
		return vb.add(field, value, message)
	}
	return vb
}

// ValidIf conditionally applies validation based on a condition
func (vb *ValidationBuilder) ValidIf(condition bool, validationFunc func(*ValidationBuilder) *ValidationBuilder) *ValidationBuilder {
	if condition {
		return validationFunc(vb)
	}
	return vb
}

// Build returns the validation error if any errors were collected, nil otherwise
func (vb *ValidationBuilder) Build() error {
	if len(vb.errors) == 0 {
		return nil
	}

	return &ValidationError{
		Context: vb.context,
		Errors:  vb.errors,
	}
}

// IsEmptyString checks if a string is empty after trimming whitespace
func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateConfig runs validations against a builder named after configName
func ValidateConfig(configName string, validations func(*ValidationBuilder) *ValidationBuilder) error {
	vb := NewValidationBuilder(configName + " configuration")
	vb = validations(vb)
	return vb.Build()
}
