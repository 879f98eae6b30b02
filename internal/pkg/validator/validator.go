// Package validator provides a thin wrapper around the go-playground/validator
// library, enabling declarative struct and single-value validation with
// standardized error formatting.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is returned as the first error in a multi-error chain
// when validation fails, so callers can detect validation failures explicitly.
var ErrValidationFailed = errors.New("validation failed")

// validator is a singleton go-playground validator, initialized on package load.
var validator *gvalidator.Validate

// errStringFormat describes a single field failure.
//
// Example: "'Address': value '0x' does not meet the requirements for the 'eth_addr' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError transforms a raw validator error into a structured multi-error
// chain rooted at ErrValidationFailed. Non-validation errors pass through.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks whether the given struct satisfies its `validate` tags.
// It returns nil on success, or a combined error that includes
// ErrValidationFailed plus one formatted message per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}

// ValidateVar checks a single value against the given validation tag
// (e.g., "required,eth_addr").
func ValidateVar(v any, tag string) error {
	if err := validator.Var(v, tag); err != nil {
		return formatError(err)
	}

	return nil
}
