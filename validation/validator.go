package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/webhost/errors"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects the failures of hand-written checks, typically the
// cross-field rules of a config section. Every method returns the receiver
// so checks chain; nothing stops at the first failure.
type Validator struct {
	fields []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

func (v *Validator) expect(ok bool, field, message string) *Validator {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: message})
	}
	return v
}

// Required fails for a blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.expect(strings.TrimSpace(value) != "", field, "is required")
}

// Range fails outside [lo, hi].
func (v *Validator) Range(field string, value, lo, hi int) *Validator {
	return v.expect(value >= lo && value <= hi, field, fmt.Sprintf("must be between %d and %d", lo, hi))
}

// Min fails below lo.
func (v *Validator) Min(field string, value, lo int) *Validator {
	return v.expect(value >= lo, field, fmt.Sprintf("must be at least %d", lo))
}

// OneOf fails for a value outside allowed. An empty value passes; pair with
// Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	return v.expect(value == "" || slices.Contains(allowed, value), field, "must be one of: "+strings.Join(allowed, ", "))
}

// Check records err against field. Use it to fold the Validate of a nested
// section into its parent.
func (v *Validator) Check(field string, err error) *Validator {
	if err != nil {
		return v.expect(false, field, err.Error())
	}
	return v
}

// Custom fails when ok is false.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	return v.expect(ok, field, message)
}

func (v *Validator) HasErrors() bool { return len(v.fields) > 0 }

// Errors returns the recorded failures in check order.
func (v *Validator) Errors() []FieldError { return v.fields }

// Validate returns the failures as one INVALID_INPUT error, or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return fieldErrors(v.fields)
}

// Err is Validate typed as error, so a nil result compares equal to nil.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func fieldErrors(fields []FieldError) *errors.AppError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}
