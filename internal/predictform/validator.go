package predictform

import (
	"fmt"
	"strings"
)

// Validation is the outcome of whole-form validation.
type Validation struct {
	IsValid bool
	Errors  []string
}

// Validator checks a serialized record before it is sent.
type Validator interface {
	Validate(rec Record) Validation
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(rec Record) Validation

func (f ValidatorFunc) Validate(rec Record) Validation {
	return f(rec)
}

// HealthValidator requires every declared field to be present, numeric and in range.
type HealthValidator struct {
	Fields []FieldSpec
}

// NewHealthValidator constructs a HealthValidator for the given fields.
func NewHealthValidator(fields []FieldSpec) HealthValidator {
	return HealthValidator{Fields: append([]FieldSpec(nil), fields...)}
}

func (v HealthValidator) Validate(rec Record) Validation {
	var errs []string
	for _, spec := range v.Fields {
		raw := strings.TrimSpace(rec[spec.Name])
		if raw == "" {
			errs = append(errs, fmt.Sprintf("%s is required", spec.Label))
			continue
		}
		value, ok := parseNumber(raw)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s must be a valid number", spec.Label))
			continue
		}
		if value < spec.Min || value > spec.Max {
			errs = append(errs, fmt.Sprintf("%s must be between %s and %s", spec.Label, FormatNumber(spec.Min), FormatNumber(spec.Max)))
		}
	}
	return Validation{IsValid: len(errs) == 0, Errors: errs}
}
