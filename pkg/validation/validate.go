// Package validation applies a schema to a Form Value Set. Validate is a pure
// function: for every field in declaration order it substitutes defaults,
// checks presence, converts the raw value to the field kind and runs the
// field rules until the first failure. Failures are field scoped and never
// stop other fields from being checked.
package validation

import (
	"fmt"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// Result is the outcome of Validate. Values only holds typed values for
// fields that passed (or received their default); Errors holds one issue per
// failing field.
type Result struct {
	Values map[string]any `json:"values"`
	Errors Errors         `json:"errors,omitempty"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns Errors as an error, or nil when the result is valid.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r.Errors
}

// Validate checks values against s. Keys not declared by s are ignored and
// never appear in the typed result.
func Validate(s *schema.Schema, values map[string]any) Result {
	result := Result{Values: make(map[string]any)}
	for _, field := range s.Fields() {
		raw, present := values[field.Name]
		value, keep, issue := ValidateField(field, raw, present)
		if issue != nil {
			if result.Errors == nil {
				result.Errors = make(Errors)
			}
			result.Errors[field.Name] = *issue
			continue
		}
		if keep {
			result.Values[field.Name] = value
		}
	}
	return result
}

// ValidateField validates a single raw value. keep is false when the field
// is optional, absent and has no default.
func ValidateField(field schema.Field, raw any, present bool) (value any, keep bool, issue *Issue) {
	if absent(field, raw, present) {
		if field.HasDefault {
			return field.Default, true, nil
		}
		if field.Required {
			return nil, false, &Issue{
				Field:   field.Name,
				Code:    CodeRequired,
				Message: requiredMessage(field),
			}
		}
		return nil, false, nil
	}

	typed, ok := convert(field, raw)
	if !ok {
		return nil, false, &Issue{
			Field:   field.Name,
			Code:    CodeInvalidType,
			Message: invalidTypeMessage(field, raw),
		}
	}

	for _, rule := range field.Rules {
		if rule.Check(typed) {
			continue
		}
		return nil, false, &Issue{
			Field:   field.Name,
			Code:    CodeConstraint,
			Rule:    rule.Name,
			Message: rule.Message,
		}
	}
	return typed, true, nil
}

func requiredMessage(field schema.Field) string {
	if field.RequiredMessage != "" {
		return field.RequiredMessage
	}
	return fmt.Sprintf("%s is required", field.Name)
}
