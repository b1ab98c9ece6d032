package validation

import (
	"sort"
	"strings"
)

// Code classifies a field-level failure.
type Code string

const (
	// CodeRequired marks a required field that was absent.
	CodeRequired Code = "required"
	// CodeInvalidType marks a value that could not be converted to the field kind.
	CodeInvalidType Code = "invalid_type"
	// CodeConstraint marks a value that failed one of the field rules.
	CodeConstraint Code = "constraint"
)

// Issue is the first failure reported for a field.
type Issue struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

// Errors maps field names to their first failing issue. It implements error
// so callers can return it directly.
type Errors map[string]Issue

// Error renders the issues sorted by field name.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: no errors"
	}
	names := e.names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e[name].Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Messages flattens the issues into field → message.
func (e Errors) Messages() map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for name, issue := range e {
		out[name] = issue.Message
	}
	return out
}

// Issues returns the issues sorted by field name.
func (e Errors) Issues() []Issue {
	if len(e) == 0 {
		return nil
	}
	names := e.names()
	out := make([]Issue, 0, len(names))
	for _, name := range names {
		out = append(out, e[name])
	}
	return out
}

// Has reports whether field failed with the given code.
func (e Errors) Has(field string, code Code) bool {
	issue, ok := e[field]
	return ok && issue.Code == code
}

func (e Errors) names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
