package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema wraps every descriptor problem reported by New. A malformed
// schema is a programming error, never a user-facing validation failure.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Schema is an ordered, immutable set of field descriptors. It is safe for
// concurrent readers.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New validates the descriptors and returns a Schema preserving their order.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for idx, field := range fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return nil, fmt.Errorf("%w: field %d has an empty name", ErrInvalidSchema, idx)
		}
		if _, exists := s.index[field.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, field.Name)
		}
		if !field.Kind.Valid() {
			return nil, fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidSchema, field.Name, field.Kind)
		}
		if field.Kind == KindEnum && len(field.Options) == 0 {
			return nil, fmt.Errorf("%w: enum field %q declares no options", ErrInvalidSchema, field.Name)
		}
		for ruleIdx, rule := range field.Rules {
			if rule.Check == nil {
				return nil, fmt.Errorf("%w: field %q rule %d (%s) has no check", ErrInvalidSchema, field.Name, ruleIdx, rule.Name)
			}
			if !rule.Applies(field.Kind) {
				return nil, fmt.Errorf("%w: rule %q does not apply to %s field %q", ErrInvalidSchema, rule.Name, field.Kind, field.Name)
			}
		}
		if field.HasDefault {
			value, err := normalizeDefault(field)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidSchema, field.Name, err)
			}
			field.Default = value
		}
		field.Rules = append([]Rule(nil), field.Rules...)
		field.Options = append([]string(nil), field.Options...)

		s.index[field.Name] = len(s.fields)
		s.fields = append(s.fields, field)
	}
	return s, nil
}

// MustNew is New that panics on error. Useful for package-level schemas.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the descriptors in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Field looks up a descriptor by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	idx, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[idx], true
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Names lists field names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.fields))
	for idx, field := range s.fields {
		names[idx] = field.Name
	}
	return names
}

// Len reports the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}
