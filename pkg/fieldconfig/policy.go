package fieldconfig

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// UnknownKeyPolicy decides what happens to configuration keys that do not
// name a schema field.
type UnknownKeyPolicy int

const (
	// UnknownReject fails with *UnknownFieldsError. This is the default.
	UnknownReject UnknownKeyPolicy = iota
	// UnknownIgnore drops unknown keys.
	UnknownIgnore
)

// String implements fmt.Stringer.
func (p UnknownKeyPolicy) String() string {
	switch p {
	case UnknownIgnore:
		return "ignore"
	default:
		return "reject"
	}
}

// ParseUnknownKeyPolicy maps "reject"/"ignore" (case-insensitive) to a policy.
func ParseUnknownKeyPolicy(raw string) (UnknownKeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "reject", "strict":
		return UnknownReject, nil
	case "ignore", "strip":
		return UnknownIgnore, nil
	default:
		return UnknownReject, fmt.Errorf("fieldconfig: unknown key policy %q", raw)
	}
}

// UnknownFieldsError lists configuration keys that the schema does not declare.
type UnknownFieldsError struct {
	Fields []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("fieldconfig: configuration references unknown field(s) %s", strings.Join(e.Fields, ", "))
}

// Check enforces the subset invariant between c and s. With UnknownIgnore the
// returned Config has the unknown keys removed; with UnknownReject any unknown
// key yields *UnknownFieldsError.
func (c Config) Check(s *schema.Schema, policy UnknownKeyPolicy) (Config, error) {
	var unknown []string
	for _, key := range c.Keys() {
		if !s.Has(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return c, nil
	}
	if policy == UnknownReject {
		return Config{}, &UnknownFieldsError{Fields: unknown}
	}

	kept := make(map[string]FieldConfig, len(c.fields)-len(unknown))
	for key, value := range c.fields {
		if s.Has(key) {
			kept[key] = value
		}
	}
	return New(kept), nil
}
