package fieldconfig

import (
	"sort"
	"strings"
)

// InputProps are input-level attributes. They only influence presentation:
// Required adds the HTML required attribute but never changes validation.
type InputProps struct {
	Type        string            `json:"type,omitempty" yaml:"type,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    *bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// FieldConfig carries the presentation hints for one schema field.
type FieldConfig struct {
	// FieldType overrides the control variant derived from the field kind
	// (for example "switch" instead of "checkbox").
	FieldType string `json:"fieldType,omitempty" yaml:"fieldType,omitempty"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	// Description may contain a small HTML subset (links, emphasis). Use
	// SanitizeDescription before emitting it.
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	InputProps  InputProps `json:"inputProps,omitempty" yaml:"inputProps,omitempty"`
	// OriginalKey keeps the key as written in the source document.
	OriginalKey string `json:"-" yaml:"-"`
}

// Config maps schema field names to presentation hints. The zero value is an
// empty configuration; every field then falls back to its kind default.
type Config struct {
	fields map[string]FieldConfig
}

// New builds a Config from a map, trimming keys and cloning entries.
func New(fields map[string]FieldConfig) Config {
	cfg := Config{fields: make(map[string]FieldConfig, len(fields))}
	for key, value := range fields {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		cloned := cloneFieldConfig(value)
		if cloned.OriginalKey == "" {
			cloned.OriginalKey = key
		}
		cfg.fields[trimmed] = cloned
	}
	return cfg
}

// Field returns the hints for name.
func (c Config) Field(name string) (FieldConfig, bool) {
	if c.fields == nil {
		return FieldConfig{}, false
	}
	cfg, ok := c.fields[name]
	return cfg, ok
}

// Keys lists the configured field names sorted alphabetically.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.fields))
	for key := range c.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of configured fields.
func (c Config) Len() int {
	return len(c.fields)
}

func cloneFieldConfig(cfg FieldConfig) FieldConfig {
	out := cfg
	if cfg.InputProps.Required != nil {
		required := *cfg.InputProps.Required
		out.InputProps.Required = &required
	}
	if len(cfg.InputProps.Attributes) > 0 {
		out.InputProps.Attributes = make(map[string]string, len(cfg.InputProps.Attributes))
		for k, v := range cfg.InputProps.Attributes {
			out.InputProps.Attributes[k] = v
		}
	}
	return out
}
