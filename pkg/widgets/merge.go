package widgets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// ErrUnknownVariant is returned when configuration overrides a field with a
// variant the registry does not know.
var ErrUnknownVariant = errors.New("widgets: unknown control variant")

// SelectOption is one choice of a select or radio control.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Control is the fully merged presentation of one schema field. Renderers
// consume controls; validation keeps working off the schema.
type Control struct {
	Name    string      `json:"name"`
	Kind    schema.Kind `json:"kind"`
	Variant string      `json:"variant"`
	Label   string      `json:"label"`
	// Description is sanitised HTML.
	Description string         `json:"description,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	InputType   string         `json:"inputType,omitempty"`
	Required    bool           `json:"required"`
	Options     []SelectOption `json:"options,omitempty"`
	Default     any            `json:"default,omitempty"`
	HasDefault  bool           `json:"-"`
	// Attributes are extra input attributes: rule-derived constraints
	// (minlength, max, ...) followed by configured attributes.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// IsToggle reports whether the control edits a boolean.
func (c Control) IsToggle() bool {
	return c.Variant == VariantCheckbox || c.Variant == VariantSwitch
}

// IsChoice reports whether the control picks from Options.
func (c Control) IsChoice() bool {
	return c.Variant == VariantSelect || c.Variant == VariantRadio
}

// MergeOption customises Merge.
type MergeOption func(*mergeConfig)

type mergeConfig struct {
	registry *Registry
	policy   fieldconfig.UnknownKeyPolicy
}

// WithRegistry resolves default variants through reg instead of the built-in
// registry.
func WithRegistry(reg *Registry) MergeOption {
	return func(cfg *mergeConfig) {
		if reg != nil {
			cfg.registry = reg
		}
	}
}

// WithUnknownKeys selects how configuration keys that are not schema fields
// are handled. The default is fieldconfig.UnknownReject.
func WithUnknownKeys(policy fieldconfig.UnknownKeyPolicy) MergeOption {
	return func(cfg *mergeConfig) {
		cfg.policy = policy
	}
}

// Merge combines s with cfg and returns one control per schema field in
// declaration order. A field without configuration falls back to the variant
// its kind resolves to.
func Merge(s *schema.Schema, cfg fieldconfig.Config, opts ...MergeOption) ([]Control, error) {
	if s == nil {
		return nil, errors.New("widgets: schema is nil")
	}
	options := mergeConfig{policy: fieldconfig.UnknownReject}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.registry == nil {
		options.registry = NewRegistry()
	}

	checked, err := cfg.Check(s, options.policy)
	if err != nil {
		return nil, fmt.Errorf("widgets: %w", err)
	}

	controls := make([]Control, 0, s.Len())
	for _, field := range s.Fields() {
		hints, _ := checked.Field(field.Name)
		control, err := mergeField(options.registry, field, hints)
		if err != nil {
			return nil, err
		}
		controls = append(controls, control)
	}
	return controls, nil
}

func mergeField(reg *Registry, field schema.Field, hints fieldconfig.FieldConfig) (Control, error) {
	variant, err := resolveVariant(reg, field, hints)
	if err != nil {
		return Control{}, err
	}

	control := Control{
		Name:        field.Name,
		Kind:        field.Kind,
		Variant:     variant,
		Label:       firstNonEmpty(hints.Label, field.Label, Humanize(field.Name)),
		Description: fieldconfig.SanitizeDescription(firstNonEmpty(hints.Description, field.Description)),
		Placeholder: hints.InputProps.Placeholder,
		InputType:   firstNonEmpty(strings.TrimSpace(hints.InputProps.Type), formatInputType(variant, field), inputTypeFor(variant)),
		Required:    field.Required,
		Default:     field.Default,
		HasDefault:  field.HasDefault,
	}
	if hints.InputProps.Required != nil && *hints.InputProps.Required {
		control.Required = true
	}
	for _, option := range field.Options {
		control.Options = append(control.Options, SelectOption{Value: option, Label: option})
	}

	attrs := constraintAttributes(field)
	for key, value := range hints.InputProps.Attributes {
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[key] = value
	}
	control.Attributes = attrs
	return control, nil
}

func resolveVariant(reg *Registry, field schema.Field, hints fieldconfig.FieldConfig) (string, error) {
	if override := strings.TrimSpace(hints.FieldType); override != "" {
		if !reg.Known(override) {
			return "", fmt.Errorf("%w %q for field %q", ErrUnknownVariant, override, field.Name)
		}
		return override, nil
	}
	variant, ok := reg.Resolve(field)
	if !ok {
		return VariantFallback, nil
	}
	// A text field configured as a password input is presented as one.
	if variant == VariantText && strings.EqualFold(strings.TrimSpace(hints.InputProps.Type), "password") {
		return VariantPassword, nil
	}
	return variant, nil
}

func inputTypeFor(variant string) string {
	switch variant {
	case VariantText, VariantFallback:
		return "text"
	case VariantPassword:
		return "password"
	case VariantNumber:
		return "number"
	case VariantDate:
		return "date"
	case VariantCheckbox, VariantSwitch:
		return "checkbox"
	case VariantRadio:
		return "radio"
	default:
		return ""
	}
}

// formatInputType picks email/url inputs for text fields carrying the
// matching format rule.
func formatInputType(variant string, field schema.Field) string {
	if variant != VariantText {
		return ""
	}
	for _, rule := range field.Rules {
		switch rule.Name {
		case schema.RuleEmail:
			return "email"
		case schema.RuleURL:
			return "url"
		}
	}
	return ""
}

func constraintAttributes(field schema.Field) map[string]string {
	names := map[string]string{
		schema.RuleMin:       "min",
		schema.RuleMax:       "max",
		schema.RuleMinLength: "minlength",
		schema.RuleMaxLength: "maxlength",
		schema.RulePattern:   "pattern",
		schema.RuleMinDate:   "min",
		schema.RuleMaxDate:   "max",
	}
	var attrs map[string]string
	for _, rule := range field.Rules {
		attr, ok := names[rule.Name]
		if !ok {
			continue
		}
		value := rule.Param("value")
		if rule.Name == schema.RulePattern {
			value = rule.Param("pattern")
		}
		if value == "" {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		if _, exists := attrs[attr]; !exists {
			attrs[attr] = value
		}
	}
	return attrs
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
