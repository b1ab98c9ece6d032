package schema

// Kind is the value type a field collects.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindEnum    Kind = "enum"
)

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindDate, KindEnum:
		return true
	default:
		return false
	}
}

// Field describes a single input. Struct fields are annotated so descriptors
// can be serialised for renderers or debugging output.
type Field struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	// Coerce converts textual (or numeric, for dates) input into the field
	// kind before rules run. Without it only native Go values are accepted.
	Coerce     bool     `json:"coerce,omitempty"`
	Default    any      `json:"default,omitempty"`
	HasDefault bool     `json:"-"`
	Options    []string `json:"options,omitempty"`
	// RequiredMessage overrides the "<name> is required" message.
	RequiredMessage string `json:"requiredMessage,omitempty"`
	// InvalidTypeMessage overrides the message reported when the value cannot
	// be converted to Kind.
	InvalidTypeMessage string `json:"invalidTypeMessage,omitempty"`
	Rules              []Rule `json:"rules,omitempty"`
}

// WithDefault returns a copy of f carrying the supplied default value.
func (f Field) WithDefault(value any) Field {
	f.Default = value
	f.HasDefault = true
	return f
}

// Rule returns the first rule registered under name.
func (f Field) Rule(name string) (Rule, bool) {
	for _, rule := range f.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// HasOption reports whether value is one of the enum options.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}
