package schema

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is a schema plus the page copy declared alongside it.
type Document struct {
	Title       string
	Description string
	SubmitLabel string
	Schema      *Schema
}

type documentFile struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	SubmitLabel string      `yaml:"submitLabel"`
	Fields      []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	Name        string       `yaml:"name"`
	Kind        string       `yaml:"kind"`
	Label       string       `yaml:"label"`
	Description string       `yaml:"description"`
	Required    bool         `yaml:"required"`
	Coerce      bool         `yaml:"coerce"`
	Default     any          `yaml:"default"`
	Options     []string     `yaml:"options"`
	Messages    messagesFile `yaml:"messages"`
	Rules       []ruleFile   `yaml:"rules"`
}

type messagesFile struct {
	Required    string `yaml:"required"`
	InvalidType string `yaml:"invalidType"`
}

type ruleFile struct {
	Rule    string `yaml:"rule"`
	Value   any    `yaml:"value"`
	Message string `yaml:"message"`
}

// LoadFile reads a YAML or JSON schema document from disk.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadFS reads a YAML or JSON schema document from fsys.
func LoadFS(fsys fs.FS, path string) (Document, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return parse(data, path)
}

// Parse decodes a YAML or JSON schema document. JSON input is accepted
// because it is valid YAML.
func Parse(data []byte) (Document, error) {
	return parse(data, "<inline>")
}

func parse(data []byte, source string) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("schema: document %s is empty", source)
	}
	var raw documentFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	if len(raw.Fields) == 0 {
		return Document{}, fmt.Errorf("schema: document %s declares no fields", source)
	}

	fields := make([]Field, 0, len(raw.Fields))
	for idx, entry := range raw.Fields {
		field, err := entry.build()
		if err != nil {
			return Document{}, fmt.Errorf("schema: %s field %d (%s): %w", source, idx, entry.Name, err)
		}
		fields = append(fields, field)
	}

	s, err := New(fields...)
	if err != nil {
		return Document{}, fmt.Errorf("schema: %s: %w", source, err)
	}
	return Document{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		SubmitLabel: strings.TrimSpace(raw.SubmitLabel),
		Schema:      s,
	}, nil
}

func (f fieldFile) build() (Field, error) {
	field := Field{
		Name:               f.Name,
		Kind:               Kind(strings.TrimSpace(f.Kind)),
		Label:              f.Label,
		Description:        f.Description,
		Required:           f.Required,
		Coerce:             f.Coerce,
		Options:            f.Options,
		RequiredMessage:    f.Messages.Required,
		InvalidTypeMessage: f.Messages.InvalidType,
	}
	if f.Default != nil {
		field = field.WithDefault(f.Default)
	}
	for idx, entry := range f.Rules {
		rule, err := entry.build(field.Kind)
		if err != nil {
			return Field{}, fmt.Errorf("rule %d: %w", idx, err)
		}
		field.Rules = append(field.Rules, rule)
	}
	return field, nil
}

func (r ruleFile) build(kind Kind) (Rule, error) {
	name := strings.TrimSpace(r.Rule)
	switch name {
	case RuleMin, RuleMax:
		n, ok := NumberValue(r.Value)
		if !ok {
			return Rule{}, fmt.Errorf("%s expects a numeric value", name)
		}
		if name == RuleMin {
			return Min(n, r.Message), nil
		}
		return Max(n, r.Message), nil
	case RuleMinLength, RuleMaxLength:
		n, ok := r.Value.(int)
		if !ok || n < 0 {
			return Rule{}, fmt.Errorf("%s expects a non-negative integer", name)
		}
		if name == RuleMinLength {
			return MinLength(n, r.Message), nil
		}
		return MaxLength(n, r.Message), nil
	case RulePattern:
		expr, ok := r.Value.(string)
		if !ok || expr == "" {
			return Rule{}, fmt.Errorf("pattern expects an expression")
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return Rule{}, fmt.Errorf("pattern: %w", err)
		}
		return Pattern(re, r.Message), nil
	case RuleEmail:
		return Email(r.Message), nil
	case RuleURL:
		return URL(r.Message), nil
	case RuleMinDate, RuleMaxDate:
		t, err := dateParam(r.Value)
		if err != nil {
			return Rule{}, fmt.Errorf("%s: %w", name, err)
		}
		if name == RuleMinDate {
			return MinDate(t, r.Message), nil
		}
		return MaxDate(t, r.Message), nil
	case RuleEquals:
		want, err := equalsParam(kind, r.Value)
		if err != nil {
			return Rule{}, err
		}
		return Equals(want, r.Message), nil
	case "":
		return Rule{}, fmt.Errorf("rule name is required")
	default:
		return Rule{}, fmt.Errorf("unknown rule %q", name)
	}
}

func dateParam(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return ParseDate(v)
	default:
		return time.Time{}, fmt.Errorf("expects a date")
	}
}

func equalsParam(kind Kind, value any) (any, error) {
	switch kind {
	case KindNumber:
		if n, ok := NumberValue(value); ok {
			return n, nil
		}
	case KindDate:
		return dateParam(value)
	case KindBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	default:
		if s, ok := value.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("equals value %v does not match kind %s", value, kind)
}
