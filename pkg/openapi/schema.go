package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// Extensions read from component and property schemas.
const (
	ExtensionOrder              = "x-order"
	ExtensionSubmitLabel        = "x-submit-label"
	ExtensionRequiredMessage    = "x-required-message"
	ExtensionInvalidTypeMessage = "x-invalid-type-message"
)

// ErrComponentNotFound is returned when the document lacks the requested
// component schema.
var ErrComponentNotFound = errors.New("openapi: component schema not found")

// Components lists the component schema names declared by data, sorted.
func Components(ctx context.Context, data []byte) ([]string, error) {
	doc, err := parseDocument(ctx, data)
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SchemaFromOpenAPI converts components.schemas.<component> of an OpenAPI 3
// document into a form schema. Properties become fields ordered by their
// x-order extension, then by name. Unsupported property types (objects,
// arrays) are rejected.
func SchemaFromOpenAPI(ctx context.Context, data []byte, component string) (schema.Document, error) {
	doc, err := parseDocument(ctx, data)
	if err != nil {
		return schema.Document{}, err
	}
	if doc.Components == nil {
		return schema.Document{}, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return schema.Document{}, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	root := ref.Value

	required := make(map[string]struct{}, len(root.Required))
	for _, name := range root.Required {
		required[name] = struct{}{}
	}

	names := orderedProperties(root.Properties)
	fields := make([]schema.Field, 0, len(names))
	for _, name := range names {
		prop := root.Properties[name]
		if prop == nil || prop.Value == nil {
			return schema.Document{}, fmt.Errorf("openapi: property %q of %q is unresolved", name, component)
		}
		_, isRequired := required[name]
		field, err := fieldFromProperty(name, prop.Value, isRequired)
		if err != nil {
			return schema.Document{}, fmt.Errorf("openapi: component %q: %w", component, err)
		}
		fields = append(fields, field)
	}

	s, err := schema.New(fields...)
	if err != nil {
		return schema.Document{}, fmt.Errorf("openapi: component %q: %w", component, err)
	}

	title := root.Title
	if title == "" {
		title = component
	}
	return schema.Document{
		Title:       title,
		Description: root.Description,
		SubmitLabel: stringExtension(root.Extensions, ExtensionSubmitLabel),
		Schema:      s,
	}, nil
}

func parseDocument(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

func fieldFromProperty(name string, prop *openapi3.Schema, required bool) (schema.Field, error) {
	field := schema.Field{
		Name:               name,
		Label:              prop.Title,
		Description:        prop.Description,
		Required:           required,
		RequiredMessage:    stringExtension(prop.Extensions, ExtensionRequiredMessage),
		InvalidTypeMessage: stringExtension(prop.Extensions, ExtensionInvalidTypeMessage),
	}

	typ := schemaType(prop.Type)
	switch {
	case len(prop.Enum) > 0:
		field.Kind = schema.KindEnum
		for _, option := range prop.Enum {
			field.Options = append(field.Options, fmt.Sprint(option))
		}
	case typ == "string" && (prop.Format == "date" || prop.Format == "date-time"):
		field.Kind = schema.KindDate
		field.Coerce = true
	case typ == "string" || typ == "":
		field.Kind = schema.KindString
		if err := stringRules(&field, prop); err != nil {
			return schema.Field{}, err
		}
	case typ == "number" || typ == "integer":
		field.Kind = schema.KindNumber
		field.Coerce = true
		numberRules(&field, prop, typ == "integer")
	case typ == "boolean":
		field.Kind = schema.KindBoolean
		field.Coerce = true
	default:
		return schema.Field{}, fmt.Errorf("property %q has unsupported type %q", name, typ)
	}

	if prop.Default != nil {
		field = field.WithDefault(prop.Default)
	}
	return field, nil
}

func stringRules(field *schema.Field, prop *openapi3.Schema) error {
	if prop.MinLength > 0 {
		field.Rules = append(field.Rules, schema.MinLength(int(prop.MinLength), ""))
	}
	if prop.MaxLength != nil {
		field.Rules = append(field.Rules, schema.MaxLength(int(*prop.MaxLength), ""))
	}
	if prop.Pattern != "" {
		re, err := regexp.Compile(prop.Pattern)
		if err != nil {
			return fmt.Errorf("property %q has invalid pattern: %w", field.Name, err)
		}
		field.Rules = append(field.Rules, schema.Pattern(re, ""))
	}
	switch prop.Format {
	case "email":
		field.Rules = append(field.Rules, schema.Email(""))
	case "uri", "url":
		field.Rules = append(field.Rules, schema.URL(""))
	}
	return nil
}

func numberRules(field *schema.Field, prop *openapi3.Schema, integer bool) {
	if integer {
		field.Rules = append(field.Rules, schema.Refine("integer", "Expected integer, received float", func(value any) bool {
			n, ok := value.(float64)
			return ok && n == math.Trunc(n)
		}))
	}
	if prop.Min != nil {
		field.Rules = append(field.Rules, schema.Min(*prop.Min, ""))
	}
	if prop.Max != nil {
		field.Rules = append(field.Rules, schema.Max(*prop.Max, ""))
	}
}

func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, typ := range types.Slice() {
		if typ != "null" {
			return typ
		}
	}
	return ""
}

// orderedProperties sorts by x-order (missing orders sort last), then name.
func orderedProperties(props openapi3.Schemas) []string {
	type entry struct {
		name  string
		order float64
	}
	entries := make([]entry, 0, len(props))
	for name, ref := range props {
		order := math.Inf(1)
		if ref != nil && ref.Value != nil {
			if n, ok := numberExtension(ref.Value.Extensions, ExtensionOrder); ok {
				order = n
			}
		}
		entries = append(entries, entry{name: name, order: order})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].name < entries[j].name
	})
	names := make([]string, len(entries))
	for idx, e := range entries {
		names[idx] = e.name
	}
	return names
}

func numberExtension(ext map[string]any, key string) (float64, bool) {
	raw, ok := ext[key]
	if !ok {
		return 0, false
	}
	if s, ok := raw.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return n, err == nil
	}
	if stringer, ok := raw.(fmt.Stringer); ok {
		n, err := strconv.ParseFloat(stringer.String(), 64)
		return n, err == nil
	}
	return schema.NumberValue(raw)
}

func stringExtension(ext map[string]any, key string) string {
	if s, ok := ext[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
