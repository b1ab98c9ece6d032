// Package html renders a Page as a card-style HTML form using pongo2
// templates. Each control variant has its own partial under
// templates/controls; themes may point a variant at a different partial via
// the "controls.<variant>" key of their templates map.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-autoform/pkg/render"
	rendertemplate "github.com/goliatone/go-autoform/pkg/render/template"
	"github.com/goliatone/go-autoform/pkg/render/template/pongo"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

// DefaultSubmitLabel is used when the page does not set one.
const DefaultSubmitLabel = "Send now"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle. It must provide
// form.tpl, field.tpl and the controls/ partials.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer is the HTML card renderer.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine := cfg.templateRenderer
	if engine == nil {
		pongoEngine, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
		engine = pongoEngine
	}
	return &Renderer{templates: engine}, nil
}

// Name implements render.Renderer.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(page.Controls))
	for _, control := range page.Controls {
		markup, err := r.renderField(control, opts)
		if err != nil {
			return nil, err
		}
		fields = append(fields, markup)
	}

	method := opts.HTTPMethod()
	hidden := opts.Hidden
	if method != "GET" && method != "POST" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden("_method", method))
		method = "POST"
	}
	hiddenFields := make([]map[string]any, 0, len(hidden))
	for _, field := range render.SortedHiddenFields(hidden) {
		hiddenFields = append(hiddenFields, map[string]any{"name": field.Name, "value": field.Value})
	}

	submit := strings.TrimSpace(page.SubmitLabel)
	if submit == "" {
		submit = DefaultSubmitLabel
	}
	formID := "af-form"
	if page.ID != "" {
		formID = "af-form-" + page.ID
	}

	view := map[string]any{
		"form_id":      formID,
		"title":        page.Title,
		"description":  page.Description,
		"submit_label": submit,
		"method":       method,
		"action":       opts.Action,
		"hidden":       hiddenFields,
		"form_errors":  opts.FormErrors,
		"fields":       fields,
	}
	if cfg := opts.Theme; cfg != nil {
		view["theme_name"] = cfg.Theme
		view["theme_variant"] = cfg.Variant
		view["style"] = render.CSSVarsStyle(cfg)
		if cfg.AssetURL != nil {
			view["stylesheet"] = cfg.AssetURL("stylesheet")
		}
	}

	out, err := r.templates.RenderTemplate("form", view)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) renderField(control widgets.Control, opts render.RenderOptions) (string, error) {
	view := controlView(control, opts)

	partial := r.partialFor(control.Variant, opts)
	markup, err := r.templates.RenderTemplate(partial, view)
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s control for field %q: %w", control.Variant, control.Name, err)
	}
	view["control"] = strings.TrimSpace(markup)
	view["toggle"] = control.IsToggle()
	view["group"] = control.Variant == widgets.VariantRadio

	field, err := r.templates.RenderTemplate("field", view)
	if err != nil {
		return "", fmt.Errorf("html renderer: render field %q: %w", control.Name, err)
	}
	return field, nil
}

func (r *Renderer) partialFor(variant string, opts render.RenderOptions) string {
	if opts.Theme != nil {
		if override := strings.TrimSpace(opts.Theme.Partials["controls."+variant]); override != "" && r.templates.Exists(override) {
			return override
		}
	}
	switch variant {
	case widgets.VariantText, widgets.VariantPassword, widgets.VariantNumber, widgets.VariantDate:
		return "controls/input"
	}
	if name := "controls/" + variant; r.templates.Exists(name) {
		return name
	}
	return "controls/fallback"
}

func controlView(control widgets.Control, opts render.RenderOptions) map[string]any {
	id := controlID(control.Name)
	errors := opts.FieldErrors(control.Name)

	raw, ok := opts.Values[control.Name]
	if !ok && control.HasDefault {
		raw = control.Default
	}
	value := formatValue(raw)
	if control.Variant == widgets.VariantPassword {
		value = ""
	}

	var describedBy []string
	if control.Description != "" {
		describedBy = append(describedBy, id+"-description")
	}
	if len(errors) > 0 {
		describedBy = append(describedBy, id+"-error")
	}

	options := make([]map[string]any, 0, len(control.Options))
	for _, option := range control.Options {
		options = append(options, map[string]any{
			"value":    option.Value,
			"label":    option.Label,
			"selected": value != "" && option.Value == value,
		})
	}

	inputType := control.InputType
	if inputType == "" {
		inputType = "text"
	}

	return map[string]any{
		"id":          id,
		"name":        control.Name,
		"variant":     control.Variant,
		"label":       control.Label,
		"description": control.Description,
		"placeholder": control.Placeholder,
		"input_type":  inputType,
		"required":    control.Required,
		"value":       value,
		"checked":     isChecked(raw),
		"options":     options,
		"attrs":       sortedAttributes(control.Attributes),
		"errors":      errors,
		"invalid":     len(errors) > 0,
		"describedby": strings.Join(describedBy, " "),
	}
}

func sortedAttributes(attrs map[string]string) []map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string]string, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]string{"name": name, "value": attrs[name]})
	}
	return out
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(schema.DateLayout)
	}
	if n, ok := schema.NumberValue(value); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

func isChecked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}
