package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/openapi"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/html"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects the loader used for Request.Source.
func WithLoader(loader *openapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithWidgetRegistry resolves control variants through reg.
func WithWidgetRegistry(reg *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = reg
	}
}

// WithUnknownKeys selects how field configuration keys that name no schema
// field are handled.
func WithUnknownKeys(policy fieldconfig.UnknownKeyPolicy) Option {
	return func(o *Orchestrator) {
		o.unknownKeys = policy
	}
}

// WithTransformer registers a Transformer that runs on the assembled page
// before rendering.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// WithThemeSelector resolves Request.ThemeName/ThemeVariant through selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks overrides the partials used when a theme does not
// provide its own.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}

// WithLogger sets the logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from a schema document and field
// configuration to rendered output. The zero configuration loads local files,
// rejects unknown configuration keys and renders HTML.
type Orchestrator struct {
	loader          *openapi.Loader
	registry        *render.Registry
	widgets         *widgets.Registry
	defaultRenderer string
	unknownKeys     fieldconfig.UnknownKeyPolicy
	transformers    []Transformer
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		unknownKeys:     fieldconfig.UnknownReject,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	o.applyDefaults()
	return o
}

// Request describes one form to assemble.
type Request struct {
	// Document bypasses the loader when the caller already holds a schema.
	Document *schema.Document

	// Source locates a declarative schema document, or an OpenAPI document
	// when Component is set.
	Source openapi.Source

	// Component selects components.schemas.<Component> of an OpenAPI source.
	Component string

	// Config carries the presentation hints merged onto the schema.
	Config fieldconfig.Config

	// FormID becomes Page.ID.
	FormID string

	// Renderer names the renderer to use; empty selects the default.
	Renderer string

	// ThemeName and ThemeVariant are resolved through the theme selector
	// unless RenderOptions.Theme is already set.
	ThemeName    string
	ThemeVariant string

	RenderOptions render.RenderOptions
}

// Generate assembles the page and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	page, err := o.Page(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := render.ResolveTheme(o.themeSelector, req.ThemeName, req.ThemeVariant, o.themeFallbacks)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
		opts.Theme = cfg
	}

	output, err := renderer.Render(ctx, page, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	o.logger.Debug("form rendered", "form", page.ID, "renderer", renderer.Name(), "bytes", len(output))
	return output, nil
}

// Page resolves the schema document, merges the field configuration and runs
// the registered transformers.
func (o *Orchestrator) Page(ctx context.Context, req Request) (render.Page, error) {
	if ctx == nil {
		return render.Page{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return render.Page{}, err
	}
	if err := o.initialiseErr; err != nil {
		return render.Page{}, err
	}

	doc, err := o.Document(ctx, req)
	if err != nil {
		return render.Page{}, err
	}

	controls, err := widgets.Merge(doc.Schema, req.Config,
		widgets.WithRegistry(o.widgets),
		widgets.WithUnknownKeys(o.unknownKeys),
	)
	if err != nil {
		return render.Page{}, fmt.Errorf("orchestrator: merge controls: %w", err)
	}

	page := render.Page{
		ID:          req.FormID,
		Title:       doc.Title,
		Description: doc.Description,
		SubmitLabel: doc.SubmitLabel,
		Controls:    controls,
		Schema:      doc.Schema,
	}
	for _, transformer := range o.transformers {
		if err := transformer.Transform(ctx, &page); err != nil {
			return render.Page{}, fmt.Errorf("orchestrator: transform page: %w", err)
		}
	}
	return page, nil
}

// Document returns req.Document or loads and parses req.Source.
func (o *Orchestrator) Document(ctx context.Context, req Request) (schema.Document, error) {
	if req.Document != nil {
		if req.Document.Schema == nil {
			return schema.Document{}, errors.New("orchestrator: document has no schema")
		}
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}

	data, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}

	if req.Component != "" {
		doc, err := openapi.SchemaFromOpenAPI(ctx, data, req.Component)
		if err != nil {
			return schema.Document{}, fmt.Errorf("orchestrator: %w", err)
		}
		return doc, nil
	}
	doc, err := schema.Parse(data)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: parse %s: %w", req.Source.Location(), err)
	}
	return doc, nil
}

// Renderer returns the named renderer, falling back to the default and then
// to the first registered renderer when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = openapi.NewLoader()
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if o.registry == nil {
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		registry, err := render.NewRegistry(renderer)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default registry: %w", err)
			return
		}
		o.registry = registry
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

// defaultThemeFallbacks maps theme partial keys to the built-in HTML control
// templates.
func defaultThemeFallbacks() map[string]string {
	fallbacks := map[string]string{}
	for _, variant := range []string{widgets.VariantText, widgets.VariantPassword, widgets.VariantNumber, widgets.VariantDate} {
		fallbacks["controls."+variant] = "controls/input"
	}
	for _, variant := range []string{widgets.VariantTextarea, widgets.VariantSelect, widgets.VariantRadio, widgets.VariantCheckbox, widgets.VariantSwitch} {
		fallbacks["controls."+variant] = "controls/" + variant
	}
	return fallbacks
}
