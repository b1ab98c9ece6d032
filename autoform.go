// Package autoform generates forms from a value schema plus optional
// per-field presentation hints, validates submitted values against the
// schema, and renders the result as HTML or as terminal prompts.
package autoform

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/orchestrator"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/html"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
)

// Generator aliases the orchestrator so callers can hold one without
// importing the subpackage.
type Generator = orchestrator.Orchestrator

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Result aliases validation.Result.
type Result = validation.Result

// NewGenerator exposes the orchestrator constructor from the top-level
// module.
func NewGenerator(options ...orchestrator.Option) *Generator {
	return orchestrator.New(options...)
}

// GenerateHTML merges cfg onto doc and renders it with the built-in HTML
// renderer.
func GenerateHTML(ctx context.Context, doc schema.Document, cfg fieldconfig.Config, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document: &doc,
		Config:   cfg,
		Renderer: "html",
	})
}

// Validate checks values against s.
func Validate(s *schema.Schema, values map[string]any) Result {
	return validation.Validate(s, values)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// WithThemeSelector forwards a go-theme selector to the generator.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
