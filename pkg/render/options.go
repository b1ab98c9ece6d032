package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers use to customise
// their output without touching the page itself.
type RenderOptions struct {
	// Action is the form action URL. Empty posts back to the current URL.
	Action string
	// Method defaults to POST.
	Method string
	// Values pre-populates controls, keyed by field name. Raw (posted) and
	// typed values are both accepted.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field name.
	Errors map[string][]string
	// FormErrors are messages that belong to no single field.
	FormErrors []string
	// Hidden inputs emitted before the visible controls.
	Hidden map[string]string
	// Theme carries the resolved theme tokens and assets.
	Theme *theme.RendererConfig
}

// FieldErrors returns the messages recorded for name.
func (o RenderOptions) FieldErrors(name string) []string {
	if o.Errors == nil {
		return nil
	}
	return o.Errors[name]
}

// HTTPMethod returns Method upper-cased, defaulting to POST.
func (o RenderOptions) HTTPMethod() string {
	if method := upper(o.Method); method != "" {
		return method
	}
	return "POST"
}
