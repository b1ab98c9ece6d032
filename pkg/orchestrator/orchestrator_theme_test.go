package orchestrator

import (
	"context"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/testsupport"
)

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
	}
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:    "acme",
		Variant:  "custom-variant",
		Manifest: manifest,
	}}

	renderer := &captureRenderer{}
	registry, err := render.NewRegistry(renderer)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
	)

	doc := testsupport.SignupDocument()
	_, err = orch.Generate(context.Background(), Request{
		Document:     &doc,
		Config:       testsupport.SignupConfig(),
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0].name != "custom-theme" || selector.calls[0].variant != "custom-variant" {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "custom-variant" {
		t.Fatalf("unexpected theme selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.Partials["controls.textarea"]; got != defaultThemeFallbacks()["controls.textarea"] {
		t.Fatalf("partials not merged with fallbacks, got %q", got)
	}
	if cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("css vars not derived from tokens: %#v", cfg.CSSVars)
	}
}

func TestOrchestrator_ManifestSelectorVariant(t *testing.T) {
	selector, err := render.NewManifestSelector(&theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"brand": "#123456"},
		Templates: map[string]string{
			"controls.text": "themes/acme/text",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Templates: map[string]string{
					"controls.checkbox": "themes/acme/dark/checkbox",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	renderer := &captureRenderer{}
	registry, err := render.NewRegistry(renderer)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	orch := New(WithRegistry(registry), WithDefaultRenderer(renderer.Name()), WithThemeSelector(selector))

	doc := testsupport.SignupDocument()
	if _, err := orch.Generate(context.Background(), Request{
		Document:     &doc,
		Config:       testsupport.SignupConfig(),
		ThemeName:    "acme",
		ThemeVariant: "dark",
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Partials["controls.text"] != "themes/acme/text" {
		t.Fatalf("expected base template override, got %q", cfg.Partials["controls.text"])
	}
	if cfg.Partials["controls.checkbox"] != "themes/acme/dark/checkbox" {
		t.Fatalf("expected variant template override, got %q", cfg.Partials["controls.checkbox"])
	}
	if cfg.Partials["controls.password"] != "controls/input" {
		t.Fatalf("fallback partial not applied for password, got %q", cfg.Partials["controls.password"])
	}
	if cfg.Tokens["brand"] != "#654321" {
		t.Fatalf("variant tokens not applied, got %q", cfg.Tokens["brand"])
	}
	if cfg.AssetURL == nil || cfg.AssetURL("stylesheet") != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet asset url")
	}

	if _, err := orch.Generate(context.Background(), Request{Document: &doc, ThemeName: "missing"}); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestOrchestrator_ExplicitThemeSkipsSelector(t *testing.T) {
	selector := &stubThemeSelector{}
	renderer := &captureRenderer{}
	registry, err := render.NewRegistry(renderer)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	orch := New(WithRegistry(registry), WithDefaultRenderer(renderer.Name()), WithThemeSelector(selector))

	doc := testsupport.SignupDocument()
	explicit := &theme.RendererConfig{Theme: "inline"}
	if _, err := orch.Generate(context.Background(), Request{
		Document:      &doc,
		Config:        testsupport.SignupConfig(),
		RenderOptions: render.RenderOptions{Theme: explicit},
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(selector.calls) != 0 {
		t.Fatalf("selector must not run when a theme is supplied")
	}
	if renderer.options.Theme != explicit {
		t.Fatalf("explicit theme not forwarded")
	}
}

type captureRenderer struct {
	page    render.Page
	options render.RenderOptions
}

func (r *captureRenderer) Name() string {
	return "capture"
}

func (r *captureRenderer) ContentType() string {
	return "text/plain"
}

func (r *captureRenderer) Render(_ context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	r.page = page
	r.options = opts
	return []byte(page.Title), nil
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
