package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/openapi"
	"github.com/goliatone/go-autoform/pkg/orchestrator"
	"github.com/goliatone/go-autoform/pkg/render"
)

// SourceOptions are the flags shared by every command that needs a form.
type SourceOptions struct {
	Schema      string
	Component   string
	Config      string
	Preset      string
	FormID      string
	UnknownKeys string
	HTTPTimeout time.Duration
}

func (s *SourceOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&s.Schema, "schema", "s", "", "schema document: declarative YAML/JSON, or OpenAPI with --component (path or http(s) URL)")
	flags.StringVar(&s.Component, "component", "", "OpenAPI components.schemas entry to use")
	flags.StringVarP(&s.Config, "config", "c", "", "field configuration document (YAML/JSON)")
	flags.StringVar(&s.Preset, "preset", "", "JSON copy preset applied to the page")
	flags.StringVar(&s.FormID, "form-id", "", "form identifier (defaults to the schema file name)")
	flags.StringVar(&s.UnknownKeys, "unknown-keys", fieldconfig.UnknownReject.String(), "configuration keys naming no schema field: reject|ignore")
	flags.DurationVar(&s.HTTPTimeout, "http-timeout", 10*time.Second, "timeout for schema documents fetched over HTTP")
	_ = cmd.MarkFlagRequired("schema")
}

// loadedForm bundles what a command needs to work with one form.
type loadedForm struct {
	orchestrator *orchestrator.Orchestrator
	request      orchestrator.Request
	page         render.Page
}

func (s *SourceOptions) load(ctx context.Context, root *RootOptions, extra ...orchestrator.Option) (*loadedForm, error) {
	src, err := openapi.ParseSource(s.Schema)
	if err != nil {
		return nil, err
	}
	policy, err := fieldconfig.ParseUnknownKeyPolicy(s.UnknownKeys)
	if err != nil {
		return nil, err
	}

	var cfg fieldconfig.Config
	if s.Config != "" {
		cfg, err = fieldconfig.LoadFile(s.Config)
		if err != nil {
			return nil, err
		}
	}

	opts := []orchestrator.Option{
		orchestrator.WithLoader(openapi.NewLoader(openapi.WithHTTPFallback(s.HTTPTimeout))),
		orchestrator.WithUnknownKeys(policy),
		orchestrator.WithLogger(root.Logger()),
	}
	if s.Preset != "" {
		preset, err := os.ReadFile(s.Preset)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewJSONPresetTransformer(preset)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithTransformer(transformer))
	}
	opts = append(opts, extra...)

	orch := orchestrator.New(opts...)
	req := orchestrator.Request{
		Source:    src,
		Component: s.Component,
		Config:    cfg,
		FormID:    s.formID(),
	}
	doc, err := orch.Document(ctx, req)
	if err != nil {
		return nil, err
	}
	req.Document = &doc
	page, err := orch.Page(ctx, req)
	if err != nil {
		return nil, err
	}
	root.Logger().Debug("form loaded", "form", page.ID, "source", src.Location(), "fields", len(page.Controls))
	return &loadedForm{orchestrator: orch, request: req, page: page}, nil
}

// formID defaults to the component name, then to the schema file stem.
func (s *SourceOptions) formID() string {
	if id := strings.TrimSpace(s.FormID); id != "" {
		return id
	}
	if s.Component != "" {
		return s.Component
	}
	name := s.Schema
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}
	if name == "" {
		return "form"
	}
	return name
}
