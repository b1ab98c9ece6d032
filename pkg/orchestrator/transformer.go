package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/render"
)

// Transformer mutates an assembled page before it is rendered.
type Transformer interface {
	Transform(ctx context.Context, page *render.Page) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, page *render.Page) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, page *render.Page) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, page)
}

// JSONPresetTransformer applies declarative copy overrides loaded from JSON:
//
//	{
//	  "title": "Join us",
//	  "submitLabel": "Create account",
//	  "fields": {
//	    "username": {"label": "Handle", "placeholder": "ada"}
//	  }
//	}
//
// Field descriptions go through the same sanitiser as field configuration.
type JSONPresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	SubmitLabel string                 `json:"submitLabel"`
	Fields      map[string]fieldPreset `json:"fields"`
}

type fieldPreset struct {
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Placeholder string            `json:"placeholder"`
	Attributes  map[string]string `json:"attributes"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the preset onto page. Presets naming a field the page
// does not render are an error.
func (t *JSONPresetTransformer) Transform(ctx context.Context, page *render.Page) error {
	if page == nil {
		return errors.New("json preset transformer: page is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := t.document
	if doc.Title != "" {
		page.Title = doc.Title
	}
	if doc.Description != "" {
		page.Description = doc.Description
	}
	if doc.SubmitLabel != "" {
		page.SubmitLabel = doc.SubmitLabel
	}

	for name, preset := range doc.Fields {
		idx := controlIndex(page, name)
		if idx < 0 {
			return fmt.Errorf("json preset transformer: field %q not found", name)
		}
		control := &page.Controls[idx]
		if preset.Label != "" {
			control.Label = preset.Label
		}
		if preset.Description != "" {
			control.Description = fieldconfig.SanitizeDescription(preset.Description)
		}
		if preset.Placeholder != "" {
			control.Placeholder = preset.Placeholder
		}
		if len(preset.Attributes) > 0 {
			control.Attributes = mergeStringMap(control.Attributes, preset.Attributes)
		}
	}
	return nil
}

func controlIndex(page *render.Page, name string) int {
	for idx := range page.Controls {
		if page.Controls[idx].Name == name {
			return idx
		}
	}
	return -1
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	out := make(map[string]string, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		out[key] = value
	}
	return out
}
