package render

import (
	"context"

	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

// Page is everything a renderer needs to present one form: the card copy and
// the merged controls in schema order. Schema is optional; interactive
// renderers use it to validate answers as they are entered.
type Page struct {
	ID          string
	Title       string
	Description string
	SubmitLabel string
	Controls    []widgets.Control
	Schema      *schema.Schema
}

// Control looks up a control by field name.
func (p Page) Control(name string) (widgets.Control, bool) {
	for _, control := range p.Controls {
		if control.Name == name {
			return control, true
		}
	}
	return widgets.Control{}, false
}

// FieldNames lists the control names in order.
func (p Page) FieldNames() []string {
	names := make([]string, len(p.Controls))
	for idx, control := range p.Controls {
		names[idx] = control.Name
	}
	return names
}

// Renderer converts a Page into a byte representation (HTML, terminal
// transcript, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
