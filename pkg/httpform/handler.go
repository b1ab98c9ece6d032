// Package httpform serves a single form over net/http. GET renders the page;
// POST decodes the submission, validates it and either re-renders the page
// with inline errors or reports the typed values.
package httpform

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-autoform/pkg/form"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

var errUnsupportedMediaType = errors.New("httpform: unsupported content type")

// Option configures a Handler.
type Option func(*Handler)

// WithSubmitHandlers appends handlers that receive valid submissions.
func WithSubmitHandlers(handlers ...form.SubmitHandler) Option {
	return func(h *Handler) {
		for _, handler := range handlers {
			if handler != nil {
				h.handlers = append(h.handlers, handler)
			}
		}
	}
}

// WithObservers appends observers attached to every request's form instance.
func WithObservers(observers ...form.Observer) Option {
	return func(h *Handler) {
		for _, observer := range observers {
			if observer != nil {
				h.observers = append(h.observers, observer)
			}
		}
	}
}

// WithLogger sets the logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithTheme applies a resolved theme to every rendered page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(h *Handler) {
		h.theme = cfg
	}
}

// WithAction sets the form action URL. Empty posts back to the same URL.
func WithAction(action string) Option {
	return func(h *Handler) {
		h.action = strings.TrimSpace(action)
	}
}

// WithFormID sets the identifier recorded on submissions.
func WithFormID(id string) Option {
	return func(h *Handler) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			h.formID = trimmed
		}
	}
}

// WithSuccessRedirect answers valid HTML form posts with 303 See Other.
func WithSuccessRedirect(location string) Option {
	return func(h *Handler) {
		h.redirect = strings.TrimSpace(location)
	}
}

// WithHiddenFields adds hidden inputs to every rendered page.
func WithHiddenFields(fields ...render.HiddenField) Option {
	return func(h *Handler) {
		h.hidden = render.MergeHiddenFields(h.hidden, fields...)
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// Handler serves one form.
type Handler struct {
	schema   *schema.Schema
	page     render.Page
	renderer render.Renderer

	handlers  []form.SubmitHandler
	observers []form.Observer
	logger    *slog.Logger
	theme     *theme.RendererConfig
	hidden    map[string]string
	action    string
	formID    string
	redirect  string
	maxBody   int64
	now       func() time.Time
}

var _ http.Handler = (*Handler)(nil)

// New builds a Handler for page. page.Schema is required.
func New(page render.Page, renderer render.Renderer, opts ...Option) (*Handler, error) {
	if page.Schema == nil {
		return nil, errors.New("httpform: page schema is required")
	}
	if renderer == nil {
		return nil, errors.New("httpform: renderer is required")
	}
	h := &Handler{
		schema:   page.Schema,
		page:     page,
		renderer: renderer,
		logger:   slog.Default(),
		formID:   page.ID,
		maxBody:  DefaultMaxBodyBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.formID == "" {
		h.formID = "form"
	}
	h.page.ID = h.formID
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.renderPage(w, r, http.StatusOK, render.RenderOptions{})
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	payload, isJSON, err := h.decode(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, errUnsupportedMediaType):
			status = http.StatusUnsupportedMediaType
		}
		h.logger.Debug("form payload rejected", "form", h.formID, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	instance := form.New(h.schema, h.page.Controls,
		form.WithID(h.formID),
		form.WithObservers(h.observers...),
		form.WithSubmitHandlers(h.handlers...),
		form.WithLogger(h.logger),
		form.WithClock(h.now),
	)
	defer instance.Unmount()

	if err := instance.SetAll(h.knownValues(payload)); err != nil {
		h.logger.Error("form values rejected", "form", h.formID, "error", err)
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	result, err := instance.Submit(r.Context())
	if err != nil {
		h.logger.Error("form submission failed", "form", h.formID, "error", err)
		http.Error(w, "could not process submission", http.StatusInternalServerError)
		return
	}

	if !result.Valid() {
		if isJSON || wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": result.Errors.Messages()})
			return
		}
		h.renderPage(w, r, http.StatusUnprocessableEntity, render.RenderOptions{
			Values: payload,
			Errors: render.ErrorsFromResult(result.Errors),
		})
		return
	}

	h.logger.Info("form submitted", "form", h.formID, "fields", len(result.Values))
	if h.redirect != "" && !isJSON {
		http.Redirect(w, r, h.redirect, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"values": schema.ExportValues(result.Values)})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, opts render.RenderOptions) {
	opts.Action = h.action
	opts.Theme = h.theme
	opts.Hidden = render.MergeHiddenFields(h.hidden, render.FormIDField(h.formID))

	out, err := h.renderer.Render(r.Context(), h.page, opts)
	if err != nil {
		h.logger.Error("form render failed", "form", h.formID, "renderer", h.renderer.Name(), "error", err)
		http.Error(w, "could not render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.renderer.ContentType())
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(out); err != nil {
		h.logger.Debug("write response", "form", h.formID, "error", err)
	}
}

// decode reads a JSON or urlencoded/multipart body into a value set. HTML
// form posts omit unchecked checkboxes, so toggles read as booleans: checked
// values are "true" or "on", anything else (including absence) is false.
func (h *Handler) decode(r *http.Request) (map[string]any, bool, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return nil, false, fmt.Errorf("httpform: parse content type: %w", err)
	}

	switch mediaType {
	case "application/json":
		payload := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, true, fmt.Errorf("httpform: decode json: %w", err)
		}
		return payload, true, nil
	case "", "application/x-www-form-urlencoded", "multipart/form-data":
	default:
		return nil, false, fmt.Errorf("%w %q", errUnsupportedMediaType, mediaType)
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxBody); err != nil {
			return nil, false, fmt.Errorf("httpform: parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, false, fmt.Errorf("httpform: parse form: %w", err)
	}

	payload := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		payload[key] = values[len(values)-1]
	}
	for _, control := range h.page.Controls {
		if !control.IsToggle() {
			continue
		}
		raw, _ := payload[control.Name].(string)
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "on", "1":
			payload[control.Name] = true
		default:
			payload[control.Name] = false
		}
	}
	return payload, false, nil
}

func (h *Handler) knownValues(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if h.schema.Has(key) {
			out[key] = value
		}
	}
	return out
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// PageFor assembles the page served for doc.
func PageFor(doc schema.Document, controls []widgets.Control) render.Page {
	return render.Page{
		Title:       doc.Title,
		Description: doc.Description,
		SubmitLabel: doc.SubmitLabel,
		Controls:    controls,
		Schema:      doc.Schema,
	}
}
