package choices

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

type response struct {
	Field string                 `json:"field"`
	Data  []widgets.SelectOption `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler serves the choice options of page.
func NewHandler(page render.Page, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(page, NewOptions(fns...))
}

// HandlerWithOptions builds the handler from a pre-built Options value.
func HandlerWithOptions(page render.Page, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })

	fields := make(map[string][]widgets.SelectOption)
	for _, control := range page.Controls {
		switch control.Variant {
		case widgets.VariantSelect, widgets.VariantRadio:
			fields[control.Name] = append([]widgets.SelectOption{}, control.Options...)
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
			return
		}

		query := r.URL.Query()
		name := query.Get(opts.FieldParam)
		if name == "" {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "missing " + opts.FieldParam + " parameter"})
			return
		}
		options, ok := fields[name]
		if !ok {
			writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "no choice field " + strconv.Quote(name)})
			return
		}

		results := Search(options, query.Get(opts.SearchParam), parseInt(query.Get(opts.LimitParam)), opts)
		if results == nil {
			results = []widgets.SelectOption{}
		}
		writeJSON(w, r, http.StatusOK, response{Field: name, Data: results})
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
