package choices

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-autoform/pkg/render"
)

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the handler for page under basePath and returns the
// registered pattern.
func RegisterRoutes(mux Mux, basePath string, page render.Page, fns ...OptionFn) (string, error) {
	if mux == nil {
		return "", errors.New("choices: missing mux")
	}
	opts := NewOptions(fns...)
	pattern := MountPath(basePath, opts.RoutePath)
	mux.Handle(pattern, HandlerWithOptions(page, opts))
	return pattern, nil
}

// MountPath joins basePath and routePath into a single absolute path.
func MountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/") + routePath
}
