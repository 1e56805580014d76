package countries

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Mux is satisfied by *http.ServeMux and chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath joins basePath and the configured route path.
func MountPath(basePath string, fns ...OptionFn) string {
	return mountPath(basePath, NewOptions(fns...).RoutePath)
}

// RegisterRoutes mounts the handler under basePath and returns the pattern
// it used.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	if mux == nil {
		return "", errors.New("countries: missing mux")
	}
	opts := NewOptions(fns...)
	pattern := mountPath(basePath, opts.RoutePath)
	mux.Handle(pattern, HandlerWithOptions(opts))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	return path.Join("/", strings.TrimSpace(basePath), strings.TrimSpace(routePath))
}
