package countries

import (
	"context"
	"net/http"
)

// Query parameters read by the handler.
const (
	SearchParam = "q"
	LimitParam  = "limit"
)

// EmptySearchMode decides what an empty query returns.
type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchTop  EmptySearchMode = "top"
)

// GuardFunc rejects a request before the catalog is consulted.
type GuardFunc func(r *http.Request) error

// Source is the catalog the handler reads. *catalog.Provider satisfies it.
type Source interface {
	EnsureLoaded(ctx context.Context) error
	Names() []string
}

type Options struct {
	RoutePath       string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Source          Source
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/countries",
		DefaultLimit:    50,
		MaxLimit:        300,
		EmptySearchMode: EmptySearchTop,
	}
}

// NewOptions applies fns over the defaults; zero values fall back to them.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	def := DefaultOptions()
	if opts.RoutePath == "" {
		opts.RoutePath = def.RoutePath
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = def.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = def.MaxLimit
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = def.EmptySearchMode
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) { o.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) { o.MaxLimit = limit }
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) { o.EmptySearchMode = mode }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

// WithSource sets the catalog backing the handler.
func WithSource(src Source) OptionFn {
	return func(o *Options) { o.Source = src }
}

// WithNames serves a fixed name list, already in display order.
func WithNames(names []string) OptionFn {
	return WithSource(staticSource(append([]string{}, names...)))
}

type staticSource []string

func (s staticSource) EnsureLoaded(context.Context) error { return nil }
func (s staticSource) Names() []string                   { return append([]string{}, s...) }

func clampLimit(limit int, opts Options) int {
	switch {
	case limit < 0:
		return 0
	case limit == 0:
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
