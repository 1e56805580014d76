package html

import (
	"fmt"
	"io/fs"

	rendertemplate "github.com/goliatone/go-parkentry/pkg/render/template"
	"github.com/goliatone/go-parkentry/pkg/render/template/pongo"
)

// Template names inside the bundle.
const (
	PageTemplate    = "page.tpl"
	EntriesTemplate = "entries.tpl"
)

type Option func(*config)

type config struct {
	bundle    fs.FS
	overrides string
	engine    rendertemplate.TemplateRenderer
}

// WithTemplatesFS replaces the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.bundle = files
		}
	}
}

// WithTemplatesDir loads templates from dir ahead of the bundle, so a
// deployment can restyle a single page by dropping one file there.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		cfg.overrides = dir
	}
}

// WithTemplateRenderer bypasses the pongo2 engine entirely.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.engine = renderer
		}
	}
}

// Renderer turns page views into HTML documents.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

func New(options ...Option) (*Renderer, error) {
	cfg := config{bundle: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.engine == nil {
		engine, err := pongo.New(
			pongo.WithBaseDir(cfg.overrides),
			pongo.WithFS(cfg.bundle),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		cfg.engine = engine
	}
	return &Renderer{templates: cfg.engine}, nil
}

func (r *Renderer) Name() string { return "html" }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// RenderPage renders the registration form page.
func (r *Renderer) RenderPage(page Page) ([]byte, error) {
	return r.render(PageTemplate, page)
}

// RenderEntries renders the stored entries table.
func (r *Renderer) RenderEntries(page EntriesPage) ([]byte, error) {
	return r.render(EntriesTemplate, page)
}

func (r *Renderer) render(name string, page any) ([]byte, error) {
	out, err := r.templates.RenderTemplate(name, map[string]any{"page": page})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	return []byte(out), nil
}
