package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-parkentry/pkg/render/template"
)

// DefaultExtension is appended to template names that carry none.
const DefaultExtension = ".tpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	files     fs.FS
	extension string
	globals   map[string]any
}

// WithBaseDir loads templates from a directory on disk. A template found there
// wins over the WithFS template of the same name; the rest still come from
// WithFS, which lets deployments override single pages.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithExtension overrides DefaultExtension. The leading dot is optional.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[key] = value
		}
	}
}

// Engine implements template.TemplateRenderer over a pongo2 template set.
// Parsed templates are cached by the set.
type Engine struct {
	mu  sync.RWMutex
	set *pongo2.TemplateSet
	ext string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. At least one of WithBaseDir and WithFS is
// required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: DefaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.baseDir == "" && cfg.files == nil {
		return nil, errors.New("pongo: need to provide either base dir or fs.FS")
	}
	loader := &overlayLoader{bundle: cfg.files}
	if cfg.baseDir != "" {
		info, err := os.Stat(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: template dir %s: %w", cfg.baseDir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("pongo: template dir %s: not a directory", cfg.baseDir)
		}
		loader.dir = os.DirFS(cfg.baseDir)
	}

	registerDefaultFilters()
	e := &Engine{set: pongo2.NewSet("parkentry", loader), ext: cfg.extension}
	if len(cfg.globals) > 0 {
		if err := e.GlobalContext(cfg.globals); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// overlayLoader resolves every template name against the override directory
// first and the bundle second, so a directory may hold any subset of the
// bundle's templates. Includes resolve relative to the including template.
type overlayLoader struct {
	dir    fs.FS
	bundle fs.FS
}

func (l *overlayLoader) Abs(base, name string) string {
	if base == "" || path.IsAbs(name) {
		return path.Clean(strings.TrimPrefix(name, "/"))
	}
	return path.Join(path.Dir(base), name)
}

func (l *overlayLoader) Get(name string) (io.Reader, error) {
	for _, files := range []fs.FS{l.dir, l.bundle} {
		if files == nil {
			continue
		}
		data, err := fs.ReadFile(files, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	return nil, fmt.Errorf("template %s: %w", name, fs.ErrNotExist)
}

// Render treats name as inline template source when it contains template
// tags, and as a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a named template, adding the extension when it is
// missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("pongo: load template %q: %w", name, err)
	}
	return e.execute(tmpl, data, out)
}

// RenderString parses and renders templateContent.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}
	return e.execute(tmpl, data, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute: %w", err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RegisterFilter adds fn to pongo2's process-wide filter registry. A name
// that is already registered keeps its first filter.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return nil
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the globals every template sees.
func (e *Engine) GlobalContext(data any) error {
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("pongo: global data: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(ctx)
	return nil
}

// toContext passes data through JSON so struct views expose their json tag
// names. Numbers come back as json.Number and are narrowed to int where
// possible so counters render without a fractional part.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	obj, ok := normalize(decoded).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data of type %T is not an object", data)
	}
	return pongo2.Context(obj), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for key, value := range t {
			t[key] = normalize(value)
		}
		return t
	case []any:
		for i, value := range t {
			t[i] = normalize(value)
		}
		return t
	default:
		return v
	}
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("domid") {
		_ = pongo2.RegisterFilter("domid", filterDOMID)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterDOMID turns a wire name plus an optional entry index into an element
// id: "client_name[]"|domid:2 -> "client_name-2".
func filterDOMID(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	id := strings.TrimSuffix(strings.TrimSpace(in.String()), "[]")
	if param != nil && !param.IsNil() && param.String() != "" {
		id += "-" + param.String()
	}
	return pongo2.AsValue(id), nil
}
