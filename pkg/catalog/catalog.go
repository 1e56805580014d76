package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/goliatone/go-parkentry/pkg/model"
)

// ErrLoadFailed is returned when the country source is unreachable or returns
// data that cannot be decoded. The provider stays NotLoaded and can be retried.
var ErrLoadFailed = errors.New("catalog: load failed")

// State is the provider lifecycle.
type State int

const (
	StateNotLoaded State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher retrieves raw country display names. Implementations may return
// duplicates or unsorted data; the provider normalises them.
type Fetcher interface {
	FetchCountries(ctx context.Context) ([]string, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context) ([]string, error)

// FetchCountries delegates to the underlying function.
func (fn FetcherFunc) FetchCountries(ctx context.Context) ([]string, error) {
	return fn(ctx)
}

// LoadObserver is notified after every load attempt with "success" or
// "failure".
type LoadObserver func(outcome string)

type Option func(*Provider)

// WithLogger overrides the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLanguage selects the collation used to sort names.
func WithLanguage(tag language.Tag) Option {
	return func(p *Provider) {
		p.lang = tag
	}
}

// WithLoadObserver registers a hook called after each load attempt.
func WithLoadObserver(fn LoadObserver) Option {
	return func(p *Provider) {
		p.observer = fn
	}
}

// Provider caches the country catalog for the lifetime of the process. Names
// are written once by the load path and treated as immutable afterwards.
type Provider struct {
	fetcher  Fetcher
	logger   *slog.Logger
	lang     language.Tag
	observer LoadObserver

	mu    sync.RWMutex
	state State
	names []string

	loads singleflight.Group
}

// New constructs a provider around fetcher.
func New(fetcher Fetcher, opts ...Option) *Provider {
	p := &Provider{
		fetcher: fetcher,
		logger:  slog.Default(),
		lang:    language.English,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// State reports the current lifecycle state.
func (p *Provider) State() State {
	if p == nil {
		return StateNotLoaded
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Loaded reports whether the catalog is populated.
func (p *Provider) Loaded() bool {
	return p.State() == StateLoaded
}

// Names returns a copy of the sorted catalog. It is empty until loaded.
func (p *Provider) Names() []string {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.names) == 0 {
		return nil
	}
	return append([]string{}, p.names...)
}

// EnsureLoaded fetches the catalog once. Concurrent callers wait on the same
// in-flight load; a caller whose ctx ends stops waiting without cancelling the
// shared fetch.
func (p *Provider) EnsureLoaded(ctx context.Context) error {
	if p == nil {
		return fmt.Errorf("%w: provider is nil", ErrLoadFailed)
	}
	if p.Loaded() {
		return nil
	}
	if p.fetcher == nil {
		return fmt.Errorf("%w: missing fetcher", ErrLoadFailed)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-p.start(ctx):
		return res.Err
	}
}

// Prefetch starts a load in the background and returns at once. It joins a
// load that is already in flight. Failures are logged and observed by the
// load itself; the next Prefetch or EnsureLoaded retries.
func (p *Provider) Prefetch(ctx context.Context) {
	if p == nil || p.fetcher == nil || p.Loaded() {
		return
	}
	p.start(ctx)
}

// start joins or launches the shared load. The returned channel is buffered,
// so callers that do not wait leak nothing.
func (p *Provider) start(ctx context.Context) <-chan singleflight.Result {
	fetchCtx := context.WithoutCancel(ctx)
	return p.loads.DoChan("countries", func() (any, error) {
		return nil, p.load(fetchCtx)
	})
}

func (p *Provider) load(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateLoaded {
		p.mu.Unlock()
		return nil
	}
	p.state = StateLoading
	p.mu.Unlock()

	raw, err := p.fetcher.FetchCountries(ctx)
	if err == nil && len(raw) == 0 {
		err = errors.New("empty catalog")
	}
	if err != nil {
		p.mu.Lock()
		p.state = StateNotLoaded
		p.mu.Unlock()

		p.logger.Warn("country catalog load failed", "error", err)
		p.notify("failure")
		if errors.Is(err, ErrLoadFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	names := Normalize(raw, p.lang)

	p.mu.Lock()
	p.names = names
	p.state = StateLoaded
	p.mu.Unlock()

	p.logger.Debug("country catalog loaded", "count", len(names))
	p.notify("success")
	return nil
}

func (p *Provider) notify(outcome string) {
	if p.observer != nil {
		p.observer(outcome)
	}
}

// Populate appends one option per catalog name to field. It is a no-op when
// the catalog is not loaded yet, the field is not catalog-backed, or the field
// is already marked populated. Returns true when options were added.
func (p *Provider) Populate(field *model.Field) bool {
	if p == nil || field == nil || field.Source != model.SourceCountries {
		return false
	}
	if field.Populated {
		return false
	}
	names := p.Names()
	if len(names) == 0 {
		return false
	}

	options := make([]model.Option, 0, len(field.Options)+len(names))
	options = append(options, field.Options...)
	for _, name := range names {
		options = append(options, model.Option{Value: name, Label: name})
	}
	field.Options = options
	field.Populated = true
	return true
}

// PopulateAll runs Populate over fields and returns how many were populated.
func (p *Provider) PopulateAll(fields ...*model.Field) int {
	count := 0
	for _, field := range fields {
		if p.Populate(field) {
			count++
		}
	}
	return count
}

// Normalize trims, deduplicates, and collates names for tag.
func Normalize(raw []string, tag language.Tag) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	collate.New(tag).SortStrings(out)
	return out
}
