// Package server hosts the registration page, the submission endpoint that
// stores entries and returns the PDF receipt, and the helper APIs the page
// and the terminal flow use.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-parkentry/internal/metrics"
	"github.com/goliatone/go-parkentry/internal/receipt"
	"github.com/goliatone/go-parkentry/internal/registration"
	"github.com/goliatone/go-parkentry/internal/store"
	"github.com/goliatone/go-parkentry/internal/uploads"
	"github.com/goliatone/go-parkentry/pkg/autocomplete"
	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/renderers/html"
)

// DefaultMaxUploadBytes caps multipart bodies on /submit and /form.
const DefaultMaxUploadBytes = 32 << 20

// Catalog is what the server needs from the country catalog. Pages populate
// form selects without waiting; the countries endpoint waits for the load.
type Catalog interface {
	form.Catalog
	EnsureLoaded(ctx context.Context) error
	Names() []string
}

// Repository persists and lists registration rows.
type Repository interface {
	Insert(ctx context.Context, entries []store.Entry) (string, error)
	List(ctx context.Context, limit int) ([]store.Entry, error)
	Ping(ctx context.Context) error
}

type Option func(*Server)

// WithLogger overrides the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog wires the country catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithRepository wires the entry store.
func WithRepository(repo Repository) Option {
	return func(s *Server) {
		s.repo = repo
	}
}

// WithUploads wires the group list store.
func WithUploads(u uploads.Store) Option {
	return func(s *Server) {
		s.uploads = u
	}
}

// WithMetrics wires the Prometheus collectors served on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithReceiptHeader sets the authority and park printed on receipts and
// shown on the page.
func WithReceiptHeader(h receipt.Header) Option {
	return func(s *Server) {
		s.header = h
	}
}

// WithCompanies replaces the tour company candidates.
func WithCompanies(companies []string) Option {
	return func(s *Server) {
		s.companies = append([]string{}, companies...)
	}
}

// WithMaxUploadBytes caps request bodies on multipart routes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithPages overrides the HTML renderer.
func WithPages(r *html.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.pages = r
		}
	}
}

// WithClock overrides the time source used for upload names and row stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer overrides the tracer. The global provider is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		if t != nil {
			s.tracer = t
		}
	}
}

type Server struct {
	logger    *slog.Logger
	catalog   Catalog
	repo      Repository
	uploads   uploads.Store
	metrics   *metrics.Metrics
	pages     *html.Renderer
	decoder   *registration.Decoder
	header    receipt.Header
	companies []string
	maxUpload int64
	now       func() time.Time
	tracer    trace.Tracer
	apiDoc    *apiDocument
}

// New builds a server. A repository and an upload store are required.
func New(ctx context.Context, opts ...Option) (*Server, error) {
	s := &Server{
		logger:    slog.Default(),
		decoder:   registration.NewDecoder(),
		companies: autocomplete.TourCompanies,
		maxUpload: DefaultMaxUploadBytes,
		now:       time.Now,
		tracer:    otel.Tracer("github.com/goliatone/go-parkentry/internal/server"),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.repo == nil {
		return nil, errors.New("server: repository is required")
	}
	if s.uploads == nil {
		return nil, errors.New("server: upload store is required")
	}
	if s.pages == nil {
		pages, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.pages = pages
	}

	doc, err := loadAPIDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.apiDoc = doc

	// warm the catalog so the first page already lists nationalities
	if s.catalog != nil {
		s.catalog.Prefetch(ctx)
	}
	return s, nil
}

// APIDocument returns the validated OpenAPI description of the HTTP surface.
func (s *Server) APIDocument() *openapi3.T {
	return s.apiDoc.doc
}

// ListenAndServe serves Routes on addr until ctx ends, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
