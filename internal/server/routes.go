package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-parkentry/components/countries"
	"github.com/goliatone/go-parkentry/internal/uploads"
	"github.com/goliatone/go-parkentry/pkg/autocomplete"
	"github.com/goliatone/go-parkentry/pkg/model"
)

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handlePage)
	r.Post("/form", s.handleForm)
	r.Post("/submit", s.handleSubmit)
	r.Get("/entries", s.handleEntries)
	r.Get("/api/companies", s.handleCompanies)
	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleAPIDocument(s.apiDoc.yaml, "application/yaml"))
	r.Get("/openapi.json", s.handleAPIDocument(s.apiDoc.json, "application/json"))

	if s.catalog != nil {
		if _, err := countries.RegisterRoutes(r, "", countries.WithSource(s.catalog)); err != nil {
			s.logger.Error("countries route not mounted", "error", err)
		}
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	if disk, ok := s.uploads.(*uploads.Disk); ok {
		prefix := disk.URLPrefix
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(disk.Dir))))
	}
	return r
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	matches := autocomplete.Match(s.companies, r.URL.Query().Get("q"), autocomplete.DefaultMinQueryLength)
	data := make([]model.Option, 0, len(matches))
	for _, name := range matches {
		data = append(data, model.Option{Value: name, Label: name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAPIDocument(body []byte, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
