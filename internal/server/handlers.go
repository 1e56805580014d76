package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-parkentry/internal/metrics"
	"github.com/goliatone/go-parkentry/internal/receipt"
	"github.com/goliatone/go-parkentry/internal/registration"
	"github.com/goliatone/go-parkentry/internal/store"
	"github.com/goliatone/go-parkentry/internal/uploads"
	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/model"
	"github.com/goliatone/go-parkentry/pkg/renderers/html"
)

// Form round-trip actions.
const (
	ActionSelect       = "select"
	ActionAddClient    = "add_client"
	ActionAddVehicle   = "add_vehicle"
	ActionResetClient  = "reset_client"
	ActionResetVehicle = "reset_vehicle"
)

// EntriesLimit caps the rows shown on the entries page.
const EntriesLimit = 500

func (s *Server) newForm(ctx context.Context) (*form.Form, error) {
	opts := []form.Option{
		form.WithLogger(s.logger),
		form.WithCompanies(s.companies),
	}
	if s.catalog != nil {
		opts = append(opts, form.WithCatalog(s.catalog))
	}
	return form.New(ctx, opts...)
}

func (s *Server) meta() html.Meta {
	return html.Meta{Authority: s.header.Authority, Park: s.header.Park}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	f, err := s.newForm(r.Context())
	if err != nil {
		s.internalError(w, "build form", err)
		return
	}
	s.writePage(w, http.StatusOK, f, s.meta())
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	values, err := s.parseValues(w, r)
	if err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	f, err := s.newForm(r.Context())
	if err != nil {
		s.internalError(w, "build form", err)
		return
	}
	meta := s.meta()
	if err := f.Restore(r.Context(), values); err != nil {
		meta.Errors = append(meta.Errors, err.Error())
		s.writePage(w, http.StatusBadRequest, f, meta)
		return
	}

	switch action := values.Get("_action"); action {
	case ActionSelect, "":
	case ActionAddClient, ActionAddVehicle:
		kind := model.GroupKind(strings.TrimPrefix(action, "add_"))
		if _, err := f.AddEntry(kind); err != nil {
			meta.Errors = append(meta.Errors, err.Error())
		}
	case ActionResetClient, ActionResetVehicle:
		kind := model.GroupKind(strings.TrimPrefix(action, "reset_"))
		if m := f.Active().Group(kind); m != nil {
			m.Reset()
		}
	default:
		meta.Errors = append(meta.Errors, fmt.Sprintf("unknown action %q", action))
	}

	if company := f.Active().Company; company != nil {
		f.SuggestCompany(company.Value())
	}
	s.writePage(w, http.StatusOK, f, meta)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "parkentry.register")
	defer span.End()

	reg, err := s.decode(w, r)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveSubmission("unknown", metrics.OutcomeRejected, 0)
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	category := string(reg.Category)
	span.SetAttributes(
		attribute.String("parkentry.category", category),
		attribute.Int("parkentry.clients", len(reg.Clients)),
	)

	if err := reg.Validate(); err != nil {
		s.logger.Info("registration rejected", "category", category, "error", err)
		s.metrics.ObserveSubmission(category, metrics.OutcomeRejected, 0)
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now()
	var groupFile string
	if reg.Upload != nil {
		name := uploads.SafeName(now, reg.Upload.Filename)
		stored, err := s.uploads.Save(ctx, name, reg.Upload.ContentType, reg.Upload.Data)
		if err != nil {
			s.failSubmit(w, span, category, "store group list", err)
			return
		}
		groupFile = stored
		s.metrics.ObserveUpload(len(reg.Upload.Data))
	}

	reg.ID = store.NewSubmissionID()
	entries := reg.Entries(groupFile, now)
	if _, err := s.repo.Insert(ctx, entries); err != nil {
		s.failSubmit(w, span, category, "store entries", err)
		return
	}

	pdf, err := receipt.Render(s.header, reg, groupFile)
	if err != nil {
		s.failSubmit(w, span, category, "render receipt", err)
		return
	}

	s.metrics.ObserveSubmission(category, metrics.OutcomeAccepted, len(entries))
	s.logger.Info("registration stored",
		"submission_id", reg.ID,
		"category", category,
		"rows", len(entries),
		"group_file", groupFile,
	)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, receipt.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*registration.Registration, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	err := r.ParseMultipartForm(s.maxUpload)
	switch {
	case err == nil:
		return s.decoder.DecodeMultipart(r.MultipartForm)
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form data: %w", err)
		}
		return s.decoder.Decode(r.PostForm)
	default:
		return nil, fmt.Errorf("invalid form data: %w", err)
	}
}

// parseValues reads the posted values of a page round trip. Uploaded files
// are not carried back into the page.
func (s *Server) parseValues(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	err := r.ParseMultipartForm(s.maxUpload)
	switch {
	case err == nil:
		return url.Values(r.MultipartForm.Value), nil
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	default:
		return nil, err
	}
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.List(r.Context(), EntriesLimit)
	if err != nil {
		s.internalError(w, "list entries", err)
		return
	}
	body, err := s.pages.RenderEntries(html.BuildEntries(entries, s.uploads.Link))
	if err != nil {
		s.internalError(w, "render entries", err)
		return
	}
	w.Header().Set("Content-Type", s.pages.ContentType())
	_, _ = w.Write(body)
}

func (s *Server) writePage(w http.ResponseWriter, status int, f *form.Form, meta html.Meta) {
	body, err := s.pages.RenderPage(html.BuildPage(f, meta))
	if err != nil {
		s.internalError(w, "render page", err)
		return
	}
	w.Header().Set("Content-Type", s.pages.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) failSubmit(w http.ResponseWriter, span trace.Span, category, step string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, step)
	s.metrics.ObserveSubmission(category, metrics.OutcomeError, 0)
	s.internalError(w, step, err)
}

func (s *Server) internalError(w http.ResponseWriter, step string, err error) {
	s.logger.Error(step+" failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
