package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_CountersAndExposition(t *testing.T) {
	m := New()
	m.ObserveRequest("/submit", http.StatusOK, 20*time.Millisecond)
	m.ObserveSubmission("tourist", OutcomeAccepted, 3)
	m.ObserveSubmission("tourist", OutcomeRejected, 0)
	m.ObserveCatalogLoad("failure")
	m.ObserveUpload(512)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`parkentry_http_requests_total{route="/submit",status="200"} 1`,
		`parkentry_catalog_loads_total{outcome="failure"} 1`,
		`parkentry_uploaded_bytes_total 512`,
		`parkentry_entries_stored_total 3`,
		`parkentry_submissions_total{category="tourist",outcome="rejected"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition:\n%s", want, body)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", http.StatusOK, time.Millisecond)
	m.ObserveSubmission("student", OutcomeError, 0)
	m.ObserveCatalogLoad("success")
	m.ObserveUpload(1)
}
