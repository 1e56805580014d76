package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-parkentry/internal/logging"
	"github.com/goliatone/go-parkentry/internal/metrics"
	"github.com/goliatone/go-parkentry/internal/receipt"
	"github.com/goliatone/go-parkentry/internal/server"
	"github.com/goliatone/go-parkentry/internal/store"
	"github.com/goliatone/go-parkentry/internal/uploads"
	"github.com/goliatone/go-parkentry/pkg/catalog"
	"github.com/goliatone/go-parkentry/pkg/form"
)

type fixture struct {
	ts      *httptest.Server
	store   *store.Store
	uploads *uploads.Disk
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	disk, err := uploads.NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	countries := catalog.New(catalog.FetcherFunc(func(context.Context) ([]string, error) {
		return []string{"Uganda", "Kenya", "Tanzania"}, nil
	}))
	// pages never wait on the catalog; load it up front so they list names
	require.NoError(t, countries.EnsureLoaded(context.Background()))

	srv, err := server.New(context.Background(),
		server.WithLogger(logging.Discard()),
		server.WithRepository(st),
		server.WithUploads(disk),
		server.WithCatalog(countries),
		server.WithMetrics(metrics.New()),
		server.WithReceiptHeader(receipt.Header{Authority: "Uganda Wildlife Authority", Park: "Murchison Falls National Park"}),
		server.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, store: st, uploads: disk}
}

func (f *fixture) postPayload(t *testing.T, path string, p *form.Payload) *http.Response {
	t.Helper()
	var body bytes.Buffer
	contentType, err := p.WriteMultipart(&body)
	require.NoError(t, err)
	resp, err := http.Post(f.ts.URL+path, contentType, &body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func touristPayload() *form.Payload {
	p := form.NewPayload()
	p.Add("form_type", "tourist")
	p.Add("company_option", "Company")
	p.Add("company_name", "Matoke Tours Ltd")
	p.Add("activities", "Game Drive")
	p.Add("activities", "Launch Trip")
	p.Add("accommodation", "Paraa Safari Lodge")
	p.Add("other_accommodation", "")
	p.AddAll("client_name[]", []string{"Ann", "Ben", "Cleo"})
	p.AddAll("client_contact[]", []string{"0700", "0701", "0702"})
	p.AddAll("client_nationality[]", []string{"Uganda", "Kenya", "Uganda"})
	p.AddAll("car_type[]", []string{"Land Cruiser", "Van"})
	p.AddAll("car_reg[]", []string{"UAX 001", "UBB 777"})
	p.AddAll("driver_name[]", []string{"Dan", "Eve"})
	p.AddAll("driver_phone[]", []string{"0780", "0781"})
	return p
}

func TestSubmit_TouristStoresRowsAndReturnsReceipt(t *testing.T) {
	f := newFixture(t)
	p := touristPayload()
	p.Attach(form.File{
		FieldName:   "group_upload",
		Filename:    "group list.csv",
		ContentType: "text/csv",
		Data:        []byte("name\nAnn\n"),
	})

	resp := f.postPayload(t, "/submit", p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.Equal(t, `inline; filename="park_entry_receipt.pdf"`, resp.Header.Get("Content-Disposition"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	entries, err := f.store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// newest first: Cleo falls back to the first vehicle.
	require.Equal(t, "Cleo", entries[0].ClientName)
	require.Equal(t, "UAX 001", entries[0].CarReg)
	require.Equal(t, "Ben", entries[1].ClientName)
	require.Equal(t, "UBB 777", entries[1].CarReg)
	require.Equal(t, "Game Drive, Launch Trip", entries[2].Activities)
	require.Equal(t, entries[0].SubmissionID, entries[2].SubmissionID)

	const stored = "20260102030405grouplist.csv"
	require.Equal(t, stored, entries[0].GroupFile)
	data, err := os.ReadFile(filepath.Join(f.uploads.Dir, stored))
	require.NoError(t, err)
	require.Equal(t, "name\nAnn\n", string(data))
}

func TestSubmit_MissingFieldIsRejected(t *testing.T) {
	f := newFixture(t)
	p := form.NewPayload()
	p.Add("form_type", "tourist")
	p.Add("company_option", "Individual")
	p.AddAll("client_name[]", []string{"Ann", ""})

	resp := f.postPayload(t, "/submit", p)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "missing field client_name[]", string(body))

	count, err := f.store.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSubmit_TransitAcceptsURLEncoded(t *testing.T) {
	f := newFixture(t)
	resp, err := http.PostForm(f.ts.URL+"/submit", url.Values{
		"form_type":           {"transit"},
		"transit_name":        {"<b>Omar</b>"},
		"transit_nationality": {"Kenya"},
		"transit_reg":         {"KBC 123A"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entries, err := f.store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "transit", entries[0].Category)
	require.Equal(t, "Omar", entries[0].ClientName)
	require.Equal(t, "KBC 123A", entries[0].CarReg)
}

func TestSubmit_UnknownCategoryIsRejected(t *testing.T) {
	f := newFixture(t)
	resp, err := http.PostForm(f.ts.URL+"/submit", url.Values{"form_type": {"resident"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPage_RendersTouristForm(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, body, "Murchison Falls National Park")
	require.Contains(t, body, `id="client_name-0"`)
	require.Contains(t, body, `<option value="Uganda">Uganda</option>`)
}

func TestPage_DoesNotWaitForSlowCatalog(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	disk, err := uploads.NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	countries := catalog.New(catalog.FetcherFunc(func(context.Context) ([]string, error) {
		<-release
		return []string{"Uganda"}, nil
	}))

	srv, err := server.New(context.Background(),
		server.WithLogger(logging.Discard()),
		server.WithRepository(st),
		server.WithUploads(disk),
		server.WithCatalog(countries),
	)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `id="client_name-0"`)
	require.NotContains(t, string(body), `<option value="Uganda">`)
	require.False(t, countries.Loaded())
}

func TestForm_RoundTripAddsClientAndKeepsValues(t *testing.T) {
	f := newFixture(t)
	p := touristPayload()
	p.Add("_action", "add_client")

	resp := f.postPayload(t, "/form", p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	require.Contains(t, page, `id="client_name-3"`)
	require.Contains(t, page, `value="Cleo"`)
	require.Contains(t, page, "Clients (4/")
}

func TestForm_SelectSwitchesSection(t *testing.T) {
	f := newFixture(t)
	p := form.NewPayload()
	p.Add("form_type", "student")
	p.Add("_action", "select")

	resp := f.postPayload(t, "/form", p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	require.Contains(t, page, `name="student_name"`)
	require.NotContains(t, page, `name="client_name[]"`)
}

func TestForm_UnknownSectionIsBadRequest(t *testing.T) {
	f := newFixture(t)
	p := form.NewPayload()
	p.Add("form_type", "resident")
	resp := f.postPayload(t, "/form", p)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CompaniesAndCountries(t *testing.T) {
	f := newFixture(t)

	var out struct {
		Data []struct {
			Value string `json:"value"`
		} `json:"data"`
	}

	_, body := f.get(t, "/api/companies?q=ma")
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Data, 2)
	require.Equal(t, "Matoke Tours Ltd", out.Data[0].Value)

	_, body = f.get(t, "/api/companies?q=m")
	out.Data = nil
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Empty(t, out.Data)

	resp, body := f.get(t, "/api/countries?q=ug")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out.Data = nil
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, "Uganda", out.Data[0].Value)
}

func TestEntries_ListsRowsWithDownloadLink(t *testing.T) {
	f := newFixture(t)
	p := touristPayload()
	p.Attach(form.File{FieldName: "group_upload", Filename: "list.csv", Data: []byte("x")})
	resp := f.postPayload(t, "/submit", p)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := f.get(t, "/entries")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Land Cruiser")
	require.Less(t, strings.Index(body, "Cleo"), strings.Index(body, "Ann"))
	require.Contains(t, body, `href="/uploads/20260102030405list.csv"`)

	resp, body = f.get(t, "/uploads/20260102030405list.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "x", body)
}

func TestOperationalEndpoints(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok\n", body)

	resp, body = f.get(t, "/openapi.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	require.Contains(t, doc["paths"], "/submit")

	resp, body = f.get(t, "/openapi.yaml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "openapi: 3.0.3")

	submit := f.postPayload(t, "/submit", touristPayload())
	require.Equal(t, http.StatusOK, submit.StatusCode)

	_, body = f.get(t, "/metrics")
	require.Contains(t, body, `parkentry_submissions_total{category="tourist",outcome="accepted"} 1`)
	require.Contains(t, body, "parkentry_entries_stored_total 3")
	require.Contains(t, body, `parkentry_http_requests_total{route="/healthz",status="200"} 1`)
}

func TestNew_RequiresRepositoryAndUploads(t *testing.T) {
	_, err := server.New(context.Background())
	require.Error(t, err)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()
	_, err = server.New(context.Background(), server.WithRepository(st))
	require.Error(t, err)
}
