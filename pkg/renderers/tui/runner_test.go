package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/model"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	prompts      []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted for " + cfg.Message)
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted for " + cfg.Message)
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted for " + cfg.Message)
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type stubCatalog struct{}

func (stubCatalog) Prefetch(context.Context) {}

func (stubCatalog) Populate(field *model.Field) bool {
	if field.Source == "" || field.Populated {
		return false
	}
	for _, name := range []string{"Kenya", "Uganda"} {
		field.Options = append(field.Options, model.Option{Value: name, Label: name})
	}
	field.Populated = true
	return true
}

func newForm(t *testing.T, opts ...form.Option) *form.Form {
	t.Helper()
	f, err := form.New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}

func TestFill_TouristWithCompanyAndTwoClients(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0, 1, 6},
		multiIdx:  [][]int{{0, 2}},
		inputs: []string{
			"Matoke Tours Ltd",
			"Tented camp",
			"/tmp/group list.csv",
			"Ann", "0700",
			"Ben", "",
			"Land Cruiser", "UAX 001", "Dan", "0780",
		},
		confirm: []bool{true, false, false},
	}
	var readPath string
	r, err := New(WithPromptDriver(driver), WithFileReader(func(path string) ([]byte, error) {
		readPath = path
		return []byte("name\n"), nil
	}))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	f := newForm(t)
	if err := r.Fill(context.Background(), f); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if readPath != "/tmp/group list.csv" {
		t.Fatalf("unexpected file path %q", readPath)
	}

	p := f.Payload()
	got := map[string][]string{
		"company_name":        p.Values("company_name"),
		"activities":          p.Values("activities"),
		"accommodation":       p.Values("accommodation"),
		"other_accommodation": p.Values("other_accommodation"),
		"client_name[]":       p.Values("client_name[]"),
		"car_reg[]":           p.Values("car_reg[]"),
	}
	want := map[string][]string{
		"company_name":        {"Matoke Tours Ltd"},
		"activities":          {"Game Drive", "Nature Walk"},
		"accommodation":       {"Other"},
		"other_accommodation": {"Tented camp"},
		"client_name[]":       {"Ann", "Ben"},
		"car_reg[]":           {"UAX 001"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	files := p.Files()
	if len(files) != 1 || files[0].Filename != "group list.csv" {
		t.Fatalf("unexpected files %+v", files)
	}
	if driver.confirmPos != 3 {
		t.Fatalf("expected 3 confirms, got %d", driver.confirmPos)
	}
}

func TestFill_IndividualSkipsConditionalFields(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0, 0, 1},
		multiIdx:  [][]int{nil},
		inputs:    []string{"", "Ann", "", "", "", "", ""},
		confirm:   []bool{false, false},
	}
	r, _ := New(WithPromptDriver(driver))

	f := newForm(t)
	if err := r.Fill(context.Background(), f); err != nil {
		t.Fatalf("fill: %v", err)
	}
	for _, prompt := range driver.prompts {
		if prompt == "Tour Company" || prompt == "Other Accommodation" {
			t.Fatalf("conditional field %q prompted", prompt)
		}
	}
}

func TestFill_CapacityStopsAddLoop(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0, 0, 1},
		multiIdx:  [][]int{nil},
		inputs:    []string{"", "Ann", "", "", "", "", ""},
	}
	r, _ := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "> "}))

	f := newForm(t, form.WithGroupCapacity(1))
	if err := r.Fill(context.Background(), f); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.confirmPos != 0 {
		t.Fatalf("no confirm expected at capacity, got %d", driver.confirmPos)
	}
	found := false
	for _, msg := range driver.infoMessages {
		if msg == "> Maximum of 1 clients reached." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected capacity message, got %v", driver.infoMessages)
	}
}

func TestFill_StudentUsesCatalogSelect(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{2, 2},
		inputs:    []string{"Cleo", "Makerere"},
	}
	r, _ := New(WithPromptDriver(driver))

	f := newForm(t, form.WithCatalog(stubCatalog{}))
	if err := r.Fill(context.Background(), f); err != nil {
		t.Fatalf("fill: %v", err)
	}
	p := f.Payload()
	if got := p.Get("form_type"); got != "student" {
		t.Fatalf("expected student, got %q", got)
	}
	if got := p.Get(form.FieldStudentNationality); got != "Uganda" {
		t.Fatalf("expected Uganda, got %q", got)
	}
	if got := p.Get(form.FieldStudentInstitution); got != "Makerere" {
		t.Fatalf("expected institution, got %q", got)
	}
}

func TestFill_TransitReportsMissingFields(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"", "KBC 123A"},
	}
	r, _ := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))

	err := r.Fill(context.Background(), newForm(t))
	var missing *form.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if diff := cmp.Diff([]string{form.FieldTransitName}, missing.Fields); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], "! Nationality list unavailable") {
		t.Fatalf("expected unavailable catalog notice, got %v", driver.infoMessages)
	}
}

func TestNotifier_UsesThemePrefixes(t *testing.T) {
	driver := &stubDriver{}
	r, _ := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "ok: ", ErrorPrefix: "err: "}))

	n := r.Notifier(context.Background())
	n.Success("Form submitted successfully.")
	n.Failure("Error 400: missing field client_name[]")

	want := []string{"ok: Form submitted successfully.", "err: Error 400: missing field client_name[]"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}
