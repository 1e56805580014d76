package autocomplete_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-parkentry/pkg/autocomplete"
)

func TestField_ShortQueryClearsSuggestions(t *testing.T) {
	field := autocomplete.New("company_name", []string{"Matoke Tours Ltd", "Tulavo"})

	if got := field.Input("ma"); len(got) != 1 {
		t.Fatalf("expected one suggestion for 'ma', got %#v", got)
	}
	if got := field.Input("m"); got != nil {
		t.Fatalf("expected no suggestions for 'm', got %#v", got)
	}
	if got := field.Suggestions(); got != nil {
		t.Fatalf("expected cleared list, got %#v", got)
	}
}

func TestField_MatchesCaseInsensitiveSubstring(t *testing.T) {
	field := autocomplete.New("company_name", []string{"Matoke Tours Ltd", "Tulavo"})

	got := field.Input("ma")
	if diff := cmp.Diff([]string{"Matoke Tours Ltd"}, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}

	got = field.Input("T")
	if got != nil {
		t.Fatalf("expected nil for single character, got %#v", got)
	}

	got = field.Input("TU")
	if diff := cmp.Diff([]string{"Tulavo"}, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestField_PreservesCandidateOrder(t *testing.T) {
	got := autocomplete.Match(autocomplete.TourCompanies, "safari", autocomplete.DefaultMinQueryLength)
	want := []string{"Take Off Safaris Uganda Ltd", "Wild Frontiers Safaris", "Marasa Safari Lodge"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("match mismatch (-want +got):\n%s", diff)
	}
}

func TestField_SelectSetsExactCandidateAndClears(t *testing.T) {
	field := autocomplete.New("company_name", []string{"Matoke Tours Ltd", "Tulavo"})
	field.Input("ma")

	if err := field.Select("Matoke Tours Ltd"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if field.Value() != "Matoke Tours Ltd" {
		t.Fatalf("expected exact candidate value, got %q", field.Value())
	}
	if field.Suggestions() != nil {
		t.Fatalf("expected suggestions cleared, got %#v", field.Suggestions())
	}
}

func TestField_SelectRejectsUnknownSuggestion(t *testing.T) {
	field := autocomplete.New("company_name", []string{"Matoke Tours Ltd", "Tulavo"})
	field.Input("ma")

	if err := field.Select("Tulavo"); !errors.Is(err, autocomplete.ErrUnknownSuggestion) {
		t.Fatalf("expected ErrUnknownSuggestion, got %v", err)
	}
	if field.Value() != "ma" {
		t.Fatalf("value must be unchanged, got %q", field.Value())
	}
}

func TestField_CustomMinimumLength(t *testing.T) {
	field := autocomplete.New("company_name", autocomplete.TourCompanies, autocomplete.WithMinQueryLength(0))
	if got := field.Input(""); len(got) != len(autocomplete.TourCompanies) {
		t.Fatalf("expected every candidate for empty query, got %d", len(got))
	}
}
