// Package autocomplete implements a free-text field with live suggestions
// drawn from a small, fixed candidate set.
package autocomplete

import (
	"errors"
	"strings"
)

// DefaultMinQueryLength is the shortest query that produces suggestions.
const DefaultMinQueryLength = 2

// ErrUnknownSuggestion is returned when Select receives a value that is not in
// the current suggestion list.
var ErrUnknownSuggestion = errors.New("autocomplete: unknown suggestion")

// TourCompanies is the default candidate set for the company field.
var TourCompanies = []string{
	"Matoke Tours Ltd",
	"Take Off Safaris Uganda Ltd",
	"Tulavo",
	"Go Gorilla Trekking",
	"Wild Frontiers Safaris",
	"Marasa Safari Lodge",
	"Murchison River Lodge",
}

// Match returns the candidates containing query (case-insensitive), in the
// candidates' original order. Queries shorter than minLen match nothing.
func Match(candidates []string, query string, minLen int) []string {
	if minLen < 0 {
		minLen = 0
	}
	if len([]rune(query)) < minLen {
		return nil
	}
	q := strings.ToLower(query)

	var out []string
	for _, candidate := range candidates {
		if strings.Contains(strings.ToLower(candidate), q) {
			out = append(out, candidate)
		}
	}
	return out
}

type Option func(*Field)

// WithMinQueryLength overrides the minimum query length.
func WithMinQueryLength(n int) Option {
	return func(f *Field) {
		if n >= 0 {
			f.minLen = n
		}
	}
}

// Field holds the input value and the suggestions currently shown for it.
type Field struct {
	name        string
	candidates  []string
	minLen      int
	value       string
	suggestions []string
}

// New constructs a field over a copy of candidates.
func New(name string, candidates []string, opts ...Option) *Field {
	f := &Field{
		name:       name,
		candidates: append([]string{}, candidates...),
		minLen:     DefaultMinQueryLength,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Name returns the field's wire name.
func (f *Field) Name() string { return f.name }

// Value returns the current input value.
func (f *Field) Value() string { return f.value }

// Candidates returns a copy of the candidate set.
func (f *Field) Candidates() []string {
	return append([]string{}, f.candidates...)
}

// Suggestions returns the suggestions currently shown.
func (f *Field) Suggestions() []string {
	if len(f.suggestions) == 0 {
		return nil
	}
	return append([]string{}, f.suggestions...)
}

// Input records a change of the input value and recomputes suggestions.
func (f *Field) Input(value string) []string {
	f.value = value
	f.suggestions = Match(f.candidates, value, f.minLen)
	return f.Suggestions()
}

// Select sets the value to the exact candidate text and clears suggestions.
func (f *Field) Select(suggestion string) error {
	for _, s := range f.suggestions {
		if s == suggestion {
			f.value = s
			f.suggestions = nil
			return nil
		}
	}
	return ErrUnknownSuggestion
}

// Reset clears value and suggestions.
func (f *Field) Reset() {
	f.value = ""
	f.suggestions = nil
}

// Set overwrites the value without computing suggestions, as when a value is
// restored from a submitted form.
func (f *Field) Set(value string) {
	f.value = value
	f.suggestions = nil
}
