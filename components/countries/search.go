package countries

import (
	"sort"
	"strings"

	"github.com/goliatone/go-parkentry/pkg/model"
)

// Search filters names by a case-insensitive substring. Prefix matches come
// first; the input order is otherwise preserved.
func Search(names []string, query string, limit int, opts Options) []string {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(names) <= limit {
				return append([]string{}, names...)
			}
			return append([]string{}, names[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]match, 0, 16)
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, q) {
			continue
		}
		matches = append(matches, match{name: name, isPrefix: strings.HasPrefix(lower, q)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}

// SearchOptions is Search shaped as select options.
func SearchOptions(names []string, query string, limit int, opts Options) []model.Option {
	results := Search(names, query, limit, opts)
	if len(results) == 0 {
		return nil
	}
	out := make([]model.Option, 0, len(results))
	for _, name := range results {
		out = append(out, model.Option{Value: name, Label: name})
	}
	return out
}

type match struct {
	name     string
	isPrefix bool
}
