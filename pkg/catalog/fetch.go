package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the public country listing used when no URL is configured.
const DefaultURL = "https://restcountries.com/v3.1/all?fields=name"

// HTTPFetcher reads country records from a JSON endpoint. Each record must
// expose at least name.common.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher builds a fetcher with a bounded client timeout.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type countryRecord struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

// FetchCountries issues a GET and returns the common names in response order.
func (f *HTTPFetcher) FetchCountries(ctx context.Context) ([]string, error) {
	if f == nil || f.URL == "" {
		return nil, fmt.Errorf("catalog: missing source url")
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("catalog: fetch: unexpected status %d", res.StatusCode)
	}

	var records []countryRecord
	if err := json.NewDecoder(res.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		if name := strings.TrimSpace(record.Name.Common); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
