package extract

import (
	"context"
	"io"
	"net/http"
	"time"

	"kaizoku/internal/httputil"
)

// EmbedDocument is the raw text of one embed page.
type EmbedDocument struct {
	URL  string
	Body string
}

// Fetcher retrieves embed pages. It never caches: embed pages rotate their
// key fragments.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a Fetcher that bounds each GET by timeout.
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	return &Fetcher{client: client, timeout: timeout}
}

// Fetch performs a single GET of embedURL. embedURL must be an absolute
// HTTPS URL resolved by the caller.
func (f *Fetcher) Fetch(ctx context.Context, embedURL string) (*EmbedDocument, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := httputil.Get(ctx, f.client, embedURL, nil)
	if err != nil {
		return nil, &FetchError{URL: embedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: embedURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxBodySize))
	if err != nil {
		return nil, &FetchError{URL: embedURL, Err: err}
	}

	return &EmbedDocument{URL: embedURL, Body: string(body)}, nil
}
