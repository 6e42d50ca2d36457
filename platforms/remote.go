// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package platforms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pipewright/pipewright-core/httperr"
	vhttp "github.com/pipewright/pipewright-core/validation/http"
)

// MaxCatalogSize is the maximum size of a fetched catalog document (10MB).
const MaxCatalogSize int64 = 10 * 1024 * 1024

// defaultFetchTimeout bounds a catalog fetch when the caller's context
// carries no deadline of its own.
const defaultFetchTimeout = 30 * time.Second

// Fetcher downloads platform catalogs from remote locations.
type Fetcher struct {
	client  *http.Client
	headers map[string]string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client. The default client has no
// special configuration beyond the fetch timeout.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithHeader attaches a header to every catalog request, e.g. an
// Authorization header for a private catalog endpoint.
func WithHeader(key, value string) FetcherOption {
	return func(f *Fetcher) {
		f.headers[key] = value
	}
}

// NewFetcher creates a catalog fetcher. Headers supplied via WithHeader are
// validated on first use; invalid headers fail the fetch rather than being
// silently dropped.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: defaultFetchTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads, schema-validates, and parses a catalog from the given URL.
// Failures carry HTTP status codes via httperr so callers serving the catalog
// onward can map them directly to responses.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Catalog, error) {
	if err := vhttp.ValidateCatalogURL(url); err != nil {
		return nil, httperr.WithCode(err, http.StatusBadRequest)
	}

	for k, v := range f.headers {
		if err := vhttp.ValidateHeaderName(k); err != nil {
			return nil, httperr.Newf(http.StatusBadRequest, "header %q: %w", k, err)
		}
		if err := vhttp.ValidateHeaderValue(v); err != nil {
			return nil, httperr.Newf(http.StatusBadRequest, "header %q value: %w", k, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, httperr.Newf(http.StatusBadRequest, "building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, httperr.Newf(http.StatusBadGateway, "fetching catalog from %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, httperr.Newf(http.StatusBadGateway,
			"fetching catalog from %s: unexpected status %d", url, resp.StatusCode)
	}

	// Limit read size so a misbehaving endpoint cannot exhaust memory.
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxCatalogSize+1))
	if err != nil {
		return nil, httperr.Newf(http.StatusBadGateway, "reading catalog body: %w", err)
	}
	if int64(len(data)) > MaxCatalogSize {
		return nil, httperr.Newf(http.StatusBadGateway,
			"catalog exceeds maximum size of %d bytes", MaxCatalogSize)
	}

	catalog, err := parseCatalog(data)
	if err != nil {
		return nil, httperr.WithCode(fmt.Errorf("remote catalog invalid: %w", err), http.StatusBadGateway)
	}

	return catalog, nil
}
