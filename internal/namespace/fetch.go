package namespace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
)

// Fetcher retrieves the raw source at uri.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, uri string) (string, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, uri string) (string, error) { return f(ctx, uri) }

// HTTPFetcher fetches over HTTP. Relative URIs are resolved against Base.
type HTTPFetcher struct {
	Client *http.Client
	Base   string
}

// Fetch implements Fetcher.
func (h *HTTPFetcher) Fetch(ctx context.Context, uri string) (string, error) {
	if !strings.Contains(uri, "://") && h.Base != "" {
		uri = strings.TrimSuffix(h.Base, "/") + "/" + strings.TrimPrefix(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// FSFetcher serves URIs as paths inside FS, ignoring any leading slash.
type FSFetcher struct {
	FS fs.FS
}

// Fetch implements Fetcher.
func (f FSFetcher) Fetch(_ context.Context, uri string) (string, error) {
	name := strings.TrimPrefix(uri, "/")
	data, err := fs.ReadFile(f.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RoutingFetcher sends absolute URLs to Remote and every other URI to Local.
type RoutingFetcher struct {
	Remote Fetcher
	Local  Fetcher
}

// Fetch implements Fetcher.
func (r RoutingFetcher) Fetch(ctx context.Context, uri string) (string, error) {
	if strings.Contains(uri, "://") || r.Local == nil {
		if r.Remote == nil {
			return "", fmt.Errorf("no fetcher for %s", uri)
		}
		return r.Remote.Fetch(ctx, uri)
	}
	return r.Local.Fetch(ctx, uri)
}
