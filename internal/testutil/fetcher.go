package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/compositor/internal/namespace"
)

// FakeFetcher serves sources from memory and counts requests per URI.
type FakeFetcher struct {
	mu      sync.Mutex
	sources map[string]string
	calls   map[string]int
}

// NewFakeFetcher returns a fetcher serving sources.
func NewFakeFetcher(sources map[string]string) *FakeFetcher {
	f := &FakeFetcher{sources: make(map[string]string), calls: make(map[string]int)}
	for k, v := range sources {
		f.sources[k] = v
	}
	return f
}

// Set adds or replaces the source served at uri.
func (f *FakeFetcher) Set(uri, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[uri] = source
}

// Fetch implements namespace.Fetcher.
func (f *FakeFetcher) Fetch(_ context.Context, uri string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[uri]++
	src, ok := f.sources[uri]
	if !ok {
		return "", namespace.ErrNotFound
	}
	return src, nil
}

// Calls returns how many times uri was requested.
func (f *FakeFetcher) Calls(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[uri]
}
