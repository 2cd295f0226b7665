// Package testutil provides shared helpers for tests that need a running
// component engine.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/engine"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/namespace"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Options configures a Harness.
type Options struct {
	// Components are registered before the engine starts, tag to source.
	Components map[string]string
	// Remote maps URIs to sources served by the fake fetcher.
	Remote map[string]string
	// Namespaces are added to the loader.
	Namespaces []namespace.Namespace
	// Magics are passed to every setup block.
	Magics map[string]any
}

// Harness is an engine over a fresh document with captured logs.
type Harness struct {
	Engine   *engine.Engine
	Registry *registry.Registry
	Loader   *namespace.Loader
	Fetcher  *FakeFetcher
	Metrics  *metrics.Collector
	Logs     *SafeBuffer
}

// NewHarness builds an engine with a debug logger writing to Logs. Set
// COMPOSITOR_TEST_LOGS=true to print the logs at the end of the test.
func NewHarness(t *testing.T, opts Options) *Harness {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := metrics.NewCollector("test")
	reg := registry.New(logger, m)
	fetcher := NewFakeFetcher(opts.Remote)
	loader := namespace.NewLoader(logger, reg, fetcher, m)
	for _, ns := range opts.Namespaces {
		loader.Add(ns)
	}

	ctx := context.Background()
	require.NoError(t, reg.RegisterModules(ctx, SimpleModule(opts.Components)))

	h := &Harness{
		Engine: engine.New(dom.NewDocument(), engine.Options{
			Logger:   logger,
			Metrics:  m,
			Registry: reg,
			Loader:   loader,
			Magics:   opts.Magics,
		}),
		Registry: reg,
		Loader:   loader,
		Fetcher:  fetcher,
		Metrics:  m,
		Logs:     logs,
	}
	t.Cleanup(func() {
		if os.Getenv("COMPOSITOR_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return h
}

// Insert parses markup into the end of the body without draining the
// microtask queue.
func (h *Harness) Insert(t *testing.T, markup string) []*dom.Node {
	t.Helper()
	doc := h.Engine.Document()
	frag, err := doc.ParseFragment(markup)
	require.NoError(t, err)
	nodes := frag.Children()
	require.NoError(t, doc.Body().AppendChild(frag))
	return nodes
}

// Mount inserts markup and mounts the document.
func (h *Harness) Mount(t *testing.T, markup string) {
	t.Helper()
	h.Insert(t, markup)
	require.NoError(t, h.Engine.Mount(context.Background()))
}

// Body returns the markup inside <body>.
func (h *Harness) Body() string {
	return h.Engine.Document().Body().InnerHTML()
}

// Render returns the whole document.
func (h *Harness) Render(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, h.Engine.Render(&sb))
	return sb.String()
}

// First returns the first element named tag in the composed tree.
func (h *Harness) First(t *testing.T, tag string) *dom.Node {
	t.Helper()
	var found *dom.Node
	h.Engine.Document().Root().ComposedWalk(func(n *dom.Node) bool {
		if found == nil && n.Is(tag) {
			found = n
		}
		return found == nil
	})
	require.NotNil(t, found, "no <%s> in document", tag)
	return found
}
