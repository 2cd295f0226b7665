package namespace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/tagname"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Loader resolves, fetches and registers components on demand.
type Loader struct {
	logger  *slog.Logger
	reg     *registry.Registry
	fetcher Fetcher
	metrics *metrics.Collector

	mu         sync.RWMutex
	namespaces map[string]Namespace
	order      []string
	fallback   string

	flight singleflight.Group
}

// NewLoader returns a Loader registering into reg. m may be nil.
func NewLoader(logger *slog.Logger, reg *registry.Registry, f Fetcher, m *metrics.Collector) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:     logger,
		reg:        reg,
		fetcher:    f,
		metrics:    m,
		namespaces: make(map[string]Namespace),
	}
}

// Add registers ns under its prefix, replacing any namespace with the same
// prefix.
func (l *Loader) Add(ns Namespace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.namespaces[ns.Prefix()]; !ok {
		l.order = append(l.order, ns.Prefix())
	}
	l.namespaces[ns.Prefix()] = ns
}

// SetDefault makes the namespace with prefix serve tags no prefix matches.
func (l *Loader) SetDefault(prefix string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.namespaces[prefix]; !ok {
		return fmt.Errorf("unknown default namespace %q", prefix)
	}
	l.fallback = prefix
	return nil
}

// Get returns the namespace registered under prefix.
func (l *Loader) Get(prefix string) (Namespace, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ns, ok := l.namespaces[prefix]
	return ns, ok
}

// Namespaces returns the registered prefixes in the order they were added.
func (l *Loader) Namespaces() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}

// Find returns the namespace owning tag and the component name inside it.
// Prefix matches win; the default namespace receives the whole tag name.
func (l *Loader) Find(tag string) (Namespace, string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if ns, ok := l.namespaces[tagname.Prefix(tag)]; ok {
		return ns, tagname.LocalName(tag), nil
	}
	if ns, ok := l.namespaces[l.fallback]; ok && l.fallback != "" {
		return ns, tag, nil
	}
	return nil, "", &ResolutionError{Tag: tag, Err: ErrNoNamespace}
}

type fetched struct {
	tag    string
	source string
	deps   []string
}

// Load makes tag available in the registry and returns its definition.
// Registered tags return immediately. Unknown tags referenced by the fetched
// template are loaded before the tag itself is registered.
func (l *Loader) Load(ctx context.Context, tag string) (*registry.Definition, error) {
	if def, ok := l.reg.Lookup(tag); ok {
		return def, nil
	}
	if err := l.LoadAll(ctx, []string{tag}); err != nil {
		return nil, err
	}
	def, ok := l.reg.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("component %q was loaded but is not registered", tag)
	}
	return def, nil
}

// LoadAll loads every tag in tags that is not registered yet. Sibling tags
// are fetched concurrently and independently: a failing tag drops only its
// own subtree. Every fetched component is registered before the joined
// failures are returned.
func (l *Loader) LoadAll(ctx context.Context, tags []string) error {
	logger := ctxlog.FromContextOr(ctx, l.logger)

	var (
		mu      sync.Mutex
		results = make(map[string]*fetched)
		failed  []error
	)
	var fetchTree func(tag string)
	fetchTree = func(tag string) {
		mu.Lock()
		if _, seen := results[tag]; seen || l.reg.Has(tag) {
			mu.Unlock()
			return
		}
		results[tag] = nil
		mu.Unlock()

		f, err := l.fetch(ctx, tag)
		if err != nil {
			logger.Error("Component load failed.", "tag", tag, "error", err)
			mu.Lock()
			failed = append(failed, err)
			mu.Unlock()
			return
		}
		mu.Lock()
		results[tag] = f
		mu.Unlock()

		var g errgroup.Group
		for _, dep := range f.deps {
			dep := dep
			g.Go(func() error {
				fetchTree(dep)
				return nil
			})
		}
		_ = g.Wait()
	}

	var g errgroup.Group
	for _, tag := range l.unknown(tags) {
		tag := tag
		g.Go(func() error {
			fetchTree(tag)
			return nil
		})
	}
	_ = g.Wait()

	errs := failed
	for _, f := range completionOrder(tags, results) {
		err := l.reg.RegisterSource(ctx, f.tag, f.source)
		if err != nil && !errors.Is(err, registry.ErrDuplicate) {
			errs = append(errs, err)
			continue
		}
		logger.Debug("Component loaded.", "tag", f.tag, "dependencies", len(f.deps))
	}
	return errors.Join(errs...)
}

// fetch resolves and fetches one tag, sharing in-flight requests.
func (l *Loader) fetch(ctx context.Context, tag string) (*fetched, error) {
	v, err, _ := l.flight.Do(tag, func() (any, error) {
		ns, name, err := l.Find(tag)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		src, err := ns.Source(ctx, l.fetcher, name)
		l.metrics.RecordFetch(ns.Prefix(), time.Since(start), err)
		if err != nil {
			return nil, &FetchError{Tag: tag, URI: ns.Resolve(name), Err: err}
		}

		f := &fetched{tag: tag, source: src}
		if ns.AutoImport() {
			if parsed, perr := registry.ParseSource(src); perr == nil {
				f.deps = l.unknown(registry.References(tag, parsed.Markup))
			}
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*fetched), nil
}

// unknown filters tags down to custom, non-native, unregistered names.
func (l *Loader) unknown(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tags {
		if seen[t] || !tagname.IsCustom(t) || tagname.IsNative(t) || l.reg.Has(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// completionOrder lists fetched components depth first, dependencies before
// the components that reference them.
func completionOrder(roots []string, results map[string]*fetched) []*fetched {
	var out []*fetched
	done := make(map[string]bool)
	var visit func(tag string)
	visit = func(tag string) {
		f := results[tag]
		if f == nil || done[tag] {
			return
		}
		done[tag] = true
		for _, d := range f.deps {
			visit(d)
		}
		out = append(out, f)
	}
	for _, r := range roots {
		visit(r)
	}
	return out
}

// FindAndLoad loads every unknown custom tag used under root, including
// inside isolated boundaries and template content.
func (l *Loader) FindAndLoad(ctx context.Context, root *dom.Node) error {
	return l.LoadAll(ctx, UndefinedTags(root))
}

// UndefinedTags lists the custom tag names used under root that its document
// has not defined, in document order.
func UndefinedTags(root *dom.Node) []string {
	doc := root.Document()
	seen := make(map[string]bool)
	var out []string
	var visit func(n *dom.Node)
	visit = func(n *dom.Node) {
		n.ComposedWalk(func(c *dom.Node) bool {
			if !c.IsElement() {
				return true
			}
			if tag := c.Tag(); tagname.IsCustom(tag) && !seen[tag] && (doc == nil || !doc.Defined(tag)) {
				seen[tag] = true
				out = append(out, tag)
			}
			if content := c.Content(); content != nil {
				visit(content)
			}
			return true
		})
	}
	visit(root)
	return out
}
