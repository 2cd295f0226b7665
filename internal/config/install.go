package config

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/namespace"
	"github.com/specialistvlad/compositor/internal/registry"
	"golang.org/x/time/rate"
)

// Build returns the namespace described by n. Bundled namespaces preload
// their folder.
func (n *Namespace) Build(ctx context.Context) (namespace.Namespace, error) {
	cfg := namespace.Config{
		URI:        n.URI,
		Transform:  n.Transform,
		AutoImport: n.AutoImport,
	}
	if n.RateLimit > 0 {
		burst := n.Burst
		if burst == 0 {
			burst = 1
		}
		cfg.Limiter = rate.NewLimiter(rate.Limit(n.RateLimit), burst)
	}

	switch n.Kind() {
	case "versioned":
		return namespace.NewVersioned(n.Prefix, cfg, n.Package, n.Version), nil
	case "bundled":
		b := namespace.NewBundled(n.Prefix, cfg, n.Folder, n.Suffix)
		count, err := b.AddFolder(n.Folder)
		if err != nil {
			return nil, fmt.Errorf("namespace %q: failed to read folder: %w", n.Prefix, err)
		}
		ctxlog.FromContext(ctx).Debug("Preloaded bundled namespace.", "prefix", n.Prefix, "folder", n.Folder, "components", count)
		return b, nil
	default:
		return namespace.NewRemote(n.Prefix, cfg), nil
	}
}

// Install validates m and adds its namespaces and default to l.
func (m *Model) Install(ctx context.Context, l *namespace.Loader) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, n := range m.Namespaces {
		ns, err := n.Build(ctx)
		if err != nil {
			return err
		}
		l.Add(ns)
	}
	if m.DefaultNamespace != "" {
		if err := l.SetDefault(m.DefaultNamespace); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Namespaces installed.", "count", len(m.Namespaces), "default", m.DefaultNamespace)
	return nil
}

// InstallStyleSheets reads every configured style sheet into r.
func (m *Model) InstallStyleSheets(r *registry.Registry) error {
	for _, p := range m.StyleSheets {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read style sheet %s: %w", p, err)
		}
		r.RegisterStyleSheet(string(data))
	}
	return nil
}
