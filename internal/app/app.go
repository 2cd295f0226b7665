package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/specialistvlad/compositor/internal/config"
	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/namespace"
	"github.com/specialistvlad/compositor/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	pageW    io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	registry *registry.Registry
	loader   *namespace.Loader
	metrics  *metrics.Collector

	// mu serializes document work: registrations are bound into every live
	// engine, and documents are not safe for concurrent use.
	mu         sync.Mutex
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules the core component packs are registered.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model := &config.Model{}
	if len(cfg.ConfigPaths) > 0 && loader != nil {
		m, err := loader.Load(ctx, cfg.ConfigPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		model = m
	}
	logger.Debug("Configuration loaded and translated into unified model.", "namespaces", len(model.Namespaces))

	m := metrics.NewCollector("compositor")
	reg := registry.New(logger, m)
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := reg.RegisterModules(ctx, modules...); err != nil {
		return nil, fmt.Errorf("failed to register modules: %w", err)
	}
	logger.Debug("All component modules registered.", "count", len(modules))

	if cfg.ComponentsPath != "" {
		if _, err := reg.LoadFolder(ctx, cfg.ComponentsPath, registry.DefaultSuffix); err != nil {
			return nil, fmt.Errorf("failed to load components: %w", err)
		}
	}
	if err := model.InstallStyleSheets(reg); err != nil {
		return nil, err
	}

	nsLoader := namespace.NewLoader(logger, reg, newFetcher(cfg), m)
	if err := model.Install(ctx, nsLoader); err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		pageW:    outW,
		logger:   logger,
		config:   cfg,
		model:    model,
		registry: reg,
		loader:   nsLoader,
		metrics:  m,
	}, nil
}

// newFetcher serves absolute URLs over HTTP and every other URI from
// BaseURL, which is either a folder or an http(s) URL.
func newFetcher(cfg *Config) namespace.Fetcher {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	remote := &namespace.HTTPFetcher{Client: client}
	if strings.HasPrefix(cfg.BaseURL, "http://") || strings.HasPrefix(cfg.BaseURL, "https://") {
		return &namespace.HTTPFetcher{Client: client, Base: cfg.BaseURL}
	}
	return namespace.RoutingFetcher{
		Remote: remote,
		Local:  namespace.FSFetcher{FS: os.DirFS(cfg.BaseURL)},
	}
}

// SetPageOutput directs pages rendered without an OutputDir to w instead of
// the log output.
func (a *App) SetPageOutput(w io.Writer) {
	a.pageW = w
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Loader returns the namespace loader shared by every render.
func (a *App) Loader() *namespace.Loader {
	return a.loader
}

// Metrics returns the application's metrics collector.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}
