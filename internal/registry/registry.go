package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/tagname"
)

// BaseStyleSheet is applied to every isolated boundary before registered
// sheets.
const BaseStyleSheet = ":host { display: contents; }"

// Module is implemented by component packs that register a set of
// definitions at once.
type Module interface {
	Register(ctx context.Context, r *Registry) error
}

// Host is something that instantiates registered components, typically a
// document.
type Host interface {
	// Defined reports whether tag is already claimed in the host.
	Defined(tag string) bool
	// Define binds def's lifecycle to every occurrence of its tag.
	Define(def *Definition) error
}

// Registry holds the component definitions of one runtime.
type Registry struct {
	logger  *slog.Logger
	metrics *metrics.Collector

	mu     sync.RWMutex
	defs   map[string]*Definition
	order  []string
	sheets []string
	hosts  []Host
}

// New creates an empty Registry. m may be nil.
func New(logger *slog.Logger, m *metrics.Collector) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		metrics: m,
		defs:    make(map[string]*Definition),
	}
}

// Register stores a component under tag. markup is either the template
// content or a single <template> element whose marker attribute selects the
// mode; setupCode may be empty.
//
// A rejected registration is logged and returned as a *RegistrationError; it
// never disturbs existing definitions. The first definition of a tag wins.
func (r *Registry) Register(ctx context.Context, tag, markup, setupCode string) error {
	logger := r.loggerFor(ctx).With("tag", tag)

	err := r.register(tag, markup, setupCode)
	r.metrics.RecordRegistration(resultLabel(err))
	if err != nil {
		rerr := &RegistrationError{Tag: tag, Err: err}
		if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrConflict) {
			logger.Warn("Component registration ignored.", "error", err)
		} else {
			logger.Error("Component registration failed.", "error", err)
		}
		return rerr
	}

	def, _ := r.Lookup(tag)
	logger.Debug("Component registered.", "mode", def.Mode.String())
	r.bind(logger, def)
	return nil
}

// RegisterSource parses a component source fragment and registers it.
func (r *Registry) RegisterSource(ctx context.Context, tag, source string) error {
	src, err := ParseSource(source)
	if err != nil {
		r.metrics.RecordRegistration(resultLabel(err))
		r.loggerFor(ctx).Error("Component source rejected.", "tag", tag, "error", err)
		return &RegistrationError{Tag: tag, Err: err}
	}
	return r.Register(ctx, tag, src.Markup, src.Setup)
}

// RegisterModules registers every module, continuing past failures. The
// returned error joins all failures.
func (r *Registry) RegisterModules(ctx context.Context, modules ...Module) error {
	var errs []error
	for _, m := range modules {
		if err := m.Register(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) register(tag, markup, setupCode string) error {
	if err := tagname.Validate(tag); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	if r.Has(tag) {
		return ErrDuplicate
	}

	def, err := newDefinition(tag, markup, setupCode)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[tag]; ok {
		return ErrDuplicate
	}
	for _, h := range r.hosts {
		if h.Defined(tag) {
			return ErrConflict
		}
	}
	r.defs[tag] = def
	r.order = append(r.order, tag)
	return nil
}

// bind tells every attached host about def. Hosts are called without the
// lock held because defining may construct instances that read the registry.
func (r *Registry) bind(logger *slog.Logger, def *Definition) {
	r.mu.RLock()
	hosts := make([]Host, len(r.hosts))
	copy(hosts, r.hosts)
	r.mu.RUnlock()

	for _, h := range hosts {
		if err := h.Define(def); err != nil {
			logger.Error("Failed to bind component to host.", "error", err)
		}
	}
}

// Attach makes h receive every current and future definition. The returned
// function detaches it.
func (r *Registry) Attach(h Host) (detach func()) {
	r.mu.Lock()
	r.hosts = append(r.hosts, h)
	r.mu.Unlock()

	for _, def := range r.Definitions() {
		if h.Defined(def.Tag) {
			r.logger.Warn("Host already defines component tag; skipping.", "tag", def.Tag)
			continue
		}
		if err := h.Define(def); err != nil {
			r.logger.Error("Failed to bind component to host.", "tag", def.Tag, "error", err)
		}
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, cur := range r.hosts {
			if cur == h {
				r.hosts = append(r.hosts[:i], r.hosts[i+1:]...)
				return
			}
		}
	}
}

// Lookup returns the definition registered for tag.
func (r *Registry) Lookup(tag string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[tag]
	return def, ok
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.Lookup(tag)
	return ok
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.defs[tag])
	}
	return out
}

// RegisterStyleSheet adds a sheet applied to every isolated boundary created
// from now on.
func (r *Registry) RegisterStyleSheet(css string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sheets = append(r.sheets, css)
}

// StyleSheets returns the base sheet followed by registered sheets.
func (r *Registry) StyleSheets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{BaseStyleSheet}, r.sheets...)
}

func (r *Registry) loggerFor(ctx context.Context) *slog.Logger {
	return ctxlog.FromContextOr(ctx, r.logger)
}
