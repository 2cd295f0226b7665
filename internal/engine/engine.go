package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/binding"
	"github.com/specialistvlad/compositor/internal/component"
	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/namespace"
	"github.com/specialistvlad/compositor/internal/ownership"
	"github.com/specialistvlad/compositor/internal/reactive"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/scheduler"
	"github.com/specialistvlad/compositor/internal/scope"
)

// Options configures an Engine.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
	// Registry supplies definitions. A private one is created when nil.
	Registry *registry.Registry
	// Loader fetches unknown tags during Mount. Optional.
	Loader *namespace.Loader
	// Magics are extra names visible to every setup block.
	Magics map[string]any
}

// Engine runs components inside one document.
type Engine struct {
	logger  *slog.Logger
	doc     *dom.Document
	reg     *registry.Registry
	loader  *namespace.Loader
	metrics *metrics.Collector

	rt      *reactive.Runtime
	scopes  *scope.Resolver
	binder  *binding.Binder
	factory *component.Factory
	tasks   *scheduler.Microtasks
	sched   scheduler.Scheduler
	detach  func()

	// requested holds tags asked for by x-load and not fetched yet.
	requested []string
}

// New returns an Engine for doc. Definitions already in the registry are
// bound immediately; instances initialize on the next Tick.
func New(doc *dom.Document, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = registry.New(logger, opts.Metrics)
	}

	e := &Engine{
		logger:  logger,
		doc:     doc,
		reg:     reg,
		loader:  opts.Loader,
		metrics: opts.Metrics,
		rt:      reactive.New(),
		tasks:   scheduler.NewMicrotasks(),
	}
	e.scopes = scope.New(logger, ownership.New())
	e.binder = binding.New(logger, e.rt, e.scopes, func(n *dom.Node) bool { return doc.Defined(n.Tag()) })
	e.binder.SetHooks(binding.Hooks{Component: e.defineInline, Load: e.requestLoad})
	e.sched = scheduler.New(logger, e.tasks, opts.Metrics)
	e.factory = component.NewFactory(component.Options{
		Logger:      logger,
		Binder:      e.binder,
		Metrics:     opts.Metrics,
		StyleSheets: reg.StyleSheets,
		Magics:      opts.Magics,
		OnRemoved:   e.sched.Disconnected,
	})
	e.detach = reg.Attach(e)
	return e
}

// Defined implements registry.Host.
func (e *Engine) Defined(tag string) bool { return e.doc.Defined(tag) }

// Define implements registry.Host by binding def's lifecycle to the
// document.
func (e *Engine) Define(def *registry.Definition) error {
	return e.doc.Define(def.Tag, dom.Lifecycle{
		Construct: func(n *dom.Node) { e.factory.Create(n, def) },
		Connected: func(n *dom.Node) { e.sched.Schedule(e.factory.Create(n, def)) },
		Disconnected: func(n *dom.Node) {
			inst, ok := e.factory.ForHost(n)
			if !ok || inst.State() == component.Initializing || inst.Unwrapped() {
				return
			}
			e.sched.Disconnected(inst)
		},
	})
}

// Document returns the engine's document.
func (e *Engine) Document() *dom.Document { return e.doc }

// Registry returns the registry the engine is attached to.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Runtime returns the reactive runtime shared by every instance.
func (e *Engine) Runtime() *reactive.Runtime { return e.rt }

// Binder returns the directive binder.
func (e *Engine) Binder() *binding.Binder { return e.binder }

// Scopes returns the scope resolver.
func (e *Engine) Scopes() *scope.Resolver { return e.scopes }

// Scheduler returns the initialization scheduler.
func (e *Engine) Scheduler() scheduler.Scheduler { return e.sched }

// Mount registers the page's in-place definitions, loads unknown tags when a
// loader is configured, binds the page's own directives and initializes
// every pending instance. Tags requested with x-load are fetched until no
// request is left. A load failure is returned after the page has still been
// mounted with what is available.
func (e *Engine) Mount(ctx context.Context) error {
	logger := ctxlog.FromContextOr(ctx, e.logger)

	body := e.doc.Body()
	if body != nil {
		if n := e.binder.DefineComponents(body); n > 0 {
			logger.Debug("In-page components defined.", "count", n)
		}
	}

	var errs []error
	if e.loader != nil {
		if err := e.loader.FindAndLoad(ctx, e.doc.Root()); err != nil {
			logger.Error("Failed to load some components.", "error", err)
			errs = append(errs, err)
		}
	}
	if body != nil {
		e.binder.InitTree(body)
	}
	ran := e.Tick()
	for len(e.requested) > 0 && e.loader != nil {
		if err := e.Load(ctx); err != nil {
			logger.Error("Failed to load requested components.", "error", err)
			errs = append(errs, err)
		}
		ran += e.Tick()
	}
	logger.Debug("Document mounted.", "microtasks", ran, "defined", len(e.doc.DefinedTags()))
	return errors.Join(errs...)
}

// Load fetches and registers tags through the loader, together with any tag
// still requested by an x-load directive.
func (e *Engine) Load(ctx context.Context, tags ...string) error {
	if e.loader == nil {
		return fmt.Errorf("no namespace loader configured")
	}
	tags = append(e.requested, tags...)
	e.requested = nil
	return e.loader.LoadAll(ctx, tags)
}

// defineInline registers el as the definition of tag. A rejected definition
// is logged by the registry.
func (e *Engine) defineInline(el *dom.Node, tag string) {
	_ = e.reg.Register(context.Background(), tag, el.OuterHTML(), "")
}

// requestLoad queues tag for the next Load unless it is already known.
func (e *Engine) requestLoad(el *dom.Node, tag string) {
	if e.reg.Has(tag) || slices.Contains(e.requested, tag) {
		return
	}
	if e.loader == nil {
		e.logger.Warn("Ignoring component load request without a namespace loader.", "tag", tag, "node", el.Address().String())
		return
	}
	e.requested = append(e.requested, tag)
}

// Tick drains the microtask queue: pending batches initialize and deferred
// teardowns run. It returns the number of microtasks run.
func (e *Engine) Tick() int {
	return e.tasks.Drain()
}

// Render serializes the live document.
func (e *Engine) Render(w io.Writer) error {
	return e.doc.Render(w)
}

// Dispatch fires a custom event at target. It bubbles through composed
// ancestors, crossing isolated boundaries. Work queued by handlers runs
// before Dispatch returns.
func (e *Engine) Dispatch(target *dom.Node, event string, detail any) *binding.Event {
	var v goja.Value
	if detail != nil {
		v = e.rt.ToValue(detail)
	}
	ev := e.binder.Dispatch(target, event, v)
	e.Tick()
	return ev
}

// Instance returns the instance represented by el, either its host or the
// element an unwrapped instance replaced its host with.
func (e *Engine) Instance(el *dom.Node) (*component.Instance, bool) {
	return e.factory.ForElement(el)
}

// OriginalHost returns the tag element an unwrapped element replaced.
func (e *Engine) OriginalHost(el *dom.Node) (*dom.Node, bool) {
	inst, ok := e.factory.ForElement(el)
	if !ok || !inst.Unwrapped() || inst.Target() != el {
		return nil, false
	}
	return inst.Host(), true
}

// Close destroys every live instance and detaches from the registry.
func (e *Engine) Close() {
	if e.detach != nil {
		e.detach()
		e.detach = nil
	}
	for _, inst := range e.factory.Instances() {
		inst.Destroy()
	}
	e.Tick()
}
