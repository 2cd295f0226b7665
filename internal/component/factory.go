package component

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/specialistvlad/compositor/internal/binding"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/scope"
	"github.com/specialistvlad/compositor/internal/setup"
	"github.com/specialistvlad/compositor/internal/tagname"
)

// Options configures a Factory.
type Options struct {
	Logger  *slog.Logger
	Binder  *binding.Binder
	Metrics *metrics.Collector
	// StyleSheets returns the sheets applied to isolated boundaries.
	StyleSheets func() []string
	// Magics are extra names visible to every setup block.
	Magics map[string]any
	// Stop reports elements whose light children belong to another
	// component. Defaults to any custom tag.
	Stop func(*dom.Node) bool
	// OnRemoved is called when an initialized instance leaves the tree.
	OnRemoved func(*Instance)
}

// Factory creates and tracks the instances of one document.
type Factory struct {
	logger  *slog.Logger
	binder  *binding.Binder
	scopes  *scope.Resolver
	runner  *setup.Runner
	metrics *metrics.Collector
	sheets  func() []string
	magics  map[string]any
	stop    func(*dom.Node) bool
	onGone  func(*Instance)

	byHost   map[*dom.Node]*Instance
	byTarget map[*dom.Node]*Instance
}

// NewFactory returns a Factory sharing the binder's runtime and resolver.
func NewFactory(opts Options) *Factory {
	f := &Factory{
		logger:   opts.Logger,
		binder:   opts.Binder,
		scopes:   opts.Binder.Scopes(),
		runner:   setup.NewRunner(opts.Logger, opts.Binder),
		metrics:  opts.Metrics,
		sheets:   opts.StyleSheets,
		magics:   opts.Magics,
		stop:     opts.Stop,
		onGone:   opts.OnRemoved,
		byHost:   make(map[*dom.Node]*Instance),
		byTarget: make(map[*dom.Node]*Instance),
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.sheets == nil {
		f.sheets = func() []string { return []string{registry.BaseStyleSheet} }
	}
	if f.stop == nil {
		f.stop = func(n *dom.Node) bool { return tagname.IsCustom(n.Tag()) }
	}
	return f
}

// Create returns the instance for host, creating it on first use.
func (f *Factory) Create(host *dom.Node, def *registry.Definition) *Instance {
	if inst, ok := f.byHost[host]; ok {
		return inst
	}
	id := uuid.New()
	inst := &Instance{
		id:     id,
		f:      f,
		def:    def,
		host:   host,
		logger: f.logger.With("tag", def.Tag, "instance", id.String()),
	}
	f.byHost[host] = inst
	return inst
}

// ForHost returns the instance created for host.
func (f *Factory) ForHost(host *dom.Node) (*Instance, bool) {
	inst, ok := f.byHost[host]
	return inst, ok
}

// ForElement returns the instance represented by el, either as its host or
// as the element that replaced the host.
func (f *Factory) ForElement(el *dom.Node) (*Instance, bool) {
	if inst, ok := f.byTarget[el]; ok {
		return inst, true
	}
	return f.ForHost(el)
}

// Instances returns every instance created so far, in no particular order.
func (f *Factory) Instances() []*Instance {
	out := make([]*Instance, 0, len(f.byHost))
	for _, inst := range f.byHost {
		out = append(out, inst)
	}
	return out
}

func (f *Factory) track(target *dom.Node, inst *Instance) { f.byTarget[target] = inst }
func (f *Factory) untrack(target *dom.Node)               { delete(f.byTarget, target) }

func (f *Factory) forget(inst *Instance) {
	if f.byHost[inst.host] == inst {
		delete(f.byHost, inst.host)
	}
}

func (f *Factory) removed(inst *Instance) {
	if f.onGone != nil {
		f.onGone(inst)
	}
}
