package binding

import (
	"log/slog"
	"strings"

	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/reactive"
	"github.com/specialistvlad/compositor/internal/scope"
)

// Prefix is the directive attribute prefix.
const Prefix = "x-"

// Magic produces a value visible to expressions evaluated on el.
type Magic func(el *dom.Node) any

type bound struct {
	effects   []*reactive.Effect
	listeners []*listener
	cleanups  []func()
}

// Binder owns the live bindings of one document.
type Binder struct {
	logger *slog.Logger
	rt     *reactive.Runtime
	scopes *scope.Resolver
	skip   func(*dom.Node) bool

	bound    map[*dom.Node]*bound
	handlers map[*dom.Node][]*listener
	magics   map[string]Magic
	order    []string
	wrapped  map[*dom.Node]*goja.Object

	hooks       Hooks
	definitions map[*dom.Node]bool
}

// New returns a Binder. skip reports elements whose attributes and light
// children belong to someone else, typically custom element hosts.
func New(logger *slog.Logger, rt *reactive.Runtime, scopes *scope.Resolver, skip func(*dom.Node) bool) *Binder {
	if skip == nil {
		skip = func(*dom.Node) bool { return false }
	}
	b := &Binder{
		logger:   logger,
		rt:       rt,
		scopes:   scopes,
		skip:     skip,
		bound:    make(map[*dom.Node]*bound),
		handlers: make(map[*dom.Node][]*listener),
		magics:   make(map[string]Magic),
		wrapped:  make(map[*dom.Node]*goja.Object),

		definitions: make(map[*dom.Node]bool),
	}
	b.AddMagic("$el", func(el *dom.Node) any { return b.Wrap(el) })
	b.AddMagic("$dispatch", func(el *dom.Node) any {
		return func(call goja.FunctionCall) goja.Value {
			b.Dispatch(el, call.Argument(0).String(), call.Argument(1))
			return goja.Undefined()
		}
	})
	return b
}

// Runtime returns the reactive runtime expressions run in.
func (b *Binder) Runtime() *reactive.Runtime { return b.rt }

// Scopes returns the scope resolver used to find evaluation contexts.
func (b *Binder) Scopes() *scope.Resolver { return b.scopes }

// AddMagic makes a value available to every expression under name.
func (b *Binder) AddMagic(name string, fn Magic) {
	if _, ok := b.magics[name]; !ok {
		b.order = append(b.order, name)
	}
	b.magics[name] = fn
}

// Eval evaluates code in the context of el.
func (b *Binder) Eval(el *dom.Node, code string, locals map[string]any) (goja.Value, error) {
	return b.EvalIn(b.scopes.ContextOf(el), el, code, locals)
}

// EvalIn evaluates code against an explicit context, with el's magics.
func (b *Binder) EvalIn(ctx reactive.Stack, el *dom.Node, code string, locals map[string]any) (goja.Value, error) {
	all := make(map[string]any, len(b.magics)+len(locals))
	for _, name := range b.order {
		all[name] = b.magics[name](el)
	}
	for k, v := range locals {
		all[k] = v
	}
	return b.rt.Eval(ctx, code, all)
}

// Bound reports whether el has live bindings.
func (b *Binder) Bound(el *dom.Node) bool {
	_, ok := b.bound[el]
	return ok
}

// InitTree binds every unbound element under root, root included. Elements
// the skip predicate selects are left alone together with their children,
// except for root itself, whose children are still visited.
func (b *Binder) InitTree(root *dom.Node) {
	root.Walk(func(n *dom.Node) bool {
		if !n.IsElement() {
			return true
		}
		if b.skip(n) {
			return n == root
		}
		if b.definitions[n] {
			return false
		}
		if _, done := b.bound[n]; done {
			return true
		}
		return b.bindElement(n)
	})
}

// bindElement applies the directives on el and reports whether its children
// should be visited.
func (b *Binder) bindElement(el *dom.Node) bool {
	if attr, ok := componentAttr(el); ok {
		b.defineComponent(el, attr)
		return false
	}
	state := &bound{}
	b.bound[el] = state

	if code, ok := el.GetAttribute(Prefix + "data"); ok {
		b.bindData(el, code)
	}

	descend := true
	for _, attr := range el.Attributes() {
		name, arg := directive(attr.Key)
		switch name {
		case "":
			continue
		case "text":
			b.bindText(el, state, attr.Val)
		case "html":
			b.bindHTML(el, state, attr.Val)
		case "show":
			b.bindShow(el, state, attr.Val)
		case "bind":
			b.bindAttr(el, state, arg, attr.Val)
		case "on":
			b.bindOn(el, state, arg, attr.Val)
		case "if":
			if el.Is("template") {
				b.bindIf(el, state, attr.Val)
				descend = false
			}
		case "for":
			if el.Is("template") {
				b.bindFor(el, state, attr.Val)
				descend = false
			}
		case "load":
			b.bindLoad(el, arg, attr.Val)
		}
	}

	if code, ok := el.GetAttribute(Prefix + "init"); ok {
		if _, err := b.Eval(el, code, nil); err != nil {
			b.warn(el, "x-init", code, err)
		}
	}
	return descend
}

// directive splits an attribute name into a directive and its argument.
// Shorthands "@evt" and ":attr" map to "on" and "bind".
func directive(key string) (name, arg string) {
	switch {
	case strings.HasPrefix(key, "@"):
		return "on", key[1:]
	case strings.HasPrefix(key, ":"):
		return "bind", key[1:]
	case strings.HasPrefix(key, Prefix):
		rest := key[len(Prefix):]
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			return rest[:i], rest[i+1:]
		}
		switch rest {
		case "text", "html", "show", "if", "for", "component", "load":
			return rest, ""
		}
	}
	return "", ""
}

// Unbind stops the effects and listeners bound on el alone.
func (b *Binder) Unbind(el *dom.Node) {
	state, ok := b.bound[el]
	if !ok {
		return
	}
	delete(b.bound, el)
	for _, e := range state.effects {
		e.Stop()
	}
	for _, fn := range state.cleanups {
		fn()
	}
	for _, l := range state.listeners {
		l.cancelled = true
	}
}

// UnbindTree unbinds root and every light descendant.
func (b *Binder) UnbindTree(root *dom.Node) {
	root.Walk(func(n *dom.Node) bool {
		b.Unbind(n)
		return true
	})
}

func (b *Binder) warn(el *dom.Node, dir, code string, err error) {
	b.logger.Warn("Directive evaluation failed.",
		"directive", dir,
		"expression", code,
		"node", el.Address().String(),
		"error", err,
	)
}
