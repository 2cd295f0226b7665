package binding

import (
	"strings"

	"github.com/specialistvlad/compositor/internal/dom"
)

// Hooks receive the directives that reach outside the document. A nil hook
// leaves its directive inert.
type Hooks struct {
	// Component is called with an element that defines tag in place. The
	// directive attribute is already gone when it runs.
	Component func(el *dom.Node, tag string)
	// Load is called when an element asks for tag to be fetched.
	Load func(el *dom.Node, tag string)
}

// SetHooks replaces the hooks used by x-component and x-load.
func (b *Binder) SetHooks(h Hooks) { b.hooks = h }

// qualify prefixes name with the namespace given as directive argument, so
// x-load:ui="card" asks for ui-card.
func qualify(namespace, name string) string {
	name = strings.TrimSpace(name)
	if namespace == "" || name == "" {
		return name
	}
	return namespace + "-" + name
}

// componentAttr returns the x-component attribute of el, if any.
func componentAttr(el *dom.Node) (dom.Attr, bool) {
	for _, attr := range el.Attributes() {
		if name, _ := directive(attr.Key); name == "component" {
			return attr, true
		}
	}
	return dom.Attr{}, false
}

// defineComponent hands el to the Component hook as the definition of the
// tag its x-component attribute names. Elements other than templates are
// hidden afterwards since they stay in the live tree.
func (b *Binder) defineComponent(el *dom.Node, attr dom.Attr) {
	_, namespace := directive(attr.Key)
	tag := qualify(namespace, attr.Val)
	b.definitions[el] = true
	el.RemoveAttribute(attr.Key)
	if b.hooks.Component == nil {
		b.logger.Warn("Ignoring in-page component definition.", "tag", tag, "node", el.Address().String())
	} else {
		b.hooks.Component(el, tag)
	}
	if !el.Is("template") {
		el.SetAttribute("style", "display: none;")
	}
}

// DefineComponents applies every x-component under root, root included,
// without binding anything else. Definitions found later by InitTree are
// applied the same way.
func (b *Binder) DefineComponents(root *dom.Node) int {
	n := 0
	root.Walk(func(el *dom.Node) bool {
		if !el.IsElement() {
			return true
		}
		if b.skip(el) && el != root {
			return false
		}
		if b.definitions[el] {
			return false
		}
		if _, done := b.bound[el]; done {
			return true
		}
		attr, ok := componentAttr(el)
		if !ok {
			return true
		}
		b.defineComponent(el, attr)
		n++
		return false
	})
	return n
}

func (b *Binder) bindLoad(el *dom.Node, namespace, code string) {
	for _, name := range strings.FieldsFunc(code, func(r rune) bool { return r == ',' || r == ' ' }) {
		tag := qualify(namespace, name)
		if b.hooks.Load == nil {
			b.logger.Warn("Ignoring component load request.", "tag", tag, "node", el.Address().String())
			continue
		}
		b.hooks.Load(el, tag)
	}
}
