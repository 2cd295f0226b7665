package binding

import (
	"strings"

	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/reactive"
)

var booleanAttrs = map[string]bool{
	"checked": true, "disabled": true, "hidden": true, "readonly": true,
	"required": true, "selected": true, "open": true, "multiple": true,
}

func (b *Binder) bindData(el *dom.Node, code string) {
	ctx := b.scopes.ContextOf(el)
	layer := b.rt.NewObject()
	if strings.TrimSpace(code) != "" {
		v, err := b.EvalIn(ctx, el, code, nil)
		if err != nil {
			b.warn(el, "x-data", code, err)
		} else if obj := b.rt.Reactive(v); obj != nil {
			layer = obj
		}
	}
	b.scopes.Attach(el, ctx.Push(layer))
}

func (b *Binder) effect(el *dom.Node, state *bound, dir, code string, apply func(goja.Value)) {
	state.effects = append(state.effects, b.rt.Effect(func() {
		v, err := b.Eval(el, code, nil)
		if err != nil {
			b.warn(el, dir, code, err)
			return
		}
		apply(v)
	}))
}

func (b *Binder) bindText(el *dom.Node, state *bound, code string) {
	b.effect(el, state, "x-text", code, func(v goja.Value) {
		el.SetTextContent(toText(v))
	})
}

func (b *Binder) bindHTML(el *dom.Node, state *bound, code string) {
	b.effect(el, state, "x-html", code, func(v goja.Value) {
		frag, err := el.Document().ParseFragment(toText(v))
		if err != nil {
			b.warn(el, "x-html", code, err)
			return
		}
		for _, c := range el.Children() {
			b.UnbindTree(c)
		}
		el.RemoveChildren()
		_ = el.AppendChild(frag)
		b.rt.Untracked(func() {
			for _, c := range el.ElementChildren() {
				b.InitTree(c)
			}
		})
	})
}

func (b *Binder) bindShow(el *dom.Node, state *bound, code string) {
	original := el.Attribute("style")
	b.effect(el, state, "x-show", code, func(v goja.Value) {
		if v != nil && v.ToBoolean() {
			if original == "" {
				el.RemoveAttribute("style")
			} else {
				el.SetAttribute("style", original)
			}
			return
		}
		hidden := "display: none;"
		if original != "" {
			hidden = strings.TrimRight(original, "; ") + "; " + hidden
		}
		el.SetAttribute("style", hidden)
	})
}

func (b *Binder) bindAttr(el *dom.Node, state *bound, name, code string) {
	if name == "" {
		return
	}
	static := el.Attribute(name)
	b.effect(el, state, "x-bind:"+name, code, func(v goja.Value) {
		if name == "class" {
			el.SetAttribute("class", joinClasses(static, classValue(v)))
			return
		}
		switch {
		case reactive.IsEmpty(v):
			el.RemoveAttribute(name)
		case isFalse(v):
			el.RemoveAttribute(name)
		case booleanAttrs[name]:
			if v.ToBoolean() {
				el.SetAttribute(name, name)
			} else {
				el.RemoveAttribute(name)
			}
		default:
			el.SetAttribute(name, v.String())
		}
	})
}

func (b *Binder) bindOn(el *dom.Node, state *bound, arg, code string) {
	event := arg
	if i := strings.IndexByte(event, '.'); i >= 0 {
		event = event[:i]
	}
	if event == "" {
		return
	}
	l := b.listen(el, event, func(ev *Event, jsEvent goja.Value) {
		res, err := b.Eval(el, code, map[string]any{"$event": jsEvent})
		if err != nil {
			b.warn(el, "x-on:"+event, code, err)
			return
		}
		if reactive.IsFunction(res) {
			if _, err := b.rt.Call(res, b.rt.Scope(b.scopes.ContextOf(el)), jsEvent); err != nil {
				b.warn(el, "x-on:"+event, code, err)
			}
		}
	})
	state.listeners = append(state.listeners, l)
}

func (b *Binder) bindIf(tpl *dom.Node, state *bound, code string) {
	var rendered []*dom.Node
	clear := func() {
		for _, n := range rendered {
			b.UnbindTree(n)
			b.scopes.Forget(n)
			n.Remove()
		}
		rendered = nil
	}
	state.cleanups = append(state.cleanups, clear)

	b.effect(tpl, state, "x-if", code, func(v goja.Value) {
		show := v != nil && v.ToBoolean()
		if show == (rendered != nil) {
			return
		}
		if !show {
			clear()
			return
		}
		parent := tpl.Parent()
		if parent == nil || tpl.Content() == nil {
			return
		}
		ctx := b.scopes.ContextOf(tpl)
		clone := tpl.Content().CloneNode(true)
		rendered = clone.Children()
		for _, n := range rendered {
			if n.IsElement() {
				b.scopes.Attach(n, ctx)
			}
		}
		ref := nextSibling(tpl)
		_ = parent.InsertBefore(clone, ref)
		b.rt.Untracked(func() {
			for _, n := range rendered {
				if n.IsElement() {
					b.InitTree(n)
				}
			}
		})
	})
}

func nextSibling(n *dom.Node) *dom.Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	kids := p.Children()
	if i := n.Index(); i >= 0 && i+1 < len(kids) {
		return kids[i+1]
	}
	return nil
}

func toText(v goja.Value) string {
	if reactive.IsEmpty(v) {
		return ""
	}
	return v.String()
}

func isFalse(v goja.Value) bool {
	b, ok := v.Export().(bool)
	return ok && !b
}

func classValue(v goja.Value) string {
	if reactive.IsEmpty(v) || isFalse(v) {
		return ""
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if arr, ok := obj.Export().([]any); ok {
		var parts []string
		for _, item := range arr {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	var parts []string
	for _, k := range obj.Keys() {
		if val := obj.Get(k); val != nil && val.ToBoolean() {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}

func joinClasses(parts ...string) string {
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		for _, c := range strings.Fields(p) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return strings.Join(out, " ")
}
