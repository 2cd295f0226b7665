package binding

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/dom"
)

var errLoopSyntax = errors.New(`expected "item in items" or "(item, index) in items"`)

type loop struct {
	item  string
	index string
	items string
}

func parseLoop(code string) (loop, error) {
	lhs, rhs, ok := strings.Cut(code, " in ")
	if !ok {
		lhs, rhs, ok = strings.Cut(code, " of ")
	}
	if !ok {
		return loop{}, errLoopSyntax
	}
	lhs = strings.TrimSpace(lhs)
	lhs = strings.TrimSuffix(strings.TrimPrefix(lhs, "("), ")")
	item, index, _ := strings.Cut(lhs, ",")
	l := loop{
		item:  strings.TrimSpace(item),
		index: strings.TrimSpace(index),
		items: strings.TrimSpace(rhs),
	}
	if l.item == "" || l.items == "" {
		return loop{}, errLoopSyntax
	}
	return l, nil
}

type entry struct {
	key   goja.Value
	value goja.Value
}

// entries lists what a loop iterates: array elements, the keys of an
// object, or 1..n for a number n. Reading a reactive object here makes the
// running effect depend on its keys.
func (b *Binder) entries(v goja.Value) []entry {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if o, ok := b.rt.Lookup(v); ok {
		var out []entry
		for _, k := range o.Keys() {
			out = append(out, entry{key: b.rt.ToValue(k), value: o.Get(k)})
		}
		return out
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		n := v.ToInteger()
		out := make([]entry, 0, max(n, 0))
		for i := int64(0); i < n; i++ {
			out = append(out, entry{key: b.rt.ToValue(i), value: b.rt.ToValue(i + 1)})
		}
		return out
	}
	if obj.ClassName() == "Array" {
		n := obj.Get("length").ToInteger()
		out := make([]entry, 0, n)
		for i := int64(0); i < n; i++ {
			out = append(out, entry{key: b.rt.ToValue(i), value: obj.Get(strconv.FormatInt(i, 10))})
		}
		return out
	}
	var out []entry
	for _, k := range obj.Keys() {
		out = append(out, entry{key: b.rt.ToValue(k), value: obj.Get(k)})
	}
	return out
}

// bindFor renders one clone of the template content per entry, each in a
// context extended with the item and index names. Any change to the
// iterated value re-renders every clone.
func (b *Binder) bindFor(tpl *dom.Node, state *bound, code string) {
	l, err := parseLoop(code)
	if err != nil {
		b.warn(tpl, "x-for", code, err)
		return
	}

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

	b.effect(tpl, state, "x-for", l.items, func(v goja.Value) {
		items := b.entries(v)
		clear()
		parent := tpl.Parent()
		if parent == nil || tpl.Content() == nil {
			return
		}
		ctx := b.scopes.ContextOf(tpl)
		ref := nextSibling(tpl)
		b.rt.Untracked(func() {
			for _, it := range items {
				layer := b.rt.NewObject()
				layer.SetValue(l.item, it.value)
				if l.index != "" {
					layer.SetValue(l.index, it.key)
				}
				clone := tpl.Content().CloneNode(true)
				kids := clone.Children()
				for _, n := range kids {
					if n.IsElement() {
						b.scopes.Attach(n, ctx.Push(layer))
					}
				}
				_ = parent.InsertBefore(clone, ref)
				rendered = append(rendered, kids...)
				for _, n := range kids {
					if n.IsElement() {
						b.InitTree(n)
					}
				}
			}
		})
	})
}
