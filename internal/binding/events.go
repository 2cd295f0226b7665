package binding

import (
	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/dom"
)

// Event is a custom event travelling from its target up the composed tree.
type Event struct {
	Type    string
	Detail  goja.Value
	Target  *dom.Node
	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

type listener struct {
	event     string
	fn        func(*Event, goja.Value)
	cancelled bool
}

// Listen registers fn for events named event reaching el. The returned
// function removes it.
func (b *Binder) Listen(el *dom.Node, event string, fn func(*Event)) (cancel func()) {
	l := b.listen(el, event, func(ev *Event, _ goja.Value) { fn(ev) })
	return func() { l.cancelled = true }
}

func (b *Binder) listen(el *dom.Node, event string, fn func(*Event, goja.Value)) *listener {
	l := &listener{event: event, fn: fn}
	b.handlers[el] = append(b.handlers[el], l)
	return l
}

// Dispatch delivers an event to target and then to each composed ancestor,
// crossing isolated boundaries, until a handler stops it.
func (b *Binder) Dispatch(target *dom.Node, name string, detail goja.Value) *Event {
	if detail == nil {
		detail = goja.Undefined()
	}
	ev := &Event{Type: name, Detail: detail, Target: target}
	jsEvent := b.eventValue(ev)

	for cur := target; cur != nil && !ev.stopped; cur = cur.ComposedParent() {
		ls := b.handlers[cur]
		live := ls[:0]
		for _, l := range ls {
			if !l.cancelled {
				live = append(live, l)
			}
		}
		if len(live) == 0 {
			delete(b.handlers, cur)
			continue
		}
		b.handlers[cur] = live
		snapshot := make([]*listener, len(live))
		copy(snapshot, live)
		for _, l := range snapshot {
			if l.event == name && !l.cancelled {
				l.fn(ev, jsEvent)
			}
		}
	}
	return ev
}

func (b *Binder) eventValue(ev *Event) goja.Value {
	vm := b.rt.VM()
	obj := vm.NewObject()
	_ = obj.Set("type", ev.Type)
	_ = obj.Set("detail", ev.Detail)
	_ = obj.Set("target", b.Wrap(ev.Target))
	_ = obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		ev.StopPropagation()
		return goja.Undefined()
	})
	return obj
}

// Wrap returns a small JS facade over an element, stable per node.
func (b *Binder) Wrap(el *dom.Node) *goja.Object {
	if el == nil {
		return nil
	}
	if obj, ok := b.wrapped[el]; ok {
		return obj
	}
	vm := b.rt.VM()
	obj := vm.NewObject()
	_ = obj.Set("tagName", el.Tag())
	_ = obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := el.GetAttribute(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	_ = obj.Set("hasAttribute", func(name string) bool { return el.HasAttribute(name) })
	_ = obj.Set("setAttribute", func(name, val string) { el.SetAttribute(name, val) })
	_ = obj.Set("removeAttribute", func(name string) { el.RemoveAttribute(name) })
	_ = obj.Set("dispatchEvent", func(name string, detail goja.Value) { b.Dispatch(el, name, detail) })
	_ = obj.DefineAccessorProperty("textContent",
		vm.ToValue(func(goja.FunctionCall) goja.Value { return vm.ToValue(el.TextContent()) }),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			el.SetTextContent(call.Argument(0).String())
			return goja.Undefined()
		}),
		goja.FLAG_TRUE, goja.FLAG_TRUE)
	b.wrapped[el] = obj
	return obj
}
