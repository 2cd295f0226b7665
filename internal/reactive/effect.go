package reactive

import "github.com/dop251/goja"

type dep struct {
	obj *Object
	key string
}

// Effect is a function that re-runs whenever a reactive property it read
// during its previous run changes.
type Effect struct {
	rt      *Runtime
	fn      func()
	deps    []dep
	stopped bool
}

// Effect runs fn immediately and again after every change to what it read.
func (rt *Runtime) Effect(fn func()) *Effect {
	e := &Effect{rt: rt, fn: fn}
	e.run()
	return e
}

func (e *Effect) run() {
	if e.stopped {
		return
	}
	e.clear()
	e.rt.active = append(e.rt.active, e)
	defer func() { e.rt.active = e.rt.active[:len(e.rt.active)-1] }()
	e.fn()
}

func (e *Effect) clear() {
	for _, d := range e.deps {
		d.obj.untrack(d.key, e)
	}
	e.deps = e.deps[:0]
}

// Stop detaches the effect from everything it depends on.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.clear()
}

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool { return e.stopped }

// Computed returns a read-only style cell whose "value" tracks fn.
func (rt *Runtime) Computed(fn func() goja.Value) (*Object, *Effect) {
	cell := rt.NewObject()
	eff := rt.Effect(func() {
		cell.SetValue("value", fn())
	})
	return cell, eff
}
