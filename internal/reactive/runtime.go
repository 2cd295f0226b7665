package reactive

import (
	"fmt"

	"github.com/dop251/goja"
)

// Runtime owns the JavaScript VM and the dependency tracking state shared by
// every reactive value created from it.
type Runtime struct {
	vm *goja.Runtime

	// active is the stack of running effects; the last entry collects reads.
	active []*Effect
	// objects maps the JS face of each reactive object back to it.
	objects map[*goja.Object]*Object

	queue    []*Effect
	queued   map[*Effect]bool
	flushing bool

	exprs map[string]goja.Callable
}

// New returns a Runtime backed by a fresh goja VM.
func New() *Runtime {
	return &Runtime{
		vm:      goja.New(),
		objects: make(map[*goja.Object]*Object),
		queued:  make(map[*Effect]bool),
		exprs:   make(map[string]goja.Callable),
	}
}

// VM exposes the underlying goja runtime.
func (rt *Runtime) VM() *goja.Runtime { return rt.vm }

// ToValue converts a Go value into a JS value owned by this runtime.
func (rt *Runtime) ToValue(v any) goja.Value {
	if o, ok := v.(*Object); ok {
		return o.js
	}
	return rt.vm.ToValue(v)
}

// Lookup returns the reactive object behind a JS value, if there is one.
func (rt *Runtime) Lookup(v goja.Value) (*Object, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	o, ok := rt.objects[obj]
	return o, ok
}

func (rt *Runtime) current() *Effect {
	if len(rt.active) == 0 {
		return nil
	}
	return rt.active[len(rt.active)-1]
}

// Untracked runs fn without recording dependencies for the running effect.
func (rt *Runtime) Untracked(fn func()) {
	saved := rt.active
	rt.active = nil
	defer func() { rt.active = saved }()
	fn()
}

func (rt *Runtime) enqueue(effects []*Effect) {
	for _, e := range effects {
		if e.stopped || rt.queued[e] || e == rt.current() {
			continue
		}
		rt.queued[e] = true
		rt.queue = append(rt.queue, e)
	}
	if rt.flushing {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()
	for len(rt.queue) > 0 {
		e := rt.queue[0]
		rt.queue = rt.queue[1:]
		delete(rt.queued, e)
		e.run()
	}
}

// Call invokes a JS function value with the given receiver and arguments.
func (rt *Runtime) Call(fn goja.Value, this goja.Value, args ...goja.Value) (goja.Value, error) {
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, fmt.Errorf("value is not a function: %s", fn.String())
	}
	if this == nil {
		this = goja.Undefined()
	}
	return callable(this, args...)
}

// IsFunction reports whether v is callable.
func IsFunction(v goja.Value) bool {
	_, ok := goja.AssertFunction(v)
	return ok
}

// IsEmpty reports whether v is nil, undefined or null.
func IsEmpty(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}
