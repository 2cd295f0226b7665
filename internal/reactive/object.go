package reactive

import (
	"github.com/dop251/goja"
)

// Object is a reactive property bag. Its JS face is a goja dynamic object, so
// scripts read and write it like any plain object.
type Object struct {
	rt     *Runtime
	js     *goja.Object
	keys   []string
	values map[string]goja.Value
	subs   map[string][]*Effect
}

// NewObject returns an empty reactive object.
func (rt *Runtime) NewObject() *Object {
	o := &Object{
		rt:     rt,
		values: make(map[string]goja.Value),
		subs:   make(map[string][]*Effect),
	}
	o.js = rt.vm.NewDynamicObject(dynamic{o})
	rt.objects[o.js] = o
	return o
}

// Reactive wraps a JS value. Plain objects have their own enumerable
// properties copied into a new reactive object, recursively; a value that is
// already reactive is returned as is. Anything else yields nil.
func (rt *Runtime) Reactive(v goja.Value) *Object {
	if o, ok := rt.Lookup(v); ok {
		return o
	}
	src, ok := v.(*goja.Object)
	if !ok || !rt.isPlain(src) {
		return nil
	}
	o := rt.NewObject()
	for _, k := range src.Keys() {
		o.put(k, rt.deepen(src.Get(k)))
	}
	return o
}

// FromMap builds a reactive object from Go values.
func (rt *Runtime) FromMap(m map[string]any, order ...string) *Object {
	o := rt.NewObject()
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if v, ok := m[k]; ok {
			o.put(k, rt.deepen(rt.ToValue(v)))
			seen[k] = true
		}
	}
	for k, v := range m {
		if !seen[k] {
			o.put(k, rt.deepen(rt.ToValue(v)))
		}
	}
	return o
}

// Ref returns a reactive object holding v under "value".
func (rt *Runtime) Ref(v goja.Value) *Object {
	o := rt.NewObject()
	o.put("value", rt.deepen(v))
	return o
}

func (rt *Runtime) isPlain(obj *goja.Object) bool {
	if _, ours := rt.objects[obj]; ours {
		return false
	}
	if IsFunction(obj) {
		return false
	}
	return obj.ClassName() == "Object"
}

func (rt *Runtime) deepen(v goja.Value) goja.Value {
	if obj, ok := v.(*goja.Object); ok && rt.isPlain(obj) {
		return rt.Reactive(obj).js
	}
	return v
}

// Value returns the JS face of the object.
func (o *Object) Value() *goja.Object { return o.js }

// Get reads a property, recording a dependency for the running effect.
func (o *Object) Get(key string) goja.Value {
	o.track(key)
	return o.values[key]
}

// Export reads a property and converts it to a Go value.
func (o *Object) Export(key string) any {
	v := o.Get(key)
	if v == nil {
		return nil
	}
	return v.Export()
}

// Has reports whether the property exists.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Set writes a property and re-runs dependent effects when the value changed.
func (o *Object) Set(key string, v any) {
	o.SetValue(key, o.rt.ToValue(v))
}

// SetValue is Set for a value that is already a JS value.
func (o *Object) SetValue(key string, v goja.Value) {
	v = o.rt.deepen(v)
	if old, ok := o.values[key]; ok && old != nil && v != nil && old.SameAs(v) {
		return
	}
	o.put(key, v)
	o.trigger(key)
}

// Delete removes a property.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	o.trigger(key)
}

// Snapshot exports every property to Go values without tracking.
func (o *Object) Snapshot() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		if v := o.values[k]; v != nil {
			if inner, ok := o.rt.Lookup(v); ok {
				out[k] = inner.Snapshot()
				continue
			}
			out[k] = v.Export()
		}
	}
	return out
}

func (o *Object) put(key string, v goja.Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) track(key string) {
	e := o.rt.current()
	if e == nil {
		return
	}
	for _, s := range o.subs[key] {
		if s == e {
			return
		}
	}
	o.subs[key] = append(o.subs[key], e)
	e.deps = append(e.deps, dep{obj: o, key: key})
}

func (o *Object) untrack(key string, e *Effect) {
	subs := o.subs[key]
	for i, s := range subs {
		if s == e {
			o.subs[key] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (o *Object) trigger(key string) {
	subs := o.subs[key]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]*Effect, len(subs))
	copy(snapshot, subs)
	o.rt.enqueue(snapshot)
}

// dynamic adapts Object to goja.DynamicObject.
type dynamic struct{ o *Object }

func (d dynamic) Get(key string) goja.Value { return d.o.Get(key) }

func (d dynamic) Set(key string, val goja.Value) bool {
	d.o.SetValue(key, val)
	return true
}

func (d dynamic) Has(key string) bool { return d.o.Has(key) }

func (d dynamic) Delete(key string) bool {
	d.o.Delete(key)
	return true
}

func (d dynamic) Keys() []string { return d.o.Keys() }
