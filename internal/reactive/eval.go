package reactive

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// Stack is an evaluation context: reactive objects searched innermost first.
type Stack []*Object

// Push returns a new stack with o as the innermost layer.
func (s Stack) Push(o *Object) Stack {
	out := make(Stack, 0, len(s)+1)
	out = append(out, o)
	return append(out, s...)
}

// Same reports whether both stacks hold the same objects in the same order.
func (s Stack) Same(other Stack) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// scopeView merges a stack into a single JS object. Writes land on the first
// layer that already has the key, else on the innermost layer.
type scopeView struct{ stack Stack }

func (v scopeView) find(key string) *Object {
	for _, o := range v.stack {
		if o.Has(key) {
			return o
		}
	}
	return nil
}

func (v scopeView) Get(key string) goja.Value {
	if o := v.find(key); o != nil {
		return o.Get(key)
	}
	return nil
}

func (v scopeView) Set(key string, val goja.Value) bool {
	if o := v.find(key); o != nil {
		o.SetValue(key, val)
		return true
	}
	if len(v.stack) == 0 {
		return false
	}
	v.stack[0].SetValue(key, val)
	return true
}

func (v scopeView) Has(key string) bool { return v.find(key) != nil }

func (v scopeView) Delete(key string) bool {
	if o := v.find(key); o != nil {
		o.Delete(key)
	}
	return true
}

func (v scopeView) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range v.stack {
		for _, k := range o.Keys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// Scope returns the merged JS view of a stack.
func (rt *Runtime) Scope(s Stack) *goja.Object {
	return rt.vm.NewDynamicObject(scopeView{stack: s})
}

// Eval evaluates markup code against a stack. The code is first compiled as
// an expression; if that fails it is compiled as a statement list whose
// result is undefined. Locals are made visible ahead of the stack.
func (rt *Runtime) Eval(s Stack, code string, locals map[string]any) (goja.Value, error) {
	fn, err := rt.compile(code)
	if err != nil {
		return nil, err
	}
	if len(locals) > 0 {
		layer := rt.NewObject()
		for k, v := range locals {
			layer.put(k, rt.ToValue(v))
		}
		s = s.Push(layer)
	}
	scope := rt.Scope(s)
	res, err := fn(scope, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", code, err)
	}
	return res, nil
}

func (rt *Runtime) compile(code string) (goja.Callable, error) {
	if fn, ok := rt.exprs[code]; ok {
		return fn, nil
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		trimmed = "undefined"
	}

	src := "(function(__scope){ with(__scope){ return (" + trimmed + "\n); } })"
	prog, err := goja.Compile("expression", src, false)
	if err != nil {
		src = "(function(__scope){ with(__scope){ " + trimmed + "\n } })"
		if prog, err = goja.Compile("statement", src, false); err != nil {
			return nil, fmt.Errorf("failed to compile %q: %w", code, err)
		}
	}
	v, err := rt.vm.RunProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", code, err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("compiled %q is not callable", code)
	}
	rt.exprs[code] = fn
	return fn, nil
}
