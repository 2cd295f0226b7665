package setup

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/binding"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/reactive"
)

// Env describes the instance a setup block runs for.
type Env struct {
	// Tag is the component's tag name, used in diagnostics.
	Tag string
	// Host is the element the component was instantiated on.
	Host *dom.Node
	// Root is the node rendered content is appended to.
	Root *dom.Node
	// Target is the node events are dispatched from.
	Target *dom.Node
	// Outer is the context the host itself evaluates against.
	Outer reactive.Stack
	// Magics are extra names visible to the block.
	Magics map[string]any
}

// Result is what a setup block produced.
type Result struct {
	State   *reactive.Object
	Props   *reactive.Object
	Init    goja.Value
	Destroy goja.Value

	effects []*reactive.Effect
}

// Stop stops every effect and computed cell the block created.
func (r *Result) Stop() {
	for _, e := range r.effects {
		e.Stop()
	}
	r.effects = nil
}

// Runner executes compiled setup blocks against a Binder's runtime.
type Runner struct {
	logger *slog.Logger
	b      *binding.Binder
}

// NewRunner returns a Runner.
func NewRunner(logger *slog.Logger, b *binding.Binder) *Runner {
	return &Runner{logger: logger, b: b}
}

// Run evaluates prog for env. A panic raised by the block is returned as an
// error.
func (r *Runner) Run(prog *goja.Program, env Env) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("setup for %s panicked: %v", env.Tag, p)
		}
	}()

	rt := r.b.Runtime()
	vm := rt.VM()

	fnVal, err := vm.RunProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("failed to load setup for %s: %w", env.Tag, err)
	}

	res = &Result{Props: rt.NewObject()}
	envObj := r.environment(env, res)

	out, err := rt.Call(fnVal, nil, envObj)
	if err != nil {
		res.Stop()
		return nil, fmt.Errorf("setup for %s failed: %w", env.Tag, err)
	}

	state := rt.Reactive(out)
	if state == nil {
		if !reactive.IsEmpty(out) {
			r.logger.Warn("Setup returned a non-object value; ignoring it.", "tag", env.Tag, "value", out.String())
		}
		state = rt.NewObject()
	}
	if !state.Has("$props") {
		state.SetValue("$props", res.Props.Value())
	}
	res.State = state

	rt.Untracked(func() {
		if v := state.Get("init"); reactive.IsFunction(v) {
			res.Init = v
		}
		if v := state.Get("destroy"); reactive.IsFunction(v) {
			res.Destroy = v
		}
	})
	return res, nil
}

func (r *Runner) environment(env Env, res *Result) *goja.Object {
	rt := r.b.Runtime()
	vm := rt.VM()
	obj := vm.NewObject()

	target := env.Target
	if target == nil {
		target = env.Host
	}

	_ = obj.Set("$host", r.b.Wrap(env.Host))
	if env.Root != nil {
		_ = obj.Set("$root", r.b.Wrap(env.Root))
	}
	if shadow := env.Host.Shadow(); shadow != nil {
		_ = obj.Set("$shadow", r.b.Wrap(shadow))
	} else {
		_ = obj.Set("$shadow", goja.Null())
	}

	_ = obj.Set("ref", func(call goja.FunctionCall) goja.Value {
		return rt.Ref(call.Argument(0)).Value()
	})
	_ = obj.Set("reactive", func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		if o := rt.Reactive(arg); o != nil {
			return o.Value()
		}
		if reactive.IsEmpty(arg) {
			return rt.NewObject().Value()
		}
		return arg
	})
	_ = obj.Set("computed", func(call goja.FunctionCall) goja.Value {
		fn := call.Argument(0)
		cell, eff := rt.Computed(func() goja.Value {
			v, err := rt.Call(fn, nil)
			if err != nil {
				r.logger.Warn("Computed value failed.", "tag", env.Tag, "error", err)
				return goja.Undefined()
			}
			return v
		})
		res.effects = append(res.effects, eff)
		return cell.Value()
	})
	_ = obj.Set("effect", func(call goja.FunctionCall) goja.Value {
		fn := call.Argument(0)
		eff := rt.Effect(func() {
			if _, err := rt.Call(fn, nil); err != nil {
				r.logger.Warn("Effect failed.", "tag", env.Tag, "error", err)
			}
		})
		res.effects = append(res.effects, eff)
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			eff.Stop()
			return goja.Undefined()
		})
	})
	_ = obj.Set("defineProps", func(call goja.FunctionCall) goja.Value {
		r.defineProps(env, res.Props, call.Argument(0))
		return res.Props.Value()
	})
	_ = obj.Set("$dispatch", func(call goja.FunctionCall) goja.Value {
		r.b.Dispatch(target, call.Argument(0).String(), call.Argument(1))
		return goja.Undefined()
	})

	for name, v := range env.Magics {
		_ = obj.Set(name, v)
	}
	return obj
}
