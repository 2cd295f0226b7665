package setup

import (
	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/reactive"
)

// defineProps fills props from the host's attributes. A ":name" attribute is
// evaluated in the host's outer context; a plain "name" attribute is taken
// literally; otherwise the declared default applies. Type mismatches are
// reported and the value is kept.
func (r *Runner) defineProps(env Env, props *reactive.Object, defs goja.Value) {
	rt := r.b.Runtime()
	vm := rt.VM()
	obj, ok := defs.(*goja.Object)
	if !ok {
		r.logger.Warn("defineProps expects an object of prop definitions.", "tag", env.Tag)
		return
	}

	for _, name := range obj.Keys() {
		var typ, def goja.Value
		if cfg, ok := obj.Get(name).(*goja.Object); ok {
			typ = cfg.Get("type")
			def = cfg.Get("default")
		}
		if def == nil {
			def = goja.Null()
		}

		value := def
		switch {
		case env.Host.HasAttribute(":" + name):
			code := env.Host.Attribute(":" + name)
			v, err := r.b.EvalIn(env.Outer, env.Host, code, nil)
			if err != nil {
				r.logger.Warn("Prop expression failed.", "tag", env.Tag, "prop", name, "expression", code, "error", err)
			} else if !reactive.IsEmpty(v) {
				value = v
			}
		case env.Host.HasAttribute(name):
			if raw := env.Host.Attribute(name); raw != "" {
				value = vm.ToValue(raw)
			}
		default:
			r.logger.Debug("Prop not provided; using default.", "tag", env.Tag, "prop", name)
		}

		if want, ok := expectedType(vm, typ); ok && !reactive.IsEmpty(value) && !matchesType(value, want) {
			r.logger.Warn("Prop has unexpected type.", "tag", env.Tag, "prop", name, "want", want, "value", value.String())
		}
		props.SetValue(name, value)
	}
}

func expectedType(vm *goja.Runtime, typ goja.Value) (string, bool) {
	if reactive.IsEmpty(typ) {
		return "", false
	}
	for _, name := range []string{"String", "Number", "Boolean", "Array", "Object"} {
		if ctor := vm.Get(name); ctor != nil && typ.SameAs(ctor) {
			return name, true
		}
	}
	return "", false
}

func matchesType(v goja.Value, want string) bool {
	switch want {
	case "String":
		_, ok := v.Export().(string)
		return ok
	case "Number":
		switch v.Export().(type) {
		case int64, float64:
			return true
		}
		return false
	case "Boolean":
		_, ok := v.Export().(bool)
		return ok
	case "Array", "Object":
		_, ok := v.(*goja.Object)
		return ok
	}
	return true
}
