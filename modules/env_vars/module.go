// Package env_vars provides the <env-var name="..."> component, which renders
// the value of an environment variable. Only variables carrying the module's
// prefix are visible.
package env_vars

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/registry"
)

// DefaultPrefix selects the variables exposed when Module.Prefix is empty.
const DefaultPrefix = "COMPOSITOR_PUBLIC_"

// Tag is the registered tag name.
const Tag = "env-var"

const markup = `<template unwrap><span class="env-var" x-text="text.value"></span></template>`

// Module implements the registry.Module interface for this package.
type Module struct {
	Prefix string
}

// Vars returns the visible variables, keyed by name.
func (m *Module) Vars() map[string]string {
	prefix := m.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	vars := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			vars[pair[0]] = pair[1]
		}
	}
	return vars
}

// Register registers the component with a snapshot of the visible
// variables.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	vars := m.Vars()
	data, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("env_vars: %w", err)
	}
	setup := fmt.Sprintf(`const vars = %s
const props = defineProps({ name: { type: String }, fallback: { type: String, default: "" } })
return { text: computed(() => props.name in vars ? vars[props.name] : props.fallback) }`, data)

	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	ctxlog.FromContext(ctx).Debug("Exposing environment variables.", "names", names)

	return r.Register(ctx, Tag, markup, setup)
}
