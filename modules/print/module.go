// Package print provides the <print-value :value="..."> component, which
// renders any value from the surrounding context as indented JSON.
package print

import (
	"context"

	"github.com/specialistvlad/compositor/internal/registry"
)

// Tag is the registered tag name.
const Tag = "print-value"

const source = `<template unwrap><pre class="print-value" x-text="text.value"></pre></template>
<script setup>
const props = defineProps({ value: {} })
const text = computed(() => {
  const v = props.value
  return v === undefined || v === null ? "(null)" : JSON.stringify(v, null, 2)
})
return { text }
</script>`

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the component.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	return r.RegisterSource(ctx, Tag, source)
}
