package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/compositor/internal/binding"
	"github.com/specialistvlad/compositor/internal/component"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/nodeid"
	"github.com/specialistvlad/compositor/internal/reactive"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc     *dom.Document
	rt      *reactive.Runtime
	reg     *registry.Registry
	factory *component.Factory
	tasks   *Microtasks
	sched   *DefaultScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{doc: dom.NewDocument(), rt: reactive.New(), reg: registry.New(logger, nil), tasks: NewMicrotasks()}
	b := binding.New(logger, f.rt, scope.New(logger, nil), func(n *dom.Node) bool { return f.doc.Defined(n.Tag()) })
	f.sched = New(logger, f.tasks, nil)
	f.factory = component.NewFactory(component.Options{Logger: logger, Binder: b, OnRemoved: f.sched.Disconnected})
	return f
}

func (f *fixture) define(t *testing.T, tag, markup string) *registry.Definition {
	t.Helper()
	return f.defineWithSetup(t, tag, markup, "")
}

func (f *fixture) defineWithSetup(t *testing.T, tag, markup, setup string) *registry.Definition {
	t.Helper()
	require.NoError(t, f.reg.Register(context.Background(), tag, markup, setup))
	def, _ := f.reg.Lookup(tag)
	require.NoError(t, f.doc.Define(tag, dom.Lifecycle{}))
	return def
}

func (f *fixture) insert(t *testing.T, markup string) {
	t.Helper()
	frag, err := f.doc.ParseFragment(markup)
	require.NoError(t, err)
	require.NoError(t, f.doc.Body().AppendChild(frag))
}

func (f *fixture) instance(t *testing.T, tag string, def *registry.Definition) *component.Instance {
	t.Helper()
	els := f.doc.Body().ElementsByTag(tag)
	require.NotEmpty(t, els)
	return f.factory.Create(els[0], def)
}

func TestMicrotasks_DrainRunsNestedTasks(t *testing.T) {
	m := NewMicrotasks()
	var order []int
	m.QueueMicrotask(func() {
		order = append(order, 1)
		m.QueueMicrotask(func() { order = append(order, 3) })
	})
	m.QueueMicrotask(func() { order = append(order, 2) })
	assert.Equal(t, 2, m.Pending())

	assert.Equal(t, 3, m.Drain())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Zero(t, m.Pending())
}

func TestSchedule_CoalescesIntoOneBatch(t *testing.T) {
	f := newFixture(t)
	def := f.define(t, "x-item", `<template><b></b></template>`)
	f.insert(t, `<x-item></x-item><x-item></x-item>`)
	els := f.doc.Body().ElementsByTag("x-item")

	a, b := f.factory.Create(els[0], def), f.factory.Create(els[1], def)
	f.sched.Schedule(a)
	f.sched.Schedule(b)
	f.sched.Schedule(a)

	assert.Equal(t, 1, f.tasks.Pending())
	assert.Equal(t, []*component.Instance{a, b}, f.sched.Pending())

	f.tasks.Drain()
	assert.True(t, a.Initialized())
	assert.True(t, b.Initialized())
	assert.Empty(t, f.sched.Pending())
}

func TestFlush_SortsAncestorsFirst(t *testing.T) {
	f := newFixture(t)
	var setups []string
	require.NoError(t, f.rt.VM().Set("record", func(name string) { setups = append(setups, name) }))
	outer := f.defineWithSetup(t, "x-outer", `<template><div><slot></slot></div></template>`, `record("outer"); return {}`)
	inner := f.defineWithSetup(t, "x-inner", `<template><i></i></template>`, `record("inner"); return {}`)
	f.insert(t, `<x-outer><x-inner></x-inner></x-outer>`)

	child := f.instance(t, "x-inner", inner)
	parent := f.instance(t, "x-outer", outer)
	f.sched.Schedule(child)
	f.sched.Schedule(parent)

	assert.Equal(t, []*component.Instance{child, parent}, f.sched.Pending())
	f.tasks.Drain()

	require.True(t, parent.Initialized())
	require.True(t, child.Initialized())
	assert.Equal(t, []string{"outer", "inner"}, setups)
	// Caller content keeps the context its author sees.
	assert.True(t, child.Outer().Same(parent.Outer()))
}

func TestBatchRoots_CountsOutermostInstances(t *testing.T) {
	f := newFixture(t)
	outer := f.define(t, "x-outer", `<template><div><slot></slot></div></template>`)
	inner := f.define(t, "x-inner", `<template><i></i></template>`)
	f.insert(t, `<x-outer><x-inner></x-inner></x-outer><x-inner></x-inner>`)

	hosts := f.doc.Body().ElementsByTag("x-inner")
	parent := f.instance(t, "x-outer", outer)
	nested := f.factory.Create(hosts[0], inner)
	sibling := f.factory.Create(hosts[1], inner)

	sorted := []*component.Instance{parent, nested, sibling}
	addrs := map[*component.Instance]*nodeid.Address{}
	for _, inst := range sorted {
		addrs[inst] = inst.Host().Address()
	}
	assert.Equal(t, 2, batchRoots(sorted, addrs))
	assert.Zero(t, batchRoots(nil, addrs))
}

func TestDisconnected_DropsScheduledInstance(t *testing.T) {
	f := newFixture(t)
	def := f.define(t, "x-item", `<template><b></b></template>`)
	f.insert(t, `<x-item></x-item>`)
	inst := f.instance(t, "x-item", def)

	f.sched.Schedule(inst)
	f.sched.Disconnected(inst)
	assert.Equal(t, component.Unscheduled, inst.State())
	assert.Empty(t, f.sched.Pending())

	f.tasks.Drain()
	assert.False(t, inst.Initialized())

	f.sched.Schedule(inst)
	f.tasks.Drain()
	assert.True(t, inst.Initialized())
}

func TestFlush_SkipsHostsRemovedBeforeTheBatch(t *testing.T) {
	f := newFixture(t)
	def := f.define(t, "x-item", `<template><b></b></template>`)
	f.insert(t, `<x-item></x-item>`)
	inst := f.instance(t, "x-item", def)

	f.sched.Schedule(inst)
	inst.Host().Remove()
	f.tasks.Drain()
	assert.Equal(t, component.Unscheduled, inst.State())
}

func TestDisconnected_TearsDownUnlessReinserted(t *testing.T) {
	f := newFixture(t)
	def := f.define(t, "x-item", `<template><b></b></template>`)
	f.insert(t, `<x-item></x-item><p></p>`)
	inst := f.instance(t, "x-item", def)
	f.sched.Schedule(inst)
	f.tasks.Drain()
	require.True(t, inst.Initialized())

	host := inst.Host()
	host.Remove()
	require.NoError(t, f.doc.Body().ElementsByTag("p")[0].AppendChild(host))
	f.sched.Disconnected(inst)
	f.tasks.Drain()
	assert.True(t, inst.Initialized())

	host.Remove()
	f.tasks.Drain()
	assert.True(t, inst.Destroyed())
}

func TestFlush_FailureDoesNotStopTheBatch(t *testing.T) {
	f := newFixture(t)
	bad := f.define(t, "x-bad", `<template unwrap>text only</template>`)
	good := f.define(t, "x-good", `<template><b></b></template>`)
	f.insert(t, `<x-bad></x-bad><x-good></x-good>`)

	b := f.instance(t, "x-bad", bad)
	g := f.instance(t, "x-good", good)
	f.sched.Schedule(b)
	f.sched.Schedule(g)
	f.tasks.Drain()

	assert.True(t, b.Destroyed())
	assert.Error(t, b.Err())
	assert.True(t, g.Initialized())
}
