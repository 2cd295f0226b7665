package binding

import (
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/reactive"
	"github.com/specialistvlad/compositor/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc    *dom.Document
	rt     *reactive.Runtime
	scopes *scope.Resolver
	b      *Binder
}

func newFixture(t *testing.T, markup string) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{doc: dom.NewDocument(), rt: reactive.New()}
	f.scopes = scope.New(logger, nil)
	f.b = New(logger, f.rt, f.scopes, func(n *dom.Node) bool { return f.doc.Defined(n.Tag()) })
	frag, err := f.doc.ParseFragment(markup)
	require.NoError(t, err)
	require.NoError(t, f.doc.Body().AppendChild(frag))
	return f
}

func (f *fixture) state(values map[string]any) *reactive.Object {
	s := f.rt.FromMap(values)
	f.scopes.Attach(f.doc.Body(), reactive.Stack{s})
	return s
}

func (f *fixture) first(tag string) *dom.Node {
	nodes := f.doc.Body().ElementsByTag(tag)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func TestText_FollowsState(t *testing.T) {
	f := newFixture(t, `<span x-text="count * 2"></span>`)
	s := f.state(map[string]any{"count": 1})
	f.b.InitTree(f.doc.Body())

	span := f.first("span")
	assert.Equal(t, "2", span.TextContent())
	s.Set("count", 4)
	assert.Equal(t, "8", span.TextContent())
}

func TestOn_ShorthandAndFunctionHandlers(t *testing.T) {
	f := newFixture(t, `<button @click="count++"></button><a x-on:click.prevent="bump"></a>`)
	v, err := f.rt.VM().RunString(`({count: 0, bump(e) { this.count += 10; this.last = e.type }})`)
	require.NoError(t, err)
	s := f.rt.Reactive(v)
	f.scopes.Attach(f.doc.Body(), reactive.Stack{s})
	f.b.InitTree(f.doc.Body())

	f.b.Dispatch(f.first("button"), "click", nil)
	assert.Equal(t, int64(1), s.Get("count").ToInteger())

	f.b.Dispatch(f.first("a"), "click", nil)
	assert.Equal(t, int64(11), s.Get("count").ToInteger())
	assert.Equal(t, "click", s.Get("last").String())
}

func TestBind_ClassMergesAndBooleans(t *testing.T) {
	f := newFixture(t, `<div class="base" :class="{active: on}"></div><input :disabled="!on" x-bind:title="label">`)
	s := f.state(map[string]any{"on": false, "label": "hello"})
	f.b.InitTree(f.doc.Body())

	div, input := f.first("div"), f.first("input")
	assert.Equal(t, "base", div.Attribute("class"))
	assert.Equal(t, "disabled", input.Attribute("disabled"))
	assert.Equal(t, "hello", input.Attribute("title"))

	s.Set("on", true)
	assert.Equal(t, "base active", div.Attribute("class"))
	assert.False(t, input.HasAttribute("disabled"))
}

func TestShow_TogglesDisplay(t *testing.T) {
	f := newFixture(t, `<p style="color: red" x-show="open"></p>`)
	s := f.state(map[string]any{"open": false})
	f.b.InitTree(f.doc.Body())

	p := f.first("p")
	assert.Equal(t, "color: red; display: none;", p.Attribute("style"))
	s.Set("open", true)
	assert.Equal(t, "color: red", p.Attribute("style"))
}

func TestData_PushesLayer(t *testing.T) {
	f := newFixture(t, `<div x-data="{ inner: 'x' }"><b x-text="inner + outer"></b></div>`)
	f.state(map[string]any{"outer": "y"})
	f.b.InitTree(f.doc.Body())
	assert.Equal(t, "xy", f.first("b").TextContent())
}

func TestIf_RendersAndRemoves(t *testing.T) {
	f := newFixture(t, `<template x-if="open"><em x-text="msg"></em></template><hr>`)
	s := f.state(map[string]any{"open": true, "msg": "hi"})
	f.b.InitTree(f.doc.Body())

	assert.Equal(t, `<template x-if="open"><em x-text="msg"></em></template><em x-text="msg">hi</em><hr/>`, f.doc.Body().InnerHTML())

	s.Set("open", false)
	assert.Nil(t, f.first("em"))
	s.Set("open", true)
	require.NotNil(t, f.first("em"))
	s.Set("msg", "again")
	assert.Equal(t, "again", f.first("em").TextContent())
}

func TestInitTree_SkipsCustomHostsAndIsIdempotent(t *testing.T) {
	f := newFixture(t, `<x-card x-text="'host'"><i x-text="'inner'"></i></x-card><b x-text="n"></b>`)
	require.NoError(t, f.doc.Define("x-card", dom.Lifecycle{}))
	s := f.state(map[string]any{"n": 1})

	f.b.InitTree(f.doc.Body())
	f.b.InitTree(f.doc.Body())

	assert.Equal(t, "", f.first("i").TextContent())
	assert.False(t, f.b.Bound(f.first("x-card")))

	runs := 0
	f.b.Listen(f.first("b"), "noop", func(*Event) { runs++ })
	s.Set("n", 2)
	assert.Equal(t, "2", f.first("b").TextContent())
	assert.Zero(t, runs)
}

func TestUnbind_StopsUpdates(t *testing.T) {
	f := newFixture(t, `<span x-text="n"></span>`)
	s := f.state(map[string]any{"n": 1})
	f.b.InitTree(f.doc.Body())

	span := f.first("span")
	f.b.Unbind(span)
	s.Set("n", 2)
	assert.Equal(t, "1", span.TextContent())
	assert.False(t, f.b.Bound(span))
}

func TestDispatch_BubblesAcrossBoundaryAndStops(t *testing.T) {
	f := newFixture(t, `<section><x-host></x-host></section>`)
	host := f.first("x-host")
	inner := f.doc.CreateElement("button")
	require.NoError(t, host.AttachShadow().AppendChild(inner))

	var seen []string
	f.b.Listen(host, "ping", func(ev *Event) { seen = append(seen, "host") })
	f.b.Listen(f.first("section"), "ping", func(ev *Event) {
		seen = append(seen, "section")
		ev.StopPropagation()
	})
	f.b.Listen(f.doc.Body(), "ping", func(*Event) { seen = append(seen, "body") })

	ev := f.b.Dispatch(inner, "ping", f.rt.ToValue(42))
	assert.Equal(t, []string{"host", "section"}, seen)
	assert.True(t, ev.Stopped())
	assert.Equal(t, int64(42), ev.Detail.ToInteger())
}

func texts(nodes []*dom.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.TextContent())
	}
	return out
}

func TestFor_RendersEachItemWithIndex(t *testing.T) {
	f := newFixture(t, `<ul><template x-for="(item, i) in items"><li x-text="i + ':' + item + suffix"></li></template></ul>`)
	v, err := f.rt.VM().RunString(`({ items: ["a", "b"], suffix: "!" })`)
	require.NoError(t, err)
	s := f.rt.Reactive(v)
	f.scopes.Attach(f.doc.Body(), reactive.Stack{s})
	f.b.InitTree(f.doc.Body())

	assert.Equal(t, []string{"0:a!", "1:b!"}, texts(f.doc.Body().ElementsByTag("li")))

	next, err := f.rt.VM().RunString(`["c"]`)
	require.NoError(t, err)
	s.SetValue("items", next)
	assert.Equal(t, []string{"0:c!"}, texts(f.doc.Body().ElementsByTag("li")))

	s.Set("suffix", "?")
	assert.Equal(t, []string{"0:c?"}, texts(f.doc.Body().ElementsByTag("li")))

	f.b.UnbindTree(f.doc.Body())
	assert.Empty(t, f.doc.Body().ElementsByTag("li"))
}

func TestFor_NumbersObjectsAndBadSyntax(t *testing.T) {
	f := newFixture(t, `<template x-for="n in 3"><i x-text="n"></i></template>`+
		`<template x-for="(v, k) of prefs"><b x-text="k + '=' + v"></b></template>`+
		`<template x-for="nonsense"><u></u></template>`)
	v, err := f.rt.VM().RunString(`({ prefs: { theme: "dark", size: 2 } })`)
	require.NoError(t, err)
	s := f.rt.Reactive(v)
	f.scopes.Attach(f.doc.Body(), reactive.Stack{s})
	f.b.InitTree(f.doc.Body())

	assert.Equal(t, []string{"1", "2", "3"}, texts(f.doc.Body().ElementsByTag("i")))
	assert.Equal(t, []string{"theme=dark", "size=2"}, texts(f.doc.Body().ElementsByTag("b")))
	assert.Empty(t, f.doc.Body().ElementsByTag("u"))

	prefs, ok := f.rt.Lookup(s.Get("prefs"))
	require.True(t, ok)
	prefs.Set("theme", "light")
	assert.Equal(t, []string{"theme=light", "size=2"}, texts(f.doc.Body().ElementsByTag("b")))
}

func TestComponent_HandsDefinitionToHookWithoutBindingIt(t *testing.T) {
	f := newFixture(t, `<template x-component:ui="card" shadow><b x-text="boom"></b></template>`+
		`<div x-component="x-note"><i x-text="nope"></i></div><p x-text="'ok'"></p>`)
	f.state(map[string]any{})
	var tags, markup []string
	f.b.SetHooks(Hooks{Component: func(el *dom.Node, tag string) {
		tags = append(tags, tag)
		markup = append(markup, el.OuterHTML())
	}})

	assert.Equal(t, 2, f.b.DefineComponents(f.doc.Body()))
	f.b.InitTree(f.doc.Body())
	assert.Zero(t, f.b.DefineComponents(f.doc.Body()))

	assert.Equal(t, []string{"ui-card", "x-note"}, tags)
	assert.Equal(t, `<template shadow=""><b x-text="boom"></b></template>`, markup[0])
	assert.Equal(t, `<div><i x-text="nope"></i></div>`, markup[1])
	assert.Equal(t, "display: none;", f.first("div").Attribute("style"))
	assert.Empty(t, f.first("i").TextContent())
	assert.False(t, f.b.Bound(f.first("i")))
	assert.Equal(t, "ok", f.first("p").TextContent())
}

func TestLoad_RequestsQualifiedTags(t *testing.T) {
	f := newFixture(t, `<div x-load:ui="card, icon"></div><span x-load="x-extra"></span>`)
	f.state(map[string]any{})
	var tags []string
	f.b.SetHooks(Hooks{Load: func(_ *dom.Node, tag string) { tags = append(tags, tag) }})
	f.b.InitTree(f.doc.Body())

	assert.Equal(t, []string{"ui-card", "ui-icon", "x-extra"}, tags)
}
