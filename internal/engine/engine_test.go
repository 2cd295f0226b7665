package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/compositor/internal/component"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/namespace"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects calls to the $log magic.
type recorder struct{ calls []string }

func (r *recorder) log(s string) { r.calls = append(r.calls, s) }

func (r *recorder) magics() map[string]any { return map[string]any{"$log": r.log} }

func TestNaming_InvalidRejectedAndFirstDefinitionWins(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{})
	ctx := context.Background()

	err := h.Registry.Register(ctx, "nohyphen", `<template><b>x</b></template>`, "")
	assert.ErrorIs(t, err, registry.ErrInvalidName)

	require.NoError(t, h.Registry.Register(ctx, "valid-name", `<template><b>first</b></template>`, ""))
	err = h.Registry.Register(ctx, "valid-name", `<template><b>second</b></template>`, "")
	assert.ErrorIs(t, err, registry.ErrDuplicate)

	h.Mount(t, `<valid-name></valid-name>`)
	assert.Equal(t, `<valid-name><b>first</b></valid-name>`, h.Body())
	assert.False(t, h.Engine.Document().Defined("nohyphen"))
}

func TestIsolated_ContentDoesNotLeakIntoLightTree(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-box": `<template isolate><p class="item" id="inner">in</p></template>`,
	}})
	h.Mount(t, `<p class="item">outside</p><x-box></x-box>`)

	light := h.Engine.Document().Body().QueryAll(func(n *dom.Node) bool { return n.HasClass("item") })
	require.Len(t, light, 1)
	assert.Equal(t, "outside", light[0].TextContent())
	assert.False(t, light[0].HasAttribute("id"))

	box := h.First(t, "x-box")
	require.NotNil(t, box.Shadow())
	assert.Len(t, box.Shadow().ElementsByTag("p"), 1)

	out := h.Render(t)
	assert.Contains(t, out, `<x-box><template shadowrootmode="open"><style>`)
	assert.Contains(t, out, `<p class="item" id="inner">in</p></template></x-box>`)
}

func TestIsolated_SlotsProjectLightContent(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-panel": `<template shadow><header><slot name="title">Untitled</slot></header><slot></slot></template>`,
	}})
	h.Mount(t, `<x-panel><h2 slot="title">Hi</h2>body</x-panel>`)

	shadow := h.First(t, "x-panel").Shadow()
	require.NotNil(t, shadow)
	assert.Contains(t, shadow.InnerHTML(), `<header><h2 slot="title">Hi</h2></header>body`)
}

func TestUnwrap_ReplacesTagWithTemplateRoot(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-widget": `<template unwrap><div></div></template>`,
	}})
	h.Mount(t, `<x-widget data-id="9">child</x-widget>`)

	body := h.Engine.Document().Body()
	assert.Empty(t, body.ElementsByTag("x-widget"))
	assert.Equal(t, `<div data-id="9">child</div>`, h.Body())

	div := h.First(t, "div")
	host, ok := h.Engine.OriginalHost(div)
	require.True(t, ok)
	assert.Equal(t, "x-widget", host.Tag())
	assert.False(t, host.IsConnected())

	inst, ok := h.Engine.Instance(div)
	require.True(t, ok)
	assert.True(t, inst.Initialized())
	assert.True(t, inst.Unwrapped())
}

func TestUnwrap_RemovingReplacementDestroys(t *testing.T) {
	rec := &recorder{}
	h := testutil.NewHarness(t, testutil.Options{
		Magics: rec.magics(),
		Components: map[string]string{
			"x-widget": `<template unwrap><div></div></template><script setup>return { destroy() { $log("gone") } }</script>`,
		},
	})
	h.Mount(t, `<x-widget></x-widget>`)

	div := h.First(t, "div")
	inst, ok := h.Engine.Instance(div)
	require.True(t, ok)

	div.Remove()
	h.Engine.Tick()
	assert.True(t, inst.Destroyed())
	assert.Equal(t, []string{"gone"}, rec.calls)
}

func TestOrdering_ParentInitializesBeforeChild(t *testing.T) {
	rec := &recorder{}
	h := testutil.NewHarness(t, testutil.Options{
		Magics: rec.magics(),
		Components: map[string]string{
			"x-parent": `<template><section><slot></slot></section></template><script setup>return { init() { $log("parent") } }</script>`,
			"x-child":  `<template><i>c</i></template><script setup>return { init() { $log("child") } }</script>`,
		},
	})
	h.Mount(t, `<x-parent><x-child></x-child></x-parent>`)

	parent, ok := h.Engine.Instance(h.First(t, "x-parent"))
	require.True(t, ok)
	child, ok := h.Engine.Instance(h.First(t, "x-child"))
	require.True(t, ok)
	assert.True(t, parent.Initialized())
	assert.True(t, child.Initialized())
	assert.Equal(t, []string{"parent", "child"}, rec.calls)
	assert.Equal(t, `<x-parent><section><x-child><i>c</i></x-child></section></x-parent>`, h.Body())
}

func scopedPair() map[string]string {
	return map[string]string{
		"x-a": `<template><button @click="count.value++"></button><x-b><span x-text="count.value"></span></x-b></template>
<script setup>const count = ref(1); return { count }</script>`,
		"x-b": `<template><div class="b"><slot></slot></div></template>
<script setup>return { count: ref(100) }</script>`,
	}
}

func TestScope_SlottedContentFollowsItsAuthor(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: scopedPair()})
	h.Mount(t, `<x-a></x-a>`)

	span := h.First(t, "span")
	assert.Equal(t, "1", span.TextContent())
	require.NotNil(t, span.Parent())
	assert.True(t, span.Parent().HasClass("b"))

	h.Engine.Dispatch(h.First(t, "button"), "click", nil)
	assert.Equal(t, "2", span.TextContent())

	b, ok := h.Engine.Instance(h.First(t, "x-b"))
	require.True(t, ok)
	v, err := h.Engine.Runtime().Eval(b.Context(), "count.value", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v.ToInteger())
}

func TestScope_RescopeIsIdempotent(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: scopedPair()})
	h.Mount(t, `<x-a></x-a>`)

	span := h.First(t, "span")
	before := h.Engine.Scopes().ContextOf(span)
	assert.Zero(t, h.Engine.Scopes().Rescope([]*dom.Node{span}, h.Engine.Binder()))
	assert.Zero(t, h.Engine.Scopes().Rescope([]*dom.Node{span}, h.Engine.Binder()))
	assert.True(t, before.Same(h.Engine.Scopes().ContextOf(span)))
	assert.True(t, h.Engine.Binder().Bound(span))

	h.Engine.Dispatch(h.First(t, "button"), "click", nil)
	assert.Equal(t, "2", span.TextContent())
}

func TestScope_SlottedTemplateEvaluatesInAuthorContext(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-a": `<template><x-b><template x-if="open.value"><em>shown</em></template></x-b></template>
<script setup>const open = ref(true); return { open }</script>`,
		"x-b": `<template><div class="b"><slot></slot></div></template>
<script setup>return { open: ref(false) }</script>`,
	}})
	h.Mount(t, `<x-a></x-a>`)

	em := h.First(t, "em")
	assert.Equal(t, "shown", em.TextContent())
	require.NotNil(t, em.Parent())
	assert.True(t, em.Parent().HasClass("b"))

	a, ok := h.Engine.Instance(h.First(t, "x-a"))
	require.True(t, ok)
	_, err := h.Engine.Runtime().Eval(a.Context(), "open.value = false", nil)
	require.NoError(t, err)
	assert.Empty(t, h.Engine.Document().Body().ElementsByTag("em"))
}

func TestScheduler_DisconnectedBeforeBatchNeverInitializes(t *testing.T) {
	rec := &recorder{}
	h := testutil.NewHarness(t, testutil.Options{
		Magics: rec.magics(),
		Components: map[string]string{
			"x-once": `<template><b>once</b></template><script setup>return { init() { $log("init") } }</script>`,
		},
	})
	nodes := h.Insert(t, `<x-once></x-once>`)
	require.Len(t, nodes, 1)
	el := nodes[0]

	inst, ok := h.Engine.Instance(el)
	require.True(t, ok)
	assert.Equal(t, component.Scheduled, inst.State())

	el.Remove()
	h.Engine.Tick()
	assert.Equal(t, component.Unscheduled, inst.State())
	assert.Empty(t, rec.calls)

	require.NoError(t, h.Engine.Document().Body().AppendChild(el))
	h.Engine.Tick()
	h.Engine.Tick()
	assert.True(t, inst.Initialized())
	assert.Equal(t, []string{"init"}, rec.calls)
}

func TestScheduler_ReinsertKeepsStateAndRemovalDestroys(t *testing.T) {
	rec := &recorder{}
	h := testutil.NewHarness(t, testutil.Options{
		Magics: rec.magics(),
		Components: map[string]string{
			"x-keep": `<template><b x-text="n.value"></b></template>
<script setup>const n = ref(1); return { n, init() { n.value = 5 }, destroy() { $log("destroy") } }</script>`,
		},
	})
	h.Mount(t, `<main></main><x-keep></x-keep>`)

	el := h.First(t, "x-keep")
	inst, ok := h.Engine.Instance(el)
	require.True(t, ok)
	require.True(t, inst.Initialized())
	assert.Equal(t, "5", el.TextContent())

	el.Remove()
	require.NoError(t, h.First(t, "main").AppendChild(el))
	h.Engine.Tick()
	assert.True(t, inst.Initialized())
	assert.Empty(t, rec.calls)
	assert.Equal(t, "5", el.TextContent())

	el.Remove()
	h.Engine.Tick()
	assert.True(t, inst.Destroyed())
	assert.Equal(t, []string{"destroy"}, rec.calls)
}

func TestScheduler_ReclaimedHostStartsFreshWhenInsertedAgain(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-r": `<template><b x-text="n.value"></b><slot></slot></template>
<script setup>const n = ref(7); return { n }</script>`,
	}})
	h.Mount(t, `<main></main><x-r><i>caller</i></x-r>`)

	el := h.First(t, "x-r")
	first, ok := h.Engine.Instance(el)
	require.True(t, ok)
	require.True(t, first.Initialized())

	el.Remove()
	h.Engine.Tick()
	require.True(t, first.Destroyed())
	assert.Equal(t, `<i>caller</i>`, el.InnerHTML(), "caller content is handed back to the host")

	require.NoError(t, h.First(t, "main").AppendChild(el))
	h.Engine.Tick()

	second, ok := h.Engine.Instance(el)
	require.True(t, ok)
	require.NotSame(t, first, second)
	require.True(t, second.Initialized())
	assert.Equal(t, 1, strings.Count(el.InnerHTML(), "<b"))
	assert.Equal(t, 1, strings.Count(el.InnerHTML(), "<i>caller</i>"))

	_, err := h.Engine.Runtime().Eval(second.Context(), "n.value = 9", nil)
	require.NoError(t, err)
	assert.Equal(t, "9", h.First(t, "b").TextContent())
}

func TestScheduler_FailingInstanceIsSkipped(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-bad":  `<template><b>bad</b></template><script setup>throw new Error("boom")</script>`,
		"x-good": `<template><b>good</b></template>`,
	}})
	h.Mount(t, `<x-bad></x-bad><x-good></x-good>`)

	bad, ok := h.Engine.Instance(h.First(t, "x-bad"))
	require.True(t, ok)
	good, ok := h.Engine.Instance(h.First(t, "x-good"))
	require.True(t, ok)

	assert.True(t, bad.Destroyed())
	require.Error(t, bad.Err())
	assert.Contains(t, bad.Err().Error(), "boom")
	assert.True(t, good.Initialized())
	testutil.AssertLogged(t, h, "Skipping component that failed to initialize.")
}

func TestDispatch_BubblesOutOfIsolatedComponent(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-save": `<template isolate><button @click="$dispatch('saved', 7)">save</button></template>`,
	}})
	h.Mount(t, `<div x-data="{ got: 0 }" @saved="got = $event.detail"><x-save></x-save><span x-text="got"></span></div>`)

	span := h.First(t, "span")
	assert.Equal(t, "0", span.TextContent())

	h.Engine.Dispatch(h.First(t, "button"), "click", nil)
	assert.Equal(t, "7", span.TextContent())
}

func TestProps_ReadFromHostInOuterContext(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-greet": `<template><p x-text="$props.greeting + ' ' + $props.name"></p></template>
<script setup>defineProps({ greeting: { type: String, default: "Hello" }, name: { type: String } }); return {}</script>`,
	}})
	h.Mount(t, `<div x-data="{ who: 'Ada' }"><x-greet :name="who"></x-greet></div>`)

	assert.Equal(t, "Hello Ada", h.First(t, "p").TextContent())
}

func TestMount_LoadsUnknownTagsFromNamespace(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{
		Namespaces: []namespace.Namespace{namespace.NewRemote("ui", namespace.Config{URI: "/ui/"})},
		Remote: map[string]string{
			"/ui/card.html":  `<template><article><ui-badge></ui-badge><slot></slot></article></template>`,
			"/ui/badge.html": `<template><em>new</em></template>`,
		},
	})
	h.Mount(t, `<ui-card>text</ui-card>`)

	assert.Equal(t, `<ui-card><article><ui-badge><em>new</em></ui-badge>text</article></ui-card>`, h.Body())
	assert.Equal(t, 1, h.Fetcher.Calls("/ui/card.html"))
	assert.Equal(t, 1, h.Fetcher.Calls("/ui/badge.html"))
}

func TestMount_InPageDefinitionIsUsedWithoutFetching(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{
		Namespaces: []namespace.Namespace{namespace.NewRemote("ui", namespace.Config{URI: "/ui/"})},
	})
	h.Mount(t, `<ui-note>hi</ui-note><template x-component:ui="note"><aside><slot></slot></aside></template>`)

	assert.True(t, h.Registry.Has("ui-note"))
	assert.Zero(t, h.Fetcher.Calls("/ui/note.html"))
	assert.Equal(t, `<aside>hi</aside>`, h.First(t, "ui-note").InnerHTML())
	assert.NotContains(t, h.Body(), "x-component")
}

func TestMount_LoadDirectiveFetchesRequestedTags(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{
		Namespaces: []namespace.Namespace{namespace.NewRemote("ui", namespace.Config{URI: "/ui/"})},
		Remote: map[string]string{
			"/ui/late.html": `<template><em>late</em></template>`,
		},
		Components: map[string]string{
			"x-shell": `<template><div x-load:ui="late"></div></template>`,
		},
	})
	h.Mount(t, `<x-shell></x-shell><span x-load="ui-late, ui-late"></span>`)

	assert.True(t, h.Registry.Has("ui-late"))
	assert.Equal(t, 1, h.Fetcher.Calls("/ui/late.html"))

	h.Insert(t, `<ui-late></ui-late>`)
	h.Engine.Tick()
	assert.Equal(t, `<em>late</em>`, h.First(t, "ui-late").InnerHTML())
}

func TestMount_FailedLoadRequestIsReported(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{})
	h.Insert(t, `<div x-load="zz-gone"></div>`)

	err := h.Engine.Mount(context.Background())
	assert.ErrorIs(t, err, namespace.ErrNoNamespace)
	testutil.AssertLogged(t, h, "Failed to load requested components.")
}

func TestScope_SlottedLoopEvaluatesInAuthorContext(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-list": `<template><x-frame><template x-for="item in items.value"><li x-text="item"></li></template></x-frame></template>
<script setup>const items = ref(["a", "b"]); return { items }</script>`,
		"x-frame": `<template><ul><slot></slot></ul></template>
<script setup>return { items: ref(["inner"]) }</script>`,
	}})
	h.Mount(t, `<x-list></x-list>`)

	var got []string
	for _, li := range h.Engine.Document().Body().ElementsByTag("li") {
		got = append(got, li.TextContent())
		assert.Equal(t, "ul", li.Parent().Tag())
	}
	assert.Equal(t, []string{"a", "b"}, got)

	list, ok := h.Engine.Instance(h.First(t, "x-list"))
	require.True(t, ok)
	_, err := h.Engine.Runtime().Eval(list.Context(), `items.value = ["z"]`, nil)
	require.NoError(t, err)
	lis := h.Engine.Document().Body().ElementsByTag("li")
	require.Len(t, lis, 1)
	assert.Equal(t, "z", lis[0].TextContent())
}

func TestMount_UnresolvableTagIsReported(t *testing.T) {
	h := testutil.NewHarness(t, testutil.Options{Components: map[string]string{
		"x-ok": `<template><b>ok</b></template>`,
	}})
	h.Insert(t, `<zz-missing></zz-missing><x-ok></x-ok>`)

	err := h.Engine.Mount(context.Background())
	assert.ErrorIs(t, err, namespace.ErrNoNamespace)
	assert.True(t, strings.Contains(h.Body(), `<x-ok><b>ok</b></x-ok>`))
}

func TestClose_DestroysEveryInstance(t *testing.T) {
	rec := &recorder{}
	h := testutil.NewHarness(t, testutil.Options{
		Magics: rec.magics(),
		Components: map[string]string{
			"x-one": `<template><b>1</b></template><script setup>return { destroy() { $log("one") } }</script>`,
		},
	})
	h.Mount(t, `<x-one></x-one><x-one></x-one>`)

	h.Engine.Close()
	assert.Equal(t, []string{"one", "one"}, rec.calls)
}
