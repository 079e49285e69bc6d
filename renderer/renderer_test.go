package renderer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/renderer"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/tree"
)

func drain(t *testing.T, ch <-chan []byte) string {
	t.Helper()
	var b strings.Builder
	for chunk := range ch {
		b.Write(chunk)
	}
	return b.String()
}

// TestRenderFastPathStaticTree mirrors spec.md §8 scenario covering a tree
// with no signals at all: the fast path must serialize directly with no
// registry or executor involvement.
func TestRenderFastPathStaticTree(t *testing.T) {
	reg := registry.New()
	ex := executor.New(signal.RoleServer, executor.NewMapLoader())
	r := renderer.New(reg, ex)

	root := tree.El("div", map[string]any{"class": "app"},
		tree.El("h1", nil, tree.Text("hello")),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	html := drain(t, r.Render(ctx, root))
	require.Contains(t, html, `<div class="app">`)
	require.Contains(t, html, "<h1>hello</h1>")
	require.Contains(t, html, "</div>")
}

// TestRenderCounterHydrationShape exercises spec.md §8 scenario 1: a
// `state` signal bound to a child position must render its current value
// wrapped in bind markers plus an inline signal-definition script so the
// client can hydrate it.
func TestRenderCounterHydrationShape(t *testing.T) {
	reg := registry.New()
	ex := executor.New(signal.RoleServer, executor.NewMapLoader())
	r := renderer.New(reg, ex)

	f := signal.NewFactory(signal.RoleServer)
	count, err := f.NewState(3)
	require.NoError(t, err)
	reg.RegisterSignal(count)

	root := tree.El("span", nil, count)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	html := drain(t, r.Render(ctx, root))
	require.Contains(t, html, "<!--^"+count.Id+"-->3<!--/"+count.Id+"-->")
	require.Contains(t, html, "weaver.push(")
	require.Contains(t, html, count.Id)
}

// TestRenderComputedSignalExecutesServerSide exercises spec.md §8 scenario
// 2: a non-client-context (here isomorphic) `computed` signal with an absent value must be
// pre-executed before serialization so its result appears inline.
func TestRenderComputedSignalExecutesServerSide(t *testing.T) {
	reg := registry.New()
	loader := executor.NewMapLoader()
	loader.Register("double", func(_ context.Context, args []any) (any, error) {
		return args[0].(int) * 2, nil
	})
	ex := executor.New(signal.RoleServer, loader)
	r := renderer.New(reg, ex)

	f := signal.NewFactory(signal.RoleServer)
	base, err := f.NewState(21)
	require.NoError(t, err)
	reg.RegisterSignal(base)

	logic := f.NewLogic("double", signal.LogicOptions{})
	reg.RegisterSignal(logic)

	doubled, err := signal.NewComputed(logic, []*signal.Signal{base}, nil)
	require.NoError(t, err)
	reg.RegisterSignal(doubled)

	root := tree.El("p", nil, doubled)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	html := drain(t, r.Render(ctx, root))
	require.Contains(t, html, "<!--^"+doubled.Id+"-->42<!--/"+doubled.Id+"-->")
}

// TestRenderSuspenseShowsFallbackWhenPending exercises spec.md §8 scenario
// 3: a suspense boundary whose children depend on a still-pending computed
// signal renders the fallback, while caching the children's HTML.
func TestRenderSuspenseShowsFallbackWhenPending(t *testing.T) {
	reg := registry.New()
	loader := executor.NewMapLoader()
	block := make(chan struct{})
	loader.Register("slow", func(ctx context.Context, args []any) (any, error) {
		<-block
		return "loaded", nil
	})
	ex := executor.New(signal.RoleServer, loader)
	r := renderer.New(reg, ex)

	f := signal.NewFactory(signal.RoleServer)
	logic := f.NewLogic("slow", signal.LogicOptions{Timeout: durationPtr(0)})
	reg.RegisterSignal(logic)

	slow, err := signal.NewComputed(logic, nil, nil)
	require.NoError(t, err)
	reg.RegisterSignal(slow)

	suspense := f.NewSuspense(tree.El("span", nil, tree.Text("loading...")), slow)
	reg.RegisterSignal(suspense)

	root := tree.El("div", nil, suspense)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	html := drain(t, r.Render(ctx, root))
	close(block)

	require.Contains(t, html, "loading...")
	require.NotContains(t, html, "loaded")
	require.True(t, suspense.HasChildrenHTML())
}

// TestRenderSignalValuedAttributeWireFormat exercises spec.md §4.3/§6's
// attribute wire convention: a non-event signal-valued attribute emits both
// the id (under "data-w-<prop>") and the literal current value (under the
// original prop name), while an event-handler prop ("on*") emits only the
// data-w-on* id attribute and no literal-value attribute at all.
func TestRenderSignalValuedAttributeWireFormat(t *testing.T) {
	reg := registry.New()
	ex := executor.New(signal.RoleServer, executor.NewMapLoader())
	r := renderer.New(reg, ex)

	f := signal.NewFactory(signal.RoleServer)
	count, err := f.NewState(3)
	require.NoError(t, err)
	reg.RegisterSignal(count)

	incLogic := f.NewLogic("inc", signal.LogicOptions{})
	reg.RegisterSignal(incLogic)
	mut := signal.NewMutator(count)
	reg.RegisterSignal(mut)
	inc := signal.NewHandler(incLogic, []*signal.Signal{mut})
	reg.RegisterSignal(inc)

	root := tree.El("button", map[string]any{
		"value":   count,
		"onClick": inc,
	}, tree.Text("+"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	html := drain(t, r.Render(ctx, root))
	require.Contains(t, html, `data-w-value="`+count.Id+`"`)
	require.Contains(t, html, `value="3"`)
	require.Contains(t, html, `data-w-onclick="`+inc.Id+`"`)
	require.NotContains(t, html, " onclick=\"")
	require.NotContains(t, html, "onClick=\"")
}

func durationPtr(d time.Duration) *time.Duration { return &d }
