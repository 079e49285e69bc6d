package reactor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/renderer"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/suspense"
	"github.com/streamweaver/weaver/tree"
)

// Sink is the minimal DOM-patcher surface the reactor's transforms need
// (spec.md §4.5), implemented by sink.htmldom and sink.jsdom.
type Sink interface {
	Sync(id string, html string)
	HasBindPoint(id string) bool
	HasContent(id string) bool
	IsDescendant(childId, ancestorId string) bool
}

// SuspenseTransform is the stream transform placed before the sink
// (spec.md §4.4, "Suspense transform"): it tracks each suspense boundary's
// pendingDeps set and swaps its DOM region between fallback and children
// as dependencies become pending or settle.
type SuspenseTransform struct {
	Reg  *registry.Registry
	Ex   *executor.Executor
	Sink Sink

	mu           sync.Mutex
	coordinators map[string]*suspense.Coordinator // suspenseId -> state machine
}

// NewSuspenseTransform creates a SuspenseTransform over reg/ex, patching
// through sink.
func NewSuspenseTransform(reg *registry.Registry, ex *executor.Executor, sink Sink) *SuspenseTransform {
	return &SuspenseTransform{Reg: reg, Ex: ex, Sink: sink, coordinators: make(map[string]*suspense.Coordinator)}
}

func (t *SuspenseTransform) coordinatorFor(id string) *suspense.Coordinator {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.coordinators[id]
	if !ok {
		c = suspense.NewCoordinator()
		t.coordinators[id] = c
	}
	return c
}

// Handle implements spec.md §4.4's suspense-transform rule for one
// signal-update, driving each descendant suspense boundary's
// suspense.Coordinator and reacting only on an actual state transition.
func (t *SuspenseTransform) Handle(ctx context.Context, u Update) {
	if signal.IsPending(u.Value) {
		t.addPending(ctx, u.Id)
		return
	}
	t.clearPending(ctx, u.Id)
}

func (t *SuspenseTransform) addPending(ctx context.Context, id string) {
	for _, s := range t.Reg.GetAllSignals() {
		if s.Kind != signal.KindSuspense || !t.Sink.IsDescendant(id, s.Id) {
			continue
		}
		if t.coordinatorFor(s.Id).AddPending(id) {
			t.showFallback(ctx, s)
		}
	}
}

func (t *SuspenseTransform) clearPending(ctx context.Context, id string) {
	for _, s := range t.Reg.GetAllSignals() {
		if s.Kind != signal.KindSuspense {
			continue
		}
		if t.coordinatorFor(s.Id).ClearPending(id) {
			t.showChildren(ctx, s)
		}
	}
}

func (t *SuspenseTransform) showFallback(ctx context.Context, s *signal.Signal) {
	t.Sink.Sync(s.Id, renderTreeSync(ctx, t.Reg, t.Ex, s.Fallback))
}

// showChildren swaps back to the children content, preferring the
// server-precomputed _childrenHtml (spec.md §4.8) over re-rendering, then
// re-syncs every computed descendant's current value into the now-live
// bind-points (spec.md §4.4).
func (t *SuspenseTransform) showChildren(ctx context.Context, s *signal.Signal) {
	html := s.ChildrenHTML
	if !s.HasChildrenHTML() {
		html = renderTreeSync(ctx, t.Reg, t.Ex, s.Children)
	}
	t.Sink.Sync(s.Id, html)
	t.resyncDescendants(ctx, s.Id)
}

func (t *SuspenseTransform) resyncDescendants(ctx context.Context, suspenseId string) {
	for _, s := range t.Reg.GetAllSignals() {
		if s.Kind != signal.KindComputed || !t.Sink.IsDescendant(s.Id, suspenseId) || !t.Sink.HasBindPoint(s.Id) {
			continue
		}
		v, _ := t.Reg.GetValue(s.Id)
		t.Sink.Sync(s.Id, formatClientValue(ctx, t.Reg, t.Ex, v))
	}
}

// SinkTransform is the final stage of the reactor pipeline (spec.md §4.4,
// "Sink transform"): it formats an Update's value and patches it into the
// DOM via Sink.Sync.
type SinkTransform struct {
	Reg *registry.Registry
	Ex  *executor.Executor

	Sink Sink
}

// NewSinkTransform creates a SinkTransform over reg/ex, patching through
// sink.
func NewSinkTransform(reg *registry.Registry, ex *executor.Executor, sink Sink) *SinkTransform {
	return &SinkTransform{Reg: reg, Ex: ex, Sink: sink}
}

func (t *SinkTransform) Handle(ctx context.Context, u Update) {
	t.Sink.Sync(u.Id, formatClientValue(ctx, t.Reg, t.Ex, u.Value))
}

// Pipeline composes the suspense transform and the sink transform in the
// order spec.md §4.4 requires: suspense first, sink after.
type Pipeline struct {
	Suspense *SuspenseTransform
	Sink     *SinkTransform
}

func (p *Pipeline) Handle(ctx context.Context, u Update) {
	if p.Suspense != nil {
		p.Suspense.Handle(ctx, u)
	}
	if p.Sink != nil {
		p.Sink.Handle(ctx, u)
	}
}

// formatClientValue implements spec.md §4.4's formatting rule: empty
// string for PENDING, String(value) for primitives, rendered HTML for
// element/node values.
func formatClientValue(ctx context.Context, reg *registry.Registry, ex *executor.Executor, v any) string {
	if v == nil || signal.IsPending(v) {
		return ""
	}

	switch v.(type) {
	case *tree.Element, []tree.Node, tree.Text:
		return renderTreeSync(ctx, reg, ex, v)
	default:
		return fmt.Sprint(v)
	}
}

func renderTreeSync(ctx context.Context, reg *registry.Registry, ex *executor.Executor, node tree.Node) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	for chunk := range renderer.New(reg, ex).Render(ctx, node) {
		b.Write(chunk)
	}
	return b.String()
}
