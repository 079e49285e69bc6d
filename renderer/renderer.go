package renderer

import (
	"context"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/internal/telemetry"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/tree"
)

// ChunkTarget is the byte-size target per emitted chunk (spec.md §4.3,
// "target approx 2 KiB per chunk").
const ChunkTarget = 2 * 1024

// Renderer turns a tree.Node into a stream of HTML byte chunks (spec.md
// §4.3).
type Renderer struct {
	Reg      *registry.Registry
	Executor *executor.Executor
}

// New creates a Renderer backed by reg and ex.
func New(reg *registry.Registry, ex *executor.Executor) *Renderer {
	return &Renderer{Reg: reg, Executor: ex}
}

// Render tokenizes, executes, and serializes root, returning a channel of
// HTML byte chunks. The channel is closed when rendering completes or ctx
// is cancelled. The fast path (spec.md §4.3) skips signal harvesting and
// pre-execution when root contains no signals, nodes, or suspense
// boundaries, and tokenizes and serializes root directly.
func (r *Renderer) Render(ctx context.Context, root tree.Node) <-chan []byte {
	out := make(chan []byte)

	go func() {
		defer close(out)

		if !hasAsync(root) {
			d := &delegate{reg: r.Reg, ex: r.Executor}
			html := Serialize(d.walk(ctx, root))
			emitChunks(ctx, out, html)
			return
		}

		harvestSignals(r.Reg, root)
		if err := preExecuteServerLogic(ctx, r.Reg, r.Executor); err != nil {
			return
		}

		d := &delegate{reg: r.Reg, ex: r.Executor}
		tokens := d.walk(ctx, root)
		html := Serialize(tokens)
		emitChunks(ctx, out, html)
	}()

	return out
}

// emitChunks splits html into ~ChunkTarget-byte pieces, flushing the first
// chunk immediately (spec.md §4.3, "first chunk flushed immediately for
// TTFB").
func emitChunks(ctx context.Context, out chan<- []byte, html string) {
	b := []byte(html)
	for len(b) > 0 {
		n := ChunkTarget
		if n > len(b) {
			n = len(b)
		}
		chunk := b[:n]
		b = b[n:]

		select {
		case out <- chunk:
			telemetry.RenderChunksTotal.Inc()
		case <-ctx.Done():
			return
		}
	}
	if len(html) == 0 {
		select {
		case out <- []byte{}:
			telemetry.RenderChunksTotal.Inc()
		case <-ctx.Done():
		}
	}
}
