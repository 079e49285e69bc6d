package reactor

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/internal/engine"
	"github.com/streamweaver/weaver/internal/logging"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

// Delegate is the client reactor (spec.md §4.4): a single-threaded,
// cooperative processor of Commands that emits Updates to its subscribers.
// All registry access happens on the goroutine running Run, matching the
// registry's single-threaded ownership model.
type Delegate struct {
	Reg *registry.Registry
	Ex  *executor.Executor

	// feedback carries signal-update commands the delegate generates for
	// itself — a deferred computed's eventual resolution, a handler's
	// mutator writebacks — back through the same processing loop that an
	// external driver's commands go through, so propagation always happens
	// on the delegate's own goroutine (spec.md §4.4: "pipe its eventual
	// resolution back as another signal-update via the root writer").
	feedback chan Command

	mu        sync.Mutex
	listeners []func(Update)
}

// New creates a Delegate over reg, executing logic through ex.
func New(reg *registry.Registry, ex *executor.Executor) *Delegate {
	return &Delegate{Reg: reg, Ex: ex, feedback: make(chan Command, 32)}
}

// Subscribe registers fn to receive every Update the delegate emits, in
// emission order. Intended for a SuspenseTransform/SinkTransform Pipeline,
// or a Wire forwarding Updates to a remote driver.
func (d *Delegate) Subscribe(fn func(Update)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

func (d *Delegate) emit(u Update) {
	d.mu.Lock()
	listeners := make([]func(Update), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(u)
	}
}

// Run processes commands and feedback commands until ctx is cancelled or a
// command returns an error. Closing commands does not end Run: it keeps
// serving feedback commands until ctx is done. Each command is processed to
// completion before the next is read, matching the spec's single-threaded
// cooperative model.
func (d *Delegate) Run(ctx context.Context, commands <-chan Command) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if err := d.handle(ctx, cmd); err != nil {
				return err
			}

		case cmd := <-d.feedback:
			if err := d.handle(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

func (d *Delegate) handle(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case ExecuteSignal:
		return d.handleExecuteSignal(ctx, cmd)
	case ExecuteReducer:
		return d.handleExecuteReducer(ctx, cmd.Id)
	case SignalUpdateCmd:
		return d.handleSignalUpdate(ctx, cmd.Id, cmd.Value)
	default:
		return fmt.Errorf("reactor: unknown command kind %d", cmd.Kind)
	}
}

// handleExecuteSignal implements spec.md §4.4's "Processing an
// execute-signal": node and computed re-execute and emit; handler (the
// event-delegation path, executed with its event) and action execute and
// then sync mutator writebacks; other kinds are no-ops. A failing handler
// is logged and dropped rather than ending Run.
func (d *Delegate) handleExecuteSignal(ctx context.Context, cmd Command) error {
	s, ok := d.Reg.GetSignal(cmd.Id)
	if !ok {
		return fmt.Errorf("%w: %s", executor.ErrUnknownSignal, cmd.Id)
	}

	switch s.Kind {
	case signal.KindNode:
		el, err := d.Ex.ExecuteNode(ctx, d.Reg, cmd.Id)
		if err != nil {
			return err
		}
		d.Reg.SetValue(cmd.Id, el)
		d.emit(Update{Id: cmd.Id, Value: el})

	case signal.KindComputed:
		result, err := d.Ex.ExecuteComputed(ctx, d.Reg, cmd.Id)
		if err != nil {
			return err
		}
		d.emit(Update{Id: cmd.Id, Value: result.Value})
		if result.Deferred != nil {
			d.awaitDeferred(ctx, cmd.Id, result.Deferred)
		}

	case signal.KindHandler:
		result, err := d.Ex.ExecuteHandler(ctx, d.Reg, cmd.Id, cmd.Event)
		if err != nil {
			logging.Op().Warn("handler failed", "signal", cmd.Id, "error", err)
			return nil
		}
		if result.Deferred != nil {
			d.awaitDeferredWritebacks(ctx, result.Deferred, s)
		} else {
			d.syncMutatorWritebacks(ctx, s)
		}

	case signal.KindAction:
		result, err := d.Ex.ExecuteAction(ctx, d.Reg, cmd.Id)
		if err != nil {
			return err
		}
		if result.Deferred != nil {
			d.awaitDeferredWritebacks(ctx, result.Deferred, s)
		} else {
			d.syncMutatorWritebacks(ctx, s)
		}
	}

	return nil
}

// awaitDeferred feeds a computed's eventual deferred resolution back into
// the command loop as a signal-update, so it propagates like any other
// write.
func (d *Delegate) awaitDeferred(ctx context.Context, id string, deferred <-chan executor.DeferredResult) {
	go func() {
		select {
		case dr := <-deferred:
			if dr.Err != nil {
				return
			}
			select {
			case d.feedback <- Command{Kind: SignalUpdateCmd, Id: id, Value: dr.Value}:
			case <-ctx.Done():
			}
		case <-ctx.Done():
		}
	}()
}

// awaitDeferredWritebacks waits for a deferred handler/action to settle,
// then feeds each mutator dep's current value back into the command loop as
// a signal-update, so the writeback propagates on the delegate's own
// goroutine.
func (d *Delegate) awaitDeferredWritebacks(ctx context.Context, deferred <-chan executor.DeferredResult, s *signal.Signal) {
	go func() {
		select {
		case <-deferred:
		case <-ctx.Done():
			return
		}
		for _, depId := range s.Deps {
			dep, ok := d.Reg.GetSignal(depId)
			if !ok || dep.Kind != signal.KindMutator {
				continue
			}
			v, _ := d.Reg.GetValue(dep.Ref)
			select {
			case d.feedback <- Command{Kind: SignalUpdateCmd, Id: dep.Ref, Value: v}:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// syncMutatorWritebacks re-emits and propagates the current registry value
// of every mutator dep's underlying state signal after a handler/action
// runs (spec.md §4.4: "on completion each mutator dep writes back through
// signal-update, triggering propagation"). The executor's Cell writes
// straight into the registry during logic execution, bypassing the
// propagation path entirely, so the delegate re-drives it here rather than
// trying to detect which mutators were actually touched.
func (d *Delegate) syncMutatorWritebacks(ctx context.Context, s *signal.Signal) {
	for _, depId := range s.Deps {
		dep, ok := d.Reg.GetSignal(depId)
		if !ok || dep.Kind != signal.KindMutator {
			continue
		}
		v, _ := d.Reg.GetValue(dep.Ref)
		d.emit(Update{Id: dep.Ref, Value: v})
		_ = d.propagate(ctx, dep.Ref)
	}
}

// handleSignalUpdate implements spec.md §4.4's "Processing a
// signal-update": write the value, emit it, then propagate to transitive
// dependents.
func (d *Delegate) handleSignalUpdate(ctx context.Context, id string, value any) error {
	d.Reg.SetValue(id, value)
	d.emit(Update{Id: id, Value: value})
	return d.propagate(ctx, id)
}

// propagate re-executes every transitive dependent computed/node of id, in
// topological (height-ascending) order, emitting a signal-update for each
// (spec.md §4.4, §5 ordering invariant 2). Handlers and actions never
// appear here — they participate in the dependents index (for the
// registry's bookkeeping) but are invoked only by events, never by
// propagation.
func (d *Delegate) propagate(ctx context.Context, rootId string) error {
	visited := map[string]bool{rootId: true}
	queue := []string{rootId}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range d.Reg.GetDependents(id) {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			queue = append(queue, dep)
		}
	}
	delete(visited, rootId)
	if len(visited) == 0 {
		return nil
	}

	heap := engine.NewHeap()
	nodeToId := make(map[*engine.Node]string, len(visited))
	for id := range visited {
		n := d.Reg.Node(id)
		nodeToId[n] = id
		heap.Insert(n)
	}

	var firstErr error
	heap.Drain(func(n *engine.Node) {
		if firstErr != nil {
			return
		}
		id, ok := nodeToId[n]
		if !ok {
			return
		}
		s, ok := d.Reg.GetSignal(id)
		if !ok {
			return
		}

		switch s.Kind {
		case signal.KindComputed:
			result, err := d.Ex.ExecuteComputed(ctx, d.Reg, id)
			if err != nil {
				firstErr = err
				return
			}
			d.emit(Update{Id: id, Value: result.Value})

		case signal.KindNode:
			el, err := d.Ex.ExecuteNode(ctx, d.Reg, id)
			if err != nil {
				firstErr = err
				return
			}
			d.Reg.SetValue(id, el)
			d.emit(Update{Id: id, Value: el})
		}
	})

	return firstErr
}

// handleExecuteReducer implements spec.md §4.4's "Processing an
// execute-reducer": drain the source iterable, folding each item through
// the reducer logic and emitting an update per item, in source order.
func (d *Delegate) handleExecuteReducer(ctx context.Context, id string) error {
	s, ok := d.Reg.GetSignal(id)
	if !ok {
		return fmt.Errorf("%w: %s", executor.ErrUnknownSignal, id)
	}
	if s.Kind != signal.KindReducer {
		return fmt.Errorf("%w: want %s, got %s", executor.ErrWrongKind, signal.KindReducer, s.Kind)
	}

	if d.Ex.Role == signal.RoleServer {
		d.Reg.SetValue(id, s.Init)
		d.emit(Update{Id: id, Value: s.Init})
		return nil
	}

	it, err := d.resolveIterable(ctx, s.Source)
	if err != nil {
		return err
	}

	for {
		item, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		result, err := d.Ex.ExecuteReducer(ctx, d.Reg, id, item)
		if err != nil {
			return err
		}
		d.emit(Update{Id: id, Value: result.Value})
	}
}

func (d *Delegate) resolveIterable(ctx context.Context, sourceId string) (Iterable, error) {
	s, ok := d.Reg.GetSignal(sourceId)
	if !ok {
		return nil, fmt.Errorf("%w: %s", executor.ErrUnknownSignal, sourceId)
	}

	v, has := d.Reg.GetValue(sourceId)
	if !has && s.Kind == signal.KindComputed {
		result, err := d.Ex.ExecuteComputed(ctx, d.Reg, sourceId)
		if err != nil {
			return nil, err
		}
		v = result.Value
	}

	return asIterable(v)
}
