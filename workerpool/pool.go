// Package workerpool implements Stream Weaver's worker pool (spec.md
// §4.7): a set of long-lived goroutines draining a shared task queue,
// grounded on oriys-nova/internal/pool/pool.go's lifecycle discipline
// (explicit capacity, busy accounting) scaled down from VM pooling to a
// plain (src, args) -> result task queue. Each call to New builds an
// independent pool; nothing limits a process to a single instance.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/internal/logging"
	"github.com/streamweaver/weaver/internal/telemetry"
)

// MinCapacity is the floor below which the pool never shrinks, even on a
// single-core host (spec.md §4.7, "default fallback 4").
const MinCapacity = 4

// task is one unit of work queued to the pool.
type task struct {
	id     string
	ctx    context.Context
	src    string
	args   []any
	result chan<- taskResult
}

type taskResult struct {
	value any
	err   error
}

// Pool is a fixed-size set of worker goroutines reading from a shared task
// channel. It implements executor.Dispatcher.
type Pool struct {
	capacity int
	loader   executor.ModuleLoader
	tasks    chan task
	active   atomic.Int64
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// ResolveCapacity applies spec.md §4.7's sizing rule: min(configured,
// runtime.NumCPU()), never below MinCapacity. configured <= 0 means
// "unconfigured" and defers entirely to NumCPU/floor.
func ResolveCapacity(configured int) int {
	n := runtime.NumCPU()
	if configured > 0 && configured < n {
		n = configured
	}
	if n < MinCapacity {
		n = MinCapacity
	}
	return n
}

// New creates a Pool with the given configured capacity (resolved via
// ResolveCapacity) and starts its worker goroutines. loader resolves a
// task's src to the LogicFunc that runs it.
func New(configured int, loader executor.ModuleLoader) *Pool {
	capacity := ResolveCapacity(configured)
	p := &Pool{
		capacity: capacity,
		loader:   loader,
		tasks:    make(chan task, capacity*4),
		done:     make(chan struct{}),
	}
	telemetry.WorkerPoolCapacity.Set(float64(capacity))

	for i := 0; i < capacity; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case t := <-p.tasks:
			p.run(t)
		}
	}
}

func (p *Pool) run(t task) {
	p.active.Add(1)
	telemetry.WorkerPoolActive.Set(float64(p.active.Load()))
	defer func() {
		p.active.Add(-1)
		telemetry.WorkerPoolActive.Set(float64(p.active.Load()))
	}()

	fn, err := p.loader.Load(t.ctx, t.src)
	if err != nil {
		p.finish(t, taskResult{err: err})
		return
	}
	v, err := fn(t.ctx, t.args)
	p.finish(t, taskResult{value: v, err: err})
}

func (p *Pool) finish(t task, r taskResult) {
	outcome := "ok"
	if r.err != nil {
		outcome = "error"
		logging.Op().Error("worker task failed", "task", t.id, "src", t.src, "error", r.err)
	}
	telemetry.WorkerPoolTasksTotal.WithLabelValues(outcome).Inc()
	t.result <- r
}

// Dispatch implements executor.Dispatcher: it queues (src, args) and blocks
// until a worker executes it or ctx is done.
func (p *Pool) Dispatch(ctx context.Context, src string, args []any) (any, error) {
	resultCh := make(chan taskResult, 1)
	t := task{id: uuid.NewString(), ctx: ctx, src: src, args: args, result: resultCh}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, fmt.Errorf("workerpool: pool shut down")
	}

	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops accepting new work and waits for in-flight tasks to
// finish. Queued-but-not-yet-started tasks are abandoned.
func (p *Pool) Shutdown() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// Capacity returns the pool's resolved worker count.
func (p *Pool) Capacity() int { return p.capacity }
