package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/streamweaver/weaver/internal/engine"
	"github.com/streamweaver/weaver/internal/logging"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

// Dispatcher sends a worker-context logic module to the worker pool
// (spec.md §4.7) and blocks until it completes. Implemented by
// workerpool.Pool; declared here so this package never imports workerpool.
type Dispatcher interface {
	Dispatch(ctx context.Context, src string, args []any) (any, error)
}

// RemoteCaller serializes a dependency chain rooted at targetId and POSTs
// it to the configured remote-execution endpoint (spec.md §4.2.1).
// Implemented by executor/remote.Client.
type RemoteCaller interface {
	Call(ctx context.Context, reg *registry.Registry, targetId string) (any, error)
}

// Executor runs `logic` signals under spec.md §4.2's context-gating and
// timeout/deferral rules. One Executor per process role; Workers and
// Remote are optional and only consulted for worker/server-context logic.
type Executor struct {
	Role    signal.Role
	Loader  ModuleLoader
	Workers Dispatcher
	Remote  RemoteCaller
}

// New creates an Executor for role, loading local logic through loader.
func New(role signal.Role, loader ModuleLoader) *Executor {
	return &Executor{Role: role, Loader: loader}
}

// ExecuteLogic is the executor's public surface (spec.md §4.2):
// executeLogic(logic, args, initFallback?) -> {value, deferred?}.
//
// targetId is the id of the derived signal (computed/action/handler/node)
// this invocation is executing on behalf of — needed only to serialize the
// remote-execution chain when logic.Context is "server" and this Executor
// runs on the client role, and as the signal label of the invocation
// record and the error log.
func (e *Executor) ExecuteLogic(ctx context.Context, reg *registry.Registry, targetId string, logic *signal.Signal, args []any, initFallback any) (Result, error) {
	start := time.Now()
	result, err := e.executeLogic(ctx, reg, targetId, logic, args, initFallback)

	logging.DefaultInvocations().Log(logging.Invocation{
		SignalId:   targetId,
		Src:        logic.Src,
		Context:    string(logic.Context),
		DurationMs: time.Since(start).Milliseconds(),
		Deferred:   result.Deferred != nil,
		Success:    err == nil,
		Error:      errString(err),
	})
	if err != nil {
		logging.Op().Error("logic execution failed", "signal", targetId, "src", logic.Src, "error", err)
	}
	return result, err
}

func (e *Executor) executeLogic(ctx context.Context, reg *registry.Registry, targetId string, logic *signal.Signal, args []any, initFallback any) (Result, error) {
	switch logic.Context {
	case signal.LogicContextClient:
		if e.Role == signal.RoleServer {
			return Result{Value: fallbackOrPending(initFallback)}, nil
		}
		return e.runRaced(ctx, logic.Timeout, initFallback, e.localWork(logic, args))

	case signal.LogicContextServer:
		if e.Role == signal.RoleClient {
			if e.Remote == nil {
				return Result{}, ErrNoRemoteCaller
			}
			v, err := e.Remote.Call(ctx, reg, targetId)
			if err != nil {
				return Result{}, err
			}
			return Result{Value: v}, nil
		}
		return e.runRaced(ctx, logic.Timeout, initFallback, e.localWork(logic, args))

	case signal.LogicContextWorker:
		if e.Workers == nil {
			return Result{}, ErrNoDispatcher
		}
		return e.runRaced(ctx, logic.Timeout, initFallback, func(ctx context.Context) (any, error) {
			return e.Workers.Dispatch(ctx, logic.Src, args)
		})

	default: // LogicContextIso: execute locally regardless of role.
		return e.runRaced(ctx, logic.Timeout, initFallback, e.localWork(logic, args))
	}
}

func (e *Executor) localWork(logic *signal.Signal, args []any) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		if e.Loader == nil {
			return nil, ErrNoLoader
		}
		fn, err := e.Loader.Load(ctx, logic.Src)
		if err != nil {
			return nil, err
		}
		return runCatchingPanics(func() (any, error) {
			return fn(ctx, args)
		})
	}
}

// runCatchingPanics contains a logic function's panic into a LogicException
// (spec.md §7: "Propagated as rejection") instead of crashing the calling
// goroutine, using a disposable per-call Owner rather than the registry's
// long-lived one so repeated invocations never accumulate catchers.
func runCatchingPanics(fn func() (any, error)) (value any, err error) {
	owner := engine.NewOwner()
	var caught any
	owner.OnError(func(r any) { caught = r })

	owner.Run(func() {
		value, err = fn()
	})

	if caught != nil {
		return nil, fmt.Errorf("executor: logic panicked: %v", caught)
	}
	return value, err
}

// runRaced implements the timeout/deferral race (spec.md §4.2):
//   - timeout == nil: inline, blocks for the result.
//   - *timeout == 0: starts work, returns {initFallback ?? PENDING, deferred}.
//   - *timeout > 0: races work against a timer; timer winning yields PENDING
//     (not initFallback) plus a deferred channel for the eventual result.
//
// Cancellation is not first-class (spec.md §5): work always runs to
// completion even past a timeout, on a context detached from ctx's
// cancellation.
func (e *Executor) runRaced(ctx context.Context, timeout *time.Duration, initFallback any, work func(context.Context) (any, error)) (Result, error) {
	if timeout == nil {
		v, err := work(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Value: v}, nil
	}

	resultCh := make(chan DeferredResult, 1)
	go func() {
		v, err := work(context.WithoutCancel(ctx))
		resultCh <- DeferredResult{Value: v, Err: err}
	}()

	if *timeout == 0 {
		return Result{Value: fallbackOrPending(initFallback), Deferred: resultCh}, nil
	}

	timer := time.NewTimer(*timeout)
	defer timer.Stop()

	select {
	case r := <-resultCh:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return Result{Value: r.Value}, nil
	case <-timer.C:
		return Result{Value: signal.Pending, Deferred: resultCh}, nil
	}
}

func fallbackOrPending(initFallback any) any {
	if initFallback != nil {
		return initFallback
	}
	return signal.Pending
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
