package executor

import (
	"context"
	"fmt"

	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/tree"
)

func requireKind(s *signal.Signal, k signal.Kind) error {
	if s.Kind != k {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongKind, k, s.Kind)
	}
	return nil
}

func lookupLogic(reg *registry.Registry, logicId string) (*signal.Signal, error) {
	logic, ok := reg.GetSignal(logicId)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSignal, logicId)
	}
	return logic, nil
}

// ExecuteComputed runs a `computed` signal's logic over its resolved
// dependencies and writes the resulting value into the registry (spec.md
// §4.1, §4.2). The written value may be signal.Pending for a deferred
// execution still in flight.
func (e *Executor) ExecuteComputed(ctx context.Context, reg *registry.Registry, id string) (Result, error) {
	s, ok := reg.GetSignal(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSignal, id)
	}
	if err := requireKind(s, signal.KindComputed); err != nil {
		return Result{}, err
	}
	logic, err := lookupLogic(reg, s.Logic)
	if err != nil {
		return Result{}, err
	}

	args := resolveArgs(reg, s.Deps)
	result, err := e.ExecuteLogic(ctx, reg, id, logic, args, s.Init)
	if err != nil {
		return result, err
	}
	reg.SetValue(id, result.Value)
	return result, nil
}

// ExecuteAction runs an `action` signal's logic: an imperative operation
// with mutation access to its deps, invoked directly rather than through
// propagation (spec.md §4.4: "handlers and actions are not propagated
// through").
func (e *Executor) ExecuteAction(ctx context.Context, reg *registry.Registry, id string) (Result, error) {
	s, ok := reg.GetSignal(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSignal, id)
	}
	if err := requireKind(s, signal.KindAction); err != nil {
		return Result{}, err
	}
	logic, err := lookupLogic(reg, s.Logic)
	if err != nil {
		return Result{}, err
	}

	args := resolveArgs(reg, s.Deps)
	return e.ExecuteLogic(ctx, reg, id, logic, args, nil)
}

// ExecuteHandler runs a `handler` signal's logic with the triggering event
// prepended to its resolved deps (spec.md §4.2, §4.4).
func (e *Executor) ExecuteHandler(ctx context.Context, reg *registry.Registry, id string, event any) (Result, error) {
	s, ok := reg.GetSignal(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSignal, id)
	}
	if err := requireKind(s, signal.KindHandler); err != nil {
		return Result{}, err
	}
	logic, err := lookupLogic(reg, s.Logic)
	if err != nil {
		return Result{}, err
	}

	args := append([]any{event}, resolveArgs(reg, s.Deps)...)
	return e.ExecuteLogic(ctx, reg, id, logic, args, nil)
}

// ExecuteNode instantiates a `node` signal: runs its component's logic with
// the node's props and resolved deps to produce a *tree.Element (spec.md
// §4.2 "executeNode(reg, id) -> Node", §4.6).
func (e *Executor) ExecuteNode(ctx context.Context, reg *registry.Registry, id string) (*tree.Element, error) {
	s, ok := reg.GetSignal(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSignal, id)
	}
	if err := requireKind(s, signal.KindNode); err != nil {
		return nil, err
	}
	logic, err := lookupLogic(reg, s.Logic)
	if err != nil {
		return nil, err
	}

	args := append([]any{s.Props}, resolveArgs(reg, s.Deps)...)
	result, err := e.ExecuteLogic(ctx, reg, id, logic, args, nil)
	if err != nil {
		return nil, err
	}

	switch v := result.Value.(type) {
	case *tree.Element:
		return v, nil
	case tree.Text:
		return &tree.Element{Tag: "", Children: []tree.Node{v}}, nil
	default:
		return &tree.Element{Tag: "", Children: []tree.Node{tree.Text(fmt.Sprint(v))}}, nil
	}
}

// ExecuteReducer folds the current item of a reducer's source iterable into
// its accumulator (spec.md §4.2, §4.4 "reducer draining"). Each call
// applies one item; draining a full iterable is the reactor's job
// (package reactor), which calls this once per emitted item.
func (e *Executor) ExecuteReducer(ctx context.Context, reg *registry.Registry, id string, item any) (Result, error) {
	s, ok := reg.GetSignal(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSignal, id)
	}
	if err := requireKind(s, signal.KindReducer); err != nil {
		return Result{}, err
	}
	logic, err := lookupLogic(reg, s.Reducer)
	if err != nil {
		return Result{}, err
	}

	acc, ok := reg.GetValue(id)
	if !ok {
		acc = s.Init
	}
	args := []any{acc, item}
	result, err := e.ExecuteLogic(ctx, reg, id, logic, args, s.Init)
	if err != nil {
		return result, err
	}
	reg.SetValue(id, result.Value)
	return result, nil
}
