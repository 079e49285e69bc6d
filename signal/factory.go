package signal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Factory builds source signals (state, logic, component, suspense) for a
// single role (server or client), allocating their ids from its own
// counter, so each call yields a fresh id. Derived signals come from the
// package-level constructors (NewComputed, NewNode, ...), whose ids are
// content-derived: calling one twice with equal arguments yields the same
// id — the "idempotent by construction" invariant from spec.md §3 and §8.
type Factory struct {
	ids *IdAllocator
}

// NewFactory creates a Factory that allocates source ids under role.
func NewFactory(role Role) *Factory {
	return &Factory{ids: NewIdAllocator(role)}
}

// NewState creates a `state` signal: a mutable source cell whose init
// value must be JSON-encodable so it can survive SSR (spec.md §3 and §9,
// "Serialization boundary").
func (f *Factory) NewState(init any) (*Signal, error) {
	if err := requireJSONEncodable("state init", init); err != nil {
		return nil, err
	}
	return &Signal{
		Id:   f.ids.Next(),
		Kind: KindState,
		Init: init,
	}, nil
}

// LogicOptions configures a `logic` signal's optional fields.
type LogicOptions struct {
	Timeout *time.Duration
	Context LogicContext
}

// NewLogic creates a `logic` signal: a reference to an executable module.
func (f *Factory) NewLogic(src string, opts LogicOptions) *Signal {
	return &Signal{
		Id:      f.ids.Next(),
		Kind:    KindLogic,
		Src:     src,
		Timeout: opts.Timeout,
		Context: opts.Context,
	}
}

// NewComputed derives a `computed` signal's id from (logic, deps) and
// returns it — calling this twice with the same logic id and same dep ids
// yields the identical Signal value (content-addressable, spec.md §3).
func NewComputed(logic *Signal, deps []*Signal, init any) (*Signal, error) {
	if init != nil {
		if err := requireJSONEncodable("computed init", init); err != nil {
			return nil, err
		}
	}
	depIds := idsOf(deps)
	return &Signal{
		Id:    DeriveId(logic.Id, depIds),
		Kind:  KindComputed,
		Logic: logic.Id,
		Deps:  depIds,
		Init:  init,
	}, nil
}

// NewAction derives an `action` signal's id from (logic, deps).
func NewAction(logic *Signal, deps []*Signal) *Signal {
	depIds := idsOf(deps)
	return &Signal{
		Id:    DeriveId(logic.Id, depIds),
		Kind:  KindAction,
		Logic: logic.Id,
		Deps:  depIds,
	}
}

// NewHandler derives a `handler` signal's id from (logic, deps). A handler
// differs from an action only in that its logic receives the triggering
// event as a prepended argument (spec.md §3, §4.2).
func NewHandler(logic *Signal, deps []*Signal) *Signal {
	depIds := idsOf(deps)
	return &Signal{
		Id:    DeriveId(logic.Id, depIds),
		Kind:  KindHandler,
		Logic: logic.Id,
		Deps:  depIds,
	}
}

// NewMutator derives a `mutator` signal's id from the state signal it
// exposes write access to. A mutator has no logic of its own: its identity
// hash uses a fixed sentinel logic id so it never collides with a
// computed/action/handler that happens to share the same single dep.
func NewMutator(state *Signal) *Signal {
	return &Signal{
		Id:   DeriveId("$mutator", []string{state.Id}),
		Kind: KindMutator,
		Ref:  state.Id,
	}
}

// NewReference derives a `reference` signal's id: opaque forwarding of
// another signal's definition without unwrapping it.
func NewReference(target *Signal) *Signal {
	return &Signal{
		Id:   DeriveId("$reference", []string{target.Id}),
		Kind: KindReference,
		Ref:  target.Id,
	}
}

// NewReducer derives a `reducer` signal's id from (source, reducer logic).
func NewReducer(source *Signal, reducerLogic *Signal, init any) (*Signal, error) {
	if err := requireJSONEncodable("reducer init", init); err != nil {
		return nil, err
	}
	return &Signal{
		Id:      DeriveId(reducerLogic.Id, []string{source.Id}),
		Kind:    KindReducer,
		Source:  source.Id,
		Reducer: reducerLogic.Id,
		Init:    init,
	}, nil
}

// NewComponent creates a `component` signal: a template, identified by a
// counter-allocated source id since a component template is declared once
// at the call site that defines it, not re-derived per instantiation (the
// `node` signal is what gets a content-addressable id per instantiation).
func (f *Factory) NewComponent(logic *Signal) *Signal {
	return &Signal{
		Id:             f.ids.Next(),
		Kind:           KindComponent,
		ComponentLogic: logic.Id,
	}
}

// NewNode derives a `node` signal's id from (component logic, deps, props):
// an instance of a component bound to concrete prop values/signals. Two
// instantiations with identical (logic, props) collapse to the same id
// (spec.md §8, "Two components with identical (logic, props) share a node
// id").
func NewNode(component *Signal, deps []*Signal, props map[string]any) (*Signal, error) {
	for k, v := range props {
		if _, isSignal := v.(*Signal); isSignal {
			continue
		}
		if err := requireJSONEncodable(fmt.Sprintf("node prop %q", k), v); err != nil {
			return nil, err
		}
	}
	depIds := idsOf(deps)
	return &Signal{
		Id:        DeriveNodeId(component.ComponentLogic, depIds, props),
		Kind:      KindNode,
		Logic:     component.ComponentLogic,
		Component: component.Id,
		Deps:      depIds,
		Props:     props,
	}, nil
}

// NewSuspense creates a `suspense` signal: a boundary gating fallback vs.
// children based on descendant PENDING state. Suspense ids are counter-
// allocated (like state/logic/component) since a suspense boundary is
// declared once per call site, not re-derived structurally.
func (f *Factory) NewSuspense(fallback, children any) *Signal {
	return &Signal{
		Id:       f.ids.Next(),
		Kind:     KindSuspense,
		Fallback: fallback,
		Children: children,
	}
}

func idsOf(signals []*Signal) []string {
	ids := make([]string, len(signals))
	for i, s := range signals {
		ids[i] = s.Id
	}
	return ids
}

// requireJSONEncodable enforces the serialization boundary invariant from
// spec.md §9: "state init values and server logic return values MUST be
// JSON-encodable. Enforce this in the factories ... rather than at ad-hoc
// call sites."
func requireJSONEncodable(what string, v any) error {
	if v == nil {
		return nil
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Errorf("%s is not JSON-encodable: %w", what, err)
	}
	return nil
}
