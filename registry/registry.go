// Package registry implements Stream Weaver's per-orchestrator signal
// registry (spec.md §4.1): three maps (id→signal, id→value, id→dependents)
// plus the reverse-edge bookkeeping that makes dependency propagation
// possible without re-deriving the graph on every write.
package registry

import (
	"fmt"
	"sync"

	"github.com/streamweaver/weaver/internal/engine"
	"github.com/streamweaver/weaver/signal"
)

// Registry is the live signal graph for one orchestrator instance (one
// server render, or one client page load). Each Registry owns its own
// engine.Owner and engine.Node set, so constructing a fresh Registry is
// all that is needed for the "isolated core" test-isolation story from
// spec.md Design Notes §9(c) — no process-wide registry state exists.
type Registry struct {
	mu sync.RWMutex

	signals    map[string]*signal.Signal
	values     map[string]any
	dependents map[string]map[string]struct{} // id -> set of dependent ids
	nodes      map[string]*engine.Node         // id -> graph node (for topological ordering)

	owner *engine.Owner

	// ownerGID, when set, is the goroutine id this registry was created on.
	// CheckSingleThreaded asserts subsequent calls happen on the same
	// goroutine (spec.md §5: mutated only from the same role's single
	// thread). It is advisory only — a debug aid, not an enforced lock.
	ownerGID int64
}

// New creates an empty, isolated Registry.
func New() *Registry {
	return &Registry{
		signals:    make(map[string]*signal.Signal),
		values:     make(map[string]any),
		dependents: make(map[string]map[string]struct{}),
		nodes:      make(map[string]*engine.Node),
		owner:      engine.NewOwner(),
		ownerGID:   engine.GoroutineID(),
	}
}

// Owner exposes the registry's lifecycle owner, e.g. for disposing all
// signals a `node` instance registered when that node is replaced.
func (r *Registry) Owner() *engine.Owner { return r.owner }

// CheckSingleThreaded asserts the caller is on the registry's owning
// goroutine. Intended for debug builds / tests; it panics rather than
// silently corrupting the graph, mirroring the teacher tracker's
// cross-goroutine guard (AnatoleLucet-sig/internal/tracker.go).
func (r *Registry) CheckSingleThreaded() {
	if got := engine.GoroutineID(); got != r.ownerGID {
		panic(fmt.Sprintf("registry: accessed from goroutine %d, owned by %d", got, r.ownerGID))
	}
}

func (r *Registry) nodeFor(id string) *engine.Node {
	n, ok := r.nodes[id]
	if !ok {
		n = engine.NewNode()
		r.nodes[id] = n
	}
	return n
}

// RegisterSignal inserts s into the registry, idempotently by id, and
// reverses its declared dependencies into the dependents index (spec.md
// §4.1). Initializes the value slot for `state` (to Init) on first
// registration; `computed`/`reducer` values are left absent until first
// execution (spec.md §3, Lifecycle).
func (r *Registry) RegisterSignal(s *signal.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(s)
}

func (r *Registry) registerLocked(s *signal.Signal) {
	if _, exists := r.signals[s.Id]; exists {
		return // idempotent by id (spec.md §4.1, §8)
	}

	r.signals[s.Id] = s

	if s.Kind == signal.KindState {
		r.values[s.Id] = s.Init
	}

	node := r.nodeFor(s.Id)

	if s.Kind.ParticipatesInDependents() {
		for _, depId := range s.Dependencies() {
			depNode := r.nodeFor(depId)
			engine.Link(node, depNode)

			set, ok := r.dependents[depId]
			if !ok {
				set = make(map[string]struct{})
				r.dependents[depId] = set
			}
			set[s.Id] = struct{}{}
		}
	}
}

// RegisterIfAbsent registers s only if no signal with that id already
// exists, returning the (possibly pre-existing) signal for that id.
func (r *Registry) RegisterIfAbsent(s *signal.Signal) *signal.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.signals[s.Id]; ok {
		return existing
	}
	r.registerLocked(s)
	return s
}

// GetSignal looks up a signal's definition by id.
func (r *Registry) GetSignal(id string) (*signal.Signal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.signals[id]
	return s, ok
}

// GetValue returns the current value stored for id, or (nil, false) if
// nothing has ever been written/computed.
func (r *Registry) GetValue(id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[id]
	return v, ok
}

// SetValue is a blind write: it does not itself trigger propagation. The
// reactor (package reactor) drives propagation on top of this (spec.md
// §4.1: "setValue is a blind write; reactive propagation is driven by the
// delegate, not by the registry").
func (r *Registry) SetValue(id string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[id] = v
}

// GetDependents returns the ids that depend on id (direct, not
// transitive), per the reverse index built at registration time.
func (r *Registry) GetDependents(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.dependents[id]
	out := make([]string, 0, len(set))
	for dep := range set {
		out = append(out, dep)
	}
	return out
}

// GetDependencies returns the (direct) dependency ids declared by id's own
// signal definition.
func (r *Registry) GetDependencies(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.signals[id]
	if !ok {
		return nil
	}
	return s.Dependencies()
}

// GetAllSignals returns every registered signal. Order is unspecified.
func (r *Registry) GetAllSignals() []*signal.Signal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*signal.Signal, 0, len(r.signals))
	for _, s := range r.signals {
		out = append(out, s)
	}
	return out
}

// Node exposes the engine graph node backing id, for use by the reactor's
// topological propagation (package reactor). Creates the node if the id
// hasn't been registered yet (e.g. a dependent discovered mid-traversal).
func (r *Registry) Node(id string) *engine.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodeFor(id)
}
