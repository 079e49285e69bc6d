package signal

import "time"

// Signal is the universal reactive unit (spec.md §3): a stable string Id,
// a Kind discriminator, and a set of kind-specific fields. Only the fields
// relevant to Kind are meaningful; the rest are zero. This mirrors the
// teacher's Signal/Computed split (AnatoleLucet-sig/internal/signal.go,
// computed.go) collapsed into one tagged-union record, since Stream
// Weaver's signal kinds are a closed, spec-fixed set rather than an
// open-ended generic type.
type Signal struct {
	Id   string
	Kind Kind

	// state / computed / reducer
	Init any

	// logic
	Src     string
	Timeout *time.Duration
	Context LogicContext

	// computed / action / handler / node
	Logic string
	Deps  []string

	// mutator / reference
	Ref string

	// reducer
	Source  string
	Reducer string

	// component
	ComponentLogic string

	// node
	Component string
	Props     map[string]any

	// suspense
	Fallback    any
	Children    any
	PendingDeps []string

	// ChildrenHTML caches the would-be HTML of a suspense's children so the
	// client can swap instantly without re-executing them (spec.md §4.8).
	ChildrenHTML string
	hasChildHTML bool
}

// HasChildrenHTML reports whether ChildrenHTML was precomputed during SSR.
func (s *Signal) HasChildrenHTML() bool { return s.hasChildHTML }

// SetChildrenHTML records a precomputed children rendering and marks it
// present, distinguishing an empty string from "absent" (spec.md §4.8:
// "If nothing is pending ... _childrenHtml is absent").
func (s *Signal) SetChildrenHTML(html string) {
	s.ChildrenHTML = html
	s.hasChildHTML = true
}

// Dependencies returns the ids this signal's registration depends on,
// across whichever fields apply to its Kind. The registry calls this once,
// at registration time, to build the reverse dependents index (spec.md
// §4.1: "Dependencies are extracted from the signal definition and
// reversed into the dependents index at registration time, not at
// execution time").
func (s *Signal) Dependencies() []string {
	switch s.Kind {
	case KindComputed, KindAction, KindHandler:
		deps := make([]string, 0, len(s.Deps)+1)
		if s.Logic != "" {
			deps = append(deps, s.Logic)
		}
		deps = append(deps, s.Deps...)
		return deps
	case KindMutator, KindReference:
		return []string{s.Ref}
	case KindReducer:
		deps := make([]string, 0, 2)
		if s.Source != "" {
			deps = append(deps, s.Source)
		}
		if s.Reducer != "" {
			deps = append(deps, s.Reducer)
		}
		return deps
	case KindComponent:
		if s.ComponentLogic != "" {
			return []string{s.ComponentLogic}
		}
		return nil
	case KindNode:
		deps := make([]string, 0, len(s.Deps)+2)
		if s.Logic != "" {
			deps = append(deps, s.Logic)
		}
		if s.Component != "" {
			deps = append(deps, s.Component)
		}
		deps = append(deps, s.Deps...)
		for _, v := range s.Props {
			if ref, ok := v.(*Signal); ok {
				deps = append(deps, ref.Id)
			}
		}
		return deps
	default:
		return nil
	}
}

// ParticipatesInDependents reports whether this Kind's registration should insert
// reverse edges into the registry's dependents index at all (spec.md
// §4.1: "registerSignal additionally inserts reverse edges ... when kind
// is computed/action/handler/node").
func (k Kind) ParticipatesInDependents() bool {
	switch k {
	case KindComputed, KindAction, KindHandler, KindNode:
		return true
	default:
		return false
	}
}
