package signal

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync/atomic"
)

// IdAllocator hands out role-prefixed counter ids for source signals
// (state, logic, component templates). Spec.md §3 calls for a
// "process role prefix (s for server, c for client)" so ids allocated on
// either side of the server/client boundary never collide; Open Question
// (b) is resolved here in favor of that scheme.
//
// One allocator is process-wide per role by convention (Design Notes §9:
// "the source-id counter ... [is an] only process-wide mutable entit[y]"),
// but nothing prevents constructing a scoped one for tests.
type IdAllocator struct {
	role    Role
	counter atomic.Uint64
}

// NewIdAllocator creates a counter scoped to role.
func NewIdAllocator(role Role) *IdAllocator {
	return &IdAllocator{role: role}
}

// Next returns the next source id for this allocator's role, e.g. "s1",
// "s2", ... or "c1", "c2", ...
func (a *IdAllocator) Next() string {
	n := a.counter.Add(1)
	return fmt.Sprintf("%s%d", a.role, n)
}

// DeriveId computes the content-addressable id for a derived signal
// (computed, action, handler, mutator, reference, reducer, node): a 32-bit
// FNV-1a hash over the logic id concatenated with dependency ids, prefixed
// with "h" to set it apart from counter-allocated source ids at a glance
// (spec.md §3, Identity; Open Question (b)).
//
// Calling DeriveId with the same inputs always yields the same id — the
// central invariant enabling "call-site freedom (inside loops, branches, or
// at module top level)" and letting server and client independently arrive
// at the same id for the same derived meaning.
func DeriveId(logicId string, depIds []string) string {
	h := fnv.New32a()
	h.Write([]byte(logicId))
	for _, d := range depIds {
		h.Write([]byte{0}) // separator: avoids "ab","c" colliding with "a","bc"
		h.Write([]byte(d))
	}
	return fmt.Sprintf("h%x", h.Sum32())
}

// DeriveNodeId computes a `node` signal's id: the same FNV-1a scheme as
// DeriveId, but folding in a canonicalized props digest where signal-valued
// props contribute their id and literal props contribute their JSON form
// (spec.md §3, Identity).
func DeriveNodeId(componentLogicId string, deps []string, props map[string]any) string {
	digest := CanonicalizePropsDigest(props)
	h := fnv.New32a()
	h.Write([]byte(componentLogicId))
	for _, d := range deps {
		h.Write([]byte{0})
		h.Write([]byte(d))
	}
	h.Write([]byte{0})
	h.Write([]byte(digest))
	return fmt.Sprintf("h%x", h.Sum32())
}

// CanonicalizePropsDigest produces a deterministic string for a props map:
// keys sorted, signal-valued props contribute their Id, everything else
// contributes its JSON encoding. Deterministic across calls and across
// server/client so that the same (component, props) pair always derives
// the same node id.
func CanonicalizePropsDigest(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := props[k]
		var rendered string
		if ref, ok := v.(*Signal); ok {
			rendered = "$sig:" + ref.Id
		} else {
			b, err := json.Marshal(v)
			if err != nil {
				// A non-serializable literal prop is a programmer error;
				// surface it as part of the digest rather than panicking
				// here, so the caller's own JSON-serializability check
				// (the factories in factory.go) produces the real diagnostic.
				rendered = fmt.Sprintf("$unserializable:%v", v)
			} else {
				rendered = string(b)
			}
		}
		parts = append(parts, k+"="+rendered)
	}

	digest := ""
	for i, p := range parts {
		if i > 0 {
			digest += "&"
		}
		digest += p
	}
	return digest
}
