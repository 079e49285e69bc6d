//go:build !(js && wasm)

package engine

import "github.com/petermattis/goid"

// GoroutineID returns an identifier for the calling goroutine. The registry
// uses this to assert, in debug builds, that it is only ever mutated from
// the single goroutine that owns it (spec.md §5: "the registry is ... mutated
// only from the same role's single thread") — the same cross-goroutine
// guard the teacher engine uses to protect its dependency tracker.
func GoroutineID() int64 {
	return goid.Get()
}
