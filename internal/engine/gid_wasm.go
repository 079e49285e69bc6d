//go:build js && wasm

package engine

// GoroutineID is always 0 under js/wasm: the browser runtime is
// single-threaded, so there is nothing to disambiguate.
func GoroutineID() int64 {
	return 0
}
