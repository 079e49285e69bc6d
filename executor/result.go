package executor

// DeferredResult carries a deferred execution's eventual outcome (spec.md
// §4.2, "the deferred channel lets callers trigger reactive updates on
// completion"). Sent exactly once.
type DeferredResult struct {
	Value any
	Err   error
}

// Result is executeLogic's return value: an immediate Value (possibly
// signal.Pending) and, for a timed-out or deliberately deferred execution,
// a Deferred channel that will receive the real outcome later.
type Result struct {
	Value    any
	Deferred <-chan DeferredResult
}
