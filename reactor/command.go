// Package reactor implements Stream Weaver's client-side SignalDelegate
// (spec.md §4.4): a single-threaded, cooperative command loop that accepts
// execute-signal / execute-reducer / signal-update commands, propagates
// dependency updates in topological order, drains reducer sources, and
// feeds a suspense transform + sink transform pipeline.
package reactor

// CommandKind discriminates the three commands the delegate's writable
// side accepts (spec.md §4.4).
type CommandKind int

const (
	ExecuteSignal CommandKind = iota
	ExecuteReducer
	SignalUpdateCmd
)

// Command is one entry on the delegate's input side. Event carries the
// triggering DOM event for a handler dispatched via event delegation;
// Value carries the written value for SignalUpdateCmd.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Id    string      `json:"id"`
	Value any         `json:"value,omitempty"`
	Event any         `json:"event,omitempty"`
}

// Update is one entry on the delegate's readable side: a `signal-update`
// token (spec.md §4.4).
type Update struct {
	Id    string `json:"id"`
	Value any    `json:"value"`
}
