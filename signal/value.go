// Package signal implements Stream Weaver's data model (spec.md §3): the
// ten signal kinds, their identity rules, and the value domain they carry.
package signal

// pendingType is the unexported type of the PENDING sentinel, so that no
// value other than the package's own Pending constant can ever compare
// equal to it.
type pendingType struct{}

// Pending is the distinguished value meaning "valid placeholder; a real
// value is in flight" (spec.md §3, Value domain / Glossary).
var Pending = pendingType{}

// IsPending reports whether v is the PENDING sentinel.
func IsPending(v any) bool {
	_, ok := v.(pendingType)
	return ok
}
