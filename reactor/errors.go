package reactor

import "errors"

// ErrNotIterable is returned when a reducer's source signal holds a value
// that is neither a sync ([]any) nor an async (Stream) iterable (spec.md
// §4.4, "ensure the source signal's value is an iterable").
var ErrNotIterable = errors.New("reactor: source value is not iterable")
