// Package renderer implements Stream Weaver's streaming renderer (spec.md
// §4.3): tokenization, chunking, and HTML serialization of a tree.Node,
// executing async and pending subtrees concurrently while preserving
// document order on the wire.
package renderer

import "github.com/streamweaver/weaver/signal"

// Kind discriminates a Token (spec.md §4.3, Tokenization).
type Kind int

const (
	OpenTag Kind = iota
	CloseTag
	TextToken
	RawHTML
	SignalDefinition
	BindMarkerOpen
	BindMarkerClose
	NodeExecutable
	ComputedExecutable
	SuspenseExecutable
)

// Token is one unit of the renderer's intermediate representation between
// tokenization and serialization.
type Token struct {
	Kind Kind

	Tag   string
	Attrs map[string]any

	Text string

	// Id is the bind-point or signal id for bind-marker and executable
	// tokens.
	Id string

	// Signal carries the definition for a SignalDefinition token.
	Signal *signal.Signal
}
