// Package tree is the out-of-scope JSX-like factory (spec.md §1, §4.6): a
// thin builder for the declarative element values the renderer walks. Kept
// deliberately undocumented beyond this point, matching the teacher's own
// sparse treatment of non-core helpers.
package tree

// Node is whatever a component, computed, or literal child yields: an
// *Element, a Text, a *signal.Signal (bound to a reactive value), a slice
// of Node (a fragment), or nil.
type Node = any

// Element is a declarative element: a tag plus attributes plus children.
// Attribute and child values may themselves be reactive (any *signal.Signal
// found here is executed/bound by the renderer, not by this package).
type Element struct {
	Tag      string
	Attrs    map[string]any
	Children []Node
}

// Text is a literal text child.
type Text string

// El builds an Element.
func El(tag string, attrs map[string]any, children ...Node) *Element {
	return &Element{Tag: tag, Attrs: attrs, Children: children}
}

// Fragment groups children with no wrapping tag.
func Fragment(children ...Node) []Node { return children }
