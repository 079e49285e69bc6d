package renderer

import (
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/tree"
)

// harvestSignals performs the depth-first registration pass from spec.md
// §4.3: every signal reachable from root — as a direct child, an attribute
// value, or (for `node` signals) a prop value — is inserted into reg
// idempotently. Signals referenced only by id (a computed's logic/deps) are
// expected to already be registered by the setup code that constructed
// them, mirroring how every caller in this codebase registers a signal once
// at construction time rather than rediscovering it structurally.
func harvestSignals(reg *registry.Registry, root tree.Node) {
	switch v := root.(type) {
	case nil:
		return
	case *tree.Element:
		for _, attr := range v.Attrs {
			if s, ok := attr.(*signal.Signal); ok {
				harvestSignal(reg, s)
			}
		}
		for _, child := range v.Children {
			harvestSignals(reg, child)
		}
	case []tree.Node:
		for _, child := range v {
			harvestSignals(reg, child)
		}
	case *signal.Signal:
		harvestSignal(reg, v)
	}
}

func harvestSignal(reg *registry.Registry, s *signal.Signal) {
	if _, exists := reg.GetSignal(s.Id); exists {
		return
	}
	reg.RegisterSignal(s)

	if s.Kind == signal.KindNode {
		for _, v := range s.Props {
			if nested, ok := v.(*signal.Signal); ok {
				harvestSignal(reg, nested)
			}
		}
	}
}

// hasAsync reports whether root contains anything the fast path can't
// handle synchronously: a signal, a node, or a suspense boundary (spec.md
// §4.3, "fast path bypasses the pipeline ... no signals, async components,
// or suspense boundaries").
func hasAsync(root tree.Node) bool {
	switch v := root.(type) {
	case nil:
		return false
	case *tree.Element:
		for _, attr := range v.Attrs {
			if _, ok := attr.(*signal.Signal); ok {
				return true
			}
		}
		for _, child := range v.Children {
			if hasAsync(child) {
				return true
			}
		}
		return false
	case []tree.Node:
		for _, child := range v {
			if hasAsync(child) {
				return true
			}
		}
		return false
	case *signal.Signal:
		return true
	default:
		return false
	}
}
