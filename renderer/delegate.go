package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/internal/telemetry"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/tree"
)

// delegate walks a tree.Node into a Token slice, grounded on spec.md §4.3's
// "stream-to-stream transform that splices child sub-streams into the
// output in document order": each element's children are executed
// concurrently (one goroutine per child, the Go analogue of a child
// sub-stream), then their token slices are concatenated back in source
// order, so an executable child's execution overlaps with its siblings'
// without reordering the serialized output.
type delegate struct {
	reg *registry.Registry
	ex  *executor.Executor
}

func (d *delegate) walk(ctx context.Context, node tree.Node) []Token {
	switch v := node.(type) {
	case nil:
		return nil
	case *tree.Element:
		return d.walkElement(ctx, v)
	case tree.Text:
		if v == "" {
			return nil
		}
		return []Token{{Kind: TextToken, Text: string(v)}}
	case []tree.Node:
		return d.walkChildren(ctx, v)
	case *signal.Signal:
		return d.walkSignal(ctx, v)
	default:
		return []Token{{Kind: TextToken, Text: fmt.Sprint(v)}}
	}
}

func (d *delegate) walkElement(ctx context.Context, el *tree.Element) []Token {
	tokens := make([]Token, 0, len(el.Children)+2)
	attrs := make(map[string]any, len(el.Attrs))

	for k, v := range el.Attrs {
		s, ok := v.(*signal.Signal)
		if !ok {
			attrs[k] = v
			continue
		}
		name := "data-w-" + lowerPropName(k)
		attrs[name] = s.Id
		if !isEventProp(k) {
			attrs[k] = currentAttrValue(d.reg, s)
		}
	}

	tokens = append(tokens, Token{Kind: OpenTag, Tag: el.Tag, Attrs: attrs})
	tokens = append(tokens, d.walkChildren(ctx, el.Children)...)
	tokens = append(tokens, Token{Kind: CloseTag, Tag: el.Tag})
	return tokens
}

// walkChildren runs each child concurrently and concatenates results in
// order (spec.md §4.3 ordering contract).
func (d *delegate) walkChildren(ctx context.Context, children []tree.Node) []Token {
	results := make([][]Token, len(children))
	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child tree.Node) {
			defer wg.Done()
			results[i] = d.walk(ctx, child)
		}(i, child)
	}
	wg.Wait()

	var out []Token
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func (d *delegate) walkSignal(ctx context.Context, s *signal.Signal) []Token {
	switch s.Kind {
	case signal.KindSuspense:
		telemetry.RenderExecutableTokensTotal.WithLabelValues("suspense").Inc()
		return d.walkSuspense(ctx, s)
	case signal.KindNode:
		telemetry.RenderExecutableTokensTotal.WithLabelValues("node").Inc()
		return d.walkNode(ctx, s)
	default:
		telemetry.RenderExecutableTokensTotal.WithLabelValues("computed").Inc()
		return d.walkPrimitive(s)
	}
}

func (d *delegate) walkPrimitive(s *signal.Signal) []Token {
	v, _ := d.reg.GetValue(s.Id)
	return []Token{
		{Kind: BindMarkerOpen, Id: s.Id},
		{Kind: TextToken, Text: formatValue(v)},
		{Kind: BindMarkerClose, Id: s.Id},
		{Kind: SignalDefinition, Signal: s},
	}
}

func (d *delegate) walkNode(ctx context.Context, s *signal.Signal) []Token {
	el, err := d.ex.ExecuteNode(ctx, d.reg, s.Id)
	if err != nil {
		return []Token{{Kind: TextToken, Text: ""}}
	}

	out := []Token{{Kind: BindMarkerOpen, Id: s.Id}}
	out = append(out, d.walk(ctx, el)...)
	out = append(out, Token{Kind: BindMarkerClose, Id: s.Id}, Token{Kind: SignalDefinition, Signal: s})
	return out
}

// walkSuspense implements spec.md §4.8's SSR half: render the fallback (and
// cache the children's would-be HTML in `_childrenHtml`) if any descendant
// of Children is currently PENDING; otherwise render the children directly.
func (d *delegate) walkSuspense(ctx context.Context, s *signal.Signal) []Token {
	childTokens := d.walk(ctx, s.Children)

	if d.childrenArePending(s.Children) {
		s.SetChildrenHTML(Serialize(childTokens))
		fallbackTokens := d.walk(ctx, s.Fallback)
		out := []Token{{Kind: BindMarkerOpen, Id: s.Id}}
		out = append(out, fallbackTokens...)
		out = append(out, Token{Kind: BindMarkerClose, Id: s.Id}, Token{Kind: SignalDefinition, Signal: s})
		return out
	}

	out := []Token{{Kind: BindMarkerOpen, Id: s.Id}}
	out = append(out, childTokens...)
	out = append(out, Token{Kind: BindMarkerClose, Id: s.Id}, Token{Kind: SignalDefinition, Signal: s})
	return out
}

func (d *delegate) childrenArePending(node tree.Node) bool {
	switch v := node.(type) {
	case nil:
		return false
	case *tree.Element:
		for _, attr := range v.Attrs {
			if s, ok := attr.(*signal.Signal); ok && d.isPending(s) {
				return true
			}
		}
		for _, child := range v.Children {
			if d.childrenArePending(child) {
				return true
			}
		}
		return false
	case []tree.Node:
		for _, child := range v {
			if d.childrenArePending(child) {
				return true
			}
		}
		return false
	case *signal.Signal:
		return d.isPending(v)
	default:
		return false
	}
}

func (d *delegate) isPending(s *signal.Signal) bool {
	v, ok := d.reg.GetValue(s.Id)
	return ok && signal.IsPending(v)
}

// isEventProp reports whether k is an event-handler prop (spec.md §4.3,
// §6: "on*"), e.g. "onClick" — these emit only the data-w-on* id attribute,
// never a literal-value attribute under the original name.
func isEventProp(k string) bool {
	return len(k) > 2 && (k[0] == 'o' || k[0] == 'O') && (k[1] == 'n' || k[1] == 'N')
}

func currentAttrValue(reg *registry.Registry, s *signal.Signal) any {
	v, _ := reg.GetValue(s.Id)
	if signal.IsPending(v) {
		return ""
	}
	return v
}

func formatValue(v any) string {
	if v == nil || signal.IsPending(v) {
		return ""
	}
	return fmt.Sprint(v)
}
