// Package htmldom implements spec.md §4.5's Sink contract as a pure-Go
// virtual DOM over golang.org/x/net/html, so the reactor + suspense + sink
// pipeline can be driven and tested end to end without a browser.
package htmldom

import (
	"strings"

	"golang.org/x/net/html"
)

// DOM is a parsed document plus its discovered bind points.
type DOM struct {
	doc   *html.Node
	index map[*html.Node]int

	contentBindPoints map[string][]*contentRange
	attrBindPoints    map[string][]*attrBinding
	elementsByID      map[string]*html.Node // plain HTML "id" attribute, for event-target lookup
}

type contentRange struct {
	parent *html.Node
	open   *html.Node // the <!--^ID--> comment node
	close  *html.Node // the <!--/ID--> comment node
}

type attrBinding struct {
	el   *html.Node
	attr string // the prop name, e.g. "class" for data-w-class="<ID>" class="<literal>"
}

// Parse builds a DOM from a rendered HTML document or fragment and
// performs the initial bind-point discovery pass (spec.md §4.5, "On
// startup, traverse the document once").
func Parse(document string) (*DOM, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, err
	}
	d := &DOM{doc: doc}
	d.rescan()
	return d, nil
}

type pendingOpen struct {
	id     string
	node   *html.Node
	parent *html.Node
}

// rescan performs the full bind-point discovery pass (spec.md §4.5,
// "rescan the entire document for new bind markers afterward").
func (d *DOM) rescan() {
	d.index = make(map[*html.Node]int)
	d.contentBindPoints = make(map[string][]*contentRange)
	d.attrBindPoints = make(map[string][]*attrBinding)
	d.elementsByID = make(map[string]*html.Node)

	counter := 0
	var openStack []pendingOpen

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		d.index[n] = counter
		counter++

		switch n.Type {
		case html.CommentNode:
			data := strings.TrimSpace(n.Data)
			switch {
			case strings.HasPrefix(data, "^"):
				openStack = append(openStack, pendingOpen{id: data[1:], node: n, parent: n.Parent})
			case strings.HasPrefix(data, "/"):
				id := data[1:]
				for i := len(openStack) - 1; i >= 0; i-- {
					if openStack[i].id != id {
						continue
					}
					open := openStack[i]
					openStack = append(openStack[:i], openStack[i+1:]...)
					d.contentBindPoints[id] = append(d.contentBindPoints[id], &contentRange{
						parent: open.parent, open: open.node, close: n,
					})
					break
				}
			}
		case html.ElementNode:
			for _, attr := range n.Attr {
				if attr.Key == "id" {
					d.elementsByID[attr.Val] = n
					continue
				}
				if !strings.HasPrefix(attr.Key, "data-w-") {
					continue
				}
				prop := strings.TrimPrefix(attr.Key, "data-w-")
				d.attrBindPoints[attr.Val] = append(d.attrBindPoints[attr.Val], &attrBinding{el: n, attr: prop})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.doc)
}

// Sync implements spec.md §4.5's sync(id, html): replaces a content
// bind-point's range contents with the parsed fragment, and (since a
// signal id may simultaneously be attribute-bound) mirrors the same string
// into any attribute bind-points for id.
func (d *DOM) Sync(id string, fragment string) {
	ranges := d.contentBindPoints[id]
	for _, r := range ranges {
		d.replaceRange(r, fragment)
	}
	for _, b := range d.attrBindPoints[id] {
		setAttr(b.el, b.attr, fragment)
	}
	if len(ranges) > 0 {
		d.rescan()
	}
}

// SyncAttribute implements spec.md §4.5's syncAttribute(id, attr, value),
// scoped to bindings declared for that specific prop name. The value is
// written under the prop's original (non-"data-w-") attribute name, since
// data-w-<prop> holds the hydratable id, not the live value (spec.md §6).
func (d *DOM) SyncAttribute(id, attr, value string) {
	for _, b := range d.attrBindPoints[id] {
		if b.attr == strings.ToLower(attr) {
			setAttr(b.el, b.attr, value)
		}
	}
}

// ResolveHandler implements reactor.HandlerResolver (spec.md §4.4, "Event
// delegation"): starting at the element whose plain HTML id attribute is
// targetId, walk up through ancestors until one carries a
// data-w-on<eventName> attribute.
func (d *DOM) ResolveHandler(eventName, targetId string) (string, bool) {
	n, ok := d.elementsByID[targetId]
	if !ok {
		return "", false
	}

	key := "data-w-on" + strings.ToLower(eventName)
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		for _, a := range cur.Attr {
			if a.Key == key {
				return a.Val, true
			}
		}
	}
	return "", false
}

func (d *DOM) replaceRange(r *contentRange, fragment string) {
	for n := r.open.NextSibling; n != nil && n != r.close; {
		next := n.NextSibling
		r.parent.RemoveChild(n)
		n = next
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), r.parent)
	if err != nil {
		return
	}
	for _, n := range nodes {
		r.parent.InsertBefore(n, r.close)
	}
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// HasBindPoint reports whether id has any content or attribute bind point.
func (d *DOM) HasBindPoint(id string) bool {
	return len(d.contentBindPoints[id]) > 0 || len(d.attrBindPoints[id]) > 0
}

// HasContent reports whether id has a content bind point specifically.
func (d *DOM) HasContent(id string) bool {
	return len(d.contentBindPoints[id]) > 0
}

// IsDescendant reports whether childId's bind point lies within ancestorId's
// content range, using document-order indices recorded during rescan: a
// node strictly between the ancestor's open and close comment indices is
// contained in that range regardless of nesting depth, since bind markers
// are always properly nested around the content they bracket.
func (d *DOM) IsDescendant(childId, ancestorId string) bool {
	ranges := d.contentBindPoints[ancestorId]
	if len(ranges) == 0 {
		return false
	}
	node, ok := d.representativeNode(childId)
	if !ok {
		return false
	}
	ci := d.index[node]
	for _, r := range ranges {
		if ci > d.index[r.open] && ci < d.index[r.close] {
			return true
		}
	}
	return false
}

func (d *DOM) representativeNode(id string) (*html.Node, bool) {
	if ranges, ok := d.contentBindPoints[id]; ok && len(ranges) > 0 {
		return ranges[0].open, true
	}
	if bindings, ok := d.attrBindPoints[id]; ok && len(bindings) > 0 {
		return bindings[0].el, true
	}
	return nil, false
}

// Render serializes the current document back to HTML, for tests and for
// inspecting patch results.
func (d *DOM) Render() (string, error) {
	var b strings.Builder
	if err := html.Render(&b, d.doc); err != nil {
		return "", err
	}
	return b.String(), nil
}
