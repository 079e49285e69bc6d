//go:build js && wasm

// Package jsdom implements spec.md §4.5's Sink contract against a real
// browser document via syscall/js, generalizing
// AnatoleLucet-sig/examples/browser-counter/main.go's single hard-coded
// bind point (`document.getElementById("count")`) into arbitrary bind-point
// discovery and patching over comment-pair content ranges and
// data-w-<prop>="<ID>" attribute bindings, plus the real capture-phase
// click-delegation AnatoleLucet-sig's effect-based counter never needed.
package jsdom

import (
	"context"
	"strings"
	"syscall/js"

	"github.com/streamweaver/weaver/reactor"
)

const (
	elementNodeType = 1
	commentNodeType = 8
)

// DOM patches a live browser document.
type DOM struct {
	doc js.Value

	contentBindPoints map[string][]contentRange
	attrBindPoints    map[string][]attrBinding
}

type contentRange struct {
	parent js.Value
	open   js.Value
	close  js.Value
}

type attrBinding struct {
	el   js.Value
	attr string
}

// New wraps the current document and performs the initial bind-point
// discovery pass.
func New() *DOM {
	d := &DOM{doc: js.Global().Get("document")}
	d.Rescan()
	return d
}

type pendingOpen struct {
	id     string
	node   js.Value
	parent js.Value
}

// Rescan performs the full bind-point discovery pass (spec.md §4.5,
// "rescan the entire document for new bind markers afterward").
func (d *DOM) Rescan() {
	d.contentBindPoints = make(map[string][]contentRange)
	d.attrBindPoints = make(map[string][]attrBinding)

	var openStack []pendingOpen

	var walk func(n, parent js.Value)
	walk = func(n, parent js.Value) {
		switch n.Get("nodeType").Int() {
		case commentNodeType:
			data := strings.TrimSpace(n.Get("data").String())
			switch {
			case strings.HasPrefix(data, "^"):
				openStack = append(openStack, pendingOpen{id: data[1:], node: n, parent: parent})
			case strings.HasPrefix(data, "/"):
				id := data[1:]
				for i := len(openStack) - 1; i >= 0; i-- {
					if openStack[i].id != id {
						continue
					}
					open := openStack[i]
					openStack = append(openStack[:i], openStack[i+1:]...)
					d.contentBindPoints[id] = append(d.contentBindPoints[id], contentRange{
						parent: open.parent, open: open.node, close: n,
					})
					break
				}
			}
		case elementNodeType:
			attrs := n.Get("attributes")
			length := attrs.Get("length").Int()
			for i := 0; i < length; i++ {
				a := attrs.Index(i)
				key := a.Get("name").String()
				if !strings.HasPrefix(key, "data-w-") {
					continue
				}
				prop := strings.TrimPrefix(key, "data-w-")
				id := a.Get("value").String()
				d.attrBindPoints[id] = append(d.attrBindPoints[id], attrBinding{el: n, attr: prop})
			}
		}

		for child := n.Get("firstChild"); truthy(child); {
			next := child.Get("nextSibling")
			walk(child, n)
			child = next
		}
	}

	walk(d.doc, js.Null())
}

func truthy(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}

// Sync implements spec.md §4.5's sync(id, html). The literal value lands
// under the prop's original (non-"data-w-") attribute name, since
// data-w-<prop> holds the hydratable id, not the live value (spec.md §6).
func (d *DOM) Sync(id string, fragment string) {
	ranges := d.contentBindPoints[id]
	for _, r := range ranges {
		d.replaceRange(r, fragment)
	}
	for _, b := range d.attrBindPoints[id] {
		b.el.Call("setAttribute", b.attr, fragment)
	}
	if len(ranges) > 0 {
		d.Rescan()
	}
}

// SyncAttribute implements spec.md §4.5's syncAttribute(id, attr, value).
func (d *DOM) SyncAttribute(id, attr, value string) {
	for _, b := range d.attrBindPoints[id] {
		if b.attr == strings.ToLower(attr) {
			b.el.Call("setAttribute", b.attr, value)
		}
	}
}

// ResolveHandler implements reactor.HandlerResolver (spec.md §4.4, "Event
// delegation"): starting at the element with id targetId, walk up through
// ancestors until one carries a data-w-on<eventName> attribute.
func (d *DOM) ResolveHandler(eventName, targetId string) (string, bool) {
	n := d.doc.Call("getElementById", targetId)
	if !truthy(n) {
		return "", false
	}

	key := "data-w-on" + strings.ToLower(eventName)
	for cur := n; truthy(cur); cur = cur.Get("parentElement") {
		if cur.Call("hasAttribute", key).Bool() {
			return cur.Call("getAttribute", key).String(), true
		}
	}
	return "", false
}

// Listen installs a single capture-phase listener for eventName on the
// document (spec.md §4.4: "a single capture-phase listener per event name
// is installed on the document root") and forwards each fired event into
// ed, keyed by the event's target element id.
func (d *DOM) Listen(ctx context.Context, eventName string, ed *reactor.EventDelegate) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		event := args[0]
		target := event.Get("target")
		id := target.Get("id").String()
		if id == "" {
			return nil
		}
		ed.Dispatch(ctx, eventName, id, event)
		return nil
	})
	d.doc.Call("addEventListener", eventName, cb, true)
}

func (d *DOM) replaceRange(r contentRange, fragment string) {
	for {
		sib := r.open.Get("nextSibling")
		if !truthy(sib) || sib.Equal(r.close) {
			break
		}
		r.parent.Call("removeChild", sib)
	}

	template := d.doc.Call("createElement", "template")
	template.Set("innerHTML", fragment)
	frag := template.Get("content")
	r.parent.Call("insertBefore", frag, r.close)
}

// HasBindPoint reports whether id has any content or attribute bind point.
func (d *DOM) HasBindPoint(id string) bool {
	return len(d.contentBindPoints[id]) > 0 || len(d.attrBindPoints[id]) > 0
}

// HasContent reports whether id has a content bind point specifically.
func (d *DOM) HasContent(id string) bool {
	return len(d.contentBindPoints[id]) > 0
}

// IsDescendant reports whether childId's bind point lies within
// ancestorId's content range by walking up the real DOM from childId's
// node looking for ancestorId's parent, then checking sibling position
// relative to the open/close comment pair.
func (d *DOM) IsDescendant(childId, ancestorId string) bool {
	ranges := d.contentBindPoints[ancestorId]
	if len(ranges) == 0 {
		return false
	}
	node, ok := d.representativeNode(childId)
	if !ok {
		return false
	}
	for _, r := range ranges {
		if domContains(r, node) {
			return true
		}
	}
	return false
}

func domContains(r contentRange, node js.Value) bool {
	cur := node
	for {
		parent := cur.Get("parentNode")
		if !truthy(parent) {
			return false
		}
		if parent.Equal(r.parent) {
			for sib := r.open.Get("nextSibling"); truthy(sib); sib = sib.Get("nextSibling") {
				if sib.Equal(r.close) {
					return false
				}
				if sib.Equal(cur) {
					return true
				}
			}
			return false
		}
		cur = parent
	}
}

func (d *DOM) representativeNode(id string) (js.Value, bool) {
	if ranges, ok := d.contentBindPoints[id]; ok && len(ranges) > 0 {
		return ranges[0].open, true
	}
	if bindings, ok := d.attrBindPoints[id]; ok && len(bindings) > 0 {
		return bindings[0].el, true
	}
	return js.Value{}, false
}
