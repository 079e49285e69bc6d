package engine

import "iter"

// PriorityHeap buckets nodes by height and drains them lowest-height-first,
// which is exactly topological order over a DAG: a node's dependencies
// always have a strictly lower height, so they drain first. This is the
// mechanism behind the spec's ordering invariant that signal-update tokens
// are emitted "in topological order over the dependency graph" (spec.md
// §5, point 2).
type PriorityHeap struct {
	min int
	max int

	buckets []*heapNode // [height]head

	lookup map[*Node]*heapNode // for O(1) removal
}

type heapNode struct {
	node *Node

	next *heapNode
	prev *heapNode
}

// NewHeap creates an empty heap with room for a modest initial height range;
// it grows on demand in Insert.
func NewHeap() *PriorityHeap {
	return &PriorityHeap{
		buckets: make([]*heapNode, 64),
		lookup:  make(map[*Node]*heapNode),
	}
}

func (h *PriorityHeap) growTo(height int) {
	if height < len(h.buckets) {
		return
	}
	grown := make([]*heapNode, height*2+1)
	copy(grown, h.buckets)
	h.buckets = grown
}

// Insert adds node to the heap at its current height. Re-inserting a node
// already queued is a no-op (FlagInHeap dedupes).
func (h *PriorityHeap) Insert(node *Node) {
	if node.HasFlag(FlagInHeap) {
		return
	}
	node.AddFlag(FlagInHeap)

	h.growTo(node.Height())

	entry := &heapNode{node: node}
	h.lookup[node] = entry

	height := node.Height()

	if h.buckets[height] == nil {
		h.buckets[height] = entry
		entry.prev = entry
		entry.next = nil
	} else {
		head := h.buckets[height]
		tail := head.prev

		tail.next = entry
		entry.prev = tail
		entry.next = nil
		head.prev = entry
	}

	if height > h.max {
		h.max = height
	}
}

// InsertAll inserts every node in the given sequence.
func (h *PriorityHeap) InsertAll(nodes iter.Seq[*Node]) {
	for node := range nodes {
		h.Insert(node)
	}
}

// Remove takes node out of the heap, wherever it currently sits.
func (h *PriorityHeap) Remove(node *Node) {
	if !node.HasFlag(FlagInHeap) {
		return
	}
	node.RemoveFlag(FlagInHeap)

	entry, ok := h.lookup[node]
	if !ok {
		return
	}
	delete(h.lookup, node)

	height := entry.node.Height()

	if entry.prev == entry {
		h.buckets[height] = nil
		entry.prev = entry
		entry.next = nil
		return
	}

	head := h.buckets[height]
	if entry == head {
		h.buckets[height] = entry.next
	} else {
		entry.prev.next = entry.next
	}

	next := entry.next
	if next == nil {
		next = head
	}
	next.prev = entry.prev

	entry.prev = entry
	entry.next = nil
}

// Drain processes each queued node in topological (height-ascending) order,
// leaving the heap empty. process may insert further nodes (e.g. a
// recomputed node's subscribers); those are picked up within the same
// drain since min only ever advances.
func (h *PriorityHeap) Drain(process func(*Node)) {
	for h.min = 0; h.min <= h.max; h.min++ {
		entry := h.buckets[h.min]

		for entry != nil {
			h.Remove(entry.node)
			process(entry.node)
			entry = h.buckets[h.min]
		}
	}

	h.min = 0
	h.max = 0
}

// Len reports how many nodes are currently queued.
func (h *PriorityHeap) Len() int {
	return len(h.lookup)
}
