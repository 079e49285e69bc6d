package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamweaver/weaver/internal/engine"
)

func TestHeapDrainsInHeightOrder(t *testing.T) {
	root := engine.NewNode()
	mid := engine.NewNode()
	leaf := engine.NewNode()

	engine.Link(mid, root)
	engine.Link(leaf, mid)

	h := engine.NewHeap()
	// insert out of order on purpose
	h.Insert(leaf)
	h.Insert(root)
	h.Insert(mid)

	var order []*engine.Node
	h.Drain(func(n *engine.Node) {
		order = append(order, n)
	})

	assert.Equal(t, []*engine.Node{root, mid, leaf}, order)
	assert.Equal(t, 0, h.Len())
}

func TestHeapInsertDedupes(t *testing.T) {
	n := engine.NewNode()
	h := engine.NewHeap()

	h.Insert(n)
	h.Insert(n)

	count := 0
	h.Drain(func(*engine.Node) { count++ })
	assert.Equal(t, 1, count)
}

func TestHeapRemove(t *testing.T) {
	a := engine.NewNode()
	b := engine.NewNode()
	h := engine.NewHeap()

	h.Insert(a)
	h.Insert(b)
	h.Remove(a)

	var seen []*engine.Node
	h.Drain(func(n *engine.Node) { seen = append(seen, n) })
	assert.Equal(t, []*engine.Node{b}, seen)
}
