package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamweaver/weaver/internal/engine"
)

func TestOwnerDisposeRunsCleanupsDepthFirst(t *testing.T) {
	parent := engine.NewOwner()
	child := parent.NewChild()

	var order []string
	parent.OnCleanup(func() { order = append(order, "parent") })
	child.OnCleanup(func() { order = append(order, "child") })

	parent.Dispose()

	assert.Equal(t, []string{"child", "parent"}, order)
}

func TestOwnerRunRecoversIntoCatcher(t *testing.T) {
	o := engine.NewOwner()

	var caught any
	o.OnError(func(r any) { caught = r })

	assert.NotPanics(t, func() {
		o.Run(func() { panic("boom") })
	})
	assert.Equal(t, "boom", caught)
}

func TestOwnerRunRepanicsWithoutCatcher(t *testing.T) {
	o := engine.NewOwner()
	assert.Panics(t, func() {
		o.Run(func() { panic("boom") })
	})
}
