package signal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweaver/weaver/signal"
)

func TestFactoryIdempotence(t *testing.T) {
	t.Run("computed id is a pure function of logic and deps", func(t *testing.T) {
		f := signal.NewFactory(signal.RoleServer)
		logic := f.NewLogic("double.js", signal.LogicOptions{})
		c1, err := f.NewState(0)
		require.NoError(t, err)

		a, err := signal.NewComputed(logic, []*signal.Signal{c1}, nil)
		require.NoError(t, err)
		b, err := signal.NewComputed(logic, []*signal.Signal{c1}, nil)
		require.NoError(t, err)

		assert.Equal(t, a.Id, b.Id, "same logic+deps must derive the same id")
	})

	t.Run("different deps derive different ids", func(t *testing.T) {
		f := signal.NewFactory(signal.RoleServer)
		logic := f.NewLogic("double.js", signal.LogicOptions{})
		x, _ := f.NewState(1)
		y, _ := f.NewState(2)

		cx, err := signal.NewComputed(logic, []*signal.Signal{x}, nil)
		require.NoError(t, err)
		cy, err := signal.NewComputed(logic, []*signal.Signal{y}, nil)
		require.NoError(t, err)

		assert.NotEqual(t, cx.Id, cy.Id)
	})

	t.Run("node shares id for identical logic+props", func(t *testing.T) {
		f := signal.NewFactory(signal.RoleServer)
		logic := f.NewLogic("button.jsx", signal.LogicOptions{})
		component := f.NewComponent(logic)

		n1, err := signal.NewNode(component, nil, map[string]any{"label": "ok"})
		require.NoError(t, err)
		n2, err := signal.NewNode(component, nil, map[string]any{"label": "ok"})
		require.NoError(t, err)

		assert.Equal(t, n1.Id, n2.Id)
	})

	t.Run("node id differs when a signal-valued prop differs", func(t *testing.T) {
		f := signal.NewFactory(signal.RoleServer)
		logic := f.NewLogic("button.jsx", signal.LogicOptions{})
		component := f.NewComponent(logic)
		a, _ := f.NewState(1)
		b, _ := f.NewState(2)

		n1, err := signal.NewNode(component, nil, map[string]any{"count": a})
		require.NoError(t, err)
		n2, err := signal.NewNode(component, nil, map[string]any{"count": b})
		require.NoError(t, err)

		assert.NotEqual(t, n1.Id, n2.Id)
	})
}

func TestSourceIdsRolePrefixed(t *testing.T) {
	server := signal.NewFactory(signal.RoleServer)
	client := signal.NewFactory(signal.RoleClient)

	s1, err := server.NewState(0)
	require.NoError(t, err)
	c1, err := client.NewState(0)
	require.NoError(t, err)

	assert.Equal(t, "s1", s1.Id)
	assert.Equal(t, "c1", c1.Id)
	assert.NotEqual(t, s1.Id, c1.Id)
}

func TestJSONEncodabilityEnforced(t *testing.T) {
	f := signal.NewFactory(signal.RoleServer)
	_, err := f.NewState(func() {})
	assert.Error(t, err, "funcs are not JSON-encodable and must be rejected at the factory")
}

func TestPendingSentinel(t *testing.T) {
	assert.True(t, signal.IsPending(signal.Pending))
	assert.False(t, signal.IsPending(0))
	assert.False(t, signal.IsPending(nil))
}
