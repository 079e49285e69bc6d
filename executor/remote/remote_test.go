package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/executor/remote"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

func buildFetchUserChain(t *testing.T) (*registry.Registry, *signal.Signal, *signal.Signal) {
	t.Helper()
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	userId, err := f.NewState(1)
	require.NoError(t, err)
	logic := f.NewLogic("fetchUser.js", signal.LogicOptions{Context: signal.LogicContextServer})
	u, err := signal.NewComputed(logic, []*signal.Signal{userId}, nil)
	require.NoError(t, err)

	reg.RegisterSignal(userId)
	reg.RegisterSignal(logic)
	reg.RegisterSignal(u)
	reg.SetValue(userId.Id, 2)

	return reg, userId, u
}

func TestBuildChainIncludesTargetAndDeps(t *testing.T) {
	reg, userId, u := buildFetchUserChain(t)

	chain, err := remote.BuildChain(reg, u.Id)
	require.NoError(t, err)

	assert.Equal(t, u.Id, chain.Target)
	ids := make(map[string]bool)
	for _, e := range chain.Signals {
		ids[e.Signal.Id] = true
	}
	assert.True(t, ids[u.Id])
	assert.True(t, ids[userId.Id])
}

func TestBuildChainPrunesSerializableComputedLeaves(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	base, err := f.NewState(1)
	require.NoError(t, err)
	innerLogic := f.NewLogic("inner.js", signal.LogicOptions{})
	inner, err := signal.NewComputed(innerLogic, []*signal.Signal{base}, nil)
	require.NoError(t, err)
	outerLogic := f.NewLogic("outer.js", signal.LogicOptions{Context: signal.LogicContextServer})
	outer, err := signal.NewComputed(outerLogic, []*signal.Signal{inner}, nil)
	require.NoError(t, err)

	reg.RegisterSignal(base)
	reg.RegisterSignal(innerLogic)
	reg.RegisterSignal(inner)
	reg.RegisterSignal(outerLogic)
	reg.RegisterSignal(outer)
	reg.SetValue(inner.Id, 42) // already computed, JSON-serializable

	chain, err := remote.BuildChain(reg, outer.Id)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, e := range chain.Signals {
		ids[e.Signal.Id] = true
		if e.Signal.Id == inner.Id {
			assert.True(t, e.HasValue)
			assert.Equal(t, 42, e.Value)
		}
	}
	assert.True(t, ids[inner.Id])
	assert.False(t, ids[base.Id], "inner is a pruning frontier: its own deps must not be walked")
}

func TestRemoteRoundTripOverHTTP(t *testing.T) {
	reg, userId, u := buildFetchUserChain(t)

	serverLoader := executor.NewMapLoader()
	serverLoader.Register("fetchUser.js", func(ctx context.Context, args []any) (any, error) {
		id := int(args[0].(float64))
		return map[string]any{"id": id, "name": "user-2"}, nil
	})
	serverExecutor := executor.New(signal.RoleServer, serverLoader)
	handler := remote.NewHandler(serverExecutor)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	client := remote.NewClient(srv.URL)
	clientExecutor := executor.New(signal.RoleClient, executor.NewMapLoader())
	clientExecutor.Remote = client

	logic, _ := reg.GetSignal(u.Logic)
	result, err := clientExecutor.ExecuteLogic(context.Background(), reg, u.Id, logic, nil, nil)
	require.NoError(t, err)

	asMap, ok := result.Value.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, asMap["id"])
	assert.Equal(t, "user-2", asMap["name"])
	_ = userId
}
