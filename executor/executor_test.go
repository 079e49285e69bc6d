package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

func double(ctx context.Context, args []any) (any, error) {
	return args[0].(int) * 2, nil
}

func TestExecuteComputedInline(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	n, err := f.NewState(21)
	require.NoError(t, err)
	logic := f.NewLogic("double.js", signal.LogicOptions{})
	c, err := signal.NewComputed(logic, []*signal.Signal{n}, nil)
	require.NoError(t, err)

	reg.RegisterSignal(n)
	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)
	reg.SetValue(n.Id, 21)

	loader := executor.NewMapLoader()
	loader.Register("double.js", double)
	ex := executor.New(signal.RoleServer, loader)

	result, err := ex.ExecuteComputed(context.Background(), reg, c.Id)
	require.NoError(t, err)
	assert.Equal(t, 42, result.Value)

	v, ok := reg.GetValue(c.Id)
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTimeoutZeroDefersImmediately(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(ctx context.Context, args []any) (any, error) {
		close(started)
		<-release
		return "done", nil
	}

	zero := 0 * time.Millisecond
	logic := f.NewLogic("slow.js", signal.LogicOptions{Timeout: &zero})
	c, err := signal.NewComputed(logic, nil, "init")
	require.NoError(t, err)

	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)

	loader := executor.NewMapLoader()
	loader.Register("slow.js", slow)
	ex := executor.New(signal.RoleServer, loader)

	result, err := ex.ExecuteComputed(context.Background(), reg, c.Id)
	require.NoError(t, err)
	assert.Equal(t, "init", result.Value, "timeout:0 returns initFallback immediately")
	require.NotNil(t, result.Deferred)

	<-started
	close(release)

	deferred := <-result.Deferred
	assert.NoError(t, deferred.Err)
	assert.Equal(t, "done", deferred.Value)
}

func TestTimeoutRaceTimerWinsYieldsPending(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	release := make(chan struct{})
	slow := func(ctx context.Context, args []any) (any, error) {
		<-release
		return "late", nil
	}

	timeout := 5 * time.Millisecond
	logic := f.NewLogic("slow.js", signal.LogicOptions{Timeout: &timeout})
	c, err := signal.NewComputed(logic, nil, "init")
	require.NoError(t, err)

	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)

	loader := executor.NewMapLoader()
	loader.Register("slow.js", slow)
	ex := executor.New(signal.RoleServer, loader)

	result, err := ex.ExecuteComputed(context.Background(), reg, c.Id)
	require.NoError(t, err)
	assert.True(t, signal.IsPending(result.Value), "timer-wins must yield PENDING, not initFallback")
	require.NotNil(t, result.Deferred)

	close(release)
	deferred := <-result.Deferred
	assert.Equal(t, "late", deferred.Value)
}

func TestClientContextOnServerRoleReturnsFallbackWithoutLoading(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	logic := f.NewLogic("client-only.js", signal.LogicOptions{Context: signal.LogicContextClient})
	c, err := signal.NewComputed(logic, nil, "fallback")
	require.NoError(t, err)

	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)

	loader := executor.NewMapLoader() // deliberately no registration for "client-only.js"
	ex := executor.New(signal.RoleServer, loader)

	result, err := ex.ExecuteComputed(context.Background(), reg, c.Id)
	require.NoError(t, err, "must not attempt to load the module on the wrong role")
	assert.Equal(t, "fallback", result.Value)
}

type fakeDispatcher struct {
	calls int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, src string, args []any) (any, error) {
	f.calls++
	return args[0].(int) * args[0].(int), nil
}

func TestWorkerContextDispatchesToPool(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	n, err := f.NewState(6)
	require.NoError(t, err)
	logic := f.NewLogic("square.js", signal.LogicOptions{Context: signal.LogicContextWorker})
	c, err := signal.NewComputed(logic, []*signal.Signal{n}, nil)
	require.NoError(t, err)

	reg.RegisterSignal(n)
	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)
	reg.SetValue(n.Id, 6)

	dispatcher := &fakeDispatcher{}
	ex := executor.New(signal.RoleServer, executor.NewMapLoader())
	ex.Workers = dispatcher

	result, err := ex.ExecuteComputed(context.Background(), reg, c.Id)
	require.NoError(t, err)
	assert.Equal(t, 36, result.Value)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestWorkerContextWithoutDispatcherErrors(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	logic := f.NewLogic("square.js", signal.LogicOptions{Context: signal.LogicContextWorker})
	c, err := signal.NewComputed(logic, nil, nil)
	require.NoError(t, err)

	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)

	ex := executor.New(signal.RoleServer, executor.NewMapLoader())

	_, err = ex.ExecuteComputed(context.Background(), reg, c.Id)
	assert.ErrorIs(t, err, executor.ErrNoDispatcher)
}

func TestExecuteHandlerPrependsEvent(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	count, err := f.NewState(0)
	require.NoError(t, err)
	reg.RegisterSignal(count)
	reg.SetValue(count.Id, 0)

	mutator := signal.NewMutator(count)
	reg.RegisterSignal(mutator)

	inc := func(ctx context.Context, args []any) (any, error) {
		event := args[0].(string)
		cell := args[1].(executor.Cell)
		cur := cell.Get().(int)
		cell.Set(cur + 1)
		return event, nil
	}

	logic := f.NewLogic("inc.js", signal.LogicOptions{})
	handler := signal.NewHandler(logic, []*signal.Signal{mutator})

	reg.RegisterSignal(logic)
	reg.RegisterSignal(handler)

	loader := executor.NewMapLoader()
	loader.Register("inc.js", inc)
	ex := executor.New(signal.RoleServer, loader)

	result, err := ex.ExecuteHandler(context.Background(), reg, handler.Id, "click")
	require.NoError(t, err)
	assert.Equal(t, "click", result.Value)

	v, _ := reg.GetValue(count.Id)
	assert.Equal(t, 1, v)
}

func TestExecuteReducerFoldsOneItemPerCall(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	src := f.NewLogic("stream.js", signal.LogicOptions{})
	appendLogic := f.NewLogic("append.js", signal.LogicOptions{})
	reducer, err := signal.NewReducer(src, appendLogic, []any{})
	require.NoError(t, err)

	reg.RegisterSignal(src)
	reg.RegisterSignal(appendLogic)
	reg.RegisterSignal(reducer)

	loader := executor.NewMapLoader()
	loader.Register("append.js", func(ctx context.Context, args []any) (any, error) {
		acc := args[0].([]any)
		item := args[1]
		return append(acc, item), nil
	})
	ex := executor.New(signal.RoleServer, loader)

	_, err = ex.ExecuteReducer(context.Background(), reg, reducer.Id, 0)
	require.NoError(t, err)
	_, err = ex.ExecuteReducer(context.Background(), reg, reducer.Id, 1)
	require.NoError(t, err)

	v, _ := reg.GetValue(reducer.Id)
	assert.Equal(t, []any{0, 1}, v)
}

func TestExecuteComputedContainsPanicAsError(t *testing.T) {
	reg := registry.New()
	f := signal.NewFactory(signal.RoleServer)

	n, err := f.NewState(21)
	require.NoError(t, err)
	logic := f.NewLogic("boom.js", signal.LogicOptions{})
	c, err := signal.NewComputed(logic, []*signal.Signal{n}, nil)
	require.NoError(t, err)

	reg.RegisterSignal(n)
	reg.RegisterSignal(logic)
	reg.RegisterSignal(c)

	loader := executor.NewMapLoader()
	loader.Register("boom.js", func(ctx context.Context, args []any) (any, error) {
		panic("logic blew up")
	})
	ex := executor.New(signal.RoleServer, loader)

	_, err = ex.ExecuteComputed(context.Background(), reg, c.Id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logic blew up")

	_, ok := reg.GetValue(c.Id)
	assert.False(t, ok, "a panicking computed must not overwrite its value slot")
}
