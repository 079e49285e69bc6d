package workerpool_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/workerpool"
)

func TestResolveCapacityFloorIsFour(t *testing.T) {
	assert.GreaterOrEqual(t, workerpool.ResolveCapacity(0), workerpool.MinCapacity)
	assert.GreaterOrEqual(t, workerpool.ResolveCapacity(1), workerpool.MinCapacity)
}

func TestDispatchRunsRegisteredLogic(t *testing.T) {
	loader := executor.NewMapLoader()
	loader.Register("fib.js", func(ctx context.Context, args []any) (any, error) {
		n := args[0].(int)
		a, b := 0, 1
		for i := 0; i < n; i++ {
			a, b = b, a+b
		}
		return a, nil
	})

	pool := workerpool.New(2, loader)
	defer pool.Shutdown()

	v, err := pool.Dispatch(context.Background(), "fib.js", []any{10})
	require.NoError(t, err)
	assert.Equal(t, 55, v)
}

func TestDispatchConcurrentTasks(t *testing.T) {
	loader := executor.NewMapLoader()
	loader.Register("square.js", func(ctx context.Context, args []any) (any, error) {
		n := args[0].(int)
		return n * n, nil
	})

	pool := workerpool.New(4, loader)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := pool.Dispatch(context.Background(), "square.js", []any{i})
			require.NoError(t, err)
			results[i] = v.(int)
		}(i)
	}
	wg.Wait()

	for i, v := range results {
		assert.Equal(t, i*i, v)
	}
}

func TestDispatchUnknownModuleErrors(t *testing.T) {
	loader := executor.NewMapLoader()
	pool := workerpool.New(2, loader)
	defer pool.Shutdown()

	_, err := pool.Dispatch(context.Background(), "missing.js", nil)
	assert.ErrorIs(t, err, executor.ErrModuleNotFound)
}
