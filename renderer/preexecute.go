package renderer

import (
	"context"
	"sync"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

// preExecuteServerLogic runs every registered `computed` signal whose logic
// context is non-client and whose value is absent, in parallel, so their
// values are present by the time the tree is tokenized (spec.md §4.3).
func preExecuteServerLogic(ctx context.Context, reg *registry.Registry, ex *executor.Executor) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, s := range reg.GetAllSignals() {
		if s.Kind != signal.KindComputed {
			continue
		}
		if _, hasValue := reg.GetValue(s.Id); hasValue {
			continue
		}
		logic, ok := reg.GetSignal(s.Logic)
		if !ok || logic.Context == signal.LogicContextClient {
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := ex.ExecuteComputed(ctx, reg, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(s.Id)
	}

	wg.Wait()
	return firstErr
}
