package main

import (
	"context"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/tree"
)

// buildCounterApp wires up the demo page's signal graph: a counter whose
// increment runs through a handler/mutator pair and whose doubled value is
// a computed. It is the Stream Weaver generalization of
// AnatoleLucet-sig/examples/browser-counter/main.go's single hard-coded
// sig.NewSignal/sig.NewEffect pair, expressed as declared-dependency
// signals the renderer and reactor can drive instead of an effect closing
// over a DOM element directly. The button's onClick attr takes the handler
// signal itself; walkElement (renderer/delegate.go) converts that into the
// spec's data-w-onclick="<handler id>" wire format.
func buildCounterApp(reg *registry.Registry) tree.Node {
	f := signal.NewFactory(signal.RoleServer)

	count, err := f.NewState(0)
	if err != nil {
		panic(err) // 0 is always JSON-encodable
	}
	reg.RegisterSignal(count)

	incLogic := f.NewLogic("counter.increment", signal.LogicOptions{})
	reg.RegisterSignal(incLogic)

	mut := signal.NewMutator(count)
	reg.RegisterSignal(mut)

	inc := signal.NewHandler(incLogic, []*signal.Signal{mut})
	reg.RegisterSignal(inc)

	doubleLogic := f.NewLogic("counter.double", signal.LogicOptions{})
	reg.RegisterSignal(doubleLogic)

	doubled, err := signal.NewComputed(doubleLogic, []*signal.Signal{count}, nil)
	if err != nil {
		panic(err)
	}
	reg.RegisterSignal(doubled)

	return tree.El("div", map[string]any{"class": "counter"},
		tree.El("button", map[string]any{"onClick": inc}, tree.Text("+")),
		tree.El("span", map[string]any{"class": "count"}, count),
		tree.El("span", map[string]any{"class": "doubled"}, doubled),
	)
}

// registerCounterLogic binds the demo's logic src strings into loader,
// playing the role of the host's bundler/dynamic-import resolution
// (spec.md §4.2, §6 "ModuleLoader").
func registerCounterLogic(loader *executor.MapLoader) {
	loader.Register("counter.increment", func(_ context.Context, args []any) (any, error) {
		cell := args[1].(executor.Cell)
		cell.Set(cell.Get().(int) + 1)
		return nil, nil
	})
	loader.Register("counter.double", func(_ context.Context, args []any) (any, error) {
		return args[0].(int) * 2, nil
	})
}
