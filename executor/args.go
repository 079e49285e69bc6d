package executor

import (
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

// Cell is a write-capable handle onto a state signal's current value,
// passed as the argument for a mutator dependency of an action/handler
// (spec.md §4.2, "Argument marshalling").
type Cell interface {
	Get() any
	Set(v any)
}

type registryCell struct {
	reg *registry.Registry
	id  string
}

func (c *registryCell) Get() any {
	v, _ := c.reg.GetValue(c.id)
	return v
}

func (c *registryCell) Set(v any) { c.reg.SetValue(c.id, v) }

// resolveArgs marshals each declared dependency id into the argument the
// logic function actually receives: a raw value (computed/node props), a
// write-capable Cell (mutator deps), or the referenced signal's definition
// (reference deps) — unwrapped one level, never recursively.
func resolveArgs(reg *registry.Registry, depIds []string) []any {
	args := make([]any, len(depIds))
	for i, id := range depIds {
		args[i] = resolveArg(reg, id)
	}
	return args
}

func resolveArg(reg *registry.Registry, depId string) any {
	dep, ok := reg.GetSignal(depId)
	if !ok {
		v, _ := reg.GetValue(depId)
		return v
	}

	switch dep.Kind {
	case signal.KindMutator:
		return &registryCell{reg: reg, id: dep.Ref}
	case signal.KindReference:
		target, _ := reg.GetSignal(dep.Ref)
		return target
	default:
		v, _ := reg.GetValue(depId)
		return v
	}
}
