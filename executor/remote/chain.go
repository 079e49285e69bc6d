// Package remote implements Stream Weaver's remote executor (spec.md
// §4.2.1): chain serialization with pruning, an HTTP client that POSTs the
// chain to a configurable endpoint, and a server-side handler that rebuilds
// a registry from the chain and executes the target.
package remote

import (
	"encoding/json"
	"fmt"

	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

// ChainEntry is one signal in a serialized chain: its definition, plus an
// optional pre-computed value for `state` signals and pruned `computed`
// leaves.
type ChainEntry struct {
	Signal   *signal.Signal `json:"signal"`
	Value    any            `json:"value,omitempty"`
	HasValue bool           `json:"hasValue"`
}

// Chain is the wire payload POSTed to the remote-execution endpoint: the
// target signal id plus every signal needed to re-execute it.
type Chain struct {
	Target  string       `json:"target"`
	Signals []ChainEntry `json:"signals"`
}

// BuildChain walks the dependency graph from targetId and serializes it,
// per spec.md §4.2.1's pruning rule: a visited non-target `computed` signal
// whose current value is JSON-serializable is included with that value but
// its own dependencies are not walked further (it becomes a pruning
// frontier). The target itself is never pruned.
func BuildChain(reg *registry.Registry, targetId string) (*Chain, error) {
	visited := make(map[string]bool)
	var entries []ChainEntry

	var walk func(id string, isTarget bool) error
	walk = func(id string, isTarget bool) error {
		if visited[id] {
			return nil
		}
		visited[id] = true

		s, ok := reg.GetSignal(id)
		if !ok {
			return fmt.Errorf("remote: unknown signal in chain: %s", id)
		}

		entry := ChainEntry{Signal: s}
		if s.Kind == signal.KindState {
			if v, ok := reg.GetValue(id); ok {
				entry.Value, entry.HasValue = v, true
			}
		}

		pruned := false
		if !isTarget && s.Kind == signal.KindComputed {
			if v, ok := reg.GetValue(id); ok && isJSONEncodable(v) {
				entry.Value, entry.HasValue = v, true
				pruned = true
			}
		}

		entries = append(entries, entry)
		if pruned {
			return nil
		}

		for _, depId := range s.Dependencies() {
			if err := walk(depId, false); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(targetId, true); err != nil {
		return nil, err
	}
	return &Chain{Target: targetId, Signals: entries}, nil
}

// RebuildRegistry reconstructs a fresh registry from a received chain: the
// server side of spec.md §4.2.1 ("the server rebuilds a fresh registry from
// the chain").
func RebuildRegistry(chain *Chain) *registry.Registry {
	reg := registry.New()
	for _, entry := range chain.Signals {
		reg.RegisterSignal(entry.Signal)
		if entry.HasValue {
			reg.SetValue(entry.Signal.Id, entry.Value)
		}
	}
	return reg
}

func isJSONEncodable(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}
