package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/internal/logging"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/signal"
)

// Handler is the server side of the remote executor: an http.Handler that
// decodes a Chain, rebuilds a registry, executes the target, and responds
// with its value (spec.md §4.2.1). Mount it at DefaultEndpoint, or wherever
// the client was configured to POST to.
type Handler struct {
	Executor *executor.Executor
}

// NewHandler wraps ex, which must use a server-role ModuleLoader.
func NewHandler(ex *executor.Executor) *Handler {
	return &Handler{Executor: ex}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var chain Chain
	if err := json.NewDecoder(r.Body).Decode(&chain); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("remote: decoding chain: %w", err))
		return
	}

	reg := RebuildRegistry(&chain)
	value, err := h.execute(r.Context(), reg, chain.Target)
	if err != nil {
		logging.Op().Error("remote execute failed", "target", chain.Target, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if _, err := json.Marshal(value); err != nil {
		err = fmt.Errorf("%w: %v", executor.ErrNotJSONEncodable, err)
		logging.Op().Error("remote execute failed", "target", chain.Target, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, execResponse{Value: value})
}

func (h *Handler) execute(ctx context.Context, reg *registry.Registry, targetId string) (any, error) {
	s, ok := reg.GetSignal(targetId)
	if !ok {
		return nil, fmt.Errorf("remote: unknown target signal: %s", targetId)
	}

	switch s.Kind {
	case signal.KindComputed:
		result, err := h.Executor.ExecuteComputed(ctx, reg, targetId)
		return result.Value, err
	case signal.KindAction:
		result, err := h.Executor.ExecuteAction(ctx, reg, targetId)
		return result.Value, err
	default:
		return nil, fmt.Errorf("remote: unsupported target kind %q", s.Kind)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(execResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, v execResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
