package logging

import (
	"fmt"
	"sync"
	"time"
)

// Invocation is a single logic execution's log entry (spec.md §7: logic
// exceptions, remote-executor errors and worker-pool failures are all
// "logged"). Adapted from oriys-nova's RequestLog, trimmed of FaaS-specific
// fields (cold start, runtime, retries) that have no Stream Weaver analogue.
type Invocation struct {
	Timestamp time.Time
	SignalId  string
	Src       string
	Context   string // "server", "client", "worker", "" (isomorphic)
	DurationMs int64
	Deferred  bool
	Success   bool
	Error     string
}

// InvocationLog is a small console sink for Invocation entries, mirroring
// oriys-nova's request Logger (console-only here; no JSON file sink, since
// the operational slog.Logger already covers structured output).
type InvocationLog struct {
	mu      sync.Mutex
	enabled bool
}

var defaultInvocationLog = &InvocationLog{enabled: true}

// DefaultInvocations returns the process-wide invocation log.
func DefaultInvocations() *InvocationLog { return defaultInvocationLog }

// SetEnabled toggles whether invocations are logged at all.
func (l *InvocationLog) SetEnabled(enabled bool) {
	l.mu.Lock()
	l.enabled = enabled
	l.mu.Unlock()
}

// Log records one invocation.
func (l *InvocationLog) Log(entry Invocation) {
	l.mu.Lock()
	enabled := l.enabled
	l.mu.Unlock()
	if !enabled {
		return
	}

	entry.Timestamp = time.Now()
	status := "ok"
	if !entry.Success {
		status = "err"
	}
	deferred := ""
	if entry.Deferred {
		deferred = " deferred"
	}

	args := []any{"signal", entry.SignalId, "src", entry.Src, "duration_ms", entry.DurationMs}
	if entry.Context != "" {
		args = append(args, "context", entry.Context)
	}
	if entry.Error != "" {
		args = append(args, "error", entry.Error)
	}

	Op().Info(fmt.Sprintf("logic %s%s", status, deferred), args...)
}
