package executor

import "errors"

// Sentinel errors for the policy table in spec.md §7. Callers match with
// errors.Is. ExecuteLogic logs every error it returns through
// internal/logging.Op(); ErrUnknownSignal and ErrWrongKind from signal
// lookups are returned without being logged. ErrNotJSONEncodable is
// produced and logged by the remote handler when a logic result cannot be
// encoded.
var (
	ErrModuleNotFound  = errors.New("executor: module not found")
	ErrNoLoader        = errors.New("executor: no module loader configured")
	ErrNoRemoteCaller  = errors.New("executor: server-context logic on client role requires a RemoteCaller")
	ErrNoDispatcher    = errors.New("executor: worker-context logic requires a Dispatcher")
	ErrUnknownSignal   = errors.New("executor: unknown signal id")
	ErrWrongKind       = errors.New("executor: signal is the wrong kind for this operation")
	ErrNotJSONEncodable = errors.New("executor: value is not JSON-encodable")
)
