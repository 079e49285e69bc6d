package signal

// Kind discriminates the ten signal variants (spec.md §3). Dispatch on Kind,
// not on Go interfaces-per-kind, per Design Notes §9: "prefer tagged-union
// records plus kind-specific executors over virtual methods; this also
// matches the wire format."
type Kind string

const (
	KindState     Kind = "state"
	KindLogic     Kind = "logic"
	KindComputed  Kind = "computed"
	KindAction    Kind = "action"
	KindHandler   Kind = "handler"
	KindMutator   Kind = "mutator"
	KindReference Kind = "reference"
	KindReducer   Kind = "reducer"
	KindComponent Kind = "component"
	KindNode      Kind = "node"
	KindSuspense  Kind = "suspense"
)

// LogicContext selects where a `logic` signal's function actually runs
// (spec.md §3, §4.2 context gating). The zero value, LogicContextIso,
// means "isomorphic": execute locally regardless of process role.
type LogicContext string

const (
	LogicContextIso    LogicContext = ""
	LogicContextServer LogicContext = "server"
	LogicContextClient LogicContext = "client"
	LogicContextWorker LogicContext = "worker"
)

// Role distinguishes the process that allocated a source signal's id, so
// client-allocated ids never collide with server-allocated ones (spec.md
// §3, Identity). Resolved per Open Question (b): "s"/"c" counter prefixes.
type Role string

const (
	RoleServer Role = "s"
	RoleClient Role = "c"
)
