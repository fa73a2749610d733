package logging

// Subsystem tags a log line with the component that emitted it, mirroring
// the teacher's types.SubSystem but scoped to this repo's own components
// instead of the inference chain's.
type Subsystem string

const (
	Indexer Subsystem = "indexer"
	Store   Subsystem = "store"
	API     Subsystem = "api"
	RPC     Subsystem = "rpc"
	Config  Subsystem = "config"
)
