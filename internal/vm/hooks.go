package vm

import "surge/internal/bytecode"

// TupleSpaceHost is the tuple-space surface the STARTWORKERS/
// WORKERWRITE/WORKERREAD/TERMWORKERS opcodes drive (spec §4.6). It is
// implemented by internal/worker.Space.
type TupleSpaceHost interface {
	Write(typeIdx int32, tuple []Value) error
	Read(typeIdx int32) ([]Value, bool)
	Terminate()
}

// StartWorkersHook launches a worker pool and returns the tuple space
// the calling VM should drive. It is registered by internal/worker's
// init rather than called through a direct import: internal/worker
// needs to construct new *VM instances to run each worker on, which
// would make internal/vm -> internal/worker -> internal/vm an import
// cycle. The hook breaks the cycle the way database/sql drivers
// register themselves instead of being imported directly.
var StartWorkersHook func(f *bytecode.File, opts Options, numThreads int64) (TupleSpaceHost, error)
