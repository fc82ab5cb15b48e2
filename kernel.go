package stencil

import "context"

// Kernel is a compiled compute kernel. Launch invokes it over an iteration
// space of the given extent; every local index is translated by offset
// before the kernel body sees it, so the same kernel serves the full domain,
// the interior, and each outer slab.
//
// Kernels must tolerate concurrent Launch calls on disjoint index ranges:
// the Launcher issues the interior and slab launches from different
// goroutines, relying on the tiling invariant for the absence of aliasing.
type Kernel interface {
	Launch(ctx context.Context, worksize []int, offset Offset, args ...any) error
}

// Device is the execution-backend handle the Launcher dispatches against.
// Synchronize blocks until all outstanding launches have completed on the
// backend. Backends whose launches complete synchronously return nil
// immediately.
type Device interface {
	Synchronize() error
}

// WorkerSetup is an optional Device interface. When implemented, the
// Launcher invokes SetupWorker once on each worker's goroutine before any
// slab task runs, letting the backend bind a stream or queue with the given
// priority to that worker.
type WorkerSetup interface {
	SetupWorker(dim int, side Side, p Priority) error
}
