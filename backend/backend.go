package backend

import (
	"errors"

	"github.com/gogpu/stencil"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrNoEntry is returned when a program carries neither a Go function
	// nor a shader entry point the backend can compile.
	ErrNoEntry = errors.New("backend: program has no entry for this backend")
)

// Backend names.
const (
	// BackendCPU is the name of the pure Go backend.
	BackendCPU = "cpu"
	// BackendWGPU is the name of the GPU backend (gogpu/wgpu HAL).
	BackendWGPU = "wgpu"
)

// Program describes a kernel in backend-neutral form. A backend compiles a
// Program into a stencil.Kernel it can launch.
//
// GPU backends consume WGSL and Entry; the CPU backend consumes Func. A
// program may carry both so the same definition runs anywhere.
type Program struct {
	// Label names the program in logs and GPU debug tooling.
	Label string

	// WGSL is the shader source for GPU backends.
	WGSL string

	// Entry is the compute entry point inside WGSL. Defaults to "main".
	Entry string

	// Func is the per-cell body for the CPU backend. It receives the
	// translated index of one cell and the launch arguments.
	Func func(idx []int, args []any)
}

// Backend is the interface compute backends implement.
//
// A Backend doubles as the stencil.Device of launchers built on it:
// Synchronize satisfies the device contract directly.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "cpu", "wgpu").
	Name() string

	// Init initializes the backend.
	// This should be called before compiling or launching kernels.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Synchronize blocks until all launched work has completed.
	Synchronize() error

	// Compile turns a program into a launchable kernel. groupSize is the
	// per-dimension workgroup extent; backends that schedule their own
	// granularity may ignore it.
	Compile(p Program, groupSize []int) (stencil.Kernel, error)
}
