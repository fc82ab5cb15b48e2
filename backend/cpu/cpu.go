// Package cpu implements the pure Go compute backend.
//
// Kernels run on a goroutine pool, chunked along the slowest-varying
// dimension. Launches are synchronous, so Synchronize is a no-op.
package cpu

import (
	"context"
	"fmt"

	"github.com/gogpu/stencil"
	"github.com/gogpu/stencil/backend"
	"github.com/gogpu/stencil/internal/parallel"
)

func init() {
	backend.Register(backend.BackendCPU, func() backend.Backend {
		return New()
	})
}

// Backend executes kernels on the host CPU.
type Backend struct {
	pool        *parallel.Pool
	initialized bool
}

// New creates an uninitialized CPU backend. Call Init before use.
func New() *Backend {
	return &Backend{}
}

// Name returns "cpu".
func (b *Backend) Name() string { return backend.BackendCPU }

// Init starts the worker pool. Calling Init on an initialized backend is
// a no-op.
func (b *Backend) Init() error {
	if b.initialized {
		return nil
	}
	b.pool = parallel.NewPool(0)
	b.initialized = true
	stencil.Logger().Debug("cpu backend initialized", "workers", b.pool.Workers())
	return nil
}

// Close stops the worker pool.
func (b *Backend) Close() {
	if !b.initialized {
		return
	}
	b.pool.Close()
	b.initialized = false
}

// Synchronize reports completion. CPU launches return only after their
// cells have run, so there is never outstanding work.
func (b *Backend) Synchronize() error {
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	return nil
}

// SetupWorker is the per-worker hook launchers call once per slab agent.
// Host execution needs no per-thread device state, so it only logs.
func (b *Backend) SetupWorker(dim int, side stencil.Side, p stencil.Priority) error {
	stencil.Logger().Debug("cpu worker setup", "dim", dim, "side", side, "priority", p)
	return nil
}

// Compile wraps the program's Go function in a launchable kernel.
// groupSize is ignored; the pool chunks launches itself.
func (b *Backend) Compile(p backend.Program, groupSize []int) (stencil.Kernel, error) {
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if p.Func == nil {
		return nil, fmt.Errorf("%w: %q has no Go function", backend.ErrNoEntry, p.Label)
	}
	return &kernel{backend: b, label: p.Label, fn: p.Func}, nil
}

type kernel struct {
	backend *Backend
	label   string
	fn      func(idx []int, args []any)
}

// Launch runs the kernel body once per cell of the launch region. The
// region's slowest-varying dimension is split into one chunk per pool
// worker; within a chunk, cells run in row-major order.
func (k *kernel) Launch(ctx context.Context, size []int, off stencil.Offset, args ...any) error {
	if !k.backend.initialized {
		return backend.ErrNotInitialized
	}
	if len(size) == 0 || len(size) != off.Dims() {
		return fmt.Errorf("cpu: launch %q: size %v does not match offset %v", k.label, size, off)
	}
	for _, n := range size {
		if n <= 0 {
			return nil // empty region
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chunks := parallel.Chunks(size[0], k.backend.pool.Workers())
	work := make([]func(), len(chunks))
	for i, c := range chunks {
		c := c
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			k.runChunk(c, size, off, args)
		}
	}
	k.backend.pool.ExecuteAll(work)
	return ctx.Err()
}

// runChunk visits rows [c.Begin, c.End) of dimension 0 and every cell of
// the remaining dimensions, passing translated indexes to the body.
func (k *kernel) runChunk(c parallel.Chunk, size []int, off stencil.Offset, args []any) {
	idx := make([]int, len(size))
	translated := make([]int, len(size))
	idx[0] = c.Begin
	for {
		for d := range idx {
			translated[d] = idx[d] + off.At(d)
		}
		k.fn(translated, args)

		d := len(size) - 1
		for d > 0 {
			idx[d]++
			if idx[d] < size[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d == 0 {
			idx[0]++
			if idx[0] >= c.End {
				return
			}
		}
	}
}
