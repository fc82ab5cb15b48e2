package stencil

import (
	"context"
	"errors"
	"fmt"
)

// Launcher errors.
var (
	// ErrNilDevice is returned when NewLauncher is called without a device.
	ErrNilDevice = errors.New("stencil: device must not be nil")

	// ErrNilGrid is returned when NewLauncher is called without a grid.
	ErrNilGrid = errors.New("stencil: grid must not be nil")

	// ErrNilKernel is returned when Invoke is called without a kernel.
	ErrNilKernel = errors.New("stencil: kernel must not be nil")

	// ErrLauncherClosed is returned when Invoke is called after Close.
	ErrLauncherClosed = errors.New("stencil: launcher is closed")
)

// haloWidth is the halo padding per side in every dimension.
const haloWidth = 1

// Launcher schedules kernel launches over a halo-padded index space.
//
// Without overlap, Invoke issues a single launch over the full worksize.
// With overlap (see [WithOverlap]), Invoke launches the interior on the
// primary stream and each outer slab on a dedicated worker, applying the
// boundary condition right after its slab's kernel, so boundary latency
// hides behind bulk work. The interior and the 2·D slabs are index-disjoint
// and together tile the domain exactly, which is what makes the concurrent
// writes race-free without locks.
//
// A Launcher exclusively owns its worksize, slab widths, and workers; the
// workers live exactly as long as the Launcher. Launcher is not safe for
// concurrent Invoke calls. After an Invoke error the workers stay poisoned
// with the failure: create a fresh Launcher rather than reusing it.
type Launcher struct {
	dev        Device
	worksize   []int
	outerWidth []int        // nil when overlap is disabled
	workers    [][2]*Worker // indexed [dim][side], nil when overlap is disabled
	closed     bool
}

// NewLauncher creates a Launcher for the given device and grid. The
// worksize is the grid's center extent plus one halo cell on each side of
// every dimension. With [WithOverlap], 2·D workers are created, one per
// (dimension, side) pair; each worker runs the device's per-worker setup
// (see [WorkerSetup]) once before any slab task.
//
// A slab width exceeding half the padded worksize would leave a non-positive
// interior, so NewLauncher rejects it instead of producing undefined
// geometry.
func NewLauncher(dev Device, g Grid, opts ...LauncherOption) (*Launcher, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if g == nil {
		return nil, ErrNilGrid
	}

	o := defaultLauncherOptions()
	for _, opt := range opts {
		opt(&o)
	}

	center := g.CenterSize()
	dims := g.Dims()
	if dims <= 0 || len(center) != dims {
		return nil, fmt.Errorf("stencil: invalid grid: %d dims, %d extents", dims, len(center))
	}

	worksize := make([]int, dims)
	for i, n := range center {
		if n <= 0 {
			return nil, fmt.Errorf("stencil: center size must be positive, dim %d is %d", i, n)
		}
		worksize[i] = n + 2*haloWidth
	}

	l := &Launcher{dev: dev, worksize: worksize}

	if o.outerWidth != nil {
		if len(o.outerWidth) != dims {
			return nil, fmt.Errorf("stencil: overlap has %d widths, grid has %d dims", len(o.outerWidth), dims)
		}
		for i, w := range o.outerWidth {
			if w < 0 {
				return nil, fmt.Errorf("stencil: slab width must be non-negative, dim %d is %d", i, w)
			}
			if 2*w > worksize[i] {
				return nil, fmt.Errorf("stencil: slab width %d leaves no interior in dim %d (worksize %d)", w, i, worksize[i])
			}
		}
		l.outerWidth = o.outerWidth

		setup, _ := dev.(WorkerSetup)
		l.workers = make([][2]*Worker, dims)
		for d := range l.workers {
			for _, side := range Sides {
				cfg := WorkerConfig{Priority: o.workerPriority}
				if setup != nil {
					d, side := d, side
					cfg.Setup = func() error {
						return setup.SetupWorker(d, side, o.workerPriority)
					}
				}
				l.workers[d][side] = NewWorker(cfg)
			}
		}
	}

	Logger().Debug("launcher created",
		"worksize", worksize, "outerWidth", l.outerWidth, "workers", l.WorkerCount())
	return l, nil
}

// Invoke dispatches the kernel over the launcher's domain.
//
// Without [WithBoundary], exactly one launch covers the full worksize; no
// workers are involved regardless of configuration. With a boundary and no
// overlap, the full-domain launch is followed by one synchronous whole-domain
// boundary apply. With a boundary and overlap, the interior launches first,
// then for each dimension from the highest down, both sides' slab tasks
// (slab kernel, then that slab's boundary) are submitted to their workers
// and both workers are drained before the next dimension. A slab failure
// aborts the remaining dimensions.
//
// Every launch offset carries a base of -1 per dimension, translating
// halo-inclusive coordinates into center-relative ones: kernels see the
// center cells at [0, centerSize) and the ghost layers at -1 and centerSize.
//
// Unless [Async] is given, Invoke blocks on the device until all outstanding
// work (interior and slabs) has completed.
func (l *Launcher) Invoke(ctx context.Context, g Grid, k Kernel, args []any, opts ...InvokeOption) error {
	if l.closed {
		return ErrLauncherClosed
	}
	if k == nil {
		return ErrNilKernel
	}

	var o invokeOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := UniformOffset(len(l.worksize), -1)

	switch {
	case o.boundary == nil:
		if err := k.Launch(ctx, l.Worksize(), base, args...); err != nil {
			return err
		}

	case l.outerWidth == nil:
		// No slab decomposition: full launch, then one synchronous
		// whole-domain boundary apply.
		if err := k.Launch(ctx, l.Worksize(), base, args...); err != nil {
			return err
		}
		if err := o.boundary.ApplyAll(ctx, g); err != nil {
			return err
		}

	default:
		if err := l.invokeOverlapped(ctx, g, k, args, o.boundary, base); err != nil {
			return err
		}
	}

	if o.async {
		return nil
	}
	return l.dev.Synchronize()
}

// invokeOverlapped runs the boundary-overlap protocol: interior on the
// primary stream, slabs on workers, a barrier after each dimension.
func (l *Launcher) invokeOverlapped(ctx context.Context, g Grid, k Kernel, args []any, b Boundary, base Offset) error {
	log := Logger()

	inner := InnerSize(l.worksize, l.outerWidth)
	if err := k.Launch(ctx, inner, base.Add(InnerOffset(l.outerWidth)), args...); err != nil {
		return fmt.Errorf("interior launch: %w", err)
	}

	for dim := len(l.worksize) - 1; dim >= 0; dim-- {
		size := OuterSize(l.worksize, l.outerWidth, dim)
		for _, side := range Sides {
			dim, side := dim, side
			off := base.Add(OuterOffset(l.worksize, l.outerWidth, dim, side))
			log.Debug("slab task", "dim", dim, "side", side, "size", size, "offset", off)

			task := func() error {
				if err := k.Launch(ctx, size, off, args...); err != nil {
					return fmt.Errorf("slab launch dim %d side %s: %w", dim, side, err)
				}
				if err := b.Apply(ctx, g, dim, side); err != nil {
					return fmt.Errorf("boundary apply dim %d side %s: %w", dim, side, err)
				}
				return nil
			}
			if err := l.workers[dim][side].Submit(task); err != nil {
				return err
			}
		}

		// Both sides drain before the next dimension's tasks are
		// submitted. Slabs across dimensions are already index-disjoint;
		// the barrier keeps the dispatch protocol simple, not correct.
		errLow := l.workers[dim][Low].Wait()
		errHigh := l.workers[dim][High].Wait()
		if errLow != nil {
			return errLow
		}
		if errHigh != nil {
			return errHigh
		}
	}
	return nil
}

// Close tears down the launcher's workers. The launcher must not be used
// after Close. Close is idempotent.
func (l *Launcher) Close() {
	if l.closed {
		return
	}
	l.closed = true
	for d := range l.workers {
		for _, side := range Sides {
			l.workers[d][side].Close()
		}
	}
}

// Device returns the execution backend handle the launcher dispatches to.
func (l *Launcher) Device() Device { return l.dev }

// Worksize returns the halo-inclusive per-dimension extent.
func (l *Launcher) Worksize() []int {
	out := make([]int, len(l.worksize))
	copy(out, l.worksize)
	return out
}

// OuterWidth returns the configured slab widths, or nil when overlap is
// disabled.
func (l *Launcher) OuterWidth() []int {
	if l.outerWidth == nil {
		return nil
	}
	out := make([]int, len(l.outerWidth))
	copy(out, l.outerWidth)
	return out
}

// Overlap reports whether slab decomposition is configured.
func (l *Launcher) Overlap() bool { return l.outerWidth != nil }

// InnerSize returns the interior extent, or nil when overlap is disabled.
func (l *Launcher) InnerSize() []int {
	if l.outerWidth == nil {
		return nil
	}
	return InnerSize(l.worksize, l.outerWidth)
}

// InnerOffset returns the interior placement. Only meaningful with overlap.
func (l *Launcher) InnerOffset() Offset {
	if l.outerWidth == nil {
		return ZeroOffset(len(l.worksize))
	}
	return InnerOffset(l.outerWidth)
}

// OuterSize returns the extent of dimension dim's outer slab.
// Only meaningful with overlap.
func (l *Launcher) OuterSize(dim int) []int {
	if l.outerWidth == nil {
		return nil
	}
	return OuterSize(l.worksize, l.outerWidth, dim)
}

// OuterOffset returns the placement of dimension dim's slab on one side.
// Only meaningful with overlap.
func (l *Launcher) OuterOffset(dim int, side Side) Offset {
	if l.outerWidth == nil {
		return ZeroOffset(len(l.worksize))
	}
	return OuterOffset(l.worksize, l.outerWidth, dim, side)
}

// WorkerCount returns the number of owned workers: 2·D with overlap,
// zero without.
func (l *Launcher) WorkerCount() int {
	n := 0
	for d := range l.workers {
		for range l.workers[d] {
			n++
		}
	}
	return n
}
