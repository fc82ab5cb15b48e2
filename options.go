package stencil

// LauncherOption configures a Launcher during creation.
//
// Example:
//
//	// Plain launcher, no boundary overlap:
//	l, err := stencil.NewLauncher(dev, grid)
//
//	// One-cell slabs in both dimensions, boundary work overlapped:
//	l, err := stencil.NewLauncher(dev, grid, stencil.WithOverlap(1, 1))
type LauncherOption func(*launcherOptions)

type launcherOptions struct {
	outerWidth     []int
	workerPriority Priority
}

func defaultLauncherOptions() launcherOptions {
	return launcherOptions{
		workerPriority: PriorityHigh,
	}
}

// WithOverlap enables boundary-overlap dispatch with the given slab width
// per dimension. The Launcher then owns 2·D workers, one per (dimension,
// side), and Invoke with a boundary runs each slab concurrently with the
// interior. The width count must match the grid dimension count, each width
// non-negative and at most half the padded worksize of its dimension.
func WithOverlap(width ...int) LauncherOption {
	return func(o *launcherOptions) {
		o.outerWidth = make([]int, len(width))
		copy(o.outerWidth, width)
	}
}

// WithWorkerPriority overrides the scheduling hint given to slab workers.
// The default is PriorityHigh so slab streams can overtake bulk work.
func WithWorkerPriority(p Priority) LauncherOption {
	return func(o *launcherOptions) {
		o.workerPriority = p
	}
}

// InvokeOption configures a single Invoke call.
type InvokeOption func(*invokeOptions)

type invokeOptions struct {
	boundary Boundary
	async    bool
}

// WithBoundary attaches a boundary condition to the launch. The kernel is
// then dispatched as interior plus outer slabs (when overlap is configured),
// with the boundary applied after each slab's kernel.
func WithBoundary(b Boundary) InvokeOption {
	return func(o *invokeOptions) {
		o.boundary = b
	}
}

// Async makes Invoke return without waiting for outstanding backend work.
// The caller is responsible for synchronizing with the device before
// reading results.
func Async() InvokeOption {
	return func(o *invokeOptions) {
		o.async = true
	}
}
