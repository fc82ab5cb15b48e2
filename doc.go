// Package stencil schedules compute-kernel launches over halo-padded,
// multi-dimensional index spaces.
//
// # Overview
//
// Stencil computations update every cell of a D-dimensional grid from its
// neighbors, which requires a one-cell halo of ghost values around the
// domain. The expensive bulk update and the cheap-but-latency-bound boundary
// update are independent on disjoint cells, so stencil overlaps them: the
// interior launches on the primary stream while 2·D workers each run one
// boundary-adjacent slab followed by its boundary condition.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/stencil"
//	    "github.com/gogpu/stencil/backend"
//	    "github.com/gogpu/stencil/backend/cpu"
//	)
//
//	dev := cpu.New()
//	_ = dev.Init()
//	defer dev.Close()
//
//	grid, _ := stencil.NewRegularGrid([]int{256, 256}, []float64{1, 1})
//	l, _ := stencil.NewLauncher(dev, grid, stencil.WithOverlap(1, 1))
//	defer l.Close()
//
//	k, _ := dev.Compile(backend.Program{Label: "diffuse", Func: diffuse}, nil)
//	err := l.Invoke(ctx, grid, k, []any{next, prev},
//	    stencil.WithBoundary(bounds))
//
// # Regions
//
// The padded domain [0, worksize) splits into an interior block (size
// worksize - 2·width at offset width) and one slab of thickness width per
// dimension per side, peeled from the highest dimension down so the regions
// are disjoint and tile the domain exactly. That exact tiling is what makes
// the concurrent interior and slab launches race-free without locks.
//
// # Backends
//
// Kernel execution is pluggable via the backend registry:
//   - backend/cpu: pure Go, kernels are ordinary functions
//   - backend/wgpu: GPU compute via gogpu/wgpu HAL, kernels are WGSL
//
// # Architecture
//
// The library is organized into:
//   - Public API: Launcher, Worker, Offset, region geometry, Grid, Boundary
//   - backend/: Backend interface, registry, cpu and wgpu implementations
//   - internal/parallel: goroutine pool used by the cpu backend
package stencil
