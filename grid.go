package stencil

import "fmt"

// Grid supplies the index-space geometry the Launcher schedules over.
// The Launcher consumes only Dims and CenterSize; Spacing exists for kernel
// authors, who typically need cell sizes to assemble stencil coefficients.
type Grid interface {
	// Dims returns the dimension count D.
	Dims() int

	// CenterSize returns the per-dimension extent of the center region,
	// excluding halo cells.
	CenterSize() []int

	// Spacing returns the cell spacing along the given dimension.
	Spacing(dim int) float64
}

// RegularGrid is a uniformly spaced Grid.
type RegularGrid struct {
	size    []int
	spacing []float64
}

// NewRegularGrid creates a RegularGrid with the given center extents and
// per-dimension spacings.
func NewRegularGrid(size []int, spacing []float64) (*RegularGrid, error) {
	if len(size) == 0 {
		return nil, fmt.Errorf("stencil: grid needs at least one dimension")
	}
	if len(size) != len(spacing) {
		return nil, fmt.Errorf("stencil: size has %d dims, spacing has %d", len(size), len(spacing))
	}
	for i, n := range size {
		if n <= 0 {
			return nil, fmt.Errorf("stencil: center size must be positive, dim %d is %d", i, n)
		}
		if spacing[i] <= 0 {
			return nil, fmt.Errorf("stencil: spacing must be positive, dim %d is %g", i, spacing[i])
		}
	}
	g := &RegularGrid{
		size:    make([]int, len(size)),
		spacing: make([]float64, len(spacing)),
	}
	copy(g.size, size)
	copy(g.spacing, spacing)
	return g, nil
}

// Dims returns the dimension count.
func (g *RegularGrid) Dims() int { return len(g.size) }

// CenterSize returns a copy of the center extents.
func (g *RegularGrid) CenterSize() []int {
	out := make([]int, len(g.size))
	copy(out, g.size)
	return out
}

// Spacing returns the cell spacing along dim.
func (g *RegularGrid) Spacing(dim int) float64 { return g.spacing[dim] }
