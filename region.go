package stencil

import "fmt"

// Side identifies the low or high end of a dimension's index range.
type Side int

const (
	// Low is the boundary at index 0 of a dimension.
	Low Side = iota

	// High is the boundary at the last index of a dimension.
	High
)

// Sides lists both sides in submission order.
var Sides = [2]Side{Low, High}

// String returns the string representation of a Side.
func (s Side) String() string {
	switch s {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Region geometry.
//
// Given a worksize and a per-dimension slab width, the domain [0, worksize)
// splits into an interior block and 2·D outer slabs, one per dimension per
// side. Slabs are peeled from the highest dimension down: the slab for
// dimension d spans the full extent of dimensions below d, the slab width
// along d, and only the interior extent of dimensions above d (those slabs
// were peeled first). This makes the interior plus all slabs an exact
// disjoint tiling of the domain.

// InnerSize returns the interior extent: worksize - 2*width elementwise.
func InnerSize(worksize, width []int) []int {
	size := make([]int, len(worksize))
	for i := range size {
		size[i] = worksize[i] - 2*width[i]
	}
	return size
}

// InnerOffset returns the placement of the interior region: width in every
// dimension.
func InnerOffset(width []int) Offset {
	return NewOffset(width...)
}

// OuterSize returns the extent of the outer slab for dimension dim.
func OuterSize(worksize, width []int, dim int) []int {
	size := make([]int, len(worksize))
	for i := range size {
		switch {
		case i > dim:
			size[i] = worksize[i] - 2*width[i]
		case i == dim:
			size[i] = width[dim]
		default:
			size[i] = worksize[i]
		}
	}
	return size
}

// OuterOffset returns the placement of the outer slab for dimension dim on
// the given side.
func OuterOffset(worksize, width []int, dim int, side Side) Offset {
	c := make([]int, len(worksize))
	for i := range c {
		switch {
		case i > dim:
			c[i] = width[i]
		case i == dim && side == High:
			c[i] = worksize[dim] - width[dim]
		}
	}
	return NewOffset(c...)
}
