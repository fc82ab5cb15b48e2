package stencil

import (
	"context"
	"fmt"
)

// Boundary applies boundary conditions to halo cells. The Launcher calls
// Apply once per (dimension, side) slab on the overlap path, or ApplyAll
// once over the whole domain when no overlap is configured. Implementations
// write only the halo cells they own; the Launcher guarantees Apply never
// runs concurrently with another task touching the same cells.
type Boundary interface {
	// Apply writes the halo cells on one side of one dimension.
	Apply(ctx context.Context, g Grid, dim int, side Side) error

	// ApplyAll writes every halo cell of the domain.
	ApplyAll(ctx context.Context, g Grid) error
}

// BoundaryFunc fills the halo cells for a single (dimension, side) pair.
type BoundaryFunc func(ctx context.Context, g Grid, dim int, side Side) error

// BoundaryTable is a per-dimension, two-sided table of boundary descriptors.
// The zero value is unusable; use NewBoundaryTable.
type BoundaryTable struct {
	dims  int
	funcs [][2]BoundaryFunc
}

// NewBoundaryTable creates an empty table for the given dimension count.
func NewBoundaryTable(dims int) *BoundaryTable {
	return &BoundaryTable{
		dims:  dims,
		funcs: make([][2]BoundaryFunc, dims),
	}
}

// Set registers the descriptor for one (dimension, side) pair.
// It returns the table for chaining.
func (t *BoundaryTable) Set(dim int, side Side, fn BoundaryFunc) *BoundaryTable {
	t.funcs[dim][side] = fn
	return t
}

// SetAll registers the same descriptor for every (dimension, side) pair.
func (t *BoundaryTable) SetAll(fn BoundaryFunc) *BoundaryTable {
	for d := range t.funcs {
		t.funcs[d][Low] = fn
		t.funcs[d][High] = fn
	}
	return t
}

// Apply runs the descriptor for (dim, side). A missing descriptor is an
// error: the table must cover every pair it is invoked for.
func (t *BoundaryTable) Apply(ctx context.Context, g Grid, dim int, side Side) error {
	fn := t.funcs[dim][side]
	if fn == nil {
		return fmt.Errorf("stencil: no boundary descriptor for dim %d side %s", dim, side)
	}
	return fn(ctx, g, dim, side)
}

// ApplyAll runs every registered descriptor, low side then high side,
// highest dimension first, matching the overlap dispatch order.
func (t *BoundaryTable) ApplyAll(ctx context.Context, g Grid) error {
	for dim := t.dims - 1; dim >= 0; dim-- {
		for _, side := range Sides {
			if err := t.Apply(ctx, g, dim, side); err != nil {
				return err
			}
		}
	}
	return nil
}
