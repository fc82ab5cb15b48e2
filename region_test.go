package stencil

import (
	"fmt"
	"testing"
)

func TestSide_String(t *testing.T) {
	if Low.String() != "low" || High.String() != "high" {
		t.Errorf("Side strings = %q, %q", Low, High)
	}
	if got := Side(7).String(); got != "Side(7)" {
		t.Errorf("unknown side String() = %q", got)
	}
}

func TestInnerSize(t *testing.T) {
	got := InnerSize([]int{10, 8}, []int{1, 2})
	if got[0] != 8 || got[1] != 4 {
		t.Errorf("InnerSize = %v, want [8 4]", got)
	}
}

func TestInnerOuterConsistency(t *testing.T) {
	// innerWorksize + 2*width == worksize, per dimension.
	configs := []struct {
		worksize []int
		width    []int
	}{
		{[]int{10}, []int{1}},
		{[]int{10, 10}, []int{1, 1}},
		{[]int{6, 12, 9}, []int{1, 3, 0}},
		{[]int{4, 4}, []int{2, 2}}, // degenerate: empty interior
	}
	for _, cfg := range configs {
		inner := InnerSize(cfg.worksize, cfg.width)
		for i := range cfg.worksize {
			if inner[i]+2*cfg.width[i] != cfg.worksize[i] {
				t.Errorf("worksize %v width %v: dim %d inner %d + 2*%d != %d",
					cfg.worksize, cfg.width, i, inner[i], cfg.width[i], cfg.worksize[i])
			}
		}
	}
}

// Scenario: 1D domain of worksize 10 with one-cell slabs.
func TestRegionGeometry1D(t *testing.T) {
	worksize := []int{10}
	width := []int{1}

	if got := InnerSize(worksize, width); got[0] != 8 {
		t.Errorf("inner size = %v, want [8]", got)
	}
	if got := InnerOffset(width); got.At(0) != 1 {
		t.Errorf("inner offset = %v, want (1)", got)
	}
	if got := OuterSize(worksize, width, 0); got[0] != 1 {
		t.Errorf("outer size = %v, want [1]", got)
	}
	if got := OuterOffset(worksize, width, 0, Low); got.At(0) != 0 {
		t.Errorf("low slab offset = %v, want (0)", got)
	}
	if got := OuterOffset(worksize, width, 0, High); got.At(0) != 9 {
		t.Errorf("high slab offset = %v, want (9)", got)
	}
}

// Slabs peel from the highest dimension down: dimension 1's slabs span the
// full extent of dimension 0, while dimension 0's slabs are clipped to the
// interior of dimension 1.
func TestRegionGeometry2D(t *testing.T) {
	worksize := []int{10, 6}
	width := []int{1, 2}

	if got := OuterSize(worksize, width, 1); got[0] != 10 || got[1] != 2 {
		t.Errorf("dim 1 slab size = %v, want [10 2]", got)
	}
	if got := OuterSize(worksize, width, 0); got[0] != 1 || got[1] != 2 {
		t.Errorf("dim 0 slab size = %v, want [1 2]", got)
	}
	if got := OuterOffset(worksize, width, 1, High); got.At(0) != 0 || got.At(1) != 4 {
		t.Errorf("dim 1 high offset = %v, want (0, 4)", got)
	}
	if got := OuterOffset(worksize, width, 0, High); got.At(0) != 9 || got.At(1) != 2 {
		t.Errorf("dim 0 high offset = %v, want (9, 2)", got)
	}
	if got := OuterOffset(worksize, width, 0, Low); got.At(0) != 0 || got.At(1) != 2 {
		t.Errorf("dim 0 low offset = %v, want (0, 2)", got)
	}
}

// TestTilingCompleteness checks the core invariant: the interior plus all
// 2·D slabs cover [0, worksize) exactly once, no overlap, no gap.
func TestTilingCompleteness(t *testing.T) {
	configs := []struct {
		worksize []int
		width    []int
	}{
		{[]int{10}, []int{1}},
		{[]int{10}, []int{5}},
		{[]int{10}, []int{0}},
		{[]int{10, 10}, []int{1, 1}},
		{[]int{7, 5}, []int{2, 1}},
		{[]int{7, 5}, []int{0, 2}},
		{[]int{4, 6, 5}, []int{1, 2, 1}},
		{[]int{3, 3, 3}, []int{1, 1, 1}},
		{[]int{5, 4, 3, 4}, []int{2, 1, 0, 2}},
	}

	for _, cfg := range configs {
		name := fmt.Sprintf("%v_%v", cfg.worksize, cfg.width)
		t.Run(name, func(t *testing.T) {
			counts := make(map[string]int)
			mark := func(size []int, off Offset) {
				forEachIndex(size, func(idx []int) {
					counts[fmt.Sprint(off.Apply(idx))]++
				})
			}

			mark(InnerSize(cfg.worksize, cfg.width), InnerOffset(cfg.width))
			for dim := range cfg.worksize {
				for _, side := range Sides {
					mark(OuterSize(cfg.worksize, cfg.width, dim),
						OuterOffset(cfg.worksize, cfg.width, dim, side))
				}
			}

			total := 1
			for _, n := range cfg.worksize {
				total *= n
			}
			if len(counts) != total {
				t.Fatalf("covered %d cells, domain has %d", len(counts), total)
			}
			for cell, n := range counts {
				if n != 1 {
					t.Fatalf("cell %s covered %d times", cell, n)
				}
			}
		})
	}
}

// forEachIndex visits every index of a row-major iteration space.
func forEachIndex(size []int, visit func(idx []int)) {
	idx := make([]int, len(size))
	for {
		for _, n := range size {
			if n <= 0 {
				return
			}
		}
		visit(idx)
		d := len(size) - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < size[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return
		}
	}
}
