package stencil

import (
	"fmt"
	"strings"
)

// Offset is an immutable integer index translation. Adding an Offset to a
// region-local index yields the corresponding global index. Offsets form a
// commutative group under elementwise addition.
type Offset struct {
	c []int
}

// NewOffset creates an Offset from the given components.
func NewOffset(c ...int) Offset {
	out := make([]int, len(c))
	copy(out, c)
	return Offset{c: out}
}

// ZeroOffset returns the all-zero Offset with the given dimension count.
func ZeroOffset(dims int) Offset {
	return Offset{c: make([]int, dims)}
}

// UniformOffset returns an Offset with every component set to v.
func UniformOffset(dims, v int) Offset {
	c := make([]int, dims)
	for i := range c {
		c[i] = v
	}
	return Offset{c: c}
}

// Dims returns the number of components.
func (o Offset) Dims() int { return len(o.c) }

// At returns the component for dimension i.
func (o Offset) At(i int) int { return o.c[i] }

// Add returns the elementwise sum of two Offsets.
// Both Offsets must have the same dimension count.
func (o Offset) Add(other Offset) Offset {
	if len(o.c) != len(other.c) {
		panic(fmt.Sprintf("stencil: offset dims mismatch: %d != %d", len(o.c), len(other.c)))
	}
	c := make([]int, len(o.c))
	for i := range c {
		c[i] = o.c[i] + other.c[i]
	}
	return Offset{c: c}
}

// Apply translates an index tuple by the Offset, returning a new tuple.
func (o Offset) Apply(idx []int) []int {
	if len(o.c) != len(idx) {
		panic(fmt.Sprintf("stencil: offset dims mismatch: %d != %d", len(o.c), len(idx)))
	}
	out := make([]int, len(idx))
	for i := range out {
		out[i] = idx[i] + o.c[i]
	}
	return out
}

// Components returns a copy of the components.
func (o Offset) Components() []int {
	out := make([]int, len(o.c))
	copy(out, o.c)
	return out
}

// Equal reports whether two Offsets have identical components.
func (o Offset) Equal(other Offset) bool {
	if len(o.c) != len(other.c) {
		return false
	}
	for i := range o.c {
		if o.c[i] != other.c[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable form like "(1, 0, -1)".
func (o Offset) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range o.c {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(')')
	return b.String()
}
