package stencil

import "testing"

func TestOffset_Zero(t *testing.T) {
	o := ZeroOffset(3)
	if o.Dims() != 3 {
		t.Fatalf("Dims() = %d, want 3", o.Dims())
	}
	for i := 0; i < 3; i++ {
		if o.At(i) != 0 {
			t.Errorf("At(%d) = %d, want 0", i, o.At(i))
		}
	}
}

func TestOffset_Add(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Offset
		want    Offset
	}{
		{"positive", NewOffset(1, 2), NewOffset(3, 4), NewOffset(4, 6)},
		{"negative", NewOffset(-1, -1), NewOffset(1, 1), NewOffset(0, 0)},
		{"zero identity", NewOffset(5, -7), ZeroOffset(2), NewOffset(5, -7)},
		{"one dim", NewOffset(9), NewOffset(-1), NewOffset(8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Add(tt.b)
			if !got.Equal(tt.want) {
				t.Errorf("%v.Add(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOffset_AddCommutative(t *testing.T) {
	a := NewOffset(3, -2, 7)
	b := NewOffset(-5, 4, 1)
	if !a.Add(b).Equal(b.Add(a)) {
		t.Errorf("Add is not commutative: %v vs %v", a.Add(b), b.Add(a))
	}
}

func TestOffset_AddAssociative(t *testing.T) {
	a := NewOffset(1, 2)
	b := NewOffset(3, 4)
	c := NewOffset(-5, 6)
	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))
	if !left.Equal(right) {
		t.Errorf("Add is not associative: %v vs %v", left, right)
	}
}

func TestOffset_AddImmutable(t *testing.T) {
	a := NewOffset(1, 1)
	_ = a.Add(NewOffset(5, 5))
	if a.At(0) != 1 || a.At(1) != 1 {
		t.Errorf("Add mutated receiver: %v", a)
	}
}

func TestOffset_Apply(t *testing.T) {
	o := NewOffset(-1, 2)
	got := o.Apply([]int{4, 4})
	if got[0] != 3 || got[1] != 6 {
		t.Errorf("Apply([4 4]) = %v, want [3 6]", got)
	}
}

func TestOffset_ApplyLeavesInputIntact(t *testing.T) {
	idx := []int{10, 20}
	NewOffset(1, 1).Apply(idx)
	if idx[0] != 10 || idx[1] != 20 {
		t.Errorf("Apply mutated its input: %v", idx)
	}
}

func TestOffset_AddDimsMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Add with mismatched dims should panic")
		}
	}()
	NewOffset(1).Add(NewOffset(1, 2))
}

func TestOffset_Uniform(t *testing.T) {
	o := UniformOffset(3, -1)
	want := NewOffset(-1, -1, -1)
	if !o.Equal(want) {
		t.Errorf("UniformOffset(3, -1) = %v, want %v", o, want)
	}
}

func TestOffset_ComponentsCopy(t *testing.T) {
	o := NewOffset(1, 2)
	c := o.Components()
	c[0] = 99
	if o.At(0) != 1 {
		t.Error("Components() must return a copy")
	}
}

func TestOffset_NewCopiesInput(t *testing.T) {
	in := []int{1, 2}
	o := NewOffset(in...)
	in[0] = 99
	if o.At(0) != 1 {
		t.Error("NewOffset must copy its input")
	}
}

func TestOffset_String(t *testing.T) {
	if got := NewOffset(1, 0, -1).String(); got != "(1, 0, -1)" {
		t.Errorf("String() = %q, want %q", got, "(1, 0, -1)")
	}
}
