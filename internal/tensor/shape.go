package tensor

import "fmt"

// MaxRank is the highest rank a backend tensor may have.
const MaxRank = 4

// Shape represents the dimensions of a tensor (N, C, H, W order).
type Shape []int

// ShapeOf converts serialized dimensions into a Shape.
func ShapeOf(dims []int32) Shape {
	s := make(Shape, len(dims))
	for i, d := range dims {
		s[i] = int(d)
	}
	return s
}

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape has rank 1..MaxRank and no negative dimension.
// Zero-sized dimensions are allowed; they occur for placeholder outputs.
func (s Shape) Validate() error {
	if len(s) == 0 || len(s) > MaxRank {
		return fmt.Errorf("unsupported rank %d (must be 1..%d)", len(s), MaxRank)
	}
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// NCHW expands the shape to four dimensions, padding leading dims with 1.
func (s Shape) NCHW() [4]int {
	out := [4]int{1, 1, 1, 1}
	off := 4 - len(s)
	for i, d := range s {
		if i+off >= 0 {
			out[i+off] = d
		}
	}
	return out
}
