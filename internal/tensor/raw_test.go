package tensor

import (
	"testing"
)

func TestNewRawSizes(t *testing.T) {
	raw, err := NewRaw(Shape{1, 3, 4, 4}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if raw.ByteSize() != 3*4*4*4 {
		t.Errorf("ByteSize = %d, want %d", raw.ByteSize(), 3*4*4*4)
	}
	if raw.BufferIndex() != -1 {
		t.Errorf("BufferIndex = %d, want -1", raw.BufferIndex())
	}
	if raw.Precision() != FP32 {
		t.Errorf("Precision = %v, want FP32", raw.Precision())
	}
}

func TestNewRawRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
	}{
		{"empty", Shape{}},
		{"rank5", Shape{1, 1, 1, 1, 1}},
		{"negative", Shape{1, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRaw(tt.shape, Float32, CPU); err == nil {
				t.Errorf("NewRaw(%v) should fail", tt.shape)
			}
		})
	}
}

func TestRawTensorRelease(_ *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)

	// Should not panic
	raw.Release()
}

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dt   DataType
		want int
	}{
		{Float32, 4},
		{Float16, 2},
		{Int32, 4},
		{Uint8, 1},
		{Int64, 8},
		{String, 0},
		{Int8, 1},
		{Float64, 8},
		{DataType(99), 0},
	}
	for _, tt := range tests {
		if got := tt.dt.Size(); got != tt.want {
			t.Errorf("%s.Size() = %d, want %d", tt.dt, got, tt.want)
		}
	}
}

func TestShapeNCHW(t *testing.T) {
	if got := (Shape{3, 4}).NCHW(); got != [4]int{1, 1, 3, 4} {
		t.Errorf("NCHW = %v", got)
	}
	if got := (Shape{2, 3, 4, 5}).NCHW(); got != [4]int{2, 3, 4, 5} {
		t.Errorf("NCHW = %v", got)
	}
}
