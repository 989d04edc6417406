package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

func TestPrecision(t *testing.T) {
	tests := []struct {
		dt    tensor.DataType
		relax bool
		want  tensor.Precision
	}{
		{tensor.Int8, false, tensor.INT8},
		{tensor.Uint8, true, tensor.UINT8},
		{tensor.Float32, false, tensor.FP32},
		{tensor.Float32, true, tensor.FP16},
		{tensor.Float16, false, tensor.FP16},
		{tensor.Int32, false, tensor.FP16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Precision(tt.dt, tt.relax), "%s relax=%v", tt.dt, tt.relax)
	}
}

func TestIsNCHW(t *testing.T) {
	assert.False(t, IsNCHW(ir.LegacyTensorflowNHWC))
	assert.False(t, IsNCHW(ir.LegacyCaffeNHWC))
	assert.True(t, IsNCHW(ir.LegacyCaffe))
	assert.True(t, IsNCHW(ir.LegacyCaffeNCHW))
	assert.True(t, IsNCHW(ir.LegacyAndroidNN))
	assert.True(t, IsNCHW(ir.LegacyNone))
}

func TestSamePadding(t *testing.T) {
	nhwc := func(in, out, filter []int32, stride, dilation int32) Window {
		return Window{Input: in, Output: out, Filter: filter, StrideH: stride, StrideW: stride,
			DilationH: dilation, DilationW: dilation}
	}

	tests := []struct {
		name   string
		legacy ir.LegacyModel
		pad    nnc.Padding
		w      Window
		want   Pad4
	}{
		{
			name:   "valid pads nothing",
			legacy: ir.LegacyTensorflowNHWC,
			pad:    nnc.PaddingValid,
			w:      nhwc([]int32{1, 5, 5, 1}, []int32{1, 3, 3, 1}, []int32{1, 3, 3, 1}, 1, 1),
		},
		{
			name:   "odd total goes right and bottom",
			legacy: ir.LegacyTensorflowNHWC,
			pad:    nnc.PaddingSame,
			w:      nhwc([]int32{1, 5, 5, 1}, []int32{1, 5, 5, 1}, []int32{1, 2, 2, 1}, 1, 1),
			want:   Pad4{Left: 0, Right: 1, Top: 0, Bottom: 1},
		},
		{
			name:   "caffe rounds both halves up",
			legacy: ir.LegacyCaffeNHWC,
			pad:    nnc.PaddingSame,
			w:      nhwc([]int32{1, 5, 5, 1}, []int32{1, 5, 5, 1}, []int32{1, 2, 2, 1}, 1, 1),
			want:   Pad4{Left: 1, Right: 1, Top: 1, Bottom: 1},
		},
		{
			name:   "strided",
			legacy: ir.LegacyTensorflowNHWC,
			pad:    nnc.PaddingSame,
			w:      nhwc([]int32{1, 7, 7, 3}, []int32{1, 4, 4, 8}, []int32{8, 3, 3, 3}, 2, 1),
			want:   Pad4{Left: 1, Right: 1, Top: 1, Bottom: 1},
		},
		{
			name:   "dilated",
			legacy: ir.LegacyTensorflowNHWC,
			pad:    nnc.PaddingSame,
			w:      nhwc([]int32{1, 5, 5, 1}, []int32{1, 5, 5, 1}, []int32{1, 3, 3, 1}, 1, 2),
			want:   Pad4{Left: 2, Right: 2, Top: 2, Bottom: 2},
		},
		{
			name:   "deconv swaps input and output",
			legacy: ir.LegacyTensorflowNHWC,
			pad:    nnc.PaddingSame,
			w: Window{Input: []int32{1, 4, 4, 1}, Output: []int32{1, 7, 7, 1}, Filter: []int32{1, 3, 3, 1},
				StrideH: 2, StrideW: 2, Deconv: true},
			want: Pad4{Left: 1, Right: 1, Top: 1, Bottom: 1},
		},
		{
			name:   "android nn kernel layout",
			legacy: ir.LegacyAndroidNN,
			pad:    nnc.PaddingSame,
			w: Window{Input: []int32{1, 3, 5, 5}, Output: []int32{1, 8, 5, 5}, Filter: []int32{8, 3, 1, 3},
				StrideH: 1, StrideW: 1, NCHW: true},
			want: Pad4{Left: 0, Right: 0, Top: 1, Bottom: 1},
		},
		{
			name:   "nchw kernel layout",
			legacy: ir.LegacyCaffeNCHW,
			pad:    nnc.PaddingSame,
			w: Window{Input: []int32{1, 3, 5, 5}, Output: []int32{1, 8, 5, 5}, Filter: []int32{8, 3, 1, 3},
				StrideH: 1, StrideW: 1, NCHW: true},
			want: Pad4{Left: 1, Right: 1, Top: 0, Bottom: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SamePadding(tt.legacy, tt.pad, tt.w))
		})
	}
}
