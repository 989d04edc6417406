package cpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/dispatch"
	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model/modeltest"
	"github.com/born-ml/modelir/internal/parallel"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

func floats(v ...float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

func int32s(v ...int32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(x))
	}
	return b
}

func TestCPUBackend_New(t *testing.T) {
	cpu := New(WithStorage(tensor.StorageTexture), WithWorkers(1))
	assert.Equal(t, "CPU", cpu.Name())
	assert.Equal(t, tensor.CPU, cpu.Device())
	assert.Equal(t, tensor.StorageTexture, cpu.Pool().Class())
}

func TestNewConstNarrowsToHalf(t *testing.T) {
	cpu := New()
	spec := tensor.Spec{Name: "w", Shape: tensor.Shape{4}, DType: tensor.Float32, Precision: tensor.FP16, BufferIndex: -1}

	rt, err := cpu.NewConst(spec, floats(1, -2.5, 0.5, 65504))
	require.NoError(t, err)
	assert.Len(t, rt.Data(), 8)
	assert.Equal(t, []float32{1, -2.5, 0.5, 65504}, Half(rt.Data()))
}

func TestNewConstKeepsOtherPrecisions(t *testing.T) {
	cpu := New()

	rt, err := cpu.NewConst(tensor.Spec{Shape: tensor.Shape{2}, DType: tensor.Float32, Precision: tensor.FP32}, floats(1, 2))
	require.NoError(t, err)
	assert.Equal(t, floats(1, 2), rt.Data())

	rt, err = cpu.NewConst(tensor.Spec{Shape: tensor.Shape{2}, DType: tensor.Int32, Precision: tensor.FP32}, int32s(7, -1))
	require.NoError(t, err)
	assert.Equal(t, int32s(7, -1), rt.Data())
}

func TestToHalfParallel(t *testing.T) {
	n := 1000
	in := make([]float32, n)
	for i := range in {
		in[i] = float32(i) / 4
	}
	out := Half(toHalf(floats(in...), parallel.WithWorkers(4)))
	assert.Equal(t, in, out)
}

func TestRecycleReusesStorage(t *testing.T) {
	cpu := New()
	spec := tensor.Spec{Shape: tensor.Shape{1, 16}, DType: tensor.Float32, Precision: tensor.FP32}

	a, err := cpu.New(spec)
	require.NoError(t, err)
	cpu.Recycle(a)
	b, err := cpu.New(spec)
	require.NoError(t, err)

	assert.Same(t, a.Storage(), b.Storage())
	stats := cpu.Pool().Stats()
	assert.Equal(t, 1, stats.Allocated)
	assert.Equal(t, 1, stats.Reused)
}

// handmade builds a node whose tensors come straight from the pool.
type handmade struct {
	t   *testing.T
	cpu *CPUBackend
}

func (h handmade) tensor(shape ...int) *tensor.RawTensor {
	h.t.Helper()
	rt, err := h.cpu.New(tensor.Spec{Shape: shape, DType: tensor.Float32, Precision: tensor.FP32})
	require.NoError(h.t, err)
	return rt
}

func (h handmade) node(k dispatch.Kernel, in []*tensor.RawTensor, out *tensor.RawTensor, params dispatch.Params) *dispatch.Node {
	if params == nil {
		params = dispatch.Params{}
	}
	return &dispatch.Node{Name: string(k), Kernel: k, Inputs: in, Outputs: []*tensor.RawTensor{out}, Params: params}
}

func TestInitialize(t *testing.T) {
	h := handmade{t: t, cpu: New(WithWorkers(1))}

	convParams := func(pad dispatch.Pad4) dispatch.Params {
		return dispatch.Params{
			dispatch.ParamStride:   []int32{1, 1},
			dispatch.ParamDilation: []int32{1, 1},
			dispatch.ParamPadding:  pad,
		}
	}
	same := dispatch.Pad4{Left: 1, Right: 1, Top: 1, Bottom: 1}

	tests := []struct {
		name string
		node *dispatch.Node
		want error
	}{
		{
			name: "add broadcasts",
			node: h.node(dispatch.KernelAdd, []*tensor.RawTensor{h.tensor(1, 4, 4, 3), h.tensor(3)}, h.tensor(1, 4, 4, 3), nil),
		},
		{
			name: "add mismatch",
			node: h.node(dispatch.KernelAdd, []*tensor.RawTensor{h.tensor(1, 4), h.tensor(3)}, h.tensor(1, 4), nil),
			want: ErrShapeMismatch,
		},
		{
			name: "conv same",
			node: h.node(dispatch.KernelConv2D,
				[]*tensor.RawTensor{h.tensor(1, 8, 8, 3), h.tensor(4, 3, 3, 3), h.tensor(4)},
				h.tensor(1, 8, 8, 4), convParams(same)),
		},
		{
			name: "conv without padding cannot keep the size",
			node: h.node(dispatch.KernelConv2D,
				[]*tensor.RawTensor{h.tensor(1, 8, 8, 3), h.tensor(4, 3, 3, 3)},
				h.tensor(1, 8, 8, 4), convParams(dispatch.Pad4{})),
			want: ErrShapeMismatch,
		},
		{
			name: "conv bias count",
			node: h.node(dispatch.KernelConv2D,
				[]*tensor.RawTensor{h.tensor(1, 8, 8, 3), h.tensor(4, 3, 3, 3), h.tensor(5)},
				h.tensor(1, 8, 8, 4), convParams(same)),
			want: ErrShapeMismatch,
		},
		{
			name: "conv zero stride",
			node: h.node(dispatch.KernelConv2D,
				[]*tensor.RawTensor{h.tensor(1, 8, 8, 3), h.tensor(4, 3, 3, 3)},
				h.tensor(1, 8, 8, 4), dispatch.Params{dispatch.ParamStride: []int32{0, 1}}),
			want: ErrBadParameter,
		},
		{
			name: "depthwise multiplier",
			node: h.node(dispatch.KernelDepthwiseConv,
				[]*tensor.RawTensor{h.tensor(1, 3, 8, 8), h.tensor(6, 1, 3, 3)},
				h.tensor(1, 6, 8, 8), func() dispatch.Params {
					p := convParams(same)
					p[dispatch.ParamNCHW] = true
					p[dispatch.ParamDepthMultiply] = int32(2)
					return p
				}()),
		},
		{
			name: "max pool",
			node: h.node(dispatch.KernelMaxPool, []*tensor.RawTensor{h.tensor(1, 8, 8, 3)}, h.tensor(1, 4, 4, 3),
				dispatch.Params{dispatch.ParamStride: []int32{2, 2}, dispatch.ParamFilter: []int32{2, 2}}),
		},
		{
			name: "concat",
			node: h.node(dispatch.KernelConcat, []*tensor.RawTensor{h.tensor(1, 2, 4), h.tensor(1, 3, 4)}, h.tensor(1, 5, 4),
				dispatch.Params{dispatch.ParamAxis: int32(-2)}),
		},
		{
			name: "concat sum",
			node: h.node(dispatch.KernelConcat, []*tensor.RawTensor{h.tensor(1, 2, 4), h.tensor(1, 2, 4)}, h.tensor(1, 5, 4),
				dispatch.Params{dispatch.ParamAxis: int32(1)}),
			want: ErrShapeMismatch,
		},
		{
			name: "reshape infers",
			node: h.node(dispatch.KernelReshape, []*tensor.RawTensor{h.tensor(2, 3, 4)}, h.tensor(6, 4),
				dispatch.Params{dispatch.ParamShape: []int32{-1, 4}}),
		},
		{
			name: "reshape size",
			node: h.node(dispatch.KernelReshape, []*tensor.RawTensor{h.tensor(2, 3, 4)}, h.tensor(5, 4),
				dispatch.Params{dispatch.ParamShape: []int32{5, 4}}),
			want: ErrShapeMismatch,
		},
		{
			name: "transpose permutation",
			node: h.node(dispatch.KernelTranspose, []*tensor.RawTensor{h.tensor(2, 3)}, h.tensor(3, 2),
				dispatch.Params{dispatch.ParamPerm: []int32{1, 1}}),
			want: ErrBadParameter,
		},
		{
			name: "softmax axis",
			node: h.node(dispatch.KernelSoftmax, []*tensor.RawTensor{h.tensor(1, 10)}, h.tensor(1, 10),
				dispatch.Params{dispatch.ParamAxis: int32(2)}),
			want: ErrBadParameter,
		},
		{
			name: "symmetric quantize needs fractional length",
			node: h.node(dispatch.KernelQuantize, []*tensor.RawTensor{h.tensor(1, 4)}, h.tensor(1, 4),
				dispatch.Params{dispatch.ParamSymmetric: true}),
			want: ErrBadParameter,
		},
		{
			name: "asymmetric quantize scale",
			node: h.node(dispatch.KernelQuantize, []*tensor.RawTensor{h.tensor(1, 4)}, h.tensor(1, 4),
				dispatch.Params{dispatch.ParamScale: float32(0)}),
			want: ErrBadParameter,
		},
		{
			name: "cfu layout",
			node: h.node(dispatch.KernelCFUInvert, []*tensor.RawTensor{h.tensor(1, 4)}, h.tensor(1, 4),
				dispatch.Params{dispatch.ParamColsInCell: int32(1), dispatch.ParamLinesInCell: int32(1), dispatch.ParamInterleaved: int32(16)}),
		},
		{
			name: "unknown kernel",
			node: h.node(dispatch.Kernel("Gather"), []*tensor.RawTensor{h.tensor(1, 4)}, h.tensor(1, 4), nil),
			want: ErrUnsupportedKernel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.cpu.Initialize(tt.node)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Nil(t, tt.node.State)
				return
			}
			require.NoError(t, err)
			p, ok := tt.node.State.(*Plan)
			require.True(t, ok)
			assert.Equal(t, tt.node.Kernel, p.Kernel)
			assert.Equal(t, tt.node.Outputs[0].NumElements(), p.Work)
			assert.Equal(t, 1, p.Chunks)
		})
	}
}

func TestChunks(t *testing.T) {
	cfg := parallel.WithWorkers(4)
	assert.Equal(t, 1, chunks(10, cfg))
	assert.Equal(t, 4, chunks(1000, cfg))
	assert.Equal(t, 1, chunks(1000, parallel.WithWorkers(1)))
}

func TestCompileWithConstructor(t *testing.T) {
	b := modeltest.New(t).
		Tensor(0, "in", tensor.Float32, 1, 8, 8, 3).
		Const(1, "weights", tensor.Float32, make([]byte, 4*4*3*3*3), 4, 3, 3, 3).
		Const(2, "bias", tensor.Float32, make([]byte, 4*4), 4).
		Tensor(3, "conv", tensor.Float32, 1, 8, 8, 4).
		Tensor(4, "pool", tensor.Float32, 1, 4, 4, 4).
		Tensor(5, "out", tensor.Float32, 1, 64).
		ModelOption(ir.LegacyTensorflowNHWC, true)
	conv := b.Op(int32(nnc.OpConv2D), "", ir.AccelCPU, []int32{0, 1, 2}, []int32{3})
	b.Options(conv, &nnc.Conv2DOptionsT{Padding: nnc.PaddingSame, StrideW: 1, StrideH: 1})
	pool := b.Op(int32(nnc.OpMaxPool2D), "", ir.AccelCPU, []int32{3}, []int32{4})
	b.Options(pool, &nnc.Pool2DOptionsT{Padding: nnc.PaddingValid, StrideW: 2, StrideH: 2, FilterWidth: 2, FilterHeight: 2})
	reshape := b.Op(int32(nnc.OpReshape), "", ir.AccelCPU, []int32{4}, []int32{5})
	b.Options(reshape, &nnc.ReshapeOptionsT{NewShape: []int32{1, -1}})
	m := b.Model([]int32{0}, []int32{5})

	cpu := New()
	c := dispatch.NewConstructor(cpu)
	nodes, err := c.Open(m.Lists[0])
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	for _, n := range nodes {
		assert.Equal(t, tensor.FP16, n.Precision)
		assert.IsType(t, &Plan{}, n.State)
	}
	// Relaxed weights are stored as float16.
	assert.Len(t, nodes[0].Inputs[1].Data(), 2*4*3*3*3)
	assert.Equal(t, map[dispatch.Kernel]int{
		dispatch.KernelConv2D:  1,
		dispatch.KernelMaxPool: 1,
		dispatch.KernelReshape: 1,
	}, cpu.Kernels())
	assert.Equal(t, 2, c.Stats().Released)
}
