package dispatch

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/model/modeltest"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

// recordingLibrary allocates from a pool and records every initialized node.
type recordingLibrary struct {
	*tensor.Pool
	mu    sync.Mutex
	nodes []*Node
	fail  Kernel
}

func newLibrary() *recordingLibrary {
	return &recordingLibrary{Pool: tensor.NewPool(tensor.StorageBuffer)}
}

func (l *recordingLibrary) Device() tensor.Device { return tensor.CPU }

func (l *recordingLibrary) Initialize(n *Node) error {
	if n.Kernel == l.fail {
		return errors.New("kernel rejected")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nodes = append(l.nodes, n)
	return nil
}

func compile(t *testing.T, m *model.Model, opts ...Option) ([]*Node, *Constructor, error) {
	t.Helper()
	require.Len(t, m.Lists, 1)
	c := NewConstructor(newLibrary(), opts...)
	nodes, err := c.Open(m.Lists[0])
	return nodes, c, err
}

// single builds in(0) -op-> out(1) plus any extra constant inputs.
func single(t *testing.T, code nnc.BuiltinOperator, opts nnc.OptionsT, shape ...int32) *modeltest.Builder {
	b := modeltest.New(t).
		Tensor(0, "in", tensor.Float32, shape...).
		Tensor(1, "out", tensor.Float32, shape...)
	pos := b.Op(int32(code), "", ir.AccelCPU, []int32{0}, []int32{1})
	if opts != nil {
		b.Options(pos, opts)
	}
	return b
}

func TestOpenChainSharesHandles(t *testing.T) {
	b := modeltest.New(t)
	for i := int32(0); i < 4; i++ {
		b.Tensor(i, "", tensor.Float32, 1, 8)
	}
	b.Op(int32(nnc.OpRelu), "", ir.AccelCPU, []int32{0}, []int32{1})
	b.Op(int32(nnc.OpTanh), "", ir.AccelCPU, []int32{1}, []int32{2})
	b.Op(int32(nnc.OpLogistic), "", ir.AccelCPU, []int32{2}, []int32{3})
	m := b.Model([]int32{0}, []int32{3})

	nodes, c, err := compile(t, m)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, []string{"RELU", "TANH", "LOGISTIC"}, []string{nodes[0].Name, nodes[1].Name, nodes[2].Name})
	for _, n := range nodes {
		assert.Equal(t, KernelActivation, n.Kernel)
	}
	assert.Equal(t, int32(nnc.ActivationTanh), nodes[1].Params.Int(ParamActivation, -1))

	// Producer and consumer see the same handle.
	assert.Same(t, nodes[0].Outputs[0], nodes[1].Inputs[0])
	assert.Same(t, nodes[1].Outputs[0], nodes[2].Inputs[0])

	// The first intermediate was released once TANH was built and its
	// storage went to the output of LOGISTIC.
	assert.True(t, nodes[0].Outputs[0].Recycled())
	assert.Same(t, nodes[0].Outputs[0].Storage(), nodes[2].Outputs[0].Storage())
	assert.Equal(t, 2, c.Stats().Released)
}

func TestOpenConv2D(t *testing.T) {
	b := modeltest.New(t).
		Tensor(0, "in", tensor.Float32, 1, 8, 8, 3).
		Const(1, "weights", tensor.Float32, make([]byte, 4*4*3*3*3), 4, 3, 3, 3).
		Const(2, "bias", tensor.Float32, make([]byte, 4*4), 4).
		Tensor(3, "out", tensor.Float32, 1, 8, 8, 4).
		ModelOption(ir.LegacyTensorflowNHWC, false)
	conv := b.Op(int32(nnc.OpConv2D), "", ir.AccelCPU, []int32{0, 1, 2}, []int32{3})
	b.Options(conv, &nnc.Conv2DOptionsT{
		Padding:         nnc.PaddingSame,
		StrideW:         1,
		StrideH:         1,
		FusedActivation: nnc.ActivationRelu,
	})
	m := b.Model([]int32{0}, []int32{3})

	nodes, _, err := compile(t, m)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	n := nodes[0]
	assert.Equal(t, KernelConv2D, n.Kernel)
	require.Len(t, n.Inputs, 3)
	assert.Equal(t, -1, n.Inputs[1].BufferIndex())
	assert.Equal(t, []int32{1, 1}, n.Params.Ints(ParamStride))
	assert.Equal(t, []int32{1, 1}, n.Params.Ints(ParamDilation))
	assert.Equal(t, Pad4{Left: 1, Right: 1, Top: 1, Bottom: 1}, n.Params.Pad(ParamPadding))
	assert.False(t, n.Params.Bool(ParamNCHW))
	assert.Equal(t, int32(nnc.ActivationRelu), n.Params.Int(ParamActivation, -1))
}

func TestOpenConv2DAndroidNNExplicitPadding(t *testing.T) {
	b := modeltest.New(t).
		Tensor(0, "in", tensor.Float32, 1, 3, 8, 8).
		Const(1, "weights", tensor.Float32, make([]byte, 4*4*3*3*3), 4, 3, 3, 3).
		Tensor(2, "out", tensor.Float32, 1, 4, 8, 8).
		ModelOption(ir.LegacyAndroidNN, false)
	conv := b.Op(int32(nnc.OpConv2D), "", ir.AccelCPU, []int32{0, 1, ir.Undefined}, []int32{2})
	b.Options(conv, &nnc.Conv2DOptionsT{StrideW: 1, StrideH: 1, PaddingValue: []int32{2, 0, 1, 3}, UseNCHW: true})
	m := b.Model([]int32{0}, []int32{2})

	nodes, _, err := compile(t, m)
	require.NoError(t, err)
	n := nodes[0]
	assert.Nil(t, n.Input(2))
	assert.Equal(t, Pad4{Left: 2, Right: 0, Top: 1, Bottom: 3}, n.Params.Pad(ParamPadding))
	assert.True(t, n.Params.Bool(ParamNCHW))
	assert.True(t, n.Params.Bool(ParamAndroidNN))
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *model.Model
		want  error
	}{
		{
			name: "unsupported builtin",
			build: func(t *testing.T) *model.Model {
				return single(t, nnc.OpSqueeze, nil, 1, 4).Model([]int32{0}, []int32{1})
			},
			want: ir.ErrUnsupportedOperator,
		},
		{
			name: "missing option",
			build: func(t *testing.T) *model.Model {
				return single(t, nnc.OpSoftmax, nil, 1, 4).Model([]int32{0}, []int32{1})
			},
			want: ir.ErrMissingOption,
		},
		{
			name: "option tag mismatch",
			build: func(t *testing.T) *model.Model {
				return single(t, nnc.OpSoftmax, &nnc.FlattenOptionsT{}, 1, 4).Model([]int32{0}, []int32{1})
			},
			want: ErrInvalidOption,
		},
		{
			name: "name does not match code",
			build: func(t *testing.T) *model.Model {
				b := modeltest.New(t).
					Tensor(0, "in", tensor.Float32, 1, 4).
					Tensor(1, "out", tensor.Float32, 1, 4)
				b.Op(int32(nnc.OpRelu), "TANH", ir.AccelCPU, []int32{0}, []int32{1})
				return b.Model([]int32{0}, []int32{1})
			},
			want: ErrInvalidOperator,
		},
		{
			name: "invalid shape",
			build: func(t *testing.T) *model.Model {
				return single(t, nnc.OpRelu, nil, 1, 2, 3, 4, 5).Model([]int32{0}, []int32{1})
			},
			want: ir.ErrInvalidShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, _, err := compile(t, tt.build(t))
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, nodes)
		})
	}
}

func TestFailedListLeavesNoCache(t *testing.T) {
	b := modeltest.New(t)
	for i := int32(0); i < 3; i++ {
		b.Tensor(i, "", tensor.Float32, 1, 8)
	}
	b.Op(int32(nnc.OpRelu), "", ir.AccelCPU, []int32{0}, []int32{1})
	b.Op(int32(nnc.OpSqueeze), "", ir.AccelCPU, []int32{1}, []int32{2})
	m := b.Model([]int32{0}, []int32{2})

	c := NewConstructor(newLibrary())
	_, err := c.Open(m.Lists[0])
	require.ErrorIs(t, err, ir.ErrUnsupportedOperator)

	_, ok := c.arena.Cached(1)
	assert.False(t, ok)
	assert.False(t, c.arena.Live(1))
}

func TestInitializeFailureAbortsList(t *testing.T) {
	m := single(t, nnc.OpSoftmax, &nnc.SoftmaxOptionsT{Beta: 1}, 1, 4).Model([]int32{0}, []int32{1})
	lib := newLibrary()
	lib.fail = KernelSoftmax
	c := NewConstructor(lib)

	nodes, err := c.Open(m.Lists[0])
	assert.ErrorIs(t, err, ErrInitialize)
	assert.Nil(t, nodes)
}

func TestSoftmaxOptions(t *testing.T) {
	m := single(t, nnc.OpSoftmax, &nnc.SoftmaxOptionsT{Beta: 2, Axis: -1}, 1, 10).Model([]int32{0}, []int32{1})
	nodes, _, err := compile(t, m)
	require.NoError(t, err)
	assert.Equal(t, float32(2), nodes[0].Params.Float(ParamBeta, 0))
	assert.Equal(t, int32(-1), nodes[0].Params.Int(ParamAxis, 0))
}

func TestSoftmaxLegacyRawOption(t *testing.T) {
	b := single(t, nnc.OpSoftmax, nil, 1, 10)
	b.RawOptions(0, nnc.OptionsSoftmax, SoftmaxRaw(0.5, 1))
	m := b.Model([]int32{0}, []int32{1})

	nodes, _, err := compile(t, m)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), nodes[0].Params.Float(ParamBeta, 0))
	assert.Equal(t, int32(1), nodes[0].Params.Int(ParamAxis, 0))
}

func TestQuantize(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		m := single(t, nnc.OpQuantize, &nnc.QuantizeOptionsT{
			QuantType:        nnc.QuantSymm,
			FractionalLength: []int32{3, 4},
		}, 1, 2, 2, 2).Model([]int32{0}, []int32{1})

		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		n := nodes[0]
		assert.Equal(t, KernelQuantize, n.Kernel)
		assert.True(t, n.Params.Bool(ParamSymmetric))
		require.Len(t, n.Data, 1)
		assert.Equal(t, tensor.Int32, n.Data[0].DType())
		assert.Equal(t, int32Bytes([]int32{3, 4}), n.Data[0].Data())
	})

	t.Run("asymmetric dequantize", func(t *testing.T) {
		m := single(t, nnc.OpDequantize, &nnc.QuantizeOptionsT{
			Tag:             nnc.OptionsDequantize,
			QuantType:       nnc.QuantAsymm,
			ScaleOut:        []float32{0.5, 9},
			ZeroPointOutput: []int32{128, 9},
		}, 1, 4).Model([]int32{0}, []int32{1})

		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		n := nodes[0]
		assert.Equal(t, KernelDequantize, n.Kernel)
		assert.False(t, n.Params.Bool(ParamSymmetric))
		assert.Equal(t, float32(0.5), n.Params.Float(ParamScale, 0))
		assert.Equal(t, int32(128), n.Params.Int(ParamZeroPoint, 0))
		assert.Empty(t, n.Data)
	})

	t.Run("asymmetric without scale", func(t *testing.T) {
		m := single(t, nnc.OpQuantize, &nnc.QuantizeOptionsT{QuantType: nnc.QuantAsymm}, 1, 4).
			Model([]int32{0}, []int32{1})
		_, _, err := compile(t, m)
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("legacy raw", func(t *testing.T) {
		b := single(t, nnc.OpQuantize, nil, 1, 4)
		b.RawOptions(0, nnc.OptionsQuantize, QuantizeRaw(nnc.QuantAsymm, 0, 0.25, 3))
		nodes, _, err := compile(t, b.Model([]int32{0}, []int32{1}))
		require.NoError(t, err)
		assert.Equal(t, float32(0.25), nodes[0].Params.Float(ParamScale, 0))
		assert.Equal(t, int32(3), nodes[0].Params.Int(ParamZeroPoint, 0))
	})
}

func TestNormalization(t *testing.T) {
	m := single(t, nnc.OpENNNormalization, &nnc.NormalizationOptionsT{
		Mean:         []float32{1, 2, 3},
		Scale:        []float32{0.5, 0.5, 0.5},
		BGRTranspose: true,
	}, 1, 3, 4, 4).Model([]int32{0}, []int32{1})

	nodes, _, err := compile(t, m)
	require.NoError(t, err)
	n := nodes[0]
	require.Len(t, n.Data, 2)
	assert.Equal(t, float32Bytes([]float32{1, 2, 3}), n.Data[0].Data())
	assert.True(t, n.Params.Bool(ParamBGRTranspose))
}

func TestInverseCFU(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		m := single(t, nnc.OpENNInverseCFU, &nnc.CFUOptionsT{
			Tag: nnc.OptionsENNInverseCFU, ColsInCell: 8, LinesInCell: 4, InterleavedSlices: 2,
		}, 1, 4, 4, 4).Model([]int32{0}, []int32{1})
		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		assert.Equal(t, int32(8), nodes[0].Params.Int(ParamColsInCell, 0))
		assert.Equal(t, int32(2), nodes[0].Params.Int(ParamInterleaved, 0))
	})

	t.Run("legacy raw", func(t *testing.T) {
		b := single(t, nnc.OpENNInverseCFU, nil, 1, 4, 4, 4)
		b.RawOptions(0, nnc.OptionsENNInverseCFU, InverseCFURaw(4, 4, 1))
		nodes, _, err := compile(t, b.Model([]int32{0}, []int32{1}))
		require.NoError(t, err)
		assert.Equal(t, int32(4), nodes[0].Params.Int(ParamLinesInCell, 0))
		assert.Equal(t, int32(1), nodes[0].Params.Int(ParamInterleaved, 0))
	})
}

func TestDetectionNeedsPriorBox(t *testing.T) {
	build := func(t *testing.T, prior bool) *model.Model {
		b := modeltest.New(t).
			Tensor(0, "loc", tensor.Float32, 1, 16).
			Tensor(2, "out", tensor.Float32, 1, 1, 10, 7)
		inputs := []int32{0}
		if prior {
			b.Const(1, ParamNamePriorBox, tensor.Float32, make([]byte, 4*32), 1, 2, 16)
			inputs = append(inputs, 1)
		}
		pos := b.Op(int32(nnc.OpENNDetection), "", ir.AccelCPU, inputs, []int32{2})
		b.Options(pos, &nnc.DetectionOptionsT{NumClasses: 21, KeepTopK: 10, NMSThreshold: 0.45})
		return b.Model([]int32{0}, []int32{2})
	}

	_, _, err := compile(t, build(t, false))
	assert.ErrorIs(t, err, ErrInvalidParam)

	nodes, _, err := compile(t, build(t, true))
	require.NoError(t, err)
	n := nodes[0]
	assert.Len(t, n.Inputs, 1)
	assert.Len(t, n.Data, 1)
	assert.Equal(t, int32(21), n.Params.Int(ParamNumClasses, 0))
	assert.Equal(t, float32(0.45), n.Params.Float(ParamNMSThreshold, 0))
}

func TestShapeOps(t *testing.T) {
	t.Run("reshape from option", func(t *testing.T) {
		b := modeltest.New(t).
			Tensor(0, "in", tensor.Float32, 1, 2, 3).
			Tensor(1, "out", tensor.Float32, 1, 6)
		pos := b.Op(int32(nnc.OpReshape), "", ir.AccelCPU, []int32{0}, []int32{1})
		b.Options(pos, &nnc.ReshapeOptionsT{NewShape: []int32{1, 6}})
		nodes, _, err := compile(t, b.Model([]int32{0}, []int32{1}))
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 6}, nodes[0].Params.Ints(ParamShape))
	})

	t.Run("reshape from output", func(t *testing.T) {
		b := modeltest.New(t).
			Tensor(0, "in", tensor.Float32, 1, 2, 3).
			Tensor(1, "out", tensor.Float32, 6)
		b.Op(int32(nnc.OpReshape), "", ir.AccelCPU, []int32{0}, []int32{1})
		nodes, _, err := compile(t, b.Model([]int32{0}, []int32{1}))
		require.NoError(t, err)
		assert.Equal(t, []int32{6}, nodes[0].Params.Ints(ParamShape))
	})

	t.Run("pad", func(t *testing.T) {
		b := modeltest.New(t).
			Tensor(0, "in", tensor.Float32, 1, 2, 2, 1).
			Const(1, "paddings", tensor.Int32, int32Bytes([]int32{0, 0, 1, 1, 2, 0, 0, 0}), 4, 2).
			Tensor(2, "out", tensor.Float32, 1, 4, 4, 1)
		b.Op(int32(nnc.OpPad), "", ir.AccelCPU, []int32{0, 1}, []int32{2})
		nodes, _, err := compile(t, b.Model([]int32{0}, []int32{2}))
		require.NoError(t, err)
		assert.Equal(t, []int32{0, 1, 2, 0}, nodes[0].Params.Ints(ParamPadFront))
		assert.Equal(t, []int32{0, 1, 0, 0}, nodes[0].Params.Ints(ParamPadEnd))
		assert.Equal(t, []float32{0}, nodes[0].Params.Floats(ParamPadValue))
	})

	t.Run("transpose needs a permutation", func(t *testing.T) {
		nodes, _, err := compile(t, single(t, nnc.OpTranspose, nil, 2, 3).Model([]int32{0}, []int32{1}))
		assert.ErrorIs(t, err, ErrInvalidParam)
		assert.Nil(t, nodes)
	})
}

func TestCustomOperators(t *testing.T) {
	custom := func(t *testing.T, name string, params func(b *modeltest.Builder) []int32) *model.Model {
		b := modeltest.New(t).
			Tensor(0, "in", tensor.Float32, 1, 2, 4, 4).
			Tensor(1, "out", tensor.Float32, 1, 2, 4, 4)
		inputs := append([]int32{0}, params(b)...)
		b.Op(ir.Undefined, name, ir.AccelCPU, inputs, []int32{1})
		return b.Model([]int32{0}, []int32{1})
	}

	t.Run("asymmetric quantization", func(t *testing.T) {
		m := custom(t, "AsymmQuantization", func(b *modeltest.Builder) []int32 {
			b.Const(10, ParamNameScale, tensor.Float32, float32Bytes([]float32{0.125}), 1)
			b.Const(11, ParamNameZeroPoint, tensor.Int32, int32Bytes([]int32{7}), 1)
			return []int32{10, 11}
		})
		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		n := nodes[0]
		assert.Equal(t, KernelQuantize, n.Kernel)
		assert.Len(t, n.Inputs, 1, "reserved parameters are not inputs")
		assert.Equal(t, float32(0.125), n.Params.Float(ParamScale, 0))
		assert.Equal(t, int32(7), n.Params.Int(ParamZeroPoint, 0))
	})

	t.Run("softmax defaults", func(t *testing.T) {
		m := custom(t, "SOFTMAX", func(b *modeltest.Builder) []int32 {
			b.Const(10, ParamNameBeta, tensor.Float32, float32Bytes([]float32{1.5}), 1)
			return []int32{10}
		})
		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		assert.Equal(t, float32(1.5), nodes[0].Params.Float(ParamBeta, 0))
		assert.Equal(t, int32(0), nodes[0].Params.Int(ParamAxis, -1))
	})

	t.Run("pad", func(t *testing.T) {
		m := custom(t, "Pad", func(b *modeltest.Builder) []int32 {
			b.Const(10, ParamNamePadFront, tensor.Int32, int32Bytes([]int32{0, 1, 1}), 3)
			b.Const(11, ParamNamePadEnd, tensor.Int32, int32Bytes([]int32{0, 1, 1}), 3)
			b.Const(12, ParamNamePadValue, tensor.Float32, float32Bytes([]float32{-1}), 1)
			return []int32{10, 11, 12}
		})
		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		assert.Equal(t, []int32{0, 1, 1}, nodes[0].Params.Ints(ParamPadFront))
		assert.Equal(t, []float32{-1}, nodes[0].Params.Floats(ParamPadValue))
	})

	t.Run("dequantization needs fractional length", func(t *testing.T) {
		m := custom(t, "Dequantization", func(*modeltest.Builder) []int32 { return nil })
		_, _, err := compile(t, m)
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("normalization", func(t *testing.T) {
		m := custom(t, "Normalization", func(b *modeltest.Builder) []int32 {
			b.Const(10, ParamNameMean, tensor.Float32, float32Bytes([]float32{1, 2}), 2)
			b.Const(11, ParamNameScale, tensor.Float32, float32Bytes([]float32{3, 4}), 2)
			return []int32{10, 11}
		})
		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		require.Len(t, nodes[0].Data, 2)
		assert.Equal(t, float32Bytes([]float32{3, 4}), nodes[0].Data[1].Data())
	})

	t.Run("inverse cfu", func(t *testing.T) {
		m := custom(t, "InverseCFU", func(*modeltest.Builder) []int32 { return nil })
		nodes, _, err := compile(t, m)
		require.NoError(t, err)
		assert.Equal(t, KernelCFUInvert, nodes[0].Kernel)
		assert.Equal(t, int32(16), nodes[0].Params.Int(ParamInterleaved, 0))
	})

	t.Run("unknown", func(t *testing.T) {
		m := custom(t, "SigDet", func(*modeltest.Builder) []int32 { return nil })
		_, _, err := compile(t, m)
		assert.ErrorIs(t, err, ir.ErrUnsupportedOperator)
	})
}

func TestRelaxPrecision(t *testing.T) {
	build := func(t *testing.T) *model.Model {
		return single(t, nnc.OpRelu, nil, 1, 4).
			ModelOption(ir.LegacyCaffe, true).
			Model([]int32{0}, []int32{1})
	}

	nodes, _, err := compile(t, build(t))
	require.NoError(t, err)
	assert.Equal(t, tensor.FP16, nodes[0].Precision)
	assert.Equal(t, tensor.FP16, nodes[0].Outputs[0].Precision())

	nodes, _, err = compile(t, build(t), WithForceFP32(true))
	require.NoError(t, err)
	assert.Equal(t, tensor.FP32, nodes[0].Precision)
}

func TestCloseDropsCache(t *testing.T) {
	m := single(t, nnc.OpRelu, nil, 1, 4).Model([]int32{0}, []int32{1})
	c := NewConstructor(newLibrary())
	list := m.Lists[0]

	_, err := c.Open(list)
	require.NoError(t, err)
	_, ok := c.arena.Cached(1)
	require.True(t, ok)

	c.Close(list.ID)
	_, ok = c.arena.Cached(1)
	assert.False(t, ok)
}

func TestOpenIsSerialized(t *testing.T) {
	b := modeltest.New(t)
	for i := int32(0); i <= 4; i++ {
		b.Tensor(i, "", tensor.Float32, 1, 4)
	}
	b.Op(int32(nnc.OpRelu), "", ir.AccelCPU, []int32{0}, []int32{1})
	b.Op(int32(nnc.OpENNNPU), "", ir.AccelNPU, []int32{1}, []int32{2})
	b.Op(int32(nnc.OpTanh), "", ir.AccelCPU, []int32{2}, []int32{3})
	b.Op(int32(nnc.OpRelu6), "", ir.AccelCPU, []int32{3}, []int32{4})
	m := b.Model([]int32{0}, []int32{4})
	cpuLists := []*model.OperatorList{m.Lists[0], m.Lists[2]}

	c := NewConstructor(newLibrary())
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Open(cpuLists[i%2])
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}
