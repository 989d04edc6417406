// Package modeltest builds small IR graphs and component models for tests.
package modeltest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

// Builder accumulates records and links them like the parser does.
type Builder struct {
	t testing.TB
	s *ir.Store
}

// New returns an empty builder.
func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t, s: ir.NewStore()}
}

// Tensor adds a tensor without data.
func (b *Builder) Tensor(idx int32, name string, dt tensor.DataType, shape ...int32) *Builder {
	b.t.Helper()
	b.add(ir.Tensor{Index: idx, Name: name, Type: dt, Shape: shape, FD: -1})
	return b
}

// Const adds a tensor holding data.
func (b *Builder) Const(idx int32, name string, dt tensor.DataType, data []byte, shape ...int32) *Builder {
	b.t.Helper()
	b.add(ir.Tensor{Index: idx, Name: name, Type: dt, Shape: shape, Data: data, FD: -1})
	return b
}

// Scalar adds a per-session scalar tensor.
func (b *Builder) Scalar(idx int32, name string, dt tensor.DataType, shape ...int32) *Builder {
	b.t.Helper()
	b.add(ir.Tensor{Index: idx, Name: name, Type: dt, Shape: shape, FD: -1, IsScalar: true})
	return b
}

// Quantized sets the asymmetric quantization of an existing tensor.
func (b *Builder) Quantized(idx int32, scale float32, zeroPoint int64) *Builder {
	b.t.Helper()
	t, ok := b.s.Tensor(idx)
	require.True(b.t, ok, "tensor %d", idx)
	t.Quant = &ir.Quantization{Scale: []float32{scale}, ZeroPoint: []int64{zeroPoint}}
	return b
}

func (b *Builder) add(t ir.Tensor) {
	b.t.Helper()
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	t.Size = n * t.Type.Size()
	t.Prev = ir.Undefined
	require.NoError(b.t, ir.AddTensor(b.s, t))
}

// Op adds an operator and returns its position. Builtin operators pass their
// code; custom operators pass ir.Undefined and a name.
func (b *Builder) Op(code int32, name string, accel ir.Accelerator, inputs, outputs []int32) int {
	b.t.Helper()
	if code != ir.Undefined && name == "" {
		name = nnc.BuiltinOperator(code).String()
	}
	pos, err := ir.AddOperator(b.s, ir.Operator{
		Index:        int32(len(b.s.Operators())),
		Code:         code,
		Name:         name,
		Accelerator:  accel,
		Inputs:       inputs,
		Outputs:      outputs,
		OptionsIndex: ir.Undefined,
	})
	require.NoError(b.t, err)
	return pos
}

// Options attaches an option table to the operator at pos.
func (b *Builder) Options(pos int, o nnc.OptionsT) *Builder {
	b.t.Helper()
	require.NoError(b.t, ir.AddOperatorOptions(b.s, ir.OperatorOptions{
		OperatorIndex: int32(pos),
		Number:        int32(o.Type()),
		Name:          o.Type().String(),
		Table:         nnc.OptionsTable(o),
	}))
	return b
}

// RawOptions attaches a packed legacy option layout to the operator at pos.
func (b *Builder) RawOptions(pos int, number nnc.BuiltinOptions, raw []byte) *Builder {
	b.t.Helper()
	require.NoError(b.t, ir.AddOperatorOptions(b.s, ir.OperatorOptions{
		OperatorIndex: int32(pos),
		Number:        int32(number),
		Name:          number.String(),
		Raw:           raw,
	}))
	return b
}

// Binary adds a device binary and attaches it to the operators at pos.
func (b *Builder) Binary(bin ir.Binary, pos ...int) *Builder {
	b.t.Helper()
	require.NoError(b.t, ir.AddBinary(b.s, bin))
	for _, p := range pos {
		op, ok := b.s.Operator(p)
		require.True(b.t, ok, "operator %d", p)
		require.NoError(b.t, ir.SetOperatorEdges(b.s, p, op.Inputs, op.Outputs, append(op.Binaries, bin.Index)))
	}
	return b
}

// NPUOptions adds an NPU option record.
func (b *Builder) NPUOptions(o ir.NPUOptions) *Builder {
	b.t.Helper()
	require.NoError(b.t, ir.AddNPUOptions(b.s, o))
	return b
}

// ModelOption sets the model-wide compilation hints.
func (b *Builder) ModelOption(legacy ir.LegacyModel, relax bool) *Builder {
	b.t.Helper()
	require.NoError(b.t, ir.SetModelOption(b.s, ir.ModelOption{LegacyModel: legacy, RelaxFloat32ToFloat16: relax}))
	return b
}

// Graph links adjacency from the operator edges, records the boundary and
// freezes the store.
func (b *Builder) Graph(inputs, outputs []int32) *ir.Graph {
	b.t.Helper()
	for pos, op := range b.s.Operators() {
		for _, idx := range op.Inputs {
			if idx != ir.Undefined {
				require.NoError(b.t, ir.AddNextOperator(b.s, idx, int32(pos)))
			}
		}
		for _, idx := range op.Outputs {
			require.NoError(b.t, ir.SetPrevOperator(b.s, idx, int32(pos)))
		}
	}
	for i, o := range b.s.OperatorOptions() {
		require.NoError(b.t, ir.SetOperatorOptionsIndex(b.s, int(o.OperatorIndex), int32(i)))
	}
	require.NoError(b.t, ir.AddGraphInfo(b.s, ir.GraphInfo{Name: "main", Inputs: inputs, Outputs: outputs}))
	require.NoError(b.t, ir.SetAttribute(b.s, ir.Attribute{Version: 3, ModelType: ir.ModelTypeNNC}))
	return ir.NewGraph(b.s, [32]byte{})
}

// Model builds the graph and generates its component model.
func (b *Builder) Model(inputs, outputs []int32) *model.Model {
	b.t.Helper()
	m, err := model.Generate(b.Graph(inputs, outputs))
	require.NoError(b.t, err)
	return m
}
