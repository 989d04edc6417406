package nnc

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

// Model slots.
const (
	modelVersion = iota
	modelOperatorCodes
	modelSubgraphs
	modelDescription
	modelBuffers
	modelCompatible
	modelRelax
	modelFields
)

// Model is the root table.
type Model struct{ t fbs.Table }

// GetRootAsModel returns the root table of buf.
func GetRootAsModel(buf []byte) Model {
	return Model{fbs.RootTable(buf)}
}

// Version returns the schema version.
func (m Model) Version() uint32 { return m.t.Uint32(modelVersion, 0) }

// Description returns the model description.
func (m Model) Description() string {
	s, _ := m.t.String(modelDescription)
	return s
}

// OperatorCodesLength returns the number of operator codes.
func (m Model) OperatorCodesLength() int { return m.t.Len(modelOperatorCodes) }

// OperatorCodes returns operator code j.
func (m Model) OperatorCodes(j int) OperatorCode {
	return OperatorCode{m.t.At(modelOperatorCodes, j)}
}

// SubgraphsLength returns the number of subgraphs.
func (m Model) SubgraphsLength() int { return m.t.Len(modelSubgraphs) }

// Subgraphs returns subgraph j.
func (m Model) Subgraphs(j int) SubGraph {
	return SubGraph{m.t.At(modelSubgraphs, j)}
}

// BuffersLength returns the number of buffers.
func (m Model) BuffersLength() int { return m.t.Len(modelBuffers) }

// Buffers returns buffer j.
func (m Model) Buffers(j int) Buffer {
	return Buffer{m.t.At(modelBuffers, j)}
}

// Compatible returns the legacy model compatibility list.
func (m Model) Compatible() []int32 { return m.t.Int32s(modelCompatible) }

// Relax reports whether float32 math may run at float16 precision.
func (m Model) Relax() bool { return m.t.Bool(modelRelax, false) }

// OperatorCode slots.
const (
	opcodeBuiltinCode = iota
	opcodeCustomCode
	opcodeVersion
)

// OperatorCode names one operator kind.
type OperatorCode struct{ t fbs.Table }

// BuiltinCode returns the builtin operator code.
func (c OperatorCode) BuiltinCode() BuiltinOperator {
	return BuiltinOperator(c.t.Int32(opcodeBuiltinCode, 0))
}

// CustomCode returns the custom operator name, empty for builtins.
func (c OperatorCode) CustomCode() string {
	s, _ := c.t.String(opcodeCustomCode)
	return s
}

// Version returns the operator version.
func (c OperatorCode) Version() int32 { return c.t.Int32(opcodeVersion, 1) }

// SubGraph slots.
const (
	subgraphTensors = iota
	subgraphInputs
	subgraphOutputs
	subgraphOperators
	subgraphName
)

// SubGraph is one graph of tensors and operators.
type SubGraph struct{ t fbs.Table }

// TensorsLength returns the number of tensors.
func (g SubGraph) TensorsLength() int { return g.t.Len(subgraphTensors) }

// Tensors returns tensor j.
func (g SubGraph) Tensors(j int) Tensor { return Tensor{g.t.At(subgraphTensors, j)} }

// Inputs returns the graph input tensor indexes.
func (g SubGraph) Inputs() []int32 { return g.t.Int32s(subgraphInputs) }

// Outputs returns the graph output tensor indexes.
func (g SubGraph) Outputs() []int32 { return g.t.Int32s(subgraphOutputs) }

// OperatorsLength returns the number of operators.
func (g SubGraph) OperatorsLength() int { return g.t.Len(subgraphOperators) }

// Operators returns operator j.
func (g SubGraph) Operators(j int) Operator { return Operator{g.t.At(subgraphOperators, j)} }

// Name returns the subgraph name; ok is false when it is absent.
func (g SubGraph) Name() (string, bool) { return g.t.String(subgraphName) }

// Tensor slots.
const (
	tensorShape = iota
	tensorType
	tensorBuffer
	tensorName
	tensorQuantization
	tensorExtraParams
)

// Tensor describes one tensor.
type Tensor struct{ t fbs.Table }

// Shape returns the tensor dimensions.
func (t Tensor) Shape() []int32 { return t.t.Int32s(tensorShape) }

// Type returns the tensor element type code.
func (t Tensor) Type() int8 { return t.t.Int8(tensorType, 0) }

// Buffer returns the index of the backing buffer.
func (t Tensor) Buffer() uint32 { return t.t.Uint32(tensorBuffer, 0) }

// Name returns the tensor name.
func (t Tensor) Name() string {
	s, _ := t.t.String(tensorName)
	return s
}

// Quantization returns the asymmetric quantization parameters.
func (t Tensor) Quantization() (QuantizationParameters, bool) {
	q, ok := t.t.Child(tensorQuantization)
	return QuantizationParameters{q}, ok
}

// ExtraParams returns the symmetric per-channel parameters.
func (t Tensor) ExtraParams() (PerChannel, bool) {
	p, ok := t.t.Child(tensorExtraParams)
	return PerChannel{p}, ok
}

// QuantizationParameters holds per-tensor asymmetric quantization.
type QuantizationParameters struct{ t fbs.Table }

// Scale returns the scales.
func (q QuantizationParameters) Scale() []float32 { return q.t.Float32s(0) }

// ZeroPoint returns the zero points.
func (q QuantizationParameters) ZeroPoint() []int64 { return q.t.Int64s(1) }

// PerChannel holds symmetric per-channel scales.
type PerChannel struct{ t fbs.Table }

// Scales returns the per-channel scales.
func (p PerChannel) Scales() []float32 { return p.t.Float32s(0) }

// ChannelDim returns the quantized dimension.
func (p PerChannel) ChannelDim() int32 { return p.t.Int32(1, 0) }

// Operator slots.
const (
	operatorOpcodeIndex = iota
	operatorInputs
	operatorOutputs
	operatorOptionsType
	operatorOptions
	operatorCustomOptions
	operatorTargetHw
)

// Operator is one operator instance.
type Operator struct{ t fbs.Table }

// OpcodeIndex returns the index into Model.OperatorCodes.
func (o Operator) OpcodeIndex() uint32 { return o.t.Uint32(operatorOpcodeIndex, 0) }

// Inputs returns the input tensor indexes.
func (o Operator) Inputs() []int32 { return o.t.Int32s(operatorInputs) }

// Outputs returns the output tensor indexes.
func (o Operator) Outputs() []int32 { return o.t.Int32s(operatorOutputs) }

// BuiltinOptionsType returns the option union tag.
func (o Operator) BuiltinOptionsType() BuiltinOptions {
	return BuiltinOptions(o.t.Uint8(operatorOptionsType, 0))
}

// BuiltinOptions returns the option table, if present.
func (o Operator) BuiltinOptions() (*flatbuffers.Table, bool) {
	u, ok := o.t.Union(operatorOptions)
	if !ok {
		return nil, false
	}
	return u.Raw(), true
}

// CustomOptions returns the custom option blob as a view into the buffer.
func (o Operator) CustomOptions() []byte { return o.t.Bytes(operatorCustomOptions) }

// TargetHw returns the hardware target.
func (o Operator) TargetHw() TargetHw { return TargetHw(o.t.Int32(operatorTargetHw, 0)) }

// Buffer holds raw tensor data.
type Buffer struct{ t fbs.Table }

// Data returns the payload as a view into the buffer, nil if empty.
func (b Buffer) Data() []byte {
	d := b.t.Bytes(0)
	if len(d) == 0 {
		return nil
	}
	return d
}

// DataOffset returns the absolute position of the payload, -1 if absent.
func (b Buffer) DataOffset() int { return b.t.BytesPos(0) }
