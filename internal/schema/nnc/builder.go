package nnc

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

// ModelT is the mutable object form of Model used to write model buffers.
type ModelT struct {
	Version       uint32
	OperatorCodes []OperatorCodeT
	Subgraphs     []SubGraphT
	Description   string
	Buffers       []BufferT
	Compatible    []int32
	Relax         bool
}

// OperatorCodeT is the object form of OperatorCode.
type OperatorCodeT struct {
	BuiltinCode BuiltinOperator
	CustomCode  string
	Version     int32
}

// SubGraphT is the object form of SubGraph.
type SubGraphT struct {
	Tensors   []TensorT
	Inputs    []int32
	Outputs   []int32
	Operators []OperatorT
	Name      string
}

// TensorT is the object form of Tensor.
type TensorT struct {
	Shape        []int32
	Type         int8
	Buffer       uint32
	Name         string
	Quantization *QuantizationT
	ExtraParams  *PerChannelT
}

// QuantizationT is the object form of QuantizationParameters.
type QuantizationT struct {
	Scale     []float32
	ZeroPoint []int64
}

// PerChannelT is the object form of PerChannel.
type PerChannelT struct {
	Scales     []float32
	ChannelDim int32
}

// OperatorT is the object form of Operator.
type OperatorT struct {
	OpcodeIndex   uint32
	Inputs        []int32
	Outputs       []int32
	Options       OptionsT
	CustomOptions []byte
	TargetHw      TargetHw
}

// BufferT is the object form of Buffer.
type BufferT struct {
	Data []byte
}

// OptionsT is the object form of a builtin option table.
type OptionsT interface {
	Type() BuiltinOptions
	Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT
}

// OptionsTable packs o into a standalone buffer and returns its root table,
// in the form Operator.BuiltinOptions returns.
func OptionsTable(o OptionsT) *flatbuffers.Table {
	b := flatbuffers.NewBuilder(64)
	b.Finish(o.Pack(b))
	buf := b.FinishedBytes()
	return &flatbuffers.Table{Bytes: buf, Pos: flatbuffers.GetUOffsetT(buf)}
}

// Encode serializes m into a finished model buffer.
func Encode(m *ModelT) []byte {
	b := flatbuffers.NewBuilder(1024)
	b.FinishWithFileIdentifier(m.Pack(b), []byte(FileIdentifier))
	return b.FinishedBytes()
}

// Pack writes m and returns its offset.
func (m *ModelT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	codes := make([]flatbuffers.UOffsetT, len(m.OperatorCodes))
	for i := range m.OperatorCodes {
		codes[i] = m.OperatorCodes[i].Pack(b)
	}
	codesOff := fbs.OffsetVector(b, codes)
	subgraphs := make([]flatbuffers.UOffsetT, len(m.Subgraphs))
	for i := range m.Subgraphs {
		subgraphs[i] = m.Subgraphs[i].Pack(b)
	}
	subgraphsOff := fbs.OffsetVector(b, subgraphs)
	buffers := make([]flatbuffers.UOffsetT, len(m.Buffers))
	for i := range m.Buffers {
		buffers[i] = m.Buffers[i].Pack(b)
	}
	buffersOff := fbs.OffsetVector(b, buffers)
	desc := fbs.OptString(b, m.Description)
	var compatible flatbuffers.UOffsetT
	if m.Compatible != nil {
		compatible = fbs.Int32Vector(b, m.Compatible)
	}

	b.StartObject(modelFields)
	b.PrependUint32Slot(modelVersion, m.Version, 0)
	b.PrependUOffsetTSlot(modelOperatorCodes, codesOff, 0)
	b.PrependUOffsetTSlot(modelSubgraphs, subgraphsOff, 0)
	fbs.AddOffset(b, modelDescription, desc)
	b.PrependUOffsetTSlot(modelBuffers, buffersOff, 0)
	fbs.AddOffset(b, modelCompatible, compatible)
	b.PrependBoolSlot(modelRelax, m.Relax, false)
	return b.EndObject()
}

// Pack writes c and returns its offset.
func (c *OperatorCodeT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	custom := fbs.OptString(b, c.CustomCode)
	version := c.Version
	if version == 0 {
		// unset; the schema default is 1
		version = 1
	}
	b.StartObject(3)
	b.PrependInt32Slot(opcodeBuiltinCode, int32(c.BuiltinCode), 0)
	fbs.AddOffset(b, opcodeCustomCode, custom)
	b.PrependInt32Slot(opcodeVersion, version, 1)
	return b.EndObject()
}

// Pack writes g and returns its offset.
func (g *SubGraphT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	tensors := make([]flatbuffers.UOffsetT, len(g.Tensors))
	for i := range g.Tensors {
		tensors[i] = g.Tensors[i].Pack(b)
	}
	tensorsOff := fbs.OffsetVector(b, tensors)
	ops := make([]flatbuffers.UOffsetT, len(g.Operators))
	for i := range g.Operators {
		ops[i] = g.Operators[i].Pack(b)
	}
	opsOff := fbs.OffsetVector(b, ops)
	inputs := fbs.Int32Vector(b, g.Inputs)
	outputs := fbs.Int32Vector(b, g.Outputs)
	name := fbs.OptString(b, g.Name)

	b.StartObject(5)
	b.PrependUOffsetTSlot(subgraphTensors, tensorsOff, 0)
	b.PrependUOffsetTSlot(subgraphInputs, inputs, 0)
	b.PrependUOffsetTSlot(subgraphOutputs, outputs, 0)
	b.PrependUOffsetTSlot(subgraphOperators, opsOff, 0)
	fbs.AddOffset(b, subgraphName, name)
	return b.EndObject()
}

// Pack writes t and returns its offset.
func (t *TensorT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	shape := fbs.Int32Vector(b, t.Shape)
	name := fbs.OptString(b, t.Name)
	var quant, extra flatbuffers.UOffsetT
	if t.Quantization != nil {
		quant = t.Quantization.Pack(b)
	}
	if t.ExtraParams != nil {
		extra = t.ExtraParams.Pack(b)
	}

	b.StartObject(6)
	b.PrependUOffsetTSlot(tensorShape, shape, 0)
	b.PrependInt8Slot(tensorType, t.Type, 0)
	b.PrependUint32Slot(tensorBuffer, t.Buffer, 0)
	fbs.AddOffset(b, tensorName, name)
	fbs.AddOffset(b, tensorQuantization, quant)
	fbs.AddOffset(b, tensorExtraParams, extra)
	return b.EndObject()
}

// Pack writes q and returns its offset.
func (q *QuantizationT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	scale := fbs.Float32Vector(b, q.Scale)
	zero := fbs.Int64Vector(b, q.ZeroPoint)
	b.StartObject(2)
	b.PrependUOffsetTSlot(0, scale, 0)
	b.PrependUOffsetTSlot(1, zero, 0)
	return b.EndObject()
}

// Pack writes p and returns its offset.
func (p *PerChannelT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	scales := fbs.Float32Vector(b, p.Scales)
	b.StartObject(2)
	b.PrependUOffsetTSlot(0, scales, 0)
	b.PrependInt32Slot(1, p.ChannelDim, 0)
	return b.EndObject()
}

// Pack writes o and returns its offset.
func (o *OperatorT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	inputs := fbs.Int32Vector(b, o.Inputs)
	outputs := fbs.Int32Vector(b, o.Outputs)
	var opts flatbuffers.UOffsetT
	tag := OptionsNone
	if o.Options != nil {
		opts = o.Options.Pack(b)
		tag = o.Options.Type()
	}
	custom := fbs.OptBytes(b, o.CustomOptions)

	b.StartObject(7)
	b.PrependUint32Slot(operatorOpcodeIndex, o.OpcodeIndex, 0)
	b.PrependUOffsetTSlot(operatorInputs, inputs, 0)
	b.PrependUOffsetTSlot(operatorOutputs, outputs, 0)
	b.PrependUint8Slot(operatorOptionsType, uint8(tag), 0)
	fbs.AddOffset(b, operatorOptions, opts)
	fbs.AddOffset(b, operatorCustomOptions, custom)
	b.PrependInt32Slot(operatorTargetHw, int32(o.TargetHw), 0)
	return b.EndObject()
}

// Pack writes buf and returns its offset.
func (buf *BufferT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	data := fbs.OptBytes(b, buf.Data)
	b.StartObject(1)
	fbs.AddOffset(b, 0, data)
	return b.EndObject()
}
