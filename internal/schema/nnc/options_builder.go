package nnc

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

// SoftmaxOptionsT is the object form of SoftmaxOptions.
type SoftmaxOptionsT struct {
	Beta float32
	Axis int32
}

func (o *SoftmaxOptionsT) Type() BuiltinOptions { return OptionsSoftmax }

func (o *SoftmaxOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(2)
	b.PrependFloat32Slot(0, o.Beta, 0)
	b.PrependInt32Slot(1, o.Axis, 0)
	return b.EndObject()
}

// QuantizeOptionsT is the object form of QuantizeOptions. Tag selects
// between QuantizeOptions and DequantizeOptions and defaults to the former.
type QuantizeOptionsT struct {
	Tag              BuiltinOptions
	QuantType        QuantType
	FractionalLength []int32
	ScaleOut         []float32
	ZeroPointOutput  []int32
}

func (o *QuantizeOptionsT) Type() BuiltinOptions {
	if o.Tag == OptionsNone {
		return OptionsQuantize
	}
	return o.Tag
}

func (o *QuantizeOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	var frac, scale, zero flatbuffers.UOffsetT
	if o.FractionalLength != nil {
		frac = fbs.Int32Vector(b, o.FractionalLength)
	}
	if o.ScaleOut != nil {
		scale = fbs.Float32Vector(b, o.ScaleOut)
	}
	if o.ZeroPointOutput != nil {
		zero = fbs.Int32Vector(b, o.ZeroPointOutput)
	}
	b.StartObject(4)
	b.PrependUint32Slot(0, uint32(o.QuantType), 0)
	fbs.AddOffset(b, 1, frac)
	fbs.AddOffset(b, 2, scale)
	fbs.AddOffset(b, 3, zero)
	return b.EndObject()
}

// Conv2DOptionsT is the object form of Conv2DOptions.
type Conv2DOptionsT struct {
	Padding         Padding
	StrideW         int32
	StrideH         int32
	FusedActivation Activation
	DilationW       int32
	DilationH       int32
	PaddingValue    []int32
	UseNCHW         bool
}

func (o *Conv2DOptionsT) Type() BuiltinOptions { return OptionsConv2D }

func (o *Conv2DOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	var pad flatbuffers.UOffsetT
	if o.PaddingValue != nil {
		pad = fbs.Int32Vector(b, o.PaddingValue)
	}
	b.StartObject(8)
	b.PrependInt8Slot(0, int8(o.Padding), 0)
	b.PrependInt32Slot(1, o.StrideW, 0)
	b.PrependInt32Slot(2, o.StrideH, 0)
	b.PrependInt8Slot(3, int8(o.FusedActivation), 0)
	b.PrependInt32Slot(4, dilation(o.DilationW), 1)
	b.PrependInt32Slot(5, dilation(o.DilationH), 1)
	fbs.AddOffset(b, 6, pad)
	b.PrependBoolSlot(7, o.UseNCHW, false)
	return b.EndObject()
}

// dilation maps the zero value to the schema default of 1.
func dilation(d int32) int32 {
	if d == 0 {
		return 1
	}
	return d
}

// DepthwiseConv2DOptionsT is the object form of DepthwiseConv2DOptions.
type DepthwiseConv2DOptionsT struct {
	Padding         Padding
	StrideW         int32
	StrideH         int32
	DepthMultiplier int32
	FusedActivation Activation
	DilationW       int32
	DilationH       int32
	PaddingValue    []int32
	UseNCHW         bool
}

func (o *DepthwiseConv2DOptionsT) Type() BuiltinOptions { return OptionsDepthwiseConv2D }

func (o *DepthwiseConv2DOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	var pad flatbuffers.UOffsetT
	if o.PaddingValue != nil {
		pad = fbs.Int32Vector(b, o.PaddingValue)
	}
	b.StartObject(9)
	b.PrependInt8Slot(0, int8(o.Padding), 0)
	b.PrependInt32Slot(1, o.StrideW, 0)
	b.PrependInt32Slot(2, o.StrideH, 0)
	b.PrependInt32Slot(3, o.DepthMultiplier, 0)
	b.PrependInt8Slot(4, int8(o.FusedActivation), 0)
	b.PrependInt32Slot(5, dilation(o.DilationW), 1)
	b.PrependInt32Slot(6, dilation(o.DilationH), 1)
	fbs.AddOffset(b, 7, pad)
	b.PrependBoolSlot(8, o.UseNCHW, false)
	return b.EndObject()
}

// Pool2DOptionsT is the object form of Pool2DOptions.
type Pool2DOptionsT struct {
	Padding         Padding
	StrideW         int32
	StrideH         int32
	FilterWidth     int32
	FilterHeight    int32
	FusedActivation Activation
	UseNCHW         bool
}

func (o *Pool2DOptionsT) Type() BuiltinOptions { return OptionsPool2D }

func (o *Pool2DOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(7)
	b.PrependInt8Slot(0, int8(o.Padding), 0)
	b.PrependInt32Slot(1, o.StrideW, 0)
	b.PrependInt32Slot(2, o.StrideH, 0)
	b.PrependInt32Slot(3, o.FilterWidth, 0)
	b.PrependInt32Slot(4, o.FilterHeight, 0)
	b.PrependInt8Slot(5, int8(o.FusedActivation), 0)
	b.PrependBoolSlot(6, o.UseNCHW, false)
	return b.EndObject()
}

// AddOptionsT is the object form of AddOptions.
type AddOptionsT struct {
	FusedActivation Activation
	Coeff           []float32
}

func (o *AddOptionsT) Type() BuiltinOptions { return OptionsAdd }

func (o *AddOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	var coeff flatbuffers.UOffsetT
	if o.Coeff != nil {
		coeff = fbs.Float32Vector(b, o.Coeff)
	}
	b.StartObject(2)
	b.PrependInt8Slot(0, int8(o.FusedActivation), 0)
	fbs.AddOffset(b, 1, coeff)
	return b.EndObject()
}

// ActivationOptionsT is the object form of SubOptions, MulOptions and DivOptions.
type ActivationOptionsT struct {
	Tag             BuiltinOptions
	FusedActivation Activation
}

func (o *ActivationOptionsT) Type() BuiltinOptions { return o.Tag }

func (o *ActivationOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(1)
	b.PrependInt8Slot(0, int8(o.FusedActivation), 0)
	return b.EndObject()
}

// EmptyOptionsT writes an option table without fields, such as PadOptions.
type EmptyOptionsT struct {
	Tag BuiltinOptions
}

func (o *EmptyOptionsT) Type() BuiltinOptions { return o.Tag }

func (o *EmptyOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(0)
	return b.EndObject()
}

// ConcatenationOptionsT is the object form of ConcatenationOptions.
type ConcatenationOptionsT struct {
	Axis            int32
	FusedActivation Activation
}

func (o *ConcatenationOptionsT) Type() BuiltinOptions { return OptionsConcatenation }

func (o *ConcatenationOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(2)
	b.PrependInt32Slot(0, o.Axis, 0)
	b.PrependInt8Slot(1, int8(o.FusedActivation), 0)
	return b.EndObject()
}

// ReshapeOptionsT is the object form of ReshapeOptions.
type ReshapeOptionsT struct {
	NewShape []int32
}

func (o *ReshapeOptionsT) Type() BuiltinOptions { return OptionsReshape }

func (o *ReshapeOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	shape := fbs.Int32Vector(b, o.NewShape)
	b.StartObject(1)
	b.PrependUOffsetTSlot(0, shape, 0)
	return b.EndObject()
}

// FullyConnectedOptionsT is the object form of FullyConnectedOptions.
type FullyConnectedOptionsT struct {
	FusedActivation Activation
	KeepNumDims     bool
}

func (o *FullyConnectedOptionsT) Type() BuiltinOptions { return OptionsFullyConnected }

func (o *FullyConnectedOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(2)
	b.PrependInt8Slot(0, int8(o.FusedActivation), 0)
	b.PrependBoolSlot(1, o.KeepNumDims, false)
	return b.EndObject()
}

// MeanOptionsT is the object form of MeanOptions.
type MeanOptionsT struct {
	KeepDims bool
}

func (o *MeanOptionsT) Type() BuiltinOptions { return OptionsMean }

func (o *MeanOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(1)
	b.PrependBoolSlot(0, o.KeepDims, false)
	return b.EndObject()
}

// ReluOptionsT is the object form of ReluOptions.
type ReluOptionsT struct {
	NegativeSlope float32
}

func (o *ReluOptionsT) Type() BuiltinOptions { return OptionsRelu }

func (o *ReluOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(1)
	b.PrependFloat32Slot(0, o.NegativeSlope, 0)
	return b.EndObject()
}

// DeviceOptionsT is the object form of ENN_NPUOptions and ENN_DSPOptions.
type DeviceOptionsT struct {
	Tag      BuiltinOptions
	Metadata []byte
}

func (o *DeviceOptionsT) Type() BuiltinOptions { return o.Tag }

func (o *DeviceOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	meta := fbs.OptBytes(b, o.Metadata)
	b.StartObject(1)
	fbs.AddOffset(b, 0, meta)
	return b.EndObject()
}

// DeviceEntryT is one per-target entry of UnifiedDeviceOptionsT.
type DeviceEntryT struct {
	TargetHw TargetHw
	Metadata []byte
}

// UnifiedDeviceOptionsT is the object form of UnifiedDeviceOptions.
type UnifiedDeviceOptionsT struct {
	Options []DeviceEntryT
}

func (o *UnifiedDeviceOptionsT) Type() BuiltinOptions { return OptionsENNUnifiedDevice }

func (o *UnifiedDeviceOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	entries := make([]flatbuffers.UOffsetT, len(o.Options))
	for i, e := range o.Options {
		meta := fbs.OptBytes(b, e.Metadata)
		b.StartObject(2)
		b.PrependInt32Slot(0, int32(e.TargetHw), 0)
		fbs.AddOffset(b, 1, meta)
		entries[i] = b.EndObject()
	}
	vec := fbs.OffsetVector(b, entries)
	b.StartObject(1)
	b.PrependUOffsetTSlot(0, vec, 0)
	return b.EndObject()
}

// NormalizationOptionsT is the object form of NormalizationOptions.
type NormalizationOptionsT struct {
	Mean         []float32
	Scale        []float32
	BGRTranspose bool
}

func (o *NormalizationOptionsT) Type() BuiltinOptions { return OptionsENNNormalization }

func (o *NormalizationOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	mean := fbs.Float32Vector(b, o.Mean)
	scale := fbs.Float32Vector(b, o.Scale)
	b.StartObject(3)
	b.PrependUOffsetTSlot(0, mean, 0)
	b.PrependUOffsetTSlot(1, scale, 0)
	b.PrependBoolSlot(2, o.BGRTranspose, false)
	return b.EndObject()
}

// CFUOptionsT is the object form of CFUOptions. Tag selects between
// ENN_CFUOptions and ENN_InverseCFUOptions and defaults to the former.
type CFUOptionsT struct {
	Tag               BuiltinOptions
	ColsInCell        int32
	LinesInCell       int32
	InterleavedSlices int32
}

func (o *CFUOptionsT) Type() BuiltinOptions {
	if o.Tag == OptionsNone {
		return OptionsENNCFU
	}
	return o.Tag
}

func (o *CFUOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(3)
	b.PrependInt32Slot(0, o.ColsInCell, 0)
	b.PrependInt32Slot(1, o.LinesInCell, 0)
	b.PrependInt32Slot(2, o.InterleavedSlices, 0)
	return b.EndObject()
}

// DetectionOptionsT is the object form of DetectionOptions.
type DetectionOptionsT struct {
	NumClasses              int32
	ShareLocation           bool
	NMSThreshold            float32
	BackgroundLabelID       int32
	NMSTopK                 int32
	KeepTopK                int32
	CodeType                int32
	ConfidenceThreshold     float32
	NMSEta                  float32
	VarianceEncodedInTarget bool
}

func (o *DetectionOptionsT) Type() BuiltinOptions { return OptionsENNDetection }

func (o *DetectionOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(10)
	b.PrependInt32Slot(0, o.NumClasses, 0)
	b.PrependBoolSlot(1, o.ShareLocation, false)
	b.PrependFloat32Slot(2, o.NMSThreshold, 0)
	b.PrependInt32Slot(3, o.BackgroundLabelID, 0)
	b.PrependInt32Slot(4, o.NMSTopK, 0)
	b.PrependInt32Slot(5, o.KeepTopK, 0)
	b.PrependInt32Slot(6, o.CodeType, 0)
	b.PrependFloat32Slot(7, o.ConfidenceThreshold, 0)
	b.PrependFloat32Slot(8, o.NMSEta, 0)
	b.PrependBoolSlot(9, o.VarianceEncodedInTarget, false)
	return b.EndObject()
}

// FlattenOptionsT is the object form of FlattenOptions.
type FlattenOptionsT struct {
	Axis    int32
	EndAxis int32
}

func (o *FlattenOptionsT) Type() BuiltinOptions { return OptionsENNFlatten }

func (o *FlattenOptionsT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	b.StartObject(2)
	b.PrependInt32Slot(0, o.Axis, 0)
	b.PrependInt32Slot(1, o.EndAxis, 0)
	return b.EndObject()
}
