package nnc

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

func wrap(tab *flatbuffers.Table) fbs.Table {
	if tab == nil {
		return fbs.Table{}
	}
	return fbs.NewTable(tab.Bytes, tab.Pos)
}

// SoftmaxOptions configures SOFTMAX.
type SoftmaxOptions struct{ t fbs.Table }

// AsSoftmaxOptions views tab as SoftmaxOptions.
func AsSoftmaxOptions(tab *flatbuffers.Table) SoftmaxOptions { return SoftmaxOptions{wrap(tab)} }

// Beta returns the input scale.
func (o SoftmaxOptions) Beta() float32 { return o.t.Float32(0, 0) }

// Axis returns the reduction axis.
func (o SoftmaxOptions) Axis() int32 { return o.t.Int32(1, 0) }

// QuantizeOptions configures QUANTIZE and DEQUANTIZE.
type QuantizeOptions struct{ t fbs.Table }

// AsQuantizeOptions views tab as QuantizeOptions. DequantizeOptions share the layout.
func AsQuantizeOptions(tab *flatbuffers.Table) QuantizeOptions { return QuantizeOptions{wrap(tab)} }

// Type returns the quantization scheme.
func (o QuantizeOptions) Type() QuantType { return QuantType(o.t.Uint32(0, 0)) }

// FractionalLength returns the symmetric fraction lengths.
func (o QuantizeOptions) FractionalLength() []int32 { return o.t.Int32s(1) }

// ScaleOut returns the asymmetric output scales.
func (o QuantizeOptions) ScaleOut() []float32 { return o.t.Float32s(2) }

// ZeroPointOutput returns the asymmetric output zero points.
func (o QuantizeOptions) ZeroPointOutput() []int32 { return o.t.Int32s(3) }

// Conv2DOptions configures CONV_2D.
type Conv2DOptions struct{ t fbs.Table }

// AsConv2DOptions views tab as Conv2DOptions.
func AsConv2DOptions(tab *flatbuffers.Table) Conv2DOptions { return Conv2DOptions{wrap(tab)} }

func (o Conv2DOptions) Padding() Padding            { return Padding(o.t.Int8(0, 0)) }
func (o Conv2DOptions) StrideW() int32              { return o.t.Int32(1, 0) }
func (o Conv2DOptions) StrideH() int32              { return o.t.Int32(2, 0) }
func (o Conv2DOptions) FusedActivation() Activation { return Activation(o.t.Int8(3, 0)) }
func (o Conv2DOptions) DilationW() int32            { return o.t.Int32(4, 1) }
func (o Conv2DOptions) DilationH() int32            { return o.t.Int32(5, 1) }
func (o Conv2DOptions) PaddingValue() []int32       { return o.t.Int32s(6) }
func (o Conv2DOptions) UseNCHW() bool               { return o.t.Bool(7, false) }

// DepthwiseConv2DOptions configures DEPTHWISE_CONV_2D.
type DepthwiseConv2DOptions struct{ t fbs.Table }

// AsDepthwiseConv2DOptions views tab as DepthwiseConv2DOptions.
func AsDepthwiseConv2DOptions(tab *flatbuffers.Table) DepthwiseConv2DOptions {
	return DepthwiseConv2DOptions{wrap(tab)}
}

func (o DepthwiseConv2DOptions) Padding() Padding            { return Padding(o.t.Int8(0, 0)) }
func (o DepthwiseConv2DOptions) StrideW() int32              { return o.t.Int32(1, 0) }
func (o DepthwiseConv2DOptions) StrideH() int32              { return o.t.Int32(2, 0) }
func (o DepthwiseConv2DOptions) DepthMultiplier() int32      { return o.t.Int32(3, 0) }
func (o DepthwiseConv2DOptions) FusedActivation() Activation { return Activation(o.t.Int8(4, 0)) }
func (o DepthwiseConv2DOptions) DilationW() int32            { return o.t.Int32(5, 1) }
func (o DepthwiseConv2DOptions) DilationH() int32            { return o.t.Int32(6, 1) }
func (o DepthwiseConv2DOptions) PaddingValue() []int32       { return o.t.Int32s(7) }
func (o DepthwiseConv2DOptions) UseNCHW() bool               { return o.t.Bool(8, false) }

// Pool2DOptions configures AVERAGE_POOL_2D and MAX_POOL_2D.
type Pool2DOptions struct{ t fbs.Table }

// AsPool2DOptions views tab as Pool2DOptions.
func AsPool2DOptions(tab *flatbuffers.Table) Pool2DOptions { return Pool2DOptions{wrap(tab)} }

func (o Pool2DOptions) Padding() Padding            { return Padding(o.t.Int8(0, 0)) }
func (o Pool2DOptions) StrideW() int32              { return o.t.Int32(1, 0) }
func (o Pool2DOptions) StrideH() int32              { return o.t.Int32(2, 0) }
func (o Pool2DOptions) FilterWidth() int32          { return o.t.Int32(3, 0) }
func (o Pool2DOptions) FilterHeight() int32         { return o.t.Int32(4, 0) }
func (o Pool2DOptions) FusedActivation() Activation { return Activation(o.t.Int8(5, 0)) }
func (o Pool2DOptions) UseNCHW() bool               { return o.t.Bool(6, false) }

// AddOptions configures ADD.
type AddOptions struct{ t fbs.Table }

// AsAddOptions views tab as AddOptions.
func AsAddOptions(tab *flatbuffers.Table) AddOptions { return AddOptions{wrap(tab)} }

func (o AddOptions) FusedActivation() Activation { return Activation(o.t.Int8(0, 0)) }

// Coeff returns the per-input coefficients, nil when absent.
func (o AddOptions) Coeff() []float32 { return o.t.Float32s(1) }

// ActivationOptions configures SUB, MUL and DIV, which only carry a fused activation.
type ActivationOptions struct{ t fbs.Table }

// AsActivationOptions views tab as ActivationOptions.
func AsActivationOptions(tab *flatbuffers.Table) ActivationOptions {
	return ActivationOptions{wrap(tab)}
}

func (o ActivationOptions) FusedActivation() Activation { return Activation(o.t.Int8(0, 0)) }

// ConcatenationOptions configures CONCATENATION.
type ConcatenationOptions struct{ t fbs.Table }

// AsConcatenationOptions views tab as ConcatenationOptions.
func AsConcatenationOptions(tab *flatbuffers.Table) ConcatenationOptions {
	return ConcatenationOptions{wrap(tab)}
}

func (o ConcatenationOptions) Axis() int32                 { return o.t.Int32(0, 0) }
func (o ConcatenationOptions) FusedActivation() Activation { return Activation(o.t.Int8(1, 0)) }

// ReshapeOptions configures RESHAPE.
type ReshapeOptions struct{ t fbs.Table }

// AsReshapeOptions views tab as ReshapeOptions.
func AsReshapeOptions(tab *flatbuffers.Table) ReshapeOptions { return ReshapeOptions{wrap(tab)} }

func (o ReshapeOptions) NewShape() []int32 { return o.t.Int32s(0) }

// FullyConnectedOptions configures FULLY_CONNECTED.
type FullyConnectedOptions struct{ t fbs.Table }

// AsFullyConnectedOptions views tab as FullyConnectedOptions.
func AsFullyConnectedOptions(tab *flatbuffers.Table) FullyConnectedOptions {
	return FullyConnectedOptions{wrap(tab)}
}

func (o FullyConnectedOptions) FusedActivation() Activation { return Activation(o.t.Int8(0, 0)) }
func (o FullyConnectedOptions) KeepNumDims() bool           { return o.t.Bool(1, false) }

// MeanOptions configures MEAN.
type MeanOptions struct{ t fbs.Table }

// AsMeanOptions views tab as MeanOptions.
func AsMeanOptions(tab *flatbuffers.Table) MeanOptions { return MeanOptions{wrap(tab)} }

func (o MeanOptions) KeepDims() bool { return o.t.Bool(0, false) }

// ReluOptions configures RELU.
type ReluOptions struct{ t fbs.Table }

// AsReluOptions views tab as ReluOptions.
func AsReluOptions(tab *flatbuffers.Table) ReluOptions { return ReluOptions{wrap(tab)} }

func (o ReluOptions) NegativeSlope() float32 { return o.t.Float32(0, 0) }

// DeviceOptions is the option table of ENN_NPU and ENN_DSP: an encoded
// key/value map.
type DeviceOptions struct{ t fbs.Table }

// AsDeviceOptions views tab as DeviceOptions.
func AsDeviceOptions(tab *flatbuffers.Table) DeviceOptions { return DeviceOptions{wrap(tab)} }

// Metadata returns the encoded option map.
func (o DeviceOptions) Metadata() []byte { return o.t.Bytes(0) }

// UnifiedDeviceOptions is the option table of ENN_UNIFIED_DEVICE.
type UnifiedDeviceOptions struct{ t fbs.Table }

// AsUnifiedDeviceOptions views tab as UnifiedDeviceOptions.
func AsUnifiedDeviceOptions(tab *flatbuffers.Table) UnifiedDeviceOptions {
	return UnifiedDeviceOptions{wrap(tab)}
}

// OptionsLength returns the number of per-target entries.
func (o UnifiedDeviceOptions) OptionsLength() int { return o.t.Len(0) }

// Options returns entry j.
func (o UnifiedDeviceOptions) Options(j int) DeviceEntry { return DeviceEntry{o.t.At(0, j)} }

// DeviceEntry is one per-target entry of UnifiedDeviceOptions.
type DeviceEntry struct{ t fbs.Table }

func (e DeviceEntry) TargetHw() TargetHw { return TargetHw(e.t.Int32(0, 0)) }
func (e DeviceEntry) Metadata() []byte   { return e.t.Bytes(1) }

// NormalizationOptions configures ENN_NORMALIZATION.
type NormalizationOptions struct{ t fbs.Table }

// AsNormalizationOptions views tab as NormalizationOptions.
func AsNormalizationOptions(tab *flatbuffers.Table) NormalizationOptions {
	return NormalizationOptions{wrap(tab)}
}

func (o NormalizationOptions) Mean() []float32    { return o.t.Float32s(0) }
func (o NormalizationOptions) Scale() []float32   { return o.t.Float32s(1) }
func (o NormalizationOptions) BGRTranspose() bool { return o.t.Bool(2, false) }

// CFUOptions configures ENN_CFU and ENN_INVERSE_CFU.
type CFUOptions struct{ t fbs.Table }

// AsCFUOptions views tab as CFUOptions.
func AsCFUOptions(tab *flatbuffers.Table) CFUOptions { return CFUOptions{wrap(tab)} }

func (o CFUOptions) ColsInCell() int32        { return o.t.Int32(0, 0) }
func (o CFUOptions) LinesInCell() int32       { return o.t.Int32(1, 0) }
func (o CFUOptions) InterleavedSlices() int32 { return o.t.Int32(2, 0) }

// DetectionOptions configures ENN_DETECTION.
type DetectionOptions struct{ t fbs.Table }

// AsDetectionOptions views tab as DetectionOptions.
func AsDetectionOptions(tab *flatbuffers.Table) DetectionOptions {
	return DetectionOptions{wrap(tab)}
}

func (o DetectionOptions) NumClasses() int32             { return o.t.Int32(0, 0) }
func (o DetectionOptions) ShareLocation() bool           { return o.t.Bool(1, false) }
func (o DetectionOptions) NMSThreshold() float32         { return o.t.Float32(2, 0) }
func (o DetectionOptions) BackgroundLabelID() int32      { return o.t.Int32(3, 0) }
func (o DetectionOptions) NMSTopK() int32                { return o.t.Int32(4, 0) }
func (o DetectionOptions) KeepTopK() int32               { return o.t.Int32(5, 0) }
func (o DetectionOptions) CodeType() int32               { return o.t.Int32(6, 0) }
func (o DetectionOptions) ConfidenceThreshold() float32  { return o.t.Float32(7, 0) }
func (o DetectionOptions) NMSEta() float32               { return o.t.Float32(8, 0) }
func (o DetectionOptions) VarianceEncodedInTarget() bool { return o.t.Bool(9, false) }

// FlattenOptions configures ENN_FLATTEN.
type FlattenOptions struct{ t fbs.Table }

// AsFlattenOptions views tab as FlattenOptions.
func AsFlattenOptions(tab *flatbuffers.Table) FlattenOptions { return FlattenOptions{wrap(tab)} }

func (o FlattenOptions) Axis() int32    { return o.t.Int32(0, 0) }
func (o FlattenOptions) EndAxis() int32 { return o.t.Int32(1, 0) }
