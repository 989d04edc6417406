package dispatch

import (
	"github.com/born-ml/modelir/internal/tensor"
)

// Kernel names the backend initializer a node is built for.
type Kernel string

// Kernels.
const (
	KernelAdd            Kernel = "Add"
	KernelSub            Kernel = "Sub"
	KernelMul            Kernel = "Mul"
	KernelDiv            Kernel = "Div"
	KernelAveragePool    Kernel = "AveragePool"
	KernelMaxPool        Kernel = "MaxPool"
	KernelConv2D         Kernel = "Conv2D"
	KernelDepthwiseConv  Kernel = "DepthwiseConv2D"
	KernelFullyConnected Kernel = "FullyConnected"
	KernelConcat         Kernel = "Concat"
	KernelReshape        Kernel = "Reshape"
	KernelSoftmax        Kernel = "Softmax"
	KernelActivation     Kernel = "Activation"
	KernelPad            Kernel = "Pad"
	KernelTranspose      Kernel = "Transpose"
	KernelMean           Kernel = "Mean"
	KernelQuantize       Kernel = "Quantize"
	KernelDequantize     Kernel = "Dequantize"
	KernelNormalization  Kernel = "Normalization"
	KernelCFUConvert     Kernel = "CFUConverter"
	KernelCFUInvert      Kernel = "CFUInverter"
	KernelDetection      Kernel = "Detection"
	KernelFlatten        Kernel = "Flatten"
	KernelIdentity       Kernel = "Identity"
)

// Node is one constructed operator, ready for the execution scheduler.
type Node struct {
	Name      string
	ID        int32
	Kernel    Kernel
	Precision tensor.Precision

	Inputs  []*tensor.RawTensor // in operator order; nil for an omitted input
	Outputs []*tensor.RawTensor
	Data    []*tensor.RawTensor // constants built from option values or reserved parameters
	Params  Params

	// State is whatever the backend initializer keeps for execution.
	State any
}

// Input returns the i-th input or nil when it is omitted or out of range.
func (n *Node) Input(i int) *tensor.RawTensor {
	if i < 0 || i >= len(n.Inputs) {
		return nil
	}
	return n.Inputs[i]
}

// Params holds the scalar parameters of a node by name.
type Params map[string]any

// Parameter names shared by the construct functions and the backends.
const (
	ParamActivation     = "activation"
	ParamCoeff          = "coeff"
	ParamStride         = "stride"   // [h, w]
	ParamDilation       = "dilation" // [h, w]
	ParamFilter         = "filter"   // [h, w]
	ParamPadding        = "padding"
	ParamNCHW           = "nchw"
	ParamAndroidNN      = "android_nn"
	ParamDepthMultiply  = "depth_multiplier"
	ParamPerChannel     = "per_channel_scales"
	ParamKeepDims       = "keep_dims"
	ParamAxis           = "axis"
	ParamEndAxis        = "end_axis"
	ParamAxes           = "axes"
	ParamShape          = "shape"
	ParamPerm           = "perm"
	ParamBeta           = "beta"
	ParamNegativeSlope  = "negative_slope"
	ParamSymmetric      = "symmetric"
	ParamScale          = "scale"
	ParamZeroPoint      = "zero_point"
	ParamPadFront       = "pad_front"
	ParamPadEnd         = "pad_end"
	ParamPadValue       = "pad_value"
	ParamBGRTranspose   = "bgr_transpose"
	ParamColsInCell     = "cols_in_cell"
	ParamLinesInCell    = "lines_in_cell"
	ParamInterleaved    = "interleaved_slices"
	ParamIDPS           = "idps"
	ParamUnitSize       = "unit_size"
	ParamNumClasses     = "num_classes"
	ParamShareLocation  = "share_location"
	ParamNMSThreshold   = "nms_threshold"
	ParamBackgroundID   = "background_label_id"
	ParamNMSTopK        = "nms_top_k"
	ParamKeepTopK       = "keep_top_k"
	ParamCodeType       = "code_type"
	ParamConfThreshold  = "confidence_threshold"
	ParamNMSEta         = "nms_eta"
	ParamVarianceTarget = "variance_encoded_in_target"
)

// Int returns an integer parameter or defaultVal.
func (p Params) Int(name string, defaultVal int32) int32 {
	if v, ok := p[name].(int32); ok {
		return v
	}
	return defaultVal
}

// Float returns a float parameter or defaultVal.
func (p Params) Float(name string, defaultVal float32) float32 {
	if v, ok := p[name].(float32); ok {
		return v
	}
	return defaultVal
}

// Bool returns a boolean parameter, false when absent.
func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

// Ints returns an integer list parameter.
func (p Params) Ints(name string) []int32 {
	v, _ := p[name].([]int32)
	return v
}

// Floats returns a float list parameter.
func (p Params) Floats(name string) []float32 {
	v, _ := p[name].([]float32)
	return v
}

// Pad returns the explicit padding parameter.
func (p Params) Pad(name string) Pad4 {
	v, _ := p[name].(Pad4)
	return v
}
