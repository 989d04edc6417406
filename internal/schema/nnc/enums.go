package nnc

import "strconv"

// BuiltinOperator is the builtin operator code of an OperatorCode record.
// Codes below 200 follow the TFLite numbering.
type BuiltinOperator int32

// Builtin operators.
const (
	OpAdd                BuiltinOperator = 0
	OpAveragePool2D      BuiltinOperator = 1
	OpConcatenation      BuiltinOperator = 2
	OpConv2D             BuiltinOperator = 3
	OpDepthwiseConv2D    BuiltinOperator = 4
	OpDequantize         BuiltinOperator = 6
	OpFullyConnected     BuiltinOperator = 9
	OpLogistic           BuiltinOperator = 14
	OpMaxPool2D          BuiltinOperator = 17
	OpMul                BuiltinOperator = 18
	OpRelu               BuiltinOperator = 19
	OpReluN1To1          BuiltinOperator = 20
	OpRelu6              BuiltinOperator = 21
	OpReshape            BuiltinOperator = 22
	OpSoftmax            BuiltinOperator = 25
	OpTanh               BuiltinOperator = 28
	OpPad                BuiltinOperator = 34
	OpTranspose          BuiltinOperator = 39
	OpMean               BuiltinOperator = 40
	OpSub                BuiltinOperator = 41
	OpDiv                BuiltinOperator = 42
	OpSqueeze            BuiltinOperator = 43
	OpStridedSlice       BuiltinOperator = 45
	OpCast               BuiltinOperator = 53
	OpQuantize           BuiltinOperator = 114
	OpENNNPU             BuiltinOperator = 200
	OpENNDSP             BuiltinOperator = 201
	OpENNUnifiedDevice   BuiltinOperator = 202
	OpENNNormalization   BuiltinOperator = 203
	OpENNCFU             BuiltinOperator = 204
	OpENNInverseCFU      BuiltinOperator = 205
	OpENNDetection       BuiltinOperator = 206
	OpENNFlatten         BuiltinOperator = 207
	OpENNScale           BuiltinOperator = 208
	OpENNTFLiteSlice     BuiltinOperator = 209
	maxBuiltinOperatorID BuiltinOperator = 209
)

var builtinOperatorNames = map[BuiltinOperator]string{
	OpAdd:              "ADD",
	OpAveragePool2D:    "AVERAGE_POOL_2D",
	OpConcatenation:    "CONCATENATION",
	OpConv2D:           "CONV_2D",
	OpDepthwiseConv2D:  "DEPTHWISE_CONV_2D",
	OpDequantize:       "DEQUANTIZE",
	OpFullyConnected:   "FULLY_CONNECTED",
	OpLogistic:         "LOGISTIC",
	OpMaxPool2D:        "MAX_POOL_2D",
	OpMul:              "MUL",
	OpRelu:             "RELU",
	OpReluN1To1:        "RELU_N1_TO_1",
	OpRelu6:            "RELU6",
	OpReshape:          "RESHAPE",
	OpSoftmax:          "SOFTMAX",
	OpTanh:             "TANH",
	OpPad:              "PAD",
	OpTranspose:        "TRANSPOSE",
	OpMean:             "MEAN",
	OpSub:              "SUB",
	OpDiv:              "DIV",
	OpSqueeze:          "SQUEEZE",
	OpStridedSlice:     "STRIDED_SLICE",
	OpCast:             "CAST",
	OpQuantize:         "QUANTIZE",
	OpENNNPU:           "ENN_NPU",
	OpENNDSP:           "ENN_DSP",
	OpENNUnifiedDevice: "ENN_UNIFIED_DEVICE",
	OpENNNormalization: "ENN_NORMALIZATION",
	OpENNCFU:           "ENN_CFU",
	OpENNInverseCFU:    "ENN_INVERSE_CFU",
	OpENNDetection:     "ENN_DETECTION",
	OpENNFlatten:       "ENN_FLATTEN",
	OpENNScale:         "ENN_SCALE",
	OpENNTFLiteSlice:   "ENN_TFLITE_SLICE",
}

// String returns the schema name of the operator. Unnamed codes inside the
// builtin range print as an empty string, like the generated enum tables.
func (o BuiltinOperator) String() string {
	if name, ok := builtinOperatorNames[o]; ok {
		return name
	}
	if o.IsBuiltin() {
		return ""
	}
	return "BuiltinOperator(" + strconv.Itoa(int(o)) + ")"
}

// IsBuiltin reports whether o lies in the builtin code range.
func (o BuiltinOperator) IsBuiltin() bool {
	return o >= 0 && o <= maxBuiltinOperatorID
}

// Named reports whether o has a schema name.
func (o BuiltinOperator) Named() bool {
	_, ok := builtinOperatorNames[o]
	return ok
}

// BuiltinOptions is the union tag of Operator.builtin_options.
type BuiltinOptions uint8

// Builtin option tables.
const (
	OptionsNone BuiltinOptions = iota
	OptionsSoftmax
	OptionsQuantize
	OptionsDequantize
	OptionsConv2D
	OptionsDepthwiseConv2D
	OptionsPool2D
	OptionsAdd
	OptionsSub
	OptionsMul
	OptionsDiv
	OptionsConcatenation
	OptionsReshape
	OptionsFullyConnected
	OptionsPad
	OptionsTranspose
	OptionsMean
	OptionsRelu
	OptionsENNNPU
	OptionsENNDSP
	OptionsENNUnifiedDevice
	OptionsENNNormalization
	OptionsENNCFU
	OptionsENNInverseCFU
	OptionsENNDetection
	OptionsENNFlatten
	optionsCount
)

var builtinOptionsNames = [...]string{
	OptionsNone:             "NONE",
	OptionsSoftmax:          "SoftmaxOptions",
	OptionsQuantize:         "QuantizeOptions",
	OptionsDequantize:       "DequantizeOptions",
	OptionsConv2D:           "Conv2DOptions",
	OptionsDepthwiseConv2D:  "DepthwiseConv2DOptions",
	OptionsPool2D:           "Pool2DOptions",
	OptionsAdd:              "AddOptions",
	OptionsSub:              "SubOptions",
	OptionsMul:              "MulOptions",
	OptionsDiv:              "DivOptions",
	OptionsConcatenation:    "ConcatenationOptions",
	OptionsReshape:          "ReshapeOptions",
	OptionsFullyConnected:   "FullyConnectedOptions",
	OptionsPad:              "PadOptions",
	OptionsTranspose:        "TransposeOptions",
	OptionsMean:             "MeanOptions",
	OptionsRelu:             "ReluOptions",
	OptionsENNNPU:           "ENN_NPUOptions",
	OptionsENNDSP:           "ENN_DSPOptions",
	OptionsENNUnifiedDevice: "ENN_UNIFIED_DEVICEOptions",
	OptionsENNNormalization: "ENN_NormalizationOptions",
	OptionsENNCFU:           "ENN_CFUOptions",
	OptionsENNInverseCFU:    "ENN_InverseCFUOptions",
	OptionsENNDetection:     "ENN_DetectionOptions",
	OptionsENNFlatten:       "ENN_FlattenOptions",
}

// String returns the schema name of the option table.
func (o BuiltinOptions) String() string {
	if o < optionsCount {
		return builtinOptionsNames[o]
	}
	return "BuiltinOptions(" + strconv.Itoa(int(o)) + ")"
}

// Valid reports whether o is a known union tag.
func (o BuiltinOptions) Valid() bool {
	return o < optionsCount
}

// Padding is the padding scheme of convolution and pooling options.
type Padding int8

// Padding schemes.
const (
	PaddingSame Padding = iota
	PaddingValid
)

// Activation is a fused activation function.
type Activation int8

// Fused activations.
const (
	ActivationNone Activation = iota
	ActivationRelu
	ActivationReluN1To1
	ActivationRelu6
	ActivationTanh
	ActivationSignBit
	ActivationSigmoid
)

// QuantType selects the (de)quantization scheme.
type QuantType uint32

// Quantization schemes.
const (
	QuantAsymm QuantType = iota
	QuantSymm
)

// TargetHw is the per-operator hardware target. Values match ir.Accelerator.
type TargetHw int32

// Hardware targets.
const (
	TargetNone TargetHw = iota
	TargetCPU
	TargetGPU
	TargetNPU
	TargetDSP
)
