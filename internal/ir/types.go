package ir

// Undefined marks an absent index.
const Undefined int32 = -1

// Accelerator is the execution unit an operator or binary targets.
// The numeric values match the per-operator hardware target field of the
// table-based format.
type Accelerator int32

// Accelerators.
const (
	AccelNone Accelerator = iota
	AccelCPU
	AccelGPU
	AccelNPU
	AccelDSP
	AccelCustomCPUKernel
)

// String returns the accelerator name.
func (a Accelerator) String() string {
	switch a {
	case AccelNone:
		return "NONE"
	case AccelCPU:
		return "CPU"
	case AccelGPU:
		return "GPU"
	case AccelNPU:
		return "NPU"
	case AccelDSP:
		return "DSP"
	case AccelCustomCPUKernel:
		return "CUSTOM_CPU_KERNEL"
	default:
		return "UNKNOWN"
	}
}

// LegacyModel is the source framework family a model was converted from.
// It selects layout and padding conventions downstream.
type LegacyModel int32

// Legacy model families.
const (
	LegacyCaffe LegacyModel = iota
	LegacyCaffeNCHW
	LegacyCaffeNHWC
	LegacyTensorflowNCHW
	LegacyTensorflowNHWC
	LegacyAndroidNN
	LegacyNone
)

// String returns the legacy model name.
func (l LegacyModel) String() string {
	switch l {
	case LegacyCaffe:
		return "CAFFE"
	case LegacyCaffeNCHW:
		return "CAFFE_NCHW"
	case LegacyCaffeNHWC:
		return "CAFFE_NHWC"
	case LegacyTensorflowNCHW:
		return "TENSORFLOW_NCHW"
	case LegacyTensorflowNHWC:
		return "TENSORFLOW_NHWC"
	case LegacyAndroidNN:
		return "ANDROID_NN"
	case LegacyNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ModelType identifies the wire format a graph was parsed from.
type ModelType int32

// Model types.
const (
	ModelTypeNone ModelType = iota
	ModelTypeNNC
	ModelTypeCGO
)

// String returns the model type name.
func (m ModelType) String() string {
	switch m {
	case ModelTypeNNC:
		return "NNC"
	case ModelTypeCGO:
		return "CGO"
	default:
		return "NONE"
	}
}
