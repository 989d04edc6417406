package ir

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/tensor"
)

// Quantization holds asymmetric quantization parameters of a tensor.
type Quantization struct {
	Scale     []float32
	ZeroPoint []int64
}

// PerChannelQuantization holds symmetric per-channel scales of a tensor.
type PerChannelQuantization struct {
	Scales     []float32
	ChannelDim int32
}

// Tensor is one tensor record.
//
// Data is a zero-copy view into the model buffer for embedded constants.
// Out-of-line blobs are described by FD and Offset instead (FD < 0 means the
// blob has no device-mappable handle).
type Tensor struct {
	Index      int32
	Name       string
	Type       tensor.DataType
	Shape      []int32
	Size       int
	Data       []byte
	FD         int
	Offset     int64
	Prev       int32   // producing operator, Undefined for graph inputs and constants
	Next       []int32 // consuming operators in link order
	IsScalar   bool
	Quant      *Quantization
	PerChannel *PerChannelQuantization
}

// Operator is one operator record.
// Code is the builtin operator code, or Undefined for custom operators which
// are identified by Name.
type Operator struct {
	Index        int32
	Code         int32
	Name         string
	LibNames     []string
	Accelerator  Accelerator
	Inputs       []int32
	Outputs      []int32
	Binaries     []int32
	OptionsIndex int32
}

// Binary is a compiled device program referenced by operators.
// Embedded binaries carry the model buffer in Data and their position in
// Offset; external ones carry an FD and the offset inside that blob.
type Binary struct {
	Index       int32
	Name        string
	Accelerator Accelerator
	Data        []byte
	FD          int
	Offset      int64
	Size        int
	BufferIndex int32
}

// Bytes returns the binary payload when it is addressable in memory.
func (b *Binary) Bytes() []byte {
	end := b.Offset + int64(b.Size)
	if b.Data == nil || b.Offset < 0 || end > int64(len(b.Data)) {
		return nil
	}
	return b.Data[b.Offset:end]
}

// GraphInfo lists the boundary tensors of one subgraph.
type GraphInfo struct {
	Name    string
	Inputs  []int32
	Outputs []int32
}

// OperatorOptions is the decoded option blob of one operator.
// Table is the zero-copy option table from the model; Raw carries a packed
// legacy layout when the options were produced by test tooling.
type OperatorOptions struct {
	OperatorIndex int32
	Number        int32
	Name          string
	Table         *flatbuffers.Table
	Raw           []byte
}

// QuantizationMode holds the NPU compiler bit widths.
type QuantizationMode struct {
	BitWidthA    uint32
	BitWidthW    uint32
	BitWidthBias uint32
	BitWidthNFU  uint32
	BitWidthC    uint32
}

// NPUOptions is the fixed schema of the NPU device option map.
type NPUOptions struct {
	BindingIFM      bool
	BindingOFM      bool
	CompiledCommand string
	Framework       string
	HWCFU           bool
	Name            string
	Model           string
	NCPVersion      string
	NPUCVersion     string
	ONNXName        string
	OptLevel        int32
	Protobin        string
	Prototxt        string
	QuantBW         string
	QuantDev        string
	QuantMode       QuantizationMode
	SoCType         string
	UseSharedMem    bool
}

// DefaultNPUOptions returns the option values used when a key is absent.
func DefaultNPUOptions() NPUOptions {
	return NPUOptions{Name: "NPU", OptLevel: Undefined}
}

// DSPOptions is the fixed schema of the DSP device option map.
type DSPOptions struct {
	AsyncExec  bool
	BindingIFM bool
	BindingOFM bool
	Name       string
}

// DefaultDSPOptions returns the option values used when a key is absent.
func DefaultDSPOptions() DSPOptions {
	return DSPOptions{Name: "DSP"}
}

// ModelOption carries model-wide compilation hints.
type ModelOption struct {
	Index                 int32
	LegacyModel           LegacyModel
	RelaxFloat32ToFloat16 bool
}

// Attribute identifies the format and version a graph was parsed from.
type Attribute struct {
	Version   uint32
	ModelType ModelType
}
