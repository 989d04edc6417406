package model

import (
	"encoding/binary"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/tensor"
)

// Kind classifies a component tensor.
type Kind int

// Tensor kinds.
const (
	FeatureMap Kind = iota // written by an operator or fed by the caller
	Parameter              // constant data from the model
	Scalar                 // per-session value with no producer
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case FeatureMap:
		return "FeatureMap"
	case Parameter:
		return "Parameter"
	case Scalar:
		return "Scalar"
	default:
		return "Unknown"
	}
}

// FeatureMapType places a feature map relative to the subgraph boundary.
type FeatureMapType int

// Feature map types.
const (
	Intermediate FeatureMapType = iota
	SubgraphInput
	SubgraphOutput
)

// String returns the feature map type name.
func (t FeatureMapType) String() string {
	switch t {
	case SubgraphInput:
		return "SUBGRAPH_INPUT"
	case SubgraphOutput:
		return "SUBGRAPH_OUTPUT"
	default:
		return "INTERMEDIATE"
	}
}

// Tensor is a classified tensor of a generated model.
// Prev and Next hold operator ids; Prev is ir.Undefined when the tensor has
// no producer.
type Tensor struct {
	ID          int32
	Name        string
	Kind        Kind
	Type        FeatureMapType // feature maps only
	DType       tensor.DataType
	Shape       []int32
	BufferIndex int32 // ir.Undefined for parameters
	BufferSize  int
	Data        []byte
	FD          int
	Offset      int64
	Quant       *ir.Quantization
	PerChannel  *ir.PerChannelQuantization
	Prev        int32
	Next        []int32
}

// Const reports whether the tensor is never written by an operator.
func (t *Tensor) Const() bool {
	return t.Kind != FeatureMap
}

// Binary is a device program attached to an operator.
type Binary struct {
	Name        string
	Accelerator ir.Accelerator
	Data        []byte
	FD          int
	Offset      int64
	Size        int
}

// Option is the option table of an operator.
type Option struct {
	Name   string
	Number int32
	Table  *flatbuffers.Table
	Raw    []byte
}

// Operator is one operator of a generated model.
// Inputs and Outputs hold tensor ids; an omitted optional input keeps its
// position as ir.Undefined.
type Operator struct {
	ID           int32
	Index        int32
	Name         string
	Code         int32
	Accelerator  ir.Accelerator
	LibNames     []string
	Binaries     []Binary
	Option       *Option
	Inputs       []int32
	Outputs      []int32
	IFMBound     bool
	OFMBound     bool
	DSPAsyncExec bool
}

// Attribute carries the model-wide compilation hints an operator list is
// compiled with.
type Attribute struct {
	LegacyModel           ir.LegacyModel
	RelaxFloat32ToFloat16 bool
}

// OperatorList is a run of operators in execution order that share one
// accelerator. It is the unit of compilation.
type OperatorList struct {
	ID          uint64
	Accelerator ir.Accelerator
	Attribute   Attribute
	Operators   []*Operator

	model *Model
}

// Model returns the model the list belongs to.
func (l *OperatorList) Model() *Model {
	return l.model
}

// ListID derives the id of the n-th operator list of a model. The upper 40
// bits come from the model id, the next 16 carry n and the low byte is zero.
func ListID(id uuid.UUID, n int) uint64 {
	return binary.BigEndian.Uint64(id[:8])&^0xFFFFFF | uint64(uint16(n))<<8
}
