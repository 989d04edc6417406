package model

import (
	"slices"

	"github.com/google/uuid"

	"github.com/born-ml/modelir/internal/tensor"
)

// Direction tells who owns a buffer at execution time.
type Direction int

// Buffer directions.
const (
	DirectionInput  Direction = iota // filled by the caller
	DirectionOutput                  // read back by the caller
	DirectionExt                     // internal to the model
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "IN"
	case DirectionOutput:
		return "OUT"
	default:
		return "EXT"
	}
}

// BufferMeta describes one buffer the runtime allocates for a model.
// Buffers that share a Region are bound to the same memory.
type BufferMeta struct {
	Name           string
	Index          int32
	Shape          []int32
	DType          tensor.DataType
	Size           int
	Direction      Direction
	DirectionIndex int
	Region         int
}

// Model is the component view of a parsed graph.
type Model struct {
	ID        uuid.UUID
	Attribute Attribute

	// Inputs and Outputs are the subgraph boundary tensor ids.
	Inputs  []int32
	Outputs []int32

	// Order lists operator ids in execution order.
	Order []int32

	Lists   []*OperatorList
	Buffers []BufferMeta

	tensors   []*Tensor
	tensorPos map[int32]int
	operators []*Operator
}

// Tensors returns the tensors in record order.
func (m *Model) Tensors() []*Tensor {
	return m.tensors
}

// Tensor looks up a tensor by id.
func (m *Model) Tensor(id int32) (*Tensor, bool) {
	pos, ok := m.tensorPos[id]
	if !ok {
		return nil, false
	}
	return m.tensors[pos], true
}

// Operators returns the operators indexed by id.
func (m *Model) Operators() []*Operator {
	return m.operators
}

// Operator looks up an operator by id.
func (m *Model) Operator(id int32) (*Operator, bool) {
	if id < 0 || int(id) >= len(m.operators) {
		return nil, false
	}
	return m.operators[id], true
}

// InputTensors resolves the inputs of op. Omitted optional inputs resolve
// to nil so positions are preserved.
func (m *Model) InputTensors(op *Operator) []*Tensor {
	return m.resolve(op.Inputs)
}

// OutputTensors resolves the outputs of op.
func (m *Model) OutputTensors(op *Operator) []*Tensor {
	return m.resolve(op.Outputs)
}

func (m *Model) resolve(ids []int32) []*Tensor {
	out := make([]*Tensor, len(ids))
	for i, id := range ids {
		out[i], _ = m.Tensor(id)
	}
	return out
}

// List looks up an operator list by id.
func (m *Model) List(id uint64) (*OperatorList, bool) {
	for _, l := range m.Lists {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// IsGraphOutput reports whether id is a subgraph output.
func (m *Model) IsGraphOutput(id int32) bool {
	return slices.Contains(m.Outputs, id)
}
