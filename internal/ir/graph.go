package ir

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Graph is the frozen IR of one loaded model.
// It exposes the read accessors of its Store; every builder call on it
// fails with ErrFrozen.
type Graph struct {
	*Store

	// ID identifies this load in logs and derived oplist ids.
	ID uuid.UUID

	// Checksum is the SHA-256 of the model buffer the graph was parsed from.
	Checksum [32]byte
}

// NewGraph freezes s and wraps it as a Graph.
func NewGraph(s *Store, checksum [32]byte) *Graph {
	Freeze(s)
	return &Graph{
		Store:    s,
		ID:       uuid.New(),
		Checksum: checksum,
	}
}

// Fingerprint returns the hex encoded checksum.
func (g *Graph) Fingerprint() string {
	return hex.EncodeToString(g.Checksum[:])
}

// ModelType returns the format the graph was parsed from.
func (g *Graph) ModelType() ModelType {
	if g.Attribute() == nil {
		return ModelTypeNone
	}
	return g.Attribute().ModelType
}

// LegacyModel returns the declared source framework, LegacyNone if unknown.
func (g *Graph) LegacyModel() LegacyModel {
	if g.ModelOption() == nil {
		return LegacyNone
	}
	return g.ModelOption().LegacyModel
}

// RelaxFloat32 reports whether FP32 tensors may run at reduced precision.
func (g *Graph) RelaxFloat32() bool {
	return g.ModelOption() != nil && g.ModelOption().RelaxFloat32ToFloat16
}

// Options returns the option record linked to op, or nil.
func (g *Graph) Options(op *Operator) *OperatorOptions {
	opts := g.OperatorOptions()
	if op.OptionsIndex < 0 || int(op.OptionsIndex) >= len(opts) {
		return nil
	}
	return opts[op.OptionsIndex]
}

// InputTensors resolves the input tensor records of op, skipping unknown indexes.
func (g *Graph) InputTensors(op *Operator) []*Tensor {
	return g.resolve(op.Inputs)
}

// OutputTensors resolves the output tensor records of op, skipping unknown indexes.
func (g *Graph) OutputTensors(op *Operator) []*Tensor {
	return g.resolve(op.Outputs)
}

func (g *Graph) resolve(indexes []int32) []*Tensor {
	out := make([]*Tensor, 0, len(indexes))
	for _, idx := range indexes {
		if t, ok := g.Tensor(idx); ok {
			out = append(out, t)
		}
	}
	return out
}
