// Package arena materializes component tensors into backend tensors for
// one operator list at a time and recycles intermediate storage once the
// last consumer of a tensor has been compiled.
package arena

import (
	"fmt"
	"log/slog"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/logutil"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/tensor"
)

// Allocator creates backend tensors. *tensor.Pool satisfies it.
type Allocator interface {
	New(spec tensor.Spec) (*tensor.RawTensor, error)
	NewConst(spec tensor.Spec, data []byte) (*tensor.RawTensor, error)
	Recycle(t *tensor.RawTensor)
}

// Stats counts arena activity since creation.
type Stats struct {
	Materialized int // backend tensors created
	Hits         int // materializations served from the cache
	Released     int // feature maps whose storage was handed back
}

// Arena is the per-operator-list tensor cache of a constructor.
// It is not safe for concurrent use; the owner serializes access.
type Arena struct {
	alloc  Allocator
	device tensor.Device

	id     uint64
	cache  map[uint64]map[int32]*tensor.RawTensor
	refs   map[int32]int
	inputs *treeset.Set // buffer indexes no operator in the list produces
	output *treeset.Set // buffer indexes no operator in the list consumes, or graph outputs

	released map[int32]bool
	stats    Stats
}

// New creates an arena that allocates through alloc for device.
func New(alloc Allocator, device tensor.Device) *Arena {
	return &Arena{
		alloc:    alloc,
		device:   device,
		cache:    make(map[uint64]map[int32]*tensor.RawTensor),
		refs:     make(map[int32]int),
		inputs:   treeset.NewWith(utils.Int32Comparator),
		output:   treeset.NewWith(utils.Int32Comparator),
		released: make(map[int32]bool),
	}
}

// Begin starts compiling list. It counts the consumers of every feature map
// inside the list and records the list boundary. Any cache left for the
// same list id is dropped.
func (a *Arena) Begin(list *model.OperatorList) {
	a.End()
	a.Close(list.ID)
	a.id = list.ID
	a.cache[list.ID] = make(map[int32]*tensor.RawTensor)

	m := list.Model()
	members := treeset.NewWith(utils.Int32Comparator)
	for _, op := range list.Operators {
		members.Add(op.ID)
	}
	consumed := treeset.NewWith(utils.Int32Comparator)
	produced := treeset.NewWith(utils.Int32Comparator)
	// A feature map read by an operator of another list is handed out even
	// when this list also consumes it.
	escapes := treeset.NewWith(utils.Int32Comparator)
	for _, op := range list.Operators {
		for _, t := range m.InputTensors(op) {
			if t == nil || t.Kind != model.FeatureMap {
				continue
			}
			a.refs[t.BufferIndex]++
			consumed.Add(t.BufferIndex)
		}
		for _, t := range m.OutputTensors(op) {
			if t == nil {
				continue
			}
			produced.Add(t.BufferIndex)
			for _, next := range t.Next {
				if !members.Contains(next) {
					escapes.Add(t.BufferIndex)
					break
				}
			}
		}
	}

	for _, v := range consumed.Values() {
		if !produced.Contains(v) {
			a.inputs.Add(v)
		}
	}
	for _, v := range produced.Values() {
		if !consumed.Contains(v) || escapes.Contains(v) || m.IsGraphOutput(v.(int32)) {
			a.output.Add(v)
		}
	}
	logutil.Trace("arena begin", "list", fmt.Sprintf("0x%x", list.ID), "tracked", len(a.refs),
		"inputs", a.inputs.Values(), "outputs", a.output.Values())
}

// End drops the consumer counters and boundary sets. Materialized tensors
// stay cached until Close.
func (a *Arena) End() {
	clear(a.refs)
	clear(a.released)
	a.inputs.Clear()
	a.output.Clear()
}

// Close drops the cache of list id and hands its storage back.
func (a *Arena) Close(id uint64) {
	cached, ok := a.cache[id]
	if !ok {
		return
	}
	for _, t := range cached {
		a.alloc.Recycle(t)
	}
	delete(a.cache, id)
	slog.Debug("arena closed", "list", fmt.Sprintf("0x%x", id), "tensors", len(cached))
}

// Boundary reports whether idx is an input or output of the current list.
func (a *Arena) Boundary(idx int32) bool {
	return a.inputs.Contains(idx) || a.output.Contains(idx)
}

// Inputs returns the buffer indexes the current list reads from outside, in
// ascending order.
func (a *Arena) Inputs() []int32 {
	return values(a.inputs)
}

// Outputs returns the buffer indexes the current list hands out, in
// ascending order.
func (a *Arena) Outputs() []int32 {
	return values(a.output)
}

func values(s *treeset.Set) []int32 {
	out := make([]int32, 0, s.Size())
	for _, v := range s.Values() {
		out = append(out, v.(int32))
	}
	return out
}

// Live reports whether idx still has consumers left to compile.
func (a *Arena) Live(idx int32) bool {
	return a.refs[idx] > 0
}

// ReuseEligible reports whether the storage of idx was handed back.
func (a *Arena) ReuseEligible(idx int32) bool {
	return a.released[idx]
}

// Cached returns the backend tensor materialized for idx in the current list.
func (a *Arena) Cached(idx int32) (*tensor.RawTensor, bool) {
	t, ok := a.cache[a.id][idx]
	return t, ok
}

// Stats returns the arena counters.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Materialize returns the backend tensor of t at precision p.
//
// Feature maps and scalars are created once per buffer index and list; a
// second request returns the same handle. Parameters are uploaded on every
// request.
func (a *Arena) Materialize(t *model.Tensor, p tensor.Precision) (*tensor.RawTensor, error) {
	shape := tensor.ShapeOf(t.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: tensor %d (%s): %w", ir.ErrInvalidShape, t.ID, t.Name, err)
	}
	spec := tensor.Spec{
		Name:        t.Name,
		Shape:       shape,
		DType:       t.DType,
		Precision:   p,
		Device:      a.device,
		BufferIndex: int(t.BufferIndex),
	}
	if t.Quant != nil && len(t.Quant.Scale) > 0 {
		spec.Scale = t.Quant.Scale[0]
		if len(t.Quant.ZeroPoint) > 0 {
			spec.ZeroPoint = int32(t.Quant.ZeroPoint[0])
		}
	}

	if t.Kind == model.Parameter {
		if len(t.Data) == 0 {
			return nil, fmt.Errorf("%w: parameter %d (%s) has no data", ir.ErrAllocationFailed, t.ID, t.Name)
		}
		rt, err := a.alloc.NewConst(spec, t.Data)
		if err != nil || rt == nil {
			return nil, fmt.Errorf("%w: parameter %d (%s): %v", ir.ErrAllocationFailed, t.ID, t.Name, err)
		}
		a.stats.Materialized++
		return rt, nil
	}

	cache, ok := a.cache[a.id]
	if !ok {
		cache = make(map[int32]*tensor.RawTensor)
		a.cache[a.id] = cache
	}
	if rt, ok := cache[t.BufferIndex]; ok {
		a.stats.Hits++
		return rt, nil
	}
	rt, err := a.alloc.New(spec)
	if err != nil || rt == nil {
		return nil, fmt.Errorf("%w: tensor %d (%s): %v", ir.ErrAllocationFailed, t.ID, t.Name, err)
	}
	cache[t.BufferIndex] = rt
	a.stats.Materialized++
	return rt, nil
}

// Consume records that one consumer of t was compiled. When no consumer is
// left and t is not on the list boundary, its storage is handed back; the
// handle itself stays valid.
func (a *Arena) Consume(t *model.Tensor) {
	if t == nil || t.Kind != model.FeatureMap {
		return
	}
	idx := t.BufferIndex
	if a.refs[idx] <= 0 {
		return
	}
	a.refs[idx]--
	if a.refs[idx] > 0 || a.Boundary(idx) {
		return
	}
	rt, ok := a.Cached(idx)
	if !ok {
		return
	}
	a.alloc.Recycle(rt)
	a.released[idx] = true
	a.stats.Released++
	logutil.Trace("inter buffer reuse", "buffer", idx, "name", t.Name)
}
