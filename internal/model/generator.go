package model

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/emirpasic/gods/utils"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/logutil"
)

// ErrCycle is returned when the operators cannot be put in execution order.
var ErrCycle = errors.New("operator graph has a cycle")

// Generate builds the component model of g.
//
// Tensors with a producer, and graph inputs, become feature maps whose
// buffer index is the tensor index. Scalars stay scalars and everything else
// is a constant parameter. Operators are ordered topologically and split
// into operator lists wherever the accelerator changes.
func Generate(g *ir.Graph) (*Model, error) {
	m := &Model{
		ID:        g.ID,
		tensorPos: make(map[int32]int),
	}
	if mo := g.ModelOption(); mo != nil {
		m.Attribute = Attribute{LegacyModel: mo.LegacyModel, RelaxFloat32ToFloat16: mo.RelaxFloat32ToFloat16}
	} else {
		m.Attribute.LegacyModel = ir.LegacyNone
	}
	for _, gi := range g.GraphInfos() {
		m.Inputs = append(m.Inputs, gi.Inputs...)
		m.Outputs = append(m.Outputs, gi.Outputs...)
	}

	generateTensors(m, g)
	if err := generateOperators(m, g); err != nil {
		return nil, err
	}

	order, err := topologicalOrder(m)
	if err != nil {
		return nil, err
	}
	m.Order = order
	m.Lists = split(m)
	m.Buffers = bufferMeta(m)

	slog.Debug("generated model", "id", m.ID, "tensors", len(m.tensors), "operators", len(m.operators),
		"lists", len(m.Lists), "buffers", len(m.Buffers))
	return m, nil
}

// featureMapType checks the inputs of every graph info before its outputs,
// so a tensor that is both is reported as an input.
func featureMapType(infos []*ir.GraphInfo, idx int32) FeatureMapType {
	for _, gi := range infos {
		if slices.Contains(gi.Inputs, idx) {
			return SubgraphInput
		}
		if slices.Contains(gi.Outputs, idx) {
			return SubgraphOutput
		}
	}
	return Intermediate
}

func generateTensors(m *Model, g *ir.Graph) {
	for _, t := range g.Tensors() {
		c := &Tensor{
			ID:          t.Index,
			Name:        t.Name,
			DType:       t.Type,
			Shape:       slices.Clone(t.Shape),
			BufferIndex: t.Index,
			BufferSize:  t.Size,
			Data:        t.Data,
			FD:          t.FD,
			Offset:      t.Offset,
			Quant:       t.Quant,
			PerChannel:  t.PerChannel,
			Prev:        t.Prev,
			Next:        slices.Clone(t.Next),
		}
		switch {
		case t.Prev != ir.Undefined || slices.Contains(m.Inputs, t.Index):
			c.Kind = FeatureMap
			c.Type = featureMapType(g.GraphInfos(), t.Index)
		case t.IsScalar:
			c.Kind = Scalar
		default:
			c.Kind = Parameter
			c.BufferIndex = ir.Undefined
		}
		m.tensorPos[c.ID] = len(m.tensors)
		m.tensors = append(m.tensors, c)
		logutil.Trace("tensor created", "id", c.ID, "name", c.Name, "kind", c.Kind)
	}
}

func generateOperators(m *Model, g *ir.Graph) error {
	for pos, op := range g.Operators() {
		c := &Operator{
			ID:          int32(pos),
			Index:       op.Index,
			Name:        op.Name,
			Code:        op.Code,
			Accelerator: op.Accelerator,
			LibNames:    slices.Clone(op.LibNames),
			Inputs:      slices.Clone(op.Inputs),
			Outputs:     slices.Clone(op.Outputs),
		}
		for _, idx := range slices.Concat(op.Inputs, op.Outputs) {
			if idx == ir.Undefined {
				continue
			}
			if _, ok := m.Tensor(idx); !ok {
				return fmt.Errorf("operator %d references tensor %d: %w", op.Index, idx, ir.ErrNotFound)
			}
		}

		for _, bidx := range op.Binaries {
			b, ok := g.Binary(bidx)
			if !ok {
				return fmt.Errorf("operator %d references binary %d: %w", op.Index, bidx, ir.ErrNotFound)
			}
			cb := Binary{Name: b.Name, Accelerator: b.Accelerator, Data: b.Data, FD: b.FD, Offset: b.Offset, Size: b.Size}
			// The NPU driver takes the program from memory, never by handle.
			if op.Accelerator == ir.AccelNPU {
				cb.Data, cb.FD, cb.Offset = b.Bytes(), -1, 0
			}
			c.Binaries = append(c.Binaries, cb)
		}

		if o := g.Options(op); o != nil {
			c.Option = &Option{Name: o.Name, Number: o.Number, Table: o.Table, Raw: o.Raw}
		}
		switch op.Accelerator {
		case ir.AccelNPU:
			if npu := g.NPUOptions(); len(npu) > 0 {
				c.IFMBound, c.OFMBound = npu[0].BindingIFM, npu[0].BindingOFM
			}
		case ir.AccelDSP:
			if dsp := g.DSPOptions(); len(dsp) > 0 {
				c.DSPAsyncExec = dsp[0].AsyncExec
				c.IFMBound, c.OFMBound = dsp[0].BindingIFM, dsp[0].BindingOFM
			}
		}
		m.operators = append(m.operators, c)
		logutil.Trace("operator created", "id", c.ID, "name", c.Name, "accel", c.Accelerator)
	}
	return nil
}

// topologicalOrder returns operator ids in execution order. Ready operators
// are taken lowest id first, so a graph whose records are already in order
// keeps that order.
func topologicalOrder(m *Model) ([]int32, error) {
	n := len(m.operators)
	indegree := make([]int, n)
	produced := make([][]*Tensor, n)
	for _, t := range m.tensors {
		if t.Prev < 0 || int(t.Prev) >= n {
			continue
		}
		produced[t.Prev] = append(produced[t.Prev], t)
		for _, next := range t.Next {
			if next != t.Prev && next >= 0 && int(next) < n {
				indegree[next]++
			}
		}
	}

	ready := binaryheap.NewWith(utils.Int32Comparator)
	for id := range n {
		if indegree[id] == 0 {
			ready.Push(int32(id))
		}
	}

	order := make([]int32, 0, n)
	for !ready.Empty() {
		v, _ := ready.Pop()
		id := v.(int32)
		order = append(order, id)
		for _, t := range produced[id] {
			for _, next := range t.Next {
				if next == id || next < 0 || int(next) >= n {
					continue
				}
				if indegree[next]--; indegree[next] == 0 {
					ready.Push(next)
				}
			}
		}
	}
	if len(order) != n {
		return nil, fmt.Errorf("%w: %d of %d operators ordered", ErrCycle, len(order), n)
	}
	return order, nil
}

// split cuts the execution order into operator lists at every accelerator
// change.
func split(m *Model) []*OperatorList {
	var lists []*OperatorList
	var cur *OperatorList
	for _, id := range m.Order {
		op := m.operators[id]
		if cur == nil || cur.Accelerator != op.Accelerator {
			cur = &OperatorList{
				ID:          ListID(m.ID, len(lists)),
				Accelerator: op.Accelerator,
				Attribute:   m.Attribute,
				model:       m,
			}
			lists = append(lists, cur)
		}
		cur.Operators = append(cur.Operators, op)
	}
	return lists
}

// betweenGPUOperators reports whether every producer and consumer of t runs
// on the GPU; the GPU driver allocates such tensors itself.
func betweenGPUOperators(m *Model, t *Tensor) bool {
	if len(t.Next) == 0 || m.IsGraphOutput(t.ID) {
		return false
	}
	prev, ok := m.Operator(t.Prev)
	if !ok || prev.Accelerator != ir.AccelGPU {
		return false
	}
	for _, id := range t.Next {
		if next, ok := m.Operator(id); !ok || next.Accelerator != ir.AccelGPU {
			return false
		}
	}
	return true
}

// bufferMeta lists the buffers the runtime allocates, walking operators in
// execution order. Every buffer gets its own region unless a device
// operator binds its inputs or outputs to one.
func bufferMeta(m *Model) []BufferMeta {
	var metas []BufferMeta
	var dirIndex [3]int
	region := 0
	seen := make(map[int32]int)

	add := func(t *Tensor, dir Direction) {
		metas = append(metas, BufferMeta{
			Name:           t.Name,
			Index:          t.BufferIndex,
			Shape:          t.Shape,
			DType:          t.DType,
			Size:           t.BufferSize,
			Direction:      dir,
			DirectionIndex: dirIndex[dir],
			Region:         region,
		})
		dirIndex[dir]++
		seen[t.ID] = len(metas) - 1
	}

	for _, id := range m.Inputs {
		t, ok := m.Tensor(id)
		if !ok || t.Kind != FeatureMap {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		add(t, DirectionInput)
		region++
	}

	for _, id := range m.Order {
		op := m.operators[id]
		inputs := m.InputTensors(op)

		if op.Accelerator == ir.AccelNPU && op.IFMBound {
			bound := region
			for _, t := range inputs {
				if i, ok := seen[tensorID(t)]; ok && t.Kind == FeatureMap {
					bound = min(bound, metas[i].Region)
				}
			}
			for _, t := range inputs {
				if i, ok := seen[tensorID(t)]; ok && t.Kind == FeatureMap {
					metas[i].Region = bound
				}
			}
		}

		for _, t := range inputs {
			if t == nil || t.Kind != Scalar {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			add(t, DirectionExt)
			region++
		}

		bindOutputs := op.OFMBound && (op.Accelerator == ir.AccelNPU || op.Accelerator == ir.AccelDSP)
		added := false
		for _, t := range m.OutputTensors(op) {
			if t == nil || betweenGPUOperators(m, t) {
				continue
			}
			// Several device operators may write the same tensor.
			if _, dup := seen[t.ID]; dup {
				continue
			}
			dir := DirectionExt
			if m.IsGraphOutput(t.ID) {
				dir = DirectionOutput
			}
			add(t, dir)
			added = true
			if !bindOutputs {
				region++
			}
		}
		if bindOutputs && added {
			region++
		}
	}
	return metas
}

func tensorID(t *Tensor) int32 {
	if t == nil {
		return ir.Undefined
	}
	return t.ID
}
