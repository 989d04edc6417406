package parser

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/cgo"
	"github.com/born-ml/modelir/internal/tensor"
)

// dspBinaryIndex is the binary index of the DSP graph program.
const dspBinaryIndex = 0

// CGOStrategy parses the raw graph format.
type CGOStrategy struct {
	*pipeline

	graph   cgo.RawGraph
	core    cgo.Core
	hasCore bool
	version uint32

	// info is parsed ahead of the operators; tensor classification needs
	// the graph boundary.
	info ir.GraphInfo

	mu      sync.Mutex
	renames *treemap.Map // tensor index -> name
}

// NewCGO creates a CGO strategy over buf.
func NewCGO(buf []byte, opts Options) *CGOStrategy {
	return &CGOStrategy{
		pipeline: newPipeline(buf, opts),
		renames:  treemap.NewWithIntComparator(),
	}
}

// Verify checks the buffer structure and the graph format version.
func (s *CGOStrategy) Verify() error {
	return s.verify("CGO", func() error {
		if err := cgo.Verify(s.buf); err != nil {
			return err
		}
		g := cgo.GetRootAsRawGraph(s.buf)
		header, ok := g.Header()
		if !ok {
			return fmt.Errorf("raw graph has no header")
		}
		s.version = header.GraphFormatVersion()
		if s.version < cgo.MinGraphFormatVersion {
			return fmt.Errorf("graph format version %d is older than %d", s.version, cgo.MinGraphFormatVersion)
		}
		s.graph = g
		s.core, s.hasCore = g.Core()
		slog.Debug("cgo graph", "version", s.version, "params", len(s.opts.Params))
		return nil
	})
}

// param returns side parameter i, an empty parameter when none was supplied.
func (s *CGOStrategy) param(i int) SideParam {
	if i < 0 || i >= len(s.opts.Params) {
		return SideParam{FD: -1}
	}
	return s.opts.Params[i]
}

func (s *CGOStrategy) rename(index uint32, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renames.Put(int(index), name)
}

// poolIndexes maps core buffer (or scalar) references to parameter pool
// indexes and records the referenced names as renames.
func (s *CGOStrategy) poolIndexes(refs []int32, scalar bool) ([]int32, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	if !s.hasCore {
		return nil, fmt.Errorf("buffer references without a graph core")
	}
	n := s.core.BuffersLength()
	if scalar {
		n = s.core.ScalarsLength()
	}

	out := make([]int32, 0, len(refs))
	for _, r := range refs {
		if r < 0 || int(r) >= n {
			return nil, fmt.Errorf("buffer reference %d out of range [0, %d)", r, n)
		}
		ref := s.core.Buffers(int(r))
		if scalar {
			ref = s.core.Scalars(int(r))
		}
		s.rename(ref.PoolIndex(), ref.Name())
		out = append(out, int32(ref.PoolIndex()))
	}
	return out, nil
}

// parseGraphInfo reads the graph boundary ahead of the operator stage.
func (s *CGOStrategy) parseGraphInfo() error {
	if header, ok := s.graph.Header(); ok {
		s.info.Name, _ = header.Name()
	}
	if !s.hasCore || s.core.BuffersLength() == 0 {
		return nil
	}
	var err error
	if s.info.Inputs, err = s.boundary(s.core.GraphInBuffers()); err != nil {
		return fmt.Errorf("graph inputs: %w", err)
	}
	if s.info.Outputs, err = s.boundary(s.core.GraphOutBuffers()); err != nil {
		return fmt.Errorf("graph outputs: %w", err)
	}
	return nil
}

func (s *CGOStrategy) boundary(refs []int32) ([]int32, error) {
	out := make([]int32, 0, len(refs))
	for _, r := range refs {
		if r < 0 || int(r) >= s.core.BuffersLength() {
			return nil, fmt.Errorf("buffer reference %d out of range [0, %d)", r, s.core.BuffersLength())
		}
		out = append(out, int32(s.core.Buffers(int(r)).PoolIndex()))
	}
	return out, nil
}

// ParseOperators records the pre-CPU, core and post-CPU messages in order.
func (s *CGOStrategy) ParseOperators() error {
	return s.step(StateVerified, StateOperatorsParsed, func() error {
		if err := s.parseGraphInfo(); err != nil {
			return err
		}

		var msgs []cgo.MacroSubGraph
		for j := 0; j < s.graph.PreCPUCoreLength(); j++ {
			msgs = append(msgs, s.graph.PreCPUCore(j))
		}
		if s.hasCore {
			for j := 0; j < s.core.MsgsLength(); j++ {
				msgs = append(msgs, s.core.Msgs(j))
			}
		}
		for j := 0; j < s.graph.PostCPUCoreLength(); j++ {
			msgs = append(msgs, s.graph.PostCPUCore(j))
		}

		for _, msg := range msgs {
			if err := s.parseOperator(msg); err != nil {
				return fmt.Errorf("message %d: %w", msg.MsgID(), err)
			}
		}
		return nil
	})
}

func (s *CGOStrategy) parseOperator(msg cgo.MacroSubGraph) error {
	op := ir.Operator{
		Index:        int32(msg.MsgID()),
		Code:         msg.FunctionID(),
		Name:         cgo.KernelName(msg.FunctionID()),
		Accelerator:  ir.AccelCustomCPUKernel,
		OptionsIndex: ir.Undefined,
	}
	if msg.AssignedTarget().IsDSP() {
		op.Accelerator = ir.AccelDSP
	}

	var err error
	if op.Outputs, err = s.poolIndexes(msg.OutBuffers(), false); err != nil {
		return err
	}

	if op.Accelerator != ir.AccelDSP {
		inputs, err := s.poolIndexes(msg.InBuffers(), false)
		if err != nil {
			return err
		}
		scalars, err := s.poolIndexes(msg.UsrScalars(), true)
		if err != nil {
			return err
		}
		op.Inputs = append(inputs, scalars...)
		_, err = ir.AddOperator(s.store, op)
		return err
	}

	if op.LibNames, err = s.addDSPBinary(); err != nil {
		return err
	}
	op.Binaries = []int32{dspBinaryIndex}
	if _, err := s.poolIndexes(msg.InBuffers(), false); err != nil {
		return err
	}
	if _, err := s.poolIndexes(msg.UsrScalars(), true); err != nil {
		return err
	}
	if pool, ok := s.graph.Param(); ok {
		for idx := int32(0); idx < pool.DevParamMaxIdx(); idx++ {
			if !slices.Contains(op.Outputs, idx) {
				op.Inputs = append(op.Inputs, idx)
			}
		}
	}
	_, err = ir.AddOperator(s.store, op)
	return err
}

// addDSPBinary records the DSP graph program on first use and returns the
// library names it links against.
func (s *CGOStrategy) addDSPBinary() ([]string, error) {
	var name string
	var libs []string
	if ti, ok := s.targetInfo(); ok {
		switch ti.Type() {
		case cgo.GraphTypeNN2018:
			if dsp, ok := ti.DSP2018(); ok {
				if g, ok := dsp.GraphInfo(); ok {
					name = g.Name()
				}
			}
		case cgo.GraphTypeCVNN2019:
			if dsp, ok := ti.DSP2019(); ok {
				if g, ok := dsp.GraphInfo(); ok {
					name = g.Name()
				}
				libs = dsp.LibPaths()
			}
		default:
			slog.Warn("invalid DSP graph type", "type", ti.Type())
		}
	}

	if _, ok := s.store.Binary(dspBinaryIndex); ok {
		return libs, nil
	}
	p := s.param(0)
	return libs, ir.AddBinary(s.store, ir.Binary{
		Index:       dspBinaryIndex,
		Name:        name,
		Accelerator: ir.AccelDSP,
		Data:        p.Data,
		FD:          p.FD,
		Offset:      p.Offset,
		Size:        p.Size,
		BufferIndex: ir.Undefined,
	})
}

func (s *CGOStrategy) targetInfo() (cgo.TargetInfo, bool) {
	if !s.hasCore {
		return cgo.TargetInfo{}, false
	}
	return s.core.TargetInfo()
}

// ParseTensors records one UINT8 tensor per parameter list entry.
func (s *CGOStrategy) ParseTensors() error {
	return s.step(StateOperatorsParsed, StateTensorsParsed, func() error {
		if pool, ok := s.graph.Param(); ok {
			for i := 0; i < pool.ParamListLength(); i++ {
				if err := s.parseTensor(i, pool.ParamList(i)); err != nil {
					return fmt.Errorf("param %d: %w", i, err)
				}
			}
		}

		if s.hasCore {
			for j := 0; j < s.core.BuffersLength(); j++ {
				ref := s.core.Buffers(j)
				if strings.Contains(ref.Name(), "Shape") {
					s.rename(ref.PoolIndex(), ref.Name())
				}
			}
		}
		return nil
	})
}

func (s *CGOStrategy) parseTensor(i int, e cgo.ParamElement) error {
	info, ok := e.BufInfo()
	if !ok {
		return fmt.Errorf("no buffer info")
	}
	idx := int32(i)
	p := s.param(i + 1)
	size := info.Size()

	// Sized blobs not stored in the file get fresh memory and no descriptor;
	// they are parameters, not scalars.
	boundary := slices.Contains(s.info.Inputs, idx) || slices.Contains(s.info.Outputs, idx)
	return ir.AddTensor(s.store, ir.Tensor{
		Index:    idx,
		Name:     info.Name(),
		Type:     tensor.Uint8,
		Shape:    []int32{1, 1, 1, int32(size)},
		Size:     int(size),
		Data:     p.Bytes(),
		FD:       p.FD,
		Offset:   p.Offset,
		Prev:     ir.Undefined,
		IsScalar: p.FD < 0 && p.Data == nil && !boundary,
	})
}

// ParseOperatorOptions is a no-op; raw graphs carry no option tables.
func (s *CGOStrategy) ParseOperatorOptions() error {
	return s.step(StateTensorsParsed, StateOptionsParsed, func() error { return nil })
}

// ParseAttribute records the graph format version.
func (s *CGOStrategy) ParseAttribute() error {
	return s.step(StateOptionsParsed, StateAttributeParsed, func() error {
		return ir.SetAttribute(s.store, ir.Attribute{Version: s.version, ModelType: ir.ModelTypeCGO})
	})
}

// ParseGraphInfos stores the graph boundary read before the operators.
func (s *CGOStrategy) ParseGraphInfos() error {
	return s.step(StateAttributeParsed, StateGraphInfoParsed, func() error {
		return ir.AddGraphInfo(s.store, s.info)
	})
}

// Link resolves adjacency and applies the recorded tensor renames.
func (s *CGOStrategy) Link() error {
	return s.step(StateGraphInfoParsed, StateLinked, func() error {
		var devParams int32
		if pool, ok := s.graph.Param(); ok {
			devParams = pool.DevParamMaxIdx()
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		renames := make([]rename, 0, s.renames.Size())
		it := s.renames.Iterator()
		for it.Next() {
			renames = append(renames, rename{index: int32(it.Key().(int)), name: it.Value().(string)})
		}
		return linkCGO(s.store, s.info, devParams, renames)
	})
}
