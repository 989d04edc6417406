package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/options"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

// NNC schema revisions. Version 3 files follow the V1 rules; version 2 and
// everything from 200 on follow the V2 rules.
const (
	nncVersionV1       = 3
	nncVersionV2Legacy = 2
	nncVersionV2Min    = 200
)

// Binary tensor name parts.
const (
	categoryBinary = "BINARY"
	categoryName   = "NAME"
	sharedMemName  = "Shared_Mem"
)

func isNPUName(name string) bool {
	return name == "NCP" || name == "NPU" || name == "ENN_NPU"
}

func isDSPName(name string) bool {
	return name == "DSP" || name == "ENN_DSP"
}

func isBinaryTensor(name string) bool {
	if len(name) < 3 {
		return false
	}
	switch name[:3] {
	case "NCP", "NPU", "DSP":
		return true
	}
	return false
}

func targetAccelerator(target string) ir.Accelerator {
	switch {
	case isNPUName(target):
		return ir.AccelNPU
	case isDSPName(target):
		return ir.AccelDSP
	default:
		return ir.AccelNone
	}
}

// pendingBinary is the first half of a V1 NAME/BINARY pair.
type pendingBinary struct {
	index int32
	data  []byte
	pos   int
}

// NNCStrategy parses the table-based model format.
type NNCStrategy struct {
	*pipeline

	model   nnc.Model
	version uint32
	v1      bool

	// binaryTensors maps tensor indexes of binary tensors to binary indexes.
	binaryTensors map[int32]int32
	sharedMem     bool
}

// NewNNC creates an NNC strategy over buf.
func NewNNC(buf []byte, opts Options) *NNCStrategy {
	return &NNCStrategy{
		pipeline:      newPipeline(buf, opts),
		binaryTensors: make(map[int32]int32),
	}
}

// Verify checks the buffer structure and the schema version.
func (s *NNCStrategy) Verify() error {
	return s.verify("NNC", func() error {
		if err := nnc.Verify(s.buf); err != nil {
			return err
		}
		m := nnc.GetRootAsModel(s.buf)

		s.version = m.Version()
		switch {
		case s.version == nncVersionV1:
			s.v1 = true
		case s.version == nncVersionV2Legacy, s.version >= nncVersionV2Min:
		default:
			return fmt.Errorf("unsupported schema version %d", s.version)
		}

		if m.SubgraphsLength() == 0 {
			return fmt.Errorf("model has no subgraph")
		}
		sg := m.Subgraphs(0)
		for j := 0; j < sg.OperatorsLength(); j++ {
			if idx := sg.Operators(j).OpcodeIndex(); int(idx) >= m.OperatorCodesLength() {
				return fmt.Errorf("operator %d: opcode index %d out of range [0, %d)", j, idx, m.OperatorCodesLength())
			}
		}
		for j := 0; j < sg.TensorsLength(); j++ {
			if idx := sg.Tensors(j).Buffer(); int(idx) >= m.BuffersLength() && m.BuffersLength() > 0 {
				return fmt.Errorf("tensor %d: buffer index %d out of range [0, %d)", j, idx, m.BuffersLength())
			}
		}

		s.model = m
		slog.Debug("nnc schema", "version", s.version, "v1", s.v1)
		return nil
	})
}

// operatorName returns the name of the operator code at idx and its builtin
// code, ir.Undefined for custom operators.
func (s *NNCStrategy) operatorName(idx uint32) (string, int32) {
	code := s.model.OperatorCodes(int(idx))
	if custom := code.CustomCode(); custom != "" {
		return custom, ir.Undefined
	}
	return code.BuiltinCode().String(), int32(code.BuiltinCode())
}

// ParseOperators records the operators of the first subgraph.
func (s *NNCStrategy) ParseOperators() error {
	return s.step(StateVerified, StateOperatorsParsed, func() error {
		sg := s.model.Subgraphs(0)
		for j := 0; j < sg.OperatorsLength(); j++ {
			op := sg.Operators(j)
			name, code := s.operatorName(op.OpcodeIndex())

			var accel ir.Accelerator
			switch {
			case s.v1:
				accel = targetAccelerator(name)
				if accel == ir.AccelNone {
					accel = ir.AccelCPU
				}
			case code == int32(nnc.OpENNDetection):
				accel = ir.AccelCPU
			default:
				accel = ir.Accelerator(op.TargetHw())
			}

			if _, err := ir.AddOperator(s.store, ir.Operator{
				Index:        int32(j),
				Code:         code,
				Name:         name,
				Accelerator:  accel,
				Inputs:       op.Inputs(),
				Outputs:      op.Outputs(),
				OptionsIndex: ir.Undefined,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ParseTensors records binaries and tensors of the first subgraph.
func (s *NNCStrategy) ParseTensors() error {
	return s.step(StateOperatorsParsed, StateTensorsParsed, func() error {
		sg := s.model.Subgraphs(0)
		pending := make(map[string]pendingBinary)
		var targets int32

		for j := 0; j < sg.TensorsLength(); j++ {
			t := sg.Tensors(j)
			tidx := int32(j)
			name := t.Name()

			if isBinaryTensor(name) {
				target, category, _ := strings.Cut(name, "_")
				category, _, _ = strings.Cut(category, "_")
				data, pos := s.bufferData(t.Buffer())

				if s.v1 {
					if err := s.pairBinary(pending, &targets, tidx, target, category, t.Buffer(), data, pos); err != nil {
						return err
					}
					continue
				}
				if category == categoryBinary {
					idx := int32(len(s.store.Binaries()))
					if err := ir.AddBinary(s.store, ir.Binary{
						Index:       idx,
						Name:        target,
						Accelerator: targetAccelerator(target),
						Data:        s.opts.File,
						FD:          s.opts.FD,
						Offset:      int64(pos),
						Size:        len(data),
						BufferIndex: int32(t.Buffer()),
					}); err != nil {
						return err
					}
					s.binaryTensors[tidx] = idx
				}
				continue
			}

			if name == sharedMemName {
				s.sharedMem = true
			}

			dtype := tensor.DataType(t.Type())
			shape := t.Shape()
			size := dtype.Size()
			for _, d := range shape {
				size *= int(d)
			}

			data, pos := s.bufferData(t.Buffer())
			rec := ir.Tensor{
				Index: tidx,
				Name:  name,
				Type:  dtype,
				Shape: shape,
				Size:  size,
				Data:  data,
				FD:    -1,
				Prev:  ir.Undefined,
			}
			if data != nil {
				rec.FD = s.opts.FD
				rec.Offset = int64(pos)
			}
			if q, ok := t.Quantization(); ok {
				rec.Quant = &ir.Quantization{Scale: q.Scale(), ZeroPoint: q.ZeroPoint()}
			}
			if pc, ok := t.ExtraParams(); ok {
				rec.PerChannel = &ir.PerChannelQuantization{Scales: pc.Scales(), ChannelDim: pc.ChannelDim()}
			}
			if err := ir.AddTensor(s.store, rec); err != nil {
				return err
			}
		}

		for target, p := range pending {
			if _, ok := s.store.Binary(p.index); !ok {
				slog.Warn("binary tensor without its pair", "target", target)
			}
		}
		return nil
	})
}

// pairBinary handles one V1 binary tensor. The first tensor seen for a
// target is held back; the second completes the binary, taking its name
// from the NAME payload and its data from the BINARY payload.
func (s *NNCStrategy) pairBinary(pending map[string]pendingBinary, targets *int32,
	tidx int32, target, category string, buffer uint32, data []byte, pos int,
) error {
	first, ok := pending[target]
	if !ok {
		pending[target] = pendingBinary{index: *targets, data: data, pos: pos}
		s.binaryTensors[tidx] = *targets
		*targets++
		return nil
	}

	var name []byte
	if category == categoryBinary {
		name = first.data
	} else {
		name, data, pos = data, first.data, first.pos
	}
	if err := ir.AddBinary(s.store, ir.Binary{
		Index:       first.index,
		Name:        string(bytes.TrimRight(name, "\x00")),
		Accelerator: targetAccelerator(target),
		Data:        s.opts.File,
		FD:          s.opts.FD,
		Offset:      int64(pos),
		Size:        len(data),
		BufferIndex: int32(buffer),
	}); err != nil {
		return err
	}
	s.binaryTensors[tidx] = first.index
	return nil
}

// bufferData returns the payload of buffer idx and its absolute position.
func (s *NNCStrategy) bufferData(idx uint32) ([]byte, int) {
	if int(idx) >= s.model.BuffersLength() {
		return nil, -1
	}
	b := s.model.Buffers(int(idx))
	return b.Data(), b.DataOffset()
}

// ParseOperatorOptions records builtin option tables and decodes device
// option maps.
func (s *NNCStrategy) ParseOperatorOptions() error {
	return s.step(StateTensorsParsed, StateOptionsParsed, func() error {
		sg := s.model.Subgraphs(0)
		for j := 0; j < sg.OperatorsLength(); j++ {
			op := sg.Operators(j)
			name, _ := s.operatorName(op.OpcodeIndex())
			if err := s.parseDeviceOptions(name, op); err != nil {
				return fmt.Errorf("operator %d (%s): %w", j, name, err)
			}

			tag := op.BuiltinOptionsType()
			if tag == nnc.OptionsNone {
				continue
			}
			tab, ok := op.BuiltinOptions()
			if !ok {
				continue
			}
			if err := ir.AddOperatorOptions(s.store, ir.OperatorOptions{
				OperatorIndex: int32(j),
				Number:        int32(tag),
				Name:          tag.String(),
				Table:         tab,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *NNCStrategy) parseDeviceOptions(name string, op nnc.Operator) error {
	if s.v1 {
		if isNPUName(name) {
			return s.addNPUOptions(op.CustomOptions())
		}
		return nil
	}

	tab, ok := op.BuiltinOptions()
	if !ok {
		return nil
	}
	switch {
	case isNPUName(name) && op.BuiltinOptionsType() == nnc.OptionsENNNPU:
		return s.addNPUOptions(nnc.AsDeviceOptions(tab).Metadata())
	case isDSPName(name) && op.BuiltinOptionsType() == nnc.OptionsENNDSP:
		return s.addDSPOptions(nnc.AsDeviceOptions(tab).Metadata())
	case name == nnc.OpENNUnifiedDevice.String() && op.BuiltinOptionsType() == nnc.OptionsENNUnifiedDevice:
		u := nnc.AsUnifiedDeviceOptions(tab)
		for k := 0; k < u.OptionsLength(); k++ {
			e := u.Options(k)
			var err error
			switch e.TargetHw() {
			case nnc.TargetNPU:
				err = s.addNPUOptions(e.Metadata())
			case nnc.TargetDSP:
				err = s.addDSPOptions(e.Metadata())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *NNCStrategy) addNPUOptions(blob []byte) error {
	if blob == nil {
		return nil
	}
	o, err := options.DecodeNPU(blob)
	if err != nil {
		return err
	}
	return ir.AddNPUOptions(s.store, o)
}

func (s *NNCStrategy) addDSPOptions(blob []byte) error {
	if blob == nil {
		return nil
	}
	o, err := options.DecodeDSP(blob)
	if err != nil {
		return err
	}
	return ir.AddDSPOptions(s.store, o)
}

// ParseAttribute records the schema version and the model-wide options.
func (s *NNCStrategy) ParseAttribute() error {
	return s.step(StateOptionsParsed, StateAttributeParsed, func() error {
		if err := ir.SetAttribute(s.store, ir.Attribute{Version: s.version, ModelType: ir.ModelTypeNNC}); err != nil {
			return err
		}
		legacy := ir.LegacyNone
		if compatible := s.model.Compatible(); len(compatible) > 0 {
			legacy = ir.LegacyModel(compatible[0])
		}
		return ir.SetModelOption(s.store, ir.ModelOption{
			Index:                 0,
			LegacyModel:           legacy,
			RelaxFloat32ToFloat16: s.model.Relax(),
		})
	})
}

// ParseGraphInfos records the boundary tensors of every subgraph.
func (s *NNCStrategy) ParseGraphInfos() error {
	return s.step(StateAttributeParsed, StateGraphInfoParsed, func() error {
		for j := 0; j < s.model.SubgraphsLength(); j++ {
			sg := s.model.Subgraphs(j)
			name, ok := sg.Name()
			if !ok {
				name = "NULL"
			}
			if err := ir.AddGraphInfo(s.store, ir.GraphInfo{
				Name:    name,
				Inputs:  sg.Inputs(),
				Outputs: sg.Outputs(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Link resolves adjacency, binary references and option indexes.
func (s *NNCStrategy) Link() error {
	return s.step(StateGraphInfoParsed, StateLinked, func() error {
		return linkNNC(s.store, s.binaryTensors, s.sharedMem, !s.v1)
	})
}
