package parser

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/logutil"
)

// rename is a deferred tensor name update.
type rename struct {
	index int32
	name  string
}

// linkNNC rewrites operator edges once all records exist.
//
//  1. Inputs and outputs that name binary tensors move to the binary list;
//     the rest become tensor adjacency. Negative indexes mark omitted
//     optional operands and are kept as ir.Undefined.
//  2. Option records are linked back to their operators.
//  3. Device binaries take the names of the matching NPU and DSP option
//     records, in order of appearance.
func linkNNC(s *ir.Store, binaryTensors map[int32]int32, sharedMem, nameBinaries bool) error {
	for pos, op := range s.Operators() {
		var inputs, outputs, binaries []int32
		addBinary := func(tidx int32) bool {
			b, ok := binaryTensors[tidx]
			if !ok {
				return false
			}
			if _, ok := s.Binary(b); !ok {
				slog.Warn("operator references an incomplete binary", "operator", op.Index, "tensor", tidx)
				return true
			}
			if !slices.Contains(binaries, b) {
				binaries = append(binaries, b)
			}
			return true
		}

		for _, idx := range op.Inputs {
			if idx < 0 {
				inputs = append(inputs, ir.Undefined)
				continue
			}
			if addBinary(idx) {
				continue
			}
			if err := ir.AddNextOperator(s, idx, int32(pos)); err != nil {
				return fmt.Errorf("operator %d input: %w", op.Index, err)
			}
			inputs = append(inputs, idx)
		}
		for _, idx := range op.Outputs {
			if idx < 0 {
				continue
			}
			if addBinary(idx) {
				continue
			}
			if err := ir.SetPrevOperator(s, idx, int32(pos)); err != nil {
				return fmt.Errorf("operator %d output: %w", op.Index, err)
			}
			outputs = append(outputs, idx)
		}
		if err := ir.SetOperatorEdges(s, pos, inputs, outputs, binaries); err != nil {
			return err
		}
	}

	if err := linkOptions(s); err != nil {
		return err
	}
	if !nameBinaries {
		return nil
	}

	npu, dsp := 0, 0
	for _, b := range s.Binaries() {
		switch {
		case isNPUName(b.Name) && npu < len(s.NPUOptions()):
			if err := ir.SetBinaryName(s, b.Index, s.NPUOptions()[npu].Name); err != nil {
				return err
			}
			if err := ir.SetNPUSharedMem(s, npu, sharedMem); err != nil {
				return err
			}
			npu++
		case isDSPName(b.Name) && dsp < len(s.DSPOptions()):
			if err := ir.SetBinaryName(s, b.Index, s.DSPOptions()[dsp].Name); err != nil {
				return err
			}
			dsp++
		}
	}
	logutil.Trace("linked nnc graph", "operators", len(s.Operators()), "npu", npu, "dsp", dsp)
	return nil
}

func linkOptions(s *ir.Store) error {
	for i, o := range s.OperatorOptions() {
		if o.OperatorIndex < 0 {
			continue
		}
		if err := ir.SetOperatorOptionsIndex(s, int(o.OperatorIndex), int32(i)); err != nil {
			return fmt.Errorf("options %d: %w", i, err)
		}
	}
	return nil
}

// linkCGO builds tensor adjacency for a raw graph and applies renames.
//
// A DSP operator works on the flat device parameter range [0, devParams):
// its outputs get it as producer and every other parameter that is not a
// graph output gets it as consumer.
func linkCGO(s *ir.Store, info ir.GraphInfo, devParams int32, renames []rename) error {
	for pos, op := range s.Operators() {
		if op.Accelerator == ir.AccelDSP {
			for idx := int32(0); idx < devParams; idx++ {
				var err error
				switch {
				case slices.Contains(op.Outputs, idx):
					err = ir.SetPrevOperator(s, idx, int32(pos))
				case !slices.Contains(info.Outputs, idx):
					err = ir.AddNextOperator(s, idx, int32(pos))
				}
				if err != nil {
					return fmt.Errorf("dsp operator %d: %w", op.Index, err)
				}
			}
			continue
		}

		for _, idx := range op.Inputs {
			if err := ir.AddNextOperator(s, idx, int32(pos)); err != nil {
				return fmt.Errorf("operator %d input: %w", op.Index, err)
			}
		}
		for _, idx := range op.Outputs {
			if err := ir.SetPrevOperator(s, idx, int32(pos)); err != nil {
				return fmt.Errorf("operator %d output: %w", op.Index, err)
			}
		}
	}

	for _, r := range renames {
		if _, ok := s.Tensor(r.index); !ok {
			slog.Debug("rename of unknown tensor", "index", r.index, "name", r.name)
			continue
		}
		if err := ir.SetTensorName(s, r.index, r.name); err != nil {
			return err
		}
	}
	logutil.Trace("linked cgo graph", "operators", len(s.Operators()), "renames", len(renames))
	return nil
}
