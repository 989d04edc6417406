package nnc

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

// Verify checks that buf is a structurally sound model buffer: the file
// identifier matches and every table, vector and string reachable from the
// root lies inside buf.
func Verify(buf []byte) error {
	return VerifyWith(fbs.New(buf))
}

// VerifyWith runs the model walk with a caller-configured verifier.
func VerifyWith(v *fbs.Verifier) error {
	return fbs.Run(func() error {
		if err := v.Identifier(FileIdentifier); err != nil {
			return err
		}
		root, err := v.Root()
		if err != nil {
			return err
		}
		return verifyModel(v, root)
	})
}

func verifyModel(v *fbs.Verifier, m fbs.Table) error {
	if err := v.Scalar(m, modelVersion, flatbuffers.SizeUint32); err != nil {
		return fmt.Errorf("model.version: %w", err)
	}
	if err := v.TableVector(m, modelOperatorCodes, func(_ int, c fbs.Table) error {
		return v.String(c, opcodeCustomCode)
	}); err != nil {
		return fmt.Errorf("model.operator_codes: %w", err)
	}
	if err := v.TableVector(m, modelSubgraphs, func(_ int, g fbs.Table) error {
		return verifySubGraph(v, g)
	}); err != nil {
		return fmt.Errorf("model.subgraphs: %w", err)
	}
	if err := v.String(m, modelDescription); err != nil {
		return fmt.Errorf("model.description: %w", err)
	}
	if err := v.TableVector(m, modelBuffers, func(_ int, b fbs.Table) error {
		_, err := v.Vector(b, 0, 1)
		return err
	}); err != nil {
		return fmt.Errorf("model.buffers: %w", err)
	}
	if _, err := v.Vector(m, modelCompatible, flatbuffers.SizeInt32); err != nil {
		return fmt.Errorf("model.compatible: %w", err)
	}
	if err := v.Scalar(m, modelRelax, flatbuffers.SizeBool); err != nil {
		return fmt.Errorf("model.relax: %w", err)
	}
	return nil
}

func verifySubGraph(v *fbs.Verifier, g fbs.Table) error {
	if err := v.TableVector(g, subgraphTensors, func(_ int, t fbs.Table) error {
		return verifyTensor(v, t)
	}); err != nil {
		return fmt.Errorf("tensors: %w", err)
	}
	for _, slot := range []int{subgraphInputs, subgraphOutputs} {
		if _, err := v.Vector(g, slot, flatbuffers.SizeInt32); err != nil {
			return err
		}
	}
	if err := v.TableVector(g, subgraphOperators, func(_ int, o fbs.Table) error {
		return verifyOperator(v, o)
	}); err != nil {
		return fmt.Errorf("operators: %w", err)
	}
	return v.String(g, subgraphName)
}

func verifyTensor(v *fbs.Verifier, t fbs.Table) error {
	if _, err := v.Vector(t, tensorShape, flatbuffers.SizeInt32); err != nil {
		return err
	}
	if err := v.String(t, tensorName); err != nil {
		return err
	}
	if err := v.Table(t, tensorQuantization, func(q fbs.Table) error {
		if _, err := v.Vector(q, 0, flatbuffers.SizeFloat32); err != nil {
			return err
		}
		_, err := v.Vector(q, 1, flatbuffers.SizeInt64)
		return err
	}); err != nil {
		return err
	}
	return v.Table(t, tensorExtraParams, func(p fbs.Table) error {
		_, err := v.Vector(p, 0, flatbuffers.SizeFloat32)
		return err
	})
}

func verifyOperator(v *fbs.Verifier, o fbs.Table) error {
	for _, slot := range []int{operatorInputs, operatorOutputs} {
		if _, err := v.Vector(o, slot, flatbuffers.SizeInt32); err != nil {
			return err
		}
	}
	if _, err := v.Vector(o, operatorCustomOptions, 1); err != nil {
		return err
	}
	return v.Union(o, operatorOptionsType, operatorOptions, func(tag byte, t fbs.Table) error {
		return verifyOptions(v, BuiltinOptions(tag), t)
	})
}

// verifyOptions checks the vector fields of an option table. Scalar fields
// are covered by the table walk itself.
func verifyOptions(v *fbs.Verifier, tag BuiltinOptions, t fbs.Table) error {
	var vectors []int
	elem := flatbuffers.SizeInt32
	switch tag {
	case OptionsQuantize, OptionsDequantize:
		vectors = []int{1, 2, 3}
	case OptionsConv2D:
		vectors = []int{6}
	case OptionsDepthwiseConv2D:
		vectors = []int{7}
	case OptionsAdd:
		vectors = []int{1}
	case OptionsReshape:
		vectors = []int{0}
	case OptionsENNNormalization:
		vectors = []int{0, 1}
	case OptionsENNNPU, OptionsENNDSP:
		vectors, elem = []int{0}, 1
	case OptionsENNUnifiedDevice:
		return v.TableVector(t, 0, func(_ int, e fbs.Table) error {
			_, err := v.Vector(e, 1, 1)
			return err
		})
	}
	for _, slot := range vectors {
		if _, err := v.Vector(t, slot, elem); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return nil
}
