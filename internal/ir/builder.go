package ir

import (
	"fmt"
	"slices"
)

// The functions below are the only way to mutate a Store.
// Each one takes the store exclusively plus the index of the record it
// creates or edits.

func checkWritable(s *Store) error {
	if s.frozen {
		return ErrFrozen
	}
	return nil
}

// AddTensor appends a tensor record. Tensor indexes must be unique.
func AddTensor(s *Store, t Tensor) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	if _, ok := s.tensorPos[t.Index]; ok {
		return fmt.Errorf("%w: tensor %d", ErrDuplicateIndex, t.Index)
	}
	rec := t
	s.tensorPos[t.Index] = len(s.tensors)
	s.tensors = append(s.tensors, &rec)
	return nil
}

func tensorAt(s *Store, index int32) (*Tensor, error) {
	t, ok := s.Tensor(index)
	if !ok {
		return nil, fmt.Errorf("%w: tensor %d", ErrNotFound, index)
	}
	return t, nil
}

// SetTensorName renames a tensor.
func SetTensorName(s *Store, index int32, name string) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	t, err := tensorAt(s, index)
	if err != nil {
		return err
	}
	t.Name = name
	return nil
}

// SetPrevOperator records op as the producer of a tensor.
func SetPrevOperator(s *Store, index, op int32) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	t, err := tensorAt(s, index)
	if err != nil {
		return err
	}
	t.Prev = op
	return nil
}

// AddNextOperator appends op to the consumers of a tensor.
// An operator that reads the same tensor twice is recorded once.
func AddNextOperator(s *Store, index, op int32) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	t, err := tensorAt(s, index)
	if err != nil {
		return err
	}
	if !slices.Contains(t.Next, op) {
		t.Next = append(t.Next, op)
	}
	return nil
}

// AddOperator appends an operator record and returns its position.
func AddOperator(s *Store, op Operator) (int, error) {
	if err := checkWritable(s); err != nil {
		return 0, err
	}
	rec := op
	s.operators = append(s.operators, &rec)
	return len(s.operators) - 1, nil
}

func operatorAt(s *Store, pos int) (*Operator, error) {
	op, ok := s.Operator(pos)
	if !ok {
		return nil, fmt.Errorf("%w: operator %d", ErrNotFound, pos)
	}
	return op, nil
}

// SetOperatorEdges replaces the input, output and binary index lists of an operator.
func SetOperatorEdges(s *Store, pos int, inputs, outputs, binaries []int32) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	op, err := operatorAt(s, pos)
	if err != nil {
		return err
	}
	op.Inputs = inputs
	op.Outputs = outputs
	op.Binaries = binaries
	return nil
}

// SetOperatorOptionsIndex links an operator to its option record.
func SetOperatorOptionsIndex(s *Store, pos int, options int32) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	op, err := operatorAt(s, pos)
	if err != nil {
		return err
	}
	op.OptionsIndex = options
	return nil
}

// AddBinary appends a binary record. Binary indexes must be unique.
func AddBinary(s *Store, b Binary) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	if _, ok := s.binaryPos[b.Index]; ok {
		return fmt.Errorf("%w: binary %d", ErrDuplicateIndex, b.Index)
	}
	rec := b
	s.binaryPos[b.Index] = len(s.binaries)
	s.binaries = append(s.binaries, &rec)
	return nil
}

// SetBinaryName renames a binary.
func SetBinaryName(s *Store, index int32, name string) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	b, ok := s.Binary(index)
	if !ok {
		return fmt.Errorf("%w: binary %d", ErrNotFound, index)
	}
	b.Name = name
	return nil
}

// AddGraphInfo appends a graph info record.
func AddGraphInfo(s *Store, g GraphInfo) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	rec := g
	s.graphInfos = append(s.graphInfos, &rec)
	return nil
}

// AddOperatorOptions appends an option record.
func AddOperatorOptions(s *Store, o OperatorOptions) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	rec := o
	s.operatorOptions = append(s.operatorOptions, &rec)
	return nil
}

// AddNPUOptions appends an NPU option record.
func AddNPUOptions(s *Store, o NPUOptions) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	rec := o
	s.npuOptions = append(s.npuOptions, &rec)
	return nil
}

// SetNPUSharedMem sets the shared-memory flag of the NPU option at position pos.
func SetNPUSharedMem(s *Store, pos int, use bool) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	if pos < 0 || pos >= len(s.npuOptions) {
		return fmt.Errorf("%w: npu options %d", ErrNotFound, pos)
	}
	s.npuOptions[pos].UseSharedMem = use
	return nil
}

// AddDSPOptions appends a DSP option record.
func AddDSPOptions(s *Store, o DSPOptions) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	rec := o
	s.dspOptions = append(s.dspOptions, &rec)
	return nil
}

// SetModelOption stores the model option record.
func SetModelOption(s *Store, o ModelOption) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	rec := o
	s.modelOption = &rec
	return nil
}

// SetAttribute stores the attribute record.
func SetAttribute(s *Store, a Attribute) error {
	if err := checkWritable(s); err != nil {
		return err
	}
	rec := a
	s.attribute = &rec
	return nil
}

// Freeze stops all further mutation of the store.
func Freeze(s *Store) {
	s.frozen = true
}
