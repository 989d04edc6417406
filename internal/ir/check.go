package ir

import (
	"errors"
	"fmt"
	"slices"
)

// CheckOperators verifies that every operator references existing tensors,
// binaries and option records. Undefined inputs mark omitted optional
// operands and are allowed.
func CheckOperators(s *Store) error {
	var errs []error
	for pos, op := range s.operators {
		for _, idx := range op.Inputs {
			if idx == Undefined {
				continue
			}
			if _, ok := s.Tensor(idx); !ok {
				errs = append(errs, &ValidationError{
					Type: "dangling_input", Record: "operator", Index: int32(pos),
					Details: fmt.Sprintf("input tensor %d does not exist", idx),
				})
			}
		}
		for _, idx := range op.Outputs {
			if _, ok := s.Tensor(idx); !ok {
				errs = append(errs, &ValidationError{
					Type: "dangling_output", Record: "operator", Index: int32(pos),
					Details: fmt.Sprintf("output tensor %d does not exist", idx),
				})
			}
		}
		for _, idx := range op.Binaries {
			if _, ok := s.Binary(idx); !ok {
				errs = append(errs, &ValidationError{
					Type: "dangling_binary", Record: "operator", Index: int32(pos),
					Details: fmt.Sprintf("binary %d does not exist", idx),
				})
			}
		}
		if op.OptionsIndex != Undefined && (op.OptionsIndex < 0 || int(op.OptionsIndex) >= len(s.operatorOptions)) {
			errs = append(errs, &ValidationError{
				Type: "dangling_options", Record: "operator", Index: int32(pos),
				Details: fmt.Sprintf("options index %d out of range", op.OptionsIndex),
			})
		}
	}
	return errors.Join(errs...)
}

// CheckAdjacency verifies that tensor prev/next links agree with operator
// output/input lists.
func CheckAdjacency(s *Store) error {
	var errs []error
	for _, t := range s.tensors {
		if t.Prev != Undefined {
			op, ok := s.Operator(int(t.Prev))
			if !ok || !slices.Contains(op.Outputs, t.Index) {
				errs = append(errs, &ValidationError{
					Type: "adjacency", Record: "tensor", Index: t.Index,
					Details: fmt.Sprintf("producer %d does not list it as output", t.Prev),
				})
			}
		}
		for _, next := range t.Next {
			op, ok := s.Operator(int(next))
			if !ok || !slices.Contains(op.Inputs, t.Index) {
				errs = append(errs, &ValidationError{
					Type: "adjacency", Record: "tensor", Index: t.Index,
					Details: fmt.Sprintf("consumer %d does not list it as input", next),
				})
			}
		}
	}
	return errors.Join(errs...)
}

// CheckGraphInfos verifies that every graph boundary index resolves to a tensor.
func CheckGraphInfos(s *Store) error {
	var errs []error
	for i, g := range s.graphInfos {
		for _, idx := range slices.Concat(g.Inputs, g.Outputs) {
			if _, ok := s.Tensor(idx); !ok {
				errs = append(errs, &ValidationError{
					Type: "dangling_boundary", Record: "graph", Index: int32(i),
					Details: fmt.Sprintf("%s references missing tensor %d", g.Name, idx),
				})
			}
		}
	}
	return errors.Join(errs...)
}
