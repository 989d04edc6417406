package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/logutil"
	"github.com/born-ml/modelir/internal/parallel"
	"github.com/born-ml/modelir/internal/serialization"
)

// validate runs the read-only checks selected by opts.Validation. The checks
// only read the store, so they run concurrently.
func validate(ctx context.Context, s *ir.Store, opts Options) error {
	if opts.Validation == serialization.ValidationNone {
		slog.Warn("graph validation disabled")
		return nil
	}

	tasks := []func(context.Context) error{
		func(context.Context) error { return ir.CheckOperators(s) },
		func(context.Context) error { return ir.CheckAdjacency(s) },
		func(context.Context) error { return ir.CheckGraphInfos(s) },
		func(context.Context) error { return checkNames(s) },
	}
	if opts.Validation == serialization.ValidationStrict {
		tasks = append(tasks, func(context.Context) error { return checkBinaryRegions(s, int64(len(opts.File))) })
	}

	if err := parallel.Run(ctx, parallel.WithWorkers(opts.Workers), tasks...); err != nil {
		return fmt.Errorf("graph validation failed (%s): %w", opts.Validation, err)
	}
	return nil
}

func checkNames(s *ir.Store) error {
	var errs []error
	for _, t := range s.Tensors() {
		if err := serialization.ValidateTensorName(t.Name); err != nil {
			errs = append(errs, fmt.Errorf("tensor %d: %w", t.Index, err))
		}
	}
	for _, b := range s.Binaries() {
		if err := serialization.ValidateTensorName(b.Name); err != nil {
			errs = append(errs, fmt.Errorf("binary %d: %w", b.Index, err))
		}
	}
	return errors.Join(errs...)
}

// checkBinaryRegions verifies that in-memory binaries lie inside the model
// file and do not alias each other.
func checkBinaryRegions(s *ir.Store, fileSize int64) error {
	var regions []serialization.Region
	for _, b := range s.Binaries() {
		if b.Data == nil {
			continue
		}
		regions = append(regions, serialization.Region{Name: b.Name, Offset: b.Offset, Size: int64(b.Size)})
	}
	return serialization.ValidateRegions(regions, fileSize)
}

// dump logs every record of g at trace level.
func dump(g *ir.Graph) {
	if !logutil.Enabled(logutil.LevelTrace) {
		return
	}
	for i, gi := range g.GraphInfos() {
		logutil.Trace("graph info", "index", i, "name", gi.Name, "inputs", gi.Inputs, "outputs", gi.Outputs)
	}
	if mo := g.ModelOption(); mo != nil {
		logutil.Trace("model option", "legacy", mo.LegacyModel, "relax", mo.RelaxFloat32ToFloat16)
	}
	for pos, op := range g.Operators() {
		logutil.Trace("operator", "pos", pos, "index", op.Index, "code", op.Code, "name", op.Name,
			"accel", op.Accelerator, "inputs", op.Inputs, "outputs", op.Outputs, "binaries", op.Binaries,
			"options", op.OptionsIndex)
	}
	for _, t := range g.Tensors() {
		logutil.Trace("tensor", "index", t.Index, "name", t.Name, "type", t.Type, "shape", t.Shape,
			"size", t.Size, "prev", t.Prev, "next", t.Next, "scalar", t.IsScalar)
	}
	for _, b := range g.Binaries() {
		logutil.Trace("binary", "index", b.Index, "name", b.Name, "fd", b.FD, "offset", b.Offset,
			"size", b.Size, "accel", b.Accelerator)
	}
	for i, o := range g.OperatorOptions() {
		logutil.Trace("operator options", "index", i, "operator", o.OperatorIndex, "number", o.Number, "name", o.Name)
	}
}
