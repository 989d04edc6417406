package dispatch

import (
	"github.com/pkg/errors"

	"github.com/born-ml/modelir/internal/model"
)

// Custom operators carry no option table. Their scalar parameters come from
// constant inputs with reserved names.
func (r *Registry) registerCustomOps() {
	r.RegisterCustom("Normalization", customNormalization)
	r.RegisterCustom("AsymmQuantization", customAsymm(KernelQuantize))
	r.RegisterCustom("AsymmDequantization", customAsymm(KernelDequantize))
	r.RegisterCustom("ConvertCFU", customConvertCFU)
	r.RegisterCustom("InverseCFU", customInverseCFU)
	r.RegisterCustom("Concat", customConcat)
	r.RegisterCustom("Quantization", customSymm(KernelQuantize))
	r.RegisterCustom("Dequantization", customSymm(KernelDequantize))
	r.RegisterCustom("NormalizationDequantization", customIdentity)
	r.RegisterCustom("Pad", customPad)
	r.RegisterCustom("SOFTMAX", customSoftmax)
}

// Cell layout of the CFU formats the reference platform produces.
var cfuLayout = struct {
	cols, lines, slices, idps, unitSize int32
}{1, 1, 16, 0, 0}

func customNormalization(ctx *Context, op *model.Operator) (*Node, error) {
	n, err := ctx.node(op, KernelNormalization)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	for _, name := range []string{ParamNameMean, ParamNameScale} {
		found, err := ctx.reservedData(op, n, name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.Wrapf(ErrInvalidParam, "%s has no %s parameter", op.Name, name)
		}
	}
	return ctx.initialize(n)
}

func customAsymm(k Kernel) ConstructFunc {
	return func(ctx *Context, op *model.Operator) (*Node, error) {
		var (
			scale     float32
			zeroPoint int32
			err       error
		)
		if t, ok := ctx.reserved(op, ParamNameScale); ok {
			if scale, err = paramFloat32(t); err != nil {
				return nil, err
			}
		}
		if t, ok := ctx.reserved(op, ParamNameZeroPoint); ok {
			if zeroPoint, err = paramInt32(t); err != nil {
				return nil, err
			}
		}

		n, err := ctx.node(op, k)
		if err != nil {
			return nil, err
		}
		if err := arity(op, n, 1, 1); err != nil {
			return nil, err
		}
		n.Params[ParamSymmetric] = false
		n.Params[ParamScale] = scale
		n.Params[ParamZeroPoint] = zeroPoint
		return ctx.initialize(n)
	}
}

func customSymm(k Kernel) ConstructFunc {
	return func(ctx *Context, op *model.Operator) (*Node, error) {
		n, err := ctx.node(op, k)
		if err != nil {
			return nil, err
		}
		if err := arity(op, n, 1, 1); err != nil {
			return nil, err
		}
		found, err := ctx.reservedData(op, n, ParamNameFracLen)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.Wrapf(ErrInvalidParam, "%s has no %s parameter", op.Name, ParamNameFracLen)
		}
		n.Params[ParamSymmetric] = true
		return ctx.initialize(n)
	}
}

func customConvertCFU(ctx *Context, op *model.Operator) (*Node, error) {
	n, err := ctx.node(op, KernelCFUConvert)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamColsInCell] = cfuLayout.cols
	n.Params[ParamLinesInCell] = cfuLayout.lines
	n.Params[ParamInterleaved] = cfuLayout.slices
	return ctx.initialize(n)
}

func customInverseCFU(ctx *Context, op *model.Operator) (*Node, error) {
	n, err := ctx.node(op, KernelCFUInvert)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamColsInCell] = cfuLayout.cols
	n.Params[ParamLinesInCell] = cfuLayout.lines
	n.Params[ParamInterleaved] = cfuLayout.slices
	n.Params[ParamIDPS] = cfuLayout.idps
	n.Params[ParamUnitSize] = cfuLayout.unitSize
	return ctx.initialize(n)
}

func customConcat(ctx *Context, op *model.Operator) (*Node, error) {
	t, ok := ctx.reserved(op, ParamNameAxis)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParam, "%s has no %s parameter", op.Name, ParamNameAxis)
	}
	axis, err := paramInt32(t)
	if err != nil {
		return nil, err
	}

	n, err := ctx.node(op, KernelConcat)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 2, 1); err != nil {
		return nil, err
	}
	n.Params[ParamAxis] = axis
	return ctx.initialize(n)
}

// customIdentity stands in for fused operators whose work a neighbouring
// operator already does; the node only forwards its input.
func customIdentity(ctx *Context, op *model.Operator) (*Node, error) {
	n, err := ctx.node(op, KernelIdentity)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	return ctx.initialize(n)
}

func customPad(ctx *Context, op *model.Operator) (*Node, error) {
	var front, end []int32
	var value []float32
	if t, ok := ctx.reserved(op, ParamNamePadFront); ok {
		front = paramInt32s(t)
	}
	if t, ok := ctx.reserved(op, ParamNamePadEnd); ok {
		end = paramInt32s(t)
	}
	if t, ok := ctx.reserved(op, ParamNamePadValue); ok {
		value = paramFloat32s(t)
	}
	if len(front) != len(end) {
		return nil, errors.Wrapf(ErrInvalidParam, "%s pads %d dims in front and %d at the end", op.Name, len(front), len(end))
	}

	n, err := ctx.node(op, KernelPad)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamPadFront] = front
	n.Params[ParamPadEnd] = end
	n.Params[ParamPadValue] = value
	return ctx.initialize(n)
}

func customSoftmax(ctx *Context, op *model.Operator) (*Node, error) {
	var (
		beta float32
		axis int32
		err  error
	)
	if t, ok := ctx.reserved(op, ParamNameBeta); ok {
		if beta, err = paramFloat32(t); err != nil {
			return nil, err
		}
	}
	if t, ok := ctx.reserved(op, ParamNameAxis); ok {
		if axis, err = paramInt32(t); err != nil {
			return nil, err
		}
	}

	n, err := ctx.node(op, KernelSoftmax)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamBeta] = beta
	n.Params[ParamAxis] = axis
	return ctx.initialize(n)
}
