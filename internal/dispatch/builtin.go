package dispatch

import (
	"github.com/pkg/errors"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

func (r *Registry) registerElementwise() {
	r.RegisterBuiltin(nnc.OpAdd, elementwise(nnc.OpAdd, nnc.OptionsAdd, KernelAdd))
	r.RegisterBuiltin(nnc.OpSub, elementwise(nnc.OpSub, nnc.OptionsSub, KernelSub))
	r.RegisterBuiltin(nnc.OpMul, elementwise(nnc.OpMul, nnc.OptionsMul, KernelMul))
	r.RegisterBuiltin(nnc.OpDiv, elementwise(nnc.OpDiv, nnc.OptionsDiv, KernelDiv))
}

func (r *Registry) registerWindowed() {
	r.RegisterBuiltin(nnc.OpAveragePool2D, pool2D(nnc.OpAveragePool2D, KernelAveragePool))
	r.RegisterBuiltin(nnc.OpMaxPool2D, pool2D(nnc.OpMaxPool2D, KernelMaxPool))
	r.RegisterBuiltin(nnc.OpConv2D, constructConv2D)
	r.RegisterBuiltin(nnc.OpDepthwiseConv2D, constructDepthwiseConv2D)
	r.RegisterBuiltin(nnc.OpFullyConnected, constructFullyConnected)
}

func (r *Registry) registerShapeOps() {
	r.RegisterBuiltin(nnc.OpConcatenation, constructConcatenation)
	r.RegisterBuiltin(nnc.OpReshape, constructReshape)
	r.RegisterBuiltin(nnc.OpPad, constructPad)
	r.RegisterBuiltin(nnc.OpTranspose, constructTranspose)
	r.RegisterBuiltin(nnc.OpMean, constructMean)
	r.RegisterBuiltin(nnc.OpENNFlatten, constructFlatten)
}

func (r *Registry) registerActivations() {
	r.RegisterBuiltin(nnc.OpSoftmax, constructSoftmax)
	r.RegisterBuiltin(nnc.OpLogistic, activation(nnc.OpLogistic, nnc.ActivationSigmoid))
	r.RegisterBuiltin(nnc.OpTanh, activation(nnc.OpTanh, nnc.ActivationTanh))
	r.RegisterBuiltin(nnc.OpRelu, activation(nnc.OpRelu, nnc.ActivationRelu))
	r.RegisterBuiltin(nnc.OpRelu6, activation(nnc.OpRelu6, nnc.ActivationRelu6))
	r.RegisterBuiltin(nnc.OpReluN1To1, activation(nnc.OpReluN1To1, nnc.ActivationReluN1To1))
}

func (r *Registry) registerQuantization() {
	r.RegisterBuiltin(nnc.OpQuantize, quantize(nnc.OpQuantize, nnc.OptionsQuantize, KernelQuantize))
	r.RegisterBuiltin(nnc.OpDequantize, quantize(nnc.OpDequantize, nnc.OptionsDequantize, KernelDequantize))
}

func (r *Registry) registerDeviceOps() {
	r.RegisterBuiltin(nnc.OpENNNormalization, constructNormalization)
	r.RegisterBuiltin(nnc.OpENNCFU, constructCFU)
	r.RegisterBuiltin(nnc.OpENNInverseCFU, constructInverseCFU)
	r.RegisterBuiltin(nnc.OpENNDetection, constructDetection)
}

func elementwise(code nnc.BuiltinOperator, tag nnc.BuiltinOptions, k Kernel) ConstructFunc {
	return func(ctx *Context, op *model.Operator) (*Node, error) {
		if err := checkName(op, code); err != nil {
			return nil, err
		}
		o, err := option(op, tag)
		if err != nil {
			return nil, err
		}
		if err := needTable(op, o); err != nil {
			return nil, err
		}

		n, err := ctx.node(op, k)
		if err != nil {
			return nil, err
		}
		if err := arity(op, n, 2, 1); err != nil {
			return nil, err
		}

		if tag == nnc.OptionsAdd {
			add := nnc.AsAddOptions(o.Table)
			n.Params[ParamActivation] = int32(add.FusedActivation())
			if coeff := add.Coeff(); len(coeff) > 0 {
				n.Params[ParamCoeff] = coeff
			}
		} else {
			n.Params[ParamActivation] = int32(nnc.AsActivationOptions(o.Table).FusedActivation())
		}
		return ctx.initialize(n)
	}
}

func activation(code nnc.BuiltinOperator, act nnc.Activation) ConstructFunc {
	return func(ctx *Context, op *model.Operator) (*Node, error) {
		if err := checkName(op, code); err != nil {
			return nil, err
		}
		var want []nnc.BuiltinOptions
		if code == nnc.OpRelu {
			want = append(want, nnc.OptionsRelu)
		}
		o, err := optional(op, want...)
		if err != nil {
			return nil, err
		}

		n, err := ctx.node(op, KernelActivation)
		if err != nil {
			return nil, err
		}
		if err := arity(op, n, 1, 1); err != nil {
			return nil, err
		}
		n.Params[ParamActivation] = int32(act)
		if o != nil && o.Table != nil {
			n.Params[ParamNegativeSlope] = nnc.AsReluOptions(o.Table).NegativeSlope()
		}
		return ctx.initialize(n)
	}
}

// layout resolves the NCHW flag of a windowed operator. Android NN models
// carry it per operator.
func layout(ctx *Context, useNCHW bool) (nchw, androidNN bool) {
	androidNN = ctx.Legacy == ir.LegacyAndroidNN
	if androidNN {
		return useNCHW, true
	}
	return ctx.NCHW(), false
}

// explicitPadding returns the [l, r, t, b] padding Android NN models store
// in the option, if any.
func explicitPadding(ctx *Context, values []int32) (Pad4, bool) {
	if ctx.Legacy != ir.LegacyAndroidNN || len(values) != 4 {
		return Pad4{}, false
	}
	return Pad4{Left: values[0], Right: values[1], Top: values[2], Bottom: values[3]}, true
}

func constructConv2D(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpConv2D); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsConv2D)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsConv2DOptions(o.Table)

	n, err := ctx.node(op, KernelConv2D)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 2, 1); err != nil {
		return nil, err
	}

	nchw, androidNN := layout(ctx, opts.UseNCHW())
	stride := []int32{opts.StrideH(), opts.StrideW()}
	dilation := []int32{opts.DilationH(), opts.DilationW()}
	ins, outs := ctx.Model.InputTensors(op), ctx.Model.OutputTensors(op)
	pad, ok := explicitPadding(ctx, opts.PaddingValue())
	if !ok {
		pad = SamePadding(ctx.Legacy, opts.Padding(), Window{
			Input:     ins[0].Shape,
			Output:    outs[0].Shape,
			Filter:    ins[1].Shape,
			StrideH:   stride[0],
			StrideW:   stride[1],
			DilationH: dilation[0],
			DilationW: dilation[1],
			NCHW:      nchw,
		})
	}

	n.Params[ParamStride] = stride
	n.Params[ParamDilation] = dilation
	n.Params[ParamPadding] = pad
	n.Params[ParamActivation] = int32(opts.FusedActivation())
	n.Params[ParamNCHW] = nchw
	n.Params[ParamAndroidNN] = androidNN
	if pc := ins[1].PerChannel; pc != nil {
		n.Params[ParamPerChannel] = pc.Scales
	}
	return ctx.initialize(n)
}

func constructDepthwiseConv2D(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpDepthwiseConv2D); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsDepthwiseConv2D)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsDepthwiseConv2DOptions(o.Table)

	n, err := ctx.node(op, KernelDepthwiseConv)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 2, 1); err != nil {
		return nil, err
	}

	nchw, androidNN := layout(ctx, opts.UseNCHW())
	stride := []int32{opts.StrideH(), opts.StrideW()}
	dilation := []int32{opts.DilationH(), opts.DilationW()}
	ins, outs := ctx.Model.InputTensors(op), ctx.Model.OutputTensors(op)
	pad, ok := explicitPadding(ctx, opts.PaddingValue())
	if !ok {
		pad = SamePadding(ctx.Legacy, opts.Padding(), Window{
			Input:     ins[0].Shape,
			Output:    outs[0].Shape,
			Filter:    ins[1].Shape,
			StrideH:   stride[0],
			StrideW:   stride[1],
			DilationH: dilation[0],
			DilationW: dilation[1],
			NCHW:      nchw,
		})
	}

	n.Params[ParamStride] = stride
	n.Params[ParamDilation] = dilation
	n.Params[ParamPadding] = pad
	n.Params[ParamDepthMultiply] = max(opts.DepthMultiplier(), 1)
	n.Params[ParamActivation] = int32(opts.FusedActivation())
	n.Params[ParamNCHW] = nchw
	n.Params[ParamAndroidNN] = androidNN
	if pc := ins[1].PerChannel; pc != nil {
		n.Params[ParamPerChannel] = pc.Scales
	}
	return ctx.initialize(n)
}

func pool2D(code nnc.BuiltinOperator, k Kernel) ConstructFunc {
	return func(ctx *Context, op *model.Operator) (*Node, error) {
		if err := checkName(op, code); err != nil {
			return nil, err
		}
		o, err := option(op, nnc.OptionsPool2D)
		if err != nil {
			return nil, err
		}
		if err := needTable(op, o); err != nil {
			return nil, err
		}
		opts := nnc.AsPool2DOptions(o.Table)

		n, err := ctx.node(op, k)
		if err != nil {
			return nil, err
		}
		if err := arity(op, n, 1, 1); err != nil {
			return nil, err
		}

		nchw, androidNN := layout(ctx, opts.UseNCHW())
		fh, fw := opts.FilterHeight(), opts.FilterWidth()
		// A synthetic kernel shape that puts the window where SamePadding
		// looks for it.
		filter := []int32{1, fh, fw, 1}
		if nchw && !androidNN {
			filter = []int32{1, 1, fh, fw}
		}
		ins, outs := ctx.Model.InputTensors(op), ctx.Model.OutputTensors(op)
		pad := SamePadding(ctx.Legacy, opts.Padding(), Window{
			Input:   ins[0].Shape,
			Output:  outs[0].Shape,
			Filter:  filter,
			StrideH: opts.StrideH(),
			StrideW: opts.StrideW(),
			NCHW:    nchw,
		})

		n.Params[ParamStride] = []int32{opts.StrideH(), opts.StrideW()}
		n.Params[ParamFilter] = []int32{fh, fw}
		n.Params[ParamPadding] = pad
		n.Params[ParamActivation] = int32(opts.FusedActivation())
		n.Params[ParamNCHW] = nchw
		n.Params[ParamAndroidNN] = androidNN
		return ctx.initialize(n)
	}
}

func constructFullyConnected(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpFullyConnected); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsFullyConnected)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsFullyConnectedOptions(o.Table)

	n, err := ctx.node(op, KernelFullyConnected)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 2, 1); err != nil {
		return nil, err
	}
	n.Params[ParamActivation] = int32(opts.FusedActivation())
	n.Params[ParamKeepDims] = opts.KeepNumDims()
	n.Params[ParamAndroidNN] = ctx.Legacy == ir.LegacyAndroidNN
	return ctx.initialize(n)
}

func constructConcatenation(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpConcatenation); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsConcatenation)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsConcatenationOptions(o.Table)

	n, err := ctx.node(op, KernelConcat)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamAxis] = opts.Axis()
	n.Params[ParamActivation] = int32(opts.FusedActivation())
	return ctx.initialize(n)
}

func constructReshape(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpReshape); err != nil {
		return nil, err
	}
	o, err := optional(op, nnc.OptionsReshape)
	if err != nil {
		return nil, err
	}

	n, err := ctx.node(op, KernelReshape)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}

	// The target shape comes from the option, the shape input, or the
	// output tensor, in that order.
	var shape []int32
	if o != nil && o.Table != nil {
		shape = nnc.AsReshapeOptions(o.Table).NewShape()
	}
	if len(shape) == 0 {
		if t, ok := ctx.param(op, 1); ok {
			shape = paramInt32s(t)
		}
	}
	if len(shape) == 0 {
		shape = append(shape, ctx.Model.OutputTensors(op)[0].Shape...)
	}
	n.Params[ParamShape] = shape
	return ctx.initialize(n)
}

func constructSoftmax(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpSoftmax); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsSoftmax)
	if err != nil {
		return nil, err
	}

	var beta float32
	var axis int32
	if len(o.Raw) == softmaxRawSize {
		raw := decodeSoftmaxRaw(o.Raw)
		beta, axis = raw.beta, raw.axis
	} else {
		if err := needTable(op, o); err != nil {
			return nil, err
		}
		opts := nnc.AsSoftmaxOptions(o.Table)
		beta, axis = opts.Beta(), opts.Axis()
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

// splitPaddings turns [d0_front, d0_end, d1_front, ...] into front and end
// lists.
func splitPaddings(p []int32) (front, end []int32) {
	for i := 0; i+1 < len(p); i += 2 {
		front = append(front, p[i])
		end = append(end, p[i+1])
	}
	return front, end
}

func constructPad(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpPad); err != nil {
		return nil, err
	}
	if _, err := optional(op, nnc.OptionsPad); err != nil {
		return nil, err
	}
	paddings, ok := ctx.param(op, 1)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParam, "%s has no constant paddings", op.Name)
	}

	n, err := ctx.node(op, KernelPad)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	front, end := splitPaddings(paramInt32s(paddings))
	n.Params[ParamPadFront] = front
	n.Params[ParamPadEnd] = end
	value := []float32{0}
	if t, ok := ctx.param(op, 2); ok {
		value = paramFloat32s(t)
	}
	n.Params[ParamPadValue] = value
	return ctx.initialize(n)
}

func constructTranspose(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpTranspose); err != nil {
		return nil, err
	}
	if _, err := optional(op, nnc.OptionsTranspose); err != nil {
		return nil, err
	}
	perm, ok := ctx.param(op, 1)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParam, "%s has no constant permutation", op.Name)
	}

	n, err := ctx.node(op, KernelTranspose)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamPerm] = paramInt32s(perm)
	return ctx.initialize(n)
}

func constructMean(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpMean); err != nil {
		return nil, err
	}
	o, err := optional(op, nnc.OptionsMean)
	if err != nil {
		return nil, err
	}
	axes, ok := ctx.param(op, 1)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParam, "%s has no constant axes", op.Name)
	}

	n, err := ctx.node(op, KernelMean)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamAxes] = paramInt32s(axes)
	n.Params[ParamKeepDims] = o != nil && o.Table != nil && nnc.AsMeanOptions(o.Table).KeepDims()
	return ctx.initialize(n)
}

func constructFlatten(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpENNFlatten); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsENNFlatten)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsFlattenOptions(o.Table)

	n, err := ctx.node(op, KernelFlatten)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamAxis] = opts.Axis()
	n.Params[ParamEndAxis] = opts.EndAxis()
	return ctx.initialize(n)
}

// quantize builds QUANTIZE and DEQUANTIZE. Symmetric quantization carries
// per-channel fractional lengths as an INT32 data tensor; asymmetric uses the
// first output scale and zero point.
func quantize(code nnc.BuiltinOperator, tag nnc.BuiltinOptions, k Kernel) ConstructFunc {
	return func(ctx *Context, op *model.Operator) (*Node, error) {
		if err := checkName(op, code); err != nil {
			return nil, err
		}
		o, err := option(op, tag)
		if err != nil {
			return nil, err
		}

		var (
			typ       nnc.QuantType
			fracLen   []int32
			scale     float32
			zeroPoint int32
		)
		if len(o.Raw) == quantizeRawSize {
			raw := decodeQuantizeRaw(o.Raw)
			typ, fracLen, scale, zeroPoint = raw.typ, []int32{raw.fracLen}, raw.scale, raw.zeroPoint
		} else {
			if err := needTable(op, o); err != nil {
				return nil, err
			}
			opts := nnc.AsQuantizeOptions(o.Table)
			typ = opts.Type()
			if typ == nnc.QuantSymm {
				fracLen = opts.FractionalLength()
			} else {
				scales, zps := opts.ScaleOut(), opts.ZeroPointOutput()
				if len(scales) == 0 || len(zps) == 0 {
					return nil, errors.Wrapf(ErrInvalidParam, "%s has no output scale or zero point", op.Name)
				}
				scale, zeroPoint = scales[0], zps[0]
			}
		}

		n, err := ctx.node(op, k)
		if err != nil {
			return nil, err
		}
		if err := arity(op, n, 1, 1); err != nil {
			return nil, err
		}
		n.Params[ParamSymmetric] = typ == nnc.QuantSymm
		if typ == nnc.QuantSymm {
			if len(fracLen) == 0 {
				return nil, errors.Wrapf(ErrInvalidParam, "%s has no fractional length", op.Name)
			}
			frac, err := ctx.constant(op.Name+"_frac_len", tensor.Int32, int32Bytes(fracLen), int32(len(fracLen)))
			if err != nil {
				return nil, err
			}
			n.Data = append(n.Data, frac)
		} else {
			n.Params[ParamScale] = scale
			n.Params[ParamZeroPoint] = zeroPoint
		}
		return ctx.initialize(n)
	}
}

func constructNormalization(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpENNNormalization); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsENNNormalization)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsNormalizationOptions(o.Table)

	n, err := ctx.node(op, KernelNormalization)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	mean, scale := opts.Mean(), opts.Scale()
	mt, err := ctx.constant(op.Name+"_mean", tensor.Float32, float32Bytes(mean), int32(len(mean)))
	if err != nil {
		return nil, err
	}
	st, err := ctx.constant(op.Name+"_scale", tensor.Float32, float32Bytes(scale), int32(len(scale)))
	if err != nil {
		return nil, err
	}
	n.Data = append(n.Data, mt, st)
	n.Params[ParamBGRTranspose] = opts.BGRTranspose()
	return ctx.initialize(n)
}

func constructCFU(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpENNCFU); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsENNCFU)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsCFUOptions(o.Table)

	n, err := ctx.node(op, KernelCFUConvert)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamColsInCell] = opts.ColsInCell()
	n.Params[ParamLinesInCell] = opts.LinesInCell()
	n.Params[ParamInterleaved] = opts.InterleavedSlices()
	return ctx.initialize(n)
}

func constructInverseCFU(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpENNInverseCFU); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsENNInverseCFU)
	if err != nil {
		return nil, err
	}

	var cfu cfuRaw
	if len(o.Raw) == inverseCFURawSize {
		cfu = decodeCFURaw(o.Raw)
	} else {
		if err := needTable(op, o); err != nil {
			return nil, err
		}
		opts := nnc.AsCFUOptions(o.Table)
		cfu = cfuRaw{cols: opts.ColsInCell(), lines: opts.LinesInCell(), slices: opts.InterleavedSlices()}
	}

	n, err := ctx.node(op, KernelCFUInvert)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	n.Params[ParamColsInCell] = cfu.cols
	n.Params[ParamLinesInCell] = cfu.lines
	n.Params[ParamInterleaved] = cfu.slices
	n.Params[ParamIDPS] = int32(0)
	n.Params[ParamUnitSize] = int32(0)
	return ctx.initialize(n)
}

func constructDetection(ctx *Context, op *model.Operator) (*Node, error) {
	if err := checkName(op, nnc.OpENNDetection); err != nil {
		return nil, err
	}
	o, err := option(op, nnc.OptionsENNDetection)
	if err != nil {
		return nil, err
	}
	if err := needTable(op, o); err != nil {
		return nil, err
	}
	opts := nnc.AsDetectionOptions(o.Table)

	n, err := ctx.node(op, KernelDetection)
	if err != nil {
		return nil, err
	}
	if err := arity(op, n, 1, 1); err != nil {
		return nil, err
	}
	found, err := ctx.reservedData(op, n, ParamNamePriorBox)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(ErrInvalidParam, "%s has no %s parameter", op.Name, ParamNamePriorBox)
	}

	n.Params[ParamNumClasses] = opts.NumClasses()
	n.Params[ParamShareLocation] = opts.ShareLocation()
	n.Params[ParamNMSThreshold] = opts.NMSThreshold()
	n.Params[ParamBackgroundID] = opts.BackgroundLabelID()
	n.Params[ParamNMSTopK] = opts.NMSTopK()
	n.Params[ParamKeepTopK] = opts.KeepTopK()
	n.Params[ParamCodeType] = opts.CodeType()
	n.Params[ParamConfThreshold] = opts.ConfidenceThreshold()
	n.Params[ParamNMSEta] = opts.NMSEta()
	n.Params[ParamVarianceTarget] = opts.VarianceEncodedInTarget()
	return ctx.initialize(n)
}
