package cpu

import (
	"fmt"
	"slices"

	"github.com/born-ml/modelir/internal/dispatch"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

type initFunc func(n *dispatch.Node) (*Plan, error)

var initializers = map[dispatch.Kernel]initFunc{
	dispatch.KernelAdd:            initElementwise,
	dispatch.KernelSub:            initElementwise,
	dispatch.KernelMul:            initElementwise,
	dispatch.KernelDiv:            initElementwise,
	dispatch.KernelAveragePool:    initPool,
	dispatch.KernelMaxPool:        initPool,
	dispatch.KernelConv2D:         initConv,
	dispatch.KernelDepthwiseConv:  initConv,
	dispatch.KernelFullyConnected: initFullyConnected,
	dispatch.KernelConcat:         initConcat,
	dispatch.KernelReshape:        initReshape,
	dispatch.KernelSoftmax:        initSoftmax,
	dispatch.KernelActivation:     initActivation,
	dispatch.KernelPad:            initPad,
	dispatch.KernelTranspose:      initTranspose,
	dispatch.KernelMean:           initMean,
	dispatch.KernelQuantize:       initQuantize,
	dispatch.KernelDequantize:     initQuantize,
	dispatch.KernelNormalization:  initNormalization,
	dispatch.KernelCFUConvert:     initCFU,
	dispatch.KernelCFUInvert:      initCFU,
	dispatch.KernelDetection:      initDetection,
	dispatch.KernelFlatten:        initFlatten,
	dispatch.KernelIdentity:       initIdentity,
}

// operands returns the first input and output, failing when either is
// missing.
func operands(n *dispatch.Node) (in, out *tensor.RawTensor, err error) {
	in, out = n.Input(0), nil
	if len(n.Outputs) > 0 {
		out = n.Outputs[0]
	}
	if in == nil || out == nil {
		return nil, nil, fmt.Errorf("%w: needs an input and an output", ErrShapeMismatch)
	}
	return in, out, nil
}

func plan(out *tensor.RawTensor) *Plan {
	return &Plan{Work: out.NumElements()}
}

// normAxis maps a negative axis into [0, rank).
func normAxis(axis int32, rank int) (int, error) {
	a := int(axis)
	if a < 0 {
		a += rank
	}
	if a < 0 || a >= rank {
		return 0, fmt.Errorf("%w: axis %d out of range for rank %d", ErrBadParameter, axis, rank)
	}
	return a, nil
}

func initElementwise(n *dispatch.Node) (*Plan, error) {
	a, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	b := n.Input(1)
	if b == nil {
		return nil, fmt.Errorf("%w: needs two inputs", ErrShapeMismatch)
	}
	shape, ok := broadcast(a.Shape(), b.Shape())
	if !ok || shape.NumElements() != out.NumElements() {
		return nil, fmt.Errorf("%w: %v and %v do not broadcast to %v", ErrShapeMismatch, a.Shape(), b.Shape(), out.Shape())
	}
	if coeff := n.Params.Floats(dispatch.ParamCoeff); len(coeff) != 0 && len(coeff) != 2 {
		return nil, fmt.Errorf("%w: %d coefficients", ErrBadParameter, len(coeff))
	}
	return plan(out), nil
}

// broadcast aligns trailing dimensions; a dimension of 1 stretches.
func broadcast(a, b tensor.Shape) (tensor.Shape, bool) {
	rank := max(len(a), len(b))
	out := make(tensor.Shape, rank)
	for i := range rank {
		da, db := 1, 1
		if j := len(a) - rank + i; j >= 0 {
			da = a[j]
		}
		if j := len(b) - rank + i; j >= 0 {
			db = b[j]
		}
		switch {
		case da == db, db == 1:
			out[i] = da
		case da == 1:
			out[i] = db
		default:
			return nil, false
		}
	}
	return out, true
}

func initActivation(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if in.NumElements() != out.NumElements() {
		return nil, fmt.Errorf("%w: %v to %v", ErrShapeMismatch, in.Shape(), out.Shape())
	}
	act := nnc.Activation(n.Params.Int(dispatch.ParamActivation, 0))
	if act < nnc.ActivationNone || act > nnc.ActivationSigmoid {
		return nil, fmt.Errorf("%w: activation %d", ErrBadParameter, act)
	}
	return plan(out), nil
}

func initIdentity(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if in.NumElements() != out.NumElements() {
		return nil, fmt.Errorf("%w: %v to %v", ErrShapeMismatch, in.Shape(), out.Shape())
	}
	return plan(out), nil
}

// spatial returns the height and width of a rank 4 feature map.
func spatial(s tensor.Shape, nchw bool) (h, w int) {
	if nchw {
		return s[2], s[3]
	}
	return s[1], s[2]
}

func channels(s tensor.Shape, nchw bool) int {
	if nchw {
		return s[1]
	}
	return s[3]
}

// window checks that the output fits inside the input swept by a kernel of
// size fh x fw.
func window(n *dispatch.Node, in, out tensor.Shape, fh, fw int) error {
	nchw := n.Params.Bool(dispatch.ParamNCHW)
	stride := n.Params.Ints(dispatch.ParamStride)
	dilation := n.Params.Ints(dispatch.ParamDilation)
	if len(stride) != 2 || stride[0] <= 0 || stride[1] <= 0 {
		return fmt.Errorf("%w: stride %v", ErrBadParameter, stride)
	}
	dh, dw := 1, 1
	if dilation != nil {
		if len(dilation) != 2 || dilation[0] <= 0 || dilation[1] <= 0 {
			return fmt.Errorf("%w: dilation %v", ErrBadParameter, dilation)
		}
		dh, dw = int(dilation[0]), int(dilation[1])
	}
	if fh <= 0 || fw <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrBadParameter, fh, fw)
	}

	pad := n.Params.Pad(dispatch.ParamPadding)
	ih, iw := spatial(in, nchw)
	oh, ow := spatial(out, nchw)
	maxH := (ih+int(pad.Top+pad.Bottom)-((fh-1)*dh+1))/int(stride[0]) + 1
	maxW := (iw+int(pad.Left+pad.Right)-((fw-1)*dw+1))/int(stride[1]) + 1
	if oh > maxH || ow > maxW {
		return fmt.Errorf("%w: output %dx%d exceeds window coverage %dx%d", ErrShapeMismatch, oh, ow, maxH, maxW)
	}
	return nil
}

func initConv(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	weights := n.Input(1)
	if weights == nil {
		return nil, fmt.Errorf("%w: no weights", ErrShapeMismatch)
	}
	if len(in.Shape()) != 4 || len(out.Shape()) != 4 || len(weights.Shape()) != 4 {
		return nil, fmt.Errorf("%w: input %v, weights %v and output %v must be rank 4",
			ErrShapeMismatch, in.Shape(), weights.Shape(), out.Shape())
	}

	// Kernels are [Cout, Cin, Kh, Kw] for NCHW models and [Cout, Kh, Kw, Cin]
	// otherwise, Android NN included.
	nchw := n.Params.Bool(dispatch.ParamNCHW)
	ws := weights.Shape()
	fh, fw := ws[1], ws[2]
	if nchw && !n.Params.Bool(dispatch.ParamAndroidNN) {
		fh, fw = ws[2], ws[3]
	}
	if err := window(n, in.Shape(), out.Shape(), fh, fw); err != nil {
		return nil, err
	}

	oc := channels(out.Shape(), nchw)
	if bias := n.Input(2); bias != nil && bias.NumElements() != oc {
		return nil, fmt.Errorf("%w: %d biases for %d output channels", ErrShapeMismatch, bias.NumElements(), oc)
	}
	if n.Kernel == dispatch.KernelDepthwiseConv {
		m := int(n.Params.Int(dispatch.ParamDepthMultiply, 1))
		if m <= 0 || oc != channels(in.Shape(), nchw)*m {
			return nil, fmt.Errorf("%w: %d output channels for %d inputs at multiplier %d",
				ErrShapeMismatch, oc, channels(in.Shape(), nchw), m)
		}
	}
	if scales := n.Params.Floats(dispatch.ParamPerChannel); scales != nil && len(scales) != oc {
		return nil, fmt.Errorf("%w: %d per-channel scales for %d channels", ErrBadParameter, len(scales), oc)
	}
	return plan(out), nil
}

func initPool(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if len(in.Shape()) != 4 || len(out.Shape()) != 4 {
		return nil, fmt.Errorf("%w: input %v and output %v must be rank 4", ErrShapeMismatch, in.Shape(), out.Shape())
	}
	filter := n.Params.Ints(dispatch.ParamFilter)
	if len(filter) != 2 {
		return nil, fmt.Errorf("%w: filter %v", ErrBadParameter, filter)
	}
	if err := window(n, in.Shape(), out.Shape(), int(filter[0]), int(filter[1])); err != nil {
		return nil, err
	}
	return plan(out), nil
}

func initFullyConnected(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	weights := n.Input(1)
	if weights == nil || len(weights.Shape()) < 2 {
		return nil, fmt.Errorf("%w: weights must be at least rank 2", ErrShapeMismatch)
	}
	units := weights.Shape()[0]
	depth := weights.NumElements() / max(units, 1)
	if depth == 0 || in.NumElements()%depth != 0 {
		return nil, fmt.Errorf("%w: input %v does not split into rows of %d", ErrShapeMismatch, in.Shape(), depth)
	}
	if bias := n.Input(2); bias != nil && bias.NumElements() != units {
		return nil, fmt.Errorf("%w: %d biases for %d units", ErrShapeMismatch, bias.NumElements(), units)
	}
	return plan(out), nil
}

func initConcat(n *dispatch.Node) (*Plan, error) {
	_, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	rank := len(out.Shape())
	axis, err := normAxis(n.Params.Int(dispatch.ParamAxis, 0), rank)
	if err != nil {
		return nil, err
	}
	sum := 0
	for i, in := range n.Inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: input %d is omitted", ErrShapeMismatch, i)
		}
		s := in.Shape()
		if len(s) != rank {
			return nil, fmt.Errorf("%w: input %d has rank %d, output %d", ErrShapeMismatch, i, len(s), rank)
		}
		for d := range rank {
			if d != axis && s[d] != out.Shape()[d] {
				return nil, fmt.Errorf("%w: input %d is %v, output %v", ErrShapeMismatch, i, s, out.Shape())
			}
		}
		sum += s[axis]
	}
	if sum != out.Shape()[axis] {
		return nil, fmt.Errorf("%w: inputs add up to %d along axis %d, output has %d",
			ErrShapeMismatch, sum, axis, out.Shape()[axis])
	}
	return plan(out), nil
}

func initReshape(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	shape := n.Params.Ints(dispatch.ParamShape)
	known, infer := 1, 0
	for _, d := range shape {
		switch {
		case d == -1:
			infer++
		case d < 0:
			return nil, fmt.Errorf("%w: shape %v", ErrBadParameter, shape)
		default:
			known *= int(d)
		}
	}
	switch {
	case infer > 1:
		return nil, fmt.Errorf("%w: shape %v infers more than one dimension", ErrBadParameter, shape)
	case infer == 1 && (known == 0 || in.NumElements()%known != 0):
		return nil, fmt.Errorf("%w: %v into %v", ErrShapeMismatch, in.Shape(), shape)
	case infer == 0 && known != in.NumElements():
		return nil, fmt.Errorf("%w: %v into %v", ErrShapeMismatch, in.Shape(), shape)
	}
	return plan(out), nil
}

func initSoftmax(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if _, err := normAxis(n.Params.Int(dispatch.ParamAxis, -1), len(in.Shape())); err != nil {
		return nil, err
	}
	return plan(out), nil
}

func initPad(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	front, end := n.Params.Ints(dispatch.ParamPadFront), n.Params.Ints(dispatch.ParamPadEnd)
	if len(front) != len(end) || len(front) > len(in.Shape()) {
		return nil, fmt.Errorf("%w: %d front and %d end paddings for rank %d",
			ErrBadParameter, len(front), len(end), len(in.Shape()))
	}
	for i := range front {
		if front[i] < 0 || end[i] < 0 {
			return nil, fmt.Errorf("%w: negative padding on dim %d", ErrBadParameter, i)
		}
	}
	return plan(out), nil
}

func initTranspose(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	perm := n.Params.Ints(dispatch.ParamPerm)
	sorted := slices.Sorted(slices.Values(perm))
	for i, p := range sorted {
		if p != int32(i) {
			return nil, fmt.Errorf("%w: %v is not a permutation", ErrBadParameter, perm)
		}
	}
	if len(perm) != len(in.Shape()) {
		return nil, fmt.Errorf("%w: permutation %v for rank %d", ErrBadParameter, perm, len(in.Shape()))
	}
	return plan(out), nil
}

func initMean(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	for _, a := range n.Params.Ints(dispatch.ParamAxes) {
		if _, err := normAxis(a, len(in.Shape())); err != nil {
			return nil, err
		}
	}
	return plan(out), nil
}

func initFlatten(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	rank := len(in.Shape())
	axis, err := normAxis(n.Params.Int(dispatch.ParamAxis, 1), rank)
	if err != nil {
		return nil, err
	}
	end, err := normAxis(n.Params.Int(dispatch.ParamEndAxis, -1), rank)
	if err != nil {
		return nil, err
	}
	if axis > end {
		return nil, fmt.Errorf("%w: axis %d after end axis %d", ErrBadParameter, axis, end)
	}
	if in.NumElements() != out.NumElements() {
		return nil, fmt.Errorf("%w: %v to %v", ErrShapeMismatch, in.Shape(), out.Shape())
	}
	return plan(out), nil
}

func initQuantize(n *dispatch.Node) (*Plan, error) {
	in, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if in.NumElements() != out.NumElements() {
		return nil, fmt.Errorf("%w: %v to %v", ErrShapeMismatch, in.Shape(), out.Shape())
	}
	if n.Params.Bool(dispatch.ParamSymmetric) {
		if len(n.Data) != 1 || n.Data[0].DType() != tensor.Int32 {
			return nil, fmt.Errorf("%w: symmetric quantization needs one INT32 fractional length tensor", ErrBadParameter)
		}
		return plan(out), nil
	}
	// Quantization divides by the scale.
	if n.Kernel == dispatch.KernelQuantize && n.Params.Float(dispatch.ParamScale, 0) <= 0 {
		return nil, fmt.Errorf("%w: scale %v", ErrBadParameter, n.Params.Float(dispatch.ParamScale, 0))
	}
	return plan(out), nil
}

func initNormalization(n *dispatch.Node) (*Plan, error) {
	_, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if len(n.Data) != 2 {
		return nil, fmt.Errorf("%w: needs mean and scale, got %d tensors", ErrBadParameter, len(n.Data))
	}
	if mean, scale := n.Data[0].NumElements(), n.Data[1].NumElements(); mean != scale {
		return nil, fmt.Errorf("%w: %d means and %d scales", ErrBadParameter, mean, scale)
	}
	return plan(out), nil
}

func initCFU(n *dispatch.Node) (*Plan, error) {
	_, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{dispatch.ParamColsInCell, dispatch.ParamLinesInCell, dispatch.ParamInterleaved} {
		if v := n.Params.Int(name, 0); v <= 0 {
			return nil, fmt.Errorf("%w: %s is %d", ErrBadParameter, name, v)
		}
	}
	return plan(out), nil
}

func initDetection(n *dispatch.Node) (*Plan, error) {
	_, out, err := operands(n)
	if err != nil {
		return nil, err
	}
	if len(n.Data) != 1 {
		return nil, fmt.Errorf("%w: needs the prior boxes", ErrBadParameter)
	}
	if c := n.Params.Int(dispatch.ParamNumClasses, 0); c <= 0 {
		return nil, fmt.Errorf("%w: %d classes", ErrBadParameter, c)
	}
	return plan(out), nil
}
