package dispatch

import (
	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

// Pad4 is an explicit 2D padding in elements.
type Pad4 struct {
	Left, Right, Top, Bottom int32
}

// Precision returns the compute precision for tensors of type dt. Float32
// runs at FP16 when the model allows relaxed computation; types without a
// dedicated precision default to FP16.
func Precision(dt tensor.DataType, relax bool) tensor.Precision {
	switch dt {
	case tensor.Int8:
		return tensor.INT8
	case tensor.Uint8:
		return tensor.UINT8
	case tensor.Float32:
		if relax {
			return tensor.FP16
		}
		return tensor.FP32
	default:
		return tensor.FP16
	}
}

// IsNCHW reports whether models of the legacy family lay feature maps out as
// NCHW. Only the NHWC families of TensorFlow and Caffe do not.
func IsNCHW(legacy ir.LegacyModel) bool {
	switch legacy {
	case ir.LegacyTensorflowNHWC, ir.LegacyCaffeNHWC:
		return false
	default:
		return true
	}
}

// Window describes a sliding-window operator for padding computation.
type Window struct {
	Input, Output, Filter []int32

	StrideH, StrideW     int32
	DilationH, DilationW int32

	Deconv bool
	NCHW   bool
}

const (
	hNHWC, wNHWC = 1, 2
	cNCHW, hNCHW = 1, 2
	wNCHW        = 3
)

// dim returns dims[i], or 1 when the tensor has fewer dimensions.
func dim(dims []int32, i int) int32 {
	if i < len(dims) {
		return dims[i]
	}
	return 1
}

// SamePadding computes the explicit padding of a window under padding
// scheme p. VALID pads nothing.
//
// Caffe families split the total padding symmetrically with the halves
// rounded up. Everything else follows the Android NN rule, where the odd
// element goes to the right and bottom. Android NN kernels are always laid
// out as [Cout, Kh, Kw, Cin].
func SamePadding(legacy ir.LegacyModel, p nnc.Padding, w Window) Pad4 {
	var pad Pad4
	if p != nnc.PaddingSame {
		return pad
	}

	var inH, inW, outH, outW, fH, fW int32
	if w.NCHW {
		inH, inW = dim(w.Input, hNCHW), dim(w.Input, wNCHW)
		outH, outW = dim(w.Output, hNCHW), dim(w.Output, wNCHW)
		fH, fW = dim(w.Filter, hNCHW), dim(w.Filter, wNCHW)
		if legacy == ir.LegacyAndroidNN {
			fH, fW = dim(w.Filter, cNCHW), dim(w.Filter, hNCHW)
		}
	} else {
		inH, inW = dim(w.Input, hNHWC), dim(w.Input, wNHWC)
		outH, outW = dim(w.Output, hNHWC), dim(w.Output, wNHWC)
		fH, fW = dim(w.Filter, hNHWC), dim(w.Filter, wNHWC)
	}
	if w.Deconv {
		inH, outH = outH, inH
		inW, outW = outW, inW
	}

	dh, dw := max(w.DilationH, 1), max(w.DilationW, 1)
	fH = dh*(fH-1) + 1
	fW = dw*(fW-1) + 1

	neededW := (outW-1)*max(w.StrideW, 1) + fW
	neededH := (outH-1)*max(w.StrideH, 1) + fH

	if legacy == ir.LegacyAndroidNN && w.Deconv && neededH < inH {
		pad.Right = neededW - inW
		pad.Bottom = neededH - inH
		return pad
	}

	totalW := max(0, neededW-inW)
	totalH := max(0, neededH-inH)
	switch legacy {
	case ir.LegacyCaffe, ir.LegacyCaffeNHWC, ir.LegacyCaffeNCHW:
		pad.Left = (totalW + 1) / 2
		pad.Right = pad.Left
		pad.Top = (totalH + 1) / 2
		pad.Bottom = pad.Top
	default:
		pad.Left = totalW / 2
		pad.Top = totalH / 2
		pad.Right = (totalW + 1) / 2
		pad.Bottom = (totalH + 1) / 2
	}
	return pad
}
