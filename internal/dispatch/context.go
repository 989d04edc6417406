package dispatch

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/modelir/internal/arena"
	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/tensor"
)

// Errors raised while constructing a node.
var (
	ErrInvalidOperator = errors.New("operator name does not match its code")
	ErrInvalidOption   = errors.New("operator option does not match operator")
	ErrInvalidParam    = errors.New("invalid operator parameter")
	ErrInitialize      = errors.New("backend initialization failed")
)

// Reserved names of constant parameters that carry scalar operator
// parameters of custom operators.
const (
	ParamNameScale     = "SCALE"
	ParamNameZeroPoint = "ZERO_POINT"
	ParamNameAxis      = "AXIS"
	ParamNameBeta      = "BETA"
	ParamNameMean      = "MEAN"
	ParamNameFracLen   = "FRAC_LEN"
	ParamNamePadFront  = "PAD_FRONT"
	ParamNamePadEnd    = "PAD_END"
	ParamNamePadValue  = "PAD_VALUE"
	ParamNamePriorBox  = "PRIORBOX_OUTPUT"
)

var reservedNames = []string{
	ParamNameScale, ParamNameZeroPoint, ParamNameAxis, ParamNameBeta, ParamNameMean,
	ParamNameFracLen, ParamNamePadFront, ParamNamePadEnd, ParamNamePadValue, ParamNamePriorBox,
}

// Library is a compute backend. It allocates the tensors the arena
// materializes and initializes one kernel per constructed node.
type Library interface {
	arena.Allocator
	Device() tensor.Device
	Initialize(n *Node) error
}

// Context is the per-list state handed to construct functions.
type Context struct {
	Model   *model.Model
	Arena   *arena.Arena
	Library Library

	Legacy ir.LegacyModel
	Relax  bool
}

// Precision returns the compute precision for tensors of type dt.
func (c *Context) Precision(dt tensor.DataType) tensor.Precision {
	return Precision(dt, c.Relax)
}

// NCHW reports whether the list's feature maps are laid out as NCHW.
func (c *Context) NCHW() bool {
	return IsNCHW(c.Legacy)
}

// precisionOf picks the precision of op from its first output.
func (c *Context) precisionOf(op *model.Operator) tensor.Precision {
	for _, t := range c.Model.OutputTensors(op) {
		if t != nil {
			return c.Precision(t.DType)
		}
	}
	return tensor.FP32
}

// node materializes the tensors of op and returns a node for kernel k.
// Outputs are materialized first so no input released by this operator can
// hand its storage to one of the operator's own outputs. Every input is
// consumed right after materialization. Parameters with a reserved name are
// left out; construct functions read them as scalar parameters.
func (c *Context) node(op *model.Operator, k Kernel) (*Node, error) {
	p := c.precisionOf(op)
	n := &Node{
		Name:      op.Name,
		ID:        op.ID,
		Kernel:    k,
		Precision: p,
		Params:    make(Params),
	}
	for _, t := range c.Model.OutputTensors(op) {
		if t == nil {
			continue
		}
		rt, err := c.Arena.Materialize(t, p)
		if err != nil {
			return nil, err
		}
		n.Outputs = append(n.Outputs, rt)
	}
	for _, t := range c.Model.InputTensors(op) {
		if t == nil {
			n.Inputs = append(n.Inputs, nil)
			continue
		}
		if t.Kind == model.Parameter && slices.Contains(reservedNames, t.Name) {
			continue
		}
		tp := p
		if t.Const() {
			tp = storagePrecision(t.DType, c.Relax)
		}
		rt, err := c.Arena.Materialize(t, tp)
		if err != nil {
			return nil, err
		}
		c.Arena.Consume(t)
		n.Inputs = append(n.Inputs, rt)
	}
	return n, nil
}

// constant materializes a parameter built from option values.
func (c *Context) constant(name string, dt tensor.DataType, data []byte, shape ...int32) (*tensor.RawTensor, error) {
	t := &model.Tensor{
		ID:          ir.Undefined,
		Name:        name,
		Kind:        model.Parameter,
		DType:       dt,
		Shape:       shape,
		BufferIndex: ir.Undefined,
		BufferSize:  len(data),
		Data:        data,
		FD:          -1,
		Prev:        ir.Undefined,
	}
	return c.Arena.Materialize(t, storagePrecision(dt, c.Relax))
}

// storagePrecision keeps constants of types without a compute precision at
// four bytes per element so their data is never truncated.
func storagePrecision(dt tensor.DataType, relax bool) tensor.Precision {
	switch dt {
	case tensor.Float32, tensor.Float16, tensor.Int8, tensor.Uint8:
		return Precision(dt, relax)
	default:
		return tensor.FP32
	}
}

// reserved returns the constant input of op named name.
func (c *Context) reserved(op *model.Operator, name string) (*model.Tensor, bool) {
	for _, t := range c.Model.InputTensors(op) {
		if t != nil && t.Const() && t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// param returns the constant input at position i of op.
func (c *Context) param(op *model.Operator, i int) (*model.Tensor, bool) {
	inputs := c.Model.InputTensors(op)
	if i >= len(inputs) || inputs[i] == nil || !inputs[i].Const() {
		return nil, false
	}
	return inputs[i], true
}

// reservedData materializes the reserved parameter name of op into n.Data.
func (c *Context) reservedData(op *model.Operator, n *Node, name string) (bool, error) {
	t, ok := c.reserved(op, name)
	if !ok {
		return false, nil
	}
	rt, err := c.Arena.Materialize(t, storagePrecision(t.DType, c.Relax))
	if err != nil {
		return false, err
	}
	n.Data = append(n.Data, rt)
	return true, nil
}

// initialize hands n to the backend.
func (c *Context) initialize(n *Node) (*Node, error) {
	if err := c.Library.Initialize(n); err != nil {
		return nil, errors.Wrapf(ErrInitialize, "%s: %v", n.Kernel, err)
	}
	return n, nil
}

// checkName rejects builtin operators whose name does not match their code.
func checkName(op *model.Operator, code nnc.BuiltinOperator) error {
	if op.Name != code.String() {
		return errors.Wrapf(ErrInvalidOperator, "%q for %s", op.Name, code)
	}
	return nil
}

// option returns the option of op after checking its tag against want.
func option(op *model.Operator, want ...nnc.BuiltinOptions) (*model.Option, error) {
	o := op.Option
	if o == nil || (o.Table == nil && len(o.Raw) == 0) {
		return nil, errors.Wrapf(ir.ErrMissingOption, "%s (operator %d)", op.Name, op.ID)
	}
	if !slices.Contains(want, nnc.BuiltinOptions(o.Number)) {
		return nil, errors.Wrapf(ErrInvalidOption, "%s for %s", nnc.BuiltinOptions(o.Number), op.Name)
	}
	return o, nil
}

// optional is option for operators that may carry no option at all.
func optional(op *model.Operator, want ...nnc.BuiltinOptions) (*model.Option, error) {
	if op.Option == nil || nnc.BuiltinOptions(op.Option.Number) == nnc.OptionsNone {
		return nil, nil
	}
	return option(op, want...)
}

// needTable fails when o carries no flatbuffer table. Construct functions
// call it once the legacy raw layout did not match.
func needTable(op *model.Operator, o *model.Option) error {
	if o.Table == nil {
		return errors.Wrapf(ir.ErrMissingOption, "%s has a %d byte raw option and no table", op.Name, len(o.Raw))
	}
	return nil
}

func arity(op *model.Operator, n *Node, in, out int) error {
	if len(n.Inputs) < in || len(n.Outputs) < out {
		return errors.Wrapf(ErrInvalidParam, "%s needs %d inputs and %d outputs, got %d and %d",
			op.Name, in, out, len(n.Inputs), len(n.Outputs))
	}
	for i := range in {
		if n.Inputs[i] == nil {
			return errors.Wrapf(ErrInvalidParam, "%s input %d is omitted", op.Name, i)
		}
	}
	return nil
}

func paramFloat32(t *model.Tensor) (float32, error) {
	if len(t.Data) < 4 {
		return 0, errors.Wrapf(ErrInvalidParam, "%s holds %d bytes", t.Name, len(t.Data))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(t.Data)), nil
}

func paramInt32(t *model.Tensor) (int32, error) {
	if len(t.Data) < 4 {
		return 0, errors.Wrapf(ErrInvalidParam, "%s holds %d bytes", t.Name, len(t.Data))
	}
	return int32(binary.LittleEndian.Uint32(t.Data)), nil
}

func paramInt32s(t *model.Tensor) []int32 {
	out := make([]int32, len(t.Data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(t.Data[4*i:]))
	}
	return out
}

func paramFloat32s(t *model.Tensor) []float32 {
	out := make([]float32, len(t.Data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.Data[4*i:]))
	}
	return out
}

func float32Bytes(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func int32Bytes(v []int32) []byte {
	b := make([]byte, 4*len(v))
	for i, n := range v {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(n))
	}
	return b
}
