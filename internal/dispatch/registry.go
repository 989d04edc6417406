// Package dispatch turns the operators of a component operator list into
// backend nodes. A Registry maps builtin operator codes and custom operator
// names to construct functions; a Constructor compiles whole operator lists
// against one backend Library, materializing tensors through an arena.
package dispatch

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/schema/nnc"
)

// ConstructFunc builds the backend node of one operator.
type ConstructFunc func(ctx *Context, op *model.Operator) (*Node, error)

// Registry maps builtin operator codes and custom operator names to
// construct functions.
type Registry struct {
	builtin map[nnc.BuiltinOperator]ConstructFunc
	custom  map[string]ConstructFunc
}

// NewRegistry creates a registry with every supported operator.
func NewRegistry() *Registry {
	r := &Registry{
		builtin: make(map[nnc.BuiltinOperator]ConstructFunc),
		custom:  make(map[string]ConstructFunc),
	}

	r.registerElementwise()
	r.registerWindowed()
	r.registerShapeOps()
	r.registerActivations()
	r.registerQuantization()
	r.registerDeviceOps()
	r.registerCustomOps()

	return r
}

// RegisterBuiltin adds or replaces the construct function of a builtin code.
func (r *Registry) RegisterBuiltin(code nnc.BuiltinOperator, fn ConstructFunc) {
	r.builtin[code] = fn
}

// RegisterCustom adds or replaces the construct function of a custom name.
func (r *Registry) RegisterCustom(name string, fn ConstructFunc) {
	r.custom[name] = fn
}

// Lookup returns the construct function for op. Operators with a code in
// the builtin range dispatch by code, anything else by its name.
func (r *Registry) Lookup(op *model.Operator) (ConstructFunc, error) {
	if code := nnc.BuiltinOperator(op.Code); code.IsBuiltin() {
		fn, ok := r.builtin[code]
		if !ok {
			return nil, errors.Wrapf(ir.ErrUnsupportedOperator, "builtin %s (code %d)", code, op.Code)
		}
		return fn, nil
	}
	if op.Name != "" {
		fn, ok := r.custom[op.Name]
		if !ok {
			return nil, errors.Wrapf(ir.ErrUnsupportedOperator, "custom %q", op.Name)
		}
		return fn, nil
	}
	return nil, errors.Wrapf(ir.ErrUnsupportedOperator, "operator %d has neither a builtin code nor a name", op.ID)
}

// Construct looks op up and runs its construct function.
func (r *Registry) Construct(ctx *Context, op *model.Operator) (*Node, error) {
	fn, err := r.Lookup(op)
	if err != nil {
		return nil, err
	}
	n, err := fn(ctx, op)
	if err != nil {
		return nil, errors.WithMessagef(err, "construct %s (operator %d)", op.Name, op.ID)
	}
	return n, nil
}

// SupportedOps returns the names of every registered operator, builtin
// names first, each group sorted.
func (r *Registry) SupportedOps() []string {
	builtin := make([]string, 0, len(r.builtin))
	for code := range r.builtin {
		builtin = append(builtin, code.String())
	}
	custom := make([]string, 0, len(r.custom))
	for name := range r.custom {
		custom = append(custom, name)
	}
	sort.Strings(builtin)
	sort.Strings(custom)
	return append(builtin, custom...)
}
