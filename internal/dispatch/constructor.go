package dispatch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/modelir/internal/arena"
	"github.com/born-ml/modelir/internal/model"
)

// Constructor compiles operator lists into backend nodes. Only one list is
// compiled at a time: the arena's counters are constructor scratch state.
type Constructor struct {
	mu        sync.Mutex
	registry  *Registry
	arena     *arena.Arena
	lib       Library
	forceFP32 bool
}

// Option configures a Constructor.
type Option func(*Constructor)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(c *Constructor) { c.registry = r }
}

// WithForceFP32 ignores the float16 relax flag of every list.
func WithForceFP32(force bool) Option {
	return func(c *Constructor) { c.forceFP32 = force }
}

// NewConstructor creates a constructor that builds nodes for lib.
func NewConstructor(lib Library, opts ...Option) *Constructor {
	c := &Constructor{
		registry: NewRegistry(),
		arena:    arena.New(lib, lib.Device()),
		lib:      lib,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry the constructor dispatches through.
func (c *Constructor) Registry() *Registry {
	return c.registry
}

// Open compiles list and returns one node per operator, in list order.
// Any failure aborts the whole list and drops every tensor cached for it;
// the list id must not be reused for the failed result.
func (c *Constructor) Open(list *model.OperatorList) ([]*Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := &Context{
		Model:   list.Model(),
		Arena:   c.arena,
		Library: c.lib,
		Legacy:  list.Attribute.LegacyModel,
		Relax:   list.Attribute.RelaxFloat32ToFloat16 && !c.forceFP32,
	}
	slog.Debug("open operator list", "id", fmt.Sprintf("0x%x", list.ID), "accelerator", list.Accelerator,
		"operators", len(list.Operators), "legacy", ctx.Legacy, "relax", ctx.Relax)

	c.arena.Begin(list)
	defer c.arena.End()

	nodes := make([]*Node, 0, len(list.Operators))
	for _, op := range list.Operators {
		n, err := c.registry.Construct(ctx, op)
		if err != nil {
			c.arena.Close(list.ID)
			slog.Error("operator list compilation failed", "id", fmt.Sprintf("0x%x", list.ID), "error", err)
			return nil, errors.WithMessagef(err, "operator list 0x%x", list.ID)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Close drops the tensors cached for list id.
func (c *Constructor) Close(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arena.Close(id)
}

// Stats returns the arena counters.
func (c *Constructor) Stats() arena.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arena.Stats()
}
