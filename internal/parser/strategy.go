package parser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/logutil"
	"github.com/born-ml/modelir/internal/schema/fbs"
)

// State is the position of a strategy in the parse pipeline.
type State int

// Pipeline states in execution order. Rejected and Failed are terminal.
const (
	StateUnverified State = iota
	StateVerified
	StateRejected
	StateOperatorsParsed
	StateTensorsParsed
	StateOptionsParsed
	StateAttributeParsed
	StateGraphInfoParsed
	StateLinked
	StateValidated
	StateBuilt
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	case StateOperatorsParsed:
		return "operators_parsed"
	case StateTensorsParsed:
		return "tensors_parsed"
	case StateOptionsParsed:
		return "options_parsed"
	case StateAttributeParsed:
		return "attribute_parsed"
	case StateGraphInfoParsed:
		return "graph_info_parsed"
	case StateLinked:
		return "linked"
	case StateValidated:
		return "validated"
	case StateBuilt:
		return "built"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Strategy parses one model buffer into an IR graph.
//
// Stages must be called in declaration order, each exactly once. A stage
// called before Verify succeeded returns ir.ErrNotVerified; any other
// out-of-order call returns ir.ErrStageOrder. The only implementations are
// *NNCStrategy and *CGOStrategy.
type Strategy interface {
	Verify() error
	ParseOperators() error
	ParseTensors() error
	ParseOperatorOptions() error
	ParseAttribute() error
	ParseGraphInfos() error
	Link() error
	Validate(ctx context.Context) error
	Build() (*ir.Graph, error)
	State() State

	pipelineState() *pipeline
}

// New creates the strategy for format f over the flatbuffer in buf.
func New(f Format, buf []byte, opts Options) (Strategy, error) {
	switch f {
	case FormatNNC:
		return NewNNC(buf, opts), nil
	case FormatCGO:
		return NewCGO(buf, opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ir.ErrUnknownFormat, f)
	}
}

// Run drives s through every stage and returns the built graph.
func Run(ctx context.Context, s Strategy) (*ir.Graph, error) {
	stages := []struct {
		name string
		fn   func() error
	}{
		{"verify", s.Verify},
		{"operators", s.ParseOperators},
		{"tensors", s.ParseTensors},
		{"options", s.ParseOperatorOptions},
		{"attribute", s.ParseAttribute},
		{"graph infos", s.ParseGraphInfos},
		{"link", s.Link},
		{"validate", func() error { return s.Validate(ctx) }},
	}
	for _, stage := range stages {
		if err := stage.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.name, err)
		}
	}
	return s.Build()
}

// pipeline holds the state shared by both strategies.
type pipeline struct {
	state State
	store *ir.Store
	buf   []byte
	opts  Options
}

func newPipeline(buf []byte, opts Options) *pipeline {
	if opts.File == nil {
		opts.File = buf
	}
	return &pipeline{
		state: StateUnverified,
		store: ir.NewStore(),
		buf:   buf,
		opts:  opts,
	}
}

func (p *pipeline) pipelineState() *pipeline { return p }

// State returns the current pipeline state.
func (p *pipeline) State() State { return p.state }

// Store exposes the record store being filled. It is frozen once built.
func (p *pipeline) Store() *ir.Store { return p.store }

// verify runs fn as the verification stage. A failure or a panic while
// walking the buffer rejects the model.
func (p *pipeline) verify(format string, fn func() error) error {
	if p.state != StateUnverified {
		return fmt.Errorf("%w: verify called in state %s", ir.ErrStageOrder, p.state)
	}
	if err := fbs.Run(fn); err != nil {
		p.state = StateRejected
		slog.Error("model rejected", "format", format, "error", err)
		return fmt.Errorf("%w: %w", ir.ErrVerificationFailed, err)
	}
	p.state = StateVerified
	slog.Debug("model verified", "format", format, "size", len(p.buf))
	return nil
}

// step runs fn as the stage moving the pipeline from one state to the next.
func (p *pipeline) step(from, to State, fn func() error) error {
	switch p.state {
	case StateUnverified, StateRejected:
		return fmt.Errorf("%w: %s requested in state %s", ir.ErrNotVerified, to, p.state)
	case from:
	default:
		return fmt.Errorf("%w: %s requested in state %s", ir.ErrStageOrder, to, p.state)
	}
	if err := fbs.Run(fn); err != nil {
		p.state = StateFailed
		return err
	}
	p.state = to
	logutil.Trace("parse stage done", "state", to)
	return nil
}

// Validate runs the referential checks over the linked store.
func (p *pipeline) Validate(ctx context.Context) error {
	return p.step(StateLinked, StateValidated, func() error {
		return validate(ctx, p.store, p.opts)
	})
}

// Build freezes the store and returns the graph.
func (p *pipeline) Build() (*ir.Graph, error) {
	var g *ir.Graph
	err := p.step(StateValidated, StateBuilt, func() error {
		g = ir.NewGraph(p.store, p.opts.Checksum)
		return nil
	})
	if err != nil {
		return nil, err
	}
	dump(g)
	return g, nil
}
