// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dispatch compiles operator lists into backend nodes.
//
// A Constructor looks every operator up in a Registry, by builtin code or
// by custom name, materializes its tensors through a per-list arena and
// hands the finished Node to the Library for initialization. Feature maps
// whose last consumer was compiled give their storage back, so later
// tensors in the same list reuse it.
//
// Example:
//
//	c := dispatch.NewConstructor(cpu.New(), dispatch.WithForceFP32(true))
//	nodes, err := c.Open(list)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close(list.ID)
package dispatch

import (
	"github.com/born-ml/modelir/internal/arena"
	"github.com/born-ml/modelir/internal/dispatch"
	"github.com/born-ml/modelir/internal/ir"
)

// Constructor compiles operator lists for one Library.
type Constructor = dispatch.Constructor

// Option configures a Constructor.
type Option = dispatch.Option

// Library is a compute backend the constructor allocates from and
// initializes nodes with.
type Library = dispatch.Library

// Registry maps operators to construct functions.
type Registry = dispatch.Registry

// ConstructFunc builds the node of one operator.
type ConstructFunc = dispatch.ConstructFunc

// Context is the per-list state handed to construct functions.
type Context = dispatch.Context

// Node is one constructed operator.
type Node = dispatch.Node

// Kernel names the backend initializer a node is built for.
type Kernel = dispatch.Kernel

// Params holds the scalar parameters of a node.
type Params = dispatch.Params

// Pad4 is an explicit 2D padding.
type Pad4 = dispatch.Pad4

// Stats counts arena activity of a constructor.
type Stats = arena.Stats

// Errors raised while constructing a node.
var (
	ErrUnsupportedOperator = ir.ErrUnsupportedOperator
	ErrMissingOption       = ir.ErrMissingOption
	ErrAllocationFailed    = ir.ErrAllocationFailed
	ErrInvalidShape        = ir.ErrInvalidShape
	ErrInvalidOperator     = dispatch.ErrInvalidOperator
	ErrInvalidOption       = dispatch.ErrInvalidOption
	ErrInvalidParam        = dispatch.ErrInvalidParam
	ErrInitialize          = dispatch.ErrInitialize
)

// NewConstructor creates a constructor that builds nodes for lib.
func NewConstructor(lib Library, opts ...Option) *Constructor {
	return dispatch.NewConstructor(lib, opts...)
}

// NewRegistry returns a registry with every supported operator registered.
func NewRegistry() *Registry {
	return dispatch.NewRegistry()
}

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return dispatch.WithRegistry(r)
}

// WithForceFP32 ignores the float16 relax flag of every list.
func WithForceFP32(force bool) Option {
	return dispatch.WithForceFP32(force)
}
