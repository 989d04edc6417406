// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/modelir/internal/backend/cpu"
	"github.com/born-ml/modelir/dispatch"
	"github.com/born-ml/modelir/tensor"
)

// Backend represents the reference CPU library.
//
// The backend allocates feature maps from a recycling storage pool, narrows
// relaxed FLOAT32 constants to FP16 on upload and validates every node
// against its kernel when the node is initialized.
type Backend = internalcpu.CPUBackend

// Plan is the execution state Initialize attaches to a node.
type Plan = internalcpu.Plan

// Option configures a Backend.
type Option = internalcpu.Option

// Compile-time check that Backend implements dispatch.Library.
var _ dispatch.Library = (*Backend)(nil)

// Errors returned when a node does not fit its kernel.
var (
	ErrUnsupportedKernel = internalcpu.ErrUnsupportedKernel
	ErrShapeMismatch     = internalcpu.ErrShapeMismatch
	ErrBadParameter      = internalcpu.ErrBadParameter
)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/modelir/backend/cpu"
//	    "github.com/born-ml/modelir/dispatch"
//	)
//
//	func main() {
//	    backend := cpu.New(cpu.WithWorkers(4))
//	    c := dispatch.NewConstructor(backend)
//	}
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithStorage selects the storage class feature maps are allocated in.
func WithStorage(class tensor.StorageClass) Option {
	return internalcpu.WithStorage(class)
}

// WithWorkers caps the goroutines used to convert constants.
func WithWorkers(n int) Option {
	return internalcpu.WithWorkers(n)
}
