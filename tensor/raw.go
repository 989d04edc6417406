// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/modelir/internal/tensor"
)

// RawTensor is a backend tensor handle.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Precision()
//   - The buffer index of the model tensor it materializes via BufferIndex()
//   - Byte access to its storage via Data()
//
// A handle stays valid after its storage was recycled; Recycled() reports
// whether another tensor may now own the memory.
type RawTensor = tensor.RawTensor

// Storage is the reference-counted memory behind one or more tensors.
type Storage = tensor.Storage

// Shape lists tensor dimensions, outermost first.
type Shape = tensor.Shape

// MaxRank is the highest rank a backend tensor may have.
const MaxRank = tensor.MaxRank

// DataType is the serialized element type of a model tensor.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32   = tensor.Float32
	Float16   = tensor.Float16
	Int32     = tensor.Int32
	Uint8     = tensor.Uint8
	Int64     = tensor.Int64
	String    = tensor.String
	Bool      = tensor.Bool
	Int16     = tensor.Int16
	Complex64 = tensor.Complex64
	Int8      = tensor.Int8
	Float64   = tensor.Float64
)

// Precision is the compute precision of a backend tensor.
type Precision = tensor.Precision

// Supported precisions.
const (
	FP32  = tensor.FP32
	FP16  = tensor.FP16
	INT8  = tensor.INT8
	UINT8 = tensor.UINT8
)

// Device is the execution unit a tensor is created for.
type Device = tensor.Device

// Supported devices.
const (
	CPU = tensor.CPU
	GPU = tensor.GPU
)

// StorageClass selects the physical layout of tensor memory.
type StorageClass = tensor.StorageClass

// Storage classes.
const (
	StorageBuffer  = tensor.StorageBuffer
	StorageTexture = tensor.StorageTexture
)
