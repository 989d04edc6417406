// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the backend tensor objects an operator list is
// compiled against.
//
// # Overview
//
// A RawTensor is a handle onto reference-counted Storage. Feature maps of a
// compiled list are created through a Pool, which hands the storage of a
// tensor whose last consumer has been compiled to the next tensor that fits:
//   - Spec describes the tensor to create (shape, type, precision, device)
//   - Pool serves New from recycled storage when a block is free
//   - NewConst copies constant data onto dedicated storage
//
// # Basic Usage
//
//	import "github.com/born-ml/modelir/tensor"
//
//	func main() {
//	    pool := tensor.NewPool(tensor.StorageBuffer)
//
//	    a, _ := pool.New(tensor.Spec{Shape: tensor.Shape{1, 64}, DType: tensor.Float32})
//	    pool.Recycle(a)
//
//	    // b reuses the storage a released.
//	    b, _ := pool.New(tensor.Spec{Shape: tensor.Shape{1, 32}, DType: tensor.Float32})
//	    _ = b
//	}
//
// # Precision
//
// Model tensors keep their serialized DataType. The Precision of a backend
// tensor is what the kernels compute in: FLOAT32 tensors of a model that
// allows relaxed computation are created at FP16.
package tensor
