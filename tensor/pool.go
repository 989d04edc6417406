// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/modelir/internal/tensor"
)

// Spec describes a backend tensor to create.
type Spec = tensor.Spec

// Pool hands out tensor storage and takes it back for reuse.
type Pool = tensor.Pool

// PoolStats counts storage traffic through a Pool.
type PoolStats = tensor.PoolStats

// NewPool creates an empty pool for the given storage class.
//
// Example:
//
//	pool := tensor.NewPool(tensor.StorageBuffer)
//	t, err := pool.New(tensor.Spec{Shape: tensor.Shape{1, 3, 224, 224}, DType: tensor.Float32})
func NewPool(class StorageClass) *Pool {
	return tensor.NewPool(class)
}

// ShapeOf converts serialized dimensions into a Shape.
func ShapeOf(dims []int32) Shape {
	return tensor.ShapeOf(dims)
}
