// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the reference CPU library operator lists are compiled
// against.
//
// # Overview
//
// This package implements dispatch.Library with:
//   - Pure Go implementation (no CGO)
//   - Feature map storage recycled through tensor.Pool
//   - FLOAT32 to FP16 narrowing of constants for relaxed models
//   - Per-kernel validation of shapes and parameters
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/modelir/backend/cpu"
//	    "github.com/born-ml/modelir/dispatch"
//	    "github.com/born-ml/modelir/loader"
//	)
//
//	func main() {
//	    g, file, _ := loader.LoadFile(ctx, "model.nnc")
//	    defer file.Close()
//	    m, _ := loader.Generate(g)
//
//	    backend := cpu.New()
//	    c := dispatch.NewConstructor(backend)
//	    for _, list := range m.Lists {
//	        nodes, err := c.Open(list)
//	        ...
//	    }
//	}
//
// Nodes built for other accelerators are rejected by the constructor when
// their operators have no construct function; compile only the lists whose
// accelerator the CPU serves.
package cpu
