// Package parser turns serialized models into IR graphs.
//
// Two wire formats are supported:
//   - NNC: a table-based flatbuffer carrying operators, tensors, embedded
//     device binaries and per-operator option tables
//   - CGO: a raw graph flatbuffer inside a small container, whose tensors
//     are out-of-line blobs described by side parameters
//
// Each format has a Strategy that walks a fixed sequence of stages:
// verification, operators, tensors, operator options, attribute, graph
// infos, linking, validation and build. Calling a stage out of order is an
// error; a rejected buffer never produces records.
//
// Example:
//
//	g, file, err := parser.LoadFile(ctx, "model.nnc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	for _, op := range g.Operators() {
//	    fmt.Println(op.Name, op.Accelerator)
//	}
package parser
