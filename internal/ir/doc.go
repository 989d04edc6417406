// Package ir holds the normalized graph representation produced by the model parsers.
//
// A Store is the single owner of every record of one loaded model:
//   - Tensor: feature maps, constant parameters and scalars
//   - Operator: one compute step with its input/output/binary index lists
//   - Binary: a compiled device program (NPU command stream, DSP kernel image)
//   - GraphInfo: inputs and outputs of one subgraph
//   - OperatorOptions, NPUOptions, DSPOptions, ModelOption, Attribute
//
// Records never point at each other. Every cross reference is an integer
// index, which keeps the graph free of ownership cycles and trivially
// inspectable. The builder functions in builder.go are the only code that
// mutates a Store; once parsing is done the Store is frozen into a Graph.
package ir
