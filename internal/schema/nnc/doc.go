// Package nnc is the table-based model schema: a TFLite-derived flatbuffer
// with device extensions (NPU and DSP binaries, unified device options).
//
// Accessors read straight from the model buffer. Call Verify before reading
// an untrusted buffer; accessors assume the tables they touch are in bounds.
package nnc

// FileIdentifier is the flatbuffer file identifier of a model buffer.
const FileIdentifier = "ENNC"
