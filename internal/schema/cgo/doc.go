// Package cgo is the message-based raw graph schema: a header, pre and post
// CPU message lists, a DSP macro-message core and a flat parameter pool.
//
// The schema carries no file identifier. A model file wraps the flatbuffer in
// a 12 byte header that the parser strips before calling Verify.
package cgo

// MinGraphFormatVersion is the oldest graph format the parser accepts.
const MinGraphFormatVersion = 2020051516
