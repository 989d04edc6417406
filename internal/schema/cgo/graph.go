package cgo

import (
	"github.com/born-ml/modelir/internal/schema/fbs"
)

// RawGraph slots.
const (
	graphHeader = iota
	graphCore
	graphParam
	graphPreCPUCore
	graphPostCPUCore
	graphFields
)

// RawGraph is the root table.
type RawGraph struct{ t fbs.Table }

// GetRootAsRawGraph returns the root table of buf.
func GetRootAsRawGraph(buf []byte) RawGraph {
	return RawGraph{fbs.RootTable(buf)}
}

// Header returns the graph header.
func (g RawGraph) Header() (Header, bool) {
	h, ok := g.t.Child(graphHeader)
	return Header{h}, ok
}

// Core returns the DSP macro-message core.
func (g RawGraph) Core() (Core, bool) {
	c, ok := g.t.Child(graphCore)
	return Core{c}, ok
}

// Param returns the parameter pool.
func (g RawGraph) Param() (Param, bool) {
	p, ok := g.t.Child(graphParam)
	return Param{p}, ok
}

// PreCPUCoreLength returns the number of messages run before the core.
func (g RawGraph) PreCPUCoreLength() int { return g.t.Len(graphPreCPUCore) }

// PreCPUCore returns pre-core message j.
func (g RawGraph) PreCPUCore(j int) MacroSubGraph {
	return MacroSubGraph{g.t.At(graphPreCPUCore, j)}
}

// PostCPUCoreLength returns the number of messages run after the core.
func (g RawGraph) PostCPUCoreLength() int { return g.t.Len(graphPostCPUCore) }

// PostCPUCore returns post-core message j.
func (g RawGraph) PostCPUCore(j int) MacroSubGraph {
	return MacroSubGraph{g.t.At(graphPostCPUCore, j)}
}

// Header names the graph and its format version.
type Header struct{ t fbs.Table }

// Name returns the graph name.
func (h Header) Name() (string, bool) { return h.t.String(0) }

// GraphFormatVersion returns the format version.
func (h Header) GraphFormatVersion() uint32 { return h.t.Uint32(1, 0) }

// Core slots.
const (
	coreMsgs = iota
	coreBuffers
	coreScalars
	coreGraphInBuffers
	coreGraphOutBuffers
	coreTargetInfo
)

// Core is the DSP macro-message core.
type Core struct{ t fbs.Table }

// MsgsLength returns the number of core messages.
func (c Core) MsgsLength() int { return c.t.Len(coreMsgs) }

// Msgs returns core message j.
func (c Core) Msgs(j int) MacroSubGraph { return MacroSubGraph{c.t.At(coreMsgs, j)} }

// BuffersLength returns the number of buffer descriptors.
func (c Core) BuffersLength() int { return c.t.Len(coreBuffers) }

// Buffers returns buffer descriptor j.
func (c Core) Buffers(j int) PoolRef { return PoolRef{c.t.At(coreBuffers, j)} }

// ScalarsLength returns the number of scalar descriptors.
func (c Core) ScalarsLength() int { return c.t.Len(coreScalars) }

// Scalars returns scalar descriptor j.
func (c Core) Scalars(j int) PoolRef { return PoolRef{c.t.At(coreScalars, j)} }

// GraphInBuffers returns the buffer indexes of the graph inputs.
func (c Core) GraphInBuffers() []int32 { return c.t.Int32s(coreGraphInBuffers) }

// GraphOutBuffers returns the buffer indexes of the graph outputs.
func (c Core) GraphOutBuffers() []int32 { return c.t.Int32s(coreGraphOutBuffers) }

// TargetInfo returns the DSP target info.
func (c Core) TargetInfo() (TargetInfo, bool) {
	ti, ok := c.t.Child(coreTargetInfo)
	return TargetInfo{ti}, ok
}

// PoolRef is a named reference into the parameter pool. Core buffers and
// core scalars share the layout.
type PoolRef struct{ t fbs.Table }

// Name returns the buffer or scalar name.
func (r PoolRef) Name() string {
	s, _ := r.t.String(0)
	return s
}

// PoolIndex returns the index into Param.ParamList.
func (r PoolRef) PoolIndex() uint32 { return r.t.Uint32(1, 0) }

// MacroSubGraph slots.
const (
	msgID = iota
	msgKernelInfo
	msgAssignedTarget
	msgInBuffers
	msgOutBuffers
	msgUsrScalars
)

// MacroSubGraph is one message: a kernel invocation on one target.
type MacroSubGraph struct{ t fbs.Table }

// MsgID returns the message id.
func (m MacroSubGraph) MsgID() uint32 { return m.t.Uint32(msgID, 0) }

// FunctionID returns the kernel function id, 0 when kernel info is absent.
func (m MacroSubGraph) FunctionID() int32 {
	k, ok := m.t.Child(msgKernelInfo)
	if !ok {
		return 0
	}
	return k.Int32(0, 0)
}

// AssignedTarget returns the execution target.
func (m MacroSubGraph) AssignedTarget() TargetType {
	return TargetType(m.t.Uint8(msgAssignedTarget, 0))
}

// InBuffers returns input indexes into Core.Buffers.
func (m MacroSubGraph) InBuffers() []int32 { return m.t.Int32s(msgInBuffers) }

// OutBuffers returns output indexes into Core.Buffers.
func (m MacroSubGraph) OutBuffers() []int32 { return m.t.Int32s(msgOutBuffers) }

// UsrScalars returns input indexes into Core.Scalars.
func (m MacroSubGraph) UsrScalars() []int32 { return m.t.Int32s(msgUsrScalars) }

// TargetInfo slots.
const (
	tiType = iota
	tiDSP2018
	tiDSP2019
)

// TargetInfo describes the DSP graph binary.
type TargetInfo struct{ t fbs.Table }

// Type returns the layout of the DSP info.
func (ti TargetInfo) Type() GraphType { return GraphType(ti.t.Uint8(tiType, 0)) }

// DSP2018 returns the NN2018 graph info.
func (ti TargetInfo) DSP2018() (DSPInfo, bool) {
	d, ok := ti.t.Child(tiDSP2018)
	return DSPInfo{d}, ok
}

// DSP2019 returns the CVNN2019 graph info.
func (ti TargetInfo) DSP2019() (DSPInfo, bool) {
	d, ok := ti.t.Child(tiDSP2019)
	return DSPInfo{d}, ok
}

// DSPInfo holds the DSP graph buffer and, for CVNN2019, its kernel libraries.
type DSPInfo struct{ t fbs.Table }

// GraphInfo returns the graph binary descriptor.
func (d DSPInfo) GraphInfo() (BufInfo, bool) {
	b, ok := d.t.Child(0)
	return BufInfo{b}, ok
}

// LibPaths returns the paths of the kernel libraries.
func (d DSPInfo) LibPaths() []string {
	n := d.t.Len(1)
	out := make([]string, 0, n)
	for j := 0; j < n; j++ {
		s, _ := d.t.At(1, j).String(0)
		out = append(out, s)
	}
	return out
}

// BufInfo describes one blob stored alongside the graph.
type BufInfo struct{ t fbs.Table }

// Name returns the blob name.
func (b BufInfo) Name() string {
	s, _ := b.t.String(0)
	return s
}

// Offset returns the blob offset in the model file.
func (b BufInfo) Offset() uint32 { return b.t.Uint32(1, 0) }

// Size returns the blob size in bytes.
func (b BufInfo) Size() uint32 { return b.t.Uint32(2, 0) }

// LoadDefault returns where the blob contents come from.
func (b BufInfo) LoadDefault() MemLoadType { return MemLoadType(b.t.Uint8(3, 0)) }

// Param is the flat parameter pool.
type Param struct{ t fbs.Table }

// ParamListLength returns the number of parameters.
func (p Param) ParamListLength() int { return p.t.Len(0) }

// ParamList returns parameter j.
func (p Param) ParamList(j int) ParamElement { return ParamElement{p.t.At(0, j)} }

// DevParamMaxIdx returns the number of parameters visible to the DSP.
func (p Param) DevParamMaxIdx() int32 { return p.t.Int32(1, 0) }

// ParamElement is one parameter of the pool.
type ParamElement struct{ t fbs.Table }

// BufInfo returns the parameter blob descriptor.
func (e ParamElement) BufInfo() (BufInfo, bool) {
	b, ok := e.t.Child(0)
	return BufInfo{b}, ok
}

func (e ParamElement) IsUserDefined() bool          { return e.t.Bool(1, false) }
func (e ParamElement) IsScalar() bool               { return e.t.Bool(2, false) }
func (e ParamElement) IsAllocateEverySession() bool { return e.t.Bool(3, false) }
