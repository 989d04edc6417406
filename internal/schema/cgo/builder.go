package cgo

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

// RawGraphT is the mutable object form of RawGraph.
type RawGraphT struct {
	Name               string
	GraphFormatVersion uint32
	Core               *CoreT
	Param              *ParamT
	PreCPUCore         []MacroSubGraphT
	PostCPUCore        []MacroSubGraphT
}

// CoreT is the object form of Core.
type CoreT struct {
	Msgs            []MacroSubGraphT
	Buffers         []PoolRefT
	Scalars         []PoolRefT
	GraphInBuffers  []int32
	GraphOutBuffers []int32
	TargetInfo      *TargetInfoT
}

// PoolRefT is the object form of PoolRef.
type PoolRefT struct {
	Name      string
	PoolIndex uint32
}

// MacroSubGraphT is the object form of MacroSubGraph.
type MacroSubGraphT struct {
	MsgID          uint32
	FunctionID     int32
	AssignedTarget TargetType
	InBuffers      []int32
	OutBuffers     []int32
	UsrScalars     []int32
}

// TargetInfoT is the object form of TargetInfo. Only the DSP info matching
// Type is written.
type TargetInfoT struct {
	Type     GraphType
	Graph    BufInfoT
	LibPaths []string
}

// BufInfoT is the object form of BufInfo.
type BufInfoT struct {
	Name        string
	Offset      uint32
	Size        uint32
	LoadDefault MemLoadType
}

// ParamT is the object form of Param.
type ParamT struct {
	ParamList      []ParamElementT
	DevParamMaxIdx int32
}

// ParamElementT is the object form of ParamElement.
type ParamElementT struct {
	BufInfo                BufInfoT
	IsUserDefined          bool
	IsScalar               bool
	IsAllocateEverySession bool
}

// Encode serializes g into a finished flatbuffer.
func Encode(g *RawGraphT) []byte {
	b := flatbuffers.NewBuilder(1024)
	b.Finish(g.Pack(b))
	return b.FinishedBytes()
}

func packMsgs(b *flatbuffers.Builder, msgs []MacroSubGraphT) flatbuffers.UOffsetT {
	if msgs == nil {
		return 0
	}
	offs := make([]flatbuffers.UOffsetT, len(msgs))
	for i := range msgs {
		offs[i] = msgs[i].Pack(b)
	}
	return fbs.OffsetVector(b, offs)
}

// Pack writes g and returns its offset.
func (g *RawGraphT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	name := fbs.OptString(b, g.Name)
	b.StartObject(2)
	fbs.AddOffset(b, 0, name)
	b.PrependUint32Slot(1, g.GraphFormatVersion, 0)
	header := b.EndObject()

	var core, param flatbuffers.UOffsetT
	if g.Core != nil {
		core = g.Core.Pack(b)
	}
	if g.Param != nil {
		param = g.Param.Pack(b)
	}
	pre := packMsgs(b, g.PreCPUCore)
	post := packMsgs(b, g.PostCPUCore)

	b.StartObject(graphFields)
	b.PrependUOffsetTSlot(graphHeader, header, 0)
	fbs.AddOffset(b, graphCore, core)
	fbs.AddOffset(b, graphParam, param)
	fbs.AddOffset(b, graphPreCPUCore, pre)
	fbs.AddOffset(b, graphPostCPUCore, post)
	return b.EndObject()
}

func packRefs(b *flatbuffers.Builder, refs []PoolRefT) flatbuffers.UOffsetT {
	offs := make([]flatbuffers.UOffsetT, len(refs))
	for i, r := range refs {
		name := b.CreateString(r.Name)
		b.StartObject(2)
		b.PrependUOffsetTSlot(0, name, 0)
		b.PrependUint32Slot(1, r.PoolIndex, 0)
		offs[i] = b.EndObject()
	}
	return fbs.OffsetVector(b, offs)
}

// Pack writes c and returns its offset.
func (c *CoreT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	msgs := packMsgs(b, c.Msgs)
	buffers := packRefs(b, c.Buffers)
	scalars := packRefs(b, c.Scalars)
	in := fbs.Int32Vector(b, c.GraphInBuffers)
	out := fbs.Int32Vector(b, c.GraphOutBuffers)
	var ti flatbuffers.UOffsetT
	if c.TargetInfo != nil {
		ti = c.TargetInfo.Pack(b)
	}

	b.StartObject(6)
	fbs.AddOffset(b, coreMsgs, msgs)
	b.PrependUOffsetTSlot(coreBuffers, buffers, 0)
	b.PrependUOffsetTSlot(coreScalars, scalars, 0)
	b.PrependUOffsetTSlot(coreGraphInBuffers, in, 0)
	b.PrependUOffsetTSlot(coreGraphOutBuffers, out, 0)
	fbs.AddOffset(b, coreTargetInfo, ti)
	return b.EndObject()
}

// Pack writes m and returns its offset.
func (m *MacroSubGraphT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	in := fbs.Int32Vector(b, m.InBuffers)
	out := fbs.Int32Vector(b, m.OutBuffers)
	scalars := fbs.Int32Vector(b, m.UsrScalars)
	b.StartObject(1)
	b.PrependInt32Slot(0, m.FunctionID, 0)
	kernel := b.EndObject()

	b.StartObject(6)
	b.PrependUint32Slot(msgID, m.MsgID, 0)
	b.PrependUOffsetTSlot(msgKernelInfo, kernel, 0)
	b.PrependUint8Slot(msgAssignedTarget, uint8(m.AssignedTarget), 0)
	b.PrependUOffsetTSlot(msgInBuffers, in, 0)
	b.PrependUOffsetTSlot(msgOutBuffers, out, 0)
	b.PrependUOffsetTSlot(msgUsrScalars, scalars, 0)
	return b.EndObject()
}

// Pack writes ti and returns its offset.
func (ti *TargetInfoT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	graph := ti.Graph.Pack(b)
	var libs flatbuffers.UOffsetT
	if ti.Type == GraphTypeCVNN2019 {
		offs := make([]flatbuffers.UOffsetT, len(ti.LibPaths))
		for i, p := range ti.LibPaths {
			path := b.CreateString(p)
			b.StartObject(1)
			b.PrependUOffsetTSlot(0, path, 0)
			offs[i] = b.EndObject()
		}
		libs = fbs.OffsetVector(b, offs)
	}
	b.StartObject(2)
	b.PrependUOffsetTSlot(0, graph, 0)
	fbs.AddOffset(b, 1, libs)
	dsp := b.EndObject()

	b.StartObject(3)
	b.PrependUint8Slot(tiType, uint8(ti.Type), 0)
	switch ti.Type {
	case GraphTypeNN2018:
		b.PrependUOffsetTSlot(tiDSP2018, dsp, 0)
	case GraphTypeCVNN2019:
		b.PrependUOffsetTSlot(tiDSP2019, dsp, 0)
	}
	return b.EndObject()
}

// Pack writes bi and returns its offset.
func (bi *BufInfoT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	name := b.CreateString(bi.Name)
	b.StartObject(4)
	b.PrependUOffsetTSlot(0, name, 0)
	b.PrependUint32Slot(1, bi.Offset, 0)
	b.PrependUint32Slot(2, bi.Size, 0)
	b.PrependUint8Slot(3, uint8(bi.LoadDefault), 0)
	return b.EndObject()
}

// Pack writes p and returns its offset.
func (p *ParamT) Pack(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	offs := make([]flatbuffers.UOffsetT, len(p.ParamList))
	for i := range p.ParamList {
		e := &p.ParamList[i]
		info := e.BufInfo.Pack(b)
		b.StartObject(4)
		b.PrependUOffsetTSlot(0, info, 0)
		b.PrependBoolSlot(1, e.IsUserDefined, false)
		b.PrependBoolSlot(2, e.IsScalar, false)
		b.PrependBoolSlot(3, e.IsAllocateEverySession, false)
		offs[i] = b.EndObject()
	}
	list := fbs.OffsetVector(b, offs)
	b.StartObject(2)
	b.PrependUOffsetTSlot(0, list, 0)
	b.PrependInt32Slot(1, p.DevParamMaxIdx, 0)
	return b.EndObject()
}
