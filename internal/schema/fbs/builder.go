package fbs

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Int32Vector writes an [int] vector.
func Int32Vector(b *flatbuffers.Builder, v []int32) flatbuffers.UOffsetT {
	b.StartVector(flatbuffers.SizeInt32, len(v), flatbuffers.SizeInt32)
	for i := len(v) - 1; i >= 0; i-- {
		b.PrependInt32(v[i])
	}
	return b.EndVector(len(v))
}

// Int64Vector writes a [long] vector.
func Int64Vector(b *flatbuffers.Builder, v []int64) flatbuffers.UOffsetT {
	b.StartVector(flatbuffers.SizeInt64, len(v), flatbuffers.SizeInt64)
	for i := len(v) - 1; i >= 0; i-- {
		b.PrependInt64(v[i])
	}
	return b.EndVector(len(v))
}

// Float32Vector writes a [float] vector.
func Float32Vector(b *flatbuffers.Builder, v []float32) flatbuffers.UOffsetT {
	b.StartVector(flatbuffers.SizeFloat32, len(v), flatbuffers.SizeFloat32)
	for i := len(v) - 1; i >= 0; i-- {
		b.PrependFloat32(v[i])
	}
	return b.EndVector(len(v))
}

// OffsetVector writes a vector of table or string offsets.
func OffsetVector(b *flatbuffers.Builder, offs []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	b.StartVector(flatbuffers.SizeUOffsetT, len(offs), flatbuffers.SizeUOffsetT)
	for i := len(offs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offs[i])
	}
	return b.EndVector(len(offs))
}

// StringVector writes a [string] vector.
func StringVector(b *flatbuffers.Builder, v []string) flatbuffers.UOffsetT {
	offs := make([]flatbuffers.UOffsetT, len(v))
	for i, s := range v {
		offs[i] = b.CreateString(s)
	}
	return OffsetVector(b, offs)
}

// OptString writes s unless it is empty, returning 0 for an absent field.
func OptString(b *flatbuffers.Builder, s string) flatbuffers.UOffsetT {
	if s == "" {
		return 0
	}
	return b.CreateString(s)
}

// OptBytes writes v unless it is nil, returning 0 for an absent field.
func OptBytes(b *flatbuffers.Builder, v []byte) flatbuffers.UOffsetT {
	if v == nil {
		return 0
	}
	return b.CreateByteVector(v)
}

// AddOffset sets an offset slot when off is non-zero.
func AddOffset(b *flatbuffers.Builder, slot int, off flatbuffers.UOffsetT) {
	if off != 0 {
		b.PrependUOffsetTSlot(slot, off, 0)
	}
}
