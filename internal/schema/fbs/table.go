// Package fbs holds the flatbuffer plumbing shared by the model schemas:
// a slot-addressed table reader, a bounds-checked verifier and vector
// builders.
//
// The Go flatbuffers runtime trusts its input and panics on corrupt offsets.
// Schema packages run the Verifier over every table, vector and string they
// later read so that accessors only ever touch validated memory.
package fbs

import (
	"math"

	flatbuffers "github.com/google/flatbuffers/go"
)

// Table is a read-only view of one flatbuffer table.
// Fields are addressed by their slot number in schema order.
type Table struct {
	tab flatbuffers.Table
}

// NewTable wraps the table at pos.
func NewTable(buf []byte, pos flatbuffers.UOffsetT) Table {
	return Table{tab: flatbuffers.Table{Bytes: buf, Pos: pos}}
}

// RootTable returns the root table of buf without verifying it.
func RootTable(buf []byte) Table {
	return NewTable(buf, flatbuffers.GetUOffsetT(buf))
}

// VOffset converts a slot number to its vtable offset.
func VOffset(slot int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*slot)
}

func (t Table) offset(slot int) flatbuffers.VOffsetT {
	return t.tab.Offset(VOffset(slot))
}

// Raw returns the underlying flatbuffers table.
func (t Table) Raw() *flatbuffers.Table {
	tab := t.tab
	return &tab
}

// Valid reports whether t points into a buffer.
func (t Table) Valid() bool {
	return t.tab.Bytes != nil
}

// Pos returns the absolute position of the table in its buffer.
func (t Table) Pos() int {
	return int(t.tab.Pos)
}

// Has reports whether the field in slot is present.
func (t Table) Has(slot int) bool {
	return t.offset(slot) != 0
}

// Size returns the inline size of the table in bytes.
func (t Table) Size() int {
	vtable := flatbuffers.UOffsetT(flatbuffers.SOffsetT(t.tab.Pos) - t.tab.GetSOffsetT(t.tab.Pos))
	return int(t.tab.GetVOffsetT(vtable + 2))
}

// Bool reads a bool field.
func (t Table) Bool(slot int, d bool) bool {
	return t.tab.GetBoolSlot(VOffset(slot), d)
}

// Uint8 reads a ubyte field.
func (t Table) Uint8(slot int, d uint8) uint8 {
	return t.tab.GetUint8Slot(VOffset(slot), d)
}

// Int8 reads a byte field.
func (t Table) Int8(slot int, d int8) int8 {
	return t.tab.GetInt8Slot(VOffset(slot), d)
}

// Int32 reads an int field.
func (t Table) Int32(slot int, d int32) int32 {
	return t.tab.GetInt32Slot(VOffset(slot), d)
}

// Uint32 reads a uint field.
func (t Table) Uint32(slot int, d uint32) uint32 {
	return t.tab.GetUint32Slot(VOffset(slot), d)
}

// Int64 reads a long field.
func (t Table) Int64(slot int, d int64) int64 {
	return t.tab.GetInt64Slot(VOffset(slot), d)
}

// Float32 reads a float field.
func (t Table) Float32(slot int, d float32) float32 {
	return t.tab.GetFloat32Slot(VOffset(slot), d)
}

// String reads a string field. ok is false when the field is absent.
func (t Table) String(slot int) (s string, ok bool) {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return "", false
	}
	return string(t.tab.ByteVector(o + t.tab.Pos)), true
}

// Bytes returns a [ubyte] field as a view into the buffer, nil if absent.
func (t Table) Bytes(slot int) []byte {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return nil
	}
	return t.tab.ByteVector(o + t.tab.Pos)
}

// BytesPos returns the absolute position of a [ubyte] payload, -1 if absent.
func (t Table) BytesPos(slot int) int {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return -1
	}
	return int(t.tab.Vector(o))
}

// Len returns the length of a vector field, 0 if absent.
func (t Table) Len(slot int) int {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return 0
	}
	return t.tab.VectorLen(o)
}

// Int32s copies an [int] field.
func (t Table) Int32s(slot int) []int32 {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	start := t.tab.Vector(o)
	out := make([]int32, n)
	for j := range out {
		out[j] = t.tab.GetInt32(start + flatbuffers.UOffsetT(j*flatbuffers.SizeInt32))
	}
	return out
}

// Int64s copies a [long] field.
func (t Table) Int64s(slot int) []int64 {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	start := t.tab.Vector(o)
	out := make([]int64, n)
	for j := range out {
		out[j] = t.tab.GetInt64(start + flatbuffers.UOffsetT(j*flatbuffers.SizeInt64))
	}
	return out
}

// Float32s copies a [float] field.
func (t Table) Float32s(slot int) []float32 {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	start := t.tab.Vector(o)
	out := make([]float32, n)
	for j := range out {
		out[j] = math.Float32frombits(t.tab.GetUint32(start + flatbuffers.UOffsetT(j*flatbuffers.SizeFloat32)))
	}
	return out
}

// Strings copies a [string] field.
func (t Table) Strings(slot int) []string {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	start := t.tab.Vector(o)
	out := make([]string, n)
	for j := range out {
		out[j] = t.tab.String(start + flatbuffers.UOffsetT(j*flatbuffers.SizeUOffsetT))
	}
	return out
}

// Child returns a nested table field.
func (t Table) Child(slot int) (Table, bool) {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return Table{}, false
	}
	return NewTable(t.tab.Bytes, t.tab.Indirect(o+t.tab.Pos)), true
}

// At returns element j of a [table] field. The caller checks j against Len.
func (t Table) At(slot, j int) Table {
	o := flatbuffers.UOffsetT(t.offset(slot))
	x := t.tab.Vector(o) + flatbuffers.UOffsetT(j*flatbuffers.SizeUOffsetT)
	return NewTable(t.tab.Bytes, t.tab.Indirect(x))
}

// Union returns the value table of a union field.
func (t Table) Union(slot int) (Table, bool) {
	o := flatbuffers.UOffsetT(t.offset(slot))
	if o == 0 {
		return Table{}, false
	}
	var u flatbuffers.Table
	t.tab.Union(&u, o)
	return Table{tab: u}, true
}
