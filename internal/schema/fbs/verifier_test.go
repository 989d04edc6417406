package fbs

import (
	"encoding/binary"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample encodes table { name: string, dims: [int32], child: { value: uint32 } }
// with file identifier "TEST".
func sample(t *testing.T) []byte {
	t.Helper()
	b := flatbuffers.NewBuilder(0)

	b.StartObject(1)
	b.PrependUint32Slot(0, 42, 0)
	child := b.EndObject()

	name := b.CreateString("conv")
	b.StartVector(4, 3, 4)
	for _, d := range []int32{4, 3, 2} {
		b.PrependInt32(d)
	}
	dims := b.EndVector(3)

	b.StartObject(3)
	b.PrependUOffsetTSlot(0, name, 0)
	b.PrependUOffsetTSlot(1, dims, 0)
	b.PrependUOffsetTSlot(2, child, 0)
	root := b.EndObject()
	b.FinishWithFileIdentifier(root, []byte("TEST"))
	return b.FinishedBytes()
}

func walk(v *Verifier) error {
	root, err := v.Root()
	if err != nil {
		return err
	}
	if err := v.String(root, 0); err != nil {
		return err
	}
	if _, err := v.Vector(root, 1, 4); err != nil {
		return err
	}
	return v.Table(root, 2, func(c Table) error {
		return v.Scalar(c, 0, 4)
	})
}

func TestVerifyValidBuffer(t *testing.T) {
	buf := sample(t)
	v := New(buf)
	require.NoError(t, v.Identifier("TEST"))
	require.NoError(t, walk(v))

	assert.ErrorIs(t, v.Identifier("ENNC"), ErrIdentifier)
}

func TestVerifyTruncatedBuffer(t *testing.T) {
	buf := sample(t)
	for _, n := range []int{0, 3, 8, len(buf) / 2, len(buf) - 1} {
		err := Run(func() error { return walk(New(buf[:n])) })
		assert.Error(t, err, "truncated to %d bytes", n)
	}
}

func TestVerifyCorruptRootOffset(t *testing.T) {
	buf := append([]byte(nil), sample(t)...)
	binary.LittleEndian.PutUint32(buf, uint32(len(buf)+100))
	_, err := New(buf).Root()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestVerifyCorruptVectorLength(t *testing.T) {
	buf := append([]byte(nil), sample(t)...)
	root := RootTable(buf).Raw()
	field := root.Pos + flatbuffers.UOffsetT(root.Offset(VOffset(1)))
	vec := field + flatbuffers.GetUOffsetT(buf[field:])
	binary.LittleEndian.PutUint32(buf[vec:], 1<<30)

	v := New(buf)
	r, err := v.Root()
	require.NoError(t, err)
	_, err = v.Vector(r, 1, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestVerifyDepthLimit(t *testing.T) {
	v := New(sample(t)).WithLimits(0, DefaultMaxTables)
	assert.ErrorIs(t, walk(v), ErrDepthLimit)
}

func TestRunRecoversPanic(t *testing.T) {
	err := Run(func() error {
		var b []byte
		_ = b[4]
		return nil
	})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTableAccessors(t *testing.T) {
	root := RootTable(sample(t))

	name, ok := root.String(0)
	require.True(t, ok)
	assert.Equal(t, "conv", name)
	assert.Equal(t, []int32{2, 3, 4}, root.Int32s(1))
	assert.Equal(t, 3, root.Len(1))

	child, ok := root.Child(2)
	require.True(t, ok)
	assert.Equal(t, uint32(42), child.Uint32(0, 0))
	assert.Equal(t, uint32(7), child.Uint32(3, 7), "absent field yields default")

	_, ok = root.String(5)
	assert.False(t, ok)
	assert.Nil(t, root.Int32s(5))
}
