package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/tensor"
)

// chain builds op0 -> t1 -> op1 with t0 as graph input and t2 as output.
func chain(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	for i := int32(0); i < 3; i++ {
		require.NoError(t, AddTensor(s, Tensor{Index: i, Type: tensor.Float32, Shape: []int32{1, 4}, Prev: Undefined}))
	}
	_, err := AddOperator(s, Operator{Index: 0, Name: "RELU", Inputs: []int32{0}, Outputs: []int32{1}, OptionsIndex: Undefined})
	require.NoError(t, err)
	_, err = AddOperator(s, Operator{Index: 1, Name: "TANH", Inputs: []int32{1}, Outputs: []int32{2}, OptionsIndex: Undefined})
	require.NoError(t, err)

	require.NoError(t, AddNextOperator(s, 0, 0))
	require.NoError(t, SetPrevOperator(s, 1, 0))
	require.NoError(t, AddNextOperator(s, 1, 1))
	require.NoError(t, SetPrevOperator(s, 2, 1))
	require.NoError(t, AddGraphInfo(s, GraphInfo{Name: "main", Inputs: []int32{0}, Outputs: []int32{2}}))
	return s
}

func TestStoreLookup(t *testing.T) {
	s := NewStore()
	require.NoError(t, AddTensor(s, Tensor{Index: 7, Name: "x", Prev: Undefined}))
	require.NoError(t, AddTensor(s, Tensor{Index: 2, Name: "y", Prev: Undefined}))

	got, ok := s.Tensor(7)
	require.True(t, ok)
	assert.Equal(t, "x", got.Name)

	_, ok = s.Tensor(3)
	assert.False(t, ok)

	err := AddTensor(s, Tensor{Index: 7})
	assert.True(t, errors.Is(err, ErrDuplicateIndex))

	require.NoError(t, SetTensorName(s, 2, "renamed"))
	got, _ = s.Tensor(2)
	assert.Equal(t, "renamed", got.Name)

	assert.ErrorIs(t, SetTensorName(s, 9, "z"), ErrNotFound)
}

func TestAddNextOperatorDeduplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, AddTensor(s, Tensor{Index: 0, Prev: Undefined}))
	require.NoError(t, AddNextOperator(s, 0, 3))
	require.NoError(t, AddNextOperator(s, 0, 3))
	require.NoError(t, AddNextOperator(s, 0, 1))

	got, _ := s.Tensor(0)
	assert.Equal(t, []int32{3, 1}, got.Next)
}

func TestFreezeRejectsMutation(t *testing.T) {
	s := chain(t)
	g := NewGraph(s, [32]byte{1})

	assert.True(t, g.Frozen())
	assert.ErrorIs(t, AddTensor(g.Store, Tensor{Index: 10}), ErrFrozen)
	assert.ErrorIs(t, SetPrevOperator(g.Store, 0, 1), ErrFrozen)
	_, err := AddOperator(g.Store, Operator{})
	assert.ErrorIs(t, err, ErrFrozen)
	assert.ErrorIs(t, AddBinary(g.Store, Binary{}), ErrFrozen)
	assert.ErrorIs(t, SetAttribute(g.Store, Attribute{}), ErrFrozen)

	assert.Len(t, g.Fingerprint(), 64)
	assert.NotEqual(t, g.ID.String(), NewGraph(NewStore(), [32]byte{}).ID.String())
}

func TestCheckChain(t *testing.T) {
	s := chain(t)
	assert.NoError(t, CheckOperators(s))
	assert.NoError(t, CheckAdjacency(s))
	assert.NoError(t, CheckGraphInfos(s))
}

func TestCheckOperatorsDangling(t *testing.T) {
	s := chain(t)
	_, err := AddOperator(s, Operator{Index: 2, Inputs: []int32{2}, Outputs: []int32{42}, Binaries: []int32{0}, OptionsIndex: 5})
	require.NoError(t, err)

	err = CheckOperators(s)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "operator", verr.Record)
	assert.Contains(t, err.Error(), "dangling_output")
	assert.Contains(t, err.Error(), "dangling_binary")
	assert.Contains(t, err.Error(), "dangling_options")
}

func TestCheckAdjacencyMismatch(t *testing.T) {
	s := chain(t)
	// t2 claims op0 as producer but op0 only outputs t1.
	require.NoError(t, SetPrevOperator(s, 2, 0))
	err := CheckAdjacency(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tensor[2]")
}

func TestCheckGraphInfosMissing(t *testing.T) {
	s := chain(t)
	require.NoError(t, AddGraphInfo(s, GraphInfo{Name: "aux", Inputs: []int32{99}}))
	assert.ErrorContains(t, CheckGraphInfos(s), "missing tensor 99")
}

func TestGraphOptionsAndDefaults(t *testing.T) {
	s := chain(t)
	require.NoError(t, AddOperatorOptions(s, OperatorOptions{OperatorIndex: 1, Name: "TanhOptions"}))
	require.NoError(t, SetOperatorOptionsIndex(s, 1, 0))
	g := NewGraph(s, [32]byte{})

	assert.Equal(t, ModelTypeNone, g.ModelType())
	assert.Equal(t, LegacyNone, g.LegacyModel())
	assert.False(t, g.RelaxFloat32())

	op0, _ := g.Operator(0)
	op1, _ := g.Operator(1)
	assert.Nil(t, g.Options(op0))
	require.NotNil(t, g.Options(op1))
	assert.Equal(t, "TanhOptions", g.Options(op1).Name)

	in := g.InputTensors(op1)
	require.Len(t, in, 1)
	assert.Equal(t, int32(1), in[0].Index)
}

func TestBinaryLookupByIndex(t *testing.T) {
	s := NewStore()
	require.NoError(t, AddBinary(s, Binary{Index: 1, Name: "DSP"}))
	require.NoError(t, AddBinary(s, Binary{Index: 0, Name: "NPU"}))
	assert.ErrorIs(t, AddBinary(s, Binary{Index: 1}), ErrDuplicateIndex)

	b, ok := s.Binary(0)
	require.True(t, ok)
	assert.Equal(t, "NPU", b.Name)
	assert.Equal(t, "DSP", s.Binaries()[0].Name)

	require.NoError(t, SetBinaryName(s, 1, "dsp_graph"))
	b, _ = s.Binary(1)
	assert.Equal(t, "dsp_graph", b.Name)
}

func TestBinaryBytes(t *testing.T) {
	b := Binary{Data: []byte("xxNPUCMDyy"), Offset: 2, Size: 6}
	assert.Equal(t, []byte("NPUCMD"), b.Bytes())

	b.Size = 100
	assert.Nil(t, b.Bytes())
}
