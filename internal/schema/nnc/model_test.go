package nnc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *ModelT {
	return &ModelT{
		Version: 200,
		OperatorCodes: []OperatorCodeT{
			{BuiltinCode: OpConv2D},
			{BuiltinCode: OpENNNPU, Version: 2},
			{CustomCode: "Normalization"},
		},
		Subgraphs: []SubGraphT{{
			Name: "main",
			Tensors: []TensorT{
				{Name: "input", Shape: []int32{1, 3, 8, 8}, Type: 0},
				{Name: "weights", Shape: []int32{4, 3, 3, 3}, Buffer: 1,
					Quantization: &QuantizationT{Scale: []float32{0.5}, ZeroPoint: []int64{3}}},
				{Name: "output", Shape: []int32{1, 4, 8, 8}},
			},
			Inputs:  []int32{0},
			Outputs: []int32{2},
			Operators: []OperatorT{{
				OpcodeIndex: 0,
				Inputs:      []int32{0, 1},
				Outputs:     []int32{2},
				Options:     &Conv2DOptionsT{StrideW: 1, StrideH: 2, PaddingValue: []int32{1, 1, 0, 0}},
				TargetHw:    TargetGPU,
			}},
		}},
		Buffers:    []BufferT{{}, {Data: []byte{1, 2, 3, 4}}},
		Compatible: []int32{5},
		Relax:      true,
	}
}

func TestEncodeAndRead(t *testing.T) {
	buf := Encode(sampleModel())
	require.NoError(t, Verify(buf))
	assert.Equal(t, FileIdentifier, string(buf[4:8]))

	m := GetRootAsModel(buf)
	assert.Equal(t, uint32(200), m.Version())
	assert.True(t, m.Relax())
	assert.Equal(t, []int32{5}, m.Compatible())

	require.Equal(t, 3, m.OperatorCodesLength())
	assert.Equal(t, OpENNNPU, m.OperatorCodes(1).BuiltinCode())
	assert.Equal(t, "Normalization", m.OperatorCodes(2).CustomCode())
	assert.Equal(t, int32(1), m.OperatorCodes(0).Version(), "unset version encodes the default")
	assert.Equal(t, int32(2), m.OperatorCodes(1).Version())

	require.Equal(t, 1, m.SubgraphsLength())
	g := m.Subgraphs(0)
	name, ok := g.Name()
	assert.True(t, ok)
	assert.Equal(t, "main", name)
	assert.Equal(t, []int32{0}, g.Inputs())
	assert.Equal(t, []int32{2}, g.Outputs())

	require.Equal(t, 3, g.TensorsLength())
	w := g.Tensors(1)
	assert.Equal(t, "weights", w.Name())
	assert.Equal(t, []int32{4, 3, 3, 3}, w.Shape())
	q, ok := w.Quantization()
	require.True(t, ok)
	assert.Equal(t, []float32{0.5}, q.Scale())
	assert.Equal(t, []int64{3}, q.ZeroPoint())
	_, ok = g.Tensors(0).Quantization()
	assert.False(t, ok)

	data := m.Buffers(int(w.Buffer())).Data()
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	pos := m.Buffers(1).DataOffset()
	assert.Equal(t, data, buf[pos:pos+4])
	assert.Nil(t, m.Buffers(0).Data())

	op := g.Operators(0)
	assert.Equal(t, TargetGPU, op.TargetHw())
	assert.Equal(t, OptionsConv2D, op.BuiltinOptionsType())
	tab, ok := op.BuiltinOptions()
	require.True(t, ok)
	conv := AsConv2DOptions(tab)
	assert.Equal(t, int32(1), conv.StrideW())
	assert.Equal(t, int32(2), conv.StrideH())
	assert.Equal(t, int32(1), conv.DilationW())
	assert.Equal(t, []int32{1, 1, 0, 0}, conv.PaddingValue())
	assert.Equal(t, PaddingSame, conv.Padding())
}

func TestUnifiedDeviceOptions(t *testing.T) {
	m := &ModelT{
		Version:       200,
		OperatorCodes: []OperatorCodeT{{BuiltinCode: OpENNUnifiedDevice}},
		Subgraphs: []SubGraphT{{Operators: []OperatorT{{
			Options: &UnifiedDeviceOptionsT{Options: []DeviceEntryT{
				{TargetHw: TargetNPU, Metadata: []byte{0xa0}},
				{TargetHw: TargetDSP, Metadata: []byte{0xa1, 0x01, 0x02}},
			}},
		}}}},
	}
	buf := Encode(m)
	require.NoError(t, Verify(buf))

	op := GetRootAsModel(buf).Subgraphs(0).Operators(0)
	tab, ok := op.BuiltinOptions()
	require.True(t, ok)
	u := AsUnifiedDeviceOptions(tab)
	require.Equal(t, 2, u.OptionsLength())
	assert.Equal(t, TargetDSP, u.Options(1).TargetHw())
	assert.Equal(t, []byte{0xa1, 0x01, 0x02}, u.Options(1).Metadata())
}

func TestVerifyRejects(t *testing.T) {
	good := Encode(sampleModel())

	t.Run("identifier", func(t *testing.T) {
		buf := append([]byte(nil), good...)
		copy(buf[4:8], "TFL3")
		assert.Error(t, Verify(buf))
	})

	t.Run("truncated", func(t *testing.T) {
		assert.Error(t, Verify(good[:len(good)/2]))
	})

	t.Run("root offset", func(t *testing.T) {
		buf := append([]byte(nil), good...)
		binary.LittleEndian.PutUint32(buf, uint32(len(buf)+16))
		assert.Error(t, Verify(buf))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Error(t, Verify(nil))
	})
}

func TestOperatorNames(t *testing.T) {
	assert.Equal(t, "CONV_2D", OpConv2D.String())
	assert.Equal(t, "ENN_UNIFIED_DEVICE", OpENNUnifiedDevice.String())
	assert.True(t, BuiltinOperator(5).IsBuiltin())
	assert.False(t, BuiltinOperator(5).Named())
	assert.Equal(t, "BuiltinOperator(300)", BuiltinOperator(300).String())

	assert.Equal(t, "ENN_NPUOptions", OptionsENNNPU.String())
	assert.Equal(t, "Conv2DOptions", OptionsConv2D.String())
	assert.False(t, BuiltinOptions(200).Valid())
}
