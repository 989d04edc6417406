package loader_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/loader"
)

func TestLoadAndGenerate(t *testing.T) {
	buf := nnc.Encode(&nnc.ModelT{
		Version:       3,
		OperatorCodes: []nnc.OperatorCodeT{{BuiltinCode: nnc.OpRelu}},
		Subgraphs: []nnc.SubGraphT{{
			Tensors: []nnc.TensorT{
				{Name: "x", Shape: []int32{1, 8}},
				{Name: "y", Shape: []int32{1, 8}},
			},
			Inputs:    []int32{0},
			Outputs:   []int32{1},
			Operators: []nnc.OperatorT{{Inputs: []int32{0}, Outputs: []int32{1}}},
		}},
		Buffers: []nnc.BufferT{{}},
	})

	f, err := loader.Identify(buf)
	require.NoError(t, err)
	assert.Equal(t, loader.FormatNNC, f)

	opts := loader.DefaultOptions()
	opts.Validation = loader.ValidationNormal
	g, err := loader.Load(context.Background(), buf, opts)
	require.NoError(t, err)
	require.Len(t, g.Operators(), 1)
	assert.Equal(t, ir.AccelCPU, g.Operators()[0].Accelerator)

	m, err := loader.Generate(g)
	require.NoError(t, err)
	require.Len(t, m.Lists, 1)
	assert.Equal(t, ir.AccelCPU, m.Lists[0].Accelerator)
	assert.True(t, m.IsGraphOutput(1))
}

func TestIdentifyRejectsShortBuffers(t *testing.T) {
	_, err := loader.Identify([]byte("ENNC"))
	assert.ErrorIs(t, err, ir.ErrFileTooSmall)
}
