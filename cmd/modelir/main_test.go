package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/nnc"
	"github.com/born-ml/modelir/internal/serialization"
)

// writeModel writes logistic -> reshape -> softmax as an NNC file.
func writeModel(t *testing.T) string {
	t.Helper()
	m := &nnc.ModelT{
		Version: 200,
		OperatorCodes: []nnc.OperatorCodeT{
			{BuiltinCode: nnc.OpLogistic},
			{BuiltinCode: nnc.OpReshape},
			{BuiltinCode: nnc.OpSoftmax},
		},
		Subgraphs: []nnc.SubGraphT{{
			Name: "main",
			Tensors: []nnc.TensorT{
				{Name: "input", Shape: []int32{1, 4}},
				{Name: "sigmoid", Shape: []int32{1, 4}},
				{Name: "flat", Shape: []int32{4}},
				{Name: "probs", Shape: []int32{4}},
			},
			Inputs:  []int32{0},
			Outputs: []int32{3},
			Operators: []nnc.OperatorT{
				{OpcodeIndex: 0, Inputs: []int32{0}, Outputs: []int32{1}, TargetHw: nnc.TargetCPU},
				{OpcodeIndex: 1, Inputs: []int32{1}, Outputs: []int32{2}, TargetHw: nnc.TargetCPU},
				{
					OpcodeIndex: 2,
					Inputs:      []int32{2},
					Outputs:     []int32{3},
					Options:     &nnc.SoftmaxOptionsT{Beta: 1, Axis: -1},
					TargetHw:    nnc.TargetCPU,
				},
			},
		}},
		Buffers:    []nnc.BufferT{{}},
		Compatible: []int32{int32(ir.LegacyTensorflowNHWC)},
	}

	path := filepath.Join(t.TempDir(), "model.nnc")
	require.NoError(t, os.WriteFile(path, nnc.Encode(m), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	path := writeModel(t)

	out, err := run(t, "inspect", "--tensors", path)
	require.NoError(t, err)
	assert.Contains(t, out, "NNC")
	assert.Contains(t, out, "LOGISTIC")
	assert.Contains(t, out, "RESHAPE")
	assert.Contains(t, out, "SoftmaxOptions")
	assert.Contains(t, out, "probs")
}

func TestInspectValidationFlag(t *testing.T) {
	path := writeModel(t)

	_, err := run(t, "inspect", "--validation", "normal", path)
	require.NoError(t, err)

	_, err = run(t, "inspect", "--validation", "paranoid", path)
	require.ErrorContains(t, err, "invalid validation level")
}

func TestInspectChecksumFlag(t *testing.T) {
	path := writeModel(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)

	_, err = run(t, "inspect", "--sha256", hex.EncodeToString(sum[:]), path)
	require.NoError(t, err)

	sum[0] ^= 0xFF
	_, err = run(t, "compile", "--sha256", hex.EncodeToString(sum[:]), path)
	require.ErrorIs(t, err, serialization.ErrChecksumMismatch)

	_, err = run(t, "inspect", "--sha256", "abc", path)
	require.ErrorContains(t, err, "invalid checksum")
}

func TestInspectMissingFile(t *testing.T) {
	_, err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.nnc"))
	require.Error(t, err)
}

func TestCompile(t *testing.T) {
	path := writeModel(t)

	out, err := run(t, "compile", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Activation")
	assert.Contains(t, out, "Reshape")
	assert.Contains(t, out, "Softmax")
	assert.Contains(t, out, "FP32")
	assert.Contains(t, out, "materialized")
	assert.NotContains(t, out, "Skipped")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "modelir "+version+"\n", out)
}

func TestEnv(t *testing.T) {
	out, err := run(t, "env")
	require.NoError(t, err)
	assert.Contains(t, out, "MODELIR_VALIDATION")
	assert.Contains(t, out, "MODELIR_WORKERS")
}
