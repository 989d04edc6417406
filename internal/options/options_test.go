package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/ir"
)

func TestDecodeNPU(t *testing.T) {
	blob, err := Encode(map[string]string{
		"NAME":         "inception_npu",
		"BINDING_IFM":  "true",
		"BINDING_OFM":  "false",
		"HW_CFU":       "yes",
		"OPT_LEVEL":    "O2",
		"QUANT_MODE":   "bit_width_a=8 bit_width_w=8 bit_width_bias=48 bit_width_NFU=16 bit_width_c=8",
		"SOC_TYPE":     "Pamir",
		"NPUC_VERSION": "v1.6.6.i",
		"FUTURE_KEY":   "ignored",
	})
	require.NoError(t, err)

	o, err := DecodeNPU(blob)
	require.NoError(t, err)
	assert.Equal(t, "inception_npu", o.Name)
	assert.True(t, o.BindingIFM)
	assert.False(t, o.BindingOFM)
	assert.True(t, o.HWCFU, "any value but false enables a flag")
	assert.Equal(t, int32(2), o.OptLevel)
	assert.Equal(t, ir.QuantizationMode{BitWidthA: 8, BitWidthW: 8, BitWidthBias: 48, BitWidthNFU: 16, BitWidthC: 8}, o.QuantMode)
	assert.Equal(t, "Pamir", o.SoCType)
	assert.Equal(t, "v1.6.6.i", o.NPUCVersion)
	assert.False(t, o.UseSharedMem)
}

func TestDecodeNPUDefaults(t *testing.T) {
	o, err := DecodeNPU(nil)
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultNPUOptions(), o)
}

func TestDecodeDSP(t *testing.T) {
	blob, err := Encode(map[string]string{"ASYNC_EXEC": "true", "NAME": "dsp_bin"})
	require.NoError(t, err)

	o, err := DecodeDSP(blob)
	require.NoError(t, err)
	assert.True(t, o.AsyncExec)
	assert.False(t, o.BindingIFM)
	assert.Equal(t, "dsp_bin", o.Name)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeDSP([]byte{0xff, 0x00, 0x13})
	assert.Error(t, err)
}

func TestParseOptLevel(t *testing.T) {
	assert.Equal(t, int32(1), ParseOptLevel("O1"))
	assert.Equal(t, int32(3), ParseOptLevel("O3fast"))
	assert.Equal(t, int32(0), ParseOptLevel("O"))
	assert.Equal(t, ir.Undefined, ParseOptLevel("fast"))
}

func TestParseQuantModeNeedsFiveFields(t *testing.T) {
	assert.Equal(t, ir.QuantizationMode{}, ParseQuantMode("bit_width_a=8 bit_width_w=8"))
	q := ParseQuantMode("a=4 w=4 bias=32 nfu=16 c=x")
	assert.Equal(t, uint32(4), q.BitWidthA)
	assert.Equal(t, uint32(32), q.BitWidthBias)
	assert.Equal(t, uint32(0), q.BitWidthC)
}
