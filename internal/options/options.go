// Package options decodes the device option maps carried by NPU and DSP
// operators. A map is a CBOR-encoded string-keyed map; values are read as
// strings. Unknown keys are logged and ignored so newer compilers can add keys.
package options

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/born-ml/modelir/internal/ir"
)

// npuMap is the raw key layout of an NPU option map.
type npuMap struct {
	BindingIFM      *string `mapstructure:"BINDING_IFM"`
	BindingOFM      *string `mapstructure:"BINDING_OFM"`
	CompiledCommand *string `mapstructure:"COMPILED_COMMAND"`
	Framework       *string `mapstructure:"FRAMEWORK"`
	HWCFU           *string `mapstructure:"HW_CFU"`
	Model           *string `mapstructure:"MODEL"`
	Name            *string `mapstructure:"NAME"`
	NCPVersion      *string `mapstructure:"NCP_VERSION"`
	NPUCVersion     *string `mapstructure:"NPUC_VERSION"`
	ONNX            *string `mapstructure:"ONNX"`
	OptLevel        *string `mapstructure:"OPT_LEVEL"`
	Protobin        *string `mapstructure:"PROTOBIN"`
	Prototxt        *string `mapstructure:"PROTOTXT"`
	QuantBW         *string `mapstructure:"QUANT_BW"`
	QuantDev        *string `mapstructure:"QUANT_DEV"`
	QuantMode       *string `mapstructure:"QUANT_MODE"`
	SoCType         *string `mapstructure:"SOC_TYPE"`
}

// dspMap is the raw key layout of a DSP option map.
type dspMap struct {
	AsyncExec  *string `mapstructure:"ASYNC_EXEC"`
	BindingIFM *string `mapstructure:"BINDING_IFM"`
	BindingOFM *string `mapstructure:"BINDING_OFM"`
	Name       *string `mapstructure:"NAME"`
}

// decode unmarshals blob into out and returns the keys out has no field for.
func decode(blob []byte, out any) ([]string, error) {
	var raw map[string]interface{}
	if len(blob) > 0 {
		if err := cbor.Unmarshal(blob, &raw); err != nil {
			return nil, fmt.Errorf("parsing option map failed with %w", err)
		}
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding option map: %w", err)
	}
	sort.Strings(md.Unused)
	return md.Unused, nil
}

func warnUnknown(device string, keys []string) {
	for _, k := range keys {
		slog.Warn("unknown metadata key", "device", device, "key", k)
	}
}

// flag reads a boolean option: anything but "false" is true.
func flag(v *string, dst *bool) {
	if v != nil {
		*dst = *v != "false"
	}
}

func str(v *string, dst *string) {
	if v != nil {
		*dst = *v
	}
}

// DecodeNPU decodes an NPU option map. Absent keys keep the values of
// ir.DefaultNPUOptions.
func DecodeNPU(blob []byte) (ir.NPUOptions, error) {
	var m npuMap
	unknown, err := decode(blob, &m)
	if err != nil {
		return ir.NPUOptions{}, err
	}
	warnUnknown("NPU", unknown)

	o := ir.DefaultNPUOptions()
	flag(m.BindingIFM, &o.BindingIFM)
	flag(m.BindingOFM, &o.BindingOFM)
	flag(m.HWCFU, &o.HWCFU)
	str(m.CompiledCommand, &o.CompiledCommand)
	str(m.Framework, &o.Framework)
	str(m.Model, &o.Model)
	str(m.Name, &o.Name)
	str(m.NCPVersion, &o.NCPVersion)
	str(m.NPUCVersion, &o.NPUCVersion)
	str(m.ONNX, &o.ONNXName)
	str(m.Protobin, &o.Protobin)
	str(m.Prototxt, &o.Prototxt)
	str(m.QuantBW, &o.QuantBW)
	str(m.QuantDev, &o.QuantDev)
	str(m.SoCType, &o.SoCType)
	if m.OptLevel != nil {
		o.OptLevel = ParseOptLevel(*m.OptLevel)
	}
	if m.QuantMode != nil {
		o.QuantMode = ParseQuantMode(*m.QuantMode)
	}
	return o, nil
}

// DecodeDSP decodes a DSP option map. Absent keys keep the values of
// ir.DefaultDSPOptions.
func DecodeDSP(blob []byte) (ir.DSPOptions, error) {
	var m dspMap
	unknown, err := decode(blob, &m)
	if err != nil {
		return ir.DSPOptions{}, err
	}
	warnUnknown("DSP", unknown)

	o := ir.DefaultDSPOptions()
	flag(m.AsyncExec, &o.AsyncExec)
	flag(m.BindingIFM, &o.BindingIFM)
	flag(m.BindingOFM, &o.BindingOFM)
	str(m.Name, &o.Name)
	return o, nil
}

// Encode writes an option map in the encoding DecodeNPU and DecodeDSP read.
// Keys are written in sorted order.
func Encode(m map[string]string) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(m)
}

// ParseOptLevel parses an optimization level of the form "O<n>".
// Any other form yields ir.Undefined.
func ParseOptLevel(s string) int32 {
	if !strings.HasPrefix(s, "O") {
		return ir.Undefined
	}
	return int32(atoi(s[1:]))
}

// atoi reads the leading decimal digits of s, 0 if there are none.
func atoi(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// ParseQuantMode parses "bit_width_a=8 bit_width_w=8 bit_width_bias=48
// bit_width_NFU=16 bit_width_c=8". Fields are positional; a string that
// does not have exactly five fields leaves the mode zero.
func ParseQuantMode(s string) ir.QuantizationMode {
	var q ir.QuantizationMode
	fields := strings.Split(s, " ")
	if len(fields) != 5 {
		return q
	}
	dst := []*uint32{&q.BitWidthA, &q.BitWidthW, &q.BitWidthBias, &q.BitWidthNFU, &q.BitWidthC}
	for i, f := range fields {
		kv := strings.Split(f, "=")
		if len(kv) != 2 {
			continue
		}
		*dst[i] = uint32(atoi(kv[1]))
	}
	return q
}
