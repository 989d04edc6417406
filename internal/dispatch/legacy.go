package dispatch

import (
	"encoding/binary"
	"math"

	"github.com/born-ml/modelir/internal/schema/nnc"
)

// Legacy option layouts. Test harnesses and old converters hand options over
// as packed little-endian structs instead of flatbuffer tables; a raw option
// whose size matches one of these layouts is read through it.
const (
	softmaxRawSize    = 8  // beta float32, axis int32
	quantizeRawSize   = 16 // type uint32, fractional length int32, scale float32, zero point int32
	inverseCFURawSize = 12 // cols int32, lines int32, interleaved slices int32
)

type softmaxRaw struct {
	beta float32
	axis int32
}

func decodeSoftmaxRaw(b []byte) softmaxRaw {
	return softmaxRaw{
		beta: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		axis: int32(binary.LittleEndian.Uint32(b[4:])),
	}
}

type quantizeRaw struct {
	typ       nnc.QuantType
	fracLen   int32
	scale     float32
	zeroPoint int32
}

func decodeQuantizeRaw(b []byte) quantizeRaw {
	return quantizeRaw{
		typ:       nnc.QuantType(binary.LittleEndian.Uint32(b[0:])),
		fracLen:   int32(binary.LittleEndian.Uint32(b[4:])),
		scale:     math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		zeroPoint: int32(binary.LittleEndian.Uint32(b[12:])),
	}
}

type cfuRaw struct {
	cols, lines, slices int32
}

func decodeCFURaw(b []byte) cfuRaw {
	return cfuRaw{
		cols:   int32(binary.LittleEndian.Uint32(b[0:])),
		lines:  int32(binary.LittleEndian.Uint32(b[4:])),
		slices: int32(binary.LittleEndian.Uint32(b[8:])),
	}
}

// SoftmaxRaw packs a legacy softmax option.
func SoftmaxRaw(beta float32, axis int32) []byte {
	b := make([]byte, softmaxRawSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(beta))
	binary.LittleEndian.PutUint32(b[4:], uint32(axis))
	return b
}

// QuantizeRaw packs a legacy (de)quantize option.
func QuantizeRaw(typ nnc.QuantType, fracLen int32, scale float32, zeroPoint int32) []byte {
	b := make([]byte, quantizeRawSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(typ))
	binary.LittleEndian.PutUint32(b[4:], uint32(fracLen))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(scale))
	binary.LittleEndian.PutUint32(b[12:], uint32(zeroPoint))
	return b
}

// InverseCFURaw packs a legacy inverse CFU option.
func InverseCFURaw(cols, lines, slices int32) []byte {
	b := make([]byte, inverseCFURawSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(cols))
	binary.LittleEndian.PutUint32(b[4:], uint32(lines))
	binary.LittleEndian.PutUint32(b[8:], uint32(slices))
	return b
}
