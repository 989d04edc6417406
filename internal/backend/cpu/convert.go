package cpu

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"

	"github.com/born-ml/modelir/internal/parallel"
)

// toHalf narrows little-endian float32 data to float16.
func toHalf(data []byte, cfg parallel.Config) []byte {
	n := len(data) / 4
	out := make([]byte, n*2)
	parallel.For(n, func(i int) {
		f := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		binary.LittleEndian.PutUint16(out[i*2:], float16.Fromfloat32(f).Bits())
	}, cfg)
	return out
}

// Half decodes little-endian float16 data, as stored by NewConst.
func Half(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32()
	}
	return out
}
