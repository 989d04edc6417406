package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/nnc"
)

// Raw graph container layout:
// [4 bytes: magic]
// [4 bytes: flatbuffer length]
// [4 bytes: DSP payload length]
// [flatbuffer]
// [DSP payload and parameter blobs]

const (
	headerSize = 12

	magicCGO       = 0x0FF1100F
	magicExtension = 0x0FF1110F
	magicUCGO      = 0xFACE4885
)

// Format is the wire-format family of a model buffer.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatNNC
	FormatCGO
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatNNC:
		return "NNC"
	case FormatCGO:
		return "CGO"
	default:
		return "UNKNOWN"
	}
}

// ModelType returns the IR model type produced for f.
func (f Format) ModelType() ir.ModelType {
	switch f {
	case FormatNNC:
		return ir.ModelTypeNNC
	case FormatCGO:
		return ir.ModelTypeCGO
	default:
		return ir.ModelTypeNone
	}
}

// Identify detects the format of buf and returns the byte range [start, end)
// holding its flatbuffer.
func Identify(buf []byte) (f Format, start, end int, err error) {
	if len(buf) <= headerSize {
		return FormatUnknown, 0, 0, fmt.Errorf("%w: %d bytes", ir.ErrFileTooSmall, len(buf))
	}

	if string(buf[4:8]) == nnc.FileIdentifier {
		return FormatNNC, 0, len(buf), nil
	}

	switch magic := binary.LittleEndian.Uint32(buf[0:4]); magic {
	case magicCGO:
		fbsLen := int64(binary.LittleEndian.Uint32(buf[4:8]))
		if fbsLen > int64(len(buf)-headerSize) {
			return FormatUnknown, 0, 0, fmt.Errorf("%w: flatbuffer length %d exceeds %d byte file",
				ir.ErrFileTooSmall, fbsLen, len(buf))
		}
		return FormatCGO, headerSize, headerSize + int(fbsLen), nil
	case magicExtension:
		return FormatUnknown, 0, 0, fmt.Errorf("%w: extension container", ir.ErrUnsupportedFormat)
	case magicUCGO:
		return FormatUnknown, 0, 0, fmt.Errorf("%w: UCGO container", ir.ErrUnsupportedFormat)
	default:
		return FormatUnknown, 0, 0, fmt.Errorf("%w: magic 0x%08X", ir.ErrUnknownFormat, magic)
	}
}
