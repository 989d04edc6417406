package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/modelir/internal/envconfig"
	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/schema/cgo"
	"github.com/born-ml/modelir/internal/serialization"
)

// Options configures model loading.
type Options struct {
	// Validation selects the checks run before the graph is built.
	Validation serialization.ValidationLevel

	// Workers bounds the goroutines used by validation.
	Workers int

	// Params are the CGO side parameters. Derived from the file when nil.
	Params []SideParam

	// File is the whole model file that side parameters and binaries
	// address. Defaults to the flatbuffer itself.
	File []byte

	// FD is the descriptor File is mapped from, -1 for in-memory buffers.
	// It is ignored, and reported as -1, when File is nil.
	FD int

	// Checksum is the SHA-256 of File, computed by Load when zero.
	Checksum [32]byte

	// Expected, when set, is the SHA-256 File must hash to.
	Expected [32]byte
}

// DefaultOptions returns the options taken from the environment.
func DefaultOptions() Options {
	return Options{
		Validation: envconfig.Validation,
		Workers:    envconfig.Workers,
		FD:         -1,
	}
}

// SideParam is one out-of-line blob handed to the CGO strategy. Data holds
// the backing buffer and Offset the position of the blob inside it; FD is
// the device-mappable handle of that buffer or -1.
type SideParam struct {
	Name   string
	Data   []byte
	FD     int
	Offset int64
	Size   int
}

// Bytes returns the blob when it is addressable in memory.
func (p SideParam) Bytes() []byte {
	end := p.Offset + int64(p.Size)
	if p.Data == nil || p.Offset < 0 || end > int64(len(p.Data)) {
		return nil
	}
	return p.Data[p.Offset:end]
}

// SideParams materializes the blobs listed by cgo.ParseParameters. Blobs
// stored in the file alias it; other sized blobs get fresh zeroed memory and
// zero-sized ones stay empty.
func SideParams(file []byte, fd int, list []cgo.Parameter) []SideParam {
	out := make([]SideParam, len(list))
	for i, p := range list {
		sp := SideParam{Name: p.Name, FD: -1, Size: int(p.Size)}
		switch {
		case p.LoadFromFile:
			sp.Data = file
			sp.FD = fd
			sp.Offset = int64(p.Offset)
		case p.Size > 0:
			sp.Data = make([]byte, p.Size)
		}
		out[i] = sp
	}
	return out
}

// Load identifies buf, parses it and returns the built graph.
func Load(ctx context.Context, buf []byte, opts ...Options) (*ir.Graph, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	f, start, end, err := Identify(buf)
	if err != nil {
		return nil, err
	}
	if opt.File == nil {
		// buf is not backed by a descriptor
		opt.File = buf
		opt.FD = -1
	}
	if opt.Checksum == ([32]byte{}) {
		opt.Checksum = serialization.ComputeChecksum(opt.File)
	}
	if opt.Expected != ([32]byte{}) {
		if err := serialization.ValidateChecksum(opt.Checksum, opt.Expected); err != nil {
			return nil, err
		}
	}
	fb := buf[start:end]

	if f == FormatCGO && opt.Params == nil {
		list, err := cgo.ParseParameters(fb)
		switch {
		case err == nil:
			opt.Params = SideParams(opt.File, opt.FD, list)
		case errors.Is(err, cgo.ErrNoTargetInfo), errors.Is(err, cgo.ErrLegacyTargetInfo):
			slog.Warn("no side parameters for raw graph", "error", err)
		default:
			return nil, fmt.Errorf("%w: %w", ir.ErrVerificationFailed, err)
		}
	}

	s, err := New(f, fb, opt)
	if err != nil {
		return nil, err
	}
	g, err := Run(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", f, err)
	}
	slog.Info("model loaded", "format", f, "id", g.ID, "fingerprint", serialization.Fingerprint(g.Checksum),
		"operators", len(g.Operators()), "tensors", len(g.Tensors()), "binaries", len(g.Binaries()))
	return g, nil
}

// LoadFile memory-maps path and loads it. The returned graph references the
// mapping, so close the returned file only after the graph is released.
func LoadFile(ctx context.Context, path string, opts ...Options) (*ir.Graph, *serialization.MappedFile, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	file, err := serialization.OpenMapped(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map model: %w", err)
	}
	opt.File = file.Bytes()
	opt.FD = file.Fd()
	opt.Checksum = file.Checksum()

	g, err := Load(ctx, file.Bytes(), opt)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return g, file, nil
}
