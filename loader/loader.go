// Package loader provides model loading for the modelir library.
//
// This package wraps the internal parser and component generator and exports
// a clean public API for turning NNC and CGO model files into graphs and
// compilable operator lists.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/modelir/loader"
//	)
//
//	// Map and parse a model file, detecting its format
//	g, file, err := loader.LoadFile(ctx, "path/to/model.nnc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	fmt.Printf("Format: %s\n", g.ModelType())
//	fmt.Printf("Operators: %d\n", len(g.Operators()))
//
//	// Split the graph into operator lists per accelerator
//	m, err := loader.Generate(g)
//	if err != nil {
//	    log.Fatal(err)
//	}
package loader

import (
	"context"

	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/internal/model"
	"github.com/born-ml/modelir/internal/parser"
	"github.com/born-ml/modelir/internal/serialization"
)

// Format is the wire-format family of a model buffer.
type Format = parser.Format

// Supported formats.
const (
	FormatUnknown Format = parser.FormatUnknown
	FormatNNC     Format = parser.FormatNNC
	FormatCGO     Format = parser.FormatCGO
)

// ValidationLevel controls which checks run before a graph is built.
type ValidationLevel = serialization.ValidationLevel

// Validation levels.
const (
	ValidationStrict ValidationLevel = serialization.ValidationStrict
	ValidationNormal ValidationLevel = serialization.ValidationNormal
	ValidationNone   ValidationLevel = serialization.ValidationNone
)

// Options configures loading. See DefaultOptions.
type Options = parser.Options

// Graph is the frozen IR of one loaded model.
type Graph = ir.Graph

// Model is the component view of a graph, split into operator lists.
type Model = model.Model

// OperatorList is a run of operators sharing one accelerator; it is the unit
// of compilation.
type OperatorList = model.OperatorList

// MappedFile is a read-only memory mapping of a model file.
type MappedFile = serialization.MappedFile

// DefaultOptions returns the options taken from the MODELIR_* environment.
func DefaultOptions() Options {
	return parser.DefaultOptions()
}

// Identify detects the format of buf.
func Identify(buf []byte) (Format, error) {
	f, _, _, err := parser.Identify(buf)
	return f, err
}

// Load parses a model held in memory.
//
// Example:
//
//	opts := loader.DefaultOptions()
//	opts.Validation = loader.ValidationNormal
//	g, err := loader.Load(ctx, buf, opts)
func Load(ctx context.Context, buf []byte, opts ...Options) (*Graph, error) {
	return parser.Load(ctx, buf, opts...)
}

// LoadFile memory-maps path and parses it. The graph references the mapping:
// close the file only once the graph and every model generated from it are
// no longer used.
func LoadFile(ctx context.Context, path string, opts ...Options) (*Graph, *MappedFile, error) {
	return parser.LoadFile(ctx, path, opts...)
}

// Generate builds the component model of g and splits it into operator
// lists.
func Generate(g *Graph) (*Model, error) {
	return model.Generate(g)
}
