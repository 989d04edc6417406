// Package cpu implements the reference CPU library the constructor compiles
// operator lists against.
package cpu

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/born-ml/modelir/internal/dispatch"
	"github.com/born-ml/modelir/internal/parallel"
	"github.com/born-ml/modelir/internal/tensor"
)

// Errors returned by Initialize.
var (
	ErrUnsupportedKernel = errors.New("unsupported kernel")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrBadParameter      = errors.New("bad kernel parameter")
)

// CPUBackend allocates tensors from a storage pool and prepares one plan per
// constructed node.
type CPUBackend struct {
	device tensor.Device
	pool   *tensor.Pool
	cfg    parallel.Config

	mu      sync.Mutex
	kernels map[dispatch.Kernel]int
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithStorage selects the storage class of the backing pool.
func WithStorage(class tensor.StorageClass) Option {
	return func(cpu *CPUBackend) { cpu.pool = tensor.NewPool(class) }
}

// WithWorkers caps the goroutines used for constant conversion.
func WithWorkers(n int) Option {
	return func(cpu *CPUBackend) { cpu.cfg = parallel.WithWorkers(n) }
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		device:  tensor.CPU,
		pool:    tensor.NewPool(tensor.StorageBuffer),
		cfg:     parallel.DefaultConfig(),
		kernels: make(map[dispatch.Kernel]int),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Pool returns the storage pool tensors are allocated from.
func (cpu *CPUBackend) Pool() *tensor.Pool {
	return cpu.pool
}

// New creates an uninitialized tensor for spec.
func (cpu *CPUBackend) New(spec tensor.Spec) (*tensor.RawTensor, error) {
	return cpu.pool.New(spec)
}

// NewConst uploads data for spec. Float32 data requested at FP16 is narrowed
// first so the storage holds the precision the kernels read.
func (cpu *CPUBackend) NewConst(spec tensor.Spec, data []byte) (*tensor.RawTensor, error) {
	if spec.DType == tensor.Float32 && spec.Precision == tensor.FP16 &&
		len(data) == spec.Shape.NumElements()*tensor.Float32.Size() {
		data = toHalf(data, cpu.cfg)
	}
	return cpu.pool.NewConst(spec, data)
}

// Recycle hands the storage of t back to the pool.
func (cpu *CPUBackend) Recycle(t *tensor.RawTensor) {
	cpu.pool.Recycle(t)
}

// Initialize validates n against its kernel and attaches the execution plan.
func (cpu *CPUBackend) Initialize(n *dispatch.Node) error {
	prepare, ok := initializers[n.Kernel]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKernel, n.Kernel)
	}
	p, err := prepare(n)
	if err != nil {
		return fmt.Errorf("%s (%s): %w", n.Name, n.Kernel, err)
	}
	p.Kernel = n.Kernel
	p.Chunks = chunks(p.Work, cpu.cfg)
	n.State = p

	cpu.mu.Lock()
	cpu.kernels[n.Kernel]++
	cpu.mu.Unlock()
	slog.Debug("kernel initialized", "op", n.Name, "id", n.ID, "kernel", n.Kernel,
		"precision", n.Precision, "work", p.Work, "chunks", p.Chunks)
	return nil
}

// Kernels returns how many nodes were initialized per kernel.
func (cpu *CPUBackend) Kernels() map[dispatch.Kernel]int {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()
	return maps.Clone(cpu.kernels)
}

// Plan is the execution state of an initialized node.
type Plan struct {
	Kernel dispatch.Kernel
	Work   int // output elements
	Chunks int // parallel chunks the work is split into
}

func chunks(work int, cfg parallel.Config) int {
	if !cfg.Enabled || work < cfg.MinChunkSize {
		return 1
	}
	size := max((work+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	return (work + size - 1) / size
}
