package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Device represents the execution unit a tensor is created for.
type Device int

// Supported devices.
const (
	CPU Device = iota
	GPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	default:
		return "Unknown"
	}
}

// StorageClass selects how the physical memory behind a tensor is laid out.
type StorageClass int

// Storage classes.
const (
	StorageBuffer StorageClass = iota
	StorageTexture
)

// String returns the storage class name.
func (c StorageClass) String() string {
	if c == StorageTexture {
		return "texture"
	}
	return "buffer"
}

// Storage is a reference-counted block of physical memory.
// Several tensor handles may point at the same Storage over time: once the
// last consumer of a tensor has run, its storage goes back to the Pool and
// can be handed to a tensor materialized later.
type Storage struct {
	data     []byte
	class    StorageClass
	id       int
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

func newStorage(id, size int, class StorageClass) *Storage {
	s := &Storage{
		data:  make([]byte, size),
		class: class,
		id:    id,
	}
	s.refCount.Store(1)
	return s
}

// ID identifies the storage slot inside its pool.
func (s *Storage) ID() int {
	return s.id
}

// Cap returns the capacity of the storage in bytes.
func (s *Storage) Cap() int {
	return len(s.data)
}

// Class returns the storage class.
func (s *Storage) Class() StorageClass {
	return s.class
}

func (s *Storage) addRef() {
	s.refCount.Add(1)
}

// release decrements the reference count and reports whether it reached 0.
func (s *Storage) release() bool {
	return s.refCount.Add(-1) == 0
}

// RawTensor is a backend tensor handle.
// The handle stays valid for the lifetime of the compiled operator list even
// after its storage was recycled for another tensor.
type RawTensor struct {
	storage     *Storage
	name        string
	shape       Shape
	stride      []int
	dtype       DataType
	precision   Precision
	device      Device
	bufferIndex int
	scale       float32
	zeroPoint   int32
	recycled    bool
}

// NewRaw creates a new RawTensor with the given shape and type, backed by
// freshly allocated storage.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()
	return &RawTensor{
		storage:     newStorage(-1, byteSize, StorageBuffer),
		shape:       shape.Clone(),
		stride:      shape.ComputeStrides(),
		dtype:       dtype,
		precision:   precisionOf(dtype),
		device:      device,
		bufferIndex: -1,
		scale:       1,
	}, nil
}

func precisionOf(dtype DataType) Precision {
	switch dtype {
	case Float16:
		return FP16
	case Int8:
		return INT8
	case Uint8:
		return UINT8
	default:
		return FP32
	}
}

// Name returns the tensor name.
func (r *RawTensor) Name() string {
	return r.name
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Precision returns the compute precision of the tensor.
func (r *RawTensor) Precision() Precision {
	return r.precision
}

// Device returns the tensor's device.
func (r *RawTensor) Device() Device {
	return r.device
}

// BufferIndex returns the logical buffer index, or -1 for constants.
func (r *RawTensor) BufferIndex() int {
	return r.bufferIndex
}

// Quantization returns the scale and zero point of the tensor.
func (r *RawTensor) Quantization() (float32, int32) {
	return r.scale, r.zeroPoint
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the memory size in bytes at the tensor's precision.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.precision.ElementSize()
}

// Storage returns the storage currently backing the tensor.
func (r *RawTensor) Storage() *Storage {
	return r.storage
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Once the tensor was recycled the
// bytes may belong to another tensor.
func (r *RawTensor) Data() []byte {
	return r.storage.data[:r.ByteSize()]
}

// Recycled reports whether the tensor's storage was handed back for reuse.
func (r *RawTensor) Recycled() bool {
	return r.recycled
}

// Release drops this handle's reference on its storage.
func (r *RawTensor) Release() {
	if r.storage.release() {
		r.storage.mu.Lock()
		defer r.storage.mu.Unlock()
		r.storage.data = nil
	}
}
