package tensor

import (
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
)

// Spec describes a backend tensor to create.
type Spec struct {
	Name        string
	Shape       Shape
	DType       DataType
	Precision   Precision
	Device      Device
	BufferIndex int
	Scale       float32
	ZeroPoint   int32
}

// ByteSize returns the number of bytes the spec needs at its precision.
func (s Spec) ByteSize() int {
	return s.Shape.NumElements() * s.Precision.ElementSize()
}

// PoolStats counts storage traffic through a Pool.
type PoolStats struct {
	Allocated int // storages created from scratch
	Reused    int // storages handed to a new tensor after being recycled
	Recycled  int // storages returned for reuse
	Bytes     int // total bytes allocated from scratch
}

// Pool hands out storage for intermediate tensors and takes it back once
// the tensor's last consumer has run. Free storages are indexed by capacity
// so a request is served by the smallest free block that fits.
type Pool struct {
	mu     sync.Mutex
	class  StorageClass
	free   *treemap.Map // capacity -> []*Storage
	nextID int
	stats  PoolStats
}

// NewPool creates an empty pool for the given storage class.
func NewPool(class StorageClass) *Pool {
	return &Pool{
		class: class,
		free:  treemap.NewWithIntComparator(),
	}
}

// Class returns the storage class of the pool.
func (p *Pool) Class() StorageClass {
	return p.class
}

// New creates a tensor for spec, reusing recycled storage when a block of
// sufficient capacity is free.
func (p *Pool) New(spec Spec) (*RawTensor, error) {
	if err := spec.Shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for %q: %w", spec.Name, err)
	}

	p.mu.Lock()
	storage := p.acquire(spec.ByteSize())
	p.mu.Unlock()

	return newRawFromSpec(spec, storage), nil
}

// NewConst creates a tensor holding a copy of data on dedicated storage.
// Constant storage never takes part in recycling.
func (p *Pool) NewConst(spec Spec, data []byte) (*RawTensor, error) {
	if err := spec.Shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for %q: %w", spec.Name, err)
	}
	size := max(spec.ByteSize(), len(data))

	p.mu.Lock()
	storage := newStorage(p.nextID, size, p.class)
	p.nextID++
	p.stats.Allocated++
	p.stats.Bytes += size
	p.mu.Unlock()

	copy(storage.data, data)
	t := newRawFromSpec(spec, storage)
	t.bufferIndex = -1
	return t, nil
}

// Recycle marks t's storage as free for a later tensor. The handle itself
// stays valid; recycling the same tensor twice is a no-op.
func (p *Pool) Recycle(t *RawTensor) {
	if t == nil || t.recycled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	t.recycled = true
	size := t.storage.Cap()
	var list []*Storage
	if v, ok := p.free.Get(size); ok {
		list = v.([]*Storage)
	}
	p.free.Put(size, append(list, t.storage))
	p.stats.Recycled++
}

// Free returns the number of storages currently available for reuse.
func (p *Pool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, v := range p.free.Values() {
		n += len(v.([]*Storage))
	}
	return n
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Reset drops every free storage.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free.Clear()
}

// acquire must be called with p.mu held.
func (p *Pool) acquire(size int) *Storage {
	key, value := p.free.Ceiling(size)
	if key != nil {
		list := value.([]*Storage)
		s := list[len(list)-1]
		if len(list) == 1 {
			p.free.Remove(key)
		} else {
			p.free.Put(key, list[:len(list)-1])
		}
		s.addRef()
		p.stats.Reused++
		return s
	}

	s := newStorage(p.nextID, size, p.class)
	p.nextID++
	p.stats.Allocated++
	p.stats.Bytes += size
	return s
}

func newRawFromSpec(spec Spec, storage *Storage) *RawTensor {
	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}
	return &RawTensor{
		storage:     storage,
		name:        spec.Name,
		shape:       spec.Shape.Clone(),
		stride:      spec.Shape.ComputeStrides(),
		dtype:       spec.DType,
		precision:   spec.Precision,
		device:      spec.Device,
		bufferIndex: spec.BufferIndex,
		scale:       scale,
		zeroPoint:   spec.ZeroPoint,
	}
}
