package tensor

import (
	"testing"
)

func spec(name string, idx int, shape Shape) Spec {
	return Spec{Name: name, Shape: shape, DType: Float32, Precision: FP32, BufferIndex: idx}
}

func TestPoolReusesRecycledStorage(t *testing.T) {
	p := NewPool(StorageBuffer)

	a, err := p.New(spec("a", 1, Shape{1, 16}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.Recycle(a)
	if p.Free() != 1 {
		t.Fatalf("Free = %d, want 1", p.Free())
	}

	// Smaller request fits into the recycled block.
	b, err := p.New(spec("b", 2, Shape{1, 8}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Storage() != a.Storage() {
		t.Error("expected b to reuse a's storage")
	}
	if !a.Recycled() || b.Recycled() {
		t.Error("recycled flags not tracked per handle")
	}
	if a.Name() != "a" || a.BufferIndex() != 1 {
		t.Error("recycled handle must stay valid")
	}

	st := p.Stats()
	if st.Allocated != 1 || st.Reused != 1 || st.Recycled != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestPoolDoesNotReuseTooSmallStorage(t *testing.T) {
	p := NewPool(StorageBuffer)

	a, _ := p.New(spec("a", 1, Shape{1, 4}))
	p.Recycle(a)

	b, _ := p.New(spec("b", 2, Shape{1, 64}))
	if b.Storage() == a.Storage() {
		t.Error("storage of 16 bytes cannot serve 256 bytes")
	}
	if p.Free() != 1 {
		t.Errorf("Free = %d, want 1", p.Free())
	}
}

func TestPoolPicksSmallestFit(t *testing.T) {
	p := NewPool(StorageBuffer)

	big, _ := p.New(spec("big", 1, Shape{1, 1024}))
	small, _ := p.New(spec("small", 2, Shape{1, 32}))
	p.Recycle(big)
	p.Recycle(small)

	c, _ := p.New(spec("c", 3, Shape{1, 16}))
	if c.Storage() != small.Storage() {
		t.Error("expected the smallest fitting block")
	}
}

func TestPoolRecycleTwiceIsNoop(t *testing.T) {
	p := NewPool(StorageBuffer)
	a, _ := p.New(spec("a", 1, Shape{4}))
	p.Recycle(a)
	p.Recycle(a)
	if p.Free() != 1 {
		t.Errorf("Free = %d, want 1", p.Free())
	}
}

func TestPoolConstCopiesData(t *testing.T) {
	p := NewPool(StorageTexture)
	src := []byte{1, 2, 3, 4}
	c, err := p.NewConst(Spec{Name: "w", Shape: Shape{4}, DType: Uint8, Precision: UINT8}, src)
	if err != nil {
		t.Fatalf("NewConst failed: %v", err)
	}
	src[0] = 9
	if c.Data()[0] != 1 {
		t.Error("const data must be copied")
	}
	if c.BufferIndex() != -1 {
		t.Errorf("BufferIndex = %d, want -1", c.BufferIndex())
	}
	if c.Storage().Class() != StorageTexture {
		t.Errorf("Class = %v, want texture", c.Storage().Class())
	}
}
