package fbs

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

// Limits applied by New.
const (
	DefaultMaxDepth  = 64
	DefaultMaxTables = 1_000_000
)

// Verification errors.
var (
	ErrOutOfBounds    = errors.New("offset out of bounds")
	ErrMalformed      = errors.New("malformed flatbuffer")
	ErrDepthLimit     = errors.New("nesting depth limit exceeded")
	ErrTableLimit     = errors.New("table count limit exceeded")
	ErrIdentifier     = errors.New("file identifier mismatch")
	ErrBufferTooSmall = errors.New("buffer too small")
)

// Verifier walks one buffer. It is not safe for concurrent use.
type Verifier struct {
	buf       []byte
	depth     int
	tables    int
	maxDepth  int
	maxTables int
}

// New creates a Verifier over buf with the default limits.
func New(buf []byte) *Verifier {
	return &Verifier{
		buf:       buf,
		maxDepth:  DefaultMaxDepth,
		maxTables: DefaultMaxTables,
	}
}

// WithLimits overrides the depth and table count limits.
func (v *Verifier) WithLimits(maxDepth, maxTables int) *Verifier {
	v.maxDepth = maxDepth
	v.maxTables = maxTables
	return v
}

// Bytes returns the verified buffer.
func (v *Verifier) Bytes() []byte {
	return v.buf
}

func (v *Verifier) check(pos, size int) error {
	if pos < 0 || size < 0 || pos > len(v.buf)-size {
		return fmt.Errorf("%w: [%d, +%d) in %d bytes", ErrOutOfBounds, pos, size, len(v.buf))
	}
	return nil
}

// Identifier checks the four byte file identifier that follows the root offset.
func (v *Verifier) Identifier(id string) error {
	if len(id) != 4 {
		return fmt.Errorf("%w: identifier %q must be 4 bytes", ErrMalformed, id)
	}
	if err := v.check(0, 8); err != nil {
		return ErrBufferTooSmall
	}
	if string(v.buf[4:8]) != id {
		return fmt.Errorf("%w: got %q, want %q", ErrIdentifier, v.buf[4:8], id)
	}
	return nil
}

// Root verifies the root table header and returns the root table.
func (v *Verifier) Root() (Table, error) {
	if len(v.buf) < flatbuffers.SizeUOffsetT {
		return Table{}, ErrBufferTooSmall
	}
	pos := int(flatbuffers.GetUOffsetT(v.buf))
	if err := v.table(pos); err != nil {
		return Table{}, fmt.Errorf("root: %w", err)
	}
	return NewTable(v.buf, flatbuffers.UOffsetT(pos)), nil
}

// table checks the table header, its vtable and every field offset.
func (v *Verifier) table(pos int) error {
	v.tables++
	if v.tables > v.maxTables {
		return ErrTableLimit
	}
	if err := v.check(pos, flatbuffers.SizeSOffsetT); err != nil {
		return err
	}
	vt := pos - int(flatbuffers.GetSOffsetT(v.buf[pos:]))
	if err := v.check(vt, 2*flatbuffers.SizeVOffsetT); err != nil {
		return fmt.Errorf("vtable: %w", err)
	}
	vsize := int(flatbuffers.GetVOffsetT(v.buf[vt:]))
	if vsize < 4 || vsize%2 != 0 {
		return fmt.Errorf("%w: vtable size %d", ErrMalformed, vsize)
	}
	if err := v.check(vt, vsize); err != nil {
		return fmt.Errorf("vtable: %w", err)
	}
	tsize := int(flatbuffers.GetVOffsetT(v.buf[vt+2:]))
	if err := v.check(pos, tsize); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	for i := 4; i < vsize; i += 2 {
		off := int(flatbuffers.GetVOffsetT(v.buf[vt+i:]))
		if off != 0 && off >= tsize {
			return fmt.Errorf("%w: field offset %d beyond table size %d", ErrMalformed, off, tsize)
		}
	}
	return nil
}

// Scalar checks that an inline field of size bytes fits the buffer.
// Inline structs are checked the same way.
func (v *Verifier) Scalar(t Table, slot int, size int) error {
	o := t.offset(slot)
	if o == 0 {
		return nil
	}
	return v.check(int(t.tab.Pos)+int(o), size)
}

// vector checks the length prefix and payload of a vector field and returns
// the absolute start of its elements.
func (v *Verifier) vector(t Table, slot int, elemSize int) (start, n int, ok bool, err error) {
	o := t.offset(slot)
	if o == 0 {
		return 0, 0, false, nil
	}
	field := int(t.tab.Pos) + int(o)
	if err := v.check(field, flatbuffers.SizeUOffsetT); err != nil {
		return 0, 0, false, err
	}
	vec := field + int(flatbuffers.GetUOffsetT(v.buf[field:]))
	if err := v.check(vec, flatbuffers.SizeUOffsetT); err != nil {
		return 0, 0, false, err
	}
	n = int(flatbuffers.GetUOffsetT(v.buf[vec:]))
	start = vec + flatbuffers.SizeUOffsetT
	if elemSize > 0 && n > (len(v.buf)-start)/elemSize {
		return 0, 0, false, fmt.Errorf("%w: vector of %d x %d bytes at %d", ErrOutOfBounds, n, elemSize, start)
	}
	return start, n, true, nil
}

// Vector checks a vector of fixed size elements and returns its length.
func (v *Verifier) Vector(t Table, slot int, elemSize int) (int, error) {
	_, n, _, err := v.vector(t, slot, elemSize)
	return n, err
}

// String checks a string field including its zero terminator.
func (v *Verifier) String(t Table, slot int) error {
	start, n, ok, err := v.vector(t, slot, 1)
	if err != nil || !ok {
		return err
	}
	return v.check(start+n, 1)
}

// Required fails when slot is absent from t.
func (v *Verifier) Required(t Table, slot int, name string) error {
	if t.offset(slot) == 0 {
		return fmt.Errorf("%w: required field %s is missing", ErrMalformed, name)
	}
	return nil
}

func (v *Verifier) enter() error {
	v.depth++
	if v.depth > v.maxDepth {
		return ErrDepthLimit
	}
	return nil
}

func (v *Verifier) leave() {
	v.depth--
}

// visit verifies the table at pos and hands it to fn one level deeper.
func (v *Verifier) visit(pos int, fn func(Table) error) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.leave()
	if err := v.table(pos); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return fn(NewTable(v.buf, flatbuffers.UOffsetT(pos)))
}

// Table checks a nested table field and verifies its contents with fn.
func (v *Verifier) Table(t Table, slot int, fn func(Table) error) error {
	o := t.offset(slot)
	if o == 0 {
		return nil
	}
	field := int(t.tab.Pos) + int(o)
	if err := v.check(field, flatbuffers.SizeUOffsetT); err != nil {
		return err
	}
	return v.visit(field+int(flatbuffers.GetUOffsetT(v.buf[field:])), fn)
}

// TableVector checks a vector of tables and verifies each element with fn.
func (v *Verifier) TableVector(t Table, slot int, fn func(i int, t Table) error) error {
	start, n, ok, err := v.vector(t, slot, flatbuffers.SizeUOffsetT)
	if err != nil || !ok {
		return err
	}
	for i := 0; i < n; i++ {
		elem := start + i*flatbuffers.SizeUOffsetT
		pos := elem + int(flatbuffers.GetUOffsetT(v.buf[elem:]))
		err := v.visit(pos, func(tab Table) error {
			if fn == nil {
				return nil
			}
			return fn(i, tab)
		})
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// StringVector checks a vector of strings.
func (v *Verifier) StringVector(t Table, slot int) error {
	start, n, ok, err := v.vector(t, slot, flatbuffers.SizeUOffsetT)
	if err != nil || !ok {
		return err
	}
	for i := 0; i < n; i++ {
		elem := start + i*flatbuffers.SizeUOffsetT
		str := elem + int(flatbuffers.GetUOffsetT(v.buf[elem:]))
		if err := v.check(str, flatbuffers.SizeUOffsetT); err != nil {
			return fmt.Errorf("string %d: %w", i, err)
		}
		l := int(flatbuffers.GetUOffsetT(v.buf[str:]))
		if l > len(v.buf) {
			return fmt.Errorf("string %d: %w", i, ErrOutOfBounds)
		}
		if err := v.check(str+flatbuffers.SizeUOffsetT, l+1); err != nil {
			return fmt.Errorf("string %d: %w", i, err)
		}
	}
	return nil
}

// Union checks a union type tag and its value table. fn receives the tag
// and the value table; it is not called when the tag is zero or the value
// is absent.
func (v *Verifier) Union(t Table, typeSlot, valueSlot int, fn func(tag byte, t Table) error) error {
	if err := v.Scalar(t, typeSlot, 1); err != nil {
		return err
	}
	tag := t.Uint8(typeSlot, 0)
	if tag == 0 {
		return nil
	}
	if t.offset(valueSlot) == 0 {
		return nil
	}
	return v.Table(t, valueSlot, func(tab Table) error {
		if fn == nil {
			return nil
		}
		return fn(tag, tab)
	})
}

// Run calls fn and converts a panic raised by a flatbuffer accessor into an error.
func Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	return fn()
}
