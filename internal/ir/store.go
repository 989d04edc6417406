package ir

// Store is the append-only record store of one model.
// Index assignment follows append order, so a Store must have a single writer.
type Store struct {
	tensors         []*Tensor
	tensorPos       map[int32]int
	operators       []*Operator
	binaries        []*Binary
	binaryPos       map[int32]int
	graphInfos      []*GraphInfo
	operatorOptions []*OperatorOptions
	npuOptions      []*NPUOptions
	dspOptions      []*DSPOptions
	modelOption     *ModelOption
	attribute       *Attribute
	frozen          bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tensorPos: make(map[int32]int),
		binaryPos: make(map[int32]int),
	}
}

// Tensors returns tensor records in append order.
func (s *Store) Tensors() []*Tensor {
	return s.tensors
}

// Tensor looks up a tensor by its record index.
func (s *Store) Tensor(index int32) (*Tensor, bool) {
	pos, ok := s.tensorPos[index]
	if !ok {
		return nil, false
	}
	return s.tensors[pos], true
}

// Operators returns operator records in append order.
// Positions in this slice are the operator indexes used by tensor adjacency.
func (s *Store) Operators() []*Operator {
	return s.operators
}

// Operator returns the operator at position pos.
func (s *Store) Operator(pos int) (*Operator, bool) {
	if pos < 0 || pos >= len(s.operators) {
		return nil, false
	}
	return s.operators[pos], true
}

// Binaries returns binary records in append order.
func (s *Store) Binaries() []*Binary {
	return s.binaries
}

// Binary looks up a binary by its record index.
// Binary indexes need not follow append order.
func (s *Store) Binary(index int32) (*Binary, bool) {
	pos, ok := s.binaryPos[index]
	if !ok {
		return nil, false
	}
	return s.binaries[pos], true
}

// GraphInfos returns graph info records in append order.
func (s *Store) GraphInfos() []*GraphInfo {
	return s.graphInfos
}

// OperatorOptions returns option records in append order.
func (s *Store) OperatorOptions() []*OperatorOptions {
	return s.operatorOptions
}

// NPUOptions returns NPU option records in append order.
func (s *Store) NPUOptions() []*NPUOptions {
	return s.npuOptions
}

// DSPOptions returns DSP option records in append order.
func (s *Store) DSPOptions() []*DSPOptions {
	return s.dspOptions
}

// ModelOption returns the model option record, or nil if none was parsed.
func (s *Store) ModelOption() *ModelOption {
	return s.modelOption
}

// Attribute returns the attribute record, or nil if none was parsed.
func (s *Store) Attribute() *Attribute {
	return s.attribute
}

// Frozen reports whether the store no longer accepts mutations.
func (s *Store) Frozen() bool {
	return s.frozen
}
