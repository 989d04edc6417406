// Package tensor provides the backend tensor objects materialized for compiled operator lists.
package tensor

// DataType is the element type of a tensor as stored in model files.
// Values follow the serialized tensor type enumeration so they can be
// converted without a lookup table.
type DataType int32

// Supported data types for tensors.
const (
	Float32   DataType = 0
	Float16   DataType = 1
	Int32     DataType = 2
	Uint8     DataType = 3
	Int64     DataType = 4
	String    DataType = 5
	Bool      DataType = 6
	Int16     DataType = 7
	Complex64 DataType = 8
	Int8      DataType = 9
	Float64   DataType = 10
)

// Size returns the byte size of one element.
// String and unknown types report 0; their byte size is carried by the record itself.
func (dt DataType) Size() int {
	switch dt {
	case Float64, Int64, Complex64:
		return 8
	case Float32, Int32:
		return 4
	case Float16, Int16:
		return 2
	case Uint8, Int8, Bool:
		return 1
	default:
		return 0
	}
}

// Valid reports whether dt is a known data type.
func (dt DataType) Valid() bool {
	return dt >= Float32 && dt <= Float64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	case Int64:
		return "int64"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Int16:
		return "int16"
	case Complex64:
		return "complex64"
	case Int8:
		return "int8"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Precision is the compute precision a backend tensor is created with.
type Precision int

// Supported compute precisions.
const (
	FP32 Precision = iota
	FP16
	INT8
	UINT8
)

// String returns a human-readable precision name.
func (p Precision) String() string {
	switch p {
	case FP32:
		return "FP32"
	case FP16:
		return "FP16"
	case INT8:
		return "INT8"
	case UINT8:
		return "UINT8"
	default:
		return "Unknown"
	}
}

// ElementSize returns the byte size of one element stored at precision p.
func (p Precision) ElementSize() int {
	switch p {
	case FP32:
		return 4
	case FP16:
		return 2
	default:
		return 1
	}
}
