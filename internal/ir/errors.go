package ir

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrVerificationFailed  = errors.New("model verification failed")
	ErrNotVerified         = errors.New("model is not verified")
	ErrStageOrder          = errors.New("parse stage called out of order")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrMissingOption       = errors.New("missing operator option")
	ErrAllocationFailed    = errors.New("tensor allocation failed")
	ErrInvalidShape        = errors.New("invalid tensor shape")
	ErrUnknownFormat       = errors.New("unknown model format")
	ErrUnsupportedFormat   = errors.New("unsupported model format")
	ErrFileTooSmall        = errors.New("model buffer too small")
	ErrFrozen              = errors.New("store is frozen")
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateIndex      = errors.New("duplicate record index")
)

// ValidationError provides detailed information about a referential check failure.
type ValidationError struct {
	Type    string // Type of error (e.g., "dangling_input", "adjacency")
	Record  string // Record kind involved ("operator", "tensor", ...)
	Index   int32  // Index of the offending record
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("%s: %s[%d]: %s", e.Type, e.Record, e.Index, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
