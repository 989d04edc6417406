package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrRegionOverlap    = errors.New("regions overlap")
	ErrOutOfBounds      = errors.New("region extends beyond buffer")
	ErrNegativeOffset   = errors.New("negative offset or size")
	ErrTooManyRegions   = errors.New("too many regions")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidName      = errors.New("invalid name")
	ErrEmptyFile        = errors.New("file is empty")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Name    string // Primary region or tensor name involved
	Name2   string // Secondary name (for overlap errors)
	Details string // Additional details
	err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Name2 != "" {
		return fmt.Sprintf("%s: %q and %q: %s", e.Type, e.Name, e.Name2, e.Details)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %q: %s", e.Type, e.Name, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap returns the sentinel error matching Type.
func (e *ValidationError) Unwrap() error {
	return e.err
}
