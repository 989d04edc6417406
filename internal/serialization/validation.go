package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxRegionCount = 1_000_000 // Maximum number of regions checked in one call
	MaxNameLen     = 4096      // Maximum tensor or binary name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default, recommended for production).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal performs basic validation checks only.
	ValidationNormal
	// ValidationNone skips validation (dangerous! Use only with trusted input).
	ValidationNone
)

// String returns the level name.
func (l ValidationLevel) String() string {
	switch l {
	case ValidationStrict:
		return "strict"
	case ValidationNormal:
		return "normal"
	case ValidationNone:
		return "none"
	default:
		return fmt.Sprintf("ValidationLevel(%d)", int(l))
	}
}

// Region is a named byte range inside a model buffer.
type Region struct {
	Name   string
	Offset int64
	Size   int64
}

// ValidateRegions checks for overlapping regions and out-of-bounds access.
// Malformed files could otherwise alias one payload onto another or read
// past the mapped file.
func ValidateRegions(regions []Region, dataSize int64) error {
	if len(regions) > MaxRegionCount {
		return &ValidationError{
			Type:    "too_many_regions",
			Details: fmt.Sprintf("got %d, max %d", len(regions), MaxRegionCount),
			err:     ErrTooManyRegions,
		}
	}

	// Sort regions by offset for efficient overlap detection.
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, r := range sorted {
		if r.Offset < 0 || r.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Name:    r.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", r.Offset, r.Size),
				err:     ErrNegativeOffset,
			}
		}

		if r.Offset > dataSize-r.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Name:    r.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", r.Offset, r.Size, dataSize),
				err:     ErrOutOfBounds,
			}
		}

		// Empty regions cannot alias anything.
		if r.Size == 0 {
			continue
		}
		for _, next := range sorted[i+1:] {
			if next.Offset >= r.Offset+r.Size {
				break
			}
			if next.Size == 0 {
				continue
			}
			return &ValidationError{
				Type:    "offset_overlap",
				Name:    r.Name,
				Name2:   next.Name,
				err:     ErrRegionOverlap,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
					r.Offset, r.Offset+r.Size, next.Offset, next.Offset+next.Size),
			}
		}
	}

	return nil
}

// ValidateTensorName checks names for path traversal patterns and embedded NULs.
// Binary names end up in dump file names, so the same rules apply to them.
func ValidateTensorName(name string) error {
	if len(name) > MaxNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Name:    name[:64],
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxNameLen),
			err:     ErrNameTooLong,
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Name:    name,
			Details: "contains '..' (path traversal attempt)",
			err:     ErrInvalidName,
		}
	}

	if strings.Contains(name, "\\") || strings.HasPrefix(name, "/") {
		return &ValidationError{
			Type:    "invalid_name",
			Name:    name,
			Details: "contains a path separator",
			err:     ErrInvalidName,
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Name:    name,
			Details: "contains null byte",
			err:     ErrInvalidName,
		}
	}

	return nil
}
