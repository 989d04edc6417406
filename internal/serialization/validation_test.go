package serialization

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateRegions_NoOverlap verifies that valid regions pass validation.
func TestValidateRegions_NoOverlap(t *testing.T) {
	regions := []Region{
		{Name: "npu_bin", Offset: 0, Size: 100},
		{Name: "dsp_bin", Offset: 100, Size: 200},
		{Name: "weights", Offset: 300, Size: 150},
	}

	if err := ValidateRegions(regions, 500); err != nil {
		t.Errorf("Expected no error for valid regions, got: %v", err)
	}
}

// TestValidateRegions_Overlap detects overlapping regions.
func TestValidateRegions_Overlap(t *testing.T) {
	tests := []struct {
		name     string
		regions  []Region
		dataSize int64
		wantErr  bool
	}{
		{
			name: "complete overlap",
			regions: []Region{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 50, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "partial overlap at boundary",
			regions: []Region{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "exact boundary (no overlap)",
			regions: []Region{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 100, Size: 100},
			},
			dataSize: 200,
			wantErr:  false,
		},
		{
			name: "nested after an empty region",
			regions: []Region{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "empty", Offset: 10, Size: 0},
				{Name: "b", Offset: 90, Size: 20},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "empty regions share an offset",
			regions: []Region{
				{Name: "a", Offset: 40, Size: 0},
				{Name: "b", Offset: 40, Size: 0},
			},
			dataSize: 200,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegions(tt.regions, tt.dataSize)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("Expected ValidationError, got %T", err)
				}
				if validationErr.Type != "offset_overlap" {
					t.Errorf("Expected offset_overlap error, got %s", validationErr.Type)
				}
				if !errors.Is(err, ErrRegionOverlap) {
					t.Errorf("Expected error to wrap ErrRegionOverlap")
				}
			}
		})
	}
}

// TestValidateRegions_OutOfBounds detects regions extending beyond the buffer.
func TestValidateRegions_OutOfBounds(t *testing.T) {
	tests := []struct {
		name     string
		region   Region
		dataSize int64
	}{
		{"past end", Region{Name: "bin", Offset: 400, Size: 200}, 500},
		{"starts past end", Region{Name: "bin", Offset: 600, Size: 1}, 500},
		{"overflowing size", Region{Name: "bin", Offset: 10, Size: 1<<63 - 1}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegions([]Region{tt.region}, tt.dataSize)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("Expected ErrOutOfBounds, got: %v", err)
			}
		})
	}
}

// TestValidateRegions_NegativeValues rejects negative offsets and sizes.
func TestValidateRegions_NegativeValues(t *testing.T) {
	for _, r := range []Region{
		{Name: "neg_offset", Offset: -1, Size: 10},
		{Name: "neg_size", Offset: 0, Size: -10},
	} {
		err := ValidateRegions([]Region{r}, 100)
		if !errors.Is(err, ErrNegativeOffset) {
			t.Errorf("%s: expected ErrNegativeOffset, got: %v", r.Name, err)
		}
	}
}

// TestValidateTensorName_PathTraversal rejects malicious names.
func TestValidateTensorName_PathTraversal(t *testing.T) {
	bad := []string{
		"../../../etc/passwd",
		"/absolute/path",
		"weights\\windows",
		"null\x00byte",
		strings.Repeat("a", MaxNameLen+1),
	}

	for _, name := range bad {
		if err := ValidateTensorName(name); err == nil {
			t.Errorf("Expected error for name %q", name)
		}
	}
}

// TestValidateTensorName_ValidNames accepts names real converters produce.
func TestValidateTensorName_ValidNames(t *testing.T) {
	good := []string{
		"input",
		"MobilenetV1/Conv2d_0/weights_quant",
		"NPU_inception_BINARY",
		"Shared_Mem",
		"",
	}

	for _, name := range good {
		if err := ValidateTensorName(name); err != nil {
			t.Errorf("Unexpected error for name %q: %v", name, err)
		}
	}
}

// TestValidationError_ErrorMessages checks message formatting.
func TestValidationError_ErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Type: "too_many_regions", Details: "got 5"}, "too_many_regions: got 5"},
		{&ValidationError{Type: "invalid_name", Name: "x", Details: "bad"}, `invalid_name: "x": bad`},
		{&ValidationError{Type: "offset_overlap", Name: "a", Name2: "b", Details: "d"}, `offset_overlap: "a" and "b": d`},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

// TestValidationLevel_String checks the names used by configuration.
func TestValidationLevel_String(t *testing.T) {
	if ValidationNormal.String() != "normal" || ValidationNone.String() != "none" {
		t.Errorf("unexpected level names %s %s", ValidationNormal, ValidationNone)
	}
}
