package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeChecksum returns the SHA-256 of a model buffer.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ParseChecksum decodes a hex SHA-256 digest, as printed by sha256sum.
func ParseChecksum(s string) ([32]byte, error) {
	var sum [32]byte
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return sum, fmt.Errorf("invalid checksum %q: %w", s, err)
	}
	if len(b) != len(sum) {
		return sum, fmt.Errorf("invalid checksum %q: want %d bytes, got %d", s, len(sum), len(b))
	}
	copy(sum[:], b)
	return sum, nil
}

// ValidateChecksum compares the checksum of a loaded buffer against the one
// the caller expects.
func ValidateChecksum(computed, expected [32]byte) error {
	if computed != expected {
		return fmt.Errorf("%w: have %s, want %s", ErrChecksumMismatch, Fingerprint(computed), Fingerprint(expected))
	}
	return nil
}

// Fingerprint returns the short hex form of a checksum used in logs.
func Fingerprint(sum [32]byte) string {
	return hex.EncodeToString(sum[:8])
}
