package serialization

import (
	"fmt"
	"os"
)

// MappedFile is a read-only memory mapping of a whole model file.
// Tensor and binary records parsed from the mapping point into it, so the
// mapping must stay open as long as the parsed graph is in use.
type MappedFile struct {
	file     *os.File
	data     []byte // mmap'd region (read-only)
	size     int64
	checksum *[32]byte
	closed   bool
}

// OpenMapped opens path read-only and maps it into memory.
//
// Important: Always call Close() when done to unmap the file (use defer).
func OpenMapped(path string) (*MappedFile, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() == 0 {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	// Memory map the file (platform-specific implementation)
	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	return &MappedFile{
		file: file,
		data: data,
		size: stat.Size(),
	}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (f *MappedFile) Bytes() []byte {
	return f.data
}

// Size returns the file size in bytes.
func (f *MappedFile) Size() int64 {
	return f.size
}

// Fd returns the descriptor of the mapped file, -1 after Close.
func (f *MappedFile) Fd() int {
	if f.closed {
		return -1
	}
	return int(f.file.Fd()) //nolint:gosec // G115: file descriptor fits in int
}

// Checksum returns the SHA-256 of the mapped contents, computed once.
func (f *MappedFile) Checksum() [32]byte {
	if f.checksum == nil {
		sum := ComputeChecksum(f.data)
		f.checksum = &sum
	}
	return *f.checksum
}

// Close unmaps and closes the file.
func (f *MappedFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	if f.data != nil {
		err = munmapFile(f.data)
		f.data = nil
	}

	if closeErr := f.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}
