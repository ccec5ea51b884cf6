// Package region reserves the single contiguous byte range the flat
// storage engine carves into chunks. The mapping is anonymous and
// private: there is no backing file and nothing is ever flushed to disk.
package region

import "fmt"

// Region is a fixed-size, zero-initialized byte range reserved once at
// startup. Pages are committed by the OS lazily as they are first
// touched; the region itself never grows or shrinks for the lifetime of
// the process.
type Region struct {
	data    []byte
	release func() error
}

// New reserves size bytes of anonymous, private, read-write memory.
// size must be positive. New does not align the range to any chunk
// size, and the engine does not align it either: it addresses chunks by
// offset from the first byte of the range.
func New(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region: size must be positive, got %d", size)
	}
	data, release, err := mapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("region: map failed: %w", err)
	}
	return &Region{data: data, release: release}, nil
}

// Bytes returns the full backing slice. Callers index into it themselves;
// the region does not track usage.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the total reserved size in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Close releases the mapping. The region must not be used afterwards.
func (r *Region) Close() error {
	if r.release == nil {
		return nil
	}
	err := r.release()
	r.release = nil
	return err
}
