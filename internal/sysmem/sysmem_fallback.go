//go:build !unix

package sysmem

import "fmt"

// Alloc reserves size bytes of zeroed memory from the Go heap.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sysmem: invalid allocation size %d", size)
	}
	return make([]byte, size), nil
}

// Release is a no-op on platforms without mmap-backed pages; the garbage
// collector reclaims the buffer once the caller drops it.
func Release(b []byte) error {
	return nil
}
