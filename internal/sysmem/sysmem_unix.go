//go:build unix

package sysmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Alloc reserves size bytes of zeroed memory via an anonymous private mmap.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sysmem: invalid allocation size %d", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrNoMemory, size, err)
	}
	return b, nil
}

// Release returns a buffer obtained from Alloc to the operating system.
// The buffer must not be used after Release.
func Release(b []byte) error {
	if b == nil {
		return nil
	}
	return unix.Munmap(b)
}
