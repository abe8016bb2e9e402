package pool

import "errors"

var (
	// ErrNoMemory indicates the operating system refused to supply memory for
	// a new page.
	ErrNoMemory = errors.New("pool: no system memory available")

	// ErrPageLimit indicates the free list is empty and the configured
	// maximum page count has already been created.
	ErrPageLimit = errors.New("pool: maximum page count reached")

	// ErrDoubleFree indicates a Free of a block that is already on the free
	// list. Detected only in debug mode.
	ErrDoubleFree = errors.New("pool: block is already free")

	// ErrOutOfRange indicates a reference that does not name a block boundary
	// inside any page owned by the allocator.
	ErrOutOfRange = errors.New("pool: reference out of range")

	// ErrCorruptedBlock indicates a block whose guard padding no longer holds
	// the pad pattern. Detected only in debug mode with PadBytes > 0.
	ErrCorruptedBlock = errors.New("pool: guard padding corrupted")

	// ErrClosed indicates use of a Pool after Close.
	ErrClosed = errors.New("pool: allocator is closed")
)
