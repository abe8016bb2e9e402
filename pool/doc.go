// Package pool implements a fixed-size-block memory pool allocator.
//
// # Overview
//
// A Pool serves many allocate/free requests for objects of one declared byte
// size by carving them out of large pre-reserved pages instead of touching
// the general-purpose heap per object. Pages are raw byte arenas obtained
// from the operating system (anonymous mmap on unix builds); every offset
// into a page is computed once, at construction, by the layout calculator.
//
// # Page layout
//
// Each page is one contiguous buffer:
//
//	[page link word][left alignment][slot 0][slot 1]...[slot N-1]
//
// and each slot is:
//
//	[header][guard pad][object data][guard pad][inter-slot alignment]
//
// The last slot carries no trailing inter-slot alignment. The address handed
// to a caller always refers to the start of the object data region, packed
// into a Ref (page id + byte offset). While a block is free, its first eight
// data bytes hold the Ref of the next free block, forming a LIFO intrusive
// free list threaded through the pages themselves.
//
// # Header variants
//
// Per-block metadata is selected once per Pool: none, basic (allocation
// ordinal + in-use flag), extended (caller bytes + reuse counter + ordinal +
// flag), or external (an out-of-band record holding a label, the ordinal,
// and the flag). See HeaderKind.
//
// # Debug mode
//
// With debug enabled the pool stamps sentinel byte patterns over unallocated,
// allocated, and freed object memory, and validates every Free against
// double-free, range, alignment, and guard-padding corruption before mutating
// any state. Disabling debug trades that detection for speed.
//
// # Usage
//
//	p, err := pool.New(64, pool.Config{
//		ObjectsPerPage: 128,
//		PadBytes:       4,
//		Header:         pool.Header(pool.HeaderBasic, 0),
//		Debug:          true,
//	})
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	ref, buf, err := p.Allocate("request")
//	if err != nil {
//		return err
//	}
//	copy(buf, payload)
//	// ...
//	err = p.Free(ref)
//
// # Thread safety
//
// Pool instances are not thread-safe. Callers must serialize access
// externally; no operation suspends or blocks.
package pool
