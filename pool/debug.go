package pool

import "fmt"

// Sentinel patterns stamped into page memory so debug-time inspection can
// tell every region's logical state apart. The values are distinct from one
// another by construction.
const (
	// PatternUnallocated marks page memory never handed out.
	PatternUnallocated byte = 0xAA

	// PatternAllocated is stamped over a block's data region when it is
	// handed to the caller.
	PatternAllocated byte = 0xBB

	// PatternFreed is stamped over a block's data region when it returns to
	// the free list.
	PatternFreed byte = 0xCC

	// PatternPadding fills the guard regions flanking every data region.
	PatternPadding byte = 0xDD

	// PatternAlignment fills leading and inter-slot alignment gaps.
	PatternAlignment byte = 0xEE
)

// stamp overwrites slot's data region with pattern.
func (p *Pool) stamp(pg *page, slot int, pattern byte) {
	off := p.lay.dataOff(slot)
	fill(pg.buf[off:off+p.lay.objectSize], pattern)
}

// paddingCorrupted reports whether any guard byte on either side of slot's
// data region no longer holds the pad pattern.
func (p *Pool) paddingCorrupted(pg *page, slot int) bool {
	pad := p.lay.padBytes
	if pad == 0 {
		return false
	}
	doff := p.lay.dataOff(slot)
	for i := 0; i < pad; i++ {
		if pg.buf[doff-pad+i] != PatternPadding {
			return true
		}
		if pg.buf[doff+p.lay.objectSize+i] != PatternPadding {
			return true
		}
	}
	return false
}

// validateFree runs the debug-mode checks for Free, in order: double-free,
// page containment, slot alignment, guard-padding corruption. The first
// violated check aborts the free with its error and no allocator state has
// been touched.
func (p *Pool) validateFree(ref Ref) error {
	if p.onFreeList(ref) {
		return fmt.Errorf("%w: ref %#x", ErrDoubleFree, uint64(ref))
	}

	pg := p.findPage(ref)
	if pg == nil {
		return fmt.Errorf("%w: ref %#x names no page", ErrOutOfRange, uint64(ref))
	}
	off := ref.dataOff()
	if off < p.lay.firstData || off+p.lay.objectSize > p.lay.pageSize {
		return fmt.Errorf("%w: offset %d outside page slots", ErrOutOfRange, off)
	}

	slot, ok := p.lay.slotIndex(off)
	if !ok {
		return fmt.Errorf("%w: offset %d not on a slot boundary", ErrOutOfRange, off)
	}

	if p.paddingCorrupted(pg, slot) {
		return fmt.Errorf("%w: ref %#x", ErrCorruptedBlock, uint64(ref))
	}
	return nil
}

// ValidatePages scans every block's guard padding and invokes fn for each
// corrupted block, returning the corrupted count. It reports nothing unless
// debug mode is on and the configuration carries guard padding.
func (p *Pool) ValidatePages(fn func(ref Ref, size int)) int {
	if p.closed || !p.debugOn || p.cfg.PassThrough || p.lay.padBytes == 0 {
		return 0
	}

	count := 0
	for pg := p.pages; pg != nil; pg = pg.next {
		for slot := 0; slot < p.lay.perPage; slot++ {
			if p.paddingCorrupted(pg, slot) {
				count++
				if fn != nil {
					fn(makeRef(pg.id, p.lay.dataOff(slot)), p.lay.objectSize)
				}
			}
		}
	}
	return count
}

// SetDebug enables or disables debug validation and sentinel stamping.
func (p *Pool) SetDebug(on bool) {
	p.debugOn = on
	p.cfg.Debug = on
}
