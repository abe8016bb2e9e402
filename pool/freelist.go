package pool

import "github.com/joshuapare/poolkit/internal/format"

// The free list is a LIFO singly-linked list whose nodes are the free blocks
// themselves: a free block's first eight data bytes hold the Ref of the next
// free block, NilRef terminating the list. No node storage exists outside
// the pages.

// nextFree reads the link stored in ref's data region.
func (p *Pool) nextFree(ref Ref) Ref {
	pg := p.findPage(ref)
	return Ref(format.ReadU64(pg.buf, ref.dataOff()))
}

// setNextFree writes the link stored in ref's data region.
func (p *Pool) setNextFree(ref, next Ref) {
	pg := p.findPage(ref)
	format.PutU64(pg.buf, ref.dataOff(), uint64(next))
}

// takeFree pops the head of the free list. The caller must have ensured the
// list is non-empty; the allocation path creates a page first otherwise.
func (p *Pool) takeFree() Ref {
	ref := p.freeHead
	p.freeHead = p.nextFree(ref)
	return ref
}

// returnFree pushes ref onto the head of the free list. The link write into
// the block's data region happens here, after any sentinel stamping and
// header update, so nothing overwrites it afterwards.
func (p *Pool) returnFree(ref Ref) {
	p.setNextFree(ref, p.freeHead)
	p.freeHead = ref
}

// onFreeList reports whether ref is currently threaded on the free list.
// Linear in the free-list length.
func (p *Pool) onFreeList(ref Ref) bool {
	for cur := p.freeHead; cur != NilRef; cur = p.nextFree(cur) {
		if cur == ref {
			return true
		}
	}
	return false
}

// FreeCount walks the free list and returns its length. It exists for
// diagnostics and tests; Stats.FreeObjects is the O(1) counter and the two
// agree whenever the allocator is consistent.
func (p *Pool) FreeCount() int {
	n := 0
	for cur := p.freeHead; cur != NilRef; cur = p.nextFree(cur) {
		n++
	}
	return n
}
