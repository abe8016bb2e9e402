package pool

import (
	"fmt"

	"github.com/joshuapare/poolkit/internal/format"
	"github.com/joshuapare/poolkit/internal/sysmem"
)

// page is one contiguous raw memory reservation subdivided into fixed-size
// slots. Pages form a singly-linked list with head insertion; insertion
// order carries no meaning.
type page struct {
	id   uint32
	buf  []byte
	next *page
}

// createPage reserves a new page from the system, stamps its layout
// patterns, threads every slot onto the free list, and links the page at
// the head of the page list.
func (p *Pool) createPage() error {
	buf, err := sysmem.Alloc(p.lay.pageSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoMemory, err)
	}

	pg := &page{id: p.nextPageID, buf: buf}
	p.nextPageID++

	p.stampNewPage(pg)

	// Thread the slots LIFO; the last slot ends up at the head.
	for slot := 0; slot < p.lay.perPage; slot++ {
		format.PutU64(buf, p.lay.dataOff(slot), uint64(p.freeHead))
		p.freeHead = makeRef(pg.id, p.lay.dataOff(slot))
	}

	// The page link word mirrors the list head insertion.
	if p.pages != nil {
		format.PutU64(buf, 0, uint64(p.pages.id))
	}
	pg.next = p.pages
	p.pages = pg
	p.pageCount++

	p.stats.PagesInUse++
	p.stats.FreeObjects += p.lay.perPage
	return nil
}

// stampNewPage writes the sentinel patterns for a freshly reserved page:
// unallocated over everything, then alignment and guard patterns per region,
// with header bytes zeroed. Object data regions keep the unallocated
// pattern.
func (p *Pool) stampNewPage(pg *page) {
	fill(pg.buf, PatternUnallocated)
	fill(pg.buf[pageLinkSize:p.lay.firstSlot], PatternAlignment)

	for slot := 0; slot < p.lay.perPage; slot++ {
		hoff := p.lay.headerOff(slot)
		doff := p.lay.dataOff(slot)

		fill(pg.buf[hoff:hoff+p.lay.headerSize], 0)
		fill(pg.buf[doff-p.lay.padBytes:doff], PatternPadding)
		fill(pg.buf[doff+p.lay.objectSize:doff+p.lay.objectSize+p.lay.padBytes], PatternPadding)

		if slot < p.lay.perPage-1 {
			gap := doff + p.lay.objectSize + p.lay.padBytes
			fill(pg.buf[gap:gap+p.lay.interAlign], PatternAlignment)
		}
	}
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// findPage returns the page owning ref, or nil. Linear scan of the page
// list.
func (p *Pool) findPage(ref Ref) *page {
	id := ref.pageID()
	for pg := p.pages; pg != nil; pg = pg.next {
		if pg.id == id {
			return pg
		}
	}
	return nil
}

// freePage removes every one of target's slots from the free list, unlinks
// target from the page list (prev is its predecessor, nil when target is the
// head), releases any external header records for its slots, and hands the
// raw buffer back to the caller for release.
func (p *Pool) freePage(target, prev *page) []byte {
	p.removePageFromFreeList(target)

	if prev == nil {
		p.pages = target.next
	} else {
		prev.next = target.next
	}
	p.pageCount--

	p.hdr.releasePage(target.id)

	p.stats.PagesInUse--
	p.stats.FreeObjects -= p.lay.perPage

	buf := target.buf
	target.buf = nil
	target.next = nil
	return buf
}

// removePageFromFreeList unthreads every slot belonging to target in one
// pass over the free list, early-exiting once all of the page's slots have
// been found.
func (p *Pool) removePageFromFreeList(target *page) {
	removed := 0
	prev := NilRef
	cur := p.freeHead
	for cur != NilRef && removed < p.lay.perPage {
		next := p.nextFree(cur)
		if cur.pageID() == target.id {
			if prev == NilRef {
				p.freeHead = next
			} else {
				p.setNextFree(prev, next)
			}
			removed++
		} else {
			prev = cur
		}
		cur = next
	}
}

// pageEmpty reports whether none of pg's slots are in use.
func (p *Pool) pageEmpty(pg *page) bool {
	for slot := 0; slot < p.lay.perPage; slot++ {
		if p.hdr.inUse(pg, slot) {
			return false
		}
	}
	return true
}

// FreeEmptyPages reclaims every page whose slots are all simultaneously
// free and returns the number of pages released. Raw buffers are handed
// back to the system only after the full scan completes.
func (p *Pool) FreeEmptyPages() int {
	if p.closed || p.cfg.PassThrough {
		return 0
	}

	var bufs [][]byte
	var prev *page
	pg := p.pages
	for pg != nil {
		next := pg.next
		if p.pageEmpty(pg) {
			bufs = append(bufs, p.freePage(pg, prev))
		} else {
			prev = pg
		}
		pg = next
	}

	for _, buf := range bufs {
		sysmem.Release(buf) //nolint:errcheck // unmapping a reclaimed page is best-effort
	}
	return len(bufs)
}
