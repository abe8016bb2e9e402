package pool

import "github.com/joshuapare/poolkit/internal/format"

const (
	flagFreed     = 0x00
	flagAllocated = 0x01
)

// headerOps is the per-variant metadata behavior, chosen once at
// construction. Each implementation owns the byte layout of its header
// region; nothing outside this file reads or writes header bytes.
type headerOps interface {
	// onAllocate stamps slot's metadata for a fresh allocation. ordinal is
	// the allocation count at the time of this allocation.
	onAllocate(pg *page, slot int, ordinal uint32, label string)

	// onFree clears slot's in-use state. Reuse counters survive.
	onFree(pg *page, slot int)

	// inUse reports whether slot is currently allocated.
	inUse(pg *page, slot int) bool

	// info returns the diagnostic view of slot's metadata.
	info(pg *page, slot int) BlockInfo

	// releasePage drops any out-of-band records for the page's slots.
	releasePage(id uint32)

	// releaseAll drops every out-of-band record.
	releaseAll()
}

// BlockInfo is a diagnostic snapshot of one block's metadata. Fields beyond
// InUse are populated only by the header variants that track them.
type BlockInfo struct {
	InUse      bool
	AllocNum   uint32 // allocation ordinal, basic/extended/external
	ReuseCount uint16 // extended only
	Label      string // external only
}

func newHeaderOps(p *Pool) headerOps {
	switch p.cfg.Header.Kind {
	case HeaderBasic:
		return &basicHeader{p: p}
	case HeaderExtended:
		return &extendedHeader{p: p}
	case HeaderExternal:
		return &externalHeader{p: p, recs: make(map[Ref]*ExternalRecord)}
	default:
		return &noneHeader{p: p}
	}
}

// noneHeader keeps no metadata. In-use detection scans the free list, which
// is linear in the number of free blocks; this path only exists when the
// caller asked for zero tracking.
type noneHeader struct {
	p *Pool
}

func (h *noneHeader) onAllocate(*page, int, uint32, string) {}

func (h *noneHeader) onFree(*page, int) {}

func (h *noneHeader) inUse(pg *page, slot int) bool {
	return !h.p.onFreeList(makeRef(pg.id, h.p.lay.dataOff(slot)))
}

func (h *noneHeader) info(pg *page, slot int) BlockInfo {
	return BlockInfo{InUse: h.inUse(pg, slot)}
}

func (h *noneHeader) releasePage(uint32) {}

func (h *noneHeader) releaseAll() {}

// basicHeader: [u32 allocation ordinal][flag byte] before each data region.
type basicHeader struct {
	p *Pool
}

func (h *basicHeader) onAllocate(pg *page, slot int, ordinal uint32, _ string) {
	off := h.p.lay.headerOff(slot)
	format.PutU32(pg.buf, off, ordinal)
	pg.buf[off+4] = flagAllocated
}

func (h *basicHeader) onFree(pg *page, slot int) {
	off := h.p.lay.headerOff(slot)
	format.PutU32(pg.buf, off, 0)
	pg.buf[off+4] = flagFreed
}

func (h *basicHeader) inUse(pg *page, slot int) bool {
	return pg.buf[h.p.lay.headerOff(slot)+4] == flagAllocated
}

func (h *basicHeader) info(pg *page, slot int) BlockInfo {
	off := h.p.lay.headerOff(slot)
	return BlockInfo{
		InUse:    pg.buf[off+4] == flagAllocated,
		AllocNum: format.ReadU32(pg.buf, off),
	}
}

func (h *basicHeader) releasePage(uint32) {}

func (h *basicHeader) releaseAll() {}

// extendedHeader: [extra caller bytes][u16 reuse counter][u32 ordinal][flag].
// The reuse counter increments every time the slot is reallocated and is
// never cleared, surviving frees for the lifetime of the page.
type extendedHeader struct {
	p *Pool
}

func (h *extendedHeader) onAllocate(pg *page, slot int, ordinal uint32, _ string) {
	off := h.p.lay.headerOff(slot) + h.p.cfg.Header.Extra
	format.PutU16(pg.buf, off, format.ReadU16(pg.buf, off)+1)
	format.PutU32(pg.buf, off+2, ordinal)
	pg.buf[off+6] = flagAllocated
}

func (h *extendedHeader) onFree(pg *page, slot int) {
	off := h.p.lay.headerOff(slot) + h.p.cfg.Header.Extra
	format.PutU32(pg.buf, off+2, 0)
	pg.buf[off+6] = flagFreed
}

func (h *extendedHeader) inUse(pg *page, slot int) bool {
	off := h.p.lay.headerOff(slot) + h.p.cfg.Header.Extra
	return pg.buf[off+6] == flagAllocated
}

func (h *extendedHeader) info(pg *page, slot int) BlockInfo {
	off := h.p.lay.headerOff(slot) + h.p.cfg.Header.Extra
	return BlockInfo{
		InUse:      pg.buf[off+6] == flagAllocated,
		AllocNum:   format.ReadU32(pg.buf, off+2),
		ReuseCount: format.ReadU16(pg.buf, off),
	}
}

func (h *extendedHeader) releasePage(uint32) {}

func (h *extendedHeader) releaseAll() {}

// ExternalRecord is the out-of-band metadata kept for each block under
// HeaderExternal. A record is created on the slot's first allocation, reused
// across free/reallocate cycles, and dropped when its page is reclaimed or
// the Pool is closed.
type ExternalRecord struct {
	Label    string
	AllocNum uint32
	InUse    bool
}

type externalHeader struct {
	p      *Pool
	recs   map[Ref]*ExternalRecord
	serial uint64
}

func (h *externalHeader) onAllocate(pg *page, slot int, ordinal uint32, label string) {
	ref := makeRef(pg.id, h.p.lay.dataOff(slot))
	rec := h.recs[ref]
	if rec == nil {
		rec = &ExternalRecord{}
		h.recs[ref] = rec
		h.serial++
		// The in-band word records the record's serial so raw page dumps
		// show which slots ever held a record.
		format.PutU64(pg.buf, h.p.lay.headerOff(slot), h.serial)
	}
	rec.Label = label
	rec.AllocNum = ordinal
	rec.InUse = true
}

func (h *externalHeader) onFree(pg *page, slot int) {
	ref := makeRef(pg.id, h.p.lay.dataOff(slot))
	if rec := h.recs[ref]; rec != nil {
		rec.InUse = false
		rec.AllocNum = 0
	}
}

func (h *externalHeader) inUse(pg *page, slot int) bool {
	rec := h.recs[makeRef(pg.id, h.p.lay.dataOff(slot))]
	return rec != nil && rec.InUse
}

func (h *externalHeader) info(pg *page, slot int) BlockInfo {
	rec := h.recs[makeRef(pg.id, h.p.lay.dataOff(slot))]
	if rec == nil {
		return BlockInfo{}
	}
	return BlockInfo{
		InUse:    rec.InUse,
		AllocNum: rec.AllocNum,
		Label:    rec.Label,
	}
}

func (h *externalHeader) releasePage(id uint32) {
	for ref := range h.recs {
		if ref.pageID() == id {
			delete(h.recs, ref)
		}
	}
}

func (h *externalHeader) releaseAll() {
	h.recs = make(map[Ref]*ExternalRecord)
}
