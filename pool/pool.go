package pool

import (
	"fmt"

	"github.com/joshuapare/poolkit/internal/buf"
	"github.com/joshuapare/poolkit/internal/sysmem"
)

// minObjectSize is the smallest poolable object: a free block stores its
// free-list link in-band, so the data region must hold one link word.
const minObjectSize = pageLinkSize

// Pool is a fixed-size-block memory pool allocator. See the package
// documentation for the page layout and operating model. A Pool is not safe
// for concurrent use.
type Pool struct {
	cfg Config
	lay layout
	hdr headerOps

	pages      *page
	pageCount  int
	nextPageID uint32
	freeHead   Ref

	// pass-through bookkeeping; a nil value marks a freed entry
	pass    map[Ref][]byte
	passSeq uint64

	stats   Stats
	debugOn bool
	closed  bool
}

// New constructs an allocator for objects of objectSize bytes. The page
// layout is computed once from cfg and one page is reserved immediately
// (pass-through mode reserves none).
func New(objectSize int, cfg Config) (*Pool, error) {
	cfg = cfg.normalized()
	if objectSize <= 0 {
		return nil, fmt.Errorf("pool: invalid object size %d", objectSize)
	}
	if !cfg.PassThrough && objectSize < minObjectSize {
		return nil, fmt.Errorf("pool: object size %d below minimum %d", objectSize, minObjectSize)
	}

	lay, err := computeLayout(objectSize, cfg)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:        cfg,
		lay:        lay,
		nextPageID: 1,
		debugOn:    cfg.Debug,
	}
	p.hdr = newHeaderOps(p)
	p.stats.ObjectSize = objectSize
	p.stats.PageSize = p.lay.pageSize

	if cfg.PassThrough {
		p.pass = make(map[Ref][]byte)
		return p, nil
	}

	if err := p.createPage(); err != nil {
		return nil, err
	}
	return p, nil
}

// Allocate hands out one block of the configured object size and returns
// its reference plus the block's data region. label is recorded only by the
// external header variant.
func (p *Pool) Allocate(label string) (Ref, []byte, error) {
	if p.closed {
		return NilRef, nil, ErrClosed
	}
	if p.cfg.PassThrough {
		return p.allocatePass()
	}

	if p.freeHead == NilRef {
		if p.cfg.MaxPages > 0 && p.pageCount >= p.cfg.MaxPages {
			return NilRef, nil, fmt.Errorf("%w: max pages %d", ErrPageLimit, p.cfg.MaxPages)
		}
		if err := p.createPage(); err != nil {
			return NilRef, nil, err
		}
	}

	ref := p.takeFree()
	pg := p.findPage(ref)
	slot, _ := p.lay.slotIndex(ref.dataOff())

	if p.debugOn {
		p.stamp(pg, slot, PatternAllocated)
	}

	p.stats.Allocations++
	p.stats.ObjectsInUse++
	if p.stats.ObjectsInUse > p.stats.MostObjects {
		p.stats.MostObjects = p.stats.ObjectsInUse
	}
	p.stats.FreeObjects--

	p.hdr.onAllocate(pg, slot, uint32(p.stats.Allocations), label)

	off := ref.dataOff()
	return ref, pg.buf[off : off+p.lay.objectSize : off+p.lay.objectSize], nil
}

// Free returns a block to the pool. Freeing NilRef is a no-op. With debug
// enabled the block is validated first and the first violated check aborts
// the free with allocator state unchanged.
func (p *Pool) Free(ref Ref) error {
	if ref == NilRef {
		return nil
	}
	if p.closed {
		return ErrClosed
	}
	if p.cfg.PassThrough {
		return p.freePass(ref)
	}

	if p.debugOn {
		if err := p.validateFree(ref); err != nil {
			return err
		}
	}

	pg := p.findPage(ref)
	if pg == nil {
		return fmt.Errorf("%w: ref %#x names no page", ErrOutOfRange, uint64(ref))
	}
	slot, ok := p.lay.slotIndex(ref.dataOff())
	if !ok {
		return fmt.Errorf("%w: offset %d not on a slot boundary", ErrOutOfRange, ref.dataOff())
	}

	if p.debugOn {
		p.stamp(pg, slot, PatternFreed)
	}
	p.hdr.onFree(pg, slot)
	p.returnFree(ref)

	p.stats.FreeObjects++
	p.stats.Deallocations++
	p.stats.ObjectsInUse--
	return nil
}

// Bytes re-derives the data region slice for a block reference.
func (p *Pool) Bytes(ref Ref) ([]byte, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if ref.passThrough() {
		b, ok := p.pass[ref]
		if !ok || b == nil {
			return nil, fmt.Errorf("%w: unknown pass-through ref %#x", ErrOutOfRange, uint64(ref))
		}
		return b, nil
	}

	pg := p.findPage(ref)
	if pg == nil {
		return nil, fmt.Errorf("%w: ref %#x names no page", ErrOutOfRange, uint64(ref))
	}
	if _, ok := p.lay.slotIndex(ref.dataOff()); !ok {
		return nil, fmt.Errorf("%w: offset %d not on a slot boundary", ErrOutOfRange, ref.dataOff())
	}
	off := ref.dataOff()
	if !buf.Has(pg.buf, off, p.lay.objectSize) {
		return nil, fmt.Errorf("%w: offset %d outside page", ErrOutOfRange, off)
	}
	return pg.buf[off : off+p.lay.objectSize : off+p.lay.objectSize], nil
}

// BlockInfo returns the diagnostic metadata view for a block reference.
func (p *Pool) BlockInfo(ref Ref) (BlockInfo, error) {
	if p.closed {
		return BlockInfo{}, ErrClosed
	}
	if ref.passThrough() {
		b, ok := p.pass[ref]
		return BlockInfo{InUse: ok && b != nil}, nil
	}

	pg := p.findPage(ref)
	if pg == nil {
		return BlockInfo{}, fmt.Errorf("%w: ref %#x names no page", ErrOutOfRange, uint64(ref))
	}
	slot, ok := p.lay.slotIndex(ref.dataOff())
	if !ok {
		return BlockInfo{}, fmt.Errorf("%w: offset %d not on a slot boundary", ErrOutOfRange, ref.dataOff())
	}
	return p.hdr.info(pg, slot), nil
}

// DumpInUse invokes fn for every currently in-use block and returns their
// count.
func (p *Pool) DumpInUse(fn func(ref Ref, size int)) int {
	if p.closed {
		return 0
	}
	count := 0
	if p.cfg.PassThrough {
		for ref, b := range p.pass {
			if b == nil {
				continue
			}
			count++
			if fn != nil {
				fn(ref, p.stats.ObjectSize)
			}
		}
		return count
	}

	for pg := p.pages; pg != nil; pg = pg.next {
		for slot := 0; slot < p.lay.perPage; slot++ {
			if p.hdr.inUse(pg, slot) {
				count++
				if fn != nil {
					fn(makeRef(pg.id, p.lay.dataOff(slot)), p.lay.objectSize)
				}
			}
		}
	}
	return count
}

// Close releases every page and every external header record, regardless of
// outstanding in-use blocks. References obtained from the Pool must not be
// used afterwards. Close is idempotent.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	pg := p.pages
	for pg != nil {
		next := pg.next
		if err := sysmem.Release(pg.buf); err != nil && firstErr == nil {
			firstErr = err
		}
		pg.buf = nil
		pg.next = nil
		pg = next
	}
	p.pages = nil
	p.pageCount = 0
	p.freeHead = NilRef
	p.hdr.releaseAll()
	p.pass = nil
	return firstErr
}

// allocatePass delegates one allocation to the runtime allocator, keeping
// only statistics and the ref table.
func (p *Pool) allocatePass() (Ref, []byte, error) {
	p.passSeq++
	ref := passRefBit | Ref(p.passSeq)
	b := make([]byte, p.stats.ObjectSize)
	p.pass[ref] = b

	p.stats.Allocations++
	p.stats.ObjectsInUse++
	if p.stats.ObjectsInUse > p.stats.MostObjects {
		p.stats.MostObjects = p.stats.ObjectsInUse
	}
	return ref, b, nil
}

// freePass releases a pass-through allocation. Freed entries stay in the
// table as nil markers so debug mode can still flag a double free.
func (p *Pool) freePass(ref Ref) error {
	b, ok := p.pass[ref]
	if !ok {
		if p.debugOn {
			return fmt.Errorf("%w: unknown pass-through ref %#x", ErrOutOfRange, uint64(ref))
		}
		return nil
	}
	if b == nil {
		if p.debugOn {
			return fmt.Errorf("%w: pass-through ref %#x", ErrDoubleFree, uint64(ref))
		}
		return nil
	}

	p.pass[ref] = nil
	p.stats.Deallocations++
	p.stats.ObjectsInUse--
	return nil
}
