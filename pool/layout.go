package pool

import (
	"fmt"

	"github.com/joshuapare/poolkit/internal/buf"
	"github.com/joshuapare/poolkit/internal/format"
)

// pageLinkSize is the reserved word at the start of every page, mirroring
// the page list link. Free-list links stored in block data regions have the
// same width, which is why objects must be at least this large.
const pageLinkSize = 8

// layout holds every byte offset the allocator needs, computed once at
// construction. All slot arithmetic goes through these fields; nothing else
// in the package derives offsets on its own.
type layout struct {
	objectSize int
	perPage    int
	headerSize int
	padBytes   int

	leftAlign  int // padding between the page link word and the first slot
	interAlign int // padding between consecutive slots, absent after the last
	stride     int // distance between consecutive data regions
	firstSlot  int // offset of the first slot's header
	firstData  int // offset of the first slot's data region
	pageSize   int
}

func computeLayout(objectSize int, cfg Config) (layout, error) {
	l := layout{
		objectSize: objectSize,
		perPage:    cfg.ObjectsPerPage,
		headerSize: cfg.Header.Size,
		padBytes:   cfg.PadBytes,
	}
	l.leftAlign = format.AlignPad(pageLinkSize+l.headerSize+l.padBytes, cfg.Alignment)
	l.interAlign = format.AlignPad(l.objectSize+l.headerSize+2*l.padBytes, cfg.Alignment)
	l.stride = l.headerSize + l.padBytes + l.objectSize + l.padBytes + l.interAlign
	l.firstSlot = pageLinkSize + l.leftAlign
	l.firstData = l.firstSlot + l.headerSize + l.padBytes

	slots, ok := buf.MulOverflowSafe(l.perPage, l.stride)
	if !ok {
		return layout{}, fmt.Errorf("pool: page size overflows: %d slots of stride %d", l.perPage, l.stride)
	}
	size, ok := buf.AddOverflowSafe(l.firstSlot, slots)
	if !ok {
		return layout{}, fmt.Errorf("pool: page size overflows: %d slots of stride %d", l.perPage, l.stride)
	}
	l.pageSize = size - l.interAlign
	return l, nil
}

// dataOff returns the byte offset of slot's data region within its page.
func (l layout) dataOff(slot int) int {
	return l.firstData + slot*l.stride
}

// headerOff returns the byte offset of slot's header within its page.
func (l layout) headerOff(slot int) int {
	return l.dataOff(slot) - l.padBytes - l.headerSize
}

// slotIndex maps a data-region offset back to its slot number. It reports
// false when the offset does not land exactly on a slot boundary.
func (l layout) slotIndex(dataOff int) (int, bool) {
	d := dataOff - l.firstData
	if d < 0 || d%l.stride != 0 {
		return 0, false
	}
	slot := d / l.stride
	if slot >= l.perPage {
		return 0, false
	}
	return slot, true
}

// Layout is a read-only snapshot of the per-page byte layout a Pool computed
// at construction.
type Layout struct {
	ObjectSize     int
	ObjectsPerPage int
	HeaderSize     int
	PadBytes       int
	LeftAlign      int
	InterAlign     int
	Stride         int
	FirstSlot      int
	FirstData      int
	PageSize       int
}

// Layout returns the Pool's computed page layout.
func (p *Pool) Layout() Layout {
	return Layout{
		ObjectSize:     p.lay.objectSize,
		ObjectsPerPage: p.lay.perPage,
		HeaderSize:     p.lay.headerSize,
		PadBytes:       p.lay.padBytes,
		LeftAlign:      p.lay.leftAlign,
		InterAlign:     p.lay.interAlign,
		Stride:         p.lay.stride,
		FirstSlot:      p.lay.firstSlot,
		FirstData:      p.lay.firstData,
		PageSize:       p.lay.pageSize,
	}
}
