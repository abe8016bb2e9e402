package pool

// Ref identifies one block handed out by a Pool: the owning page id in bits
// 32..62 and the byte offset of the block's data region within that page in
// the low 32 bits. Page ids start at 1 and a data region never sits at
// offset 0 (the page link word precedes it), so the zero Ref never names a
// valid block.
type Ref uint64

// NilRef is the invalid reference. Free(NilRef) is a no-op.
const NilRef Ref = 0

// passRefBit tags references handed out in pass-through mode; their low bits
// hold a sequence number instead of a page offset.
const passRefBit Ref = 1 << 63

func makeRef(pageID uint32, dataOff int) Ref {
	return Ref(uint64(pageID)<<32 | uint64(uint32(dataOff)))
}

func (r Ref) pageID() uint32 { return uint32(uint64(r) >> 32) }

func (r Ref) dataOff() int { return int(uint32(uint64(r))) }

func (r Ref) passThrough() bool { return r&passRefBit != 0 }
