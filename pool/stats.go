package pool

// Stats is a point-in-time snapshot of the allocator's counters.
//
// The pooled-mode invariant
//
//	FreeObjects + ObjectsInUse == PagesInUse * ObjectsPerPage
//
// holds after every Pool operation.
type Stats struct {
	ObjectSize int // fixed at construction
	PageSize   int // fixed at construction

	PagesInUse   int
	ObjectsInUse int
	FreeObjects  int

	Allocations   int // monotonic, never decremented
	Deallocations int
	MostObjects   int // high-water mark of ObjectsInUse
}

// Stats returns a snapshot of the allocator's counters.
func (p *Pool) Stats() Stats {
	return p.stats
}

// Config returns the configuration the Pool was built with. The Debug field
// reflects the current debug state.
func (p *Pool) Config() Config {
	return p.cfg
}
