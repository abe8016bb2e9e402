package pool

// HeaderKind selects the per-block metadata layout for a Pool. The choice is
// fixed for the allocator's lifetime.
type HeaderKind uint8

const (
	// HeaderNone keeps no per-block metadata; in-use detection falls back to
	// a free-list membership scan.
	HeaderNone HeaderKind = iota

	// HeaderBasic stores a 4-byte allocation ordinal and a 1-byte in-use flag
	// immediately before each block.
	HeaderBasic

	// HeaderExtended prepends caller-defined bytes and a 2-byte reuse counter
	// to the basic layout. The reuse counter increments on every reallocation
	// of the slot and is never cleared.
	HeaderExtended

	// HeaderExternal keeps a pointer-sized in-band slot and an out-of-band
	// record per block, created lazily on the slot's first allocation and
	// released when its page is reclaimed or the Pool is closed.
	HeaderExternal
)

func (k HeaderKind) String() string {
	switch k {
	case HeaderNone:
		return "none"
	case HeaderBasic:
		return "basic"
	case HeaderExtended:
		return "extended"
	case HeaderExternal:
		return "external"
	default:
		return "unknown"
	}
}

const (
	// basicHeaderSize: u32 allocation ordinal + in-use flag byte.
	basicHeaderSize = 5

	// extendedFixedSize: u16 reuse counter + u32 ordinal + flag byte, on top
	// of the caller-defined extra bytes.
	extendedFixedSize = 7

	// externalHeaderSize: the in-band word holding the record serial.
	externalHeaderSize = 8
)

// HeaderInfo describes the header variant and its byte footprint inside each
// slot. Build values with Header; Size is derived from Kind and Extra.
type HeaderInfo struct {
	Kind  HeaderKind
	Extra int // caller-defined leading bytes, extended variant only
	Size  int // total in-band bytes before the guard padding
}

// Header returns the HeaderInfo for kind. extra is honored only for
// HeaderExtended and ignored otherwise.
func Header(kind HeaderKind, extra int) HeaderInfo {
	h := HeaderInfo{Kind: kind}
	switch kind {
	case HeaderBasic:
		h.Size = basicHeaderSize
	case HeaderExtended:
		if extra < 0 {
			extra = 0
		}
		h.Extra = extra
		h.Size = extra + extendedFixedSize
	case HeaderExternal:
		h.Size = externalHeaderSize
	}
	return h
}

// Config carries the caller-supplied allocator parameters. All fields are
// fixed for the Pool's lifetime except Debug, which SetDebug may flip.
type Config struct {
	// ObjectsPerPage is the number of fixed-size slots carved into each page.
	// Zero selects DefaultConfig.ObjectsPerPage.
	ObjectsPerPage int

	// MaxPages bounds how many pages the Pool may hold at once. Zero means
	// unbounded.
	MaxPages int

	// PadBytes is the guard padding placed on each side of every object's
	// data region.
	PadBytes int

	// Header selects the per-block metadata variant.
	Header HeaderInfo

	// Alignment is the required byte alignment of block data regions. Values
	// of 0 or 1 disable all alignment padding.
	Alignment int

	// Debug enables sentinel stamping and Free-time validation.
	Debug bool

	// PassThrough bypasses the pool entirely and delegates each allocation to
	// the runtime allocator, keeping only statistics.
	PassThrough bool
}

// DefaultConfig is the configuration used for zero-value fields.
var DefaultConfig = Config{
	ObjectsPerPage: 4,
}

// normalized returns cfg with defaults applied and the header size recomputed
// from its kind, so layout math never sees an inconsistent bundle.
func (c Config) normalized() Config {
	if c.ObjectsPerPage <= 0 {
		c.ObjectsPerPage = DefaultConfig.ObjectsPerPage
	}
	if c.MaxPages < 0 {
		c.MaxPages = 0
	}
	if c.PadBytes < 0 {
		c.PadBytes = 0
	}
	if c.Alignment < 0 {
		c.Alignment = 0
	}
	c.Header = Header(c.Header.Kind, c.Header.Extra)
	return c
}
