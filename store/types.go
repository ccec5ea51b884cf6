package store

// Tier distinguishes the two chunk size classes the allocator serves.
type Tier uint8

const (
	// Small identifies the small-chunk tier: items carved from broken
	// large chunks.
	Small Tier = iota
	// Large identifies the large-chunk tier: items occupying whole
	// large chunks.
	Large
)

func (t Tier) String() string {
	if t == Large {
		return "large"
	}
	return "small"
}

// ChunkPtr is a compact, typed reference to a chunk: which tier it lives
// in plus its index within that tier's chunk array. The zero value
// names small chunk 0, not "no chunk"; use None for that.
type ChunkPtr struct {
	Tier Tier
	Idx  int32
}

// None is the sentinel meaning "no chunk" — the Go analogue of the
// source's NULL_CHUNKPTR.
var None = ChunkPtr{Idx: -1}

// IsNone reports whether p is the sentinel.
func (p ChunkPtr) IsNone() bool { return p.Idx < 0 }

// ItemHandle identifies an item by the chunk pointer of its title chunk.
type ItemHandle = ChunkPtr

// ItFlags are the per-item state bits stored in a title's header.
type ItFlags uint8

const (
	ItValid ItFlags = 1 << iota
	ItLinked
	ItDeleted
	ItHasTimestamp
	ItHasIPAddress
)

// Has reports whether all bits of mask are set.
func (f ItFlags) Has(mask ItFlags) bool { return f&mask == mask }

// UnlinkReason distinguishes why unlink is being called, mirroring the
// source's unlink flags.
type UnlinkReason uint8

const (
	// NormalUnlink is an explicit delete/replace.
	NormalUnlink UnlinkReason = iota
	// MaybeEvict lets unlink decide evict-vs-expire based on exptime.
	MaybeEvict
)

// Clock supplies the engine's notion of "now" in Unix seconds. Tests
// inject a deterministic clock; production uses time.Now().Unix.
type Clock func() int64
