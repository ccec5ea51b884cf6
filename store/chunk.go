package store

// largeKind discriminates the mutually exclusive states a large chunk can
// be in once initialized: free, holding an item title, holding an item
// body, or broken into small chunks.
type largeKind uint8

const (
	lcFree largeKind = iota
	lcTitle
	lcBody
	lcBroken
)

// smallKind discriminates the mutually exclusive usage states of a small
// chunk belonging to a broken large chunk.
type smallKind uint8

const (
	scFree smallKind = iota
	scTitle
	scBody
	scCoalescePending
)

// itemTitle is the header carried by an item's first chunk, regardless of
// tier. It is the Go analogue of the source's title record: key/value
// sizing, user flags, LRU links, the intra-item chain head, and the
// external index's chaining slot.
type itemTitle struct {
	nkey     uint32
	nbytes   uint32
	flags    uint32 // caller/user flags, opaque to the engine
	exptime  int64
	touched  int64 // last-touch time
	refcount int32
	itFlags  ItFlags

	lruNext ChunkPtr
	lruPrev ChunkPtr

	nextChunk ChunkPtr // head of the body chain, None if single-chunk item

	hNext ItemHandle // owned by the external index for separate chaining

	data []byte // payload area: key bytes, then value bytes, then optional stamp
}

// itemBody is the record carried by a non-title chunk of an item.
// prevChunk is only meaningful for small-tier bodies: large body
// chunks carry only nextChunk, and their predecessor is located by
// walking the chain from the title instead.
type itemBody struct {
	prevChunk ChunkPtr
	nextChunk ChunkPtr
	data      []byte
}

// largeChunk is the per-index metadata for a slot in the large-chunk
// arena. Exactly one of title/body/broken is meaningful, selected by kind.
type largeChunk struct {
	initialized bool
	kind        largeKind

	freeNext ChunkPtr // valid when kind == lcFree

	title itemTitle // valid when kind == lcTitle
	body  itemBody  // valid when kind == lcBody

	broken brokenLarge // valid when kind == lcBroken
}

// brokenLarge is the record a large chunk carries once broken into small
// chunks: an allocated-count and the small chunks themselves.
type brokenLarge struct {
	allocatedCount int32
	small          []smallChunk // len == cfg.SmallPerLarge
}

// smallChunk is one carved-out slot of a broken large chunk.
type smallChunk struct {
	kind smallKind

	// Free-list linkage. freePrev/freeNext are ChunkPtrs into the small
	// tier (None at a list boundary). This is the idiomatic Go stand-in
	// for the source's "pointer to the slot that points to this node":
	// rather than holding the address of a predecessor's next-field, we
	// hold the predecessor's identity directly and patch through it. See
	// DESIGN.md for why this preserves the O(1) unlink-anywhere property.
	freePrev ChunkPtr
	freeNext ChunkPtr

	title itemTitle // valid when kind == scTitle
	body  itemBody  // valid when kind == scBody
}
