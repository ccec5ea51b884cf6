package store

import (
	"io"
	"log/slog"

	"github.com/Mactus/memcached/assoc"
	"github.com/Mactus/memcached/internal/region"
)

// Stats accumulates the lifetime counters a deployment scrapes, mirroring
// the source's global counters but kept per-Engine rather than process-wide.
type Stats struct {
	Allocs         int64
	Evictions      int64
	Expirations    int64
	Coalesces      int64
	Grows          int64
	GetHits        int64
	GetMisses      int64
	BytesCurrent   int64
	BreakEvents    int64
	UnbreakEvents  int64
}

// DetailStats, when non-nil on a Config, is invoked on every successful
// Alloc and every Unlink with the item's key, letting a caller maintain
// per-key hit statistics without the engine itself paying for a map it
// doesn't need. Grounded on flat_storage.c's optional detailed-stats hook.
type DetailStats interface {
	RecordAlloc(key []byte, nbytes int32)
	RecordUnlink(key []byte)
}

// Engine is the flat storage allocator: a single contiguous region split
// into large chunks, some of which are further broken into small chunks,
// backing an LRU of live items addressed through an external Index.
type Engine struct {
	cfg    Config
	clock  Clock
	log    *slog.Logger
	region *region.Region

	large []largeChunk // arena sized for the whole region up front; grow() initialises IncrementDelta worth at a time

	largeFreeHead ChunkPtr
	largeFreeLen  int32

	smallFreeHead ChunkPtr // doubly-linked, see smallChunk.freePrev/freeNext
	smallFreeLen  int32

	// brokenHist buckets broken large chunks by how many of their small
	// slots are allocated; StatsText reports it, and coalesce() does not
	// consult it. Index i holds chunks with i allocated slots.
	brokenHist [][]int32

	lruHead ChunkPtr
	lruTail ChunkPtr
	lruLen  int32

	grownLarge int32 // number of large slots initialised so far; indices beyond this are not yet live

	oldestLive int64
	started    int64

	index  assoc.Index
	detail DetailStats

	stats Stats
}

// NewEngine reserves the region and performs the one mandatory grow
// call needed before the large free list can serve an Alloc.
func NewEngine(cfg Config, index assoc.Index, log *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if index == nil {
		return nil, errConfigf("index must not be nil")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reg, err := region.New(int(cfg.MaxBytes))
	if err != nil {
		return nil, err
	}

	totalLarge := int32(cfg.MaxBytes / int64(cfg.LargeChunkSize))
	e := &Engine{
		cfg:           cfg,
		clock:         cfg.Clock,
		log:           log,
		region:        reg,
		large:         make([]largeChunk, totalLarge),
		largeFreeHead: None,
		smallFreeHead: None,
		lruHead:       None,
		lruTail:       None,
		index:         index,
		detail:        cfg.Detail,
		started:       cfg.Clock(),
	}

	if ok, err := e.grow(); err != nil || !ok {
		reg.Close()
		if err != nil {
			return nil, err
		}
		return nil, errConfigf("initial grow() found no capacity; MaxBytes must be at least IncrementDelta")
	}

	log.Debug("flatstore engine initialized",
		"maxBytes", cfg.MaxBytes,
		"largeChunkSize", cfg.LargeChunkSize,
		"smallChunkSize", cfg.SmallChunkSize,
		"totalLarge", totalLarge)

	return e, nil
}

// Close releases the backing region. The Engine must not be used afterward.
func (e *Engine) Close() error {
	return e.region.Close()
}

// Stats returns a snapshot of the lifetime counters.
func (e *Engine) Stats() Stats { return e.stats }

// largeBytes returns the payload slice for large chunk idx, carved out of
// the region on demand — a view, not a copy.
func (e *Engine) largeBytes(idx int32) []byte {
	off := int64(idx) * int64(e.cfg.LargeChunkSize)
	return e.region.Bytes()[off : off+int64(e.cfg.LargeChunkSize)]
}

// smallParent returns the index of the large chunk a small index belongs to.
func (e *Engine) smallParent(idx int32) int32 {
	return idx / e.cfg.SmallPerLarge()
}

// smallSlot returns the slot number of a small index within its parent.
func (e *Engine) smallSlot(idx int32) int32 {
	return idx % e.cfg.SmallPerLarge()
}

// smallIndex is the inverse of smallParent/smallSlot.
func (e *Engine) smallIndex(parent, slot int32) int32 {
	return parent*e.cfg.SmallPerLarge() + slot
}

// smallBytes returns the payload slice for a small chunk, a subrange of
// its parent large chunk's bytes.
func (e *Engine) smallBytes(idx int32) []byte {
	parent := e.smallParent(idx)
	slot := e.smallSlot(idx)
	off := int64(slot) * int64(e.cfg.SmallChunkSize)
	lb := e.largeBytes(parent)
	return lb[off : off+int64(e.cfg.SmallChunkSize)]
}

// encodeHandle packs a ChunkPtr into the opaque assoc.Handle the index
// stores, keeping the Index implementations ignorant of Tier/Idx.
func encodeHandle(p ChunkPtr) assoc.Handle {
	if p.IsNone() {
		return assoc.NoHandle
	}
	v := int64(p.Idx) << 1
	if p.Tier == Large {
		v |= 1
	}
	return assoc.Handle(v)
}

// decodeHandle is the inverse of encodeHandle.
func decodeHandle(h assoc.Handle) ChunkPtr {
	if h == assoc.NoHandle {
		return None
	}
	v := int64(h)
	tier := Small
	if v&1 != 0 {
		tier = Large
	}
	return ChunkPtr{Tier: tier, Idx: int32(v >> 1)}
}

// isLarge decides which tier an item with the given key/value sizes must
// occupy. An item goes to the small tier only if it both fits within
// MaxSmallChunksPerItem small chunks and does not independently exceed a
// single large chunk's worth of bytes; otherwise, or when it would need
// more chunks than that bound allows, it is allocated from the large tier.
// The exact bound is a design decision recorded in DESIGN.md: the source
// function this mirrors lives in a header this module's reference
// material did not retrieve.
func (e *Engine) isLarge(nkey, nbytes uint32) bool {
	total := int64(nkey) + int64(nbytes)
	if total > int64(e.cfg.LargeChunkSize) {
		return true
	}
	needed := e.chunksNeededForTier(nkey, nbytes, Small)
	return needed > e.cfg.MaxSmallChunksPerItem
}

// chunksNeededForTier computes how many chunks of tier t an item with the
// given key/value sizes would occupy, given this engine's external-
// metadata layout (no header bytes stolen from the payload area).
func (e *Engine) chunksNeededForTier(nkey, nbytes uint32, t Tier) int32 {
	total := int64(nkey) + int64(nbytes)
	cap0 := int64(e.cfg.TitleDataSize(t))
	if total <= cap0 {
		return 1
	}
	rem := total - cap0
	capB := int64(e.cfg.BodyDataSize(t))
	extra := rem / capB
	if rem%capB != 0 {
		extra++
	}
	return 1 + int32(extra)
}
