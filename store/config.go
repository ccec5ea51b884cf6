package store

import "time"

// Config carries every size and timing parameter of the engine as
// runtime fields, with named presets (DefaultConfig, Production) so
// tests can exercise literal end-to-end scenarios without rebuilding.
type Config struct {
	Name string

	// MaxBytes is the total region size. Must be a positive multiple of
	// both LargeChunkSize and IncrementDelta.
	MaxBytes int64

	LargeChunkSize int32
	SmallChunkSize int32 // must divide LargeChunkSize, quotient >= 2
	IncrementDelta int64 // lazy growth quantum, multiple of LargeChunkSize

	KeyMaxLength int32
	MaxItemSize  int32

	// MaxSmallChunksPerItem bounds how many small chunks a single item
	// may chain through before the tiering rule forces it to the large
	// tier. See DESIGN.md for the rationale behind this bound.
	MaxSmallChunksPerItem int32

	LRUSearchDepth int32 // max items walked from the LRU tail per eviction attempt
	UpdateInterval int64 // seconds; touch-time coalescing window

	// CoalesceSearchDepth bounds how many small-free-list nodes
	// findUnreferencedBroken scans before giving up; 0 means unbounded.
	CoalesceSearchDepth int32

	// DeleteLockSeconds is how long a deleted-but-not-yet-reaped key
	// stays in the delete-locked state.
	DeleteLockSeconds int64

	Clock Clock

	// Detail, when non-nil, receives a RecordAlloc/RecordUnlink callback
	// on every successful Alloc/Unlink, letting a caller maintain
	// per-key-prefix hit statistics without the engine paying for them.
	Detail DetailStats
}

// SmallPerLarge returns LargeChunkSize / SmallChunkSize.
func (c Config) SmallPerLarge() int32 {
	return c.LargeChunkSize / c.SmallChunkSize
}

// TitleDataSize returns the payload capacity of a title chunk in tier t.
// The engine keeps all control metadata (flags, links, counts) outside
// the region, so the whole chunk is available as payload.
func (c Config) TitleDataSize(t Tier) int32 {
	if t == Large {
		return c.LargeChunkSize
	}
	return c.SmallChunkSize
}

// BodyDataSize returns the payload capacity of a body chunk in tier t.
func (c Config) BodyDataSize(t Tier) int32 {
	return c.TitleDataSize(t)
}

// DefaultConfig is a small, deterministic preset sized for unit tests
// to exercise end-to-end allocation and eviction scenarios without
// needing a multi-megabyte region.
var DefaultConfig = Config{
	Name:                  "Default",
	MaxBytes:              16384,
	LargeChunkSize:        1024,
	SmallChunkSize:        128,
	IncrementDelta:        8192,
	KeyMaxLength:          250,
	MaxItemSize:           1 << 20,
	MaxSmallChunksPerItem: 16,
	LRUSearchDepth:        50,
	UpdateInterval:        60,
	DeleteLockSeconds:     5,
	Clock:                 func() int64 { return time.Now().Unix() },
}

// Production is a larger preset suitable for an actual cache process
// rather than unit tests: a 64 MiB region growing in 1 MiB increments.
var Production = Config{
	Name:                  "Production",
	MaxBytes:              64 << 20,
	LargeChunkSize:        1 << 20,
	SmallChunkSize:        1 << 16,
	IncrementDelta:        1 << 20,
	KeyMaxLength:          250,
	MaxItemSize:           1 << 20,
	MaxSmallChunksPerItem: 16,
	LRUSearchDepth:        50,
	UpdateInterval:        60,
	DeleteLockSeconds:     5,
	Clock:                 func() int64 { return time.Now().Unix() },
}

func (c Config) validate() error {
	if c.MaxBytes <= 0 {
		return errConfigf("MaxBytes must be positive, got %d", c.MaxBytes)
	}
	if c.LargeChunkSize <= 0 || c.SmallChunkSize <= 0 {
		return errConfigf("chunk sizes must be positive")
	}
	if c.LargeChunkSize%c.SmallChunkSize != 0 || c.SmallPerLarge() < 2 {
		return errConfigf("LargeChunkSize must be a multiple of SmallChunkSize with quotient >= 2")
	}
	if c.IncrementDelta <= 0 || c.IncrementDelta%int64(c.LargeChunkSize) != 0 {
		return errConfigf("IncrementDelta must be a positive multiple of LargeChunkSize")
	}
	if c.MaxBytes%c.IncrementDelta != 0 {
		return errConfigf("MaxBytes must be a multiple of IncrementDelta")
	}
	if c.MaxBytes%int64(c.LargeChunkSize) != 0 {
		return errConfigf("MaxBytes must be a multiple of LargeChunkSize")
	}
	if c.Clock == nil {
		return errConfigf("Clock must be set")
	}
	return nil
}
