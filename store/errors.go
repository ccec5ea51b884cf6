package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's non-fatal outcomes. Invariant
// violations are not in this list: they panic, because the engine
// assumes single-writer callers and a broken invariant means a caller
// already corrupted shared state.
var (
	// ErrOversize is returned by Alloc when nkey or nbytes exceeds the
	// configured maximum.
	ErrOversize = errors.New("flatstore: key or value exceeds configured maximum size")

	// ErrNoSpace is returned by Alloc when every replenishment strategy
	// (grow, coalesce, evict) failed to produce enough chunks.
	ErrNoSpace = errors.New("flatstore: no space available after grow/coalesce/evict")

	// ErrNotFound is returned by Get when the key has no live item.
	ErrNotFound = errors.New("flatstore: item not found")

	// ErrDeleteLocked is returned by Get when the item is within its
	// post-delete lock window; GetNoteDeleted reports the same
	// condition through its deleted bool instead.
	ErrDeleteLocked = errors.New("flatstore: item is delete-locked")

	// ErrBadHandle is returned when an ItemHandle does not refer to a
	// live title chunk, such as a handle already freed by an earlier
	// Deref.
	ErrBadHandle = errors.New("flatstore: invalid item handle")
)

// errConfigf reports a rejected Config to NewEngine's caller.
func errConfigf(format string, args ...any) error {
	return fmt.Errorf("flatstore: bad config: "+format, args...)
}
