package store

// Link publishes an allocated item into the external index and the LRU
// head. It requires the item is VALID and not already LINKED; either
// precondition failing is a caller bug.
func (e *Engine) Link(it ChunkPtr, key []byte) {
	t := e.titleAt(it)
	if !t.itFlags.Has(ItValid) || t.itFlags.Has(ItLinked) {
		panic("store: Link precondition violated")
	}
	t.itFlags |= ItLinked
	t.touched = e.clock()
	e.index.Insert(key, encodeHandle(it))
	e.linkQ(it)
}

// Unlink is the public entry point for an explicit delete or replace;
// it always classifies as NormalUnlink.
func (e *Engine) Unlink(it ChunkPtr, key []byte) {
	e.unlink(it, NormalUnlink, key)
}

// unlink removes it from the index and LRU if linked, classifying the
// outcome when reason is MaybeEvict, and frees the item immediately if
// its refcount has already dropped to zero.
func (e *Engine) unlink(it ChunkPtr, reason UnlinkReason, key []byte) {
	t := e.titleAt(it)
	if !t.itFlags.Has(ItLinked) {
		return
	}
	if key == nil {
		key = e.keyBytes(it)
	}

	if reason == MaybeEvict {
		now := e.clock()
		if t.exptime == 0 || t.exptime > now {
			e.stats.Evictions++
		} else {
			e.stats.Expirations++
		}
	}

	t.itFlags &^= ItLinked
	if e.detail != nil {
		e.detail.RecordUnlink(key)
	}
	e.index.Delete(key)
	t.hNext = None
	e.unlinkQ(it)

	if t.refcount == 0 {
		e.free(it)
	}
}

// Deref releases one reference, physically freeing the item if it has
// both dropped to zero references and is no longer linked. Derefing a
// handle that no longer names a valid title (already freed, or never
// allocated) reports ErrBadHandle instead of freeing it a second time.
func (e *Engine) Deref(it ChunkPtr) error {
	if it.IsNone() {
		return ErrBadHandle
	}
	if it.Tier == Large {
		if int(it.Idx) >= len(e.large) || e.large[it.Idx].kind != lcTitle {
			return ErrBadHandle
		}
	} else {
		parent := e.smallParent(it.Idx)
		if int(parent) >= len(e.large) || e.large[parent].kind != lcBroken || e.smallAt(it.Idx).kind != scTitle {
			return ErrBadHandle
		}
	}
	t := e.titleAt(it)
	if !t.itFlags.Has(ItValid) {
		return ErrBadHandle
	}
	if t.refcount > 0 {
		t.refcount--
	}
	if t.refcount == 0 && !t.itFlags.Has(ItLinked) {
		e.free(it)
	}
	return nil
}

// Update refreshes an item's LRU position; see touch.
func (e *Engine) Update(it ChunkPtr) {
	e.touch(it)
}

// Replace atomically substitutes newIt for old under the same key.
func (e *Engine) Replace(old, newIt ChunkPtr, key []byte) {
	e.unlink(old, NormalUnlink, key)
	e.Link(newIt, key)
}

// MarkDeleted transitions a linked item into the delete-locked state: it
// stays in the index and LRU, discoverable by key, but Get refuses it
// with ErrDeleteLocked and GetNoteDeleted reports it as locked, until
// the lock window passes. It requires the item is currently LINKED.
//
// The unlock deadline is stamped into exptime, overwriting whatever TTL
// the item previously carried — mirroring item_delete_lock_over's reuse
// of exptime as the absolute time the lock clears. Once that deadline
// passes, the item looks exptime-expired to isStale and the next Get or
// GetNoteDeleted unlinks it as a side effect, same as any other expiry.
func (e *Engine) MarkDeleted(it ChunkPtr) {
	t := e.titleAt(it)
	if !t.itFlags.Has(ItLinked) {
		panic("store: MarkDeleted precondition violated")
	}
	t.itFlags |= ItDeleted
	t.exptime = e.clock() + e.cfg.DeleteLockSeconds
}

// deleteLockOver reports whether t's post-delete lock window, if any,
// has passed. Mirrors item_delete_lock_over's current_time >= exptime.
func (t *itemTitle) deleteLockOver(now int64) bool {
	return now >= t.exptime
}

// Get resolves key to a live item, bumping its refcount on success. A
// deleted-but-locked item reports ErrDeleteLocked; an expired or
// globally-flushed item is unlinked in place and reported as not found.
func (e *Engine) Get(key []byte) (ItemHandle, error) {
	h, ok := e.index.Find(key)
	if !ok {
		e.stats.GetMisses++
		return None, ErrNotFound
	}
	it := decodeHandle(h)
	t := e.titleAt(it)
	now := e.clock()

	if t.itFlags.Has(ItDeleted) && !t.deleteLockOver(now) {
		e.stats.GetMisses++
		return None, ErrDeleteLocked
	}

	if e.isStale(t, now) {
		e.unlink(it, MaybeEvict, nil)
		e.stats.GetMisses++
		return None, ErrNotFound
	}

	t.refcount++
	e.stats.GetHits++
	return it, nil
}

// GetNoteDeleted behaves like Get but reports a delete-locked item via
// the deleteLocked return rather than ErrDeleteLocked, matching the
// source's dedicated get_notedeleted entry point.
func (e *Engine) GetNoteDeleted(key []byte) (ItemHandle, bool, error) {
	h, ok := e.index.Find(key)
	if !ok {
		e.stats.GetMisses++
		return None, false, ErrNotFound
	}
	it := decodeHandle(h)
	t := e.titleAt(it)
	now := e.clock()

	if t.itFlags.Has(ItDeleted) && !t.deleteLockOver(now) {
		e.stats.GetMisses++
		return None, true, nil
	}
	if e.isStale(t, now) {
		e.unlink(it, MaybeEvict, nil)
		e.stats.GetMisses++
		return None, false, ErrNotFound
	}
	t.refcount++
	e.stats.GetHits++
	return it, false, nil
}

// GetNoCheck resolves key without expiry, flush, or delete-lock checks,
// for diagnostic callers such as cachedump.
func (e *Engine) GetNoCheck(key []byte) (ItemHandle, error) {
	h, ok := e.index.Find(key)
	if !ok {
		return None, ErrNotFound
	}
	it := decodeHandle(h)
	e.titleAt(it).refcount++
	return it, nil
}

func (e *Engine) isStale(t *itemTitle, now int64) bool {
	if e.oldestLive != 0 && t.touched < e.oldestLive {
		return true
	}
	return t.exptime != 0 && t.exptime <= now
}

// SetOldestLive marks every item touched before cutoff as invalidated
// by a flush_all-style command; FlushExpired then sweeps them.
func (e *Engine) SetOldestLive(cutoff int64) {
	e.oldestLive = cutoff
}

// FlushExpired walks the LRU from the head, unlinking items while their
// touch time is at or after oldest_live, and stops at the first item
// that predates it. Correct only while every insertion happens at the
// head and touch times are monotonically non-increasing walking from
// the head, which Link/touch maintain.
func (e *Engine) FlushExpired() {
	if e.oldestLive == 0 {
		return
	}
	cur := e.lruHead
	for !cur.IsNone() {
		t := e.titleAt(cur)
		if t.touched < e.oldestLive {
			break
		}
		next := t.lruNext
		e.unlink(cur, MaybeEvict, nil)
		cur = next
	}
}

// free physically reclaims every chunk of an unlinked, unreferenced
// item, body chunks first and the title last, matching the source's
// free() order.
func (e *Engine) free(it ChunkPtr) {
	t := e.titleAt(it)
	if t.refcount != 0 || !t.lruNext.IsNone() || !t.lruPrev.IsNone() || !t.hNext.IsNone() {
		panic("store: free precondition violated")
	}

	cur := t.nextChunk
	for !cur.IsNone() {
		next := e.nextChunkOf(cur)
		if cur.Tier == Large {
			e.large[cur.Idx].kind = lcFree
			e.pushLargeFree(cur.Idx)
		} else {
			e.pushSmallFree(cur.Idx, true)
		}
		cur = next
	}

	if it.Tier == Large {
		e.large[it.Idx].kind = lcFree
		e.pushLargeFree(it.Idx)
	} else {
		e.pushSmallFree(it.Idx, true)
	}
	*t = itemTitle{}
}
