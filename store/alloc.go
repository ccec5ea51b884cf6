package store

import "net"

// Alloc reserves a fresh, unlinked item sized to hold nkey key bytes
// and nbytes value bytes, copies key into the title/body chain, and —
// if tail slack allows — stamps a touch timestamp and/or an IPv4
// address into the unused tail of the last chunk. The returned item has
// refcount 1 and is not yet visible to Get; the caller must still call
// Link to publish it.
//
// Value bytes are not written here: the caller follows Alloc with
// MemcpyTo to fill the value area, mirroring the source's division of
// labour between alloc() and its caller.
func (e *Engine) Alloc(key []byte, flags uint32, exptime int64, nbytes uint32, ip net.IP) (ItemHandle, error) {
	nkey := uint32(len(key))
	if nkey > uint32(e.cfg.KeyMaxLength) || nbytes > uint32(e.cfg.MaxItemSize) {
		return None, ErrOversize
	}

	tier := Small
	if e.isLarge(nkey, nbytes) {
		tier = Large
	}
	needed := e.chunksNeededForTier(nkey, nbytes, tier)

	if !e.replenish(tier, needed) {
		return None, ErrNoSpace
	}

	chunks := make([]ChunkPtr, needed)
	for i := int32(0); i < needed; i++ {
		if tier == Large {
			p := e.popLargeFree()
			if p.IsNone() {
				panic("store: replenish reported success but large free list is empty")
			}
			chunks[i] = p
		} else {
			p := e.popSmallFree()
			if p.IsNone() {
				panic("store: replenish reported success but small free list is empty")
			}
			chunks[i] = p
		}
	}

	e.chainItem(tier, chunks, nkey, nbytes, flags, exptime)

	title := chunks[0]
	e.memcpyTo(title, 0, key, false)

	e.stamp(title, tier, chunks, nkey, nbytes, ip)

	e.stats.Allocs++
	e.stats.BytesCurrent += int64(e.cfg.TitleDataSize(tier)) + int64(needed-1)*int64(e.cfg.BodyDataSize(tier))
	if e.detail != nil {
		e.detail.RecordAlloc(key, int32(nbytes))
	}
	return title, nil
}

// chainItem wires chunks[0] as the title and chunks[1:] as the body
// chain, filling in every header field alloc() is responsible for.
func (e *Engine) chainItem(tier Tier, chunks []ChunkPtr, nkey, nbytes uint32, flags uint32, exptime int64) {
	now := e.clock()

	title := chunks[0]
	if title.Tier == Large {
		lc := &e.large[title.Idx]
		lc.kind = lcTitle
		lc.title = itemTitle{data: e.largeBytes(title.Idx)}
	} else {
		sc := e.smallAt(title.Idx)
		sc.kind = scTitle
		sc.title = itemTitle{data: e.smallBytes(title.Idx)}
	}
	t := e.titleAt(title)
	*t = itemTitle{
		nkey:      nkey,
		nbytes:    nbytes,
		flags:     flags,
		exptime:   exptime,
		touched:   now,
		refcount:  1,
		itFlags:   ItValid,
		lruNext:   None,
		lruPrev:   None,
		nextChunk: None,
		hNext:     None,
		data:      t.data,
	}

	prev := title
	for i := 1; i < len(chunks); i++ {
		cur := chunks[i]
		if cur.Tier == Large {
			lc := &e.large[cur.Idx]
			lc.kind = lcBody
			lc.body = itemBody{prevChunk: None, nextChunk: None, data: e.largeBytes(cur.Idx)}
		} else {
			sc := e.smallAt(cur.Idx)
			sc.kind = scBody
			sc.body = itemBody{prevChunk: None, nextChunk: None, data: e.smallBytes(cur.Idx)}
		}
		if prev == title {
			t.nextChunk = cur
		} else {
			e.bodyAt(prev).nextChunk = cur
		}
		if cur.Tier == Small {
			e.bodyAt(cur).prevChunk = prev
		}
		prev = cur
	}
}

// stamp writes an optional 4-byte touch timestamp and 4-byte IPv4
// address into the tail slack of the chain, timestamp taking priority
// when slack is tight.
func (e *Engine) stamp(title ChunkPtr, tier Tier, chunks []ChunkPtr, nkey, nbytes uint32, ip net.IP) {
	cap0 := e.cfg.TitleDataSize(tier)
	capB := e.cfg.BodyDataSize(tier)
	total := cap0 + int32(len(chunks)-1)*capB
	used := int32(nkey + nbytes)
	slack := total - used
	if slack < 4 {
		return
	}

	t := e.titleAt(title)
	off := used

	now := uint32(e.clock())
	var tsBuf [4]byte
	tsBuf[0] = byte(now >> 24)
	tsBuf[1] = byte(now >> 16)
	tsBuf[2] = byte(now >> 8)
	tsBuf[3] = byte(now)
	e.memcpyTo(title, off, tsBuf[:], true)
	t.itFlags |= ItHasTimestamp
	off += 4
	slack -= 4

	if slack < 4 || ip == nil {
		return
	}
	v4 := ip.To4()
	if v4 == nil {
		return
	}
	e.memcpyTo(title, off, v4, true)
	t.itFlags |= ItHasIPAddress
}

// SizeOK reports whether an item with the given key length and value
// length could ever be allocated, independent of current free capacity.
func (e *Engine) SizeOK(nkey int, nbytes uint32) bool {
	return uint32(nkey) <= uint32(e.cfg.KeyMaxLength) && nbytes <= uint32(e.cfg.MaxItemSize)
}

// NeedRealloc reports whether growing it in place to newNbytes would
// change its tier or chunk count, forcing callers to Alloc a
// replacement rather than overwrite in place.
func (e *Engine) NeedRealloc(it ChunkPtr, newNbytes uint32) bool {
	t := e.titleAt(it)
	oldTier := it.Tier
	newTier := Small
	if e.isLarge(t.nkey, newNbytes) {
		newTier = Large
	}
	if newTier != oldTier {
		return true
	}
	oldNeeded := e.chunksNeededForTier(t.nkey, t.nbytes, oldTier)
	newNeeded := e.chunksNeededForTier(t.nkey, newNbytes, newTier)
	return oldNeeded != newNeeded
}

// replenish drives the tier-specific grow/coalesce-or-break/evict
// strategy order until the relevant free-list capacity meets needed,
// or reports failure.
func (e *Engine) replenish(tier Tier, needed int32) bool {
	spl := e.cfg.SmallPerLarge()
	for {
		if tier == Large {
			if e.largeFreeLen >= needed {
				return true
			}
		} else {
			if e.smallFreeLen >= needed {
				return true
			}
		}

		progress := false
		snapLarge, snapSmall := e.largeFreeLen, e.smallFreeLen

		if tier == Large {
			if ok, _ := e.grow(); ok {
				progress = true
			}
			if !progress && e.largeFreeLen*spl+e.smallFreeLen >= needed*spl {
				if e.coalesce() {
					progress = true
				}
			}
			if !progress {
				if e.lruEvict(Large, needed) {
					progress = true
				}
			}
		} else {
			if !progress && e.largeFreeLen > 0 {
				p := e.popLargeFree()
				e.breakLarge(p.Idx)
				progress = true
			}
			if !progress {
				if ok, _ := e.grow(); ok {
					progress = true
				}
			}
			if !progress {
				if e.lruEvict(Small, needed) {
					progress = true
				}
			}
		}

		if !progress || (e.largeFreeLen == snapLarge && e.smallFreeLen == snapSmall) {
			return false
		}
	}
}
