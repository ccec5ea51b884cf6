package store

// coalesce drains small fragmentation into whole large chunks, running
// coalesceOnce as long as the small free list holds at least a whole
// large chunk's worth of slots. Returns true iff at least one large
// chunk was formed.
func (e *Engine) coalesce() bool {
	spl := e.cfg.SmallPerLarge()
	formed := false
	for e.smallFreeLen >= spl {
		if !e.coalesceOnce() {
			break
		}
		formed = true
	}
	return formed
}

// coalesceOnce runs a single migration pass: find an unreferenced broken
// parent, isolate its free children, migrate its live children onto
// fresh small chunks elsewhere, and unbreak it once drained.
func (e *Engine) coalesceOnce() bool {
	parent, ok := e.findUnreferencedBroken(e.cfg.CoalesceSearchDepth)
	if !ok {
		return false
	}
	spl := e.cfg.SmallPerLarge()

	// Step 3: isolate every currently-free child so the migration below
	// cannot pick one of this parent's own slots as a replacement.
	for slot := int32(0); slot < spl; slot++ {
		idx := e.smallIndex(parent, slot)
		sc := e.smallAt(idx)
		if sc.kind == scFree {
			e.unlinkSmallFree(idx)
			sc.kind = scCoalescePending
		}
	}

	// Step 4: migrate every used child onto a replacement chunk.
	for slot := int32(0); slot < spl; slot++ {
		idx := e.smallIndex(parent, slot)
		sc := e.smallAt(idx)
		if sc.kind != scTitle && sc.kind != scBody {
			continue
		}
		oldCP := ChunkPtr{Tier: Small, Idx: idx}
		newCP := e.popSmallFree()
		if newCP.IsNone() {
			panic("store: coalesce ran out of small free chunks mid-migration")
		}
		e.migrateSmall(oldCP, newCP, sc.kind)

		old := e.smallAt(idx)
		old.kind = scCoalescePending
		old.title = itemTitle{}
		old.body = itemBody{}

		before := e.large[parent].broken.allocatedCount
		e.histMove(parent, before, before-1)
		e.large[parent].broken.allocatedCount = before - 1
	}

	if e.large[parent].broken.allocatedCount != 0 {
		panic("store: coalesce failed to fully drain a broken parent")
	}
	e.unbreak(parent, true)
	e.stats.Coalesces++
	return true
}

// findUnreferencedBroken scans the small free list, optionally bounded
// to depth nodes (0 = unbounded), and returns the first parent none of
// whose used children are referenced (refcount > 0).
func (e *Engine) findUnreferencedBroken(depth int32) (int32, bool) {
	visited := make(map[int32]bool)
	var scanned int32
	for p := e.smallFreeHead; !p.IsNone(); p = e.smallAt(p.Idx).freeNext {
		if depth > 0 && scanned >= depth {
			break
		}
		scanned++
		parent := e.smallParent(p.Idx)
		if visited[parent] {
			continue
		}
		visited[parent] = true
		if e.isParentUnreferenced(parent) {
			return parent, true
		}
	}
	return 0, false
}

// isParentUnreferenced reports whether every used child of parent
// belongs to an item with refcount == 0.
func (e *Engine) isParentUnreferenced(parent int32) bool {
	spl := e.cfg.SmallPerLarge()
	for slot := int32(0); slot < spl; slot++ {
		idx := e.smallIndex(parent, slot)
		sc := e.smallAt(idx)
		switch sc.kind {
		case scFree, scCoalescePending:
			continue
		case scTitle:
			if sc.title.refcount > 0 {
				return false
			}
		case scBody:
			title := e.titleOfSmallBody(ChunkPtr{Tier: Small, Idx: idx})
			if e.smallAt(title.Idx).title.refcount > 0 {
				return false
			}
		}
	}
	return true
}

// titleOfSmallBody walks prevChunk links from a small body chunk back
// to its item's title.
func (e *Engine) titleOfSmallBody(p ChunkPtr) ChunkPtr {
	for {
		sc := e.smallAt(p.Idx)
		if sc.kind == scTitle {
			return p
		}
		p = sc.body.prevChunk
		if p.IsNone() {
			panic("store: body chunk has no reachable title")
		}
	}
}

// migrateSmall copies oldCP's record and payload onto newCP and patches
// every back-reference: LRU neighbours and the external index for a
// title, chain neighbours for a body.
func (e *Engine) migrateSmall(oldCP, newCP ChunkPtr, kind smallKind) {
	oldSc := e.smallAt(oldCP.Idx)
	newSc := e.smallAt(newCP.Idx)
	newBytes := e.smallBytes(newCP.Idx)

	switch kind {
	case scTitle:
		oldData := oldSc.title.data
		newSc.kind = scTitle
		newSc.title = oldSc.title
		newSc.title.data = newBytes
		copy(newSc.title.data, oldData)

		lp, ln := newSc.title.lruPrev, newSc.title.lruNext
		if lp.IsNone() {
			e.lruHead = newCP
		} else {
			e.titleAt(lp).lruNext = newCP
		}
		if ln.IsNone() {
			e.lruTail = newCP
		} else {
			e.titleAt(ln).lruPrev = newCP
		}

		if next := newSc.title.nextChunk; !next.IsNone() && next.Tier == Small {
			e.bodyAt(next).prevChunk = newCP
		}

		key := e.keyBytes(newCP)
		e.index.Delete(key)
		e.index.Insert(key, encodeHandle(newCP))

	case scBody:
		oldData := oldSc.body.data
		newSc.kind = scBody
		newSc.body = oldSc.body
		newSc.body.data = newBytes
		copy(newSc.body.data, oldData)

		prev, next := newSc.body.prevChunk, newSc.body.nextChunk
		if !prev.IsNone() {
			if prev.Tier == Small {
				pred := e.smallAt(prev.Idx)
				if pred.kind == scTitle {
					pred.title.nextChunk = newCP
				} else {
					pred.body.nextChunk = newCP
				}
			} else {
				pl := &e.large[prev.Idx]
				if pl.kind == lcTitle {
					pl.title.nextChunk = newCP
				} else {
					pl.body.nextChunk = newCP
				}
			}
		}
		if !next.IsNone() && next.Tier == Small {
			e.bodyAt(next).prevChunk = newCP
		}
	}
}
