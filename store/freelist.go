package store

// grow attempts to initialise exactly one increment's worth of large
// chunks, advancing the boundary between uninitialised and initialised
// arena slots and pushing each newly-initialised chunk onto the large
// free list. Returns false (no error) iff there is not enough unused
// capacity left to grow, mirroring the source's boolean grow().
func (e *Engine) grow() (bool, error) {
	step := int32(e.cfg.IncrementDelta / int64(e.cfg.LargeChunkSize))
	unused := int32(len(e.large)) - e.grownLarge
	if step > unused {
		return false, nil
	}
	for i := int32(0); i < step; i++ {
		idx := e.grownLarge
		e.grownLarge++
		e.large[idx] = largeChunk{initialized: true, kind: lcFree}
		e.pushLargeFree(idx)
	}
	e.stats.Grows++
	e.log.Debug("grew region", "newChunks", step, "grownLarge", e.grownLarge)
	return true, nil
}

// pushLargeFree pushes large index idx onto the head of the large free
// list. Caller must already have set kind == lcFree.
func (e *Engine) pushLargeFree(idx int32) {
	e.large[idx].kind = lcFree
	e.large[idx].freeNext = e.largeFreeHead
	e.largeFreeHead = ChunkPtr{Tier: Large, Idx: idx}
	e.largeFreeLen++
}

// popLargeFree pops the head of the large free list, or returns None.
func (e *Engine) popLargeFree() ChunkPtr {
	if e.largeFreeHead.IsNone() {
		return None
	}
	p := e.largeFreeHead
	e.largeFreeHead = e.large[p.Idx].freeNext
	e.large[p.Idx].freeNext = None
	e.largeFreeLen--
	return p
}

// smallAt returns a pointer to the smallChunk record at small-tier
// index idx.
func (e *Engine) smallAt(idx int32) *smallChunk {
	parent := e.smallParent(idx)
	return &e.large[parent].broken.small[e.smallSlot(idx)]
}

// pushSmallFree pushes small index idx onto the head of the small free
// list and decrements its parent's allocated_count, maintaining the
// broken-chunk histogram. If tryMerge is set, it then attempts a
// non-mandatory unbreak of the parent.
func (e *Engine) pushSmallFree(idx int32, tryMerge bool) {
	parent := e.smallParent(idx)
	sc := e.smallAt(idx)

	old := e.large[parent].broken.allocatedCount
	e.histMove(parent, old, old-1)
	e.large[parent].broken.allocatedCount = old - 1

	sc.kind = scFree
	sc.freePrev = None
	sc.freeNext = e.smallFreeHead
	if !e.smallFreeHead.IsNone() {
		e.smallAt(e.smallFreeHead.Idx).freePrev = ChunkPtr{Tier: Small, Idx: idx}
	}
	e.smallFreeHead = ChunkPtr{Tier: Small, Idx: idx}
	e.smallFreeLen++

	if tryMerge {
		e.unbreak(parent, false)
	}
}

// popSmallFree pops the head of the small free list, or returns None,
// incrementing its parent's allocated_count.
func (e *Engine) popSmallFree() ChunkPtr {
	if e.smallFreeHead.IsNone() {
		return None
	}
	p := e.smallFreeHead
	sc := e.smallAt(p.Idx)
	e.smallFreeHead = sc.freeNext
	if !e.smallFreeHead.IsNone() {
		e.smallAt(e.smallFreeHead.Idx).freePrev = None
	}
	sc.freeNext = None
	sc.freePrev = None
	e.smallFreeLen--

	parent := e.smallParent(p.Idx)
	old := e.large[parent].broken.allocatedCount
	e.histMove(parent, old, old+1)
	e.large[parent].broken.allocatedCount = old + 1

	return p
}

// unlinkSmallFree removes idx from the small free list without touching
// allocated_count — used when a free child is being reclassified as
// COALESCE_PENDING or swept away by a mandatory unbreak.
func (e *Engine) unlinkSmallFree(idx int32) {
	sc := e.smallAt(idx)
	prev, next := sc.freePrev, sc.freeNext
	if prev.IsNone() {
		e.smallFreeHead = next
	} else {
		e.smallAt(prev.Idx).freeNext = next
	}
	if !next.IsNone() {
		e.smallAt(next.Idx).freePrev = prev
	}
	sc.freePrev, sc.freeNext = None, None
	e.smallFreeLen--
}
