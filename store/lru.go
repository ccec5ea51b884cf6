package store

// linkQ pushes it onto the head of the LRU, requiring it is not
// already linked into either neighbour direction.
func (e *Engine) linkQ(it ChunkPtr) {
	t := e.titleAt(it)
	if !t.lruNext.IsNone() || !t.lruPrev.IsNone() {
		panic("store: linkQ on an item already in the LRU")
	}
	t.lruNext = e.lruHead
	t.lruPrev = None
	if !e.lruHead.IsNone() {
		e.titleAt(e.lruHead).lruPrev = it
	}
	e.lruHead = it
	if e.lruTail.IsNone() {
		e.lruTail = it
	}
	e.lruLen++
}

// unlinkQ removes it from the LRU, patching neighbours and the
// head/tail sentinels as needed, then clears it's own links.
func (e *Engine) unlinkQ(it ChunkPtr) {
	t := e.titleAt(it)
	prev, next := t.lruPrev, t.lruNext

	if prev.IsNone() {
		e.lruHead = next
	} else {
		e.titleAt(prev).lruNext = next
	}
	if next.IsNone() {
		e.lruTail = prev
	} else {
		e.titleAt(next).lruPrev = prev
	}

	// Honest head/tail consistency check: both sentinels are None, or
	// neither is. The source expresses this as a tautological XOR; this
	// is the check it evidently meant.
	if e.lruHead.IsNone() != e.lruTail.IsNone() {
		panic("store: LRU head/tail consistency violated")
	}

	t.lruNext = None
	t.lruPrev = None
	e.lruLen--
}

// touch moves it to the LRU head and refreshes its touched time, but
// only if more than UpdateInterval seconds have passed since the last
// touch and it is currently linked.
func (e *Engine) touch(it ChunkPtr) {
	t := e.titleAt(it)
	if !t.itFlags.Has(ItLinked) {
		return
	}
	now := e.clock()
	if now-t.touched <= e.cfg.UpdateInterval {
		return
	}
	e.unlinkQ(it)
	t.touched = now
	e.linkQ(it)
}
