package store

// histMove relocates parent's entry in the broken-chunk histogram from
// bucket from to bucket to, growing brokenHist as needed. Both buckets
// index by allocated-slot count, 0..SmallPerLarge.
func (e *Engine) histMove(parent, from, to int32) {
	n := int(e.cfg.SmallPerLarge()) + 1
	if e.brokenHist == nil {
		e.brokenHist = make([][]int32, n)
	}
	if from >= 0 && from < int32(n) {
		e.brokenHist[from] = removeValue(e.brokenHist[from], parent)
	}
	if to >= 0 && to < int32(n) {
		e.brokenHist[to] = append(e.brokenHist[to], parent)
	}
}

func removeValue(s []int32, v int32) []int32 {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// histogram returns a copy of the broken-chunk occupancy histogram,
// bucket i holding the count of broken parents with i allocated slots.
func (e *Engine) histogram() []int32 {
	out := make([]int32, len(e.brokenHist))
	for i, b := range e.brokenHist {
		out[i] = int32(len(b))
	}
	return out
}

// breakLarge converts large index idx from FREE into BROKEN: it pushes
// every one of its small slots onto the small free list in reverse
// order, so the lowest-indexed slot ends up head-most — a convention
// callers rely on for deterministic tests, not a correctness property.
func (e *Engine) breakLarge(idx int32) {
	lc := &e.large[idx]
	if lc.kind != lcFree {
		panic("store: breakLarge on a non-free large chunk")
	}
	spl := e.cfg.SmallPerLarge()
	lc.kind = lcBroken
	lc.broken = brokenLarge{
		allocatedCount: 0,
		small:          make([]smallChunk, spl),
	}
	e.histMove(idx, -1, 0)

	for slot := spl - 1; slot >= 0; slot-- {
		si := e.smallIndex(idx, slot)
		e.large[idx].broken.small[slot] = smallChunk{kind: scFree}
		e.pushSmallFreeRaw(si)
	}
	e.stats.BreakEvents++
}

// pushSmallFreeRaw is pushSmallFree's allocated-count-free variant, used
// only while initially populating a freshly broken parent (its
// allocated_count is already 0 and must stay there).
func (e *Engine) pushSmallFreeRaw(idx int32) {
	sc := e.smallAt(idx)
	sc.kind = scFree
	sc.freePrev = None
	sc.freeNext = e.smallFreeHead
	if !e.smallFreeHead.IsNone() {
		e.smallAt(e.smallFreeHead.Idx).freePrev = ChunkPtr{Tier: Small, Idx: idx}
	}
	e.smallFreeHead = ChunkPtr{Tier: Small, Idx: idx}
	e.smallFreeLen++
}

// unbreak reclaims a fully-drained broken parent back into a whole large
// free chunk. The non-mandatory form is a silent no-op unless
// allocated_count is already 0; the mandatory form panics if it is not
// (callers are expected to have driven allocated_count to 0 first).
func (e *Engine) unbreak(parent int32, mandatory bool) bool {
	lc := &e.large[parent]
	if lc.kind != lcBroken {
		if mandatory {
			panic("store: mandatory unbreak on a non-broken large chunk")
		}
		return false
	}
	if lc.broken.allocatedCount != 0 {
		if mandatory {
			panic("store: mandatory unbreak with live allocated small chunks")
		}
		return false
	}

	spl := e.cfg.SmallPerLarge()
	for slot := int32(0); slot < spl; slot++ {
		si := e.smallIndex(parent, slot)
		sc := e.smallAt(si)
		switch sc.kind {
		case scFree:
			e.unlinkSmallFree(si)
		case scCoalescePending:
			// Already off every list; nothing to unlink.
		default:
			panic("store: unbreak found a used small chunk")
		}
	}

	e.histMove(parent, 0, -1)
	lc.broken = brokenLarge{}
	lc.kind = lcFree
	e.pushLargeFree(parent)
	e.stats.UnbreakEvents++
	return true
}
