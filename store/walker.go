package store

// segment is one contiguous slice of an item's payload bytes, backed
// directly by region memory — callers must not retain it past the
// walk.
type segment struct {
	data []byte
}

// walk visits the chunk chain of the item rooted at title, starting at
// byte offset off, covering length n bytes, invoking fn once for each
// chunk the range touches. When beyondBoundary is true, the final segment may
// extend past the item's declared nkey+nbytes into the chunk's unused
// tail slack (used only for stamping).
//
// walk never allocates: it threads chunk pointers by hand instead of
// building a slice of segments up front.
func (e *Engine) walk(title ChunkPtr, off, n int32, beyondBoundary bool, fn func(segment)) {
	if n < 0 {
		panic("store: walk with negative length")
	}
	t := e.titleAt(title)
	tier := title.Tier
	cap0 := e.cfg.TitleDataSize(tier)
	capB := e.cfg.BodyDataSize(tier)

	cur := title
	curData := t.data
	curCap := cap0
	curOff := int32(0) // offset of curData's first byte within the whole payload

	// Skip forward to the chunk containing off.
	for off >= curOff+curCap {
		next := e.nextChunkOf(cur)
		if next.IsNone() {
			if !beyondBoundary {
				panic("store: walk offset beyond item length")
			}
			return
		}
		curOff += curCap
		cur = next
		curData = e.bodyAt(cur).data
		curCap = capB
	}

	remaining := n
	localOff := off - curOff
	for remaining > 0 {
		if localOff >= curCap {
			next := e.nextChunkOf(cur)
			if next.IsNone() {
				if beyondBoundary {
					return
				}
				panic("store: walk ran off the end of the item chain")
			}
			curOff += curCap
			cur = next
			curData = e.bodyAt(cur).data
			curCap = capB
			localOff = 0
		}
		take := remaining
		if take > curCap-localOff {
			take = curCap - localOff
		}
		fn(segment{data: curData[localOff : localOff+take]})
		remaining -= take
		localOff += take
	}
}

// nextChunkOf returns the chunk following cur in its item chain.
func (e *Engine) nextChunkOf(cur ChunkPtr) ChunkPtr {
	if cur.Tier == Large {
		lc := &e.large[cur.Idx]
		if lc.kind == lcTitle {
			return lc.title.nextChunk
		}
		return lc.body.nextChunk
	}
	sc := e.smallAt(cur.Idx)
	if sc.kind == scTitle {
		return sc.title.nextChunk
	}
	return sc.body.nextChunk
}

// titleAt returns the title record at a title chunk pointer.
func (e *Engine) titleAt(p ChunkPtr) *itemTitle {
	if p.Tier == Large {
		return &e.large[p.Idx].title
	}
	return &e.smallAt(p.Idx).title
}

// bodyAt returns the body record at a body chunk pointer.
func (e *Engine) bodyAt(p ChunkPtr) *itemBody {
	if p.Tier == Large {
		return &e.large[p.Idx].body
	}
	return &e.smallAt(p.Idx).body
}

// MemcpyTo copies src into an item's payload at byte offset off,
// optionally reaching past the item's declared length into tail slack.
func (e *Engine) MemcpyTo(it ItemHandle, off int32, src []byte, beyondBoundary bool) {
	e.memcpyTo(it, off, src, beyondBoundary)
}

// MemcpyFrom copies n payload bytes starting at off into dst.
func (e *Engine) MemcpyFrom(dst []byte, it ItemHandle, off, n int32, beyondBoundary bool) {
	e.memcpyFrom(dst, it, off, n, beyondBoundary)
}

// KeyCompare reports whether it's stored key equals key.
func (e *Engine) KeyCompare(it ItemHandle, key []byte) bool {
	return e.keyCompare(it, key)
}

// KeyCopy flattens it's key into a fresh slice, mirroring the source's
// key_copy minus its in-place-pointer fast path (see keyBytes).
func (e *Engine) KeyCopy(it ItemHandle) []byte {
	return e.keyBytes(it)
}

// WriteValue writes value into the value region of a freshly allocated,
// not-yet-linked item — the caller-side half of Alloc's division of
// labour (see Alloc's doc comment).
func (e *Engine) WriteValue(it ItemHandle, value []byte) {
	t := e.titleAt(it)
	e.memcpyTo(it, int32(t.nkey), value, false)
}

// ReadValue copies an item's value bytes into a fresh slice.
func (e *Engine) ReadValue(it ItemHandle) []byte {
	t := e.titleAt(it)
	buf := make([]byte, t.nbytes)
	e.memcpyFrom(buf, it, int32(t.nkey), int32(t.nbytes), false)
	return buf
}

// memcpyTo copies src into the item's payload starting at off.
func (e *Engine) memcpyTo(title ChunkPtr, off int32, src []byte, beyondBoundary bool) {
	pos := 0
	e.walk(title, off, int32(len(src)), beyondBoundary, func(s segment) {
		n := copy(s.data, src[pos:])
		pos += n
	})
}

// memcpyFrom copies n bytes of the item's payload starting at off into dst.
func (e *Engine) memcpyFrom(dst []byte, title ChunkPtr, off, n int32, beyondBoundary bool) {
	pos := 0
	e.walk(title, off, n, beyondBoundary, func(s segment) {
		pos += copy(dst[pos:], s.data)
	})
}

// keyCompare reports whether the item's stored key bytes equal key.
func (e *Engine) keyCompare(title ChunkPtr, key []byte) bool {
	t := e.titleAt(title)
	if int(t.nkey) != len(key) {
		return false
	}
	buf := make([]byte, t.nkey)
	e.memcpyFrom(buf, title, 0, int32(t.nkey), false)
	for i := range buf {
		if buf[i] != key[i] {
			return false
		}
	}
	return true
}

// keyBytes flattens the item's key into a fresh slice. Unlike the
// source's key_copy, which returns an in-place pointer when the key
// fits entirely within the title chunk, this always copies: callers in
// this module never hold a flattened key across a mutation that could
// invalidate the backing chunk, so the extra allocation buys simplicity
// rather than costing correctness.
func (e *Engine) keyBytes(title ChunkPtr) []byte {
	t := e.titleAt(title)
	buf := make([]byte, t.nkey)
	e.memcpyFrom(buf, title, 0, int32(t.nkey), false)
	return buf
}
