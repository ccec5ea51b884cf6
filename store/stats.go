package store

import (
	"bytes"
	"fmt"
)

// StatsText renders the engine's counters in the line-per-stat,
// trailing-END format callers forward over the wire unmodified.
func (e *Engine) StatsText() []byte {
	var buf bytes.Buffer
	line := func(k string, v any) {
		fmt.Fprintf(&buf, "STAT %s %v\r\n", k, v)
	}

	line("large_chunk_sz", e.cfg.LargeChunkSize)
	line("small_chunk_sz", e.cfg.SmallChunkSize)
	line("large_free_list_sz", e.largeFreeLen)
	line("small_free_list_sz", e.smallFreeLen)
	line("large_used", e.countLargeUsed())
	line("large_broken", e.countLargeBroken())
	line("unused_memory", int64(len(e.large)-int(e.grownLarge))*int64(e.cfg.LargeChunkSize))

	for occ, n := range e.histogram() {
		fmt.Fprintf(&buf, "STAT broken_histogram_%d %d\r\n", occ, n)
	}

	line("break_events", e.stats.BreakEvents)
	line("unbreak_events", e.stats.UnbreakEvents)
	line("migrates", e.stats.Coalesces)
	line("oldest_item_lifetime", e.oldestItemLifetime())

	buf.WriteString("END\r\n")
	return buf.Bytes()
}

func (e *Engine) countLargeUsed() int32 {
	var n int32
	for i := int32(0); i < e.grownLarge; i++ {
		if e.large[i].kind == lcTitle || e.large[i].kind == lcBody {
			n++
		}
	}
	return n
}

func (e *Engine) countLargeBroken() int32 {
	var n int32
	for i := int32(0); i < e.grownLarge; i++ {
		if e.large[i].kind == lcBroken {
			n++
		}
	}
	return n
}

// oldestItemLifetime returns, in seconds, how long the LRU tail item
// has been resident, or 0 if the LRU is empty. It counts each item in
// the single shared LRU exactly once, unlike the double-counting bug
// this mirrors the fix for.
func (e *Engine) oldestItemLifetime() int64 {
	if e.lruTail.IsNone() {
		return 0
	}
	t := e.titleAt(e.lruTail)
	now := e.clock()
	age := now - t.touched
	if age < 0 {
		return 0
	}
	return age
}

// Cachedump renders up to limit items of the given tier as
// "ITEM <key> [<nbytes> b; <time> s]\r\n" lines within a 2 MiB cap,
// terminated by END\r\n.
func (e *Engine) Cachedump(tier Tier, limit int) []byte {
	const maxBuf = 2 << 20
	var buf bytes.Buffer
	count := 0
	for cur := e.lruHead; !cur.IsNone() && (limit == 0 || count < limit); cur = e.titleAt(cur).lruNext {
		if cur.Tier != tier {
			continue
		}
		t := e.titleAt(cur)
		key := e.keyBytes(cur)
		line := fmt.Sprintf("ITEM %s [%d b; %d s]\r\n", key, t.nbytes, t.touched)
		if buf.Len()+len(line) > maxBuf {
			break
		}
		buf.WriteString(line)
		count++
	}
	buf.WriteString("END\r\n")
	return buf.Bytes()
}

// AllocatorStats renders the allocator-internal counters cachedump's
// sibling command surfaces for operational debugging.
func (e *Engine) AllocatorStats() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "large_total=%d\r\n", len(e.large))
	fmt.Fprintf(&buf, "large_grown=%d\r\n", e.grownLarge)
	fmt.Fprintf(&buf, "large_free=%d\r\n", e.largeFreeLen)
	fmt.Fprintf(&buf, "small_free=%d\r\n", e.smallFreeLen)
	fmt.Fprintf(&buf, "grows=%d\r\n", e.stats.Grows)
	fmt.Fprintf(&buf, "coalesces=%d\r\n", e.stats.Coalesces)
	fmt.Fprintf(&buf, "allocs=%d\r\n", e.stats.Allocs)
	fmt.Fprintf(&buf, "evictions=%d\r\n", e.stats.Evictions)
	fmt.Fprintf(&buf, "expirations=%d\r\n", e.stats.Expirations)
	buf.WriteString("END\r\n")
	return buf.Bytes()
}
