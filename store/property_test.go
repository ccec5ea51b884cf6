package store

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mactus/memcached/assoc"
)

// Test_Fuzz_RandomAllocUnlink_GuardInvariants drives a fixed-seed random
// alloc/unlink/coalesce workload and re-checks the chunk-conservation,
// histogram, and free-list invariants after every step.
func Test_Fuzz_RandomAllocUnlink_GuardInvariants(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBytes = 1 << 18
	cfg.IncrementDelta = 1 << 14
	e, err := NewEngine(cfg, assoc.NewMapIndex(0), nil)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	rng := rand.New(rand.NewSource(7))
	live := make(map[string]bool)

	for i := 0; i < 2000; i++ {
		switch rng.Intn(3) {
		case 0:
			key := fmt.Sprintf("f-%d", rng.Intn(500))
			nbytes := rng.Intn(int(e.cfg.LargeChunkSize) * 2)
			it, allocErr := e.Alloc([]byte(key), 0, 0, uint32(nbytes), nil)
			if allocErr == nil {
				e.WriteValue(it, make([]byte, nbytes))
				if old, ok := live[key]; ok && old {
					e.Unlink(decodeMustFind(t, e, key), []byte(key))
				}
				e.Link(it, []byte(key))
				live[key] = true
			}
		case 1:
			if len(live) == 0 {
				continue
			}
			for k := range live {
				if h, ok := e.index.Find([]byte(k)); ok {
					e.Unlink(decodeHandle(h), []byte(k))
				}
				delete(live, k)
				break
			}
		case 2:
			e.coalesce()
		}
		checkInvariants(t, e, i)
	}
}

func checkInvariants(t *testing.T, e *Engine, step int) {
	t.Helper()

	// Every large chunk is accounted for exactly once across free/used/broken.
	var usedLarge, freeLargeCensus, brokenLarge int32
	for i := int32(0); i < e.grownLarge; i++ {
		switch e.large[i].kind {
		case lcFree:
			freeLargeCensus++
		case lcTitle, lcBody:
			usedLarge++
		case lcBroken:
			brokenLarge++
		}
	}
	require.Equal(t, e.grownLarge, usedLarge+freeLargeCensus+brokenLarge, "step %d: large chunk census", step)
	require.Equal(t, freeLargeCensus, e.largeFreeLen, "step %d: large free list size", step)

	spl := e.cfg.SmallPerLarge()
	for i := int32(0); i < e.grownLarge; i++ {
		if e.large[i].kind != lcBroken {
			continue
		}
		var used, free, pending int32
		for slot := int32(0); slot < spl; slot++ {
			switch e.large[i].broken.small[slot].kind {
			case scFree:
				free++
			case scTitle, scBody:
				used++
			case scCoalescePending:
				pending++
			}
		}
		require.Equal(t, spl, used+free+pending, "step %d: small census for parent %d", step, i)
		require.Equal(t, used, e.large[i].broken.allocatedCount, "step %d: allocated_count for parent %d", step, i)
	}

	// The broken-chunk histogram matches a fresh census of allocated counts.
	fresh := make([]int32, spl+1)
	for i := int32(0); i < e.grownLarge; i++ {
		if e.large[i].kind == lcBroken {
			fresh[e.large[i].broken.allocatedCount]++
		}
	}
	hist := e.histogram()
	for occ := range fresh {
		got := int32(0)
		if occ < len(hist) {
			got = hist[occ]
		}
		require.Equal(t, fresh[occ], got, "step %d: histogram bucket %d", step, occ)
	}

	// Free lists are cycle-free and their length counters match a walk.
	require.Equal(t, walkLen(e.largeFreeHead, func(p ChunkPtr) ChunkPtr { return e.large[p.Idx].freeNext }), e.largeFreeLen, "step %d: large free list length", step)
	require.Equal(t, walkLen(e.smallFreeHead, func(p ChunkPtr) ChunkPtr { return e.smallAt(p.Idx).freeNext }), e.smallFreeLen, "step %d: small free list length", step)

	for p := e.smallFreeHead; !p.IsNone(); p = e.smallAt(p.Idx).freeNext {
		next := e.smallAt(p.Idx).freeNext
		if !next.IsNone() {
			require.Equal(t, p, e.smallAt(next.Idx).freePrev, "step %d: prev/next consistency at %v", step, p)
		}
	}
}

func walkLen(head ChunkPtr, next func(ChunkPtr) ChunkPtr) int32 {
	seen := make(map[int32]bool)
	var n int32
	for p := head; !p.IsNone(); p = next(p) {
		if seen[p.Idx] {
			panic("cycle detected in free list")
		}
		seen[p.Idx] = true
		n++
	}
	return n
}
