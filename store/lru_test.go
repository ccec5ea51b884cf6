package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_LRU_LinkOrdering asserts that immediately after Link, the LRU
// head is the newly linked item.
func Test_LRU_LinkOrdering(t *testing.T) {
	e := newTestEngine(t)

	a := allocAndLink(t, e, "a", []byte("1"))
	require.Equal(t, a, e.lruHead)

	b := allocAndLink(t, e, "b", []byte("2"))
	require.Equal(t, b, e.lruHead)
	require.Equal(t, a, e.lruTail)
}

func Test_LRU_TouchRefreshesHead(t *testing.T) {
	e := newTestEngine(t)

	a := allocAndLink(t, e, "a", []byte("1"))
	_ = allocAndLink(t, e, "b", []byte("2"))
	require.NotEqual(t, a, e.lruHead)

	// Advance the clock far enough to clear UpdateInterval, then touch a.
	e.cfg.Clock = func() int64 { return 10_000_000 }
	e.clock = e.cfg.Clock
	e.Update(a)
	require.Equal(t, a, e.lruHead)
}

func Test_LRU_UnlinkPatchesNeighbours(t *testing.T) {
	e := newTestEngine(t)
	a := allocAndLink(t, e, "a", []byte("1"))
	b := allocAndLink(t, e, "b", []byte("2"))
	c := allocAndLink(t, e, "c", []byte("3"))
	require.Equal(t, c, e.lruHead)
	require.Equal(t, a, e.lruTail)

	e.Unlink(b, []byte("b"))
	require.Equal(t, a, e.titleAt(c).lruNext)
	require.Equal(t, c, e.titleAt(a).lruPrev)
}
