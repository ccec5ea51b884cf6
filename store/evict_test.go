package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_GetLRUItem_SkipsReferenced asserts that an item with a live
// reference is never chosen as an eviction victim, even when it sits
// at the LRU tail.
func Test_GetLRUItem_SkipsReferenced(t *testing.T) {
	e := newTestEngine(t)

	tail := allocAndLink(t, e, "tail", []byte("1"))
	_ = allocAndLink(t, e, "middle", []byte("2"))
	_ = allocAndLink(t, e, "head", []byte("3"))
	require.Equal(t, tail, e.lruTail)

	held, err := e.Get([]byte("tail"))
	require.NoError(t, err)
	require.EqualValues(t, 1, e.titleAt(held).refcount)

	victim := e.getLRUItem()
	require.NotEqual(t, tail, victim, "referenced tail item must not be selected")
}

func Test_GetLRUItem_RespectsSearchDepth(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.LRUSearchDepth = 1

	_ = allocAndLink(t, e, "tail", []byte("1"))
	_ = allocAndLink(t, e, "head", []byte("2"))

	// Hold a reference on the only item within search depth; with depth
	// 1 the walk must give up rather than look past it.
	_, err := e.Get([]byte("tail"))
	require.NoError(t, err)

	victim := e.getLRUItem()
	require.True(t, victim.IsNone())
}

func Test_LRUEvict_ReturnsFalseWhenNothingEvictable(t *testing.T) {
	e := newTestEngine(t)

	it := allocAndLink(t, e, "only", []byte("1"))
	_, err := e.Get([]byte("only"))
	require.NoError(t, err)
	require.EqualValues(t, 1, e.titleAt(it).refcount)

	evicted := e.LRUEvict(Small, 1<<20)
	require.False(t, evicted)
}

func Test_LRUEvict_UnlinksColdestFirst(t *testing.T) {
	e := newTestEngine(t)

	_ = allocAndLink(t, e, "cold", []byte("1"))
	_ = allocAndLink(t, e, "warm", []byte("2"))

	spl := e.cfg.SmallPerLarge()
	capacity := e.largeFreeLen*spl + e.smallFreeLen

	// One chunk more than current capacity demands exactly one eviction
	// before evictionSatisfied sees enough free small capacity to stop.
	ok := e.lruEvict(Small, capacity+1)
	require.True(t, ok)

	_, err := e.Get([]byte("cold"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.Get([]byte("warm"))
	require.NoError(t, err)
}
