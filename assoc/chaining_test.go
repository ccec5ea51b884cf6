package assoc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAccessor is a minimal in-memory ChainAccessor standing in for the
// engine's title records, so ChainIndex can be exercised without a
// store.Engine.
type fakeAccessor struct {
	next map[Handle]Handle
	keys map[Handle][]byte
}

func newFakeAccessor() *fakeAccessor {
	return &fakeAccessor{next: make(map[Handle]Handle), keys: make(map[Handle][]byte)}
}

func (f *fakeAccessor) Next(h Handle) Handle {
	if n, ok := f.next[h]; ok {
		return n
	}
	return NoHandle
}

func (f *fakeAccessor) SetNext(h, next Handle) { f.next[h] = next }

func (f *fakeAccessor) Key(h Handle) []byte { return f.keys[h] }

func (f *fakeAccessor) put(h Handle, key string) { f.keys[h] = []byte(key) }

func Test_ChainIndex_InsertFindDelete(t *testing.T) {
	acc := newFakeAccessor()
	c := NewChainIndex(acc)

	acc.put(Handle(1), "a")
	c.Insert([]byte("a"), Handle(1))

	h, ok := c.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, Handle(1), h)

	c.Delete([]byte("a"))
	_, ok = c.Find([]byte("a"))
	require.False(t, ok)
}

func Test_ChainIndex_SurvivesGrowth(t *testing.T) {
	acc := newFakeAccessor()
	c := NewChainIndex(acc)

	// Enough inserts to cross the growth threshold and rehash several
	// times; every key must still resolve correctly afterwards.
	const n = 200
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		h := Handle(i)
		acc.put(h, key)
		c.Insert([]byte(key), h)
	}

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		h, ok := c.Find([]byte(key))
		require.True(t, ok, "missing key %s after growth", key)
		require.Equal(t, Handle(i), h)
	}

	st := c.Stats()
	require.Equal(t, n, st.Count)
	require.Equal(t, "ChainIndex", st.Impl)
}

func Test_ChainIndex_DeleteMidChainPatchesPredecessor(t *testing.T) {
	acc := newFakeAccessor()
	c := NewChainIndex(acc)

	// k0, k22 and k31 hash to the same one of the 16 initial buckets, so
	// they form one chain (k31 -> k22 -> k0) with k22 in the middle.
	acc.put(Handle(1), "k0")
	acc.put(Handle(2), "k22")
	acc.put(Handle(3), "k31")
	c.Insert([]byte("k0"), Handle(1))
	c.Insert([]byte("k22"), Handle(2))
	c.Insert([]byte("k31"), Handle(3))

	c.Delete([]byte("k22"))

	_, ok := c.Find([]byte("k22"))
	require.False(t, ok)

	h, ok := c.Find([]byte("k0"))
	require.True(t, ok)
	require.Equal(t, Handle(1), h)

	h, ok = c.Find([]byte("k31"))
	require.True(t, ok)
	require.Equal(t, Handle(3), h)
}
