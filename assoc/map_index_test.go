package assoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_MapIndex_InsertFindDelete(t *testing.T) {
	idx := NewMapIndex(0)

	_, ok := idx.Find([]byte("a"))
	require.False(t, ok)

	idx.Insert([]byte("a"), Handle(1))
	h, ok := idx.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, Handle(1), h)

	idx.Insert([]byte("a"), Handle(2))
	h, ok = idx.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, Handle(2), h)

	idx.Delete([]byte("a"))
	_, ok = idx.Find([]byte("a"))
	require.False(t, ok)
}

func Test_MapIndex_Stats(t *testing.T) {
	idx := NewMapIndex(0)
	idx.Insert([]byte("one"), Handle(1))
	idx.Insert([]byte("two"), Handle(2))

	st := idx.Stats()
	require.Equal(t, 2, st.Count)
	require.Equal(t, "MapIndex", st.Impl)
	require.Positive(t, st.BytesApprox)
}

func Test_MapIndex_DeleteMissingIsNoop(t *testing.T) {
	idx := NewMapIndex(0)
	require.NotPanics(t, func() { idx.Delete([]byte("nope")) })
}
