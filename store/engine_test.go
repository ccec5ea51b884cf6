package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mactus/memcached/assoc"
)

func testConfig() Config {
	cfg := DefaultConfig
	var now int64 = 1000
	cfg.Clock = func() int64 { return now }
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testConfig(), assoc.NewMapIndex(0), nil)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

// Test_LazyInit asserts that after a 16384-byte region with an
// 8192-byte growth increment, exactly one increment's worth of large
// chunks are initialised and the small free list is empty.
func Test_LazyInit(t *testing.T) {
	e := newTestEngine(t)

	require.EqualValues(t, 8, e.largeFreeLen)
	require.EqualValues(t, 0, e.smallFreeLen)
	require.EqualValues(t, 8192, int64(len(e.large)-int(e.grownLarge))*int64(e.cfg.LargeChunkSize))
}

func Test_Grow_FailsPastCapacity(t *testing.T) {
	e := newTestEngine(t)
	for {
		ok, err := e.grow()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	ok, err := e.grow()
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_TierBoundary(t *testing.T) {
	e := newTestEngine(t)

	// Fits entirely within one small chunk.
	require.False(t, e.isLarge(1, 10))

	// Exceeds a single large chunk outright.
	require.True(t, e.isLarge(1, uint32(e.cfg.LargeChunkSize)+1))

	// Fits the large tier's single-chunk threshold but needs more small
	// chunks than MaxSmallChunksPerItem allows.
	big := uint32(e.cfg.SmallChunkSize)*uint32(e.cfg.MaxSmallChunksPerItem) + 1
	if big <= uint32(e.cfg.LargeChunkSize) {
		require.True(t, e.isLarge(1, big))
	}
}
