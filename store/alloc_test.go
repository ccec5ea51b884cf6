package store

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func net4(a, b, c, d byte) net.IP {
	return net.IPv4(a, b, c, d)
}

// allocAndLink allocates, writes, and links an item, then releases the
// allocating caller's own reference — mirroring a command handler that
// has no further local use for the pointer once it's linked. Without
// this the item's refcount would never reach zero, and it could never
// be chosen by getLRUItem or coalesced by isParentUnreferenced.
func allocAndLink(t *testing.T, e *Engine, key string, value []byte) ItemHandle {
	t.Helper()
	it, err := e.Alloc([]byte(key), 0, 0, uint32(len(value)), nil)
	require.NoError(t, err)
	e.WriteValue(it, value)
	e.Link(it, []byte(key))
	require.NoError(t, e.Deref(it))
	return it
}

// Test_Alloc_BreaksLargeOnSmallDemand asserts that the first small
// allocation breaks exactly one large chunk.
func Test_Alloc_BreaksLargeOnSmallDemand(t *testing.T) {
	e := newTestEngine(t)

	require.EqualValues(t, 8, e.largeFreeLen)
	require.EqualValues(t, 0, e.smallFreeLen)

	it := allocAndLink(t, e, "k", make([]byte, 10))
	require.Equal(t, Small, it.Tier)

	require.EqualValues(t, 7, e.largeFreeLen)
	require.EqualValues(t, 7, e.smallFreeLen) // 8 carved, 1 consumed by the alloc
}

func Test_Alloc_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	value := []byte("the quick brown fox")
	it := allocAndLink(t, e, "round-trip", value)

	got, err := e.Get([]byte("round-trip"))
	require.NoError(t, err)
	require.Equal(t, it, got)
	require.True(t, e.KeyCompare(got, []byte("round-trip")))
	require.Equal(t, value, e.ReadValue(got))
	e.Deref(got)
}

func Test_Alloc_RejectsOversizedKey(t *testing.T) {
	e := newTestEngine(t)
	key := make([]byte, e.cfg.KeyMaxLength+1)
	_, err := e.Alloc(key, 0, 0, 1, nil)
	require.ErrorIs(t, err, ErrOversize)
}

func Test_Alloc_RejectsOversizedValue(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Alloc([]byte("k"), 0, 0, uint32(e.cfg.MaxItemSize)+1, nil)
	require.ErrorIs(t, err, ErrOversize)
}

func Test_Alloc_BoundaryKeyAndValue(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Alloc([]byte("k"), 0, 0, 0, nil)
	require.NoError(t, err)
}

// Test_Alloc_EvictsUnderPressure asserts that filling the region with
// small items, then requesting a multi-large-chunk item, forces
// eviction, and evicted keys stop resolving.
func Test_Alloc_EvictsUnderPressure(t *testing.T) {
	e := newTestEngine(t)

	var keys []string
	for i := 0; i < 500; i++ {
		key := keyN(i)
		it, err := e.Alloc([]byte(key), 0, 0, 10, nil)
		if err != nil {
			break
		}
		e.WriteValue(it, make([]byte, 10))
		e.Link(it, []byte(key))
		require.NoError(t, e.Deref(it))
		keys = append(keys, key)
	}
	require.NotEmpty(t, keys)

	big := uint32(e.cfg.LargeChunkSize) * 3
	it, err := e.Alloc([]byte("big-item"), 0, 0, big, nil)
	require.NoError(t, err)
	require.Equal(t, Large, it.Tier)

	evictedSome := false
	for _, k := range keys {
		if _, err := e.Get([]byte(k)); err != nil {
			evictedSome = true
			break
		}
	}
	require.True(t, evictedSome, "expected at least one small item to be evicted")
}

func Test_StampSlack(t *testing.T) {
	e := newTestEngine(t)

	// A title chunk of SmallChunkSize=128 holding a tiny key+value
	// leaves abundant slack for both timestamp and IP.
	it, err := e.Alloc([]byte("stampme"), 0, 0, 4, net4(1, 2, 3, 4))
	require.NoError(t, err)
	t1 := e.titleAt(it)
	require.True(t, t1.itFlags.Has(ItHasTimestamp))
	require.True(t, t1.itFlags.Has(ItHasIPAddress))
}

// Test_StampSlack_ExactBoundaries pins down the three slack thresholds
// stamp() switches behaviour on: 8 bytes fits both a timestamp and an
// IPv4 address, 4 fits only the timestamp, and 0 fits neither. Each
// case uses a 1-byte key in a 128-byte small title chunk, so nbytes is
// chosen to leave exactly the slack under test.
func Test_StampSlack_ExactBoundaries(t *testing.T) {
	e := newTestEngine(t)
	cap0 := e.cfg.SmallChunkSize
	nkey := int32(1)

	cases := []struct {
		name   string
		slack  int32
		wantTS bool
		wantIP bool
	}{
		{"BothFit", 8, true, true},
		{"TimestampOnly", 4, true, false},
		{"NeitherFits", 0, false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			nbytes := uint32(cap0 - nkey - c.slack)
			it, err := e.Alloc([]byte("k"), 0, 0, nbytes, net4(9, 9, 9, 9))
			require.NoError(t, err)
			title := e.titleAt(it)
			require.Equal(t, c.wantTS, title.itFlags.Has(ItHasTimestamp))
			require.Equal(t, c.wantIP, title.itFlags.Has(ItHasIPAddress))
		})
	}
}

func keyN(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	buf := make([]byte, 0, 8)
	for n := i + 1; n > 0; n /= len(letters) {
		buf = append(buf, letters[n%len(letters)])
	}
	return "key-" + string(buf)
}
