package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_New_RejectsNonPositiveSize(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	_, err = New(-1)
	require.Error(t, err)
}

func Test_New_ReturnsZeroedRegionOfRequestedSize(t *testing.T) {
	r, err := New(4096)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	require.Equal(t, 4096, r.Len())
	b := r.Bytes()
	require.Len(t, b, 4096)
	for _, v := range b {
		require.Zero(t, v)
	}
}

func Test_Region_WritesPersistUntilClose(t *testing.T) {
	r, err := New(1024)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	b := r.Bytes()
	b[0] = 0xAB
	b[1023] = 0xCD
	require.Equal(t, byte(0xAB), r.Bytes()[0])
	require.Equal(t, byte(0xCD), r.Bytes()[1023])
}

func Test_Region_CloseIsIdempotent(t *testing.T) {
	r, err := New(1024)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
