package oram

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerAddressesRoundTrip(t *testing.T) {
	s := NewServer(3, 2, 4)
	buckets, addresses := s.GetAddresses(5)
	require.Len(t, buckets, 4)
	require.Equal(t, buckets[0], 0) // root always first
	for i := range addresses {
		require.Len(t, addresses[i], 2)
		for _, a := range addresses[i] {
			require.Equal(t, int64(DummyAddress), a)
		}
	}

	addresses[0][0] = 7
	s.SetAddresses(buckets, addresses)
	got, _ := s.GetAddresses(5)
	_ = got
	require.Equal(t, int64(7), s.Buckets[0].Blocks[0].Address)
}

func TestNonEncWrapperSetGetBlock(t *testing.T) {
	w := NewNonEncServerWrapper(2, 2, 3)
	blk := NewBlock(3, 9, 1)
	blk.Chunks[0] = big.NewInt(42)
	require.NoError(t, w.SetBlock(0, 0, blk))

	got, err := w.GetBlock(0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(9), got.Address)
	require.Equal(t, big.NewInt(42), got.Chunks[0])

	// mutating the copy must not affect server state (deep copy discipline)
	got.Chunks[0].SetInt64(1000)
	got2, err := w.GetBlock(0, 0)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), got2.Chunks[0])
}

func TestNonEncWrapperSelectBlockRequiresExactlyOne(t *testing.T) {
	w := NewNonEncServerWrapper(1, 2, 2)
	blk := NewBlock(2, 3, 0)
	blk.Chunks[0] = big.NewInt(11)
	blk.Chunks[1] = big.NewInt(22)
	require.NoError(t, w.SetBlock(0, 0, blk))

	buckets := []int{0}
	vector := [][]int{{1, 0}}
	chunks, err := w.SelectBlock(buckets, vector)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(11), chunks[0])
	require.Equal(t, big.NewInt(22), chunks[1])

	_, err = w.SelectBlock(buckets, [][]int{{0, 0}})
	require.Error(t, err)

	_, err = w.SelectBlock(buckets, [][]int{{1, 1}})
	require.Error(t, err)
}

func TestInvalidate(t *testing.T) {
	w := NewNonEncServerWrapper(1, 1, 1)
	require.NoError(t, w.SetBlock(0, 0, NewBlock(1, 5, 0)))
	require.False(t, w.IsDummy(0, 0))
	require.NoError(t, w.Invalidate(0, 0))
	require.True(t, w.IsDummy(0, 0))
}
