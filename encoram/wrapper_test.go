package encoram

import (
	"context"
	"math/big"
	"testing"

	"github.com/onionoram/onionoram/damgardjurik"
	"github.com/onionoram/onionoram/oram"
	"github.com/onionoram/onionoram/randsrc"
	"github.com/stretchr/testify/require"
)

func genKeypair(t *testing.T, bits, s0 int) (*damgardjurik.PublicKey, *damgardjurik.PrivateKey) {
	t.Helper()
	pub, priv, err := damgardjurik.GenerateKeypair(context.Background(), bits, s0, []byte("encoram-test-seed"))
	require.NoError(t, err)
	return pub, priv
}

func TestEncWrapperSetGetBlockRoundTrip(t *testing.T) {
	pub, priv := genKeypair(t, 32, 1)
	src := randsrc.NewDeterministic([]byte("enc-set-get"))
	w := NewEncServerWrapper(2, 2, 3, 1, pub, priv, src)

	block := oram.NewBlock(3, 7, 2)
	block.Chunks[0] = big.NewInt(11)
	block.Chunks[1] = big.NewInt(22)
	block.Chunks[2] = big.NewInt(33)
	require.NoError(t, w.SetBlock(0, 0, block))

	require.False(t, w.IsDummy(0, 0))
	got, err := w.GetBlock(0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Address)
	require.Equal(t, int64(2), got.LeafTarget)
	require.Equal(t, big.NewInt(11), got.Chunks[0])
	require.Equal(t, big.NewInt(22), got.Chunks[1])
	require.Equal(t, big.NewInt(33), got.Chunks[2])
}

func TestEncWrapperInvalidate(t *testing.T) {
	pub, priv := genKeypair(t, 32, 1)
	src := randsrc.NewDeterministic([]byte("enc-invalidate"))
	w := NewEncServerWrapper(1, 1, 1, 1, pub, priv, src)

	require.NoError(t, w.SetBlock(0, 0, oram.NewBlock(1, 4, 0)))
	require.False(t, w.IsDummy(0, 0))
	require.NoError(t, w.Invalidate(0, 0))
	require.True(t, w.IsDummy(0, 0))
}

func TestEncWrapperAddressesRoundTrip(t *testing.T) {
	pub, priv := genKeypair(t, 32, 1)
	src := randsrc.NewDeterministic([]byte("enc-addresses"))
	w := NewEncServerWrapper(3, 2, 2, 1, pub, priv, src)

	buckets, addresses, err := w.GetAddresses(5)
	require.NoError(t, err)
	require.Len(t, buckets, 4)
	for _, row := range addresses {
		for _, a := range row {
			require.Equal(t, int64(oram.DummyAddress), a)
		}
	}

	addresses[0][0] = 9
	require.NoError(t, w.SetAddresses(buckets, addresses))
	gotBuckets, gotAddresses, err := w.GetAddresses(5)
	require.NoError(t, err)
	require.Equal(t, buckets, gotBuckets)
	require.Equal(t, int64(9), gotAddresses[0][0])
}

func TestEncWrapperSelectBlock(t *testing.T) {
	pub, priv := genKeypair(t, 32, 1)
	src := randsrc.NewDeterministic([]byte("enc-select"))
	w := NewEncServerWrapper(1, 2, 2, 1, pub, priv, src)

	b0 := oram.NewBlock(2, 10, 0)
	b0.Chunks[0] = big.NewInt(5)
	b0.Chunks[1] = big.NewInt(6)
	require.NoError(t, w.SetBlock(1, 0, b0))

	b1 := oram.NewBlock(2, 20, 1)
	b1.Chunks[0] = big.NewInt(100)
	b1.Chunks[1] = big.NewInt(200)
	require.NoError(t, w.SetBlock(2, 0, b1))

	buckets := []int{1, 2}
	vector := [][]int{{1, 0}, {0, 0}}
	chunks, err := w.SelectBlock(buckets, vector)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(5), chunks[0])
	require.Equal(t, big.NewInt(6), chunks[1])
}
