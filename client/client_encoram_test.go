package client

import (
	"context"
	"testing"

	"github.com/onionoram/onionoram/damgardjurik"
	"github.com/onionoram/onionoram/encoram"
	"github.com/onionoram/onionoram/randsrc"
	"github.com/stretchr/testify/require"
)

// E2: encrypted wrapper over a Damgård–Jurik keypair, eviction enabled. Every
// block is written once, then all of them are read back in a shuffled order;
// every chunk must match what was written. This is the scenario that drives
// homomorphic select through the real access/eviction loop as blocks get
// pushed to increasing onion depth, not just SelectBlock called in
// isolation.
func TestScenarioE2EncryptedWrapperWriteReadAllBlocks(t *testing.T) {
	const (
		totalLevels      = 3
		totalLeafBuckets = 1 << totalLevels
		blocksPerBucket  = 8
		chunksPerBlock   = 3
		evictionPeriod   = 4
		keyBits          = 64
		rootPlainSpace   = 1
		totalBlocks      = totalLeafBuckets * 2
	)

	src := randsrc.NewDeterministic([]byte("E2-seed"))
	pub, priv, err := damgardjurik.GenerateKeypair(context.Background(), keyBits, rootPlainSpace, []byte("E2-key-seed"))
	require.NoError(t, err)

	wrapper := encoram.NewEncServerWrapper(totalLevels, blocksPerBucket, chunksPerBlock, rootPlainSpace, pub, priv, src)
	c, err := New(totalLevels, totalBlocks, blocksPerBucket, chunksPerBlock, evictionPeriod, wrapper, src)
	require.NoError(t, err)

	for id := int64(0); id < totalBlocks; id++ {
		_, err := c.Access(id, Write, chunkInts(id, id+1, id+2))
		require.NoError(t, err)
	}

	order := make([]int64, totalBlocks)
	for i := range order {
		order[i] = int64(i)
	}
	shuffleSrc := randsrc.NewDeterministic([]byte("E2-shuffle"))
	for i := len(order) - 1; i > 0; i-- {
		j := shuffleSrc.RandomInt(0, int64(i))
		order[i], order[j] = order[j], order[i]
	}

	for _, id := range order {
		got, err := c.Access(id, Read, nil)
		require.NoError(t, err)
		requireChunksEqual(t, []int64{id, id + 1, id + 2}, got)
	}

	require.Greater(t, c.EvictionPassesCompleted(), 0)
}
