// Package oram implements the plaintext bucket-tree store: Block, Bucket,
// Server, and a NonEncServerWrapper that lets the client protocol run
// against plaintext chunks for fast tests and for Onion-ORAM's
// own E1 reference scenario. The encrypted variant lives in package
// encoram.
package oram

import "math/big"

// DummyAddress is the sentinel address marking an empty block slot.
const DummyAddress = -1

// Block is a single addressable unit of the ORAM: a logical address (or
// DummyAddress), the leaf-relative index it is committed to evict toward,
// and a fixed-length ordered sequence of chunk values.
type Block struct {
	Address    int64
	LeafTarget int64
	Chunks     []*big.Int
}

// NewDummyBlock returns an empty block slot.
func NewDummyBlock() Block {
	return Block{Address: DummyAddress, LeafTarget: DummyAddress, Chunks: nil}
}

// NewBlock returns a valid block with freshly zeroed chunks.
func NewBlock(chunksPerBlock int, address, leafTarget int64) Block {
	chunks := make([]*big.Int, chunksPerBlock)
	for i := range chunks {
		chunks[i] = big.NewInt(0)
	}
	return Block{Address: address, LeafTarget: leafTarget, Chunks: chunks}
}

// IsDummy reports whether the block is an empty slot.
func (b Block) IsDummy() bool {
	return b.Address < 0
}

// Clone deep-copies the block so no slice aliasing survives across the
// client/server boundary.
func (b Block) Clone() Block {
	if b.Chunks == nil {
		return Block{Address: b.Address, LeafTarget: b.LeafTarget}
	}
	chunks := make([]*big.Int, len(b.Chunks))
	for i, c := range b.Chunks {
		chunks[i] = new(big.Int).Set(c)
	}
	return Block{Address: b.Address, LeafTarget: b.LeafTarget, Chunks: chunks}
}
