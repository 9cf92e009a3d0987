package oram

import (
	"math/big"

	"github.com/onionoram/onionoram/oramerrors"
)

// NonEncServerWrapper runs the Onion-ORAM client protocol directly over
// plaintext blocks. It is the pedagogical/fast-path stand-in for
// encoram.EncServerWrapper: same interface, no modular exponentiation, used
// by scenario E1 and by unit tests of the client's tree and eviction logic.
type NonEncServerWrapper struct {
	Server         *Server
	ChunksPerBlock int
}

// NewNonEncServerWrapper builds a plaintext wrapper around a fresh Server.
func NewNonEncServerWrapper(totalLevels, blocksPerBucket, chunksPerBlock int) *NonEncServerWrapper {
	return &NonEncServerWrapper{
		Server:         NewServer(totalLevels, blocksPerBucket, chunksPerBlock),
		ChunksPerBlock: chunksPerBlock,
	}
}

// GetAddresses returns the path to target, unchanged (no decryption needed).
func (w *NonEncServerWrapper) GetAddresses(target int) ([]int, [][]int64, error) {
	buckets, addresses := w.Server.GetAddresses(target)
	return buckets, addresses, nil
}

// SetAddresses overwrites the address fields along the given path.
func (w *NonEncServerWrapper) SetAddresses(buckets []int, addresses [][]int64) error {
	w.Server.SetAddresses(buckets, addresses)
	return nil
}

// SelectBlock returns the chunks of the single non-dummy slot selected by
// selectVector, which must contain exactly one 1 across all listed
// positions.
func (w *NonEncServerWrapper) SelectBlock(bucketIDs []int, selectVector [][]int) ([]*big.Int, error) {
	blocksPerBucket := w.Server.BlocksPerBucket
	if len(selectVector) != len(bucketIDs) {
		return nil, oramerrors.NewInvariantViolation("SelectBlock: select vector rows (%d) != bucket ids (%d)", len(selectVector), len(bucketIDs))
	}

	var chosen []*big.Int
	matches := 0
	for i, bucketID := range bucketIDs {
		if len(selectVector[i]) != blocksPerBucket {
			return nil, oramerrors.NewInvariantViolation("SelectBlock: select vector row width mismatch")
		}
		for j := 0; j < blocksPerBucket; j++ {
			bit := selectVector[i][j]
			if bit != 0 && bit != 1 {
				return nil, oramerrors.NewInvariantViolation("SelectBlock: select vector entries must be 0 or 1")
			}
			if bit == 1 {
				matches++
				chosen = w.Server.Buckets[bucketID].Blocks[j].Clone().Chunks
			}
		}
	}
	if matches != 1 {
		return nil, oramerrors.NewInvariantViolation("SelectBlock: select vector must contain exactly one 1, found %d", matches)
	}
	return chosen, nil
}

// IsDummy reports whether the given slot is empty.
func (w *NonEncServerWrapper) IsDummy(bucketID, blockID int) bool {
	return w.Server.Buckets[bucketID].Blocks[blockID].IsDummy()
}

// GetBlock returns a deep copy of the block at (bucketID, blockID).
func (w *NonEncServerWrapper) GetBlock(bucketID, blockID int) (Block, error) {
	return w.Server.Buckets[bucketID].Blocks[blockID].Clone(), nil
}

// GetMetadata returns (address, leafTarget, chunksPerBlock) for the given
// slot without decoding (plaintext wrapper has nothing to decode).
func (w *NonEncServerWrapper) GetMetadata(bucketID, blockID int) (int64, int64, int, error) {
	b := w.Server.Buckets[bucketID].Blocks[blockID]
	return b.Address, b.LeafTarget, w.ChunksPerBlock, nil
}

// Invalidate marks the slot dummy and drops its chunks.
func (w *NonEncServerWrapper) Invalidate(bucketID, blockID int) error {
	w.Server.Buckets[bucketID].Blocks[blockID] = NewDummyBlock()
	return nil
}

// SetBlock writes a deep copy of block into the given slot.
func (w *NonEncServerWrapper) SetBlock(bucketID, blockID int, block Block) error {
	w.Server.Buckets[bucketID].Blocks[blockID] = block.Clone()
	return nil
}
