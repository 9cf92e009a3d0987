// Package encoram implements the encrypted server wrapper of the
// Onion-ORAM protocol: it owns a bucket tree of ciphertexts and translates
// between the client's plaintext view (addresses, leaf targets, chunks) and
// the layered Damgård–Jurik ciphertexts actually stored at each bucket.
//
// Block metadata (address, leaf target) is always a single onion layer over
// plaintext space 1. Chunks are stored at plaintext space RootPlainSpace
// and current space RootPlainSpace + onionLayers(bucket), where
// onionLayers counts 1 at the root and one more per level down, so a chunk
// picks up exactly one additional onion layer each time it is pushed one
// level deeper by eviction.
package encoram

import (
	"math/big"

	"github.com/onionoram/onionoram/damgardjurik"
	"github.com/onionoram/onionoram/oram"
	"github.com/onionoram/onionoram/oramerrors"
	"github.com/onionoram/onionoram/randsrc"
)

// addressPlaintextSpace is the fixed plaintext space metadata (address,
// leaf target) is always encrypted at, one onion layer up.
const addressPlaintextSpace = 1

// encBlock is a bucket slot storing ciphertexts. Address == nil marks the
// slot dummy, mirroring oram.DummyAddress without forcing a ciphertext-sized
// value into an int64.
type encBlock struct {
	Address    *big.Int
	LeafTarget *big.Int
	Chunks     []*big.Int
}

func (b encBlock) isDummy() bool {
	return b.Address == nil
}

type encBucket struct {
	Blocks []encBlock
}

// EncServerWrapper owns the encrypted bucket tree.
type EncServerWrapper struct {
	TotalLevels     int
	BlocksPerBucket int
	ChunksPerBlock  int
	RootPlainSpace  int

	Pub  *damgardjurik.PublicKey
	Priv *damgardjurik.PrivateKey
	Src  randsrc.Source

	buckets []encBucket
}

// NewEncServerWrapper builds an empty encrypted tree of totalLevels levels.
func NewEncServerWrapper(totalLevels, blocksPerBucket, chunksPerBlock, rootPlainSpace int, pub *damgardjurik.PublicKey, priv *damgardjurik.PrivateKey, src randsrc.Source) *EncServerWrapper {
	totalBuckets := (1 << uint(totalLevels+1)) - 1
	buckets := make([]encBucket, totalBuckets)
	for i := range buckets {
		blocks := make([]encBlock, blocksPerBucket)
		buckets[i] = encBucket{Blocks: blocks}
	}
	return &EncServerWrapper{
		TotalLevels:     totalLevels,
		BlocksPerBucket: blocksPerBucket,
		ChunksPerBlock:  chunksPerBlock,
		RootPlainSpace:  rootPlainSpace,
		Pub:             pub,
		Priv:            priv,
		Src:             src,
		buckets:         buckets,
	}
}

// onionLayers counts the onion layers a chunk at bucketID carries: 1 at the
// root, one more per step down (so bucketID's depth-from-root, 1-indexed).
func (w *EncServerWrapper) onionLayers(bucketID int) int {
	res := 1
	for bucketID > 0 {
		bucketID = (bucketID - 1) / 2
		res++
	}
	return res
}

func (w *EncServerWrapper) pathBucketIDs(target int) []int {
	bucketAt := target + (1 << uint(w.TotalLevels)) - 1
	ids := make([]int, 0, w.TotalLevels+1)
	for i := 0; i <= w.TotalLevels; i++ {
		ids = append(ids, bucketAt)
		bucketAt = (bucketAt - 1) / 2
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// GetAddresses decrypts and returns the address field of every block on
// the path to target, in root-to-leaf order. Dummy slots pass through as
// oram.DummyAddress.
func (w *EncServerWrapper) GetAddresses(target int) ([]int, [][]int64, error) {
	buckets := w.pathBucketIDs(target)
	addresses := make([][]int64, len(buckets))
	for i, bucketID := range buckets {
		row := make([]int64, w.BlocksPerBucket)
		for j := 0; j < w.BlocksPerBucket; j++ {
			blk := w.buckets[bucketID].Blocks[j]
			if blk.isDummy() {
				row[j] = oram.DummyAddress
				continue
			}
			a, err := w.decryptMetadata(blk.Address)
			if err != nil {
				return nil, nil, err
			}
			row[j] = a.Int64()
		}
		addresses[i] = row
	}
	return buckets, addresses, nil
}

// SetAddresses re-encrypts and writes the address field at every listed
// bucket position. A negative address writes the dummy sentinel.
func (w *EncServerWrapper) SetAddresses(buckets []int, addresses [][]int64) error {
	for i, bucketID := range buckets {
		for j := 0; j < w.BlocksPerBucket; j++ {
			if addresses[i][j] < 0 {
				w.buckets[bucketID].Blocks[j].Address = nil
				continue
			}
			enc, err := w.encryptMetadata(big.NewInt(addresses[i][j]))
			if err != nil {
				return err
			}
			w.buckets[bucketID].Blocks[j].Address = enc
		}
	}
	return nil
}

func (w *EncServerWrapper) encryptMetadata(x *big.Int) (*big.Int, error) {
	p := damgardjurik.NewPayload(x, w.Pub, addressPlaintextSpace, addressPlaintextSpace).LiftOnce(w.Src)
	return p.X, nil
}

func (w *EncServerWrapper) decryptMetadata(c *big.Int) (*big.Int, error) {
	p := damgardjurik.NewPayload(c, w.Pub, addressPlaintextSpace, addressPlaintextSpace+1)
	plain, err := p.GetPlaintext(w.Priv)
	if err != nil {
		return nil, err
	}
	return plain.X, nil
}

// SelectBlock performs the oblivious select: selectVector must hold exactly
// one 1 across all non-dummy positions in the listed buckets. Returns the
// decrypted chunks of that one block.
func (w *EncServerWrapper) SelectBlock(bucketIDs []int, selectVector [][]int) ([]*big.Int, error) {
	maxOnionLayers := 0
	for _, b := range bucketIDs {
		if l := w.onionLayers(b); l > maxOnionLayers {
			maxOnionLayers = l
		}
	}
	maxOnionLayers += w.RootPlainSpace

	var selectors []damgardjurik.Payload
	nonDummy := 0
	for i, bucketID := range bucketIDs {
		for j := 0; j < w.BlocksPerBucket; j++ {
			bit := selectVector[i][j]
			if bit != 0 && bit != 1 {
				return nil, oramerrors.NewInvariantViolation("SelectBlock: select vector entries must be 0 or 1")
			}
			if w.buckets[bucketID].Blocks[j].isDummy() {
				continue
			}
			nonDummy++
			p := damgardjurik.NewPayload(big.NewInt(int64(bit)), w.Pub, maxOnionLayers, maxOnionLayers).LiftOnce(w.Src)
			selectors = append(selectors, p)
		}
	}
	if nonDummy == 0 {
		return nil, oramerrors.NewInvariantViolation("SelectBlock: no non-dummy positions to select over")
	}

	selectedChunks := make([]*big.Int, w.ChunksPerBlock)
	for c := 0; c < w.ChunksPerBlock; c++ {
		var payloads []damgardjurik.Payload
		for _, bucketID := range bucketIDs {
			layers := w.onionLayers(bucketID)
			for j := 0; j < w.BlocksPerBucket; j++ {
				blk := w.buckets[bucketID].Blocks[j]
				if blk.isDummy() {
					continue
				}
				// Lift to the deepest listed bucket's layer count so every
				// payload lines up with the selectors, even when that
				// bucket holds only dummies.
				payloads = append(payloads, damgardjurik.NewPayload(
					blk.Chunks[c], w.Pub, w.RootPlainSpace, w.RootPlainSpace+layers).
					LiftBy(maxOnionLayers-w.RootPlainSpace-layers, w.Src))
			}
		}
		res, err := damgardjurik.HomomorphicSelect(payloads, selectors, w.Src)
		if err != nil {
			return nil, err
		}
		plain, err := res.GetPlaintext(w.Priv)
		if err != nil {
			return nil, err
		}
		selectedChunks[c] = plain.X
	}
	return selectedChunks, nil
}

// IsDummy reports whether the given slot is empty.
func (w *EncServerWrapper) IsDummy(bucketID, blockID int) bool {
	return w.buckets[bucketID].Blocks[blockID].isDummy()
}

// GetMetadata decrypts and returns (address, leafTarget, chunksPerBlock)
// for the given slot.
func (w *EncServerWrapper) GetMetadata(bucketID, blockID int) (int64, int64, int, error) {
	blk := w.buckets[bucketID].Blocks[blockID]
	address, err := w.decryptMetadata(blk.Address)
	if err != nil {
		return 0, 0, 0, err
	}
	leafTarget, err := w.decryptMetadata(blk.LeafTarget)
	if err != nil {
		return 0, 0, 0, err
	}
	return address.Int64(), leafTarget.Int64(), w.ChunksPerBlock, nil
}

// GetBlock decrypts and returns a plaintext view of the block at
// (bucketID, blockID).
func (w *EncServerWrapper) GetBlock(bucketID, blockID int) (oram.Block, error) {
	blk := w.buckets[bucketID].Blocks[blockID]
	if blk.isDummy() {
		return oram.NewDummyBlock(), nil
	}
	address, leafTarget, _, err := w.GetMetadata(bucketID, blockID)
	if err != nil {
		return oram.Block{}, err
	}
	layers := w.onionLayers(bucketID)
	chunks := make([]*big.Int, w.ChunksPerBlock)
	for c, x := range blk.Chunks {
		p := damgardjurik.NewPayload(x, w.Pub, w.RootPlainSpace, w.RootPlainSpace+layers)
		plain, err := p.GetPlaintext(w.Priv)
		if err != nil {
			return oram.Block{}, err
		}
		chunks[c] = plain.X
	}
	return oram.Block{Address: address, LeafTarget: leafTarget, Chunks: chunks}, nil
}

// Invalidate marks the given slot dummy and drops its chunks.
func (w *EncServerWrapper) Invalidate(bucketID, blockID int) error {
	w.buckets[bucketID].Blocks[blockID] = encBlock{}
	return nil
}

// SetBlock encrypts block's metadata and chunks and writes them at
// (bucketID, blockID): metadata at one onion layer over plaintext space 1,
// chunks lifted onionLayers(bucketID) times from RootPlainSpace.
func (w *EncServerWrapper) SetBlock(bucketID, blockID int, block oram.Block) error {
	encAddress, err := w.encryptMetadata(big.NewInt(block.Address))
	if err != nil {
		return err
	}
	encLeaf, err := w.encryptMetadata(big.NewInt(block.LeafTarget))
	if err != nil {
		return err
	}

	layers := w.onionLayers(bucketID)
	chunks := make([]*big.Int, len(block.Chunks))
	for c, x := range block.Chunks {
		p := damgardjurik.NewPayload(x, w.Pub, w.RootPlainSpace, w.RootPlainSpace).LiftBy(layers, w.Src)
		chunks[c] = p.X
	}

	w.buckets[bucketID].Blocks[blockID] = encBlock{
		Address:    encAddress,
		LeafTarget: encLeaf,
		Chunks:     chunks,
	}
	return nil
}
