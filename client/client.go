// Package client implements the Onion-ORAM client: the position map, the
// access protocol (oblivious select, root insertion), and periodic
// reverse-bit-order eviction. The client is oblivious to whether it talks
// to oram.NonEncServerWrapper or encoram.EncServerWrapper: both satisfy
// ServerWrapper.
package client

import (
	"math/big"

	"github.com/onionoram/onionoram/oram"
	"github.com/onionoram/onionoram/oramerrors"
	"github.com/onionoram/onionoram/randsrc"
)

// Operation selects the kind of access.
type Operation int

const (
	Read Operation = iota + 1
	Write
)

// ServerWrapper is the interface the client drives, satisfied by both
// oram.NonEncServerWrapper (plaintext) and encoram.EncServerWrapper
// (layered ciphertexts).
type ServerWrapper interface {
	GetAddresses(target int) ([]int, [][]int64, error)
	SetAddresses(buckets []int, addresses [][]int64) error
	SelectBlock(bucketIDs []int, selectVector [][]int) ([]*big.Int, error)
	IsDummy(bucketID, blockID int) bool
	GetBlock(bucketID, blockID int) (oram.Block, error)
	GetMetadata(bucketID, blockID int) (address int64, leafTarget int64, chunksPerBlock int, err error)
	Invalidate(bucketID, blockID int) error
	SetBlock(bucketID, blockID int, block oram.Block) error
}

// Client holds the position map and eviction schedule; the server wrapper
// owns the bucket tree itself.
type Client struct {
	TotalLevels      int
	TotalBlocks      int
	TotalLeafBuckets int
	BlocksPerBucket  int
	ChunksPerBlock   int
	EvictionPeriod   int

	Wrapper ServerWrapper
	Src     randsrc.Source

	positionMap     []int64
	evictionCounter int
	nextEvictedPath int
	evictionPasses  int
}

// EvictionPassesCompleted returns the number of eviction passes run so far,
// for benchmark reporting.
func (c *Client) EvictionPassesCompleted() int {
	return c.evictionPasses
}

// New builds a client over wrapper. EvictionPeriod < 0 disables eviction
// (scenario E1). When eviction is enabled, the root bucket must hold at
// least EvictionPeriod slots (Z >= A) or the write at step 7 of access
// could collide with a non-dummy root slot; this is checked eagerly here
// rather than left to corrupt state on the first write.
func New(totalLevels, totalBlocks, blocksPerBucket, chunksPerBlock, evictionPeriod int, wrapper ServerWrapper, src randsrc.Source) (*Client, error) {
	if evictionPeriod >= 0 && blocksPerBucket < evictionPeriod {
		return nil, oramerrors.NewInvariantViolation(
			"client.New: root bucket size Z=%d must be >= eviction period A=%d", blocksPerBucket, evictionPeriod)
	}
	positionMap := make([]int64, totalBlocks)
	for i := range positionMap {
		positionMap[i] = -1
	}
	return &Client{
		TotalLevels:      totalLevels,
		TotalBlocks:      totalBlocks,
		TotalLeafBuckets: 1 << uint(totalLevels),
		BlocksPerBucket:  blocksPerBucket,
		ChunksPerBlock:   chunksPerBlock,
		EvictionPeriod:   evictionPeriod,
		Wrapper:          wrapper,
		Src:              src,
		positionMap:      positionMap,
	}, nil
}

// isParent reports whether parent is an ancestor of (or equal to) child in
// the bucket tree, root (0) counting as everyone's ancestor.
func isParent(parent, child int) bool {
	if parent == 0 {
		return true
	}
	for child > parent {
		child = (child - 1) / 2
	}
	return child == parent
}

// bitreverse reverses the low numBits bits of value.
func bitreverse(value, numBits int) int {
	res := 0
	for i := 0; i < numBits; i++ {
		if value&(1<<uint(i)) != 0 {
			res |= 1 << uint(numBits-1-i)
		}
	}
	return res
}

// initializeBlock performs the first write to a previously empty logical
// block: it rejection-samples a dummy (bucket, slot), picks a uniformly
// random descendant leaf of that bucket by walking down left/right, and
// writes a zero-chunk block committed to that leaf.
func (c *Client) initializeBlock(blockID int64) error {
	if c.TotalLeafBuckets != 1<<uint(c.TotalLevels) {
		return oramerrors.NewInvariantViolation(
			"initializeBlock: total leaf buckets (%d) must equal 2^total_levels (%d)", c.TotalLeafBuckets, 1<<uint(c.TotalLevels))
	}
	for {
		bucketID := int(c.Src.RandomInt(1, int64(c.TotalLeafBuckets)*2-2))
		slotID := int(c.Src.RandomInt(0, int64(c.BlocksPerBucket)-1))
		if !c.Wrapper.IsDummy(bucketID, slotID) {
			continue
		}
		target := bucketID
		for target*2+2 < c.TotalLeafBuckets*2-1 {
			target = target*2 + int(c.Src.RandomInt(1, 2))
		}
		if !isParent(bucketID, target) {
			return oramerrors.NewInvariantViolation(
				"initializeBlock: sampled bucket %d is not an ancestor of its descendant leaf bucket %d", bucketID, target)
		}
		target -= c.TotalLeafBuckets - 1

		block := oram.NewBlock(c.ChunksPerBlock, blockID, int64(target))
		if err := c.Wrapper.SetBlock(bucketID, slotID, block); err != nil {
			return err
		}
		c.positionMap[blockID] = int64(target)
		return nil
	}
}

// Access runs the full Onion-ORAM access protocol for blockID: on a WRITE
// to an uninitialized block it first calls initializeBlock; it then draws
// a fresh leaf target, obliviously selects the block's current chunks off
// its old path, optionally overwrites them, invalidates the old copy,
// writes the (possibly updated) block at the root, and advances the
// eviction schedule. Returns the read chunks for a READ, nil for a WRITE.
func (c *Client) Access(blockID int64, op Operation, newChunks []*big.Int) ([]*big.Int, error) {
	if blockID < 0 || blockID >= int64(c.TotalBlocks) {
		return nil, oramerrors.NewInvariantViolation("Access: block id %d out of range [0, %d)", blockID, c.TotalBlocks)
	}
	if c.positionMap[blockID] < 0 && op == Write {
		if err := c.initializeBlock(blockID); err != nil {
			return nil, err
		}
	}
	if c.positionMap[blockID] < 0 {
		return nil, oramerrors.ErrUninitializedRead
	}

	newLeafTarget := c.Src.RandomInt(0, int64(c.TotalLeafBuckets)-1)
	leafTarget := c.positionMap[blockID]
	c.positionMap[blockID] = newLeafTarget

	bucketIDs, addresses, err := c.Wrapper.GetAddresses(int(leafTarget))
	if err != nil {
		return nil, err
	}

	selectVector := make([][]int, len(addresses))
	counter := map[int64]int{}
	matches := 0
	for i := range addresses {
		selectVector[i] = make([]int, c.BlocksPerBucket)
		for j := 0; j < c.BlocksPerBucket; j++ {
			a := addresses[i][j]
			counter[a]++
			if counter[a] > 1 && a >= 0 {
				return nil, oramerrors.ErrDuplicateBlockOnPath
			}
			if a == blockID {
				selectVector[i][j] = 1
				addresses[i][j] = -1
				matches++
			}
		}
	}
	if matches != 1 {
		return nil, oramerrors.NewInvariantViolation("Access: expected exactly one matching block on path, found %d", matches)
	}

	chunks, err := c.Wrapper.SelectBlock(bucketIDs, selectVector)
	if err != nil {
		return nil, err
	}
	if op == Write {
		chunks = newChunks
	}

	if err := c.Wrapper.SetAddresses(bucketIDs, addresses); err != nil {
		return nil, err
	}

	newBlock := oram.NewBlock(c.ChunksPerBlock, blockID, newLeafTarget)
	newBlock.Chunks = chunks
	if err := c.Wrapper.SetBlock(0, c.evictionCounter, newBlock); err != nil {
		return nil, err
	}

	c.evictionCounter++
	if c.EvictionPeriod >= 0 && c.evictionCounter == c.EvictionPeriod {
		c.evictionCounter = 0
		if err := c.evictAlongPath(bitreverse(c.nextEvictedPath, c.TotalLevels)); err != nil {
			return nil, err
		}
		c.evictionPasses++
		c.nextEvictedPath++
		if c.nextEvictedPath >= c.TotalBlocks {
			c.nextEvictedPath -= c.TotalBlocks
		}
	}

	if op == Read {
		return chunks, nil
	}
	return nil, nil
}

// evictAlongPath pushes every non-leaf bucket on the root-to-leaf walk
// toward leafTarget, in root-to-leaf order.
func (c *Client) evictAlongPath(leafTarget int) error {
	at := leafTarget + (1 << uint(c.TotalLevels)) - 1
	nodes := make([]int, 0, c.TotalLevels+1)
	for i := 0; i <= c.TotalLevels; i++ {
		nodes = append(nodes, at)
		at = (at - 1) / 2
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for _, source := range nodes[:len(nodes)-1] {
		if err := c.push(source); err != nil {
			return err
		}
	}
	return nil
}

// push performs one parent->child eviction step: every non-dummy block in
// source is obliviously moved to the next free slot in whichever child
// subtree contains its committed leaf.
func (c *Client) push(source int) error {
	if source < 0 || source >= (1<<uint(c.TotalLevels))-1 {
		return oramerrors.NewInvariantViolation("push: source bucket %d out of range for a non-leaf node", source)
	}
	children := [2]int{source*2 + 1, source*2 + 2}
	nextIndex := [2]int{0, 0}

	for blockIndex := 0; blockIndex < c.BlocksPerBucket; blockIndex++ {
		if c.Wrapper.IsDummy(source, blockIndex) {
			continue
		}
		address, leafTarget, _, err := c.Wrapper.GetMetadata(source, blockIndex)
		if err != nil {
			return err
		}
		target := leafTarget + (1<<uint(c.TotalLevels) - 1)

		leftIsAncestor := isParent(children[0], target)
		rightIsAncestor := isParent(children[1], target)
		if leftIsAncestor == rightIsAncestor {
			return oramerrors.NewInvariantViolation(
				"push: exactly one child must be an ancestor of leaf %d, got left=%v right=%v", target, leftIsAncestor, rightIsAncestor)
		}
		goesTo := 0
		if !leftIsAncestor {
			goesTo = 1
		}

		for nextIndex[goesTo] < c.BlocksPerBucket && !c.Wrapper.IsDummy(children[goesTo], nextIndex[goesTo]) {
			nextIndex[goesTo]++
		}
		if nextIndex[goesTo] == c.BlocksPerBucket {
			return oramerrors.ErrEvictionOverflow
		}

		buckets := []int{source, children[goesTo]}
		selectVector := [][]int{
			make([]int, c.BlocksPerBucket),
			make([]int, c.BlocksPerBucket),
		}
		selectVector[0][blockIndex] = 1
		chunks, err := c.Wrapper.SelectBlock(buckets, selectVector)
		if err != nil {
			return err
		}

		newBlock := oram.NewBlock(c.ChunksPerBlock, address, leafTarget)
		newBlock.Chunks = chunks
		if err := c.Wrapper.SetBlock(children[goesTo], nextIndex[goesTo], newBlock); err != nil {
			return err
		}
		nextIndex[goesTo]++
		if err := c.Wrapper.Invalidate(source, blockIndex); err != nil {
			return err
		}
	}
	return nil
}
