package oram

// Bucket is a fixed-length ordered sequence of blocks. Block positions are
// stable; dummies are never compacted out of the slice.
type Bucket struct {
	Blocks []Block
}

// NewBucket returns a bucket of blocksPerBucket dummy blocks.
func NewBucket(blocksPerBucket int) Bucket {
	blocks := make([]Block, blocksPerBucket)
	for i := range blocks {
		blocks[i] = NewDummyBlock()
	}
	return Bucket{Blocks: blocks}
}
