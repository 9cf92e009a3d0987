package oram

// Server is a complete binary tree of buckets, stored as a linear array:
// root at index 0, children of node i at 2i+1 and 2i+2, parent at (i-1)/2.
// Leaves occupy indices 2^L - 1 .. 2^{L+1} - 2 for tree height L.
type Server struct {
	TotalLevels     int
	BlocksPerBucket int
	ChunksPerBlock  int
	Buckets         []Bucket
}

// NewServer builds the bucket array for a tree of totalLevels levels
// (2^{totalLevels+1} - 1 buckets total).
func NewServer(totalLevels, blocksPerBucket, chunksPerBlock int) *Server {
	totalBuckets := (1 << uint(totalLevels+1)) - 1
	buckets := make([]Bucket, totalBuckets)
	for i := range buckets {
		buckets[i] = NewBucket(blocksPerBucket)
	}
	return &Server{
		TotalLevels:     totalLevels,
		BlocksPerBucket: blocksPerBucket,
		ChunksPerBlock:  chunksPerBlock,
		Buckets:         buckets,
	}
}

// GetAddresses returns the root-to-leaf bucket ids and the address field of
// every block on the path to leaf target, in root-to-leaf order.
func (s *Server) GetAddresses(target int) ([]int, [][]int64) {
	bucketAt := target + (1 << uint(s.TotalLevels)) - 1

	buckets := make([]int, 0, s.TotalLevels+1)
	addresses := make([][]int64, 0, s.TotalLevels+1)
	for i := 0; i <= s.TotalLevels; i++ {
		buckets = append(buckets, bucketAt)
		row := make([]int64, s.BlocksPerBucket)
		for j, b := range s.Buckets[bucketAt].Blocks {
			row[j] = b.Address
		}
		addresses = append(addresses, row)
		bucketAt = (bucketAt - 1) / 2
	}
	reverseInts(buckets)
	reverseRows(addresses)
	return buckets, addresses
}

// SetAddresses overwrites the address field of every listed bucket
// position. address < 0 marks the slot dummy.
func (s *Server) SetAddresses(buckets []int, addresses [][]int64) {
	for i, bucket := range buckets {
		for j := 0; j < s.BlocksPerBucket; j++ {
			s.Buckets[bucket].Blocks[j].Address = addresses[i][j]
		}
	}
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseRows(s [][]int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
