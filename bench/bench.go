// Package bench runs randomized access workloads against a client.Client
// and summarizes op latencies. It is an external collaborator in the same
// sense as the randomness source and prime oracle: it only calls the
// client's public API, never reaches into client or wrapper internals.
package bench

import (
	"math/big"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/onionoram/onionoram/client"
	"github.com/onionoram/onionoram/oramerrors"
	"github.com/onionoram/onionoram/randsrc"
)

// Sample records one access call's op kind and wall-clock latency.
type Sample struct {
	Op      client.Operation
	Latency time.Duration
}

// Report summarizes a batch of samples.
type Report struct {
	Count     int
	Mean      time.Duration
	Median    time.Duration
	P95       time.Duration
	P99       time.Duration
	Evictions int
}

// Run drives ops randomized read/write accesses against c, mixing writes
// that seed a block with fresh chunks and reads that fetch whatever was last
// written for a block it has already touched (each access picks a random
// block; a block not yet written is always written). It returns a Report
// summarizing the latency distribution via montanaflynn/stats.
func Run(c *client.Client, ops int, chunksPerBlock int, src randsrc.Source) (Report, error) {
	if ops <= 0 {
		return Report{}, oramerrors.NewInvariantViolation("bench.Run: ops must be positive, got %d", ops)
	}

	samples := make([]Sample, 0, ops)
	written := make(map[int64]bool)
	evictionsBefore := evictionPassesSoFar(c)

	for i := 0; i < ops; i++ {
		blockID := src.RandomInt(0, int64(c.TotalBlocks)-1)
		op := client.Write
		if written[blockID] && src.RandomInt(0, 1) == 1 {
			op = client.Read
		}

		var newChunks []*big.Int
		if op == client.Write {
			newChunks = randomChunks(chunksPerBlock, src)
			written[blockID] = true
		}

		start := time.Now()
		_, err := c.Access(blockID, op, newChunks)
		elapsed := time.Since(start)
		if err != nil {
			return Report{}, err
		}
		samples = append(samples, Sample{Op: op, Latency: elapsed})
	}

	return summarize(samples, evictionPassesSoFar(c)-evictionsBefore)
}

func randomChunks(n int, src randsrc.Source) []*big.Int {
	chunks := make([]*big.Int, n)
	for i := range chunks {
		chunks[i] = src.RandomBits(32)
	}
	return chunks
}

func evictionPassesSoFar(c *client.Client) int {
	return c.EvictionPassesCompleted()
}

func summarize(samples []Sample, evictions int) (Report, error) {
	latencies := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		latencies[i] = float64(s.Latency.Nanoseconds())
	}

	mean, err := stats.Mean(latencies)
	if err != nil {
		return Report{}, oramerrors.NewExternalFailure("stats", err)
	}
	median, err := stats.Median(latencies)
	if err != nil {
		return Report{}, oramerrors.NewExternalFailure("stats", err)
	}
	p95, err := stats.Percentile(latencies, 95)
	if err != nil {
		return Report{}, oramerrors.NewExternalFailure("stats", err)
	}
	p99, err := stats.Percentile(latencies, 99)
	if err != nil {
		return Report{}, oramerrors.NewExternalFailure("stats", err)
	}

	return Report{
		Count:     len(samples),
		Mean:      time.Duration(mean),
		Median:    time.Duration(median),
		P95:       time.Duration(p95),
		P99:       time.Duration(p99),
		Evictions: evictions,
	}, nil
}
