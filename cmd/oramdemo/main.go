// Command oramdemo builds a keypair and an encrypted Onion-ORAM client,
// runs a randomized benchmark workload against it, and prints a latency
// report. It exists purely as ambient tooling exercising the library end
// to end, a standalone driver in the mold of a library's own example main.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/onionoram/onionoram/bench"
	"github.com/onionoram/onionoram/client"
	"github.com/onionoram/onionoram/damgardjurik"
	"github.com/onionoram/onionoram/encoram"
	"github.com/onionoram/onionoram/randsrc"
)

func main() {
	levels := flag.Int("levels", 5, "tree levels (leaf count = 2^levels)")
	blocksPerBucket := flag.Int("bucket-size", 80, "blocks per bucket (Z)")
	chunksPerBlock := flag.Int("chunks", 10, "chunks per block (C)")
	evictionPeriod := flag.Int("eviction-period", 80, "accesses between eviction passes (A); -1 disables eviction")
	keyBits := flag.Int("key-bits", 128, "Damgård–Jurik modulus size in bits")
	rootPlainSpace := flag.Int("root-plain-space", 3, "plaintext-space exponent chunks are stored at")
	ops := flag.Int("ops", 1000, "number of randomized access calls to run")
	deterministic := flag.String("seed", "", "if set, use a deterministic randomness source seeded with this string")
	flag.Parse()

	var src randsrc.Source
	var keySeed []byte
	if *deterministic != "" {
		src = randsrc.NewDeterministic([]byte(*deterministic))
		keySeed = []byte(*deterministic)
	} else {
		src = randsrc.System{}
	}

	pub, priv, err := damgardjurik.GenerateKeypair(context.Background(), *keyBits, *rootPlainSpace, keySeed)
	if err != nil {
		log.Fatalf("oramdemo: key generation failed: %v", err)
	}

	wrapper := encoram.NewEncServerWrapper(*levels, *blocksPerBucket, *chunksPerBlock, *rootPlainSpace, pub, priv, src)

	totalBlocks := (1 << uint(*levels)) * 16
	c, err := client.New(*levels, totalBlocks, *blocksPerBucket, *chunksPerBlock, *evictionPeriod, wrapper, src)
	if err != nil {
		log.Fatalf("oramdemo: client construction failed: %v", err)
	}

	report, err := bench.Run(c, *ops, *chunksPerBlock, src)
	if err != nil {
		log.Fatalf("oramdemo: benchmark run failed: %v", err)
	}

	fmt.Printf("accesses:  %d\n", report.Count)
	fmt.Printf("mean:      %s\n", report.Mean)
	fmt.Printf("median:    %s\n", report.Median)
	fmt.Printf("p95:       %s\n", report.P95)
	fmt.Printf("p99:       %s\n", report.P99)
	fmt.Printf("evictions: %d\n", report.Evictions)
}
