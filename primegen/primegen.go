// Package primegen implements the generate_prime(bits) oracle the
// cryptosystem treats as an external collaborator. With crypto/rand entropy
// it races a worker pool the way tss-lib's Paillier key generation races
// concurrent safe-prime searches (each worker independently samples and
// Miller-Rabin tests candidates; the first hit wins). With a fixed seed it
// instead walks a single deterministic HKDF-expanded candidate stream, so
// repeated calls with the same seed and bit length are reproducible
// byte-for-byte, which a racing pool can never guarantee since the winning
// worker depends on scheduling.
package primegen

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"
	"runtime"
	"sync"

	"github.com/onionoram/onionoram/oramerrors"
	"golang.org/x/crypto/hkdf"
)

// millerRabinRounds bounds the false-positive probability of ProbablyPrime
// at roughly 4^-rounds; 20 matches the conservative end of what crypto/rand
// itself uses internally for RSA-sized primes.
const millerRabinRounds = 20

// Generate returns a probable prime of the given bit length. A non-nil seed
// makes the search deterministic (for reproducible tests); a nil seed draws
// straight from crypto/rand across a worker pool sized to NumCPU.
func Generate(ctx context.Context, bits int, seed []byte) (*big.Int, error) {
	if bits < 2 {
		return nil, oramerrors.NewInvariantViolation("primegen: bits must be >= 2, got %d", bits)
	}
	if seed != nil {
		return generateSequential(ctx, bits, seed)
	}
	return generateConcurrent(ctx, bits)
}

// generateSequential walks one HKDF-SHA256 expanded candidate stream. Same
// seed and bits always produce the same prime.
func generateSequential(ctx context.Context, bits int, seed []byte) (*big.Int, error) {
	reader := hkdf.New(sha256.New, seed, nil, []byte("onionoram-primegen"))
	for {
		select {
		case <-ctx.Done():
			return nil, oramerrors.NewExternalFailure("prime oracle", ctx.Err())
		default:
		}
		candidate, err := rand.Prime(reader, bits)
		if err != nil {
			return nil, oramerrors.NewExternalFailure("prime oracle", err)
		}
		if candidate.ProbablyPrime(millerRabinRounds) {
			return candidate, nil
		}
	}
}

// generateConcurrent races NumCPU workers against crypto/rand, each
// sampling and testing candidates independently; the first probable prime
// found wins and the rest are abandoned.
func generateConcurrent(ctx context.Context, bits int) (*big.Int, error) {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	found := make(chan *big.Int, workers)
	errs := make(chan error, workers)
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-searchCtx.Done():
					return
				default:
				}
				candidate, err := rand.Prime(rand.Reader, bits)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
				if candidate.ProbablyPrime(millerRabinRounds) {
					select {
					case found <- candidate:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(found)
		close(errs)
	}()

	select {
	case p, ok := <-found:
		if ok {
			return p, nil
		}
	case <-ctx.Done():
		cancel()
		return nil, oramerrors.NewExternalFailure("prime oracle", ctx.Err())
	}

	select {
	case err := <-errs:
		if err != nil {
			return nil, oramerrors.NewExternalFailure("prime oracle", err)
		}
	default:
	}
	return nil, oramerrors.NewExternalFailure("prime oracle", io.ErrUnexpectedEOF)
}
