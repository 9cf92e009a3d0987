// Package randsrc provides the injectable randomness seam the cryptosystem
// and client draw coins from. Production code should use System; tests
// that need reproducible runs use Deterministic, a blake3-XOF-driven stream
// seeded from a fixed key, the same "hash as a keyed PRNG" construction
// used elsewhere to give multiparty protocols a deterministically
// reproducible common random string.
package randsrc

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/zeebo/blake3"
)

// Source is the randomness oracle consumed by key generation, encryption,
// and the ORAM client: a uniform bit-length draw and a uniform bounded
// integer draw, the only two primitives the protocol needs.
type Source interface {
	// RandomBits returns a uniformly random nonnegative integer strictly
	// less than 2^k.
	RandomBits(k int) *big.Int
	// RandomInt returns a uniformly random integer in [lo, hi].
	RandomInt(lo, hi int64) int64
}

// System is the default Source, backed by crypto/rand.
type System struct{}

// RandomBits returns a uniformly random value in [0, 2^k).
func (System) RandomBits(k int) *big.Int {
	if k <= 0 {
		return big.NewInt(0)
	}
	buf := make([]byte, (k+7)/8)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic("randsrc: crypto/rand failed: " + err.Error())
	}
	v := new(big.Int).SetBytes(buf)
	return maskBits(v, k)
}

// RandomInt returns a uniformly random value in [lo, hi].
func (System) RandomInt(lo, hi int64) int64 {
	if hi < lo {
		panic("randsrc: RandomInt called with hi < lo")
	}
	span := hi - lo + 1
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		panic("randsrc: crypto/rand failed: " + err.Error())
	}
	return lo + n.Int64()
}

// Deterministic is a reproducible Source for tests: it expands a fixed seed
// through blake3's extendable output function, so two runs built with the
// same seed draw byte-for-byte identical coins.
type Deterministic struct {
	xof *blake3.Hasher
}

// NewDeterministic builds a Deterministic source from an arbitrary-length
// seed.
func NewDeterministic(seed []byte) *Deterministic {
	h := blake3.New()
	_, _ = h.Write(seed)
	return &Deterministic{xof: h}
}

func (d *Deterministic) read(n int) []byte {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.xof.Digest(), buf); err != nil {
		panic("randsrc: blake3 XOF read failed: " + err.Error())
	}
	// Re-key the hasher state with the bytes just emitted so the next read
	// advances instead of repeating the same output window.
	_, _ = d.xof.Write(buf)
	return buf
}

// RandomBits returns a deterministic value in [0, 2^k).
func (d *Deterministic) RandomBits(k int) *big.Int {
	if k <= 0 {
		return big.NewInt(0)
	}
	buf := d.read((k + 7) / 8)
	v := new(big.Int).SetBytes(buf)
	return maskBits(v, k)
}

// RandomInt returns a deterministic value in [lo, hi].
func (d *Deterministic) RandomInt(lo, hi int64) int64 {
	if hi < lo {
		panic("randsrc: RandomInt called with hi < lo")
	}
	span := big.NewInt(hi - lo + 1)
	bits := span.BitLen() + 8
	candidate := d.RandomBits(bits)
	m := new(big.Int).Mod(candidate, span)
	return lo + m.Int64()
}

func maskBits(v *big.Int, k int) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(k)), big.NewInt(1))
	return new(big.Int).And(v, mask)
}
