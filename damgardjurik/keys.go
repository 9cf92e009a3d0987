// Package damgardjurik implements a generalized Paillier cryptosystem with a
// configurable plaintext-space exponent (Damgård–Jurik), layered so a
// ciphertext can be "lifted" through successive onion layers and "dropped"
// back down. This is the cryptographic core the Onion-ORAM client and its
// encrypted server wrapper are built on.
package damgardjurik

import (
	"context"
	"math/big"
	"sync"

	"github.com/onionoram/onionoram/bignum"
	"github.com/onionoram/onionoram/primegen"
)

// PublicKey is the immutable key identity (N, base plaintext-space exponent
// S0) plus two append-only, content-derived caches: powers of N and inverse
// factorials modulo those powers. The caches never affect equality or the
// key's logical identity; they exist purely so repeated Encrypt/Decrypt
// calls at the same layer don't recompute the same big.Int exponentiation.
type PublicKey struct {
	N    *big.Int
	S0   int
	Bits int

	mu           sync.Mutex
	nPow         []*big.Int
	invFactorial map[invFactorialKey]*big.Int
}

type invFactorialKey struct {
	i, j int
}

// NewPublicKey builds a PublicKey around modulus n and base plaintext-space
// exponent s0, seeding the power cache with n^0 = 1 and n^1 = n.
func NewPublicKey(n *big.Int, s0 int) *PublicKey {
	return &PublicKey{
		N:            n,
		S0:           s0,
		Bits:         bignum.BitLen(n),
		nPow:         []*big.Int{big.NewInt(1), n},
		invFactorial: make(map[invFactorialKey]*big.Int),
	}
}

// NPow returns n^i, computed once and memoized.
func (pk *PublicKey) NPow(i int) *big.Int {
	pk.mu.Lock()
	defer pk.mu.Unlock()
	for len(pk.nPow) <= i {
		next := new(big.Int).Mul(pk.nPow[len(pk.nPow)-1], pk.N)
		pk.nPow = append(pk.nPow, next)
	}
	return pk.nPow[i]
}

// InvFactorial returns (i!)^-1 mod n^j, computed once and memoized.
func (pk *PublicKey) InvFactorial(i, j int) *big.Int {
	key := invFactorialKey{i, j}

	pk.mu.Lock()
	if v, ok := pk.invFactorial[key]; ok {
		pk.mu.Unlock()
		return v
	}
	pk.mu.Unlock()

	fact := big.NewInt(1)
	for k := 2; k <= i; k++ {
		fact.Mul(fact, big.NewInt(int64(k)))
	}
	res := bignum.ModInverse(fact, pk.NPow(j))

	pk.mu.Lock()
	pk.invFactorial[key] = res
	pk.mu.Unlock()
	return res
}

// PrivateKey holds the factorization of N and a memoizing cache of the CRT
// decryption exponent d(s) for each layer s it has been asked to decrypt at.
type PrivateKey struct {
	N, P, Q *big.Int

	mu     sync.Mutex
	dCache map[int]*big.Int
}

// NewPrivateKey builds a PrivateKey from the factorization n = p*q.
func NewPrivateKey(n, p, q *big.Int) *PrivateKey {
	return &PrivateKey{
		N: n, P: p, Q: q,
		dCache: make(map[int]*big.Int),
	}
}

// D returns d(s), the unique integer with d ≡ 1 (mod n^s) and d ≡ 0 (mod
// λ), where λ = lcm(p-1, q-1), obtained by CRT over the coprime moduli n^s
// and λ. pub supplies the memoized power-of-n cache.
func (priv *PrivateKey) D(pub *PublicKey, s int) *big.Int {
	priv.mu.Lock()
	if v, ok := priv.dCache[s]; ok {
		priv.mu.Unlock()
		return v
	}
	priv.mu.Unlock()

	pMinus1 := new(big.Int).Sub(priv.P, big.NewInt(1))
	qMinus1 := new(big.Int).Sub(priv.Q, big.NewInt(1))
	lambda := bignum.LCM(pMinus1, qMinus1)

	d := bignum.CRT(
		[]*big.Int{pub.NPow(s), lambda},
		[]*big.Int{big.NewInt(1), big.NewInt(0)},
	)

	priv.mu.Lock()
	priv.dCache[s] = d
	priv.mu.Unlock()
	return d
}

// GenerateKeypair samples two primes of bits/2 bits each via the prime
// oracle, forms n = p*q, and returns the resulting PublicKey/PrivateKey pair
// at base plaintext-space exponent s0. No attempt is made here to enforce
// that every random r used by Encrypt is invertible mod n^{s+1}: for
// production-sized primes it always is, and Encrypt carries its own
// rejection loop to tolerate the tiny toy primes used in tests.
func GenerateKeypair(ctx context.Context, bits, s0 int, seed []byte) (*PublicKey, *PrivateKey, error) {
	p, err := primegen.Generate(ctx, bits/2, seed)
	if err != nil {
		return nil, nil, err
	}
	q, err := primegen.Generate(ctx, bits/2, reseed(seed))
	if err != nil {
		return nil, nil, err
	}
	n := new(big.Int).Mul(p, q)
	return NewPublicKey(n, s0), NewPrivateKey(n, p, q), nil
}

// reseed derives a distinct deterministic seed for the second prime search
// so GenerateKeypair never asks the oracle for p and q from the same
// stream (which would make q == p a live possibility under a seeded,
// deterministic oracle).
func reseed(seed []byte) []byte {
	if seed == nil {
		return nil
	}
	out := make([]byte, len(seed)+1)
	copy(out, seed)
	out[len(seed)] = 0x01
	return out
}
