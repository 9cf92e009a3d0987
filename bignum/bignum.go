// Package bignum collects the arbitrary-precision helpers the layered
// cryptosystem is built on: gcd, lcm, modular inverse, modular exponentiation
// and the Chinese Remainder Theorem over pairwise-coprime moduli.
//
// Everything here operates on nonnegative integers. Division is always floor
// division on nonnegative operands; none of these helpers are meant to be fed
// negative big.Ints.
package bignum

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

// GCD returns the greatest common divisor of a and b. GCD(0, x) = x and
// GCD(x, 0) = x, matching math/big.Int.GCD's convention.
func GCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, abs(a), abs(b))
}

// LCM returns the least common multiple of a and b.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	g := GCD(a, b)
	quotient := new(big.Int).Div(a, g)
	return new(big.Int).Mul(quotient, b)
}

// ModInverse returns the inverse of a modulo m, i.e. the unique x in
// [0, m) such that a*x ≡ 1 (mod m). Returns nil if a has no inverse mod m.
func ModInverse(a, m *big.Int) *big.Int {
	return new(big.Int).ModInverse(a, m)
}

// ModPow returns base^exponent mod modulus via right-to-left
// square-and-multiply (math/big.Int.Exp already implements this; ModPow
// exists so callers in this module never reach for math/big directly and so
// the floor-division convention stays in one place).
func ModPow(base, exponent, modulus *big.Int) *big.Int {
	return new(big.Int).Exp(base, exponent, modulus)
}

// CRT solves the system x ≡ remainders[i] (mod moduli[i]) for all i, and
// returns the unique solution in [0, prod(moduli)). Moduli are assumed
// pairwise coprime; the caller is responsible for that precondition, which
// is not checked here (mirroring the original reduce/modinv construction
// this is ported from).
func CRT(moduli, remainders []*big.Int) *big.Int {
	prod := big.NewInt(1)
	for _, m := range moduli {
		prod = new(big.Int).Mul(prod, m)
	}

	result := big.NewInt(0)
	for i, m := range moduli {
		p := new(big.Int).Div(prod, m)
		inv := ModInverse(p, m)
		term := new(big.Int).Mul(remainders[i], inv)
		term = new(big.Int).Mul(term, p)
		result = new(big.Int).Add(result, term)
	}
	return new(big.Int).Mod(result, prod)
}

// L is the Damgård–Jurik decryption helper: L(u) = (u-1)/n for u != 0,
// L(0) = 0. u is expected to already satisfy u ≡ 1 (mod n); the zero branch
// is kept so a corrupted ciphertext surfaces as a wrong decryption rather
// than a division panic.
func L(u, n *big.Int) *big.Int {
	if u.Sign() == 0 {
		return big.NewInt(0)
	}
	t := new(big.Int).Sub(u, big.NewInt(1))
	return new(big.Int).Div(t, n)
}

// BitLen returns ceil(log2(n)) for n > 1, computed with bigfloat's
// arbitrary-precision Log so it stays exact for the very large moduli the
// cryptosystem operates on (plain big.Int.BitLen is floor(log2(n)) + 1,
// which over-counts by one at exact powers of two in a way the caller must
// not have to special-case).
func BitLen(n *big.Int) int {
	if n.Sign() <= 0 {
		return 0
	}
	f := new(big.Float).SetPrec(uint(n.BitLen()) + 64).SetInt(n)
	logTwo := bigfloat.Log(f)
	logTwo.Quo(logTwo, bigfloat.Log(big.NewFloat(2)))
	bits, _ := logTwo.Int64()
	if bits < 0 {
		bits = 0
	}
	pow2 := func(e int64) *big.Int {
		return new(big.Int).Lsh(big.NewInt(1), uint(e))
	}
	for bits > 0 && pow2(bits-1).Cmp(n) >= 0 {
		bits--
	}
	for pow2(bits).Cmp(n) < 0 {
		bits++
	}
	return int(bits)
}

func abs(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		return new(big.Int).Neg(x)
	}
	return x
}
