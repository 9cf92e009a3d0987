package damgardjurik

import (
	"math/big"

	"github.com/onionoram/onionoram/bignum"
	"github.com/onionoram/onionoram/randsrc"
)

// base returns g = n+1, the fixed generator the Damgård–Jurik scheme always
// encrypts under.
func base(pub *PublicKey) *big.Int {
	return new(big.Int).Add(pub.N, big.NewInt(1))
}

// Encrypt encrypts plaintext m at onion layer s: c = (g^m * r^{n^s}) mod
// n^{s+1}, for a freshly sampled r coprime to n^{s+1}. Production-sized
// moduli make every sampled r coprime to n^{s+1} with overwhelming
// probability; the resample loop below exists so the toy moduli used in
// tests don't occasionally hand back a non-invertible r.
func Encrypt(pub *PublicKey, s int, m *big.Int, src randsrc.Source) *big.Int {
	modulus := pub.NPow(s + 1)
	g := base(pub)

	var r *big.Int
	for {
		r = new(big.Int).Mod(src.RandomBits(pub.Bits), modulus)
		if bignum.GCD(r, modulus).Cmp(big.NewInt(1)) == 0 {
			break
		}
	}

	gPowM := bignum.ModPow(g, m, modulus)
	rPowNPowS := bignum.ModPow(r, pub.NPow(s), modulus)
	return new(big.Int).Mod(new(big.Int).Mul(gPowM, rPowNPowS), modulus)
}

// Decrypt inverts Encrypt at layer s, recovering m via the Damgård–Jurik
// iterative lifting over j = 1..s, using the public key's memoized inverse
// factorials for the polynomial correction terms.
func Decrypt(pub *PublicKey, priv *PrivateKey, s int, c *big.Int) *big.Int {
	n := pub.N
	modulus := pub.NPow(s + 1)

	cPowD := bignum.ModPow(c, priv.D(pub, s), modulus)

	// Go's big.Int.Mod is already the Euclidean modulus (always
	// nonnegative for a positive divisor), so unlike the Python source
	// this needs no explicit "+ npowJ" before reducing a subtraction.
	m := big.NewInt(0)
	for j := 1; j <= s; j++ {
		npowJ := pub.NPow(j)
		newM := bignum.L(new(big.Int).Mod(cPowD, pub.NPow(j+1)), n)
		oldM := new(big.Int).Set(m)

		for k := 2; k <= j; k++ {
			m = new(big.Int).Mod(new(big.Int).Sub(m, big.NewInt(1)), npowJ)
			oldM = new(big.Int).Mod(new(big.Int).Mul(oldM, m), npowJ)

			term := new(big.Int).Mod(new(big.Int).Mul(oldM, pub.NPow(k-1)), npowJ)
			term = new(big.Int).Mod(new(big.Int).Mul(term, pub.InvFactorial(k, j)), npowJ)

			newM = new(big.Int).Mod(new(big.Int).Sub(newM, term), npowJ)
		}
		m = newM
	}
	return m
}
