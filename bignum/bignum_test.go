package bignum

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func bi(x int64) *big.Int { return big.NewInt(x) }

func TestGCDZero(t *testing.T) {
	require.Equal(t, bi(5), GCD(bi(0), bi(5)))
	require.Equal(t, bi(5), GCD(bi(5), bi(0)))
}

func TestGCDBasic(t *testing.T) {
	require.Equal(t, bi(6), GCD(bi(54), bi(24)))
}

func TestLCM(t *testing.T) {
	require.Equal(t, bi(0), LCM(bi(0), bi(5)))
	require.Equal(t, bi(12), LCM(bi(4), bi(6)))
}

func TestModInverse(t *testing.T) {
	require.Equal(t, bi(4), ModInverse(bi(3), bi(11)))
}

func TestModPow(t *testing.T) {
	require.Equal(t, bi(4), ModPow(bi(3), bi(4), bi(7)))
}

func TestCRT(t *testing.T) {
	res := CRT([]*big.Int{bi(3), bi(5)}, []*big.Int{bi(2), bi(3)})
	require.Equal(t, bi(8), res)
}

func TestL(t *testing.T) {
	n := bi(11)
	require.Equal(t, bi(0), L(bi(0), n))
	// u = 1 + 3*n, should give L(u) = 3
	u := new(big.Int).Add(bi(1), new(big.Int).Mul(bi(3), n))
	require.Equal(t, bi(3), L(u, n))
}

func TestBitLenExactPowerOfTwo(t *testing.T) {
	require.Equal(t, 3, BitLen(bi(8)))
	require.Equal(t, 4, BitLen(bi(9)))
	require.Equal(t, 0, BitLen(bi(1)))
	require.Equal(t, 1, BitLen(bi(2)))
}

func TestBitLenLarge(t *testing.T) {
	n := new(big.Int).Lsh(bi(1), 256)
	require.Equal(t, 256, BitLen(n))
	n = new(big.Int).Add(n, bi(1))
	require.Equal(t, 257, BitLen(n))
}
