package primegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateReturnsPrimeOfRequestedSize(t *testing.T) {
	p, err := Generate(context.Background(), 64, []byte("test-seed"))
	require.NoError(t, err)
	require.True(t, p.ProbablyPrime(20))
	require.GreaterOrEqual(t, p.BitLen(), 63)
	require.LessOrEqual(t, p.BitLen(), 64)
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	p1, err := Generate(context.Background(), 48, []byte("fixed-seed"))
	require.NoError(t, err)
	p2, err := Generate(context.Background(), 48, []byte("fixed-seed"))
	require.NoError(t, err)
	require.Equal(t, 0, p1.Cmp(p2))
}

func TestGenerateRejectsTinyBitLength(t *testing.T) {
	_, err := Generate(context.Background(), 1, nil)
	require.Error(t, err)
}
