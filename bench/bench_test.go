package bench

import (
	"testing"

	"github.com/onionoram/onionoram/client"
	"github.com/onionoram/onionoram/oram"
	"github.com/onionoram/onionoram/randsrc"
	"github.com/stretchr/testify/require"
)

func TestRunProducesReportOverNonEncryptedWrapper(t *testing.T) {
	wrapper := oram.NewNonEncServerWrapper(4, 8, 4)
	src := randsrc.NewDeterministic([]byte("bench-seed"))
	c, err := client.New(4, 16, 8, 4, 8, wrapper, src)
	require.NoError(t, err)

	report, err := Run(c, 50, 4, src)
	require.NoError(t, err)
	require.Equal(t, 50, report.Count)
	require.GreaterOrEqual(t, report.Mean.Nanoseconds(), int64(0))
	require.GreaterOrEqual(t, report.P99.Nanoseconds(), report.Median.Nanoseconds())
}

func TestRunRejectsNonPositiveOps(t *testing.T) {
	wrapper := oram.NewNonEncServerWrapper(2, 4, 2)
	src := randsrc.NewDeterministic([]byte("bench-zero"))
	c, err := client.New(2, 4, 4, 2, -1, wrapper, src)
	require.NoError(t, err)

	_, err = Run(c, 0, 2, src)
	require.Error(t, err)
}
