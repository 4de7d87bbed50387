package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/engine/gonumfft"
	"github.com/cwbudde/algo-dft/dft/transform"
	"github.com/cwbudde/algo-dft/internal/testutil"
)

func computed(t *testing.T, x []float64) *transform.Transform[float64, complex128] {
	t.Helper()
	gw := engine.NewGateway(gonumfft.New(), engine.WithLocker(engine.NopLocker{}))
	tr, err := transform.RealFromSlice(x, transform.WithGateway(gw))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, tr.Close()) })
	_, ok := tr.Compute()
	require.True(t, ok)
	return tr
}

func TestFullMatchesNaiveDFT(t *testing.T) {
	for _, n := range []int{1, 6, 7} {
		x := testutil.DeterministicNoise(int64(n), 1, n)
		tr := computed(t, x)
		testutil.RequireComplexNearlyEqual(t, Full(tr), testutil.NaiveDFT(testutil.Complexify(x)), 1e-9)
	}
}

func TestMagnitudeAndPower(t *testing.T) {
	tr := computed(t, testutil.DeterministicSine(2, 1, 16))

	mag := Magnitude(tr.Output())
	pow := Power(tr.Output())
	require.Len(t, mag, 9)
	require.Len(t, pow, 9)

	// A two-cycle sine of length 16 puts N/2 into bin 2.
	assert.InDelta(t, 8, mag[2], 1e-9)
	assert.InDelta(t, 64, pow[2], 1e-9)
	for k, m := range mag {
		if k != 2 {
			assert.InDelta(t, 0, m, 1e-9, "bin %d", k)
		}
		assert.InDelta(t, m*m, pow[k], 1e-9)
	}

	full := FullMagnitude(tr)
	require.Len(t, full, 16)
	assert.InDelta(t, 8, full[14], 1e-9, "mirror of bin 2")
}

func TestPhase(t *testing.T) {
	tr := computed(t, []float64{0, 1, 0, -1})
	ph := Phase(tr.Output())
	require.Len(t, ph, 3)
	assert.InDelta(t, -math.Pi/2, ph[1], 1e-9)
}

func TestEmptyInputs(t *testing.T) {
	assert.Nil(t, MagnitudeOf(nil))
	assert.Nil(t, PowerOf(nil))
	assert.Nil(t, Phase(transform.View[complex128]{}))
	assert.Nil(t, Magnitude(transform.View[complex128]{}))
}

func TestMagnitudeOfMatchesCmplxAbs(t *testing.T) {
	in := testutil.ComplexNoise(9, 3, 33)
	got := MagnitudeOf(in)
	for i, c := range in {
		assert.InDelta(t, cmplx.Abs(c), got[i], 1e-12)
	}
}
