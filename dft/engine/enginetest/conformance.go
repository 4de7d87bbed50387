package enginetest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/internal/testutil"
)

const tolerance = 1e-9

// Conformance checks that engines returned by newEngine follow the numeric
// and lifetime contract of package engine for every length in sizes.
func Conformance(t *testing.T, newEngine func() engine.Engine, sizes []int) {
	t.Helper()

	for _, n := range sizes {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			rec := NewRecorder(newEngine())
			gw := engine.NewGateway(rec, engine.WithLocker(&CountingLocker{}))

			t.Run("real forward", func(t *testing.T) { realForward(t, gw, n) })
			t.Run("complex forward", func(t *testing.T) { complexForward(t, gw, n) })
			t.Run("inverse to real", func(t *testing.T) { inverseToReal(t, gw, n) })
			t.Run("inverse to complex", func(t *testing.T) { inverseToComplex(t, gw, n) })

			require.NoError(t, rec.Verify())
			assert.Equal(t, engine.Stats{}, gw.Stats())
		})
	}

	t.Run("misuse", func(t *testing.T) { misuse(t, newEngine()) })
}

type binding struct {
	gw   *engine.Gateway
	plan engine.Plan
	in   *engine.Memory
	out  *engine.Memory
}

func bind(t *testing.T, gw *engine.Gateway, n int, in, out engine.ElementKind, dir engine.Direction) *binding {
	t.Helper()
	inLen, outLen, err := engine.ExpectedLens(in, out, dir, n)
	require.NoError(t, err)

	b := &binding{gw: gw}
	b.in, err = gw.Allocate(in, inLen)
	require.NoError(t, err)
	b.out, err = gw.Allocate(out, outLen)
	require.NoError(t, err)
	require.Zero(t, b.in.Addr()%uintptr(b.in.Alignment()))

	b.plan, err = gw.BuildPlan(engine.PlanRequest{
		Length:    n,
		Input:     b.in,
		Output:    b.out,
		Direction: dir,
		Effort:    engine.EffortMeasure,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, gw.Release(b.plan, b.in, b.out))
	})
	return b
}

func realForward(t *testing.T, gw *engine.Gateway, n int) {
	b := bind(t, gw, n, engine.Real, engine.Complex, engine.Forward)
	x := testutil.DeterministicNoise(int64(n)+1, 1, n)
	copy(b.in.Reals(), x)

	gw.Execute(b.plan)
	if n == 0 {
		return
	}
	testutil.RequireFinite(t, b.out.Complexes())
	testutil.RequireComplexNearlyEqual(t, b.out.Complexes(), testutil.HalfSpectrum(x), tolerance)
	testutil.RequireSliceNearlyEqual(t, b.in.Reals(), x, 0)
}

func complexForward(t *testing.T, gw *engine.Gateway, n int) {
	b := bind(t, gw, n, engine.Complex, engine.Complex, engine.Forward)
	x := testutil.ComplexNoise(int64(n)+2, 1, n)
	copy(b.in.Complexes(), x)

	gw.Execute(b.plan)
	testutil.RequireFinite(t, b.out.Complexes())
	testutil.RequireComplexNearlyEqual(t, b.out.Complexes(), testutil.NaiveDFT(x), tolerance)
}

func inverseToReal(t *testing.T, gw *engine.Gateway, n int) {
	b := bind(t, gw, n, engine.Complex, engine.Real, engine.Inverse)
	x := testutil.DeterministicNoise(int64(n)+3, 1, n)
	copy(b.in.Complexes(), testutil.HalfSpectrum(x))

	gw.Execute(b.plan)
	want := make([]float64, n)
	for i, v := range x {
		want[i] = v * float64(n)
	}
	testutil.RequireFinite(t, testutil.Complexify(b.out.Reals()))
	testutil.RequireSliceNearlyEqual(t, b.out.Reals(), want, tolerance)
}

func inverseToComplex(t *testing.T, gw *engine.Gateway, n int) {
	b := bind(t, gw, n, engine.Complex, engine.Complex, engine.Inverse)
	x := testutil.DeterministicNoise(int64(n)+4, 1, n)
	copy(b.in.Complexes(), testutil.HalfSpectrum(x))

	gw.Execute(b.plan)
	want := testutil.Complexify(x)
	for i := range want {
		want[i] *= complex(float64(n), 0)
	}
	testutil.RequireFinite(t, b.out.Complexes())
	testutil.RequireComplexNearlyEqual(t, b.out.Complexes(), want, tolerance)
}

func misuse(t *testing.T, eng engine.Engine) {
	in, err := eng.Allocate(engine.Complex, 4)
	require.NoError(t, err)
	out, err := eng.Allocate(engine.Complex, 4)
	require.NoError(t, err)

	_, err = eng.BuildPlan(engine.PlanRequest{Length: 5, Input: in, Output: out})
	require.ErrorIs(t, err, engine.ErrLengthMismatch)

	p, err := eng.BuildPlan(engine.PlanRequest{Length: 4, Input: in, Output: out})
	require.NoError(t, err)

	require.NoError(t, eng.DestroyPlan(p))
	require.ErrorIs(t, eng.DestroyPlan(p), engine.ErrPlanDestroyed)
	assert.PanicsWithValue(t, engine.ErrPlanDestroyed, func() { eng.Execute(p) })

	require.NoError(t, eng.Free(in))
	require.ErrorIs(t, eng.Free(in), engine.ErrDoubleFree)
	require.NoError(t, eng.Free(out))

	_, err = eng.BuildPlan(engine.PlanRequest{Length: 4, Input: in, Output: out})
	require.ErrorIs(t, err, engine.ErrFreed)

	_, err = eng.Allocate(engine.Real, -1)
	require.ErrorIs(t, err, engine.ErrAllocation)
}
