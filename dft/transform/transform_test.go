package transform

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/engine/enginetest"
	"github.com/cwbudde/algo-dft/dft/engine/gonumfft"
	"github.com/cwbudde/algo-dft/internal/testutil"
)

const eps = 1e-9

func TestRealForwardMatchesNaiveDFT(t *testing.T) {
	for _, b := range backends {
		for _, n := range []int{1, 2, 3, 8, 9, 16, 17} {
			t.Run(fmt.Sprintf("%s/n=%d", b.name, n), func(t *testing.T) {
				b.skipLength(t, n)
				gw, rec := recordedGateway(t, b.new())
				x := testutil.DeterministicNoise(int64(n), 1, n)

				tr, err := RealFromSlice(x, WithGateway(gw))
				require.NoError(t, err)
				closeOnCleanup(t, tr)

				out, ok := tr.Compute()
				require.True(t, ok)
				assert.Equal(t, n/2+1, out.Len())
				testutil.RequireComplexNearlyEqual(t, out.Values(), testutil.HalfSpectrum(x), eps)
				assert.Equal(t, 1, rec.Count(enginetest.OpExecute))
			})
		}
	}
}

func TestComplexForwardMatchesNaiveDFT(t *testing.T) {
	for _, b := range backends {
		for _, n := range []int{1, 5, 8, 12} {
			t.Run(fmt.Sprintf("%s/n=%d", b.name, n), func(t *testing.T) {
				b.skipLength(t, n)
				gw, _ := recordedGateway(t, b.new())
				x := testutil.ComplexNoise(int64(n), 1, n)

				tr, err := ComplexFromSlice(x, WithGateway(gw))
				require.NoError(t, err)
				closeOnCleanup(t, tr)

				out, ok := tr.Compute()
				require.True(t, ok)
				testutil.RequireComplexNearlyEqual(t, out.Values(), testutil.NaiveDFT(x), eps)
			})
		}
	}
}

func TestInverseToRealRoundTrip(t *testing.T) {
	for _, b := range backends {
		for _, n := range []int{1, 2, 7, 8, 9} {
			t.Run(fmt.Sprintf("%s/n=%d", b.name, n), func(t *testing.T) {
				b.skipLength(t, n)
				gw, _ := recordedGateway(t, b.new())
				x := testutil.DeterministicNoise(11, 1, n)

				inv, err := NewInverseToReal(n, WithGateway(gw))
				require.NoError(t, err)
				closeOnCleanup(t, inv)
				require.Equal(t, n/2+1, inv.MutableInput().Cap())
				require.True(t, inv.MutableInput().PushSlice(testutil.HalfSpectrum(x)))

				out, ok := inv.Compute()
				require.True(t, ok)
				want := make([]float64, n)
				for i, v := range x {
					want[i] = v * float64(n)
				}
				testutil.RequireSliceNearlyEqual(t, out.Values(), want, eps)
			})
		}
	}
}

func TestInverseToComplexDefaultTarget(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			gw, _ := recordedGateway(t, b.new())
			x := testutil.DeterministicNoise(5, 1, 8)

			inv, err := NewInverseToComplex(5, WithGateway(gw))
			require.NoError(t, err)
			closeOnCleanup(t, inv)
			assert.Equal(t, 8, inv.Len())

			require.True(t, inv.MutableInput().PushSlice(testutil.HalfSpectrum(x)))
			out, ok := inv.Compute()
			require.True(t, ok)
			testutil.RequireComplexNearlyEqual(t, out.Values(), scaled(testutil.Complexify(x), 8), eps)
		})
	}
}

func TestInverseToComplexExplicitOddTarget(t *testing.T) {
	gw, _ := recordedGateway(t, gonumfft.New())
	x := testutil.DeterministicNoise(6, 1, 9)

	inv, err := NewInverseToComplex(5, WithGateway(gw), WithTarget(9))
	require.NoError(t, err)
	closeOnCleanup(t, inv)
	assert.Equal(t, 9, inv.Len())

	require.True(t, inv.MutableInput().PushSlice(testutil.HalfSpectrum(x)))
	out, ok := inv.Compute()
	require.True(t, ok)
	testutil.RequireComplexNearlyEqual(t, out.Values(), scaled(testutil.Complexify(x), 9), eps)
}

func TestConstructorErrors(t *testing.T) {
	gw, rec := recordedGateway(t, gonumfft.New())

	_, err := NewInverseToComplex(4, WithGateway(gw), WithTarget(9))
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewInverseToComplex(0, WithGateway(gw))
	require.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New[complex128, float64](5, NewCapability(ComplexInverseToReal), WithGateway(gw))
	require.ErrorIs(t, err, ErrMissingTarget)

	_, err = NewRealForward(-1, WithGateway(gw))
	require.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New[complex128, complex128](4, NewCapability(RealForward), WithGateway(gw))
	require.ErrorIs(t, err, ErrKindMismatch)

	_, err = NewInverseToReal(-2, WithGateway(gw))
	require.ErrorIs(t, err, ErrInvalidCapacity)

	assert.Zero(t, rec.Count(enginetest.OpAllocate))
	assert.Equal(t, engine.Stats{}, gw.Stats())
}

func TestConstructorUnwindsOnPlanFailure(t *testing.T) {
	gw, rec := recordedGateway(t, failingPlanner{Engine: gonumfft.New()})

	_, err := NewRealForward(8, WithGateway(gw))
	require.ErrorIs(t, err, errNoPlan)

	assert.Equal(t, 2, rec.Count(enginetest.OpAllocate))
	assert.Equal(t, 2, rec.Count(enginetest.OpFree))
	assert.Equal(t, engine.Stats{}, gw.Stats())
}

func TestComputeReadiness(t *testing.T) {
	gw, rec := recordedGateway(t, gonumfft.New())
	tr, err := NewRealForward(4, WithGateway(gw))
	require.NoError(t, err)
	closeOnCleanup(t, tr)

	_, ok := tr.Compute()
	assert.False(t, ok, "empty input")

	in := tr.MutableInput()
	for _, v := range []float64{1, 2, 3} {
		require.True(t, in.Push(v))
	}
	_, ok = tr.Compute()
	assert.False(t, ok, "partial input")
	assert.Zero(t, tr.Output().Len())

	require.True(t, in.Push(4))
	require.False(t, in.Push(5), "push past capacity")

	out, ok := tr.Compute()
	require.True(t, ok)
	assert.Equal(t, 3, out.Len())
	dc, _ := out.At(0)
	assert.InDelta(t, 10, real(dc), eps)
	assert.Equal(t, 1, rec.Count(enginetest.OpExecute))
}

func TestOutputPersistsAfterPop(t *testing.T) {
	gw, _ := recordedGateway(t, gonumfft.New())
	tr, err := RealFromSlice([]float64{1, 1, 1, 1}, WithGateway(gw))
	require.NoError(t, err)
	closeOnCleanup(t, tr)

	assert.False(t, tr.Fresh())
	_, ok := tr.Compute()
	require.True(t, ok)
	assert.True(t, tr.Fresh())

	v, ok := tr.MutableInput().Pop()
	require.True(t, ok)
	assert.InDelta(t, 1, v, 0)
	assert.False(t, tr.Fresh())

	_, ok = tr.Compute()
	assert.False(t, ok)
	out := tr.Output()
	require.Equal(t, 3, out.Len(), "previous output is kept")
	dc, _ := out.At(0)
	assert.InDelta(t, 4, real(dc), eps)

	require.True(t, tr.MutableInput().Push(3))
	assert.False(t, tr.Fresh())
	out, ok = tr.Compute()
	require.True(t, ok)
	assert.True(t, tr.Fresh())
	dc, _ = out.At(0)
	assert.InDelta(t, 6, real(dc), eps)
}

func TestFreshTracksInputWrites(t *testing.T) {
	gw, _ := recordedGateway(t, gonumfft.New())
	tr, err := ComplexFromSlice([]complex128{1, 2, 3}, WithGateway(gw))
	require.NoError(t, err)
	closeOnCleanup(t, tr)

	_, ok := tr.Compute()
	require.True(t, ok)
	require.True(t, tr.Fresh())

	require.True(t, tr.MutableInput().MutView().Set(1, 5i))
	assert.False(t, tr.Fresh())

	_, ok = tr.Compute()
	require.True(t, ok)
	assert.True(t, tr.Fresh())

	// Writing the output does not make it stale.
	require.True(t, tr.MutableOutput().Set(0, 0))
	assert.True(t, tr.Fresh())
}

func TestZeroLengthRealForward(t *testing.T) {
	gw, rec := recordedGateway(t, gonumfft.New())
	tr, err := NewRealForward(0, WithGateway(gw))
	require.NoError(t, err)
	closeOnCleanup(t, tr)

	assert.Equal(t, 0, tr.MutableInput().Cap())
	assert.True(t, tr.MutableInput().Full())

	_, ok := tr.Compute()
	assert.False(t, ok)
	assert.Zero(t, tr.Output().Len())
	assert.Empty(t, tr.Output().Values())
	assert.Zero(t, rec.Count(enginetest.OpExecute))

	n := 0
	for range Spectrum(tr) {
		n++
	}
	assert.Zero(t, n)
}

func TestCloseReleasesInOrder(t *testing.T) {
	gw, rec := recordedGateway(t, gonumfft.New())
	tr, err := RealFromSlice([]float64{1, 2, 3}, WithGateway(gw))
	require.NoError(t, err)
	assert.Equal(t, engine.Stats{LiveBuffers: 2, LivePlans: 1}, gw.Stats())

	_, ok := tr.Compute()
	require.True(t, ok)
	in, out := tr.Input(), tr.Output()
	require.True(t, out.Valid())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close(), "second close is a no-op")
	assert.True(t, tr.Closed())
	assert.Equal(t, engine.Stats{}, gw.Stats())

	assert.False(t, in.Valid())
	assert.Zero(t, out.Len())
	_, ok = out.At(0)
	assert.False(t, ok)
	_, ok = tr.Compute()
	assert.False(t, ok)
	assert.False(t, tr.MutableInput().Push(1))

	events := rec.Events()
	require.Len(t, events, 7)
	assert.Equal(t, enginetest.OpDestroyPlan, events[4].Op)
	assert.Equal(t, enginetest.OpFree, events[5].Op)
	assert.Equal(t, enginetest.OpFree, events[6].Op)
	assert.Equal(t, events[0].Memory, events[5].Memory, "input freed first")
}

func TestConcurrentComputeOnDistinctTransforms(t *testing.T) {
	rec := enginetest.NewRecorder(gonumfft.New())
	gw := engine.NewGateway(rec)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := 16 + w
			x := testutil.DeterministicNoise(int64(w), 1, n)
			tr, err := RealFromSlice(x, WithGateway(gw))
			if err != nil {
				errs <- err
				return
			}
			defer tr.Close()
			for range 20 {
				out, ok := tr.Compute()
				if !ok {
					errs <- fmt.Errorf("worker %d: not ready", w)
					return
				}
				d, err := testutil.MaxAbsDiff(out.Values(), testutil.HalfSpectrum(x))
				if err != nil || d > eps {
					errs <- fmt.Errorf("worker %d: diff %v err %v", w, d, err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	require.NoError(t, rec.Verify())
	assert.Equal(t, workers*20, rec.Count(enginetest.OpExecute))
}

func TestDefaultGateway(t *testing.T) {
	gw := DefaultGateway()
	require.NotNil(t, gw)
	assert.Same(t, gw, DefaultGateway())
	assert.Equal(t, gonumfft.Name, gw.Engine().Name())

	tr, err := NewComplexForward(2)
	require.NoError(t, err)
	require.NoError(t, tr.Close())
}
