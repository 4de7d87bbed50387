package enginetest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/engine/enginetest"
	"github.com/cwbudde/algo-dft/dft/engine/gonumfft"
)

func TestRecorderCleanLifecycle(t *testing.T) {
	rec := enginetest.NewRecorder(gonumfft.New())
	lock := &enginetest.CountingLocker{}
	gw := engine.NewGateway(rec, engine.WithLocker(lock))

	in, err := gw.Allocate(engine.Real, 4)
	require.NoError(t, err)
	out, err := gw.Allocate(engine.Complex, 3)
	require.NoError(t, err)
	p, err := gw.BuildPlan(engine.PlanRequest{Length: 4, Input: in, Output: out})
	require.NoError(t, err)
	gw.Execute(p)
	require.NoError(t, gw.Release(p, in, out))

	require.NoError(t, rec.Verify())
	assert.Equal(t, int64(4), lock.Count())
	assert.Equal(t, 1, rec.Count(enginetest.OpExecute))
	assert.Equal(t, gonumfft.Name, rec.Name())

	events := rec.Events()
	require.Len(t, events, 7)
	assert.Equal(t, enginetest.Event{Op: enginetest.OpBuildPlan, Plan: 1, Input: in.ID(), Output: out.ID()}, events[2])
	assert.Equal(t, enginetest.OpDestroyPlan, events[4].Op)
}

func TestVerifyReportsLeaks(t *testing.T) {
	rec := enginetest.NewRecorder(gonumfft.New())
	in, err := rec.Allocate(engine.Complex, 2)
	require.NoError(t, err)
	out, err := rec.Allocate(engine.Complex, 2)
	require.NoError(t, err)
	_, err = rec.BuildPlan(engine.PlanRequest{Length: 2, Input: in, Output: out})
	require.NoError(t, err)

	err = rec.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan 1 leaked")
	assert.Contains(t, err.Error(), "leaked")
}

func TestVerifyReportsFreeBeforeDestroy(t *testing.T) {
	rec := enginetest.NewRecorder(gonumfft.New())
	in, err := rec.Allocate(engine.Complex, 2)
	require.NoError(t, err)
	out, err := rec.Allocate(engine.Complex, 2)
	require.NoError(t, err)
	p, err := rec.BuildPlan(engine.PlanRequest{Length: 2, Input: in, Output: out})
	require.NoError(t, err)

	require.NoError(t, rec.Free(in))
	require.NoError(t, rec.DestroyPlan(p))
	require.NoError(t, rec.Free(out))

	err = rec.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "freed before plan 1 was destroyed")
}

func TestRecorderSkipsFailedCalls(t *testing.T) {
	rec := enginetest.NewRecorder(gonumfft.New())
	_, err := rec.Allocate(engine.Real, -1)
	require.Error(t, err)
	assert.Empty(t, rec.Events())
	require.NoError(t, rec.Verify())
}
