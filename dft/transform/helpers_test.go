package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/engine/algoengine"
	"github.com/cwbudde/algo-dft/dft/engine/enginetest"
	"github.com/cwbudde/algo-dft/dft/engine/gonumfft"
)

type backend struct {
	name string
	new  func() engine.Engine
	// pow2 restricts correctness checks to power-of-two lengths.
	pow2 bool
}

var backends = []backend{
	{name: gonumfft.Name, new: func() engine.Engine { return gonumfft.New() }},
	{name: algoengine.Name, new: func() engine.Engine { return algoengine.New() }, pow2: true},
}

func (b backend) skipLength(t *testing.T, n int) {
	t.Helper()
	if b.pow2 && n > 1 && n&(n-1) != 0 {
		t.Skipf("%s: length %d is only checked on power-of-two sizes", b.name, n)
	}
}

// recordedGateway returns a gateway over a recording engine with its own
// lock. The ledger is verified when the test ends.
func recordedGateway(t *testing.T, eng engine.Engine) (*engine.Gateway, *enginetest.Recorder) {
	t.Helper()
	rec := enginetest.NewRecorder(eng)
	gw := engine.NewGateway(rec, engine.WithLocker(&enginetest.CountingLocker{}))
	t.Cleanup(func() {
		require.NoError(t, rec.Verify())
	})
	return gw, rec
}

func closeOnCleanup[In, Out Element](t *testing.T, tr *Transform[In, Out]) *Transform[In, Out] {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, tr.Close())
	})
	return tr
}

var errNoPlan = errors.New("no plan for you")

// failingPlanner is an engine whose plans cannot be built.
type failingPlanner struct {
	engine.Engine
}

func (failingPlanner) BuildPlan(engine.PlanRequest) (engine.Plan, error) {
	return nil, errNoPlan
}

func scaled(x []complex128, s float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = v * complex(s, 0)
	}
	return out
}
