// Package gonumfft implements the engine contract on top of
// gonum.org/v1/gonum/dsp/fourier.
//
// Gonum transforms support every length, are unnormalised in the inverse
// direction and keep their work arrays inside the transform value, so each
// plan owns one transform object and distinct plans may execute
// concurrently. The planning-effort hint is recorded but has no effect.
package gonumfft

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/internal/cpu"
)

// Name is the backend name used in configuration.
const Name = "gonum"

// Engine is the gonum-backed transform engine.
type Engine struct {
	align int
}

// Option configures an Engine.
type Option func(*Engine)

// WithAlignment overrides the detected operand alignment in bytes.
func WithAlignment(bytes int) Option {
	return func(e *Engine) {
		if bytes > 0 {
			e.align = bytes
		}
	}
}

// New returns a gonum engine. Memory is aligned to the SIMD width reported by
// the CPU unless WithAlignment is given.
func New(opts ...Option) *Engine {
	e := &Engine{align: cpu.Alignment()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Name returns "gonum".
func (e *Engine) Name() string { return Name }

// Alignment returns the operand alignment in bytes.
func (e *Engine) Alignment() int { return e.align }

// Allocate returns count aligned elements of kind.
func (e *Engine) Allocate(kind engine.ElementKind, count int) (*engine.Memory, error) {
	return engine.NewMemory(kind, count, e.align)
}

// Free releases m.
func (e *Engine) Free(m *engine.Memory) error {
	if m == nil {
		return fmt.Errorf("%w: nil memory", engine.ErrDoubleFree)
	}
	return m.Release()
}

type plan struct {
	req       engine.PlanRequest
	owner     *Engine
	kernel    func()
	destroyed atomic.Bool
}

func (p *plan) Request() engine.PlanRequest { return p.req }

// BuildPlan binds a gonum transform to the memories in req.
func (e *Engine) BuildPlan(req engine.PlanRequest) (engine.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &plan{req: req, owner: e}
	if kernel, ok := engine.TrivialKernel(req); ok {
		p.kernel = kernel
		return p, nil
	}

	n := req.Length
	in, out := req.Kinds()
	switch {
	case in == engine.Real:
		fft := fourier.NewFFT(n)
		src, dst := req.Input.Reals(), req.Output.Complexes()
		p.kernel = func() { fft.Coefficients(dst, src) }

	case out == engine.Real:
		fft := fourier.NewFFT(n)
		src, dst := req.Input.Complexes(), req.Output.Reals()
		p.kernel = func() { fft.Sequence(dst, src) }

	case req.Direction == engine.Forward:
		fft := fourier.NewCmplxFFT(n)
		src, dst := req.Input.Complexes(), req.Output.Complexes()
		p.kernel = func() { fft.Coefficients(dst, src) }

	default:
		fft := fourier.NewCmplxFFT(n)
		src, dst := req.Input.Complexes(), req.Output.Complexes()
		full := make([]complex128, n)
		p.kernel = func() {
			engine.ExpandHermitian(full, src)
			fft.Sequence(dst, full)
		}
	}
	return p, nil
}

// Execute runs p. It panics if p was not built by e, was destroyed, or its
// memories were freed; those are lifetime violations, not runtime conditions.
func (e *Engine) Execute(p engine.Plan) {
	pl, ok := p.(*plan)
	if !ok || pl.owner != e {
		panic(engine.ErrUnknownPlan)
	}
	if pl.destroyed.Load() {
		panic(engine.ErrPlanDestroyed)
	}
	if pl.req.Input.Freed() || pl.req.Output.Freed() {
		panic(engine.ErrFreed)
	}
	pl.kernel()
}

// DestroyPlan releases p.
func (e *Engine) DestroyPlan(p engine.Plan) error {
	pl, ok := p.(*plan)
	if !ok || pl.owner != e {
		return engine.ErrUnknownPlan
	}
	if !pl.destroyed.CompareAndSwap(false, true) {
		return engine.ErrPlanDestroyed
	}
	pl.kernel = nil
	return nil
}
