// Package algoengine implements the engine contract on top of
// github.com/MeKo-Christian/algo-fft.
//
// algo-fft normalises its inverse by 1/N, so inverse plans rescale their
// output by N to honour the unnormalised engine convention. Real transforms
// run through a complex plan of the full length with engine-owned scratch
// buffers. algo-fft chooses its kernels itself, so the planning-effort hint
// is recorded in the plan request but not forwarded.
package algoengine

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/internal/cpu"
)

// Name is the backend name used in configuration.
const Name = "algofft"

// Engine is the algo-fft-backed transform engine.
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

// New returns an algo-fft engine.
func New(opts ...Option) *Engine {
	e := &Engine{align: cpu.Alignment()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Name returns "algofft".
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
	kernel    func() error
	destroyed atomic.Bool
}

func (p *plan) Request() engine.PlanRequest { return p.req }

// BuildPlan creates an algo-fft plan for req and binds it to req's memories.
func (e *Engine) BuildPlan(req engine.PlanRequest) (engine.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &plan{req: req, owner: e}
	if kernel, ok := engine.TrivialKernel(req); ok {
		p.kernel = func() error {
			kernel()
			return nil
		}
		return p, nil
	}

	n := req.Length
	fft, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("%w: algo-fft rejected length %d: %w", engine.ErrInvalidLength, n, err)
	}

	in, out := req.Kinds()
	switch {
	case in == engine.Real:
		src, dst := req.Input.Reals(), req.Output.Complexes()
		packed := make([]complex128, n)
		spectrum := make([]complex128, n)
		p.kernel = func() error {
			for i, v := range src {
				packed[i] = complex(v, 0)
			}
			if err := fft.Forward(spectrum, packed); err != nil {
				return err
			}
			copy(dst, spectrum)
			return nil
		}

	case out == engine.Real:
		src, dst := req.Input.Complexes(), req.Output.Reals()
		full := make([]complex128, n)
		seq := make([]complex128, n)
		p.kernel = func() error {
			engine.ExpandHermitian(full, src)
			if err := fft.Inverse(seq, full); err != nil {
				return err
			}
			for i := range dst {
				dst[i] = real(seq[i])
			}
			vecmath.ScaleBlock(dst, dst, float64(n))
			return nil
		}

	case req.Direction == engine.Forward:
		src, dst := req.Input.Complexes(), req.Output.Complexes()
		p.kernel = func() error {
			return fft.Forward(dst, src)
		}

	default:
		src, dst := req.Input.Complexes(), req.Output.Complexes()
		full := make([]complex128, n)
		p.kernel = func() error {
			engine.ExpandHermitian(full, src)
			if err := fft.Inverse(dst, full); err != nil {
				return err
			}
			scaleComplex(dst, float64(n))
			return nil
		}
	}
	return p, nil
}

// scaleComplex multiplies every element of x by s, treating the complex
// slice as interleaved float64 words.
func scaleComplex(x []complex128, s float64) {
	if len(x) == 0 {
		return
	}
	words := unsafe.Slice((*float64)(unsafe.Pointer(&x[0])), 2*len(x))
	vecmath.ScaleBlock(words, words, s)
}

// Execute runs p. Lengths were validated when the plan was built, so an
// error from algo-fft is an invariant violation and panics.
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
	if err := pl.kernel(); err != nil {
		panic(fmt.Errorf("algoengine: execute length %d: %w", pl.req.Length, err))
	}
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
