package transform

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Transform owns an input buffer, an output buffer and a plan bound to both.
// In and Out are the input and output element types; they must match the
// capability the transform was created with.
type Transform[In, Out Element] struct {
	life       *lifetime
	capability Capability
	length     int

	in  *Buffer[In]
	out *Buffer[Out]

	computed     bool
	computedFrom uint64
}

// New creates a transform whose input buffer holds capacity elements. The
// output capacity follows from c. Every resource acquired before a failure is
// released again.
func New[In, Out Element](capacity int, c Capability, opts ...Option) (*Transform[In, Out], error) {
	cfg := ApplyOptions(opts...)
	if cfg.HasTarget {
		c = c.WithTarget(cfg.Target)
	}

	if kindOf[In]() != c.InputKind() || kindOf[Out]() != c.OutputKind() {
		return nil, fmt.Errorf("%w: %s needs %s to %s", ErrKindMismatch, c.Kind(), c.InputKind(), c.OutputKind())
	}
	length, err := c.TransformLen(capacity)
	if err != nil {
		return nil, err
	}
	outLen, err := c.OutputLen(capacity)
	if err != nil {
		return nil, err
	}

	gw := cfg.Gateway
	life := newLifetime(gw, c.Kind(), length)
	in, err := newBuffer[In](life, capacity)
	if err != nil {
		return nil, fmt.Errorf("transform: input buffer: %w", err)
	}
	out, err := newBuffer[Out](life, outLen)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("transform: output buffer: %w", err), gw.Free(in.mem))
	}

	req, err := c.PlanRequest(in.mem, out.mem, cfg.Effort)
	if err != nil {
		return nil, errors.Join(err, gw.Release(nil, in.mem, out.mem))
	}
	plan, err := gw.BuildPlan(req)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("transform: plan: %w", err), gw.Release(nil, in.mem, out.mem))
	}
	life.plan, life.in, life.out = plan, in.mem, out.mem
	life.arm()

	t := &Transform[In, Out]{
		life:       life,
		capability: c,
		length:     length,
		in:         in,
		out:        out,
	}

	gw.Logger().Debug("transform created",
		zap.Stringer("capability", c.Kind()),
		zap.Int("length", length),
		zap.Int("input", capacity),
		zap.Int("output", outLen),
		zap.Stringer("effort", cfg.Effort))
	return t, nil
}

// NewRealForward creates a real-to-complex forward transform of length n.
func NewRealForward(n int, opts ...Option) (*Transform[float64, complex128], error) {
	return New[float64, complex128](n, NewCapability(RealForward), opts...)
}

// NewComplexForward creates a complex forward transform of length n.
func NewComplexForward(n int, opts ...Option) (*Transform[complex128, complex128], error) {
	return New[complex128, complex128](n, NewCapability(ComplexForward), opts...)
}

// NewInverseToComplex creates an inverse transform reading a half-spectrum of
// bins values. Without WithTarget the output holds 2*(bins-1) values.
func NewInverseToComplex(bins int, opts ...Option) (*Transform[complex128, complex128], error) {
	return New[complex128, complex128](bins, NewCapability(ComplexInverseToComplex), opts...)
}

// NewInverseToReal creates an inverse transform producing n reals from a
// half-spectrum of n/2+1 bins.
func NewInverseToReal(n int, opts ...Option) (*Transform[complex128, float64], error) {
	c := NewCapability(ComplexInverseToReal).WithTarget(n)
	bins, err := c.InputLen()
	if err != nil {
		return nil, err
	}
	return New[complex128, float64](bins, c, opts...)
}

// FromSlice creates a transform whose input capacity is len(values) and
// whose input is already filled with values.
func FromSlice[In, Out Element](values []In, c Capability, opts ...Option) (*Transform[In, Out], error) {
	t, err := New[In, Out](len(values), c, opts...)
	if err != nil {
		return nil, err
	}
	t.in.PushSlice(values)
	return t, nil
}

// RealFromSlice creates a filled real forward transform.
func RealFromSlice(values []float64, opts ...Option) (*Transform[float64, complex128], error) {
	return FromSlice[float64, complex128](values, NewCapability(RealForward), opts...)
}

// ComplexFromSlice creates a filled complex forward transform.
func ComplexFromSlice(values []complex128, opts ...Option) (*Transform[complex128, complex128], error) {
	return FromSlice[complex128, complex128](values, NewCapability(ComplexForward), opts...)
}

// Capability returns the transform capability.
func (t *Transform[In, Out]) Capability() Capability { return t.capability }

// Len returns the logical transform length.
func (t *Transform[In, Out]) Len() int { return t.length }

// Closed reports whether Close has run.
func (t *Transform[In, Out]) Closed() bool { return !t.life.alive() }

// MutableInput returns the input buffer.
func (t *Transform[In, Out]) MutableInput() *Buffer[In] { return t.in }

// Input returns a read-only view of the filled input.
func (t *Transform[In, Out]) Input() View[In] { return t.in.View() }

// Output returns a read-only view of the output. It is empty until the first
// successful Compute and keeps the last result afterwards.
func (t *Transform[In, Out]) Output() View[Out] { return t.out.View() }

// MutableOutput returns a writable view of the output.
func (t *Transform[In, Out]) MutableOutput() MutView[Out] { return t.out.MutView() }

// Compute executes the plan if the input buffer is full and non-empty. It
// returns the output view and true on success. Otherwise nothing runs, the
// output keeps its previous contents, and ok is false.
func (t *Transform[In, Out]) Compute() (View[Out], bool) {
	if !t.life.alive() || t.in.Cap() == 0 || !t.in.Full() {
		return View[Out]{}, false
	}

	t.life.gw.Execute(t.life.plan)
	t.out.markFilled()
	t.computed = true
	t.computedFrom = t.in.version
	return t.out.View(), true
}

// Fresh reports whether the output was computed from the current input
// contents. Any push, pop, reset or write through a mutable view of the input
// after Compute makes the output stale.
func (t *Transform[In, Out]) Fresh() bool {
	return t.computed && t.life.alive() && t.computedFrom == t.in.version
}

// Close destroys the plan and then frees the input and output memories.
// Further calls return nil.
func (t *Transform[In, Out]) Close() error {
	err := t.life.close()
	t.in.release()
	t.out.release()
	return err
}
