package engine

import (
	"errors"
	"fmt"
)

// Errors returned by engines and the gateway.
var (
	ErrAllocation     = errors.New("engine: allocation failed")
	ErrInvalidLength  = errors.New("engine: invalid transform length")
	ErrLengthMismatch = errors.New("engine: buffer length mismatch")
	ErrKindMismatch   = errors.New("engine: element kind mismatch")
	ErrDoubleFree     = errors.New("engine: memory already freed")
	ErrFreed          = errors.New("engine: memory freed while planning")
	ErrPlanDestroyed  = errors.New("engine: plan already destroyed")
	ErrUnknownPlan    = errors.New("engine: plan built by another engine")
)

// ElementKind identifies the scalar layout of engine memory.
type ElementKind int

const (
	// Real is a float64 scalar.
	Real ElementKind = iota
	// Complex is a complex128 (pair of float64).
	Complex
)

// String returns the kind name.
func (k ElementKind) String() string {
	switch k {
	case Real:
		return "real"
	case Complex:
		return "complex"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Size returns the element size in bytes.
func (k ElementKind) Size() int {
	if k == Complex {
		return 16
	}
	return 8
}

// Direction selects the transform direction.
type Direction int

const (
	// Forward computes the spectrum of a sequence.
	Forward Direction = iota
	// Inverse reconstructs a sequence from its spectrum.
	Inverse
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Effort is the planning-effort hint handed to the engine.
type Effort int

const (
	// EffortEstimate picks a plan heuristically. It is the fastest to plan,
	// not necessarily the fastest to execute.
	EffortEstimate Effort = iota
	// EffortMeasure lets the engine time candidate plans.
	EffortMeasure
	// EffortPatient lets the engine search more candidates than EffortMeasure.
	EffortPatient
)

// String returns the effort name as used in configuration files.
func (e Effort) String() string {
	switch e {
	case EffortEstimate:
		return "estimate"
	case EffortMeasure:
		return "measure"
	case EffortPatient:
		return "patient"
	default:
		return fmt.Sprintf("Effort(%d)", int(e))
	}
}

// ParseEffort parses an effort name. The empty string yields EffortEstimate.
func ParseEffort(s string) (Effort, error) {
	switch s {
	case "", "estimate":
		return EffortEstimate, nil
	case "measure":
		return EffortMeasure, nil
	case "patient":
		return EffortPatient, nil
	default:
		return EffortEstimate, fmt.Errorf("engine: unknown effort %q", s)
	}
}

// PlanRequest describes the plan to build: the logical transform length,
// the memories the plan is bound to, the direction and the effort hint.
type PlanRequest struct {
	Length    int
	Input     *Memory
	Output    *Memory
	Direction Direction
	Effort    Effort
}

// Kinds returns the element-kind pair of the request.
func (r PlanRequest) Kinds() (in, out ElementKind) {
	return r.Input.Kind(), r.Output.Kind()
}

// ExpectedLens returns the input and output element counts an engine
// requires for a transform of length n with the given kinds and direction.
func ExpectedLens(in, out ElementKind, dir Direction, n int) (inLen, outLen int, err error) {
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	switch {
	case in == Real && out == Complex && dir == Forward:
		return n, n/2 + 1, nil
	case in == Complex && out == Complex && dir == Forward:
		return n, n, nil
	case in == Complex && out == Complex && dir == Inverse:
		return n/2 + 1, n, nil
	case in == Complex && out == Real && dir == Inverse:
		return n/2 + 1, n, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s to %s %s", ErrKindMismatch, in, out, dir)
	}
}

// Validate checks that the request is consistent: both memories are live and
// their lengths match what a transform of r.Length needs.
func (r PlanRequest) Validate() error {
	if r.Input == nil || r.Output == nil {
		return fmt.Errorf("%w: nil memory", ErrLengthMismatch)
	}
	if r.Input.Freed() || r.Output.Freed() {
		return ErrFreed
	}

	inKind, outKind := r.Kinds()
	inLen, outLen, err := ExpectedLens(inKind, outKind, r.Direction, r.Length)
	if err != nil {
		return err
	}
	if r.Input.Len() != inLen || r.Output.Len() != outLen {
		return fmt.Errorf("%w: length %d needs %d in / %d out, got %d / %d",
			ErrLengthMismatch, r.Length, inLen, outLen, r.Input.Len(), r.Output.Len())
	}
	return nil
}

// Plan is an opaque handle produced by an Engine. It stays bound to the
// memories of the request it was built from.
type Plan interface {
	Request() PlanRequest
}

// Engine is the external transform-execution engine.
//
// Allocate, Free, BuildPlan and DestroyPlan are not required to be safe for
// concurrent use; call them through a [Gateway]. Execute must be safe to call
// concurrently for distinct plans.
type Engine interface {
	Name() string
	Allocate(kind ElementKind, count int) (*Memory, error)
	Free(m *Memory) error
	BuildPlan(req PlanRequest) (Plan, error)
	Execute(p Plan)
	DestroyPlan(p Plan) error
}
