package transform

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-dft/dft/engine"
)

// Errors returned when constructing transforms.
var (
	ErrInvalidCapacity = errors.New("transform: invalid capacity")
	ErrLengthMismatch  = errors.New("transform: capacity does not match target length")
	ErrMissingTarget   = errors.New("transform: target length required")
	ErrKindMismatch    = errors.New("transform: element types do not match capability")
)

// Kind enumerates the supported transform variants.
type Kind int

const (
	// RealForward maps N reals to the N/2+1-bin half-spectrum.
	RealForward Kind = iota
	// ComplexForward maps N complex values to N bins.
	ComplexForward
	// ComplexInverseToComplex maps a half-spectrum to a complex sequence.
	ComplexInverseToComplex
	// ComplexInverseToReal maps a half-spectrum to a real sequence.
	ComplexInverseToReal
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case RealForward:
		return "real-forward"
	case ComplexForward:
		return "complex-forward"
	case ComplexInverseToComplex:
		return "complex-inverse-to-complex"
	case ComplexInverseToReal:
		return "complex-inverse-to-real"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Kinds lists every variant.
func Kinds() []Kind {
	return []Kind{RealForward, ComplexForward, ComplexInverseToComplex, ComplexInverseToReal}
}

// Capability describes one transform variant: which element kinds it reads
// and writes, how large its output is for a given input capacity, and which
// plan to request from the engine.
type Capability struct {
	kind     Kind
	target   int
	explicit bool
}

// NewCapability returns the capability for kind without an explicit target
// length.
func NewCapability(kind Kind) Capability {
	return Capability{kind: kind}
}

// WithTarget returns a copy of c with an explicit transform length. Only the
// inverse variants use it.
func (c Capability) WithTarget(n int) Capability {
	c.target = n
	c.explicit = true
	return c
}

// Kind returns the variant.
func (c Capability) Kind() Kind { return c.kind }

// Target returns the explicit target length, if one was set.
func (c Capability) Target() (int, bool) { return c.target, c.explicit }

// InputKind returns the element kind of the input buffer.
func (c Capability) InputKind() engine.ElementKind {
	if c.kind == RealForward {
		return engine.Real
	}
	return engine.Complex
}

// OutputKind returns the element kind of the output buffer.
func (c Capability) OutputKind() engine.ElementKind {
	if c.kind == ComplexInverseToReal {
		return engine.Real
	}
	return engine.Complex
}

// Direction returns the transform direction.
func (c Capability) Direction() engine.Direction {
	if c.kind == ComplexInverseToComplex || c.kind == ComplexInverseToReal {
		return engine.Inverse
	}
	return engine.Forward
}

// InputLen returns the input capacity implied by an explicit target length
// for the inverse variants.
func (c Capability) InputLen() (int, error) {
	if c.Direction() != engine.Inverse || !c.explicit {
		return 0, fmt.Errorf("%w: %s", ErrMissingTarget, c.kind)
	}
	if c.target < 0 {
		return 0, fmt.Errorf("%w: target %d", ErrInvalidCapacity, c.target)
	}
	return c.target/2 + 1, nil
}

// TransformLen returns the logical transform length for an input buffer of
// capacity n.
func (c Capability) TransformLen(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCapacity, n)
	}

	switch c.kind {
	case RealForward, ComplexForward:
		return n, nil

	case ComplexInverseToComplex:
		if !c.explicit {
			if n == 0 {
				return 0, fmt.Errorf("%w: half-spectrum needs at least one bin", ErrInvalidCapacity)
			}
			return 2 * (n - 1), nil
		}
		return c.checkTarget(n)

	case ComplexInverseToReal:
		if !c.explicit {
			return 0, fmt.Errorf("%w: %s", ErrMissingTarget, c.kind)
		}
		return c.checkTarget(n)

	default:
		return 0, fmt.Errorf("transform: unknown capability %s", c.kind)
	}
}

func (c Capability) checkTarget(n int) (int, error) {
	want, err := c.InputLen()
	if err != nil {
		return 0, err
	}
	if n != want {
		return 0, fmt.Errorf("%w: target %d needs %d bins, capacity is %d", ErrLengthMismatch, c.target, want, n)
	}
	return c.target, nil
}

// OutputLen returns the output capacity required for an input buffer of
// capacity n.
func (c Capability) OutputLen(n int) (int, error) {
	length, err := c.TransformLen(n)
	if err != nil {
		return 0, err
	}
	_, out, err := engine.ExpectedLens(c.InputKind(), c.OutputKind(), c.Direction(), length)
	if err != nil {
		return 0, err
	}
	return out, nil
}

// PlanRequest builds the engine plan request binding in and out, where in
// holds the input buffer of capacity in.Len().
func (c Capability) PlanRequest(in, out *engine.Memory, effort engine.Effort) (engine.PlanRequest, error) {
	length, err := c.TransformLen(in.Len())
	if err != nil {
		return engine.PlanRequest{}, err
	}
	return engine.PlanRequest{
		Length:    length,
		Input:     in,
		Output:    out,
		Direction: c.Direction(),
		Effort:    effort,
	}, nil
}
