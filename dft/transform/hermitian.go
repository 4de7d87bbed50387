package transform

import (
	"iter"
	"math/cmplx"
)

type hermitianPhase int

const (
	phaseForward hermitianPhase = iota
	phaseMirror
	phaseDone
)

// HermitianIterator walks the full N-bin spectrum of a real forward
// transform. It yields the stored half-spectrum bins 0..N/2 in order and
// then reconstructs bins N/2+1..N-1 as conjugates of the stored bins,
// walking back towards bin 1. For even N the Nyquist bin is its own
// conjugate and is yielded once.
//
// N is the input capacity of the transform. The iterator reads the output
// as it was when the iterator was created; if Compute has not succeeded yet
// it yields nothing.
type HermitianIterator struct {
	bins  View[complex128]
	phase hermitianPhase
	pos   int

	// hasSelfConjugateBin is set for even N, where the last stored bin is
	// not mirrored.
	hasSelfConjugateBin bool
}

// NewHermitianIterator returns an iterator over the spectrum of t.
func NewHermitianIterator(t *Transform[float64, complex128]) *HermitianIterator {
	it := &HermitianIterator{
		bins:                t.Output(),
		hasSelfConjugateBin: t.in.Cap()%2 == 0,
	}
	if it.bins.Len() == 0 {
		it.phase = phaseDone
	}
	return it
}

func (it *HermitianIterator) mirrorStart() int {
	if it.hasSelfConjugateBin {
		return it.bins.Len() - 2
	}
	return it.bins.Len() - 1
}

// Next returns the next bin. ok is false once the spectrum is exhausted.
func (it *HermitianIterator) Next() (v complex128, ok bool) {
	switch it.phase {
	case phaseForward:
		v, ok = it.bins.At(it.pos)
		if !ok {
			it.phase = phaseDone
			return 0, false
		}
		it.pos++
		if it.pos == it.bins.Len() {
			it.phase = phaseMirror
			it.pos = it.mirrorStart()
		}
		return v, true

	case phaseMirror:
		if it.pos < 1 {
			it.phase = phaseDone
			return 0, false
		}
		v, ok = it.bins.At(it.pos)
		if !ok {
			it.phase = phaseDone
			return 0, false
		}
		it.pos--
		return cmplx.Conj(v), true

	default:
		return 0, false
	}
}

// Remaining returns how many bins Next will still yield.
func (it *HermitianIterator) Remaining() int {
	if !it.bins.Valid() {
		return 0
	}
	switch it.phase {
	case phaseForward:
		return it.bins.Len() - it.pos + max(it.mirrorStart(), 0)
	case phaseMirror:
		return max(it.pos, 0)
	default:
		return 0
	}
}

// All returns the remaining bins as a sequence.
func (it *HermitianIterator) All() iter.Seq[complex128] {
	return func(yield func(complex128) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Spectrum returns the full spectrum of t as a sequence.
func Spectrum(t *Transform[float64, complex128]) iter.Seq[complex128] {
	return NewHermitianIterator(t).All()
}
