// Package transform manages fixed-size operand buffers and execution plans
// for one-dimensional discrete Fourier transforms.
//
// A [Transform] owns an input [Buffer], an output Buffer and an engine plan
// bound to both. Callers fill the input through [Transform.MutableInput],
// call [Transform.Compute] once the input is full, and read the result
// through [Transform.Output]. The spectrum computation itself is delegated to
// an engine (see package engine); this package only manages memory, plans
// and readiness.
//
// # Usage
//
//	t, err := transform.RealFromSlice([]float64{1, 0, 2, 4, 5, 2, 0, -1})
//	if err != nil {
//		return err
//	}
//	defer t.Close()
//
//	half, ok := t.Compute() // 5 bins: DC .. Nyquist
//	for bin := range transform.Spectrum(t) {
//		// all 8 bins, the upper 3 reconstructed by conjugate symmetry
//	}
//
// # Capabilities
//
// Four transform kinds are supported, each described by a [Capability]:
//
//   - RealForward: N reals to N/2+1 complex bins
//   - ComplexForward: N complex values to N complex bins
//   - ComplexInverseToComplex: a half-spectrum of N bins to 2*(N-1) complex
//     values, or to an explicit target length T with N == T/2+1
//   - ComplexInverseToReal: a half-spectrum of T/2+1 bins to T reals
//
// Inverse transforms are unnormalised: Inverse(Forward(x)) == N*x.
//
// # Readiness
//
// Compute reports false ("not ready") unless the input buffer is exactly
// full and non-empty. A successful Compute overwrites the output in place.
// Output persists until the next successful Compute: popping input values
// afterwards does not clear it. [Transform.Fresh] reports whether the output
// was computed from the current input contents.
//
// # Lifetime
//
// Buffers live in engine memory with stable addresses and are never exposed
// as growable slices. [View] values are bounds-checked and tied to their
// owning buffer; after [Transform.Close] they report no elements. Close
// destroys the plan before freeing the buffers. A transform is released by a
// finalizer, with a warning, only once neither it nor any of its buffers,
// views or iterators is reachable; a view outliving its Transform value
// keeps reading valid data.
//
// # Concurrency
//
// Allocation, planning and release go through an engine gateway that
// serializes them behind one lock. Compute does not take that lock, so
// independent transforms may compute concurrently. A single Transform is not
// safe for concurrent use.
package transform
