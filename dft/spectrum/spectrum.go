package spectrum

import (
	"math/cmplx"
	"slices"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dft/dft/transform"
)

// scratchBuf holds pooled memory for splitting complex bins into parts.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

func split(in []complex128, re, im []float64) {
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
}

// Full returns all N bins of the spectrum of a real forward transform, with
// the bins above N/2 reconstructed by conjugate symmetry. It returns nil if t
// has not computed an output yet.
func Full(t *transform.Transform[float64, complex128]) []complex128 {
	return slices.Collect(transform.Spectrum(t))
}

// Magnitude returns |X[k]| for each bin of v.
func Magnitude(v transform.View[complex128]) []float64 {
	return MagnitudeOf(v.Values())
}

// Power returns |X[k]|^2 for each bin of v.
func Power(v transform.View[complex128]) []float64 {
	return PowerOf(v.Values())
}

// Phase returns arg(X[k]) in radians for each bin of v.
func Phase(v transform.View[complex128]) []float64 {
	if v.Len() == 0 {
		return nil
	}
	out := make([]float64, v.Len())
	for i, c := range v.All() {
		out[i] = cmplx.Phase(c)
	}
	return out
}

// FullMagnitude returns |X[k]| for all N bins of a real forward transform.
func FullMagnitude(t *transform.Transform[float64, complex128]) []float64 {
	return MagnitudeOf(Full(t))
}

// MagnitudeOf returns |X[k]| for each element of in. Scratch buffers are
// pooled, so in steady state only the output slice is allocated.
func MagnitudeOf(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	split(in, re, im)
	vecmath.Magnitude(out, re, im)
	putScratch(buf)
	return out
}

// PowerOf returns |X[k]|^2 for each element of in.
func PowerOf(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	split(in, re, im)
	vecmath.Power(out, re, im)
	putScratch(buf)
	return out
}
