package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave completing cycles periods over
// length samples.
func DeterministicSine(cycles, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	if length == 0 {
		return out
	}
	step := 2 * math.Pi * cycles / float64(length)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// ComplexNoise generates complex white noise with a fixed seed.
func ComplexNoise(seed int64, amplitude float64, length int) []complex128 {
	out := make([]complex128, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = complex((rng.Float64()*2-1)*amplitude, (rng.Float64()*2-1)*amplitude)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// HalfSpectrum returns the first n/2+1 bins of the DFT of the real
// sequence x, where n = len(x). The empty sequence has one zero bin.
func HalfSpectrum(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{0}
	}
	full := NaiveDFT(Complexify(x))
	return full[:len(x)/2+1]
}
