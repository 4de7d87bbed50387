// Package spectrum derives real-valued views of transform outputs: the full
// spectrum of a real forward transform, per-bin magnitude, power and phase.
//
// Nothing here computes a transform. The helpers read the output of a
// transform.Transform and use algo-vecmath kernels for the element-wise math.
package spectrum
