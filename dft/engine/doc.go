// Package engine defines the contract between this module and an external
// transform-execution engine, and the gateway that serializes access to it.
//
// An [Engine] allocates alignment-satisfying [Memory], builds address-bound
// [Plan] values for one-dimensional transforms, executes them and releases
// both again. The package does not implement any FFT itself; backends live in
// the subpackages:
//
//   - gonumfft: gonum.org/v1/gonum/dsp/fourier (default)
//   - algoengine: github.com/MeKo-Christian/algo-fft
//
// # Conventions
//
// Every backend follows the same numeric contract:
//
//   - Forward transforms use exp(-2*pi*i*j*k/N).
//   - Inverse transforms are unnormalised, so Inverse(Forward(x)) == N*x.
//   - Real forward output is the half-spectrum of N/2+1 bins.
//   - Complex inverse input is always a half-spectrum of N/2+1 bins which the
//     engine expands by Hermitian symmetry before transforming.
//   - Plans of length 0 are no-ops and plans of length 1 are the identity.
//
// # Serialization
//
// Planning and memory management are not assumed to be reentrant. A [Gateway]
// wraps an Engine and holds one [sync.Locker] across Allocate, Free,
// BuildPlan and DestroyPlan. Execute runs without the lock so independent
// plans can execute concurrently. By default all gateways share the
// process-wide lock returned by [DefaultLocker]; tests may inject [NopLocker]
// or an instrumented locker instead.
package engine
