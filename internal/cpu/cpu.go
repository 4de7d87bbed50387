// Package cpu reports the SIMD width of the host and derives from it the
// byte alignment engine backends guarantee for operand memory.
package cpu

import "sync"

// SIMDLevel is the widest vector extension the host supports.
type SIMDLevel int

// SIMD levels, narrowest first within each architecture.
const (
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

// String returns the conventional extension name.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// VectorBytes returns the register width of the level in bytes, never less
// than 16 so complex128 elements are always naturally aligned.
func (s SIMDLevel) VectorBytes() int {
	switch s {
	case SIMDAVX512:
		return 64
	case SIMDAVX, SIMDAVX2:
		return 32
	default:
		return 16
	}
}

// Features is the subset of host capabilities that affects alignment.
type Features struct {
	HasSSE2   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	// ForceGeneric reports SIMDNone regardless of the flags above.
	ForceGeneric bool

	Architecture string
}

// Level returns the widest SIMD level in f.
func (f Features) Level() SIMDLevel {
	switch {
	case f.ForceGeneric:
		return SIMDNone
	case f.HasAVX512:
		return SIMDAVX512
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasAVX:
		return SIMDAVX
	case f.HasSSE2:
		return SIMDSSE2
	case f.HasNEON:
		return SIMDNEON
	default:
		return SIMDNone
	}
}

var (
	mu     sync.RWMutex
	forced *Features
	detect = sync.OnceValue(probe)
)

// DetectFeatures returns the host features. Probing happens once; the
// result is cached unless overridden with SetForcedFeatures.
func DetectFeatures() Features {
	mu.RLock()
	f, d := forced, detect
	mu.RUnlock()

	if f != nil {
		return *f
	}
	return d()
}

// Alignment returns the operand alignment in bytes for this host.
func Alignment() int {
	return DetectFeatures().Level().VectorBytes()
}

// SetForcedFeatures makes DetectFeatures return f. Tests only.
func SetForcedFeatures(f Features) {
	mu.Lock()
	forced = &f
	mu.Unlock()
}

// ResetDetection drops forced features and the cached probe result.
func ResetDetection() {
	mu.Lock()
	forced = nil
	detect = sync.OnceValue(probe)
	mu.Unlock()
}
