package engine

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// maxAllocBytes bounds a single allocation so oversized requests fail with
// ErrAllocation instead of a runtime panic. It fits int on 32-bit targets.
const maxAllocBytes = min(1<<40, math.MaxInt)

var memoryIDs atomic.Uint64

// Memory is a fixed-length, aligned region of engine-owned elements.
//
// The backing array lives on the Go heap, which does not move objects, so the
// base address is stable until the memory is freed. Plans refer to it
// directly.
type Memory struct {
	id    uint64
	kind  ElementKind
	n     int
	align int
	reals []float64
	cplx  []complex128
	freed atomic.Bool
}

// NewMemory allocates count elements of kind whose first element is aligned
// to align bytes. align must be a power of two; values below the element size
// are raised to it. Backends call NewMemory from their Allocate method.
func NewMemory(kind ElementKind, count, align int) (*Memory, error) {
	if kind != Real && kind != Complex {
		return nil, fmt.Errorf("%w: unknown kind %s", ErrAllocation, kind)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrAllocation, count)
	}
	size := kind.Size()
	if align < size {
		align = size
	}
	if align&(align-1) != 0 {
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", ErrAllocation, align)
	}
	if count > (maxAllocBytes-align)/size {
		return nil, fmt.Errorf("%w: %d %s elements exceed the allocation limit", ErrAllocation, count, kind)
	}

	m := &Memory{
		id:    memoryIDs.Add(1),
		kind:  kind,
		n:     count,
		align: align,
	}
	words := alignedWords(count*size/8, align)
	switch kind {
	case Real:
		m.reals = words
	case Complex:
		m.cplx = []complex128{}
		if count > 0 {
			m.cplx = unsafe.Slice((*complex128)(unsafe.Pointer(&words[0])), count)
		}
	}
	return m, nil
}

// alignedWords over-allocates a float64 array and returns the window of n
// words starting at the first align-byte boundary, with its capacity clipped
// to n. complex128 only needs 8-byte alignment, so complex memory is carved
// from the same word array.
func alignedWords(n, align int) []float64 {
	pad := align/8 - 1
	raw := make([]float64, n+pad)
	if n == 0 {
		return raw[:0:0]
	}
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) % uintptr(align)); rem != 0 {
		off = (align - rem) / 8
	}
	return raw[off : off+n : off+n]
}

// ID returns a process-unique identifier for the allocation.
func (m *Memory) ID() uint64 { return m.id }

// Kind returns the element kind.
func (m *Memory) Kind() ElementKind { return m.kind }

// Len returns the number of elements.
func (m *Memory) Len() int { return m.n }

// Alignment returns the guaranteed byte alignment of the first element.
func (m *Memory) Alignment() int { return m.align }

// Freed reports whether the memory has been released.
func (m *Memory) Freed() bool { return m.freed.Load() }

// Addr returns the address of the first element, or 0 for an empty or freed
// region.
func (m *Memory) Addr() uintptr {
	if m.Freed() || m.n == 0 {
		return 0
	}
	if m.kind == Real {
		return uintptr(unsafe.Pointer(&m.reals[0]))
	}
	return uintptr(unsafe.Pointer(&m.cplx[0]))
}

// Reals returns the float64 elements, or nil if the memory is complex or
// freed. The returned slice has len == cap, so appending never writes into
// engine memory.
func (m *Memory) Reals() []float64 {
	if m.Freed() {
		return nil
	}
	return m.reals
}

// Complexes returns the complex128 elements, or nil if the memory is real or
// freed.
func (m *Memory) Complexes() []complex128 {
	if m.Freed() {
		return nil
	}
	return m.cplx
}

// Release marks the memory freed and drops the engine's reference to it.
// Backends call Release from their Free method.
func (m *Memory) Release() error {
	if !m.freed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: id %d", ErrDoubleFree, m.id)
	}
	m.reals = nil
	m.cplx = nil
	return nil
}
