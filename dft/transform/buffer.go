package transform

import (
	"fmt"
	"iter"
	"slices"

	"github.com/cwbudde/algo-dft/dft/engine"
)

// Element is the set of operand element types: real scalars and complex
// pairs of float64.
type Element interface {
	float64 | complex128
}

func kindOf[T Element]() engine.ElementKind {
	var zero T
	if _, ok := any(zero).(complex128); ok {
		return engine.Complex
	}
	return engine.Real
}

func slotsOf[T Element](m *engine.Memory) []T {
	var zero T
	if _, ok := any(zero).(complex128); ok {
		return any(m.Complexes()).([]T)
	}
	return any(m.Reals()).([]T)
}

// Buffer is a fixed-capacity, append-only buffer over engine memory.
//
// Only the first Len() slots are readable. Capacity never changes and the
// memory never moves, because a plan refers to it directly.
type Buffer[T Element] struct {
	life    *lifetime
	mem     *engine.Memory
	slots   []T
	size    int
	version uint64
}

func newBuffer[T Element](life *lifetime, capacity int) (*Buffer[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	mem, err := life.gw.Allocate(kindOf[T](), capacity)
	if err != nil {
		return nil, err
	}
	return &Buffer[T]{life: life, mem: mem, slots: slotsOf[T](mem)}, nil
}

func (b *Buffer[T]) released() bool { return !b.life.alive() }

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.slots) }

// Len returns the number of filled slots.
func (b *Buffer[T]) Len() int { return b.size }

// Full reports whether every slot is filled.
func (b *Buffer[T]) Full() bool { return b.size == len(b.slots) }

// Empty reports whether no slot is filled.
func (b *Buffer[T]) Empty() bool { return b.size == 0 }

// Push appends v. It returns false without writing if the buffer is full.
func (b *Buffer[T]) Push(v T) bool {
	if b.released() || b.size == len(b.slots) {
		return false
	}
	b.slots[b.size] = v
	b.size++
	b.version++
	return true
}

// PushSlice appends all of vs, or nothing if they do not fit.
func (b *Buffer[T]) PushSlice(vs []T) bool {
	if b.released() || b.size+len(vs) > len(b.slots) {
		return false
	}
	if len(vs) == 0 {
		return true
	}
	copy(b.slots[b.size:], vs)
	b.size += len(vs)
	b.version++
	return true
}

// Pop removes and returns the most recently appended element. The slot is
// unfilled but its storage is not cleared.
func (b *Buffer[T]) Pop() (T, bool) {
	var zero T
	if b.released() || b.size == 0 {
		return zero, false
	}
	b.size--
	b.version++
	return b.slots[b.size], true
}

// Get returns the element at i if 0 <= i < Len().
func (b *Buffer[T]) Get(i int) (T, bool) {
	var zero T
	if b.released() || i < 0 || i >= b.size {
		return zero, false
	}
	return b.slots[i], true
}

// Reset unfills every slot.
func (b *Buffer[T]) Reset() {
	if b.size == 0 {
		return
	}
	b.size = 0
	b.version++
}

// View returns a read-only view of the filled slots.
func (b *Buffer[T]) View() View[T] {
	if b.released() {
		return View[T]{owner: b}
	}
	return View[T]{owner: b, data: b.slots[:b.size:b.size]}
}

// MutView returns a writable view of the filled slots. Writing through it
// does not change Len().
func (b *Buffer[T]) MutView() MutView[T] {
	return MutView[T]{View: b.View()}
}

// markFilled exposes every slot as filled after the engine wrote them.
func (b *Buffer[T]) markFilled() {
	b.size = len(b.slots)
	b.version++
}

// release drops the buffer's slots after its lifetime was closed.
func (b *Buffer[T]) release() {
	b.slots = nil
	b.size = 0
}

// View is a bounds-checked window onto the filled slots of a Buffer at the
// time the view was taken. It keeps the owning Transform's memory alive and
// reports no elements once the Transform is closed. The zero View is empty.
type View[T Element] struct {
	owner *Buffer[T]
	data  []T
}

// Valid reports whether the owning buffer is still alive.
func (v View[T]) Valid() bool {
	return v.owner != nil && !v.owner.released()
}

// Len returns the number of elements in the view.
func (v View[T]) Len() int {
	if !v.Valid() {
		return 0
	}
	return len(v.data)
}

// At returns the element at i if it is within the view.
func (v View[T]) At(i int) (T, bool) {
	var zero T
	if !v.Valid() || i < 0 || i >= len(v.data) {
		return zero, false
	}
	return v.data[i], true
}

// All iterates over index/element pairs.
func (v View[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range v.Len() {
			if !v.Valid() || !yield(i, v.data[i]) {
				return
			}
		}
	}
}

// Values returns a copy of the elements.
func (v View[T]) Values() []T {
	if v.Len() == 0 {
		return nil
	}
	return slices.Clone(v.data)
}

// CopyTo copies the elements into dst and returns the number copied.
func (v View[T]) CopyTo(dst []T) int {
	if !v.Valid() {
		return 0
	}
	return copy(dst, v.data)
}

// MutView is a View that can also overwrite elements in place.
type MutView[T Element] struct {
	View[T]
}

// Set overwrites the element at i. It returns false if i is outside the view.
func (v MutView[T]) Set(i int, x T) bool {
	if !v.Valid() || i < 0 || i >= len(v.data) {
		return false
	}
	v.data[i] = x
	v.owner.version++
	return true
}
