// Package enginetest provides instrumentation for testing code built on the
// engine contract: a Recorder that wraps an Engine and keeps a ledger of
// every call, and a CountingLocker that can be injected into a Gateway.
package enginetest

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-dft/dft/engine"
)

// Op names a recorded engine call.
type Op string

// Recorded operations.
const (
	OpAllocate    Op = "allocate"
	OpFree        Op = "free"
	OpBuildPlan   Op = "build_plan"
	OpExecute     Op = "execute"
	OpDestroyPlan Op = "destroy_plan"
)

// Event is one successful engine call. Memory is set for allocate and free;
// Plan, Input and Output are set for plan operations.
type Event struct {
	Op     Op
	Memory uint64
	Plan   uint64
	Input  uint64
	Output uint64
}

// Recorder wraps an Engine and records every successful call in order. It
// also counts calls to the non-reentrant entry points that overlapped in
// time, which must stay zero when the Recorder sits behind a Gateway.
type Recorder struct {
	inner engine.Engine

	mu       sync.Mutex
	events   []Event
	planIDs  map[engine.Plan]uint64
	nextPlan uint64

	inflight atomic.Int32
	overlaps atomic.Int32
}

// NewRecorder wraps inner.
func NewRecorder(inner engine.Engine) *Recorder {
	return &Recorder{
		inner:   inner,
		planIDs: make(map[engine.Plan]uint64),
	}
}

func (r *Recorder) enter() {
	if r.inflight.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	// Widen the window in which an unserialized caller would be observed.
	runtime.Gosched()
}

func (r *Recorder) exit() {
	r.inflight.Add(-1)
}

func (r *Recorder) record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *Recorder) planID(p engine.Plan) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.planIDs[p]
}

// Name returns the wrapped engine name.
func (r *Recorder) Name() string { return r.inner.Name() }

// Allocate forwards to the wrapped engine.
func (r *Recorder) Allocate(kind engine.ElementKind, count int) (*engine.Memory, error) {
	r.enter()
	defer r.exit()

	m, err := r.inner.Allocate(kind, count)
	if err != nil {
		return nil, err
	}
	r.record(Event{Op: OpAllocate, Memory: m.ID()})
	return m, nil
}

// Free forwards to the wrapped engine.
func (r *Recorder) Free(m *engine.Memory) error {
	r.enter()
	defer r.exit()

	if err := r.inner.Free(m); err != nil {
		return err
	}
	r.record(Event{Op: OpFree, Memory: m.ID()})
	return nil
}

// BuildPlan forwards to the wrapped engine.
func (r *Recorder) BuildPlan(req engine.PlanRequest) (engine.Plan, error) {
	r.enter()
	defer r.exit()

	p, err := r.inner.BuildPlan(req)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextPlan++
	id := r.nextPlan
	r.planIDs[p] = id
	r.events = append(r.events, Event{
		Op:     OpBuildPlan,
		Plan:   id,
		Input:  req.Input.ID(),
		Output: req.Output.ID(),
	})
	r.mu.Unlock()
	return p, nil
}

// Execute forwards to the wrapped engine. It is not counted towards
// overlaps because execution may run concurrently.
func (r *Recorder) Execute(p engine.Plan) {
	r.inner.Execute(p)
	r.record(Event{Op: OpExecute, Plan: r.planID(p)})
}

// DestroyPlan forwards to the wrapped engine.
func (r *Recorder) DestroyPlan(p engine.Plan) error {
	r.enter()
	defer r.exit()

	if err := r.inner.DestroyPlan(p); err != nil {
		return err
	}
	req := p.Request()
	r.record(Event{
		Op:     OpDestroyPlan,
		Plan:   r.planID(p),
		Input:  req.Input.ID(),
		Output: req.Output.ID(),
	})
	return nil
}

// Events returns a copy of the ledger.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Op == op {
			n++
		}
	}
	return n
}

// Overlaps returns how many non-reentrant calls started while another one
// was still running.
func (r *Recorder) Overlaps() int {
	return int(r.overlaps.Load())
}

// Verify checks the ledger for leaks and ordering violations: every
// allocation freed once, every plan destroyed once and before either of its
// memories, and no overlapping non-reentrant calls.
func (r *Recorder) Verify() error {
	var errs []error

	freedAt := make(map[uint64]int)
	allocated := make(map[uint64]bool)
	destroyedAt := make(map[uint64]int)
	built := make(map[uint64]Event)

	events := r.Events()
	for i, ev := range events {
		switch ev.Op {
		case OpAllocate:
			allocated[ev.Memory] = true
		case OpFree:
			if _, dup := freedAt[ev.Memory]; dup {
				errs = append(errs, fmt.Errorf("memory %d freed twice", ev.Memory))
			}
			freedAt[ev.Memory] = i
		case OpBuildPlan:
			built[ev.Plan] = ev
		case OpDestroyPlan:
			if _, dup := destroyedAt[ev.Plan]; dup {
				errs = append(errs, fmt.Errorf("plan %d destroyed twice", ev.Plan))
			}
			destroyedAt[ev.Plan] = i
		}
	}

	for id := range allocated {
		if _, ok := freedAt[id]; !ok {
			errs = append(errs, fmt.Errorf("memory %d leaked", id))
		}
	}
	for id, ev := range built {
		at, ok := destroyedAt[id]
		if !ok {
			errs = append(errs, fmt.Errorf("plan %d leaked", id))
			continue
		}
		for _, mem := range []uint64{ev.Input, ev.Output} {
			if f, ok := freedAt[mem]; ok && f < at {
				errs = append(errs, fmt.Errorf("memory %d freed before plan %d was destroyed", mem, id))
			}
		}
	}
	if n := r.Overlaps(); n > 0 {
		errs = append(errs, fmt.Errorf("%d overlapping engine calls", n))
	}
	return errors.Join(errs...)
}

// CountingLocker is a mutex that counts acquisitions.
type CountingLocker struct {
	mu    sync.Mutex
	locks atomic.Int64
}

// Lock acquires the mutex.
func (l *CountingLocker) Lock() {
	l.mu.Lock()
	l.locks.Add(1)
}

// Unlock releases the mutex.
func (l *CountingLocker) Unlock() {
	l.mu.Unlock()
}

// Count returns the number of acquisitions so far.
func (l *CountingLocker) Count() int64 {
	return l.locks.Load()
}
