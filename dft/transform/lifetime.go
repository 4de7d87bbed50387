package transform

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cwbudde/algo-dft/dft/engine"
	"go.uber.org/zap"
)

// lifetime owns the engine resources of one Transform. Both buffers point
// to it, so it stays reachable while a Transform, Buffer, View or
// HermitianIterator is still in use. It must not reference the buffers:
// an object with a finalizer that can reach itself is never collected.
type lifetime struct {
	gw     *engine.Gateway
	kind   Kind
	length int

	plan    engine.Plan
	in, out *engine.Memory

	closed atomic.Bool
}

func newLifetime(gw *engine.Gateway, kind Kind, length int) *lifetime {
	return &lifetime{gw: gw, kind: kind, length: length}
}

// arm installs the finalizer once every resource is acquired.
func (l *lifetime) arm() {
	runtime.SetFinalizer(l, (*lifetime).finalize)
}

// alive reports whether the resources are still held.
func (l *lifetime) alive() bool {
	return l != nil && !l.closed.Load()
}

// close destroys the plan and then frees the input and output memories.
// Further calls return nil.
func (l *lifetime) close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(l, nil)
	if err := l.gw.Release(l.plan, l.in, l.out); err != nil {
		return fmt.Errorf("transform: close: %w", err)
	}
	return nil
}

func (l *lifetime) finalize() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	l.gw.Logger().Warn("transform was not closed",
		zap.Stringer("capability", l.kind),
		zap.Int("length", l.length))
	if err := l.gw.Release(l.plan, l.in, l.out); err != nil {
		l.gw.Logger().Error("finalizer release failed", zap.Error(err))
	}
}
