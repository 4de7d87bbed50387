package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// engineMu serializes planning and memory management across every gateway
// that does not inject its own locker.
var engineMu sync.Mutex

// DefaultLocker returns the process-wide engine lock.
func DefaultLocker() sync.Locker {
	return &engineMu
}

// NopLocker is a sync.Locker that does nothing. Use it only with engines that
// are known to be reentrant, or in single-goroutine tests.
type NopLocker struct{}

// Lock does nothing.
func (NopLocker) Lock() {}

// Unlock does nothing.
func (NopLocker) Unlock() {}

// Stats is a snapshot of the resources a gateway has handed out.
type Stats struct {
	LiveBuffers int64
	LivePlans   int64
}

// Gateway is the single entry point into an Engine. It holds its locker for
// the duration of every allocation, free, plan build and plan destruction.
type Gateway struct {
	eng     Engine
	mu      sync.Locker
	logger  *zap.Logger
	metrics *Metrics

	liveBuffers atomic.Int64
	livePlans   atomic.Int64
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLocker replaces the process-wide lock.
func WithLocker(l sync.Locker) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.mu = l
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics sets the Prometheus collectors updated by the gateway.
func WithMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) {
		if m != nil {
			g.metrics = m
		}
	}
}

// NewGateway wraps eng.
func NewGateway(eng Engine, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		eng:    eng,
		mu:     DefaultLocker(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.metrics == nil {
		g.metrics = NewMetrics(nil)
	}
	g.logger = g.logger.With(zap.String("engine", eng.Name()))
	return g
}

// Engine returns the wrapped engine.
func (g *Gateway) Engine() Engine { return g.eng }

// Logger returns the gateway logger.
func (g *Gateway) Logger() *zap.Logger { return g.logger }

// Stats returns the number of live memories and plans.
func (g *Gateway) Stats() Stats {
	return Stats{
		LiveBuffers: g.liveBuffers.Load(),
		LivePlans:   g.livePlans.Load(),
	}
}

func (g *Gateway) acquire() {
	start := time.Now()
	g.mu.Lock()
	g.metrics.lockWait.Observe(time.Since(start).Seconds())
}

// Allocate allocates count elements of kind under the lock.
func (g *Gateway) Allocate(kind ElementKind, count int) (*Memory, error) {
	g.acquire()
	m, err := g.eng.Allocate(kind, count)
	g.mu.Unlock()

	if err != nil {
		g.metrics.failed("allocate")
		g.logger.Error("allocation failed",
			zap.Stringer("kind", kind), zap.Int("count", count), zap.Error(err))
		return nil, err
	}
	g.liveBuffers.Add(1)
	g.metrics.allocated(kind)
	g.logger.Debug("allocated",
		zap.Uint64("id", m.ID()), zap.Stringer("kind", kind), zap.Int("count", count))
	return m, nil
}

// Free releases m under the lock.
func (g *Gateway) Free(m *Memory) error {
	g.acquire()
	err := g.free(m)
	g.mu.Unlock()
	return err
}

func (g *Gateway) free(m *Memory) error {
	if err := g.eng.Free(m); err != nil {
		g.metrics.failed("free")
		g.logger.Error("free failed", zap.Uint64("id", m.ID()), zap.Error(err))
		return err
	}
	g.liveBuffers.Add(-1)
	g.metrics.freed(m.Kind())
	g.logger.Debug("freed", zap.Uint64("id", m.ID()))
	return nil
}

// BuildPlan validates req and builds a plan under the lock.
func (g *Gateway) BuildPlan(req PlanRequest) (Plan, error) {
	g.acquire()
	p, err := g.buildPlan(req)
	g.mu.Unlock()

	if err != nil {
		g.metrics.failed("build_plan")
		g.logger.Error("plan build failed",
			zap.Int("length", req.Length), zap.Stringer("direction", req.Direction), zap.Error(err))
		return nil, err
	}
	g.livePlans.Add(1)
	g.metrics.planBuilt(req.Direction)
	in, out := req.Kinds()
	g.logger.Debug("plan built",
		zap.Int("length", req.Length),
		zap.Stringer("input", in),
		zap.Stringer("output", out),
		zap.Stringer("direction", req.Direction),
		zap.Stringer("effort", req.Effort))
	return p, nil
}

func (g *Gateway) buildPlan(req PlanRequest) (Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return g.eng.BuildPlan(req)
}

// DestroyPlan destroys p under the lock.
func (g *Gateway) DestroyPlan(p Plan) error {
	g.acquire()
	err := g.destroyPlan(p)
	g.mu.Unlock()
	return err
}

func (g *Gateway) destroyPlan(p Plan) error {
	if err := g.eng.DestroyPlan(p); err != nil {
		g.metrics.failed("destroy_plan")
		g.logger.Error("plan destroy failed", zap.Error(err))
		return err
	}
	g.livePlans.Add(-1)
	g.metrics.planDestroyed()
	g.logger.Debug("plan destroyed", zap.Int("length", p.Request().Length))
	return nil
}

// Release destroys p and then frees mems in order, all within one critical
// section. Nil entries are skipped. Every release is attempted even if an
// earlier one fails; the errors are joined.
func (g *Gateway) Release(p Plan, mems ...*Memory) error {
	var errs []error

	g.acquire()
	if p != nil {
		errs = append(errs, g.destroyPlan(p))
	}
	for _, m := range mems {
		if m != nil {
			errs = append(errs, g.free(m))
		}
	}
	g.mu.Unlock()

	return errors.Join(errs...)
}

// Execute runs p. It does not take the lock; callers must not touch the
// plan's memories from another goroutine while it runs.
func (g *Gateway) Execute(p Plan) {
	g.eng.Execute(p)
	g.metrics.executionsTotal.Inc()
}
