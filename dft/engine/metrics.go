package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for gateway operations.
type Metrics struct {
	allocationsTotal *prometheus.CounterVec
	freesTotal       *prometheus.CounterVec
	plansBuiltTotal  *prometheus.CounterVec
	plansDestroyed   prometheus.Counter
	executionsTotal  prometheus.Counter
	errorsTotal      *prometheus.CounterVec
	liveBuffers      prometheus.Gauge
	livePlans        prometheus.Gauge
	lockWait         prometheus.Histogram
}

// NewMetrics creates the gateway collectors and registers them with reg.
// A nil reg creates unregistered collectors, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		allocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "allocations_total",
				Help:      "Total number of engine memory allocations",
			},
			[]string{"kind"},
		),
		freesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "frees_total",
				Help:      "Total number of engine memory frees",
			},
			[]string{"kind"},
		),
		plansBuiltTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "plans_built_total",
				Help:      "Total number of plans built",
			},
			[]string{"direction"},
		),
		plansDestroyed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "plans_destroyed_total",
				Help:      "Total number of plans destroyed",
			},
		),
		executionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "executions_total",
				Help:      "Total number of plan executions",
			},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "errors_total",
				Help:      "Total number of failed engine calls",
			},
			[]string{"operation"},
		),
		liveBuffers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "live_buffers",
				Help:      "Number of allocated, not yet freed engine memories",
			},
		),
		livePlans: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "live_plans",
				Help:      "Number of built, not yet destroyed plans",
			},
		),
		lockWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "dft",
				Subsystem: "engine",
				Name:      "lock_wait_seconds",
				Help:      "Time spent waiting for the engine lock",
				Buckets: []float64{
					.000001, .00001, .0001, .001,
					.01, .1, 1,
				},
			},
		),
	}
}

// Init pre-initializes label combinations so they are exported before the
// first operation.
func (m *Metrics) Init() {
	for _, kind := range []ElementKind{Real, Complex} {
		m.allocationsTotal.WithLabelValues(kind.String())
		m.freesTotal.WithLabelValues(kind.String())
	}
	for _, dir := range []Direction{Forward, Inverse} {
		m.plansBuiltTotal.WithLabelValues(dir.String())
	}
	for _, op := range []string{"allocate", "free", "build_plan", "destroy_plan"} {
		m.errorsTotal.WithLabelValues(op)
	}
}

func (m *Metrics) allocated(kind ElementKind) {
	m.allocationsTotal.WithLabelValues(kind.String()).Inc()
	m.liveBuffers.Inc()
}

func (m *Metrics) freed(kind ElementKind) {
	m.freesTotal.WithLabelValues(kind.String()).Inc()
	m.liveBuffers.Dec()
}

func (m *Metrics) planBuilt(dir Direction) {
	m.plansBuiltTotal.WithLabelValues(dir.String()).Inc()
	m.livePlans.Inc()
}

func (m *Metrics) planDestroyed() {
	m.plansDestroyed.Inc()
	m.livePlans.Dec()
}

func (m *Metrics) failed(op string) {
	m.errorsTotal.WithLabelValues(op).Inc()
}
