package observability

import (
	"time"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the simulator.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	runsTotal        *prometheus.CounterVec
	solvesTotal      *prometheus.CounterVec
	solverIterations prometheus.Counter
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardsim_request_duration_seconds",
				Help:    "Duration of engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardsim_runs_total",
				Help: "Total simulation runs by status.",
			},
			[]string{"status"},
		),
		solvesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardsim_solves_total",
				Help: "Total solver calls by outcome.",
			},
			[]string{"status"},
		),
		solverIterations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cardsim_solver_iterations_total",
				Help: "Total solver bisection iterations (one full simulation each).",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardsim_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardsim_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an engine operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRun increments the run counter with a status label.
func (m *Metrics) IncrRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// IncrSolve increments the solve counter with the outcome status.
func (m *Metrics) IncrSolve(status string) {
	m.solvesTotal.WithLabelValues(status).Inc()
}

// AddSolverIterations records how many simulations one solve consumed.
func (m *Metrics) AddSolverIterations(n int) {
	m.solverIterations.Add(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetEngineSnapshot returns a snapshot of engine counters suitable for the
// GET /v1/metrics/engine endpoint.
// Note: Prometheus counters expose cumulative values.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	runsOK := getCounterValue(m.runsTotal, "success")
	runsErr := getCounterValue(m.runsTotal, "error")
	solves := getCounterValue(m.solvesTotal, domain.SolveConverged) +
		getCounterValue(m.solvesTotal, domain.SolveInfeasible) +
		getCounterValue(m.solvesTotal, domain.SolveDidNotConverge)
	iterations := getPlainCounterValue(m.solverIterations)
	cacheHits := getCounterValue(m.cacheHits, "solve")
	cacheMisses := getCounterValue(m.cacheMisses, "solve")

	totalRuns := runsOK + runsErr
	errorRate := float64(0)
	avgIterations := float64(0)
	cacheHitRate := float64(0)

	if totalRuns > 0 {
		errorRate = runsErr / totalRuns
	}
	if solves > 0 {
		avgIterations = iterations / solves
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.EngineMetrics{
		TotalRuns:           int64(totalRuns),
		TotalSolves:         int64(solves),
		ErrorRate:           errorRate,
		AvgSolverIterations: avgIterations,
		CacheHitRate:        cacheHitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
