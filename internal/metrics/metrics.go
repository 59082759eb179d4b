// Package metrics holds the Prometheus collectors exported by the arena
// server. Every recording method is safe to call on a nil *Arena so code
// paths that run without metrics (tests, the CLI) need no guards.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena"

// Arena groups the domain and HTTP collectors.
type Arena struct {
	OpponentResolutions *prometheus.CounterVec
	BattlesCreated      prometheus.Counter
	BattleOutcomes      *prometheus.CounterVec
	SimulatorFailures   prometheus.Counter
	SimulationDuration  prometheus.Histogram
	ValidationFailures  *prometheus.CounterVec
	StalePending        prometheus.Gauge

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// SimulationBuckets are tuned for the reference simulator, which finishes
// well under a second.
var SimulationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// New registers the collectors on registerer. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration panics.
func New(registerer prometheus.Registerer) *Arena {
	factory := promauto.With(registerer)

	return &Arena{
		OpponentResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "matchmaking",
				Name:      "opponent_resolutions_total",
				Help:      "Opponent resolutions by source (snapshot, bot, none)",
			},
			[]string{"source"},
		),
		BattlesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "battles",
			Name:      "created_total",
			Help:      "Battles created in pending state",
		}),
		BattleOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battles",
				Name:      "outcomes_total",
				Help:      "Battles finalized by verdict",
			},
			[]string{"result"},
		),
		SimulatorFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "battles",
			Name:      "simulator_failures_total",
			Help:      "Simulator calls that failed or timed out",
		}),
		SimulationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "battles",
			Name:      "simulation_duration_seconds",
			Help:      "Time spent inside the battle simulator",
			Buckets:   SimulationBuckets,
		}),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "teams",
				Name:      "validation_failures_total",
				Help:      "Rejected team compositions by violated rule",
			},
			[]string{"rule"},
		),
		StalePending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "battles",
			Name:      "stale_pending",
			Help:      "Pending battles older than the configured threshold at the last scan",
		}),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Arena) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.OpponentResolutions.WithLabelValues(source).Inc()
}

func (m *Arena) ObserveBattleCreated() {
	if m == nil {
		return
	}
	m.BattlesCreated.Inc()
}

func (m *Arena) ObserveOutcome(result string) {
	if m == nil {
		return
	}
	m.BattleOutcomes.WithLabelValues(result).Inc()
}

func (m *Arena) ObserveSimulation(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.SimulationDuration.Observe(d.Seconds())
	if failed {
		m.SimulatorFailures.Inc()
	}
}

func (m *Arena) ObserveValidationFailure(rule string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(rule).Inc()
}

func (m *Arena) SetStalePending(n int) {
	if m == nil {
		return
	}
	m.StalePending.Set(float64(n))
}

// Middleware records request counts and latency per matched route.
func (m *Arena) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the collectors gathered by gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
