package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"chordlab/relay/pkg/config"
)

// Collector owns the relay's Prometheus registry and metric families.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	turnsTotal   *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
	deltasTotal  *prometheus.CounterVec
	tokensTotal  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	backendHealthy *prometheus.GaugeVec
}

// NewCollector creates a metrics collector over the given registry. A nil
// registry gets a fresh private one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "chordlab"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "relay"
	}
	if len(cfg.TurnDurationBuckets) == 0 {
		// Local model turns run from sub-second to minutes
		cfg.TurnDurationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turns_total",
				Help:      "Relay turns by provider, model, and outcome",
			},
			[]string{"provider", "model", "outcome"},
		),

		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turn_duration_seconds",
				Help:      "Wall-clock duration of relay turns in seconds",
				Buckets:   cfg.TurnDurationBuckets,
			},
			[]string{"provider", "model"},
		),

		deltasTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turn_deltas_total",
				Help:      "Delta events forwarded to clients",
			},
			[]string{"provider", "model"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turn_tokens_total",
				Help:      "Backend-reported completion tokens",
			},
			[]string{"provider", "model"},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		backendHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_healthy",
				Help:      "Backend health (1=healthy, 0=unhealthy)",
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(
		c.turnsTotal,
		c.turnDuration,
		c.deltasTotal,
		c.tokensTotal,
		c.httpRequests,
		c.httpDuration,
		c.backendHealthy,
	)

	return c
}

// RecordTurn records one finished relay turn.
func (c *Collector) RecordTurn(provider, model, outcome string, duration time.Duration, deltas, tokens int) {
	if !c.config.Enabled {
		return
	}

	c.turnsTotal.WithLabelValues(provider, model, outcome).Inc()
	c.turnDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	if deltas > 0 {
		c.deltasTotal.WithLabelValues(provider, model).Add(float64(deltas))
	}
	if tokens > 0 {
		c.tokensTotal.WithLabelValues(provider, model).Add(float64(tokens))
	}
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// UpdateBackendHealth sets the health gauge for one backend.
func (c *Collector) UpdateBackendHealth(name string, healthy bool) {
	if !c.config.Enabled {
		return
	}

	value := 0.0
	if healthy {
		value = 1.0
	}
	c.backendHealthy.WithLabelValues(name).Set(value)
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
