// Package metrics records install and mirror activity as Prometheus metrics.
//
// A one-shot command writes them to a node-exporter textfile; the mirror
// server exposes them on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by several metrics.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Namespace prefixes every metric name.
const Namespace = "uicli"

// fetchBuckets are the histogram buckets for fetch duration, in seconds.
var fetchBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Config configures a Metrics instance.
type Config struct {
	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Option configures a Metrics instance.
type Option func(*Config)

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// Metrics holds the collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	filesWritten    *prometheus.CounterVec
	configPatches   *prometheus.CounterVec
	packageInstalls *prometheus.CounterVec
	mirrorRequests  *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New(opts ...Option) *Metrics {
	var config Config
	for _, opt := range opts {
		opt(&config)
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "fetches_total",
			Help:        "Library fetches by asset type and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"asset", "outcome"}),

		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   Namespace,
			Name:        "fetch_duration_seconds",
			Help:        "Library fetch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     fetchBuckets,
		}, []string{"asset"}),

		filesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "files_written_total",
			Help:        "Files written into the project by asset type",
			ConstLabels: config.ConstLabels,
		}, []string{"asset"}),

		configPatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "config_patches_total",
			Help:        "Tailwind config patch attempts by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		packageInstalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "package_installs_total",
			Help:        "Package manager runs by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		mirrorRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "mirror",
			Name:        "requests_total",
			Help:        "Mirror requests by asset kind and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),
	}
}

// ObserveFetch records one fetch.
func (m *Metrics) ObserveFetch(asset, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(asset, outcome).Inc()
	m.fetchDuration.WithLabelValues(asset).Observe(d.Seconds())
}

// FileWritten records one file written into the project.
func (m *Metrics) FileWritten(asset string) {
	if m == nil {
		return
	}
	m.filesWritten.WithLabelValues(asset).Inc()
}

// ConfigPatched records one Tailwind config patch attempt.
func (m *Metrics) ConfigPatched(result string) {
	if m == nil {
		return
	}
	m.configPatches.WithLabelValues(result).Inc()
}

// PackagesInstalled records one package manager run.
func (m *Metrics) PackagesInstalled(outcome string) {
	if m == nil {
		return
	}
	m.packageInstalls.WithLabelValues(outcome).Inc()
}

// MirrorRequest records one request served by the mirror.
func (m *Metrics) MirrorRequest(kind string, status int) {
	if m == nil {
		return
	}
	m.mirrorRequests.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler serves the metrics over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
