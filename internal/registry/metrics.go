package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures registry metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hostbridge").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the render duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registerer receives the collectors.
	// Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

// MetricsOption configures registry metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegisterer sets the Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registerer = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:  "hostbridge",
		Buckets:    prometheus.DefBuckets,
		Registerer: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of a registry.
//
// Metrics collected:
//   - hostbridge_nodes_registered: Gauge of nodes in the index
//   - hostbridge_render_requests_total: Counter of ScheduleRender calls
//   - hostbridge_render_passes_total: Counter of root renders
//   - hostbridge_render_coalesced_total: Counter of requests folded into a pending pass
//   - hostbridge_render_errors_total: Counter of failed render passes
//   - hostbridge_render_duration_seconds: Histogram of render pass duration
type Metrics struct {
	NodesRegistered prometheus.Gauge
	RenderRequests  prometheus.Counter
	RenderPasses    prometheus.Counter
	RenderCoalesced prometheus.Counter
	RenderErrors    prometheus.Counter
	RenderDuration  prometheus.Histogram
}

// NewMetrics creates and registers the registry collectors.
// Registering twice on the same registerer panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registerer)

	return &Metrics{
		NodesRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "nodes_registered",
			Help:        "Number of native nodes in the registry",
			ConstLabels: config.ConstLabels,
		}),

		RenderRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "render_requests_total",
			Help:        "Total number of render requests",
			ConstLabels: config.ConstLabels,
		}),

		RenderPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "render_passes_total",
			Help:        "Total number of root render passes",
			ConstLabels: config.ConstLabels,
		}),

		RenderCoalesced: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "render_coalesced_total",
			Help:        "Total number of render requests folded into a pending pass",
			ConstLabels: config.ConstLabels,
		}),

		RenderErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "render_errors_total",
			Help:        "Total number of failed render passes",
			ConstLabels: config.ConstLabels,
		}),

		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "render_duration_seconds",
			Help:        "Root render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}
