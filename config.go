package hostbridge

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/hostbridge/pkg/scheduler"
)

// DefaultTracerName is the OpenTelemetry tracer used when none is configured.
const DefaultTracerName = "hostbridge"

// Config configures a Renderer.
type Config struct {
	// Queue runs render passes and deferred updates.
	// If nil, a scheduler.Loop is created and driven by Run.
	Queue scheduler.Queue

	// Logger is the structured logger.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// MetricsRegisterer receives the registry collectors.
	// If nil, metrics are disabled.
	MetricsRegisterer prometheus.Registerer

	// MetricsNamespace prefixes metric names (default: "hostbridge").
	MetricsNamespace string

	// TracerName selects the tracer from the global provider
	// (default: "hostbridge").
	TracerName string
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		MetricsNamespace: "hostbridge",
		TracerName:       DefaultTracerName,
	}
}

// Option configures a Renderer.
type Option func(*Config)

// WithQueue sets the task queue.
func WithQueue(q scheduler.Queue) Option {
	return func(c *Config) {
		c.Queue = q
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetricsRegisterer enables Prometheus metrics on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.MetricsRegisterer = reg
	}
}

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) Option {
	return func(c *Config) {
		c.MetricsNamespace = namespace
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
