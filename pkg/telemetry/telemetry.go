package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/loadable/pkg/loadable"
)

const defaultTracerName = "loadable"

// Config configures the observer.
type Config struct {
	// Namespace is the metrics namespace (default: "loadable").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// Buckets are the histogram buckets for load and preload durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the name of the tracer (default: "loadable").
	TracerName string

	// TracerProvider supplies the tracer. Default: otel.GetTracerProvider()
	TracerProvider trace.TracerProvider
}

// Option configures the observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "loadable",
		Buckets:    prometheus.DefBuckets,
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
	}
}

type metrics struct {
	loadsTotal      *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	loadsInFlight   prometheus.Gauge
	preloadsTotal   *prometheus.CounterVec
	preloadDuration *prometheus.HistogramVec
	preloadedTotal  *prometheus.CounterVec
}

func newMetrics(config Config) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		loadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "loads_total",
			Help:      "Total number of settled loads",
		}, []string{"loadable", "status"}),

		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "load_duration_seconds",
			Help:      "Time from triggering a load until it settles",
			Buckets:   config.Buckets,
		}, []string{"loadable"}),

		loadsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "loads_in_flight",
			Help:      "Number of loads that have not settled",
		}),

		preloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "preloads_total",
			Help:      "Total number of preload flushes",
		}, []string{"mode", "status"}),

		preloadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "preload_duration_seconds",
			Help:      "Preload flush duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"mode"}),

		preloadedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "preloaded_loadables_total",
			Help:      "Total number of loadables handed to preload flushes",
		}, []string{"mode"}),
	}
}

// Observer records load lifecycle metrics and spans. It implements
// loadable.Observer.
type Observer struct {
	metrics *metrics
	tracer  trace.Tracer
}

var _ loadable.Observer = (*Observer)(nil)

// New creates an Observer and registers its metrics. Registering twice on
// the same Prometheus registry panics, as promauto does.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{
		metrics: newMetrics(config),
		tracer:  tp.Tracer(config.TracerName),
	}
}

// LoadStarted opens a span for the load; the loader runs under it.
func (o *Observer) LoadStarted(ctx context.Context, name string) context.Context {
	o.metrics.loadsInFlight.Inc()
	ctx, _ = o.tracer.Start(ctx, "loadable.load",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("loadable.name", name)),
	)
	return ctx
}

// LoadFinished records the outcome and ends the load span.
func (o *Observer) LoadFinished(ctx context.Context, name string, elapsed time.Duration, err error) {
	o.metrics.loadsInFlight.Dec()
	o.metrics.loadsTotal.WithLabelValues(name, status(err)).Inc()
	o.metrics.loadDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Preloaded records a finished preload flush as a span covering it.
func (o *Observer) Preloaded(ctx context.Context, mode string, count int, elapsed time.Duration, err error) {
	o.metrics.preloadsTotal.WithLabelValues(mode, status(err)).Inc()
	o.metrics.preloadDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	o.metrics.preloadedTotal.WithLabelValues(mode).Add(float64(count))

	end := time.Now()
	_, span := o.tracer.Start(ctx, "loadable.preload",
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.String("loadable.preload.mode", mode),
			attribute.Int("loadable.preload.count", count),
		),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
