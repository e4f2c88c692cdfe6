package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/routra-dev/routra/pkg/routectx"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "routra").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "routra",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for dispatch.
type metrics struct {
	dispatchesTotal   *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	internalRedirects *prometheus.CounterVec
	externalRedirects *prometheus.CounterVec
	cacheFlushes      prometheus.Counter
	templateRenders   *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of view dispatches by app and status class",
			ConstLabels: config.ConstLabels,
		}, []string{"app", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "View dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"app"}),

		internalRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "internal_redirects_total",
			Help:        "Total number of internal redirects by target module",
			ConstLabels: config.ConstLabels,
		}, []string{"module"}),

		externalRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "external_redirects_total",
			Help:        "Total number of external redirects by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		cacheFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolver_cache_flushes_total",
			Help:        "Total number of resolver cache flushes",
			ConstLabels: config.ConstLabels,
		}),

		templateRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "template_renders_total",
			Help:        "Total number of fallback template renders by app",
			ConstLabels: config.ConstLabels,
		}, []string{"app"}),
	}
}

// statusRecorder captures the status code written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Prometheus creates middleware that collects Prometheus metrics for
// view dispatches.
//
// Metrics collected:
//   - routra_dispatches_total: Counter of dispatches by app and status class
//   - routra_dispatch_duration_seconds: Histogram of dispatch duration by app
//   - routra_internal_redirects_total: Counter of internal redirects (via RecordInternalRedirect)
//   - routra_external_redirects_total: Counter of external redirects (via RecordRedirect)
//   - routra_resolver_cache_flushes_total: Counter of cache flushes (via RecordCacheFlush)
//   - routra_template_renders_total: Counter of fallback template renders (via RecordTemplateRender)
//
// Example:
//
//	mux.Use(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//
//	// Expose metrics endpoint
//	mux.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			app := "unknown"
			if rc := routectx.From(r.Context()); rc.Complete() {
				app = rc.App
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			m.dispatchDuration.WithLabelValues(app).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			// Status class only; full codes are a cardinality trap.
			m.dispatchesTotal.WithLabelValues(app, strconv.Itoa(status/100)+"xx").Inc()
		})
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordInternalRedirect records an internal redirect to a module.
// Wire it through a dispatch hook:
//
//	hooks.OnInternalRedirect(func(r *http.Request, ir *dispatch.InternalRedirect) {
//	    middleware.RecordInternalRedirect(ir.Module)
//	})
func RecordInternalRedirect(module string) {
	if globalMetrics != nil {
		globalMetrics.internalRedirects.WithLabelValues(module).Inc()
	}
}

// RecordRedirect records an external redirect. kind is "permanent" or
// "temporary".
func RecordRedirect(permanent bool) {
	if globalMetrics != nil {
		kind := "temporary"
		if permanent {
			kind = "permanent"
		}
		globalMetrics.externalRedirects.WithLabelValues(kind).Inc()
	}
}

// RecordCacheFlush records a resolver cache flush.
func RecordCacheFlush() {
	if globalMetrics != nil {
		globalMetrics.cacheFlushes.Inc()
	}
}

// RecordTemplateRender records a fallback template render for an app.
func RecordTemplateRender(app string) {
	if globalMetrics != nil {
		globalMetrics.templateRenders.WithLabelValues(app).Inc()
	}
}
