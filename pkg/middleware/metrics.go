package middleware

import (
	stderrors "errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/partial"
	"github.com/vango-dev/fragment/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fragment").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for handler and load duration.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "fragment",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	dispatchTotal     *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	dispatchErrors    *prometheus.CounterVec
	partialLoads      *prometheus.CounterVec
	partialDuration   *prometheus.HistogramVec
	partialBytes      prometheus.Histogram
	bridgeConnections prometheus.Gauge
	bridgeErrors      *prometheus.CounterVec
}

// globalMetrics is created by the first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_dispatch_total",
			Help:        "Total number of route handler invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"pattern", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_dispatch_duration_seconds",
			Help:        "Route handler duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"pattern"}),

		dispatchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_dispatch_errors_total",
			Help:        "Total number of route handler errors by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"pattern", "code"}),

		partialLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "partial_loads_total",
			Help:        "Total number of partial loads by source scheme and status",
			ConstLabels: config.ConstLabels,
		}, []string{"scheme", "status"}),

		partialDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "partial_load_duration_seconds",
			Help:        "Partial load duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"scheme"}),

		partialBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "partial_bytes",
			Help:        "Size of loaded partials in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{256, 1024, 10240, 102400, 1048576}, // 256B to 1MB
		}),

		bridgeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_connections",
			Help:        "Number of open bridge WebSocket connections",
			ConstLabels: config.ConstLabels,
		}),

		bridgeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_errors_total",
			Help:        "Total bridge errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates middleware that collects metrics for route handlers.
//
// Metrics collected:
//   - fragment_route_dispatch_total: handler invocations by pattern and status
//   - fragment_route_dispatch_duration_seconds: handler duration
//   - fragment_route_dispatch_errors_total: handler errors by pattern and code
//   - fragment_partial_loads_total, fragment_partial_load_duration_seconds,
//     fragment_partial_bytes: partial loads (when RecordPartialLoad is called)
//   - fragment_bridge_connections, fragment_bridge_errors_total: bridge state
//
// Example:
//
//	r := router.New(router.WithMiddleware(middleware.Prometheus()))
//	loader := partial.New(sink, partial.WithHook(middleware.RecordPartialLoad))
//
//	mux.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) router.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return router.MiddlewareFunc(func(ev *router.Event, next func() error) error {
		start := time.Now()
		err := next()
		m.dispatchDuration.WithLabelValues(ev.Pattern).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.dispatchErrors.WithLabelValues(ev.Pattern, errorCode(err)).Inc()
		}
		m.dispatchTotal.WithLabelValues(ev.Pattern, status).Inc()

		return err
	})
}

// errorCode labels an error by its registry code, keeping label
// cardinality bounded.
func errorCode(err error) string {
	var fe *errors.FragmentError
	if stderrors.As(err, &fe) && fe.Code != "" {
		return fe.Code
	}
	return "handler"
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordPartialLoad records one partial load. It has the signature of a
// partial.WithHook function.
func RecordPartialLoad(res partial.Result) {
	if globalMetrics == nil {
		return
	}
	scheme := res.Scheme
	if scheme == "" {
		scheme = "none"
	}
	status := "success"
	if res.Err != nil {
		status = errorCode(res.Err)
	} else {
		globalMetrics.partialBytes.Observe(float64(res.Bytes))
	}
	globalMetrics.partialLoads.WithLabelValues(scheme, status).Inc()
	globalMetrics.partialDuration.WithLabelValues(scheme).Observe(res.Duration.Seconds())
}

// RecordBridgeConnect records a new bridge connection.
func RecordBridgeConnect() {
	if globalMetrics != nil {
		globalMetrics.bridgeConnections.Inc()
	}
}

// RecordBridgeDisconnect records a closed bridge connection.
func RecordBridgeDisconnect() {
	if globalMetrics != nil {
		globalMetrics.bridgeConnections.Dec()
	}
}

// RecordBridgeError records a bridge error such as "read", "write" or "frame".
func RecordBridgeError(errorType string) {
	if globalMetrics != nil {
		globalMetrics.bridgeErrors.WithLabelValues(errorType).Inc()
	}
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the metrics for custom registrations and tests.
type Collector struct {
	dispatchTotal     *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	dispatchErrors    *prometheus.CounterVec
	partialLoads      *prometheus.CounterVec
	partialDuration   *prometheus.HistogramVec
	partialBytes      prometheus.Histogram
	bridgeConnections prometheus.Gauge
	bridgeErrors      *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		dispatchTotal:     globalMetrics.dispatchTotal,
		dispatchDuration:  globalMetrics.dispatchDuration,
		dispatchErrors:    globalMetrics.dispatchErrors,
		partialLoads:      globalMetrics.partialLoads,
		partialDuration:   globalMetrics.partialDuration,
		partialBytes:      globalMetrics.partialBytes,
		bridgeConnections: globalMetrics.bridgeConnections,
		bridgeErrors:      globalMetrics.bridgeErrors,
	}
}
