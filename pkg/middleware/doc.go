// Package middleware provides observability middleware for fragment routers.
//
// This package includes:
//   - OpenTelemetry tracing around route handlers
//   - Prometheus metrics for route handlers, partial loads and the bridge
//
// # OpenTelemetry Middleware
//
// Every handler invocation gets a span named after its route pattern. The
// handler's ctx carries the span, so outgoing calls made with it join the
// trace:
//
//	r := router.New(router.WithMiddleware(middleware.OpenTelemetry()))
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithIncludeParams(true),
//	    middleware.WithEventFilter(func(ev *router.Event) bool {
//	        return ev.Pattern != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
//	r := router.New(router.WithMiddleware(middleware.Prometheus()))
//	loader := partial.New(sink, partial.WithHook(middleware.RecordPartialLoad))
//
// Then expose the metrics endpoint:
//
//	mux.Handle("/metrics", promhttp.Handler())
package middleware
