package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/fragment/pkg/router"
)

const defaultTracerName = "fragment"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "fragment").
	TracerName string

	// IncludeParams adds matched route parameters as span attributes.
	// Parameters may carry user data, so this is off by default.
	IncludeParams bool

	// Filter determines which events to trace.
	// If nil, all events are traced.
	Filter func(ev *router.Event) bool

	// AttributeExtractor adds custom attributes for each traced event.
	AttributeExtractor func(ev *router.Event) []attribute.KeyValue

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeParams enables route parameters as span attributes.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev *router.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev *router.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithTracerProvider sets the tracer provider. Defaults to otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// OpenTelemetry creates middleware that wraps every route handler in a span.
//
// The span is named after the route pattern and carries the fragment. It
// replaces ev.Context, so the handler's ctx holds the span and outgoing
// calls made with it join the trace. Handler errors are recorded on the
// span.
//
// Configure the global provider in main() before building routers:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return router.MiddlewareFunc(func(ev *router.Event, next func() error) error {
		if config.Filter != nil && !config.Filter(ev) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("fragment.pattern", ev.Pattern),
			attribute.String("fragment.value", ev.Fragment),
		}
		if config.IncludeParams && ev.Match != nil {
			for name, v := range ev.Match.Params {
				attrs = append(attrs, attribute.String("fragment.param."+name, v))
			}
			if len(ev.Match.Wildcards) > 0 {
				attrs = append(attrs, attribute.StringSlice("fragment.wildcards", ev.Match.Wildcards))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ev)...)
		}

		parent := ev.Context
		if parent == nil {
			parent = context.Background()
		}
		spanCtx, span := config.tracer.Start(parent, "route "+ev.Pattern,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		// Handlers find the span through their ctx.
		ev.Context = context.WithValue(spanCtx, spanKey{}, span)
		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

type spanKey struct{}

// SpanFromContext returns the span the middleware started for the handler
// receiving ctx, or nil when the route was not traced.
//
//	func(ctx context.Context, params map[string]string, m *pattern.MatchResult) error {
//	    if span := middleware.SpanFromContext(ctx); span != nil {
//	        span.SetAttributes(attribute.Int("items", n))
//	    }
//	    return nil
//	}
func SpanFromContext(ctx context.Context) trace.Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(trace.Span)
	return span
}

// SpanFromEvent returns the span started for ev, or nil.
func SpanFromEvent(ev *router.Event) trace.Span {
	if ev == nil {
		return nil
	}
	return SpanFromContext(ev.Context)
}
