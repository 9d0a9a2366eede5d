package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/bookstore/logger"
)

// InstrumentationName is the tracer and meter name used by bookstore packages.
const InstrumentationName = "github.com/kbukum/bookstore"

// Span names.
const (
	SpanHTTPRequest = "http.request"
	SpanAPICall     = "api.call"
)

// Attribute keys.
const (
	AttrServiceName = "service.name"
	AttrOperation   = "operation.name"
	AttrHTTPMethod  = "http.request.method"
	AttrHTTPRoute   = "http.route"
	AttrHTTPURL     = "url.full"
	AttrHTTPStatus  = "http.response.status_code"
	AttrErrorKind   = "error.type"
	AttrErrorCode   = "error.code"
	AttrDurationMs  = "duration_ms"
	AttrEnvironment = "deployment.environment"
	AttrServiceVer  = "service.version"
)

// InitTracer installs a global tracer provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitTracer(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg)),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracer initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// newResource describes the service. It is schemaless so it merges with any
// SDK default resource.
func newResource(cfg Config) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String(AttrServiceName, cfg.ServiceName),
		attribute.String(AttrServiceVer, cfg.ServiceVersion),
		attribute.String(AttrEnvironment, cfg.Environment),
	)
}

// Setup initializes the enabled pipelines and returns a function that shuts
// them all down. Disabled pipelines leave the global no-op providers in place.
func Setup(ctx context.Context, tracing, metrics Config) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}

	if tracing.Enabled {
		tp, err := InitTracer(ctx, tracing)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}
	if metrics.Enabled {
		mp, err := InitMeter(ctx, metrics)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}
	return shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a new span using the default tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(InstrumentationName).Start(ctx, name, opts...)
}

// SetSpanError records err on span and marks the span failed.
func SetSpanError(span trace.Span, err error) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
