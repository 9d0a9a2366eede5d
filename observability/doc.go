// Package observability wires OpenTelemetry tracing and metrics for the
// bookstore client and mock API.
//
//	shutdown, err := observability.Setup(ctx, cfg.Tracing, cfg.Metrics)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest)
//	defer span.End()
package observability
