package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults("bookstore", "1.2.3", "staging")

	if cfg.ServiceName != "bookstore" || cfg.ServiceVersion != "1.2.3" || cfg.Environment != "staging" {
		t.Errorf("unexpected identity: %+v", cfg)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled ignores values", Config{SampleRate: 7}, false},
		{"valid", Config{Enabled: true, SampleRate: 0.5}, false},
		{"rate too high", Config{Enabled: true, SampleRate: 1.5}, true},
		{"negative interval", Config{Enabled: true, SampleRate: 1, Interval: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestStartSpanAndSetSpanError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := StartSpan(context.Background(), SpanHTTPRequest)
	SetSpanError(span, errors.New("boom"))
	SetSpanError(span, nil)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != SpanHTTPRequest {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status())
	}
	if len(spans[0].Events()) != 1 {
		t.Errorf("expected one recorded error event, got %d", len(spans[0].Events()))
	}
}

func TestSampler(t *testing.T) {
	if sampler(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Error("rate 1 should always sample")
	}
	if sampler(0).Description() != sdktrace.NeverSample().Description() {
		t.Error("rate 0 should never sample")
	}
}

func TestClientMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewClientMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordStart(ctx)
	m.RecordEnd(ctx, "GET", "/books", "success", 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			found[md.Name] = true
			if md.Name == MetricRequestTotal {
				sum, ok := md.Data.(metricdata.Sum[int64])
				if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
					t.Errorf("unexpected request total data: %+v", md.Data)
				}
			}
		}
	}
	for _, name := range []string{MetricRequestTotal, MetricRequestDuration, MetricRequestActive} {
		if !found[name] {
			t.Errorf("expected metric %s to be exported", name)
		}
	}
}

func TestClientMetricsNilSafe(t *testing.T) {
	var m *ClientMetrics
	m.RecordStart(context.Background())
	m.RecordEnd(context.Background(), "GET", "/books", "success", time.Millisecond)

	if _, err := NewClientMetrics(noop.NewMeterProvider().Meter("noop")); err != nil {
		t.Fatalf("noop meter: %v", err)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestInitTracerAndMeter(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults("test", "1.0.0", "test")
	cfg.Insecure = true

	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	shutdown, err := Setup(context.Background(), cfg, cfg)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// No collector is listening; shutdown may report an export error.
	_ = shutdown(ctx)
}

type staticChecker Health

func (s staticChecker) CheckHealth(context.Context) Health { return Health(s) }

func TestCheckAll(t *testing.T) {
	sh := CheckAll(context.Background(), "mockapi", "1.0.0",
		staticChecker{Name: "catalog", Status: HealthStatusUp},
		staticChecker{Name: "users", Status: HealthStatusDegraded},
	)
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "store", Status: HealthStatusDown})
	sh.AddComponent(Health{Name: "late", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("degraded must not override down, got %s", sh.Status)
	}
	if len(sh.Components) != 4 {
		t.Errorf("expected 4 components, got %d", len(sh.Components))
	}
}

type panicChecker struct{}

func (panicChecker) CheckHealth(context.Context) Health { panic("redis client closed") }

func TestCheckAll_OrderAndPanics(t *testing.T) {
	checkers := []HealthChecker{panicChecker{}}
	for i := range 5 {
		checkers = append(checkers, staticChecker{Name: fmt.Sprintf("c%d", i), Status: HealthStatusUp})
	}
	sh := CheckAll(context.Background(), "mockapi", "", checkers...)
	if sh.Status != HealthStatusDown {
		t.Errorf("expected down, got %s", sh.Status)
	}
	if sh.Components[0].Message != "redis client closed" || sh.Components[0].Status != HealthStatusDown {
		t.Errorf("unexpected panic result %+v", sh.Components[0])
	}
	for i, h := range sh.Components[1:] {
		if h.Name != fmt.Sprintf("c%d", i) {
			t.Errorf("component %d out of order: %s", i, h.Name)
		}
	}
}
