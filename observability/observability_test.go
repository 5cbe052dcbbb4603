package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/webhost/component"
	"github.com/kbukum/webhost/security"
	"github.com/kbukum/webhost/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected MetricInterval 15s, got %v", cfg.MetricInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{SampleRate: 1, Endpoint: "x:4318"}, false},
		{"sample rate above one", Config{SampleRate: 1.5}, true},
		{"negative sample rate", Config{SampleRate: -0.1}, true},
		{"negative interval", Config{MetricInterval: -time.Second}, true},
		{"enabled without endpoint", Config{Enabled: true, SampleRate: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "ParentBased{root:AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		got := sampler(tt.rate).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("sampler(%v) = %q, want prefix %q", tt.rate, got, tt.want)
		}
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "svc", "GET /test", "200", 100*time.Millisecond)
	metrics.RecordError(ctx, "500", "http")
}

func TestOperation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	if OperationFrom(context.Background()) != nil {
		t.Error("expected nil without an operation")
	}
	var none *Operation
	none.Annotate(attribute.String("ignored", "yes"))

	ctx, op := StartOperation(context.Background(), tp.Tracer("test"), nil, "backend", "POST /users", "req-1", attribute.String("extra", "yes"))
	if OperationFrom(ctx) != op {
		t.Fatal("expected operation in context")
	}
	OperationFrom(ctx).Annotate(attribute.String("late", "yes"))
	op.End(ctx, "500", errors.New("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name != "POST /users" {
		t.Errorf("unexpected span name %q", s.Name)
	}
	if s.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status.Code)
	}
	attrs := attrMap(s.Attributes)
	if attrs[AttrRequestID] != "req-1" || attrs["extra"] != "yes" || attrs["late"] != "yes" || attrs[AttrStatus] != "500" {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if op.Started.IsZero() {
		t.Error("expected start time")
	}
}

func TestAnnotateAndFail(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "attrs")
	Annotate(ctx, attribute.String(AttrCulture, "fr-fr"), attribute.Int("items", 3))
	Fail(ctx, nil)
	Fail(ctx, errors.New("failed"))
	span.End()

	Annotate(context.Background(), attribute.String("k", "v"))
	Fail(context.Background(), errors.New("ignored"))

	s := exporter.GetSpans()[0]
	if attrs := attrMap(s.Attributes); attrs[AttrCulture] != "fr-fr" || len(s.Attributes) != 2 {
		t.Errorf("unexpected attributes %v", s.Attributes)
	}
	if len(s.Events) != 1 || s.Status.Code != codes.Error {
		t.Errorf("expected one error event and error status, got %d / %v", len(s.Events), s.Status.Code)
	}
}

func TestDisabledTelemetry(t *testing.T) {
	tel, err := New(context.Background(), Config{}, Identity{ServiceName: "svc"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if tel.Enabled() {
		t.Error("expected disabled")
	}
	if h := tel.Health(context.Background()); h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("unexpected health %+v", h)
	}
	if d := tel.Describe(); d.Details != "disabled" || d.Type != "telemetry" {
		t.Errorf("unexpected description %+v", d)
	}

	engine := gin.New()
	engine.Use(tel.Middleware())
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if err := tel.Stop(context.Background()); err != nil {
		t.Errorf("stop: %v", err)
	}
}

func TestTelemetryMiddleware(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()

	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	tel, err := New(ctx, cfg, Identity{ServiceName: "orders", ServiceVersion: "1.2.3", Environment: "test"},
		WithSpanExporter(exporter), WithMetricReader(reader))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = tel.Stop(ctx) }()

	engine := gin.New()
	engine.Use(middleware.RequestID(), tel.Middleware())
	engine.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("database unavailable"))
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	engine.ServeHTTP(httptest.NewRecorder(), req)
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	if err := tel.tp.ForceFlush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	ok := spans[0]
	if ok.Name != "GET /orders/:id" {
		t.Errorf("unexpected span name %q", ok.Name)
	}
	if got := ok.SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected continued trace, got %s", got)
	}
	attrs := attrMap(ok.Attributes)
	if attrs["http.route"] != "/orders/:id" || attrs[AttrRequestID] != "req-42" {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if ok.Status.Code == codes.Error {
		t.Error("200 response should not fail the span")
	}

	boom := spans[1]
	if boom.Status.Code != codes.Error || boom.Status.Description != "database unavailable" {
		t.Errorf("expected failed span, got %+v", boom.Status)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := sumOf(rm, "http.server.request.total"); got != 2 {
		t.Errorf("expected 2 requests recorded, got %d", got)
	}
	if got := sumOf(rm, "http.server.error.total"); got != 1 {
		t.Errorf("expected 1 error recorded, got %d", got)
	}
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func sumOf(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestExporterTransport(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		wantInsecure bool
		wantTLS      bool
		wantErr      bool
	}{
		{"system defaults", Config{}, false, false, false},
		{"insecure ignores tls", Config{Insecure: true, TLS: security.TLSConfig{CAFile: "/nonexistent/ca.pem"}}, true, false, false},
		{"custom tls", Config{TLS: security.TLSConfig{ServerName: "collector.internal"}}, false, true, false},
		{"unreadable ca", Config{TLS: security.TLSConfig{CAFile: "/nonexistent/ca.pem"}}, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			insecure, tlsCfg, err := tc.cfg.transport()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if insecure != tc.wantInsecure || (tlsCfg != nil) != tc.wantTLS {
				t.Errorf("insecure %v tls %v", insecure, tlsCfg != nil)
			}
		})
	}
}
