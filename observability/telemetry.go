package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/webhost/component"
	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/server/middleware"
)

const componentName = "telemetry"

var (
	_ component.Component   = (*Telemetry)(nil)
	_ component.Describable = (*Telemetry)(nil)
)

// Option customizes New.
type Option func(*options)

type options struct {
	spanExporter sdktrace.SpanExporter
	metricReader sdkmetric.Reader
}

// WithSpanExporter replaces the OTLP span exporter.
func WithSpanExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) { o.spanExporter = e }
}

// WithMetricReader replaces the periodic OTLP metric reader.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *options) { o.metricReader = r }
}

// Telemetry owns the tracer and meter providers of the host and provides
// the request instrumentation middleware. When disabled the middleware still
// runs against the global no-op providers.
type Telemetry struct {
	cfg     Config
	id      Identity
	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	tracer  trace.Tracer
	metrics *Metrics
}

// New initializes the providers when cfg.Enabled and creates the request
// instruments.
func New(ctx context.Context, cfg Config, id Identity, opts ...Option) (*Telemetry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	t := &Telemetry{cfg: cfg, id: id}
	if cfg.Enabled {
		tp, err := InitTracer(ctx, cfg, id, o.spanExporter)
		if err != nil {
			return nil, err
		}
		mp, err := InitMeter(ctx, cfg, id, o.metricReader)
		if err != nil {
			return nil, errors.Join(err, tp.Shutdown(ctx))
		}
		t.tp, t.mp = tp, mp
		t.tracer = tp.Tracer(instrumentationName)
		t.metrics, err = NewMetrics(mp.Meter(instrumentationName))
		if err != nil {
			return nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
		}
		return t, nil
	}

	t.tracer = Tracer(instrumentationName)
	metrics, err := NewMetrics(Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	t.metrics = metrics
	return t, nil
}

// Enabled reports whether telemetry is exported.
func (t *Telemetry) Enabled() bool { return t.cfg.Enabled }

// Middleware returns a Gin middleware that wraps each request in a server
// span named "METHOD route", continues an incoming W3C trace and records
// request metrics. Responses with a 5xx status mark the span as failed.
func (t *Telemetry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, op := StartOperation(ctx, t.tracer, t.metrics, t.id.ServiceName, method+" "+route, c.GetString(middleware.RequestKeyItem),
			semconv.HTTPRequestMethodKey.String(method),
			semconv.HTTPRoute(route),
			semconv.URLPath(c.Request.URL.Path),
		)
		if sc := op.Span().SpanContext(); sc.IsValid() {
			ctx = logger.ContextWithTrace(ctx, sc.TraceID().String(), sc.SpanID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		op.Annotate(semconv.HTTPResponseStatusCode(status))

		var err error
		if status >= http.StatusInternalServerError {
			err = fmt.Errorf("%d %s", status, http.StatusText(status))
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			t.metrics.RecordError(ctx, strconv.Itoa(status), "http")
		}
		op.End(ctx, strconv.Itoa(status), err)
	}
}

// Name returns the component name used for registration.
func (t *Telemetry) Name() string { return componentName }

// Start is a no-op; providers are live from New.
func (t *Telemetry) Start(ctx context.Context) error { return nil }

// Stop flushes and shuts down the providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Health reports healthy; export failures are retried by the SDK.
func (t *Telemetry) Health(ctx context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	if !t.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}

// Describe returns infrastructure summary info for the bootstrap display.
func (t *Telemetry) Describe() component.Description {
	details := "disabled"
	if t.cfg.Enabled {
		details = fmt.Sprintf("otlp %s (sample %.2f)", t.cfg.Endpoint, t.cfg.SampleRate)
	}
	return component.Description{Name: "Telemetry", Type: "telemetry", Details: details}
}
