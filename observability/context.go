package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation is one traced request. It travels in the request context so
// later middleware and handlers can annotate its span.
type Operation struct {
	Service   string
	Name      string
	RequestID string
	Started   time.Time

	span    trace.Span
	metrics *Metrics
}

type operationKey struct{}

// StartOperation opens a server span called name and counts the request as
// active. A nil tracer uses the global provider; nil metrics record nothing.
func StartOperation(ctx context.Context, tracer trace.Tracer, metrics *Metrics, service, name, requestID string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	if tracer == nil {
		tracer = Tracer(instrumentationName)
	}
	op := &Operation{Service: service, Name: name, RequestID: requestID, Started: time.Now(), metrics: metrics}

	ctx, op.span = tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	op.span.SetAttributes(
		attribute.String(AttrServiceName, service),
		attribute.String(AttrOperationName, name),
	)
	if requestID != "" {
		op.span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
	op.span.SetAttributes(attrs...)
	if metrics != nil {
		metrics.RecordRequestStart(ctx)
	}
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFrom returns the operation carried by ctx, or nil.
func OperationFrom(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationKey{}).(*Operation)
	return op
}

// Span returns the server span of op.
func (op *Operation) Span() trace.Span { return op.span }

// Annotate adds attributes to the span. It is a no-op on a nil Operation.
func (op *Operation) Annotate(attrs ...attribute.KeyValue) {
	if op != nil {
		op.span.SetAttributes(attrs...)
	}
}

// End closes the span with status and records the request duration. A
// non-nil err marks the span failed.
func (op *Operation) End(ctx context.Context, status string, err error) {
	elapsed := time.Since(op.Started)
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, elapsed.Milliseconds()),
	)
	op.span.End()
	if op.metrics != nil {
		op.metrics.RecordRequestEnd(ctx, op.Service, op.Name, status, elapsed)
	}
}
