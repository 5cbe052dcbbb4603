// Package observability provides OpenTelemetry request tracing and metrics
// for the web host.
//
// Telemetry owns the tracer and meter providers and is registered as a
// lifecycle component so they are flushed on shutdown:
//
//	tel, err := observability.New(ctx, cfg.Telemetry, observability.Identity{ServiceName: "orders"})
//	engine.Use(tel.Middleware())
//
// Inside a handler the current span is reachable from the request context:
//
//	observability.Annotate(c.Request.Context(), attribute.String("order.id", id))
package observability
