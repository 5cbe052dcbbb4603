// Package server provides the HTTP server of the web host: a Gin engine
// served over HTTP/1.1 and h2c, the status-code handler answering unmatched
// routes, and response helpers that render through the configured
// serializer.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Pipelines: ordered before/after request hooks
//   - CORS and CSRF hooks
//   - Recovery: panic recovery with structured logging
//   - RequestLogger: request logging to the communication logger
//   - RequestID and request-key capture
//   - BodySizeLimit: request body size limits
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: health check aggregation
//   - /info: application information
//   - /metrics: runtime metrics
//   - /alive, /ready: liveness and readiness probes
//   - /version: build version information
//   - {docs.path}/openapi.json: OpenAPI document of the route table
package server
