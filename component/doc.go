// Package component defines the lifecycle contract shared by the parts of a
// web host that must be started and stopped: the HTTP server, log sinks and
// telemetry exporters.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse order.
package component
