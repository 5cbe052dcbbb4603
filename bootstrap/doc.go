// Package bootstrap turns a typed configuration into a running web host.
//
// Bootstrap runs the startup phase (logger, CORS, CSRF, request key
// capture, object mapper, modules, extension hooks), registers the host
// services in the process container (communication logger, status-code
// handler, configuration root, serializer, globalization) and applies the
// route conventions. Every request then gets its own container scope with
// the culture negotiated from Accept-Language.
//
// # Quick Start
//
//	app, err := bootstrap.LoadApp("orders-api", &bootstrap.WebConfig{},
//	    bootstrap.WithModules(orders.Module{}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Bootstrap(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	app.Server.GinEngine().GET("/orders/:id", orders.Get)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run starts the components in registration order (log sinks, telemetry,
// HTTP server), blocks until a signal and stops them in reverse order.
package bootstrap
