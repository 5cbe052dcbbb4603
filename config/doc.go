// Package config loads service configuration from a YAML file, the process
// environment and an optional .env file, and exposes the merged tree as a
// Root that components can query by key.
//
//	var cfg MyConfig
//	root, err := config.Load("orders-api", &cfg)
//
// Environment variables override file values. The variable name is the key
// path in upper case with dots replaced by underscores, so csrf.cookie_name
// reads CSRF_COOKIE_NAME (or ORDERS_CSRF_COOKIE_NAME with WithEnvPrefix).
package config
