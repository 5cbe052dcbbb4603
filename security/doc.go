// Package security builds client TLS settings for the outbound connections
// of the web host: the Seq and Splunk log sinks and the OTLP exporters.
//
//	cfg := security.TLSConfig{CAFile: "/etc/ssl/collector-ca.pem", MinVersion: "1.3"}
//	tlsConfig, err := cfg.Build()
package security
