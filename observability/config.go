package observability

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/kbukum/webhost/security"
)

// Config configures OTLP export of request traces and metrics.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio between 0 and 1.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// MetricInterval is the metric export period.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
	// TLS customizes the secure connection; ignored when Insecure.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("telemetry.metric_interval must be non-negative (got: %s)", c.MetricInterval)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("telemetry.tls: %w", err)
	}
	return nil
}

// transport selects how exporters reach the collector: plain HTTP when
// Insecure, otherwise TLS with the custom settings, nil meaning the system
// defaults.
func (c *Config) transport() (insecure bool, tlsCfg *tls.Config, err error) {
	if c.Insecure {
		return true, nil, nil
	}
	if tlsCfg, err = c.TLS.Build(); err != nil {
		return false, nil, fmt.Errorf("telemetry tls: %w", err)
	}
	return false, tlsCfg, nil
}

// Identity names the service on exported telemetry.
type Identity struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}
