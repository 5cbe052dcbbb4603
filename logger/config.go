package logger

import (
	"fmt"
	"time"

	"github.com/kbukum/webhost/security"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`

	// ServiceName tags console output; propagated from the service name.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// TitlePrefixes are prepended to every message as "[a][b] msg".
	TitlePrefixes []string `yaml:"title_prefixes" mapstructure:"title_prefixes"`
	// Blacklist lists field names whose values are masked before writing.
	Blacklist []string `yaml:"blacklist" mapstructure:"blacklist"`

	Seq    SeqConfig    `yaml:"seq" mapstructure:"seq"`
	Splunk SplunkConfig `yaml:"splunk" mapstructure:"splunk"`

	// SinkTLS configures the transport of the HTTP sinks, e.g. a private CA
	// for an on-premise collector.
	SinkTLS security.TLSConfig `yaml:"sink_tls" mapstructure:"sink_tls"`
}

// SeqConfig configures the Seq sink. The sink is disabled when URL is empty.
type SeqConfig struct {
	URL           string        `yaml:"url" mapstructure:"url"`
	APIKey        string        `yaml:"api_key" mapstructure:"api_key"`
	BatchSize     int           `yaml:"batch_size" mapstructure:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
	// MaxAttempts bounds delivery attempts per batch.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Enabled reports whether the sink has an endpoint.
func (c SeqConfig) Enabled() bool { return c.URL != "" }

// SplunkConfig configures the Splunk HTTP Event Collector sink.
type SplunkConfig struct {
	URL           string        `yaml:"url" mapstructure:"url"`
	Token         string        `yaml:"token" mapstructure:"token"`
	Index         string        `yaml:"index" mapstructure:"index"`
	SourceType    string        `yaml:"source_type" mapstructure:"source_type"`
	BatchSize     int           `yaml:"batch_size" mapstructure:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Enabled reports whether the sink has an endpoint.
func (c SplunkConfig) Enabled() bool { return c.URL != "" }

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Seq.BatchSize == 0 {
		c.Seq.BatchSize = 100
	}
	if c.Seq.FlushInterval == 0 {
		c.Seq.FlushInterval = 2 * time.Second
	}
	if c.Splunk.BatchSize == 0 {
		c.Splunk.BatchSize = 100
	}
	if c.Splunk.FlushInterval == 0 {
		c.Splunk.FlushInterval = 2 * time.Second
	}
	if c.Seq.MaxAttempts == 0 {
		c.Seq.MaxAttempts = 3
	}
	if c.Splunk.MaxAttempts == 0 {
		c.Splunk.MaxAttempts = 3
	}
	if c.Splunk.SourceType == "" {
		c.Splunk.SourceType = "_json"
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "trace"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console", "text"}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	if c.Splunk.Enabled() && c.Splunk.Token == "" {
		return fmt.Errorf("logging.splunk.token is required when logging.splunk.url is set")
	}
	if c.Seq.MaxAttempts < 0 || c.Splunk.MaxAttempts < 0 {
		return fmt.Errorf("logging sink max_attempts must be non-negative")
	}
	if err := c.SinkTLS.Validate(); err != nil {
		return fmt.Errorf("logging.sink_tls: %w", err)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
