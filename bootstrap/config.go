package bootstrap

import (
	"github.com/kbukum/webhost/config"
	"github.com/kbukum/webhost/culture"
	"github.com/kbukum/webhost/observability"
	"github.com/kbukum/webhost/serializer"
	"github.com/kbukum/webhost/server"
	"github.com/kbukum/webhost/server/endpoint"
	"github.com/kbukum/webhost/server/middleware"
	"github.com/kbukum/webhost/validation"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds WebConfig (value embedding) automatically
// satisfies this interface via promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    bootstrap.WebConfig `yaml:",inline" mapstructure:",squash"`
//	    Billing BillingConfig `yaml:"billing" mapstructure:"billing"`
//	}
//
//	app, err := bootstrap.NewApp[*MyConfig](&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	GetWebConfig() *WebConfig
	ApplyDefaults()
	Validate() error
}

// WebConfig is the configuration consumed by the bootstrap phases.
type WebConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config         `yaml:"server" mapstructure:"server"`
	Serializer    serializer.Settings   `yaml:"serializer" mapstructure:"serializer"`
	Globalization culture.Config        `yaml:"globalization" mapstructure:"globalization"`
	CSRF          middleware.CSRFConfig `yaml:"csrf" mapstructure:"csrf"`
	Docs          endpoint.DocsConfig   `yaml:"docs" mapstructure:"docs"`
	Telemetry     observability.Config  `yaml:"telemetry" mapstructure:"telemetry"`
}

// GetWebConfig returns the bootstrap configuration.
func (c *WebConfig) GetWebConfig() *WebConfig {
	return c
}

// ApplyDefaults applies the defaults of every section.
func (c *WebConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Serializer.ApplyDefaults()
	c.Globalization.ApplyDefaults()
	c.CSRF.ApplyDefaults()
	c.Docs.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section and reports all failures at once. The
// serializer mode is resolved by Bootstrap, which reports an unknown mode as
// a configuration error.
func (c *WebConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		Check("server", c.Server.Validate()).
		Check("globalization", c.Globalization.Validate()).
		Check("csrf", c.CSRF.Validate()).
		Check("docs", c.Docs.Validate()).
		Check("telemetry", c.Telemetry.Validate()).
		Err()
}
