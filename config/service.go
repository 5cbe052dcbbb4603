package config

import (
	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/validation"
)

// Environments a host may run in.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig is the identity and logging section shared by every host.
// Host configs embed it squashed so its keys sit at the top level:
//
//	type OrdersConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Billing BillingConfig `yaml:"billing" mapstructure:"billing"`
//	}
type ServiceConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	// Domain groups applications in logs; it defaults to Name.
	Domain      string        `yaml:"domain" mapstructure:"domain"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig is promoted to embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills the environment (development, which turns Debug on),
// the domain, and the logging section, whose service name follows Name.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = Environments[0]
		c.Debug = true
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Domain == "" {
		c.Domain = c.Name
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate reports every invalid field at once.
func (c *ServiceConfig) Validate() error {
	return validation.New().
		Required("name", c.Name).
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, Environments).
		Check("logging", c.Logging.Validate()).
		Err()
}
