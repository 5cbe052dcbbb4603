package server

import (
	"net"
	"strconv"
	"time"

	"github.com/kbukum/webhost/util"
	"github.com/kbukum/webhost/validation"
)

// Config is the listener section. Timeouts are whole seconds.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodySize caps request bodies: "512KB", "10MB" or a byte count.
	MaxBodySize string `yaml:"max_body_size" mapstructure:"max_body_size"`
}

const (
	defaultPort        = 8080
	defaultIOTimeout   = 15
	defaultIdleTimeout = 60
	defaultMaxBodySize = "10MB"
)

func (c *Config) ApplyDefaults() {
	setDefault(&c.Port, defaultPort)
	setDefault(&c.ReadTimeout, defaultIOTimeout)
	setDefault(&c.WriteTimeout, defaultIOTimeout)
	setDefault(&c.IdleTimeout, defaultIdleTimeout)
	if c.MaxBodySize == "" {
		c.MaxBodySize = defaultMaxBodySize
	}
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate reports every invalid field. Port 0 binds a free port.
func (c *Config) Validate() error {
	_, sizeErr := c.MaxBodyBytes()
	return validation.New().
		Range("port", c.Port, 0, 65535).
		Min("read_timeout", c.ReadTimeout, 0).
		Min("write_timeout", c.WriteTimeout, 0).
		Min("idle_timeout", c.IdleTimeout, 0).
		Check("max_body_size", sizeErr).
		Err()
}

// Addr is the listen address; IPv6 hosts are bracketed.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) timeouts() (read, write, idle time.Duration) {
	return time.Duration(c.ReadTimeout) * time.Second,
		time.Duration(c.WriteTimeout) * time.Second,
		time.Duration(c.IdleTimeout) * time.Second
}

// MaxBodyBytes parses MaxBodySize. An empty value means no limit and
// yields 0.
func (c *Config) MaxBodyBytes() (int64, error) {
	return util.ParseSize(c.MaxBodySize)
}
