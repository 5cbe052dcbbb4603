package culture

import (
	"errors"
	"strings"
)

// ErrNoCultures is returned when a Globalization is built from an empty list.
var ErrNoCultures = errors.New("culture: at least one supported culture is required")

// Config holds the globalization settings read from configuration.
type Config struct {
	SupportedCultures []string `yaml:"supported_cultures" mapstructure:"supported_cultures" validate:"omitempty,dive,culture"`
}

// ApplyDefaults sets "en" as the only supported culture when none are configured.
func (c *Config) ApplyDefaults() {
	if len(c.SupportedCultures) == 0 {
		c.SupportedCultures = []string{"en"}
	}
}

// Validate checks that every configured culture parses as a language tag.
func (c *Config) Validate() error {
	if len(c.SupportedCultures) == 0 {
		return ErrNoCultures
	}
	for _, name := range c.SupportedCultures {
		if _, err := Parse(name); err != nil {
			return err
		}
	}
	return nil
}

// Globalization is the immutable set of cultures a service supports.
type Globalization struct {
	supported []string
	index     map[string]Culture
}

// NewGlobalization normalizes names (trimmed, lower-cased, de-duplicated,
// order preserved) and builds the supported set. The first entry becomes
// the default culture.
func NewGlobalization(names []string) (*Globalization, error) {
	g := &Globalization{index: make(map[string]Culture, len(names))}
	for _, raw := range names {
		name := normalize(raw)
		if name == "" {
			continue
		}
		if _, dup := g.index[name]; dup {
			continue
		}
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		g.index[name] = c
		g.supported = append(g.supported, name)
	}
	if len(g.supported) == 0 {
		return nil, ErrNoCultures
	}
	return g, nil
}

// FromConfig builds a Globalization from cfg.
func FromConfig(cfg Config) (*Globalization, error) {
	return NewGlobalization(cfg.SupportedCultures)
}

// SupportedCultures returns a copy of the normalized supported identifiers.
func (g *Globalization) SupportedCultures() []string {
	out := make([]string, len(g.supported))
	copy(out, g.supported)
	return out
}

// DefaultCulture returns the identifier of the default culture.
func (g *Globalization) DefaultCulture() string {
	return g.supported[0]
}

// Default returns the default culture.
func (g *Globalization) Default() Culture {
	return g.index[g.supported[0]]
}

// IsSupported reports whether name (after normalization) is supported.
func (g *Globalization) IsSupported(name string) bool {
	_, ok := g.index[normalize(name)]
	return ok
}

// Resolve picks the culture for an Accept-Language header value.
// Only the first comma-separated token is considered. Quality values are
// not weighted, and a token that is not an exact supported identifier
// yields the default culture.
func (g *Globalization) Resolve(acceptLanguage string) Culture {
	if acceptLanguage == "" {
		return g.Default()
	}
	first := acceptLanguage
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if c, ok := g.index[normalize(first)]; ok {
		return c
	}
	return g.Default()
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
