package config

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Root is the read-only configuration tree of the process. It is registered
// in the container so components can read settings by key.
type Root struct {
	v *viper.Viper
}

// NewRoot wraps an already populated viper instance.
func NewRoot(v *viper.Viper) *Root {
	if v == nil {
		v = viper.New()
	}
	return &Root{v: v}
}

// RootFromStruct builds a Root from a decoded config struct. Keys follow the
// struct's mapstructure tags, so the tree has the same shape as the file the
// struct would be loaded from.
func RootFromStruct(cfg interface{}) (*Root, error) {
	var settings map[string]interface{}
	if err := mapstructure.Decode(cfg, &settings); err != nil {
		return nil, fmt.Errorf("config: flatten %T: %w", cfg, err)
	}
	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("config: merge %T: %w", cfg, err)
	}
	return NewRoot(v), nil
}

func (r *Root) Get(key string) interface{} { return r.v.Get(key) }
func (r *Root) GetString(key string) string { return r.v.GetString(key) }
func (r *Root) GetInt(key string) int { return r.v.GetInt(key) }
func (r *Root) GetBool(key string) bool { return r.v.GetBool(key) }
func (r *Root) GetDuration(key string) time.Duration { return r.v.GetDuration(key) }
func (r *Root) GetStringSlice(key string) []string { return r.v.GetStringSlice(key) }
func (r *Root) IsSet(key string) bool { return r.v.IsSet(key) }

// Sub returns the subtree at key, or nil when key is not a section.
func (r *Root) Sub(key string) *Root {
	sub := r.v.Sub(key)
	if sub == nil {
		return nil
	}
	return &Root{v: sub}
}

// Bind decodes the section at key into out.
func (r *Root) Bind(key string, out interface{}) error {
	if err := r.v.UnmarshalKey(key, out); err != nil {
		return fmt.Errorf("config: bind %s: %w", key, err)
	}
	return nil
}

// AllSettings returns the merged tree as nested maps.
func (r *Root) AllSettings() map[string]interface{} {
	return r.v.AllSettings()
}

// Viper exposes the underlying instance for integrations that need it.
func (r *Root) Viper() *viper.Viper {
	return r.v
}
