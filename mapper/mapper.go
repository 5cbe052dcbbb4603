// Package mapper maps between DTOs and domain types. Explicit mappings are
// registered per source/destination type pair; every other pair falls back to
// the mapstructure convention (fields matched by name, case-insensitively).
package mapper

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

type typePair struct {
	src reflect.Type
	dst reflect.Type
}

func (p typePair) String() string {
	return p.src.String() + " -> " + p.dst.String()
}

type mapFunc func(src interface{}, dst interface{}) error

// Config collects mappings and decoder options before the Mapper is built.
type Config struct {
	// TagName is the struct tag consulted by the convention mapper.
	TagName string
	// Strict fails a convention mapping when a destination field is left unset.
	Strict bool
	// WeaklyTyped allows lenient conversions such as "1" -> 1.
	WeaklyTyped bool

	hooks    []mapstructure.DecodeHookFunc
	mappings map[typePair]mapFunc
}

// AddHook appends a decode hook used by the convention mapper.
func (c *Config) AddHook(h mapstructure.DecodeHookFunc) {
	c.hooks = append(c.hooks, h)
}

// Register adds an explicit mapping from S to D. It replaces any previous
// mapping for the same pair.
func Register[S, D any](c *Config, fn func(src S, dst *D) error) {
	if c.mappings == nil {
		c.mappings = make(map[typePair]mapFunc)
	}
	pair := typePair{src: reflect.TypeOf((*S)(nil)).Elem(), dst: reflect.TypeOf((*D)(nil)).Elem()}
	c.mappings[pair] = func(src, dst interface{}) error {
		return fn(src.(S), dst.(*D))
	}
}

// Mapper is safe for concurrent use once built.
type Mapper struct {
	tagName     string
	strict      bool
	weaklyTyped bool
	hook        mapstructure.DecodeHookFunc
	mappings    map[typePair]mapFunc
}

// New builds a Mapper. configure may be nil.
func New(configure func(*Config)) *Mapper {
	cfg := &Config{TagName: "mapstructure"}
	if configure != nil {
		configure(cfg)
	}
	hooks := append([]mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.TextUnmarshallerHookFunc(),
	}, cfg.hooks...)

	m := &Mapper{
		tagName:     cfg.TagName,
		strict:      cfg.Strict,
		weaklyTyped: cfg.WeaklyTyped,
		hook:        mapstructure.ComposeDecodeHookFunc(hooks...),
		mappings:    make(map[typePair]mapFunc, len(cfg.mappings)),
	}
	for k, v := range cfg.mappings {
		m.mappings[k] = v
	}
	return m
}

// Map copies src into dst, which must be a non-nil pointer.
func (m *Mapper) Map(src interface{}, dst interface{}) error {
	if src == nil {
		return fmt.Errorf("mapper: source is nil")
	}
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("mapper: destination must be a non-nil pointer, got %T", dst)
	}

	pair := typePair{src: reflect.TypeOf(src), dst: dv.Type().Elem()}
	if fn, ok := m.mappings[pair]; ok {
		if err := fn(src, dst); err != nil {
			return fmt.Errorf("mapper: %s: %w", pair, err)
		}
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          m.tagName,
		ErrorUnset:       m.strict,
		WeaklyTypedInput: m.weaklyTyped,
		DecodeHook:       m.hook,
	})
	if err != nil {
		return fmt.Errorf("mapper: %s: %w", pair, err)
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("mapper: %s: %w", pair, err)
	}
	return nil
}

// Has reports whether an explicit mapping exists for the pair.
func (m *Mapper) Has(src, dst reflect.Type) bool {
	_, ok := m.mappings[typePair{src: src, dst: dst}]
	return ok
}

// Mappings lists the explicit mappings, sorted.
func (m *Mapper) Mappings() []string {
	out := make([]string, 0, len(m.mappings))
	for p := range m.mappings {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}

// To maps src into a new D.
func To[D any](m *Mapper, src interface{}) (D, error) {
	var dst D
	err := m.Map(src, &dst)
	return dst, err
}

// Slice maps every element of src into a new D.
func Slice[S, D any](m *Mapper, src []S) ([]D, error) {
	out := make([]D, len(src))
	for i := range src {
		if err := m.Map(src[i], &out[i]); err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
	}
	return out, nil
}
