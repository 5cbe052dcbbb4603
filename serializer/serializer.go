package serializer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/kbukum/webhost/di"
)

// Mode selects the field naming convention.
type Mode string

const (
	CamelCase Mode = "camelcase"
	LowerCase Mode = "lowercase"
	SnakeCase Mode = "snakecase"
)

// ContentType is the media type written by every serializer.
const ContentType = "application/json; charset=utf-8"

// ErrUnknownMode is returned by New for a mode outside the supported set.
var ErrUnknownMode = errors.New("serializer: unknown mode")

// Settings configure a serializer. They are also registered in the process
// container so handlers can inspect the active mode.
type Settings struct {
	Mode       Mode `yaml:"mode" mapstructure:"mode"`
	Indent     bool `yaml:"indent" mapstructure:"indent"`
	EscapeHTML bool `yaml:"escape_html" mapstructure:"escape_html"`
}

// ApplyDefaults selects camelcase when no mode is configured.
func (s *Settings) ApplyDefaults() {
	if s.Mode == "" {
		s.Mode = CamelCase
	}
	s.Mode = Mode(strings.ToLower(strings.TrimSpace(string(s.Mode))))
}

// Validate reports ErrUnknownMode for an unsupported mode.
func (s *Settings) Validate() error {
	if _, ok := factories[s.Mode]; !ok {
		return fmt.Errorf("%w %q (supported: %s)", ErrUnknownMode, s.Mode, strings.Join(Modes(), ", "))
	}
	return nil
}

// Serializer encodes and decodes JSON bodies.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	NewEncoder(w io.Writer) *jsoniter.Encoder
	NewDecoder(r io.Reader) *jsoniter.Decoder
	ContentType() string
	Settings() Settings
}

var factories = map[Mode]func(Settings) Serializer{
	CamelCase: func(s Settings) Serializer { return newJSON(s, CamelCase) },
	LowerCase: func(s Settings) Serializer { return newJSON(s, LowerCase) },
	SnakeCase: func(s Settings) Serializer { return newJSON(s, SnakeCase) },
}

var translators = map[Mode]func(string) string{
	CamelCase: CamelCaseName,
	LowerCase: LowerCaseName,
	SnakeCase: SnakeCaseName,
}

// Modes lists the supported modes in sorted order.
func Modes() []string {
	out := make([]string, 0, len(factories))
	for m := range factories {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}

// New builds the serializer for settings.Mode.
func New(settings Settings) (Serializer, error) {
	factory, ok := factories[settings.Mode]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownMode, settings.Mode, strings.Join(Modes(), ", "))
	}
	return factory(settings), nil
}

// Resolve returns the serializer registered in c.
func Resolve(c di.Container) (Serializer, error) {
	s, err := di.Resolve[Serializer](c, di.KeySerializer)
	if err != nil {
		return nil, fmt.Errorf("serializer: not configured: %w", err)
	}
	return s, nil
}

type jsonSerializer struct {
	api      jsoniter.API
	settings Settings
}

func newJSON(s Settings, mode Mode) *jsonSerializer {
	s.Mode = mode
	indent := 0
	if s.Indent {
		indent = 2
	}
	api := jsoniter.Config{
		IndentionStep:          indent,
		EscapeHTML:             s.EscapeHTML,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
	}.Froze()
	api.RegisterExtension(&namingExtension{translate: translators[mode]})
	return &jsonSerializer{api: api, settings: s}
}

func (j *jsonSerializer) Marshal(v interface{}) ([]byte, error) {
	return j.api.Marshal(v)
}

func (j *jsonSerializer) Unmarshal(data []byte, v interface{}) error {
	return j.api.Unmarshal(data, v)
}

func (j *jsonSerializer) NewEncoder(w io.Writer) *jsoniter.Encoder {
	return j.api.NewEncoder(w)
}

func (j *jsonSerializer) NewDecoder(r io.Reader) *jsoniter.Decoder {
	return j.api.NewDecoder(r)
}

func (j *jsonSerializer) ContentType() string { return ContentType }

func (j *jsonSerializer) Settings() Settings { return j.settings }
