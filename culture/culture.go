package culture

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Culture is a resolved culture: the supported identifier plus its parsed
// BCP 47 tag.
type Culture struct {
	Name string
	Tag  language.Tag
}

// Parse builds a Culture from an identifier such as "en" or "fr-fr".
func Parse(name string) (Culture, error) {
	n := normalize(name)
	tag, err := language.Parse(n)
	if err != nil {
		return Culture{}, fmt.Errorf("culture: invalid identifier %q: %w", name, err)
	}
	return Culture{Name: n, Tag: tag}, nil
}

// String returns the culture identifier.
func (c Culture) String() string {
	return c.Name
}

// IsZero reports whether c is the zero Culture.
func (c Culture) IsZero() bool {
	return c.Name == ""
}

// Printer returns a message printer for the culture.
func (c Culture) Printer() *message.Printer {
	return message.NewPrinter(c.Tag)
}

// Sprintf formats according to the culture's conventions.
func (c Culture) Sprintf(format string, args ...interface{}) string {
	return c.Printer().Sprintf(format, args...)
}

// FormatInt formats an integer with the culture's grouping separators.
func (c Culture) FormatInt(v int64) string {
	return c.Printer().Sprint(number.Decimal(v))
}

// FormatNumber formats a float with the given number of fraction digits.
func (c Culture) FormatNumber(v float64, scale int) string {
	return c.Printer().Sprint(number.Decimal(v, number.Scale(scale)))
}
