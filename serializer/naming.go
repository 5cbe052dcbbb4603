package serializer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

// namingExtension renames untagged exported fields of every struct the owning
// API encodes or decodes.
type namingExtension struct {
	jsoniter.DummyExtension
	translate func(string) string
}

func (e *namingExtension) UpdateStructDescriptor(desc *jsoniter.StructDescriptor) {
	for _, binding := range desc.Fields {
		name := binding.Field.Name()
		r, _ := utf8.DecodeRuneInString(name)
		if !unicode.IsUpper(r) {
			continue
		}
		if tag, ok := binding.Field.Tag().Lookup("json"); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" || tagName != "" {
				continue
			}
		}
		translated := e.translate(name)
		binding.ToNames = []string{translated}
		binding.FromNames = []string{translated}
	}
}

// CamelCaseName lower-cases the leading run of upper-case letters. When the run
// is followed by a lower-case letter its last letter stays upper-case, so
// "HTTPServer" becomes "httpServer".
func CamelCaseName(name string) string {
	runes := []rune(name)
	for i := 0; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// LowerCaseName lower-cases the whole name.
func LowerCaseName(name string) string {
	return strings.ToLower(name)
}

// SnakeCaseName splits name on case boundaries and joins the lower-cased words
// with underscores: "UserID" becomes "user_id".
func SnakeCaseName(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
