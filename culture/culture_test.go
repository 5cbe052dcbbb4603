package culture

import (
	"context"
	"errors"
	"testing"
)

func mustGlobalization(t *testing.T, names ...string) *Globalization {
	t.Helper()
	g, err := NewGlobalization(names)
	if err != nil {
		t.Fatalf("NewGlobalization(%v): %v", names, err)
	}
	return g
}

func TestNewGlobalizationNormalizes(t *testing.T) {
	g := mustGlobalization(t, " EN ", "fr-FR", "en", "", "de")

	got := g.SupportedCultures()
	want := []string{"en", "fr-fr", "de"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if g.DefaultCulture() != "en" {
		t.Errorf("expected default 'en', got %q", g.DefaultCulture())
	}
}

func TestNewGlobalizationEmpty(t *testing.T) {
	for _, names := range [][]string{nil, {}, {" ", ""}} {
		if _, err := NewGlobalization(names); !errors.Is(err, ErrNoCultures) {
			t.Errorf("NewGlobalization(%v): expected ErrNoCultures, got %v", names, err)
		}
	}
}

func TestNewGlobalizationInvalidTag(t *testing.T) {
	if _, err := NewGlobalization([]string{"en", "not a tag!"}); err == nil {
		t.Error("expected error for invalid identifier")
	}
}

func TestSupportedCulturesReturnsCopy(t *testing.T) {
	g := mustGlobalization(t, "en", "fr-fr")
	s := g.SupportedCultures()
	s[0] = "xx"
	if g.DefaultCulture() != "en" {
		t.Error("mutating the returned slice changed the globalization")
	}
}

func TestResolve(t *testing.T) {
	g := mustGlobalization(t, "en", "fr-fr")

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "en"},
		{"exact match", "fr-fr", "fr-fr"},
		{"case and space insensitive", "  FR-FR ", "fr-fr"},
		{"first token wins", "fr-FR, en;q=0.8", "fr-fr"},
		{"unsupported", "xx-XX", "en"},
		{"only first token considered", "de-DE, fr-FR", "en"},
		{"quality suffix not stripped", "fr-fr;q=0.9", "en"},
		{"malformed", ",,,", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Resolve(tt.header)
			if got.Name != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.header, got.Name, tt.want)
			}
			if !g.IsSupported(got.Name) {
				t.Errorf("resolved culture %q is not supported", got.Name)
			}
		})
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if len(cfg.SupportedCultures) != 1 || cfg.SupportedCultures[0] != "en" {
		t.Errorf("unexpected defaults %v", cfg.SupportedCultures)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := Config{SupportedCultures: []string{"@@"}}
	if err := bad.Validate(); err == nil {
		t.Error("expected validation error")
	}
}

func TestWithCultureSetsBoth(t *testing.T) {
	g := mustGlobalization(t, "en", "fr-fr")
	c := g.Resolve("fr-fr")

	ctx := WithCulture(context.Background(), c)
	cur, ok := Current(ctx)
	if !ok || cur.Name != "fr-fr" {
		t.Errorf("expected current fr-fr, got %v", cur)
	}
	ui, ok := CurrentUI(ctx)
	if !ok || ui.Name != "fr-fr" {
		t.Errorf("expected UI fr-fr, got %v", ui)
	}

	ctx = WithUICulture(ctx, g.Default())
	ui, _ = CurrentUI(ctx)
	cur, _ = Current(ctx)
	if ui.Name != "en" || cur.Name != "fr-fr" {
		t.Errorf("unexpected cultures current=%s ui=%s", cur, ui)
	}
}

func TestFromContextFallback(t *testing.T) {
	fallback, _ := Parse("en")
	if got := FromContext(context.Background(), fallback); got.Name != "en" {
		t.Errorf("expected fallback, got %v", got)
	}
}

func TestFormatInt(t *testing.T) {
	en, err := Parse("en")
	if err != nil {
		t.Fatal(err)
	}
	if got := en.FormatInt(1234567); got != "1,234,567" {
		t.Errorf("expected 1,234,567, got %q", got)
	}
}
