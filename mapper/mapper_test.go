package mapper

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

type userEntity struct {
	ID        int
	FirstName string
	LastName  string
	Timeout   string
}

type userDTO struct {
	ID        int
	FirstName string
	Timeout   time.Duration
}

type summary struct {
	Display string
}

func TestConventionMapping(t *testing.T) {
	m := New(nil)
	dto, err := To[userDTO](m, userEntity{ID: 1, FirstName: "Ada", Timeout: "5s"})
	if err != nil {
		t.Fatalf("To: %v", err)
	}
	if dto.ID != 1 || dto.FirstName != "Ada" {
		t.Errorf("unexpected dto %+v", dto)
	}
	if dto.Timeout != 5*time.Second {
		t.Errorf("expected duration hook to apply, got %v", dto.Timeout)
	}
}

func TestMapFromMap(t *testing.T) {
	m := New(nil)
	var dto userDTO
	if err := m.Map(map[string]interface{}{"id": 9, "firstname": "Bo"}, &dto); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if dto.ID != 9 || dto.FirstName != "Bo" {
		t.Errorf("unexpected dto %+v", dto)
	}
}

func TestExplicitMappingWins(t *testing.T) {
	m := New(func(c *Config) {
		Register(c, func(src userEntity, dst *summary) error {
			dst.Display = src.FirstName + " " + src.LastName
			return nil
		})
	})

	s, err := To[summary](m, userEntity{FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("To: %v", err)
	}
	if s.Display != "Ada Lovelace" {
		t.Errorf("unexpected display %q", s.Display)
	}
	if !m.Has(reflect.TypeOf(userEntity{}), reflect.TypeOf(summary{})) {
		t.Error("expected explicit mapping to be reported")
	}
	if got := m.Mappings(); len(got) != 1 || !strings.Contains(got[0], "summary") {
		t.Errorf("unexpected mappings %v", got)
	}
}

func TestExplicitMappingError(t *testing.T) {
	boom := errors.New("boom")
	m := New(func(c *Config) {
		Register(c, func(userEntity, *summary) error { return boom })
	})
	if _, err := To[summary](m, userEntity{}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestStrictMode(t *testing.T) {
	m := New(func(c *Config) { c.Strict = true })
	if _, err := To[summary](m, userEntity{FirstName: "x"}); err == nil {
		t.Error("expected strict mapping to fail for unset destination field")
	}
}

func TestWeaklyTyped(t *testing.T) {
	m := New(func(c *Config) { c.WeaklyTyped = true })
	var dto userDTO
	if err := m.Map(map[string]interface{}{"id": "42"}, &dto); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if dto.ID != 42 {
		t.Errorf("expected 42, got %d", dto.ID)
	}
}

func TestMapInvalidArguments(t *testing.T) {
	m := New(nil)
	var dto userDTO
	if err := m.Map(nil, &dto); err == nil {
		t.Error("expected error for nil source")
	}
	if err := m.Map(userEntity{}, dto); err == nil {
		t.Error("expected error for non-pointer destination")
	}
}

func TestSlice(t *testing.T) {
	m := New(nil)
	out, err := Slice[userEntity, userDTO](m, []userEntity{{ID: 1}, {ID: 2}})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if len(out) != 2 || out[1].ID != 2 {
		t.Errorf("unexpected result %+v", out)
	}
}
