package version

import (
	"testing"
	"time"
)

func stamp(t *testing.T, commit, branch, buildTime string) {
	t.Helper()
	c, b, bt := Commit, Branch, BuildTime
	t.Cleanup(func() { Commit, Branch, BuildTime = c, b, bt })
	Commit, Branch, BuildTime = commit, branch, buildTime
}

func TestDescribe(t *testing.T) {
	stamp(t, "abc1234", "main", "2026-01-15T10:30:00Z")

	info := Describe("orders-api", "billing", "production", "1.2.0")
	if info.Application != "orders-api" || info.Domain != "billing" || info.Environment != "production" {
		t.Errorf("unexpected identity %+v", info)
	}
	if info.Build.Commit != "abc1234" || info.Build.Branch != "main" {
		t.Errorf("linker values not used: %+v", info.Build)
	}
	if !info.Build.Time.Equal(time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("build time = %v", info.Build.Time)
	}
	if info.Build.GoVersion == "" {
		t.Error("expected go version from build info")
	}
}

func TestDescribeDefaultsToDev(t *testing.T) {
	stamp(t, "", "", "")
	info := Describe("orders-api", "", "", "")
	if info.Version != "dev" {
		t.Errorf("version = %q, want dev", info.Version)
	}
	if info.Release() {
		t.Error("dev must not be a release")
	}
}

func TestInfoRendering(t *testing.T) {
	tests := []struct {
		name        string
		info        Info
		wantShort   string
		wantString  string
		wantRelease bool
	}{
		{
			name:        "release",
			info:        Info{Application: "orders-api", Domain: "billing", Environment: "production", Version: "1.2.0", Build: Build{Commit: "abc1234"}},
			wantShort:   "1.2.0+abc1234",
			wantString:  "billing/orders-api 1.2.0+abc1234 (production)",
			wantRelease: true,
		},
		{
			name:       "dirty tree",
			info:       Info{Application: "orders-api", Version: "1.2.0", Build: Build{Commit: "abc1234", Dirty: true}},
			wantShort:  "1.2.0+abc1234.dirty",
			wantString: "orders-api 1.2.0+abc1234.dirty",
		},
		{
			name:       "no commit",
			info:       Info{Application: "orders-api", Environment: "development", Version: "dev"},
			wantShort:  "dev",
			wantString: "orders-api dev (development)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.wantShort {
				t.Errorf("Short() = %q, want %q", got, tt.wantShort)
			}
			if got := tt.info.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
			if got := tt.info.Release(); got != tt.wantRelease {
				t.Errorf("Release() = %v, want %v", got, tt.wantRelease)
			}
		})
	}
}
