package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Build metadata stamped by the linker. Values left empty are read from the
// VCS settings the Go toolchain embeds.
var (
	Commit    = ""
	Branch    = ""
	BuildTime = ""
)

const devVersion = "dev"

// Build is the binary's build metadata.
type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Branch    string    `json:"branch,omitempty"`
	Time      time.Time `json:"time"`
	GoVersion string    `json:"go_version"`
	Dirty     bool      `json:"dirty"`
}

// Info identifies a running host: the application and domain it belongs
// to, its deployment environment and the build it runs.
type Info struct {
	Application string `json:"application"`
	Domain      string `json:"domain,omitempty"`
	Environment string `json:"environment,omitempty"`
	Version     string `json:"version"`
	Build       Build  `json:"build"`
}

// Describe combines the configured identity with the build metadata. An
// empty version is reported as "dev".
func Describe(application, domain, environment, ver string) Info {
	if ver == "" {
		ver = devVersion
	}
	return Info{
		Application: application,
		Domain:      domain,
		Environment: environment,
		Version:     ver,
		Build:       ReadBuild(),
	}
}

// ReadBuild collects the build metadata. Linker values win over VCS settings.
func ReadBuild() Build {
	b := Build{Commit: Commit, Branch: Branch}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			b.Time = t
		}
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	b.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = shortCommit(s.Value)
			}
		case "vcs.modified":
			b.Dirty = s.Value == "true"
		case "vcs.time":
			if b.Time.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					b.Time = t
				}
			}
		}
	}
	return b
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Release reports whether the host runs a tagged, clean build.
func (i Info) Release() bool {
	return i.Version != devVersion && !i.Build.Dirty && !strings.Contains(i.Version, "dirty")
}

// Short renders the version with the commit as build metadata, e.g.
// "1.2.0+abc1234" or "1.2.0+abc1234.dirty".
func (i Info) Short() string {
	if i.Build.Commit == "" {
		return i.Version
	}
	s := i.Version + "+" + i.Build.Commit
	if i.Build.Dirty {
		s += ".dirty"
	}
	return s
}

// String renders the identity for logs and the startup summary, e.g.
// "billing/orders-api 1.2.0+abc1234 (production)".
func (i Info) String() string {
	name := i.Application
	if i.Domain != "" {
		name = i.Domain + "/" + name
	}
	s := fmt.Sprintf("%s %s", name, i.Short())
	if i.Environment != "" {
		s += " (" + i.Environment + ")"
	}
	return s
}
