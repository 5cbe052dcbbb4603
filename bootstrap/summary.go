package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/webhost/component"
	"github.com/kbukum/webhost/server/middleware"
)

// HostInfo describes the host services shown in the summary.
type HostInfo struct {
	SerializerMode string
	Cultures       []string
	Mappings       int
	Loggers        []string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a new bootstrap summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// DisplaySummary prints the bootstrap summary including live health from the registry.
func (s *Summary) DisplaySummary(registry *component.Registry, pipelines *middleware.Pipelines, host HostInfo) {
	w := s.out
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	var infra []component.Description
	var routes []component.Route
	if registry != nil {
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				infra = append(infra, desc)
			}
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
	}

	if len(infra) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, inf := range infra {
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s [%s] %s: %s\n", treePrefix(i, len(infra)), inf.Type, inf.Name, details)
		}
		fmt.Fprintf(w, "\n")
	} else {
		fmt.Fprintf(w, "   └── No components registered\n\n")
	}

	fmt.Fprintf(w, "🌍 Host\n")
	fmt.Fprintf(w, "   ├── serializer: %s\n", orDash(host.SerializerMode))
	fmt.Fprintf(w, "   ├── cultures: %s\n", orDash(strings.Join(host.Cultures, ", ")))
	fmt.Fprintf(w, "   ├── mappings: %d\n", host.Mappings)
	fmt.Fprintf(w, "   └── loggers: %s\n", orDash(strings.Join(host.Loggers, ", ")))

	if pipelines != nil {
		fmt.Fprintf(w, "\n🔀 Pipelines\n")
		fmt.Fprintf(w, "   ├── before: %s\n", orDash(strings.Join(pipelines.BeforeNames(), " → ")))
		fmt.Fprintf(w, "   └── after:  %s\n", orDash(strings.Join(pipelines.AfterNames(), " → ")))
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		healthResults := registry.HealthAll(context.Background())
		if len(healthResults) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range healthResults {
				msg := ""
				if h.Message != "" {
					msg = fmt.Sprintf(" (%s)", h.Message)
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(healthResults)),
					healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}

	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
