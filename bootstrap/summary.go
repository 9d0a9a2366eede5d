package bootstrap

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/kbukum/bookstore/observability"
)

// Summary collects what started and prints it once the process is ready.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	components      []observability.Health
	routes          []string
	out             io.Writer
}

// NewSummary creates a summary printed to out.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	if out == nil {
		out = io.Discard
	}
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// TrackComponent records the health a component reported at startup.
func (s *Summary) TrackComponent(h observability.Health) {
	s.components = append(s.components, h)
}

// TrackRoutes records routes as "METHOD /path".
func (s *Summary) TrackRoutes(routes ...string) {
	s.routes = append(s.routes, routes...)
}

// Display prints the summary.
func (s *Summary) Display() {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.components) > 0 {
		fmt.Fprintf(w, "\n📦 Components\n")
		healthy := 0
		for i, c := range s.components {
			fmt.Fprintf(w, "   %s %s %s (%s)%s\n", branch(i, len(s.components)), statusIcon(c.Status), c.Name, c.Status, details(c.Details))
			if c.Status == observability.HealthStatusUp {
				healthy++
			}
		}
		if healthy == len(s.components) {
			fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(s.components))
		} else {
			fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(s.components))
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %s\n", branch(i, len(s.routes)), r)
		}
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusIcon(s observability.HealthStatus) string {
	switch s {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	default:
		return "❌"
	}
}

func details(d map[string]string) string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := " "
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k + "=" + d[k]
	}
	return out
}
