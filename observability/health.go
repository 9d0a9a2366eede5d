package observability

import (
	"context"
	"fmt"
	"sync"
)

// HealthStatus is up, degraded or down.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusUp:
		return 0
	case HealthStatusDegraded:
		return 1
	default:
		return 2
	}
}

// Health is the result of one check.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth is the body of the health endpoint.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker reports the health of one component.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth starts an up service with no components.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
}

// AddComponent appends h. The service takes the worst status seen.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	if h.Status.rank() > sh.Status.rank() {
		sh.Status = h.Status
	}
}

// CheckAll runs the checkers concurrently and keeps their order in the
// result. A checker that panics is reported down.
func CheckAll(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	results := make([]Health, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = Health{Name: fmt.Sprintf("%T", c), Status: HealthStatusDown, Message: fmt.Sprint(r)}
				}
			}()
			results[i] = c.CheckHealth(ctx)
		}()
	}
	wg.Wait()

	sh := NewServiceHealth(service, version)
	for _, h := range results {
		sh.AddComponent(h)
	}
	return sh
}
