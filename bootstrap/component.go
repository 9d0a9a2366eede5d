package bootstrap

import (
	"context"
	"errors"
	"fmt"
)

// Component is a part of the process with a start and stop.
// Components that implement observability.HealthChecker take part in the
// ready check; those with a Routes() []string method list their routes in
// the startup summary.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type routeLister interface {
	Routes() []string
}

// registry starts components in registration order and stops the started
// ones in reverse.
type registry struct {
	components []Component
	started    []Component
}

func (r *registry) register(c Component) error {
	for _, existing := range r.components {
		if existing.Name() == c.Name() {
			return fmt.Errorf("component %q already registered", c.Name())
		}
	}
	r.components = append(r.components, c)
	return nil
}

func (r *registry) startAll(ctx context.Context) error {
	for _, c := range r.components {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.started = append(r.started, c)
	}
	return nil
}

func (r *registry) stopAll(ctx context.Context) error {
	var errs []error
	for i := len(r.started) - 1; i >= 0; i-- {
		c := r.started[i]
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
		}
	}
	r.started = nil
	return errors.Join(errs...)
}
