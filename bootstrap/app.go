package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/observability"
)

// App manages the lifecycle of one process. C is its config type.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	Summary *Summary

	components      registry
	checks          []observability.HealthChecker
	gracefulTimeout time.Duration

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and sets up the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := appOptions{gracefulTimeout: 15 * time.Second, summaryOut: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		logger.Init(base.Logging)
		log = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Logger:          log,
		Summary:         NewSummary(base.Name, base.Version, o.summaryOut),
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// Register adds components. They start in the order given.
func (a *App[C]) Register(components ...Component) error {
	for _, c := range components {
		if err := a.components.register(c); err != nil {
			return err
		}
	}
	return nil
}

// AddHealthCheck adds checkers to the ready check that are not components.
func (a *App[C]) AddHealthCheck(checkers ...observability.HealthChecker) {
	a.checks = append(a.checks, checkers...)
}

// ReadyCheck fails when a component or health check reports down. Degraded
// ones are reported but pass.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	checks := make([]observability.HealthChecker, 0, len(a.checks))
	for _, c := range a.components.components {
		if hc, ok := c.(observability.HealthChecker); ok {
			checks = append(checks, hc)
		}
	}
	checks = append(checks, a.checks...)

	var down []string
	for _, hc := range checks {
		h := hc.CheckHealth(ctx)
		a.Summary.TrackComponent(h)
		if h.Status == observability.HealthStatusDown {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			down = append(down, detail)
		}
	}
	if len(down) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(down, ", "))
	}
	return nil
}

// Run starts the application, waits for SIGINT, SIGTERM or the end of ctx,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.Shutdown()
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.components.startAll(ctx); err != nil {
		// Components started before the failure are stopped again.
		_ = a.Shutdown()
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		_ = a.Shutdown()
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		_ = a.Shutdown()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	for _, c := range a.components.components {
		if rl, ok := c.(routeLister); ok {
			a.Summary.TrackRoutes(rl.Routes()...)
		}
	}
	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display()
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or the end of ctx.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks and stops the started components within the
// graceful timeout. Every step runs even when an earlier one fails.
func (a *App[C]) Shutdown() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
		shutdownErr = err
	}
	if err := a.components.stopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("shutdown", err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
