// Command bookstore-mockapi serves the bookstore API from memory.
//
// It seeds the demo catalog and an admin account, so the bookstore CLI and
// the API client tests have something real to talk to.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/bookstore/auth/jwt"
	"github.com/kbukum/bookstore/bootstrap"
	"github.com/kbukum/bookstore/config"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/mockapi"
	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/server"
	"github.com/kbukum/bookstore/util"
	"github.com/kbukum/bookstore/version"
)

const program = "bookstore-mockapi"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "config file (default: searched)")
	envFile := fs.String("env-file", "", ".env file (default: searched)")
	port := fs.Int("port", 0, "listen port, overrides http.port")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.Full())
		return 0
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	var cfg config.ServerConfig
	if err := config.LoadConfig(program, &cfg, opts...); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return 1
	}
	if *port > 0 {
		cfg.HTTP.Port = *port
	}
	cfg.Version = util.Coalesce(cfg.Version, version.Short())

	app, _, err := newApp(&cfg, nil, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return 1
	}
	if err := app.Run(ctx); err != nil {
		app.Logger.Error("Application failed", logger.ErrorFields("run", err))
		return 1
	}
	return 0
}

// newApp wires the HTTP server, the mock API and telemetry into one
// application. A nil log means one is built from cfg.Logging.
func newApp(cfg *config.ServerConfig, log *logger.Logger, summary io.Writer) (*bootstrap.App[*config.ServerConfig], *server.Server, error) {
	opts := []bootstrap.Option{bootstrap.WithSummaryOutput(summary)}
	if log != nil {
		opts = append(opts, bootstrap.WithLogger(log))
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	var shutdownTelemetry func(context.Context) error
	app.OnStart(func(ctx context.Context) error {
		shutdown, err := observability.Setup(ctx, cfg.Tracing, cfg.Metrics)
		shutdownTelemetry = shutdown
		return err
	})
	app.OnStop(func(ctx context.Context) error {
		if shutdownTelemetry == nil {
			return nil
		}
		return shutdownTelemetry(ctx)
	})

	srv := server.New(cfg.HTTP, app.Logger)
	srv.ApplyMiddleware()

	m, err := mockapi.New(mockapi.Options{
		JWT: jwt.Config{
			Secret:         cfg.Auth.JWTSecret,
			Issuer:         cfg.Auth.Issuer,
			AccessTokenTTL: cfg.Auth.TokenTTL,
		},
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
	}, app.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("mock api: %w", err)
	}
	m.Register(srv.API(), cfg.HTTP.LoginRateLimit)
	srv.RegisterHealth(cfg.Name, cfg.Version, m)

	if err := app.Register(srv); err != nil {
		return nil, nil, err
	}
	app.AddHealthCheck(m)
	return app, srv, nil
}
