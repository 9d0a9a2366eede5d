// Command bookstore is a terminal client for the bookstore API.
//
//	bookstore [flags] <command> [args]
//
// The session token is kept in the configured session backend, a JSON file
// under ~/.bookstore by default, so a login survives between invocations.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/bookstore/api"
	"github.com/kbukum/bookstore/config"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/session"
	"github.com/kbukum/bookstore/util"
	"github.com/kbukum/bookstore/version"
)

const program = "bookstore"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type globalFlags struct {
	configFile string
	envFile    string
	baseURL    string
	retries    int
	timeout    time.Duration
	verbose    bool
}

func parseGlobal(args []string, stderr io.Writer) (globalFlags, []string, error) {
	var g globalFlags
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.configFile, "config", "", "config file (default: searched)")
	fs.StringVar(&g.envFile, "env-file", "", ".env file (default: searched)")
	fs.StringVar(&g.baseURL, "api", "", "API base URL, overrides api.base_url")
	fs.IntVar(&g.retries, "retries", 0, "attempts for retryable failures, overrides retry.max_attempts")
	fs.DurationVar(&g.timeout, "timeout", 0, "per-call timeout, overrides api.timeout_ms")
	fs.BoolVar(&g.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] <command> [args]\n\ncommands:\n%s\nflags:\n", program, commandHelp)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return g, nil, err
	}
	return g, fs.Args(), nil
}

func loadConfig(g globalFlags) (*config.ClientConfig, error) {
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		opts = append(opts, config.WithEnvFile(g.envFile))
	}

	var cfg config.ClientConfig
	if err := config.LoadConfig(program, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.API.BaseURL = util.Coalesce(g.baseURL, cfg.API.BaseURL)
	if g.retries > 0 {
		cfg.Retry.MaxAttempts = g.retries
	}
	if g.timeout > 0 {
		cfg.API.TimeoutMS = int(g.timeout.Milliseconds())
	}
	cfg.Logging.Level = util.Coalesce(cfg.Logging.Level, "error")
	if g.verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Version = util.Coalesce(cfg.Version, version.Short())

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	g, rest, err := parseGlobal(args, stderr)
	if err != nil {
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprintf(stderr, "usage: %s [flags] <command> [args]\n\ncommands:\n%s", program, commandHelp)
		return 2
	}
	if rest[0] == "version" {
		fmt.Fprintln(stdout, version.Full())
		return 0
	}

	cfg, err := loadConfig(g)
	if err != nil {
		fmt.Fprintf(stderr, "%s: config: %v\n", program, err)
		return 1
	}
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := observability.Setup(ctx, cfg.Tracing, cfg.Metrics)
	if err != nil {
		fmt.Fprintf(stderr, "%s: telemetry: %v\n", program, err)
		return 1
	}
	defer func() {
		flushCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := shutdown(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	store, err := session.Open(ctx, cfg.Session, log)
	if err != nil {
		fmt.Fprintf(stderr, "%s: session: %v\n", program, err)
		return 1
	}
	defer store.Close()

	opts := []httpclient.Option{httpclient.WithSessionStore(store), httpclient.WithLogger(log)}
	if cfg.Metrics.Enabled {
		m, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			fmt.Fprintf(stderr, "%s: metrics: %v\n", program, err)
			return 1
		}
		opts = append(opts, httpclient.WithMetrics(m))
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
		Headers: cfg.API.Headers,
		HTTPS:   cfg.HTTPSPolicy(),
	}, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return 1
	}
	defer client.Close()

	retry := cfg.Retry
	retry.RetryIf = httpclient.IsRetryable
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("retrying", logger.Fields("attempt", attempt, "backoff", backoff.String(), logger.FieldError, err.Error()))
	}

	app := &App{
		svc:   api.New(client, store, log),
		store: store,
		retry: retry,
		in:    bufio.NewReader(stdin),
		out:   stdout,
	}
	if err := app.Run(ctx, rest); err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", program, describe(err))
		if isUsage(err) {
			return 2
		}
		return 1
	}
	return 0
}
