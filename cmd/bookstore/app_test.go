package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kbukum/bookstore/api"
	"github.com/kbukum/bookstore/auth/jwt"
	"github.com/kbukum/bookstore/auth/password"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/mockapi"
	"github.com/kbukum/bookstore/resilience"
	"github.com/kbukum/bookstore/server"
	"github.com/kbukum/bookstore/session"
)

func newMockServer(t *testing.T) string {
	t.Helper()
	cfg := server.Config{}
	cfg.ApplyDefaults()
	srv := server.New(cfg, logger.NewNop())
	srv.ApplyMiddleware()
	m, err := mockapi.New(mockapi.Options{
		JWT:           jwt.Config{Secret: "cli-test-secret-value"},
		Hasher:        password.NewBcryptHasher(password.WithCost(bcrypt.MinCost)),
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	m.Register(srv.API(), 100)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + cfg.BasePath
}

type cli struct {
	store *session.MemoryStore
	out   bytes.Buffer
	url   string
}

func newCLI(t *testing.T, url string) *cli {
	t.Helper()
	isTerminal = func(int) bool { return false }
	return &cli{store: session.NewMemoryStore(0), url: url}
}

// run executes one command with stdin as input, like a fresh process sharing
// the session store.
func (c *cli) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	client, err := httpclient.New(httpclient.Config{BaseURL: c.url, Timeout: 5 * time.Second},
		httpclient.WithSessionStore(c.store), httpclient.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	c.out.Reset()
	app := &App{
		svc:   api.New(client, c.store, logger.NewNop()),
		store: c.store,
		retry: resilience.RetryConfig{MaxAttempts: 1},
		in:    bufio.NewReader(strings.NewReader(stdin)),
		out:   &c.out,
	}
	return app.Run(context.Background(), args)
}

func (c *cli) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	if err := c.run(t, stdin, args...); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return c.out.String()
}

func TestCLI_SessionFlow(t *testing.T) {
	c := newCLI(t, newMockServer(t))

	if out := c.mustRun(t, "", "whoami"); !strings.Contains(out, "Not signed in") {
		t.Errorf("unexpected whoami output %q", out)
	}

	out := c.mustRun(t, "admin\nadmin123\n", "login")
	if !strings.Contains(out, "Signed in as admin (admin)") {
		t.Errorf("unexpected login output %q", out)
	}

	out = c.mustRun(t, "", "whoami")
	if !strings.Contains(out, "admin@bookstore.local") || !strings.Contains(out, "***") {
		t.Errorf("unexpected whoami output %q", out)
	}

	c.mustRun(t, "", "logout")
	if c.store.Len() != 0 {
		t.Error("logout must clear the session")
	}
}

func TestCLI_LoginFailure(t *testing.T) {
	c := newCLI(t, newMockServer(t))
	err := c.run(t, "", "login", "-u", "admin", "-p", "wrong-password")
	if !httpclient.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if got := describe(err); !strings.Contains(got, "bookstore login") {
		t.Errorf("unexpected description %q", got)
	}
}

func TestCLI_Catalog(t *testing.T) {
	c := newCLI(t, newMockServer(t))

	out := c.mustRun(t, "", "books", "-category", "programming", "-sort", "price", "-order", "desc", "-limit", "2")
	if !strings.Contains(out, "The Art of Computer Programming") || strings.Contains(out, "Clean Code") {
		t.Errorf("unexpected books output %q", out)
	}
	if !strings.Contains(out, "Page 1 of 3, 6 books") {
		t.Errorf("missing paging footer in %q", out)
	}

	out = c.mustRun(t, "", "book", "8")
	if !strings.Contains(out, "Sapiens") || !strings.Contains(out, "290,000 (was 350,000)") {
		t.Errorf("unexpected book output %q", out)
	}

	if out := c.mustRun(t, "", "search", "harari"); !strings.Contains(out, "Sapiens") {
		t.Errorf("unexpected search output %q", out)
	}
	if out := c.mustRun(t, "", "search", "nothing-matches"); !strings.Contains(out, "No books match") {
		t.Errorf("unexpected empty search output %q", out)
	}

	out = c.mustRun(t, "", "categories")
	if !strings.Contains(out, "programming") || !strings.Contains(out, "Psychology") {
		t.Errorf("unexpected categories output %q", out)
	}

	if err := c.run(t, "", "book", "404"); !httpclient.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCLI_Orders(t *testing.T) {
	c := newCLI(t, newMockServer(t))
	c.mustRun(t, "secret1\n", "register", "-u", "reader", "-e", "reader@example.com")

	if out := c.mustRun(t, "", "orders"); !strings.Contains(out, "No orders") {
		t.Errorf("unexpected orders output %q", out)
	}
	out := c.mustRun(t, "", "buy", "1:2", "8")
	if !strings.Contains(out, "Order placed") || !strings.Contains(out, "888,000") {
		t.Errorf("unexpected buy output %q", out)
	}
	out = c.mustRun(t, "", "orders", "-status", "pending")
	if !strings.Contains(out, "pending") || !strings.Contains(out, "888,000") {
		t.Errorf("unexpected orders output %q", out)
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	c := newCLI(t, "http://127.0.0.1:1/api")
	tests := [][]string{
		{"fly"},
		{"book"},
		{"search", "  "},
		{"buy"},
		{"buy", "1:zero"},
		{"books", "-unknown"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if err := c.run(t, "", args...); !isUsage(err) {
				t.Errorf("expected usage error, got %v", err)
			}
		})
	}
}

func TestCLI_NetworkFailureIsRetried(t *testing.T) {
	c := newCLI(t, "http://127.0.0.1:1/api")
	client, _ := httpclient.New(httpclient.Config{BaseURL: c.url, Timeout: time.Second})
	attempts := 0
	app := &App{
		svc:   api.New(client, c.store, logger.NewNop()),
		store: c.store,
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			RetryIf:        httpclient.IsRetryable,
			OnRetry:        func(int, error, time.Duration) { attempts++ },
		},
		in:  bufio.NewReader(strings.NewReader("")),
		out: &c.out,
	}
	err := app.Run(context.Background(), []string{"categories"})
	if !httpclient.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 retries, got %d", attempts)
	}
	if !strings.HasPrefix(describe(err), "cannot reach the server") {
		t.Errorf("unexpected description %q", describe(err))
	}
}

func TestRun_VersionAndUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"version"}, strings.NewReader(""), &stdout, &stderr); code != 0 || stdout.Len() == 0 {
		t.Errorf("version: code %d, output %q", code, stdout.String())
	}
	if code := run(nil, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Errorf("expected exit 2 without a command, got %d", code)
	}
	if code := run([]string{"-nope"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Errorf("expected exit 2 for a bad flag, got %d", code)
	}
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"1", "8:3"})
	if err != nil {
		t.Fatal(err)
	}
	want := []api.OrderItem{{BookID: "1", Quantity: 1}, {BookID: "8", Quantity: 3}}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
	if _, err := parseItems([]string{":2"}); !errors.Is(err, errUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1000: "1,000", 299000: "299,000", 1234567: "1,234,567", -45000: "-45,000"}
	for in, want := range tests {
		if got := formatMoney(in); got != want {
			t.Errorf("formatMoney(%d) = %q, want %q", in, got, want)
		}
	}
}
