package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/security"
	"github.com/kbukum/bookstore/session"
)

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	c, err := New(Config{BaseURL: srv.URL + "/api"}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

type book struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestGet_QueryStringAndURL(t *testing.T) {
	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		jsonHandler(200, `{"success":true,"data":[]}`)(w, r)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	params := url.Values{}
	params.Set("page", "2")
	params.Set("category", "programming")
	if _, err := Get[[]book](c, context.Background(), "/books", params); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotURI != "/api/books?category=programming&page=2" {
		t.Errorf("unexpected request URI %q", gotURI)
	}

	if _, err := Get[[]book](c, context.Background(), "/books/search?q=go", url.Values{"page": {"1"}}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotURI != "/api/books/search?q=go&page=1" {
		t.Errorf("expected params appended to existing query, got %q", gotURI)
	}
}

func TestDo_DefaultHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		jsonHandler(200, `{}`)(w, r)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Headers: map[string]string{"X-Client": "cli", "Accept": "application/vnd.bookstore+json"}},
		WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Get[map[string]any](c, context.Background(), "/books", nil, WithHeader("X-Client", "override")); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Get("Content-Type") != "application/json" {
		t.Errorf("expected json content type, got %q", got.Get("Content-Type"))
	}
	if got.Get("Accept") != "application/vnd.bookstore+json" {
		t.Errorf("configured header should override built-in default, got %q", got.Get("Accept"))
	}
	if got.Get("X-Client") != "override" {
		t.Errorf("per-request header should override configured header, got %q", got.Get("X-Client"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
	if got.Get("Authorization") != "" {
		t.Errorf("expected no authorization header, got %q", got.Get("Authorization"))
	}
}

func TestAuthToken_Priority(t *testing.T) {
	var mu sync.Mutex
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = r.Header.Get("Authorization")
		mu.Unlock()
		jsonHandler(200, `{"success":true}`)(w, r)
	}))
	defer srv.Close()

	store := session.NewMemoryStore(0)
	c := newTestClient(t, srv, WithSessionStore(store))
	ctx := context.Background()
	call := func(opts ...RequestOption) string {
		t.Helper()
		if _, err := Get[any](c, ctx, "/users/profile", nil, opts...); err != nil {
			t.Fatalf("Get: %v", err)
		}
		mu.Lock()
		defer mu.Unlock()
		return auth
	}

	c.SetAuthToken("instance")
	if got := call(); got != "Bearer instance" {
		t.Errorf("expected instance token, got %q", got)
	}
	if got := call(WithHeader("Authorization", "Bearer explicit")); got != "Bearer explicit" {
		t.Errorf("per-request override should beat instance token, got %q", got)
	}

	_ = store.Set(ctx, session.KeyAuthToken, "stored")
	if got := call(WithHeader("Authorization", "Bearer explicit")); got != "Bearer stored" {
		t.Errorf("stored token must beat explicit override, got %q", got)
	}

	_ = store.Delete(ctx, session.KeyAuthToken)
	c.RemoveAuthToken()
	if got := call(); got != "" {
		t.Errorf("expected no token after removal, got %q", got)
	}

	_ = store.Set(ctx, session.KeyAuthToken, "")
	if got := call(); got != "" {
		t.Errorf("empty stored token should be ignored, got %q", got)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store offline")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("store offline") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("store offline") }

func TestSessionStoreFailureSendsWithoutToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		jsonHandler(200, `{}`)(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithSessionStore(failingStore{}))
	if _, err := Get[any](c, context.Background(), "/books", nil); err != nil {
		t.Fatalf("expected request to proceed, got %v", err)
	}
	if auth != "" {
		t.Errorf("expected no authorization header, got %q", auth)
	}
}

func slowHandler(release <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
			jsonHandler(200, `{"success":true,"data":"late"}`)(w, r)
		}
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(slowHandler(release))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := Get[string](c, context.Background(), "/books", nil)
	if resp != nil {
		t.Fatal("timeout must never return a success envelope")
	}
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	e, _ := AsError(err)
	if e.Code != CodeTimeout || e.Message != MessageTimeout {
		t.Errorf("unexpected timeout error %+v", e)
	}
	if e.Status != 0 {
		t.Errorf("timeout must not carry a status, got %d", e.Status)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected deadline exceeded in the chain")
	}
}

func TestDo_TimeoutIsPerCall(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.Handle("/slow", slowHandler(release))
	mux.Handle("/fast", jsonHandler(200, `{"data":"ok"}`))
	srv := httptest.NewServer(mux)
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 100 * time.Millisecond}, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = Get[string](c, context.Background(), "/slow", nil)
	}()

	resp, err := Get[string](c, context.Background(), "/fast", nil)
	if err != nil || resp.Data != "ok" {
		t.Fatalf("fast call should succeed, got %v", err)
	}
	wg.Wait()
	if !IsTimeout(slowErr) {
		t.Errorf("expected slow call to time out, got %v", slowErr)
	}
}

func TestDo_CallerCancellationIsGeneric(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(slowHandler(release))
	defer srv.Close()
	defer close(release)
	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := Get[string](c, ctx, "/books", nil)
	if !IsGeneric(err) {
		t.Fatalf("expected generic error on cancellation, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled in the chain")
	}
}

func TestDo_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		code    string
	}{
		{"message and code", 404, `{"success":false,"message":"Book not found","code":"NOT_FOUND"}`, "Book not found", "NOT_FOUND"},
		{"no fields", 500, `{}`, MessageRequestFailed, ""},
		{"non-json body", 502, `<html>bad gateway</html>`, MessageRequestFailed, ""},
		{"empty body", 401, ``, MessageRequestFailed, ""},
		{"numeric code", 422, `{"message":"Invalid","code":1001}`, "Invalid", "1001"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(tc.status, tc.body))
			defer srv.Close()
			c := newTestClient(t, srv)

			_, err := Get[any](c, context.Background(), "/books/9", nil)
			if !IsServer(err) {
				t.Fatalf("expected server error, got %v", err)
			}
			e, _ := AsError(err)
			if e.Status != tc.status || e.Message != tc.message || e.Code != tc.code {
				t.Errorf("got status=%d message=%q code=%q", e.Status, e.Message, e.Code)
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(200, `{}`))
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base}, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Get[any](c, context.Background(), "/books", nil)
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	e, _ := AsError(err)
	if e.Code != CodeNetwork || e.Message != MessageNetwork || e.Status != 0 {
		t.Errorf("unexpected network error %+v", e)
	}
}

func TestDo_MalformedSuccessBodyIsGeneric(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(200, `{"data":`))
	defer srv.Close()
	c := newTestClient(t, srv)

	resp, err := Get[any](c, context.Background(), "/books", nil)
	if resp != nil || !IsGeneric(err) {
		t.Fatalf("expected generic error, got resp=%v err=%v", resp, err)
	}
}

func TestDo_Envelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		data    string
		message string
		wrapped bool
	}{
		{"wrapped", `{"success":true,"data":{"id":"1"},"message":"ok"}`, `{"id":"1"}`, "ok", true},
		{"raw object", `{"id":"1","title":"Go"}`, `{"id":"1","title":"Go"}`, "", false},
		{"falsy data kept", `{"data":0}`, `0`, "", true},
		{"null data", `{"data":null,"message":"gone"}`, `null`, "gone", true},
		{"raw array", `[1,2]`, `[1,2]`, "", false},
		{"empty body", ``, ``, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(200, tc.body))
			defer srv.Close()
			c := newTestClient(t, srv)

			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if !resp.Success {
				t.Error("success envelope must have Success=true")
			}
			if string(resp.Data) != tc.data {
				t.Errorf("data = %s, want %s", resp.Data, tc.data)
			}
			if resp.Message != tc.message || resp.Wrapped != tc.wrapped {
				t.Errorf("message=%q wrapped=%v", resp.Message, resp.Wrapped)
			}
		})
	}
}

func TestVerbs(t *testing.T) {
	type seen struct {
		method string
		body   string
	}
	var got seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = seen{r.Method, string(b)}
		jsonHandler(200, `{"success":true,"data":{"id":"42","title":"Refactoring"}}`)(w, r)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)
	ctx := context.Background()

	resp, err := Post[book](c, ctx, "/books", book{Title: "Refactoring"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got.method != http.MethodPost || !strings.Contains(got.body, `"title":"Refactoring"`) {
		t.Errorf("unexpected request %+v", got)
	}
	if resp.Data.ID != "42" {
		t.Errorf("expected decoded data, got %+v", resp.Data)
	}

	if _, err := Put[book](c, ctx, "/books/42", map[string]string{"title": "X"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got.method != http.MethodPut || got.body != `{"title":"X"}` {
		t.Errorf("unexpected request %+v", got)
	}

	if _, err := Delete[any](c, ctx, "/books/42"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got.method != http.MethodDelete || got.body != "" {
		t.Errorf("delete must send no body, got %+v", got)
	}
}

func TestDecode(t *testing.T) {
	resp, err := Decode[book](&APIResponse[json.RawMessage]{Success: true, Data: json.RawMessage(`null`)})
	if err != nil || resp.Data != (book{}) {
		t.Errorf("null data should decode to zero value, got %+v err=%v", resp, err)
	}
	if _, err := Decode[book](&APIResponse[json.RawMessage]{Success: true, Data: json.RawMessage(`"str"`)}); !IsGeneric(err) {
		t.Errorf("expected generic decode error, got %v", err)
	}
}

func TestPost_UnencodableBody(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(200, `{}`))
	defer srv.Close()
	c := newTestClient(t, srv)
	if _, err := Post[any](c, context.Background(), "/books", make(chan int)); !IsGeneric(err) {
		t.Fatalf("expected generic error, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without base url")
	}
	_, err := New(Config{BaseURL: "http://api.example/api", HTTPS: security.HTTPSPolicy{Enforce: true}})
	if !errors.Is(err, security.ErrInsecureURL) {
		t.Errorf("expected insecure url error, got %v", err)
	}
	c, err := New(Config{BaseURL: "https://api.example/api"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.config.Timeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %v", c.config.Timeout)
	}
	if c.BaseURL() != "https://api.example/api" {
		t.Errorf("unexpected base url %q", c.BaseURL())
	}
}

func TestTLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(jsonHandler(200, `{"data":"secure"}`))
	defer srv.Close()

	// A zero-value policy verifies certificates.
	verifying, err := New(Config{BaseURL: srv.URL}, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Get[string](verifying, context.Background(), "/x", nil); !IsNetwork(err) {
		t.Fatalf("expected network error for untrusted certificate, got %v", err)
	}

	insecure, err := New(Config{BaseURL: srv.URL, HTTPS: security.HTTPSPolicy{Enforce: true, SkipVerify: true}}, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := Get[string](insecure, context.Background(), "/x", nil)
	if err != nil || resp.Data != "secure" {
		t.Fatalf("expected success with verification skipped, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{newTimeoutError(context.DeadlineExceeded), true},
		{newNetworkError(errors.New("refused")), true},
		{newServerError(503, "", ""), true},
		{newServerError(429, "", ""), true},
		{newServerError(404, "", ""), false},
		{newGenericError(errors.New("bad json")), false},
		{errors.New("plain"), false},
	}
	for _, tc := range tests {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	err := error(newServerError(404, "Book not found", "NOT_FOUND"))
	if KindOf(err) != KindServer || StatusOf(err) != 404 || CodeOf(err) != "NOT_FOUND" {
		t.Errorf("unexpected helpers for %v", err)
	}
	if !IsNotFound(err) || IsUnauthorized(err) {
		t.Error("unexpected status predicates")
	}
	if err.Error() != "httpclient: server error (HTTP 404, NOT_FOUND): Book not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if KindOf(errors.New("x")) != KindGeneric || StatusOf(errors.New("x")) != 0 {
		t.Error("foreign errors should be generic without status")
	}
	if newTimeoutError(nil).Error() != "httpclient: timeout error: Request timeout" {
		t.Errorf("unexpected timeout message %q", newTimeoutError(nil).Error())
	}
}

func TestTracingAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(jsonHandler(404, `{"message":"nope"}`))
	defer srv.Close()
	c := newTestClient(t, srv, WithMetrics(metrics))

	_, _ = Get[any](c, context.Background(), "/books/1", nil)

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != observability.SpanHTTPRequest {
		t.Fatalf("expected one http span, got %d", len(spans))
	}
	var sawKind bool
	for _, a := range spans[0].Attributes() {
		if string(a.Key) == observability.AttrErrorKind && a.Value.AsString() == "server" {
			sawKind = true
		}
	}
	if !sawKind {
		t.Error("expected error kind attribute on span")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != observability.MetricRequestTotal {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 1 {
		t.Errorf("expected one recorded request, got %d", total)
	}
}
