package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bookstore/auth/authctx"
	"github.com/kbukum/bookstore/auth/jwt"
	"github.com/kbukum/bookstore/authz"
	apperrors "github.com/kbukum/bookstore/errors"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/server/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(logger.NewNop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if rr := serve(r, httptest.NewRequest("GET", "/", http.NoBody)); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(logger.NewNop()))
	r.GET("/test", func(*gin.Context) { panic("test panic") })

	rr := serve(r, httptest.NewRequest("GET", "/test", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := decodeError(t, rr)
	if body.Success || body.Code != apperrors.ErrCodeInternal {
		t.Fatalf("unexpected body %+v", body)
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		if logger.RequestIDFromContext(c.Request.Context()) == "" {
			t.Error("expected request id in context")
		}
		c.Status(http.StatusOK)
	})

	rr := serve(r, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected X-Request-ID in response headers")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "existing-id")
	rr := serve(r, req)

	if got := rr.Header().Get(middleware.HeaderRequestID); got != "existing-id" {
		t.Fatalf("expected existing-id, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000", "https://*.bookstore.dev"},
		AllowedMethods: []string{"GET", "POST"},
		MaxAgeSeconds:  600,
	}
	r := gin.New()
	r.Use(middleware.CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
		wantMaxAge string
	}{
		{"allowed origin", "GET", "http://localhost:3000", http.StatusOK, "http://localhost:3000", ""},
		{"unknown origin", "GET", "http://evil.example", http.StatusOK, "", ""},
		{"wildcard subdomain", "GET", "https://shop.bookstore.dev", http.StatusOK, "https://shop.bookstore.dev", ""},
		{"wildcard needs a subdomain", "GET", "https://bookstore.dev", http.StatusOK, "", ""},
		{"wildcard scheme must match", "GET", "http://shop.bookstore.dev", http.StatusOK, "", ""},
		{"suffix is not a subdomain", "GET", "https://evilbookstore.dev", http.StatusOK, "", ""},
		{"preflight", "OPTIONS", "http://localhost:3000", http.StatusNoContent, "http://localhost:3000", "600"},
		{"preflight unknown origin", "OPTIONS", "http://evil.example", http.StatusNoContent, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", http.NoBody)
			req.Header.Set("Origin", tc.origin)
			rr := serve(r, req)
			if rr.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Errorf("expected origin %q, got %q", tc.wantOrigin, got)
			}
			if got := rr.Header().Get("Access-Control-Max-Age"); got != tc.wantMaxAge {
				t.Errorf("expected max age %q, got %q", tc.wantMaxAge, got)
			}
			if rr.Header().Get("Vary") != "Origin" {
				t.Error("expected Vary: Origin")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(middleware.BodySizeLimit("16B"))
	r.POST("/", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	if rr := serve(r, httptest.NewRequest("POST", "/", strings.NewReader(`{"a":1}`))); rr.Code != http.StatusOK {
		t.Errorf("small body: expected 200, got %d", rr.Code)
	}
	big := `{"a":"` + strings.Repeat("x", 64) + `"}`
	if rr := serve(r, httptest.NewRequest("POST", "/", strings.NewReader(big))); rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body: expected 413, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Auth and RequirePermission
// ---------------------------------------------------------------------------

var errBadToken = errors.New("bad token")

func parseStub(token string) (*jwt.Claims, error) {
	switch token {
	case "admin-token":
		return jwt.NewClaims("u1", "root", authz.RoleAdmin), nil
	case "user-token":
		return jwt.NewClaims("u2", "ada", authz.RoleUser), nil
	}
	return nil, errBadToken
}

func TestAuthAndPermission(t *testing.T) {
	r := gin.New()
	r.POST("/books", middleware.Auth(parseStub), middleware.RequirePermission(authz.DefaultPolicy(), "book:create"),
		func(c *gin.Context) {
			claims, err := authctx.GetOrError(c.Request.Context())
			if err != nil {
				t.Errorf("expected claims in context: %v", err)
			}
			c.String(http.StatusCreated, claims.Username)
		})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{"missing header", "", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized, apperrors.ErrCodeInvalidToken},
		{"lacking permission", "Bearer user-token", http.StatusForbidden, apperrors.ErrCodeForbidden},
		{"admin", "bearer admin-token", http.StatusCreated, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/books", http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := serve(r, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantCode != "" {
				if body := decodeError(t, rr); body.Code != tc.wantCode {
					t.Errorf("expected code %s, got %s", tc.wantCode, body.Code)
				}
			}
		})
	}
}

func TestRequirePermission_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/", middleware.RequirePermission(authz.DefaultPolicy(), "book:read"), func(c *gin.Context) { c.Status(http.StatusOK) })
	if rr := serve(r, httptest.NewRequest("GET", "/", http.NoBody)); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit_PerKey(t *testing.T) {
	r := gin.New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Requests: 2,
		KeyFunc:  func(c *gin.Context) string { return c.GetHeader("X-Client") },
		Now:      func() time.Time { return now },
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/", http.NoBody)
		req.Header.Set("X-Client", client)
		return serve(r, req)
	}

	if rr := call("a"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	now = now.Add(20 * time.Second)
	if rr := call("a"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr := call("a")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "40" {
		t.Errorf("expected Retry-After 40 for the oldest hit, got %q", got)
	}
	if body := decodeError(t, rr); body.Code != apperrors.ErrCodeRateLimited {
		t.Errorf("expected RATE_LIMITED, got %s", body.Code)
	}
	if rr := call("b"); rr.Code != http.StatusOK {
		t.Errorf("other keys are independent, got %d", rr.Code)
	}

	now = now.Add(41 * time.Second)
	if rr := call("a"); rr.Code != http.StatusOK {
		t.Errorf("expected the oldest hit to leave the window, got %d", rr.Code)
	}
	if rr := call("a"); rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected the second hit to still count, got %d", rr.Code)
	}
}

func TestUserBasedKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", http.NoBody)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	if got := middleware.UserBasedKey(c); got != "10.0.0.1" {
		t.Errorf("expected IP fallback, got %q", got)
	}
	c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), jwt.NewClaims("u9", "x", authz.RoleUser)))
	if got := middleware.UserBasedKey(c); got != "u9" {
		t.Errorf("expected user id, got %q", got)
	}
}
