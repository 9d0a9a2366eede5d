package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    ErrorCode
		status  int
		message string
	}{
		{"not found", NotFound("book", "1"), ErrCodeNotFound, http.StatusNotFound, "The requested book was not found."},
		{"already exists", AlreadyExists("user"), ErrCodeAlreadyExists, http.StatusConflict, "A user with these details already exists."},
		{"conflict", Conflict("Order is already cancelled."), ErrCodeConflict, http.StatusConflict, "Order is already cancelled."},
		{"invalid input", InvalidInput("page", "must be an integer"), ErrCodeInvalidInput, http.StatusBadRequest, "Invalid input: must be an integer"},
		{"validation", Validation("Invalid JSON body"), ErrCodeInvalidInput, http.StatusBadRequest, "Invalid JSON body"},
		{"unauthorized default", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized, "Authentication required."},
		{"forbidden", Forbidden("Admins only."), ErrCodeForbidden, http.StatusForbidden, "Admins only."},
		{"invalid credentials", InvalidCredentials(), ErrCodeInvalidCredentials, http.StatusUnauthorized, "Invalid username or password."},
		{"invalid token", InvalidToken(), ErrCodeInvalidToken, http.StatusUnauthorized, "Invalid authentication token. Please log in again."},
		{"rate limited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests, "Too many requests. Please try again later."},
		{"internal", Internal(stderrors.New("db down")), ErrCodeInternal, http.StatusInternalServerError, "An unexpected error occurred. Please try again or contact support."},
		{"unknown code", New("TEAPOT", "short and stout"), "TEAPOT", http.StatusInternalServerError, "short and stout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code || tc.err.HTTPStatus != tc.status || tc.err.Message != tc.message {
				t.Errorf("got %s %d %q, want %s %d %q", tc.err.Code, tc.err.HTTPStatus, tc.err.Message, tc.code, tc.status, tc.message)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	if _, ok := NotFound("book", "").Details["id"]; ok {
		t.Error("expected no id detail for an empty id")
	}
	err := NotFound("book", "42")
	if err.Details["id"] != "42" || err.Details["resource"] != "book" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if d := InvalidInput("", "bad").Details; d != nil {
		t.Errorf("expected no details without a field, got %v", d)
	}
	err = Conflict("Insufficient stock.").WithDetail("bookId", "1").WithDetail("available", 2)
	if len(err.Details) != 2 {
		t.Errorf("expected 2 details, got %v", err.Details)
	}
}

func TestRetryable(t *testing.T) {
	tests := map[ErrorCode]bool{
		ErrCodeRateLimited:  true,
		ErrCodeUnavailable:  true,
		ErrCodeNotFound:     false,
		ErrCodeInvalidToken: false,
		"UNKNOWN":           false,
	}
	for code, want := range tests {
		if got := New(code, "").Retryable(); got != want {
			t.Errorf("%s: Retryable() = %v, want %v", code, got, want)
		}
	}
	if StatusOf(ErrCodeUnavailable) != http.StatusServiceUnavailable {
		t.Errorf("unexpected status for %s", ErrCodeUnavailable)
	}
}

func TestCauseChain(t *testing.T) {
	root := stderrors.New("connection refused")
	err := Internal(root)
	if !stderrors.Is(err, root) {
		t.Error("expected errors.Is to find the cause")
	}
	if got := err.Error(); got != "INTERNAL_ERROR: An unexpected error occurred. Please try again or contact support.: connection refused" {
		t.Errorf("unexpected Error() %q", got)
	}
	if got := Conflict("busy").Error(); got != "CONFLICT: busy" {
		t.Errorf("unexpected Error() %q", got)
	}
}

func TestToResponse(t *testing.T) {
	b, err := json.Marshal(NotFound("book", "9").ToResponse())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"success":false,"message":"The requested book was not found.","code":"NOT_FOUND","details":{"id":"9","resource":"book"}}`
	if string(b) != want {
		t.Errorf("got  %s\nwant %s", b, want)
	}

	b, _ = json.Marshal(Internal(stderrors.New("secret dsn")).ToResponse())
	if string(b) != `{"success":false,"message":"An unexpected error occurred. Please try again or contact support.","code":"INTERNAL_ERROR"}` {
		t.Errorf("cause leaked or envelope changed: %s", b)
	}
}

func TestAsAppErrorAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("reserve: %w", Conflict("Insufficient stock."))
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeConflict {
		t.Fatalf("AsAppError() = %v, %v", appErr, ok)
	}
	if !HasCode(wrapped, ErrCodeConflict) || HasCode(wrapped, ErrCodeNotFound) {
		t.Error("HasCode mismatch")
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("expected plain error not to be an AppError")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("expected nil to have no code")
	}
}
