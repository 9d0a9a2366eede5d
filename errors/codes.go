package errors

import "net/http"

// ErrorCode is the machine-readable code sent in the failure envelope.
type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnavailable        ErrorCode = "SERVICE_UNAVAILABLE"
)

type codeInfo struct {
	status    int
	message   string
	retryable bool
}

var codes = map[ErrorCode]codeInfo{
	ErrCodeInvalidInput:       {http.StatusBadRequest, "The request is invalid.", false},
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "Authentication required.", false},
	ErrCodeInvalidCredentials: {http.StatusUnauthorized, "Invalid username or password.", false},
	ErrCodeInvalidToken:       {http.StatusUnauthorized, "Invalid authentication token. Please log in again.", false},
	ErrCodeForbidden:          {http.StatusForbidden, "You don't have permission to perform this action.", false},
	ErrCodeNotFound:           {http.StatusNotFound, "The requested resource was not found.", false},
	ErrCodeAlreadyExists:      {http.StatusConflict, "The resource already exists.", false},
	ErrCodeConflict:           {http.StatusConflict, "The request conflicts with the current state.", false},
	ErrCodeRateLimited:        {http.StatusTooManyRequests, "Too many requests. Please try again later.", true},
	ErrCodeInternal:           {http.StatusInternalServerError, "An unexpected error occurred. Please try again or contact support.", false},
	ErrCodeUnavailable:        {http.StatusServiceUnavailable, "The service is temporarily unavailable.", true},
}

func lookup(code ErrorCode) codeInfo {
	if info, ok := codes[code]; ok {
		return info
	}
	return codes[ErrCodeInternal]
}

// StatusOf returns the HTTP status a code is served with. Unknown codes map
// to 500.
func StatusOf(code ErrorCode) int { return lookup(code).status }

// IsRetryableCode reports whether a request failing with code may succeed
// when repeated unchanged.
func IsRetryableCode(code ErrorCode) bool { return lookup(code).retryable }
