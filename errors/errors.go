package errors

import "fmt"

// AppError is a failure the mock API reports to its clients.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Retryable reports whether the failure is transient.
func (e *AppError) Retryable() bool { return IsRetryableCode(e.Code) }

// WithCause records the underlying error. It is logged, never sent.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail adds a key to the details sent with the error.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// New creates an error served with the status of its code. An empty message
// takes the code's default.
func New(code ErrorCode, message string) *AppError {
	info := lookup(code)
	if message == "" {
		message = info.message
	}
	return &AppError{Code: code, Message: message, HTTPStatus: info.status}
}

// NotFound reports a missing resource, e.g. NotFound("book", "42").
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource)).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

func AlreadyExists(resource string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("A %s with these details already exists.", resource)).
		WithDetail("resource", resource)
}

func Conflict(reason string) *AppError { return New(ErrCodeConflict, reason) }

// InvalidInput reports one bad field.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports a request that failed validation as a whole.
func Validation(message string) *AppError { return New(ErrCodeInvalidInput, message) }

func Unauthorized(reason string) *AppError { return New(ErrCodeUnauthorized, reason) }

func Forbidden(reason string) *AppError { return New(ErrCodeForbidden, reason) }

func InvalidCredentials() *AppError { return New(ErrCodeInvalidCredentials, "") }

func InvalidToken() *AppError { return New(ErrCodeInvalidToken, "") }

func RateLimited() *AppError { return New(ErrCodeRateLimited, "") }

// Internal hides cause from the client behind a generic message.
func Internal(cause error) *AppError { return New(ErrCodeInternal, "").WithCause(cause) }
