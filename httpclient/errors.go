package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags a failure. Exactly one kind applies to each failed call.
type Kind int

const (
	// KindGeneric covers everything else, such as a malformed 2xx body.
	KindGeneric Kind = iota
	// KindTimeout means the call's deadline fired before it completed.
	KindTimeout
	// KindNetwork means the server could not be reached at all.
	KindNetwork
	// KindServer means the server answered with a non-2xx status.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "generic"
	}
}

// Well-known codes and messages.
const (
	CodeTimeout = "TIMEOUT"
	CodeNetwork = "NETWORK_ERROR"

	MessageTimeout       = "Request timeout"
	MessageNetwork       = "Network error. Please check your connection."
	MessageRequestFailed = "Request failed"
)

// Error is the failure of an API call.
type Error struct {
	Kind Kind
	// Message is always present and human-readable.
	Message string
	// Status is the HTTP status; set only for KindServer.
	Status int
	// Code is TIMEOUT, NETWORK_ERROR or the server-supplied code, if any.
	Code string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindServer && e.Code != "":
		return fmt.Sprintf("httpclient: %s error (HTTP %d, %s): %s", e.Kind, e.Status, e.Code, e.Message)
	case e.Kind == KindServer:
		return fmt.Sprintf("httpclient: %s error (HTTP %d): %s", e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("httpclient: %s error: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newTimeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Code: CodeTimeout, Message: MessageTimeout, Err: err}
}

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Code: CodeNetwork, Message: MessageNetwork, Err: err}
}

func newServerError(status int, message, code string) *Error {
	if message == "" {
		message = MessageRequestFailed
	}
	return &Error{Kind: KindServer, Status: status, Message: message, Code: code}
}

func newGenericError(err error) *Error {
	return &Error{Kind: KindGeneric, Message: err.Error(), Err: err}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the kind of err. Errors that did not come from the client
// are generic.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindGeneric
}

// StatusOf returns the HTTP status of a server error, or 0.
func StatusOf(err error) int {
	if e, ok := AsError(err); ok {
		return e.Status
	}
	return 0
}

// CodeOf returns the error code, or "".
func CodeOf(err error) string {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

func isKind(err error, k Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}

// IsTimeout reports whether err is a client deadline failure.
func IsTimeout(err error) bool { return isKind(err, KindTimeout) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsServer reports whether err is a non-2xx response.
func IsServer(err error) bool { return isKind(err, KindServer) }

// IsGeneric reports whether err is a client error of the generic kind.
func IsGeneric(err error) bool { return isKind(err, KindGeneric) }

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool { return IsServer(err) && StatusOf(err) == http.StatusUnauthorized }

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return IsServer(err) && StatusOf(err) == http.StatusNotFound }

// IsRetryable reports whether another attempt may succeed: timeouts, network
// failures, 408, 429 and 5xx responses.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindServer:
		return e.Status == http.StatusRequestTimeout ||
			e.Status == http.StatusTooManyRequests ||
			e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}
