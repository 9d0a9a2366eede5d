package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Request describes one API call.
type Request struct {
	// Method is the HTTP method.
	Method string
	// Endpoint is appended to BaseURL. It is already parameter-substituted
	// and may carry a query string.
	Endpoint string
	// Query is encoded and appended to Endpoint.
	Query url.Values
	// Headers override the client defaults for this call.
	Headers map[string]string
	// Body is JSON-encoded unless it is nil, []byte or json.RawMessage.
	Body any
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithHeader sets a per-request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// APIResponse is the envelope of a successful call.
type APIResponse[T any] struct {
	// Success is always true; failures are returned as *Error.
	Success bool
	// Data is the body's data field, or the whole body when the body has none.
	Data T
	// Message is the body's message field, if any.
	Message string
	// Wrapped reports whether the body carried a data field.
	Wrapped bool
	// Status is the HTTP status code.
	Status int
}

// target returns the endpoint with the encoded query appended.
func (r Request) target() string {
	if len(r.Query) == 0 {
		return r.Endpoint
	}
	sep := "?"
	if strings.Contains(r.Endpoint, "?") {
		sep = "&"
	}
	return r.Endpoint + sep + r.Query.Encode()
}

func encodeBody(body any) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// envelope holds the recognized top-level fields of a response body.
type envelope struct {
	fields  map[string]json.RawMessage
	message string
	code    string
}

// parseBody decodes body as JSON. A body that is valid JSON but not an
// object yields an envelope without fields. An empty body is valid.
func parseBody(body []byte) (envelope, error) {
	var env envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return env, nil
	}
	if !json.Valid(trimmed) {
		return env, fmt.Errorf("invalid JSON response body")
	}
	if trimmed[0] != '{' {
		return env, nil
	}
	if err := json.Unmarshal(trimmed, &env.fields); err != nil {
		return env, fmt.Errorf("decode response body: %w", err)
	}
	env.message = scalarString(env.fields["message"])
	env.code = scalarString(env.fields["code"])
	return env, nil
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// toResponse builds the success envelope: the data field when present,
// otherwise the whole body.
func (env envelope) toResponse(status int, body []byte) *APIResponse[json.RawMessage] {
	resp := &APIResponse[json.RawMessage]{Success: true, Message: env.message, Status: status}
	if data, ok := env.fields["data"]; ok {
		resp.Data = data
		resp.Wrapped = true
		return resp
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		resp.Data = json.RawMessage(trimmed)
	}
	return resp
}
