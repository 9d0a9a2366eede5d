package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Get performs a GET with params encoded as the query string and decodes
// the response data into T.
func Get[T any](c *Client, ctx context.Context, endpoint string, params url.Values, opts ...RequestOption) (*APIResponse[T], error) {
	return doTyped[T](c, ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Query: params}, opts)
}

// Post performs a POST with a JSON body and decodes the response data into T.
func Post[T any](c *Client, ctx context.Context, endpoint string, body any, opts ...RequestOption) (*APIResponse[T], error) {
	return doTyped[T](c, ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Body: body}, opts)
}

// Put performs a PUT with a JSON body and decodes the response data into T.
func Put[T any](c *Client, ctx context.Context, endpoint string, body any, opts ...RequestOption) (*APIResponse[T], error) {
	return doTyped[T](c, ctx, Request{Method: http.MethodPut, Endpoint: endpoint, Body: body}, opts)
}

// Delete performs a DELETE without a body and decodes the response data into T.
func Delete[T any](c *Client, ctx context.Context, endpoint string, opts ...RequestOption) (*APIResponse[T], error) {
	return doTyped[T](c, ctx, Request{Method: http.MethodDelete, Endpoint: endpoint}, opts)
}

func doTyped[T any](c *Client, ctx context.Context, req Request, opts []RequestOption) (*APIResponse[T], error) {
	for _, opt := range opts {
		opt(&req)
	}

	raw, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](raw)
}

// Decode converts a raw envelope into a typed one. Missing or null data
// yields the zero value of T.
func Decode[T any](raw *APIResponse[json.RawMessage]) (*APIResponse[T], error) {
	out := &APIResponse[T]{
		Success: raw.Success,
		Message: raw.Message,
		Wrapped: raw.Wrapped,
		Status:  raw.Status,
	}
	if len(raw.Data) == 0 || bytes.Equal(raw.Data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(raw.Data, &out.Data); err != nil {
		return nil, newGenericError(fmt.Errorf("decode response data: %w", err))
	}
	return out, nil
}
