package httpclient

import (
	"context"
	"net/http"

	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/session"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

func bearer(token string) string { return "Bearer " + token }

// SetAuthToken adds a bearer token to the default header set. It affects
// calls that start after it returns.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(headerAuthorization, bearer(token))
}

// RemoveAuthToken removes the bearer token from the default header set. It
// affects calls that start after it returns.
func (c *Client) RemoveAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(headerAuthorization)
}

// defaultHeaders returns a copy of the default header set.
func (c *Client) defaultHeaders() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// sessionToken reads the persisted token. A store failure is logged and
// treated as no token.
func (c *Client) sessionToken(ctx context.Context) string {
	if c.store == nil {
		return ""
	}
	token, ok, err := c.store.Get(ctx, session.KeyAuthToken)
	if err != nil {
		c.log.WithContext(ctx).Warn("session store read failed, sending request without token",
			logger.ErrorFields("session_token", err))
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// buildHeaders merges, lowest to highest priority: the default set (built-in
// headers, configured headers, SetAuthToken), per-request overrides, and the
// session token.
func (c *Client) buildHeaders(ctx context.Context, overrides map[string]string) http.Header {
	h := c.defaultHeaders()
	for k, v := range overrides {
		h.Set(k, v)
	}
	if token := c.sessionToken(ctx); token != "" {
		h.Set(headerAuthorization, bearer(token))
	}
	return h
}
