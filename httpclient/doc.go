// Package httpclient is the JSON client of the bookstore API.
//
// Every call runs under its own deadline, carries the merged header set and
// the bearer token from the session store, and ends in exactly one of two
// shapes: an APIResponse envelope on 2xx, or an *Error tagged with one of
// four kinds (timeout, network, server, generic).
//
//	client, err := httpclient.New(httpclient.Config{BaseURL: "https://api.example/api"},
//	    httpclient.WithSessionStore(store))
//
//	books, err := httpclient.Get[[]Book](client, ctx, "/books", url.Values{"category": {"programming"}})
//	if httpclient.IsTimeout(err) { ... }
//
// The client never retries. Callers own retry policy; IsRetryable reports
// which failures are worth another attempt.
package httpclient
