// Package resilience retries failed operations with exponential backoff.
//
// The API client never retries on its own. Callers that want a retry policy
// wrap their calls:
//
//	resp, err := resilience.Retry(ctx, cfg, func() (*httpclient.APIResponse[api.BookList], error) {
//	    return svc.GetAllBooks(ctx, params)
//	})
//
// with cfg.RetryIf set to httpclient.IsRetryable.
package resilience
