// Package resilience retries transient failures with exponential backoff.
//
// The log sinks use it to redeliver a batch when the collector is briefly
// unavailable:
//
//	cfg := resilience.DefaultRetryConfig()
//	cfg.RetryIf = func(err error) bool { return !isClientError(err) }
//	err := resilience.RetryFunc(ctx, cfg, func() error {
//	    return post(ctx, batch)
//	})
package resilience
