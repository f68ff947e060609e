// Package httputil downloads input images over HTTP and retries transient
// failures.
//
// # Overview
//
// The render and tune commands accept an http or https URL wherever they
// accept an input file. [Fetcher] performs the GET, bounds the body size,
// and retries transient failures:
//
//	f := httputil.NewFetcher(nil)
//	data, err := f.Fetch(ctx, "https://example.com/portrait.jpg")
//
// # Retries
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; network errors and 5xx responses are
// retryable, other statuses fail at once. The delay doubles after every
// failed attempt and the wait is abandoned when the context is done. The
// redis and mongo caches use the same helper while connecting.
//
// # Errors
//
// Every failure returned by [Fetcher.Fetch] carries the FETCH_FAILED code,
// except a 404 which carries NOT_FOUND.
package httputil
