package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/sineshade/pkg/httputil"
)

// Sentinel errors for caching operations.
var (
	// ErrUnavailable is returned when a network backend cannot be reached.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Retryable marks err as a transient backend failure.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &httputil.RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	return httputil.IsRetryable(err)
}

// retryDelay is the first backoff interval; tests shorten it.
var retryDelay = time.Second

// connectAttempts bounds the pings made while opening a network backend.
const connectAttempts = 3

// RetryWithBackoff retries fn with exponential backoff. Only errors wrapped
// with Retryable trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, connectAttempts, retryDelay, fn)
}
