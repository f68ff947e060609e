package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sineshade/pkg/buildinfo"
	"github.com/matzehuels/sineshade/pkg/errors"
)

const (
	// DefaultMaxBytes bounds a downloaded image.
	DefaultMaxBytes = 32 << 20

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// IsURL reports whether s names an http or https resource rather than a file.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// Fetcher downloads images with bounded size and retries.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
	MaxBytes int64
	Logger   *log.Logger
}

// NewFetcher returns a Fetcher with the default policy. A nil client uses a
// client with [DefaultTimeout].
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{
		Client:   client,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
		MaxBytes: DefaultMaxBytes,
		Logger:   log.Default(),
	}
}

// Fetch downloads rawURL and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errors.New(errors.ErrCodeFetch, "not an http(s) URL: %q", rawURL)
	}

	var data []byte
	attempt := 0
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		attempt++
		if attempt > 1 {
			f.Logger.Debug("retrying download", "url", rawURL, "attempt", attempt)
		}
		var err error
		data, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "download %s", rawURL)
	}
	f.Logger.Debug("downloaded image", "url", rawURL, "bytes", len(data))
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "sineshade/"+buildinfo.Get().Version)
	req.Header.Set("Accept", "image/*")

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeFetch, "%s exceeds %d bytes", rawURL, limit)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "%s returned an empty body", rawURL)
	}
	return data, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", rawURL)
	case code >= 500 || code == http.StatusTooManyRequests:
		return &RetryableError{Err: fmt.Errorf("status %d", code)}
	default:
		return errors.New(errors.ErrCodeFetch, "%s: status %d", rawURL, code)
	}
}
