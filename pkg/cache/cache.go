// Package cache stores rendered artifacts keyed by input content and options.
//
// # Backends
//
//   - [FileCache]: hash-sharded files under a directory, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store with a TTL index on expires_at
//   - [NullCache]: stores nothing; caching disabled
//
// All backends implement [Cache]. A miss is reported as ok == false with a
// nil error; errors are reserved for backend failures.
//
// # Keys
//
// A [Keyer] derives keys from the SHA-256 [Hash] of the source image and the
// options that influence the output bytes, so a change to any shading
// parameter produces a different key. [NewScopedKeyer] prefixes keys to share
// one backend between environments.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// ArtifactTTL is how long a rendered artifact stays cached.
	ArtifactTTL = 7 * 24 * time.Hour

	// UploadTTL is how long the server keeps an artifact addressable by ID.
	UploadTTL = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the stored value and ok == true, or ok == false on a miss
	// or an expired entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
