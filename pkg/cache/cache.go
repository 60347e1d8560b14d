// Package cache stores normalized contact matrices and detection results
// between runs.
//
// Normalizing a chromosome is the most expensive step of a run, and its
// output depends only on the raw counts, the centromere span and the zero
// threshold. [Keyer] turns those inputs into a content-addressed key so a
// [Cache] entry is reused exactly when the inputs are unchanged.
//
// Backends:
//   - [FileCache]: one file per entry under the user cache directory (CLI).
//   - [RedisCache]: shared cache for the HTTP server and multi-host runs.
//   - [NullCache]: caching disabled.
//
// Wrap any backend with [Instrument] to emit observability cache events.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiration.
type Cache interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// MatrixTTL is how long normalized matrices are kept.
	MatrixTTL = 30 * 24 * time.Hour

	// UnitTTL is how long per-unit detection results are kept.
	UnitTTL = 7 * 24 * time.Hour
)
