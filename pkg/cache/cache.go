// Package cache provides the key/value caching used by layoutfix: image
// analysis results, corrected layouts and per-brand archetype history.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server and batch workers
//   - [MemoryCache]: bounded in-process LRU
//   - [NullCache]: disables caching
//
// [Tiered] stacks a fast cache in front of a slower one.
//
// Keys are built by a [Keyer] so every component agrees on the key layout.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs.
const (
	// TTLAnalysis matches the image analysis provider's own cache window.
	TTLAnalysis = time.Hour
	// TTLCorrection applies to corrected layouts keyed by draft content.
	TTLCorrection = 7 * 24 * time.Hour
	// TTLHistory is how long recently used archetypes are remembered.
	TTLHistory = 24 * time.Hour
)

// NullCache stores nothing. It backs --no-cache runs and critique-only calls.
type NullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
