package repository

import (
	"context"
	"errors"
	"time"

	"lldpinventory/internal/inventory"
)

// ErrCacheMiss is returned when no usable cache entry exists for a key
var ErrCacheMiss = errors.New("cache miss")

// CacheEntry is a stored inventory snapshot
type CacheEntry struct {
	Key       string
	RunID     string
	Snapshot  inventory.Snapshot
	CreatedAt time.Time
}

// Cache persists inventory snapshots between runs
type Cache interface {
	// Get returns the entry for key. Entries older than maxAge are treated
	// as missing; a zero maxAge disables expiry.
	Get(ctx context.Context, key string, maxAge time.Duration) (*CacheEntry, error)

	// Put stores an entry, replacing any previous one for the same key
	Put(ctx context.Context, entry CacheEntry) error

	// Delete removes the entry for key
	Delete(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}
