// Package cache implements the cache-aside layer in front of the aggregator
// and the stores it can run on.
package cache

import (
	"context"
	"time"

	"golang.org/x/xerrors"
)

var (
	// ErrCacheMiss is returned by Store.Get when the key is absent or expired
	ErrCacheMiss = xerrors.New("cache miss")
	// ErrCacheUnavailable wraps every store failure other than a miss
	ErrCacheUnavailable = xerrors.New("cache unavailable")
)

// unavailableError carries a store failure while still matching
// ErrCacheUnavailable under xerrors.Is
type unavailableError struct {
	err error
}

func (e *unavailableError) Error() string { return ErrCacheUnavailable.Error() + ": " + e.err.Error() }

func (e *unavailableError) Unwrap() error { return e.err }

func (*unavailableError) Is(target error) bool { return target == ErrCacheUnavailable }

// Unavailable marks err as a store failure. The result matches both
// ErrCacheUnavailable and err
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return &unavailableError{err: err}
}

const (
	// KeyPrefix is prepended to the user id to build a cache key
	KeyPrefix = "cache:"
	// DefaultTTL is how long a merged history stays servable
	DefaultTTL = time.Hour
)

// Key returns the cache key for a user id
func Key(uid string) string {
	return KeyPrefix + uid
}

// Store is a byte-oriented key/value store with per-entry expiry
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NoopStore never holds anything. It backs CACHE_BACKEND=none
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

func (NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopStore) Delete(context.Context, string) error { return nil }

func (NoopStore) Close() error { return nil }
