package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/xerrors"

	"github.com/jengzang/forgeheat/internal/cache"
)

// CacheRepository stores cache entries in the cache_entries table. Expired
// rows are treated as misses and removed lazily
type CacheRepository struct {
	db    *sql.DB
	clock quartz.Clock
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *sql.DB, clock quartz.Clock) *CacheRepository {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &CacheRepository{db: db, clock: clock}
}

// Get returns the live value stored under key
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt int64
	err := r.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, cache.Unavailable(xerrors.Errorf("select %s: %w", key, err))
	}

	if r.clock.Now().UnixMilli() >= expiresAt {
		_, _ = r.db.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE key = ? AND expires_at = ?", key, expiresAt)
		return nil, cache.ErrCacheMiss
	}
	return value, nil
}

// Set upserts value under key, expiring after ttl
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := r.clock.Now().Add(ttl).UnixMilli()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return cache.Unavailable(xerrors.Errorf("upsert %s: %w", key, err))
	}
	return nil
}

// Delete removes key
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return cache.Unavailable(xerrors.Errorf("delete %s: %w", key, err))
	}
	return nil
}

// Purge removes every expired entry and returns how many were removed
func (r *CacheRepository) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at <= ?", r.clock.Now().UnixMilli())
	if err != nil {
		return 0, xerrors.Errorf("purge expired entries: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database
func (r *CacheRepository) Close() error {
	return r.db.Close()
}
