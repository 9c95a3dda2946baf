package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/xerrors"
)

// MemoryStore is a process-local store for single-instance deployments
type MemoryStore struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemoryStore sizes the cache by total bytes held
func NewMemoryStore(maxBytes int64) (*MemoryStore, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		// Docs suggest 10x the expected number of keys; assume ~1KiB entries
		NumCounters: max(maxBytes/1024*10, 1000),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, xerrors.Errorf("create memory cache: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return raw, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.cache.SetWithTTL(key, value, int64(len(value)), ttl) {
		return Unavailable(xerrors.Errorf("memory set %s dropped", key))
	}
	// Make the write visible to the next Get
	s.cache.Wait()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Del(key)
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Close()
	return nil
}
