package idempotency

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps markers in process memory for single-instance deployments.
type MemoryStore struct {
	cache *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose expired markers are swept every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Lock(_ context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.cache.Add(key, StatusProcessing, lockTTL) == nil, nil
}

func (s *MemoryStore) Status(_ context.Context, key string) (string, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return "", nil
	}
	return value.(string), nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, ttl time.Duration) error {
	s.cache.Set(key, StatusCompleted, ttl)
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
