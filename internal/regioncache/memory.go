package regioncache

import (
	"context"
	"slices"

	"github.com/strataworks/lithos/pkg/cache"
)

// MemoryStore is an in-process Store backed by the generic expiring map.
// It serves tests and deployments running without a database; expiry and
// eviction policy stay with the Cache, so the underlying map is unbounded.
type MemoryStore struct {
	buckets *cache.Expiring[string, *Region]
	keys    []string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: cache.New[string, *Region](0, 0),
	}
}

func (s *MemoryStore) Bucket(_ context.Context, key string) (*Region, error) {
	region, ok := s.buckets.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return region, nil
}

func (s *MemoryStore) PutBucket(_ context.Context, region *Region) error {
	s.buckets.Put(region.Geohash, region)
	return nil
}

func (s *MemoryStore) DeleteBucket(_ context.Context, key string) error {
	s.buckets.Delete(key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	return slices.Clone(s.keys), nil
}

func (s *MemoryStore) PutKeys(_ context.Context, keys []string) error {
	s.keys = slices.Clone(keys)
	return nil
}
