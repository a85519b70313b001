package regioncache

import (
	"context"
	"errors"
)

// ErrMiss indicates the requested bucket is not cached.
var ErrMiss = errors.New("region cache miss")

// Store persists region buckets and the ordered bucket key index used for
// eviction bookkeeping. Implementations return ErrMiss for absent buckets.
type Store interface {
	Bucket(ctx context.Context, key string) (*Region, error)
	PutBucket(ctx context.Context, region *Region) error
	DeleteBucket(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	PutKeys(ctx context.Context, keys []string) error
}
