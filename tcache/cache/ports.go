package cache

import "context"

// LocalCache provides optional in-process memoization for positive
// lookups. The remote store stays the source of truth.
type LocalCache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
