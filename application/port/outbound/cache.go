package outbound

import (
	"context"
	"time"
)

// Cache is a small TTL cache used for dashboard aggregates. Misses return
// (false, nil); storage errors degrade to a miss at the call site.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
