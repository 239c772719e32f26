package cache

import (
	"context"
	"time"
)

// Cache stores derived market data (daily series, spot prices) between
// refreshes so repeated views don't re-fetch from the providers. Values are
// marshalled as JSON; a miss is reported through the bool, not an error.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
