package ports

import (
	"context"
	"time"
)

// Cache is a small key-value capability. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
