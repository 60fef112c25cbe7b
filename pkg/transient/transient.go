// Package transient stores short-lived values with a TTL and supports an
// atomic read-and-delete used for single-use tokens.
package transient

import (
	"context"
	"time"
)

type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Take returns the value and deletes it; of two concurrent callers at most one sees ok.
	Take(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}
