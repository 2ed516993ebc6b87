package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// AcquireLock sets key to token if absent, returns false if someone else holds it
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// ReleaseLock deletes key only if it still holds token
	ReleaseLock(ctx context.Context, key, token string) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency forgets a key so the request can be retried
	ClearIdempotency(ctx context.Context, key string) error
}
