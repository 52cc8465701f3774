package cache

import (
	"context"
	"time"
)

// Store is a shared windowed counter used by the HTTP rate limiter. The
// database-backed implementation is the default; a Redis-backed one covers
// multi-process deployments.
type Store interface {
	// IncrementWithTTL bumps the counter for key, starting a new window of
	// the given length when none is active, and reports the count together
	// with the time left in the window.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
