package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, clock *time.Time) *Limiter {
	t.Helper()

	store := NewMemoryStore(WithoutGC())
	return New(store, WithClock(func() time.Time { return *clock }))
}

func TestLimiterBlocksAfterMaxAttempts(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, &current)

	cfg := Config{Prefix: "invite", MaxAttempts: 3, Window: time.Second}

	for i := 0; i < 3; i++ {
		limiter.Record("user-1", "invite")
	}

	result := limiter.Check("user-1", cfg)
	require.False(t, result.Allowed)
	require.Equal(t, 0, result.Remaining)
	require.Greater(t, result.ResetIn, time.Duration(0))
}

func TestLimiterRecoversAfterWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, &current)

	cfg := Config{Prefix: "invite", MaxAttempts: 3, Window: time.Second}

	for i := 0; i < 3; i++ {
		limiter.Record("user-1", "invite")
	}
	require.False(t, limiter.Check("user-1", cfg).Allowed)

	current = current.Add(1001 * time.Millisecond)

	result := limiter.Check("user-1", cfg)
	require.True(t, result.Allowed)
	require.Equal(t, 3, result.Remaining)
}

func TestLimiterCheckDoesNotConsumeQuota(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, &current)

	cfg := Config{Prefix: "accept", MaxAttempts: 2, Window: time.Minute}

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Check("user-1", cfg).Allowed)
	}

	limiter.Record("user-1", "accept")
	result := limiter.Check("user-1", cfg)
	require.True(t, result.Allowed)
	require.Equal(t, 1, result.Remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, &current)

	cfg := Config{Prefix: "invite", MaxAttempts: 1, Window: time.Minute}

	limiter.Record("user-1", "invite")
	require.False(t, limiter.Check("user-1", cfg).Allowed)
	require.True(t, limiter.Check("user-2", cfg).Allowed)

	// Same key under a different prefix keeps its own budget.
	require.True(t, limiter.Check("user-1", Config{Prefix: "accept", MaxAttempts: 1, Window: time.Minute}).Allowed)
}

func TestLimiterZeroConfigAllows(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, &current)

	result := limiter.Check("user-1", Config{})
	require.True(t, result.Allowed)
}

func TestMemoryStorePruneBefore(t *testing.T) {
	store := NewMemoryStore(WithoutGC())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.Record("a", base)
	store.Record("a", base.Add(10*time.Minute))
	store.Record("b", base)

	store.PruneBefore(base.Add(5 * time.Minute))

	require.Len(t, store.Window("a", base), 1)
	require.Empty(t, store.Window("b", base))
}

func TestMemoryStoreCloseStopsGC(t *testing.T) {
	store := NewMemoryStore(WithGCInterval(time.Millisecond))
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.Record("a", base)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	// The store keeps serving reads and writes after Close.
	store.Record("a", base.Add(time.Second))
	require.Len(t, store.Window("a", base), 2)
}

func TestRetrySeconds(t *testing.T) {
	require.Equal(t, 1, RetrySeconds(0))
	require.Equal(t, 1, RetrySeconds(200*time.Millisecond))
	require.Equal(t, 2, RetrySeconds(1100*time.Millisecond))
	require.Equal(t, 30, RetrySeconds(30*time.Second))
}
