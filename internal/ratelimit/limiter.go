package ratelimit

import (
	"strings"
	"time"
)

// Config parameterises a single guarded action. Callers pass it on every check
// so different call sites can run different budgets against the same limiter.
type Config struct {
	Prefix      string
	MaxAttempts int
	Window      time.Duration
}

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Store persists attempt timestamps for the limiter. Implementations must be
// safe for concurrent use.
type Store interface {
	// Record appends an attempt timestamp for the key.
	Record(key string, at time.Time)
	// Window returns the attempt timestamps for key at or after since,
	// discarding older entries.
	Window(key string, since time.Time) []time.Time
	// PruneBefore drops all timestamps older than cutoff across every key.
	PruneBefore(cutoff time.Time)
}

// Option customises Limiter behaviour.
type Option func(*Limiter)

// WithClock injects a custom clock primarily for testing.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.now = clock
		}
	}
}

// Limiter implements a sliding-window attempt counter over an injected store.
// Check and Record are deliberately split: a caller checks before performing
// the guarded action and records only on success, so failed actions do not
// consume quota.
type Limiter struct {
	store Store
	now   func() time.Time
}

// New constructs a Limiter over the supplied store.
func New(store Store, opts ...Option) *Limiter {
	limiter := &Limiter{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(limiter)
	}

	return limiter
}

// Check reports whether another attempt is currently allowed for the key.
func (l *Limiter) Check(key string, cfg Config) Result {
	if cfg.MaxAttempts <= 0 || cfg.Window <= 0 {
		return Result{Allowed: true, Remaining: cfg.MaxAttempts}
	}

	now := l.now()
	attempts := l.store.Window(compositeKey(cfg.Prefix, key), now.Add(-cfg.Window))

	remaining := cfg.MaxAttempts - len(attempts)
	if remaining < 0 {
		remaining = 0
	}

	result := Result{
		Allowed:   len(attempts) < cfg.MaxAttempts,
		Remaining: remaining,
	}

	if len(attempts) > 0 {
		// The window frees a slot when the oldest recorded attempt ages out.
		result.ResetIn = attempts[0].Add(cfg.Window).Sub(now)
		if result.ResetIn < 0 {
			result.ResetIn = 0
		}
	}

	return result
}

// Record registers a successful attempt for the key.
func (l *Limiter) Record(key, prefix string) {
	l.store.Record(compositeKey(prefix, key), l.now())
}

// RetrySeconds converts a reset duration into the whole seconds a client
// should wait before retrying, rounding up and never below one.
func RetrySeconds(resetIn time.Duration) int {
	if resetIn <= 0 {
		return 1
	}
	seconds := int((resetIn + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func compositeKey(prefix, key string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
