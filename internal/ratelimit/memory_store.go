package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultGCInterval = 5 * time.Minute
	// Timestamps older than this are unreachable by any configured window and
	// safe to collect. Must stay at or above the longest window in use.
	defaultGCMaxAge = time.Hour
)

// MemoryStoreOption customises the in-memory store.
type MemoryStoreOption func(*MemoryStore)

// WithGCInterval overrides the background garbage collection cadence.
func WithGCInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.gcInterval = interval
		}
	}
}

// WithoutGC disables the background garbage collection goroutine, primarily
// for tests that drive pruning explicitly.
func WithoutGC() MemoryStoreOption {
	return func(s *MemoryStore) {
		s.gcDisabled = true
	}
}

// WithGCMaxAge overrides how old a timestamp must be before the background
// sweep collects it.
func WithGCMaxAge(age time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if age > 0 {
			s.gcMaxAge = age
		}
	}
}

// MemoryStore keeps attempt timestamps in a process-local map. State is lost
// on restart; multi-process deployments should use a shared cache store
// instead. Guarded by a mutex because handlers run on preemptively scheduled
// goroutines.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]time.Time

	gcInterval time.Duration
	gcDisabled bool
	gcMaxAge   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an in-memory attempt store. A background goroutine
// garbage-collects stale keys every five minutes.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		data:       make(map[string][]time.Time),
		gcInterval: defaultGCInterval,
		gcMaxAge:   defaultGCMaxAge,
		stop:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(store)
	}

	if !store.gcDisabled {
		go store.gcLoop()
	}

	return store
}

// Record appends an attempt timestamp for the key.
func (s *MemoryStore) Record(key string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append(s.data[key], at)
}

// Window returns the timestamps at or after since, lazily pruning older ones.
func (s *MemoryStore) Window(key string, since time.Time) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts, ok := s.data[key]
	if !ok {
		return nil
	}

	kept := attempts[:0]
	for _, at := range attempts {
		if !at.Before(since) {
			kept = append(kept, at)
		}
	}

	if len(kept) == 0 {
		delete(s.data, key)
		return nil
	}

	s.data[key] = kept

	out := make([]time.Time, len(kept))
	copy(out, kept)
	return out
}

// PruneBefore drops all timestamps older than cutoff across every key.
func (s *MemoryStore) PruneBefore(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, attempts := range s.data {
		kept := attempts[:0]
		for _, at := range attempts {
			if !at.Before(cutoff) {
				kept = append(kept, at)
			}
		}
		if len(kept) == 0 {
			delete(s.data, key)
			continue
		}
		s.data[key] = kept
	}
}

// Close stops the background garbage collection goroutine. Safe to call more
// than once; the store itself stays usable.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) gcLoop() {
	tick := time.NewTicker(s.gcInterval)
	defer tick.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-tick.C:
			s.PruneBefore(time.Now().Add(-s.gcMaxAge))
		}
	}
}
