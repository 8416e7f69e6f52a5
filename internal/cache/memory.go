package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

const defaultEvictInterval = 30 * time.Second

var errMemoryStoreClosed = errors.New("cache: memory store closed")

// MemoryStore is a process-local Store with lazy expiry on read and a
// background eviction loop.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]memEntry
	now      Clock
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
	closed   bool
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(clock Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithEvictInterval sets how often expired entries are swept. Zero disables the sweeper.
func WithEvictInterval(interval time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.interval = interval
	}
}

// NewMemoryStore constructs a MemoryStore. Call Close to stop the sweeper.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]memEntry),
		now:      time.Now,
		interval: defaultEvictInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval > 0 {
		go s.evictLoop()
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, errMemoryStoreClosed
	}

	entry, ok := s.entries[key]
	if !ok || entry.expired(s.now()) {
		return nil, false, nil
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errMemoryStoreClosed
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = memEntry{value: stored, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// IncrementWithTTL bumps a counter; the window starts on the first increment.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, 0, errMemoryStoreClosed
	}

	now := s.now()
	entry, ok := s.entries[key]
	var count int64
	if ok && !entry.expired(now) {
		count, _ = strconv.ParseInt(string(entry.value), 10, 64)
	} else {
		entry = memEntry{expiresAt: now.Add(window)}
	}
	count++
	entry.value = []byte(strconv.FormatInt(count, 10))
	s.entries[key] = entry

	return count, entry.expiresAt.Sub(now), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errMemoryStoreClosed
	}
	return nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the sweeper and drops all entries.
func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		s.closed = true
		s.entries = nil
		s.mu.Unlock()
	})
	return nil
}

// PurgeExpired removes expired entries and returns how many were dropped.
func (s *MemoryStore) PurgeExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) evictLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_, _ = s.PurgeExpired(context.Background())
		}
	}
}
