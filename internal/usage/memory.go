package usage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback when Redis is not configured. The
// mutex gives the same atomicity guarantee within a single process.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]memoryCounter

	// now is swappable for tests
	now func() time.Time
}

type memoryCounter struct {
	count     int
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]memoryCounter),
		now:      time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	key := dayKey(userID, now)
	c := s.counters[key]
	c.count++
	c.expiresAt = now.Add(counterTTL)
	s.counters[key] = c
	return c.count, nil
}

func (s *MemoryStore) Peek(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[dayKey(userID, now)]
	if !ok || now.After(c.expiresAt) {
		return 0, nil
	}
	return c.count, nil
}

func (s *MemoryStore) Decrement(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := dayKey(userID, now)
	c, ok := s.counters[key]
	if !ok || c.count == 0 {
		return nil
	}
	c.count--
	s.counters[key] = c
	return nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for key, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, key)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
