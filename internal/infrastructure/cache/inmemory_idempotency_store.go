package cache

import (
	"context"
	"sync"
	"time"
)

type idempotencyEntry struct {
	response  *StoredResponse // nil while the request is in flight
	expiresAt time.Time
}

// InMemoryIdempotencyStore keeps idempotency state in process memory.
// Suitable for single-instance deployments and tests; expired entries
// are swept by a background goroutine until Close.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]idempotencyEntry
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

// Begin claims the key or returns the stored outcome
func (s *InMemoryIdempotencyStore) Begin(ctx context.Context, key string, ttl time.Duration) (*StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && time.Now().Before(e.expiresAt) {
		if e.response == nil {
			return nil, ErrInFlight
		}
		return e.response, nil
	}

	s.entries[key] = idempotencyEntry{expiresAt: time.Now().Add(ttl)}
	return nil, nil
}

// Complete stores the response for a claimed key
func (s *InMemoryIdempotencyStore) Complete(ctx context.Context, key string, resp *StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{response: resp, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Release frees a claimed key
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
