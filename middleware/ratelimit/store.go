package ratelimit

import (
	"sync"
	"time"
)

// Store counts requests per key within a fixed window.
type Store interface {
	Increment(key string, resetTime time.Time) (count int, reset time.Time)
}

type entry struct {
	count int
	reset time.Time
}

type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*entry)}
}

// Increment bumps the counter for key and returns the new count with
// the window's reset instant. An expired window starts over.
func (s *MemoryStore) Increment(key string, resetTime time.Time) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || time.Now().After(e.reset) {
		e = &entry{reset: resetTime}
		s.data[key] = e
	}
	e.count++
	return e.count, e.reset
}
