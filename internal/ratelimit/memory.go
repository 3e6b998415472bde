package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryKey struct {
	identity string
	window   int64
}

// MemoryStore is an in-process CounterStore for single-instance deployments.
// Counters from rolled-over windows are pruned on write.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[memoryKey]int64
	pruned int64 // unix second of the window the last prune kept
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[memoryKey]int64)}
}

// Increment implements CounterStore. It never fails.
func (s *MemoryStore) Increment(_ context.Context, identity string, window time.Time) (int64, error) {
	ws := window.Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws > s.pruned {
		for k := range s.counts {
			if k.window < ws {
				delete(s.counts, k)
			}
		}
		s.pruned = ws
	}
	key := memoryKey{identity: identity, window: ws}
	s.counts[key]++
	return s.counts[key], nil
}

// Len reports the number of live counters. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}
