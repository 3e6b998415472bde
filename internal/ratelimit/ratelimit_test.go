package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAllow_DeniesAboveLimit(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 15, 0, time.UTC)
	l := New(NewMemoryStore(), 3, zerolog.Nop()).WithClock(fixedClock(now))

	for i := 0; i < 3; i++ {
		if d := l.Allow(context.Background(), "client-a"); !d.Allowed {
			t.Fatalf("request %d denied below limit", i+1)
		}
	}
	d := l.Allow(context.Background(), "client-a")
	if d.Allowed {
		t.Fatal("request above limit admitted")
	}
	if d.RetryAfter <= 0 || d.RetryAfter >= 60 {
		t.Fatalf("retry_after out of range: %d", d.RetryAfter)
	}
	if want := 60 - now.Second(); d.RetryAfter != want {
		t.Fatalf("retry_after = %d, want %d", d.RetryAfter, want)
	}
}

func TestAllow_IdentitiesAreIndependent(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 15, 0, time.UTC)
	l := New(NewMemoryStore(), 1, zerolog.Nop()).WithClock(fixedClock(now))

	if d := l.Allow(context.Background(), "client-a"); !d.Allowed {
		t.Fatal("first request for client-a denied")
	}
	if d := l.Allow(context.Background(), "client-b"); !d.Allowed {
		t.Fatal("client-b throttled by client-a's counter")
	}
	if d := l.Allow(context.Background(), "client-a"); d.Allowed {
		t.Fatal("client-a admitted above its limit")
	}
}

func TestAllow_WindowRollsOver(t *testing.T) {
	clock := time.Date(2026, 8, 28, 10, 0, 59, 0, time.UTC)
	var mu sync.Mutex
	l := New(NewMemoryStore(), 1, zerolog.Nop()).WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	})

	l.Allow(context.Background(), "client-a")
	if d := l.Allow(context.Background(), "client-a"); d.Allowed {
		t.Fatal("second request in window admitted")
	}

	mu.Lock()
	clock = clock.Add(2 * time.Second) // crosses the minute boundary
	mu.Unlock()
	if d := l.Allow(context.Background(), "client-a"); !d.Allowed {
		t.Fatal("request in fresh window denied")
	}
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Time) (int64, error) {
	return 0, errors.New("counter backend down")
}

func TestAllow_FailsOpenOnStoreError(t *testing.T) {
	l := New(failingStore{}, 1, zerolog.Nop())
	for i := 0; i < 5; i++ {
		if d := l.Allow(context.Background(), "client-a"); !d.Allowed {
			t.Fatal("store failure must admit, not block")
		}
	}
}

func TestMemoryStore_PrunesRolledOverWindows(t *testing.T) {
	s := NewMemoryStore()
	w1 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	w2 := w1.Add(time.Minute)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Increment(context.Background(), id, w1); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 counters, got %d", s.Len())
	}
	if _, err := s.Increment(context.Background(), "a", w2); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected old windows pruned, got %d counters", s.Len())
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	s := NewMemoryStore()
	window := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.Increment(context.Background(), "client-a", window)
		}()
	}
	wg.Wait()

	count, err := s.Increment(context.Background(), "client-a", window)
	if err != nil {
		t.Fatal(err)
	}
	if count != n+1 {
		t.Fatalf("expected %d, got %d", n+1, count)
	}
}
