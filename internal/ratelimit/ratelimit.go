// Package ratelimit bounds request volume per client identity using fixed
// one-minute windows aligned to wall-clock minute boundaries.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLimit is the per-identity request budget per window.
const DefaultLimit = 60

// CounterStore increments and returns the admission counter for an identity
// within the window starting at window. Implementations must be safe for
// concurrent use. The returned count includes the increment being applied.
type CounterStore interface {
	Increment(ctx context.Context, identity string, window time.Time) (int64, error)
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	RetryAfter int // seconds until the current window rolls over; set when denied
	Count      int64
}

// Limiter decides admission against a CounterStore. The limiter is advisory:
// a store failure admits the request rather than blocking all traffic.
type Limiter struct {
	store CounterStore
	limit int
	now   func() time.Time
	log   zerolog.Logger
}

// New returns a Limiter with the given per-minute limit. A non-positive limit
// falls back to DefaultLimit.
func New(store CounterStore, limit int, log zerolog.Logger) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{store: store, limit: limit, now: time.Now, log: log}
}

// WithClock overrides the limiter's time source. Test hook.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow admits or denies one request for identity. The pre-increment count is
// compared against the limit, so the first denied request is the (limit+1)th
// within a window.
func (l *Limiter) Allow(ctx context.Context, identity string) Decision {
	now := l.now()
	window := now.Truncate(time.Minute)

	count, err := l.store.Increment(ctx, identity, window)
	if err != nil {
		// Fail open: the limiter mitigates abuse, it is not a security gate.
		l.log.Warn().Err(err).Str("identity", identity).Msg("rate limit counter unavailable, admitting request")
		return Decision{Allowed: true}
	}
	if count-1 >= int64(l.limit) {
		return Decision{
			Allowed:    false,
			RetryAfter: 60 - now.Second(),
			Count:      count,
		}
	}
	return Decision{Allowed: true, Count: count}
}
