package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FrameLimiter holds one token bucket per user and is consulted for every
// inbound socket frame. Buckets for users that have gone quiet are swept out
// periodically so a long-lived process does not accumulate entries forever.
type FrameLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu     sync.Mutex
	byUser map[string]*bucket
	hits   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewFrameLimiter returns nil when rps or burst is non-positive; a nil
// limiter admits everything, which keeps the caller free of config checks.
func NewFrameLimiter(rps float64, burst int) *FrameLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &FrameLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		byUser:  make(map[string]*bucket),
	}
}

// Allow reports whether the user may send one more frame at now.
func (l *FrameLimiter) Allow(userID string, now time.Time) bool {
	if l == nil || userID == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byUser[userID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byUser[userID] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for id, v := range l.byUser {
			if v.lastSeen.Before(cutoff) {
				delete(l.byUser, id)
			}
		}
	}

	return allowed
}

// Forget drops the user's bucket, typically when their last connection closes.
func (l *FrameLimiter) Forget(userID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.byUser, userID)
	l.mu.Unlock()
}
