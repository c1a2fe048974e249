// Package ratelimit provides a keyed token bucket limiter.
// The catalog client waits on it per backend endpoint; the HTTP layer uses
// Allow per client address to protect the analysis upload route.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused key keeps its bucket.
const DefaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent bucket; buckets idle for longer
// than the TTL are evicted by a background sweep.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewWithTTL(rps, burst, DefaultIdleTTL)
}

// NewWithTTL is New with an explicit idle eviction TTL.
func NewWithTTL(rps float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go krl.sweepLoop()

	return krl
}

// Allow reports whether a request for key may proceed now. It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.limiterFor(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is done.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.limiterFor(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

func (krl *KeyedRateLimiter) limiterFor(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = krl.now()
	return e.limiter
}

// evictIdle drops buckets not used since the TTL and returns how many went.
func (krl *KeyedRateLimiter) evictIdle() int {
	cutoff := krl.now().Add(-krl.idleTTL)

	krl.mu.Lock()
	defer krl.mu.Unlock()

	removed := 0
	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
			removed++
		}
	}
	return removed
}

// Stop shuts down the sweep goroutine. Safe to call more than once.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) sweepLoop() {
	if krl.idleTTL <= 0 {
		<-krl.done
		return
	}

	ticker := time.NewTicker(krl.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.evictIdle()
		}
	}
}
