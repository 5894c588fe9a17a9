// Package ratelimit enforces a minimum interval between requests of the same user.
package ratelimit

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Limiter admits at most one request per user per interval.
// It is safe for concurrent use. Per-user state lives in a bounded LRU; a user evicted
// from it starts with a fresh window.
type Limiter struct {
	interval time.Duration
	slots    *lru.Cache[string, *atomic.Int64]
	now      func() time.Time
}

// New creates a Limiter that tracks at most maxUsers users.
func New(interval time.Duration, maxUsers int) (*Limiter, error) {
	if interval < 0 {
		return nil, fmt.Errorf("interval must not be negative")
	}
	slots, err := lru.New[string, *atomic.Int64](maxUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit cache: %w", err)
	}
	return &Limiter{interval: interval, slots: slots, now: time.Now}, nil
}

// Interval returns the minimum time between two admitted requests of a user.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Allow reports whether a request from userID may proceed and records it if so.
// A rejected request does not move the window; retryAfter is the time left in it.
func (l *Limiter) Allow(userID string) (ok bool, retryAfter time.Duration) {
	slot := l.slot(userID)
	now := l.now().UnixNano()

	for {
		last := slot.Load()
		if last != 0 {
			if elapsed := now - last; elapsed < int64(l.interval) {
				return false, time.Duration(int64(l.interval) - elapsed)
			}
		}
		if slot.CompareAndSwap(last, now) {
			return true, 0
		}
	}
}

// Len returns the number of users currently tracked.
func (l *Limiter) Len() int {
	return l.slots.Len()
}

func (l *Limiter) slot(userID string) *atomic.Int64 {
	if slot, ok := l.slots.Get(userID); ok {
		return slot
	}
	fresh := new(atomic.Int64)
	if prev, found, _ := l.slots.PeekOrAdd(userID, fresh); found {
		return prev
	}
	return fresh
}
