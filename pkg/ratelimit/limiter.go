// Package ratelimit caps the combined read throughput of concurrent copies.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// minBucket keeps reads smooth at low rates
const minBucket = 64 * 1024

// Limiter is a token bucket shared by every reader of one execution.
// A nil *Limiter does not limit.
type Limiter struct {
	rate   int64
	bucket int64

	mu     sync.Mutex
	tokens int64
	last   time.Time
	now    func() time.Time
}

// NewLimiter creates a limiter allowing bytesPerSecond on average.
// It returns nil when bytesPerSecond is not positive.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucket := bytesPerSecond
	if bucket < minBucket {
		bucket = minBucket
	}

	return &Limiter{
		rate:   bytesPerSecond,
		bucket: bucket,
		tokens: bucket,
		last:   time.Now(),
		now:    time.Now,
	}
}

// Rate returns the configured bytes per second, 0 for a nil limiter
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.rate
}

// Burst returns the largest request Wait can satisfy at once
func (l *Limiter) Burst() int64 {
	if l == nil {
		return 0
	}
	return l.bucket
}

// Wait blocks until n bytes may be read or ctx is done. n is capped to the
// bucket size.
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	if l == nil {
		return ctx.Err()
	}
	if n > l.bucket {
		n = l.bucket
	}

	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.rate) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refund returns tokens reserved by Wait but not consumed by a short read
func (l *Limiter) refund(n int64) {
	if l == nil || n <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens += n
	if l.tokens > l.bucket {
		l.tokens = l.bucket
	}
}

// refill must be called with mu held
func (l *Limiter) refill() {
	now := l.now()
	add := int64(now.Sub(l.last).Seconds() * float64(l.rate))
	if add <= 0 {
		return
	}
	l.tokens += add
	if l.tokens > l.bucket {
		l.tokens = l.bucket
	}
	l.last = now
}
