package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// Limiter throttles reads to a byte-per-second budget using a token
// bucket. A single limiter may be shared by several readers, e.g. the
// two sides of a deep file comparison drawing from one budget.
type Limiter struct {
	bytesPerSecond int64

	mu         sync.Mutex
	tokens     int64
	bucketSize int64
	lastRefill time.Time
}

// NewLimiter creates a limiter for the given bytes-per-second budget.
// A non-positive budget returns nil, which disables limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second worth of burst, with a floor so small budgets still
	// make progress in whole read calls.
	bucketSize := bytesPerSecond
	if bucketSize < 64*1024 {
		bucketSize = 64 * 1024
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucketSize,
		bucketSize:     bucketSize,
		lastRefill:     time.Now(),
	}
}

// take blocks until n tokens are available, then consumes them
func (l *Limiter) take(ctx context.Context, n int64) error {
	if n > l.bucketSize {
		n = l.bucketSize
	}

	for {
		l.mu.Lock()
		now := time.Now()
		refill := int64(now.Sub(l.lastRefill).Seconds() * float64(l.bytesPerSecond))
		if refill > 0 {
			l.tokens += refill
			if l.tokens > l.bucketSize {
				l.tokens = l.bucketSize
			}
			l.lastRefill = now
		}

		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}

		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// reader wraps an io.Reader with a shared limiter
type reader struct {
	ctx     context.Context
	inner   io.Reader
	limiter *Limiter
}

// NewReader wraps r so reads draw tokens from limiter. A nil limiter
// returns r unchanged.
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &reader{ctx: ctx, inner: r, limiter: limiter}
}

func (r *reader) Read(p []byte) (int, error) {
	want := int64(len(p))
	if want > r.limiter.bucketSize {
		want = r.limiter.bucketSize
	}

	if err := r.limiter.take(r.ctx, want); err != nil {
		return 0, err
	}

	return r.inner.Read(p[:want])
}
