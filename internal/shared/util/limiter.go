package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket guarding how often regeneration batches may run.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter returns a limiter refilling perSecond tokens up to burst.
// A non-positive perSecond disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(limit, burst)}
}

func (l *Limiter) Allow() bool {
	return l.inner.Allow()
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.inner.Wait(ctx)
}

// Throttle takes one token, waiting for it when the bucket is empty.
// It reports whether the caller had to wait.
func (l *Limiter) Throttle(ctx context.Context) (bool, error) {
	r := l.inner.Reserve()
	if !r.OK() {
		return false, l.inner.Wait(ctx)
	}
	delay := r.Delay()
	if delay <= 0 {
		return false, nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true, nil
	case <-ctx.Done():
		r.Cancel()
		return true, ctx.Err()
	}
}
