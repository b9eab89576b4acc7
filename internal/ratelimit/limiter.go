// Package ratelimit paces page inspections against the target host.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles how quickly consecutive pages are inspected. A scan
// targets a single host, so one limiter covers the whole run.
type Pacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	delay   time.Duration
	last    time.Time
}

// NewPacer creates a pacer allowing requestsPerSecond with the given
// burst. A non-positive rate disables throttling.
func NewPacer(requestsPerSecond float64, burst int) *Pacer {
	p := &Pacer{}
	if requestsPerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return p
}

// SetDelay enforces a minimum gap between inspections on top of the
// token bucket.
func (p *Pacer) SetDelay(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = delay
}

// Wait blocks until the next inspection may start or ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	delay := p.delay
	last := p.last
	p.mu.Unlock()

	if delay > 0 && !last.IsZero() {
		if remaining := delay - time.Since(last); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
	return nil
}

// Allow reports whether an inspection could start right now without
// blocking. It consumes a token when it returns true.
func (p *Pacer) Allow() bool {
	if p.limiter == nil {
		return true
	}
	return p.limiter.Allow()
}
