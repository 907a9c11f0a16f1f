// Package pacer spaces out calls to third-party services.
package pacer

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config sets the gap between consecutive calls. Every Wait after the
// first sleeps a random gap between Min and Max, counted from the moment
// Wait is called, so a slow call is still followed by a full gap. Zero
// values disable pacing.
type Config struct {
	Min time.Duration
	Max time.Duration
}

// Pacer sleeps a jittered gap before each call. A token bucket of burst 1
// keeps concurrent callers at least Min apart.
type Pacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	min     time.Duration
	jitter  time.Duration
	used    bool
	retryAt time.Time
}

// New creates a Pacer.
func New(cfg Config) *Pacer {
	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(cfg.Min), 1),
		min:     cfg.Min,
		jitter:  cfg.Max - cfg.Min,
	}
}

// Wait blocks until the next call may proceed or ctx is done. The first
// call only waits out a pending Backoff.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	retryAt := p.retryAt
	first := !p.used
	p.used = true
	p.mu.Unlock()

	if err := sleep(ctx, time.Until(retryAt)); err != nil {
		return err
	}
	if !first {
		if err := sleep(ctx, p.gap()); err != nil {
			return err
		}
	}
	return p.limiter.Wait(ctx)
}

func (p *Pacer) gap() time.Duration {
	if p.jitter <= 0 {
		return p.min
	}
	return p.min + rand.N(p.jitter)
}

// Backoff holds every caller for d, e.g. after a quota error.
func (p *Pacer) Backoff(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if until := time.Now().Add(d); until.After(p.retryAt) {
		p.retryAt = until
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
