package statsfeed

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between successive feed requests.
// Concurrent waiters are released one interval apart, so the total request
// rate stays within the upstream quota no matter how many sync workers
// share the pacer. A nil Pacer or a non-positive interval never blocks.
type Pacer struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until this caller's slot arrives or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.interval <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := time.Now()
	at := p.next
	if at.Before(now) {
		at = now
	}
	p.next = at.Add(p.interval)
	p.mu.Unlock()

	delay := time.Until(at)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
