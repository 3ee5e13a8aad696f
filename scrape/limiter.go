package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/probdoc"
	"golang.org/x/time/rate"
)

var _ probdoc.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces requests per host using token buckets with a burst of
// one: the first request to a host passes immediately, later ones wait for
// the interval.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
}

// NewDomainLimiter creates a limiter allowing one request per interval and host.
func NewDomainLimiter(interval time.Duration) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(interval),
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.every, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
