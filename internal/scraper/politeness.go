package scraper

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Politeness serializes outbound fetch timing: no two fetches occur
// closer together than the configured delay, no matter how many logical
// callers invoke it.
type Politeness struct {
	limiter *rate.Limiter
}

// NewPoliteness builds a limiter enforcing one fetch per delay interval.
// A non-positive delay disables the limiter.
func NewPoliteness(delay time.Duration) *Politeness {
	if delay <= 0 {
		return &Politeness{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Politeness{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next fetch slot opens, respecting the context.
func (p *Politeness) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	return nil
}
