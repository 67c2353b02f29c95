// Package ratelimit throttles long-running cursor walks so a single
// large walk_all_words export cannot starve a concurrent read session
// sharing the host process. Grounded on the teacher's pkg/security use
// of golang.org/x/time/rate for HTTP request throttling, repurposed
// here for KV cursor iteration instead of inbound requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces a sequence of operations at rps per second, with burst
// allowed immediately. A nil *Limiter never blocks.
type Limiter struct {
	rl *rate.Limiter
}

// New constructs a Limiter. rps <= 0 disables throttling (unlimited).
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the limiter admits one more operation, or ctx ends.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}
