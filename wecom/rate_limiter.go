package wecom

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound requests
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// TokenBucketLimiter implements token bucket rate limiting
type TokenBucketLimiter struct {
	limiter *rate.Limiter
}

// NewTokenBucketLimiter creates a limiter allowing perSecond requests with the given burst.
func NewTokenBucketLimiter(perSecond, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return nil
}

type noopLimiter struct{}

func (noopLimiter) Wait(context.Context) error { return nil }
