// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer bounds the rate of outbound fetches across the whole pipeline.
// With sequential batches it reproduces the classic inter-item delay;
// with a worker pool it becomes a shared token bucket, so pacing holds as
// a property of the pool rather than of any single worker.
type Pacer interface {
	// Wait blocks until the next fetch may start, or returns the context
	// error if cancelled first.
	Wait(ctx context.Context) error

	// Allow reports whether a fetch may start immediately.
	Allow() bool
}

// TokenPacer implements Pacer with a token bucket.
type TokenPacer struct {
	limiter *rate.Limiter
}

// NewTokenPacer creates a pacer allowing requestsPerSecond sustained with
// the given burst capacity.
func NewTokenPacer(requestsPerSecond float64, burst int) *TokenPacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.5
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenPacer{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// FromInterval creates a pacer that admits one fetch per interval, the
// token-bucket equivalent of sleeping between items. A non-positive
// interval disables pacing.
func FromInterval(interval time.Duration) Pacer {
	if interval <= 0 {
		return Unlimited()
	}
	return &TokenPacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Unlimited returns a pacer that never delays.
func Unlimited() Pacer {
	return &TokenPacer{limiter: rate.NewLimiter(rate.Inf, 1)}
}

// Wait blocks for the next token.
func (p *TokenPacer) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return p.limiter.Wait(ctx)
}

// Allow consumes a token if one is available.
func (p *TokenPacer) Allow() bool {
	return p.limiter.Allow()
}
