package sources

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"songdeck/internal/track"
)

type limited struct {
	inner   Adapter
	limiter *rate.Limiter
}

// WithRateLimit throttles an adapter so concurrent track lookups share one
// request budget per source. A nil limiter returns the adapter unchanged.
func WithRateLimit(inner Adapter, limiter *rate.Limiter) Adapter {
	if limiter == nil {
		return inner
	}
	return &limited{inner: inner, limiter: limiter}
}

func (l *limited) Name() string { return l.inner.Name() }

func (l *limited) Fetch(ctx context.Context, q Query) (track.RawFact, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return track.RawFact{}, fmt.Errorf("%s: rate limit wait: %w", l.inner.Name(), err)
	}
	return l.inner.Fetch(ctx, q)
}
