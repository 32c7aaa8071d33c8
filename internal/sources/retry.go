package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"songdeck/internal/logging"
	"songdeck/internal/track"
)

// RetryPolicy bounds retries of transient failures.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

type retrying struct {
	inner  Adapter
	policy RetryPolicy
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// WithRetry wraps an adapter so ErrUnavailable failures are retried with
// exponential backoff. ErrNotFound and other errors return immediately.
func WithRetry(inner Adapter, policy RetryPolicy, logger *slog.Logger) Adapter {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}
	return &retrying{
		inner:  inner,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "sources"),
		sleep:  sleepContext,
	}
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) Fetch(ctx context.Context, q Query) (track.RawFact, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		fact, err := r.inner.Fetch(ctx, q)
		if err == nil {
			return fact, nil
		}
		lastErr = err
		delay, retry := r.retryDelay(ctx, err, attempt)
		if !retry {
			return track.RawFact{}, err
		}
		r.logger.Debug("retrying source lookup",
			logging.String(logging.FieldSource, r.inner.Name()),
			logging.String(logging.FieldIdentifier, q.Identifier.String()),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
		if err := r.sleep(ctx, delay); err != nil {
			return track.RawFact{}, err
		}
	}
	return track.RawFact{}, fmt.Errorf("%s: failed after %d attempts: %w", r.inner.Name(), r.policy.Attempts, lastErr)
}

func (r *retrying) retryDelay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= r.policy.Attempts {
		return 0, false
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return 0, false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientQuery) {
		return 0, false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 && errors.Is(err, ErrUnavailable) {
		return r.capDelay(statusErr.RetryAfter), true
	}
	if errors.Is(err, ErrUnavailable) {
		return r.backoffDelay(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return r.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles per attempt: attempt 1 -> base, 2 -> base*2, ...
func (r *retrying) backoffDelay(attempt int) time.Duration {
	delay := r.policy.BaseDelay
	if delay <= 0 {
		return 0
	}
	for i := 1; i < attempt; i++ {
		if r.policy.MaxDelay > 0 && delay > r.policy.MaxDelay/2 {
			return r.policy.MaxDelay
		}
		delay *= 2
	}
	return r.capDelay(delay)
}

func (r *retrying) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if r.policy.MaxDelay > 0 && delay > r.policy.MaxDelay {
		return r.policy.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, delay time.Duration) error {
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
