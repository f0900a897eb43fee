// Package retry re-runs network operations that were rejected by rate limiting.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = time.Second
)

// ErrRateLimited marks an error as a transient too-many-requests response.
var ErrRateLimited = errors.New("rate limited")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures WithRetry. The zero value uses the defaults.
type Policy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before the first retry, doubled each time
	Sleep       SleepFunc
	Logger      *zap.Logger
}

// Sleep blocks for d, returning early with ctx.Err() when ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// IsRateLimited reports whether err signals a too-many-requests condition.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests")
}

// WithRetry runs op, retrying after baseDelay * 2^attempt only when it fails with a
// rate-limit error. Any other error is returned immediately. After the last attempt
// the rate-limit error itself is returned.
func WithRetry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	baseDelay := p.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRateLimited(err) || attempt+1 >= maxAttempts {
			return zero, err
		}

		delay := baseDelay << attempt
		logger.Info("rate limited, backing off",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay))
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}
