package services

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/parentlink/internal/gateway"
)

// RetryPolicy retries remote mutations that failed with
// gateway.ErrUnavailable. The zero value sends every call once.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p RetryPolicy) enabled() bool { return p.MaxAttempts > 0 }

// run calls fn once, plus up to MaxAttempts retries with exponential
// backoff for transient failures.
func (p RetryPolicy) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !p.enabled() {
		return fn(ctx)
	}

	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	b := retry.WithMaxRetries(uint64(p.MaxAttempts), retry.NewExponential(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, gateway.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}
