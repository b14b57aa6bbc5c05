// Package retry retries remote calls that failed with a rate limit or a
// server error, doubling the wait after each attempt.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/agenthands/carecircle/internal/llm"
)

type Policy struct {
	// Retries is the number of attempts after the first one.
	Retries int
	// Delay is the wait before the first retry; each later wait doubles.
	Delay time.Duration
	// Retryable classifies errors. Nil means llm.IsRetryable.
	Retryable func(error) bool
	// NewTimer supplies the wait primitive. Nil means a real timer.
	NewTimer func() backoff.Timer
	Logger   *log.Logger
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.Delay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the retry
// budget is spent. The last error from fn is returned as is.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = llm.IsRetryable
	}

	var (
		result  T
		attempt int
	)
	op := func() error {
		attempt++
		v, err := fn(ctx)
		if err == nil {
			result = v
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		if p.Logger != nil {
			p.Logger.Warn("retrying remote call", "attempt", attempt, "wait", wait, "err", err)
		}
	}

	var timer backoff.Timer
	if p.NewTimer != nil {
		timer = p.NewTimer()
	}

	if err := backoff.RetryNotifyWithTimer(op, p.backOff(ctx), notify, timer); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
