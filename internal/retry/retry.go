// package retry re-attempts remote operations that fail transiently, with exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/invsync/internal/shared"
)

// DefaultMaxAttempts is the attempt bound when none is configured.
const DefaultMaxAttempts = 3

// Classifier reports whether err is worth another attempt.
type Classifier func(error) bool

// Policy bounds the attempts made for a single operation.
type Policy struct {
	MaxAttempts    int           // total attempts including the first, at least 1
	InitialBackoff time.Duration // delay before the second attempt
	MaxBackoff     time.Duration // cap on any single delay
	Multiplier     float64       // growth factor between delays
	Jitter         float64       // fraction of the delay randomized in both directions (0.0-1.0)
	Classifier     Classifier    // defaults to [IsTransient]
	Logger         *log.Logger

	sleep func(context.Context, time.Duration) error
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
	}
}

// FromConfig builds a Policy from the [retry] section, keeping defaults for zero values.
func FromConfig(cfg shared.RetryConfig, logger *log.Logger) Policy {
	p := DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoff > 0 {
		p.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		p.MaxBackoff = cfg.MaxBackoff
	}
	p.Logger = logger
	return p
}

// Result is the definite outcome of [Policy.Do].
type Result struct {
	Op       string
	Attempts int
	Err      error
}

// OK reports whether the operation eventually succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// IsTransient is the default classifier. Authentication failures, not-found responses and context
// errors are final; everything else, including network errors and timeouts, is retried.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, shared.ErrRemoteAuth), errors.Is(err, shared.ErrRemoteNotFound):
		return false
	case errors.Is(err, shared.ErrRemoteTransient):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

// Do calls fn until it succeeds, fails with a non-transient error, the attempts are exhausted, or
// ctx is done. fn receives the 1-based attempt number.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context, attempt int) error) Result {
	classify := p.Classifier
	if classify == nil {
		classify = IsTransient
	}
	maxAttempts := max(p.MaxAttempts, 1)
	backoff := p.InitialBackoff

	res := Result{Op: op}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			res.Err = withCause(err, res.Err)
			return res
		}

		res.Attempts = attempt
		err := fn(ctx, attempt)
		if err == nil {
			res.Err = nil
			return res
		}
		res.Err = err

		if !classify(err) || attempt == maxAttempts {
			return res
		}

		delay := p.delay(backoff)
		if p.Logger != nil {
			p.Logger.Warn("retrying", "op", op, "attempt", attempt, "max", maxAttempts, "delay", delay, "err", err)
		}

		if err := p.wait(ctx, delay); err != nil {
			res.Err = withCause(err, res.Err)
			return res
		}

		backoff = time.Duration(float64(backoff) * max(p.Multiplier, 1))
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
	return res
}

// delay applies jitter to backoff and caps it.
func (p Policy) delay(backoff time.Duration) time.Duration {
	d := backoff
	if p.Jitter > 0 && backoff > 0 {
		d += time.Duration((rand.Float64()*2 - 1) * p.Jitter * float64(backoff))
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return max(d, 0)
}

func (p Policy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func withCause(ctxErr, last error) error {
	if last == nil {
		return ctxErr
	}
	return fmt.Errorf("%w (last error: %v)", ctxErr, last)
}
