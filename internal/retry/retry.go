package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry sequence. Attempts counts the first call.
type Policy struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
}

// DefaultPolicy is one call plus five retries, waiting between 1s and 120s.
var DefaultPolicy = Policy{Attempts: 6, Min: time.Second, Max: 120 * time.Second}

// Delay picks the wait before the next try once attempt calls have failed. The wait is
// uniform in [min, high] where high is min doubled attempt-1 times, capped at max.
func Delay(attempt int, min, max time.Duration, int63n func(int64) int64) time.Duration {
	if max < min {
		max = min
	}
	high := min
	for i := 1; i < attempt && high < max; i++ {
		high *= 2
	}
	if high > max {
		high = max
	}
	if high <= min {
		return min
	}
	return min + time.Duration(int63n(int64(high-min)+1))
}

type randomExponential struct {
	policy  Policy
	int63n  func(int64) int64
	attempt int
}

func (b *randomExponential) NextBackOff() time.Duration {
	b.attempt++
	return Delay(b.attempt, b.policy.Min, b.policy.Max, b.int63n)
}

func (b *randomExponential) Reset() { b.attempt = 0 }

// ExhaustedError is returned once every attempt of a policy has failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Notify is called after a failed attempt, before waiting.
type Notify func(attempt int, err error, wait time.Duration)

type options struct {
	timer  backoff.Timer
	int63n func(int64) int64
	notify Notify
}

type Option func(*options)

// WithTimer replaces the wall clock used between attempts.
func WithTimer(t backoff.Timer) Option {
	return func(o *options) { o.timer = t }
}

// WithRand replaces the jitter source.
func WithRand(int63n func(int64) int64) Option {
	return func(o *options) { o.int63n = int63n }
}

func WithNotify(fn Notify) Option {
	return func(o *options) { o.notify = fn }
}

// Do calls op until it succeeds or the policy runs out. Every error is retried the same way.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context, attempt int) error, opts ...Option) error {
	o := options{int63n: rand.Int64N}
	for _, opt := range opts {
		opt(&o)
	}

	attempts := max(policy.Attempts, 1)
	b := backoff.WithContext(
		backoff.WithMaxRetries(&randomExponential{policy: policy, int63n: o.int63n}, uint64(attempts-1)),
		ctx,
	)

	var (
		tries   int
		lastErr error
	)
	operation := func() error {
		tries++
		lastErr = op(ctx, tries)
		return lastErr
	}
	notify := func(err error, wait time.Duration) {
		if o.notify != nil {
			o.notify(tries, err, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, o.timer)
	if err == nil {
		return nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("retry aborted after %d attempts: %w", tries, errors.Join(cerr, lastErr))
	}
	return &ExhaustedError{Attempts: tries, Err: lastErr}
}
