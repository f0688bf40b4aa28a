package retry

import (
	"context"
	"strings"
	"time"
)

// Defaults match the narrow data-access retry contract: three attempts,
// one second initial delay, doubling per retry.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
)

// transientMarkers are the only error-message substrings that qualify for a
// retry. Anything else propagates immediately, even on the first attempt;
// this is deliberately not a general resilience layer.
var transientMarkers = []string{
	"upstream connect error",
	"remote connection failure",
	"503",
}

type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

type Option func(*Options)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// WithInitialDelay overrides the first backoff delay.
func WithInitialDelay(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.InitialDelay = d
		}
	}
}

// IsTransient reports whether an error qualifies for a retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Do invokes op until it succeeds, the error is non-transient, or attempts
// are exhausted. The delay doubles after every failed attempt. Context
// cancellation aborts the wait and returns ctx.Err().
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	options := Options{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
	}
	for _, opt := range opts {
		opt(&options)
	}

	var zero T
	var lastErr error
	delay := options.InitialDelay

	for attempt := 1; attempt <= options.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsTransient(err) {
			return zero, err
		}
		lastErr = err
		if attempt == options.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return zero, lastErr
}
