// Package retry applies bounded exponential backoff to transient failures
package retry

import (
	"context"
	"time"

	perr "stride/internal/platform/errors"
)

// Policy bounds a retry loop
type Policy struct {
	Initial  time.Duration
	Max      time.Duration
	Attempts int
}

// Default is the service-wide policy: 1s doubling to 60s, five attempts
var Default = Policy{Initial: time.Second, Max: time.Minute, Attempts: 5}

// Callback is the tighter in-fire policy: three attempts within one fire
var Callback = Policy{Initial: time.Second, Max: time.Minute, Attempts: 3}

// Do runs fn until it succeeds, returns a non-retryable error, the policy is
// exhausted, or ctx is cancelled. Only errors perr.Retryable considers
// transient are retried; the last error is returned as-is
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Attempts <= 0 {
		p = Default
	}
	delay := p.Initial
	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || !perr.Retryable(err) || attempt >= p.Attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return perr.Wrap(ctx.Err(), perr.ErrorCodeCancelled, "retry aborted")
		case <-time.After(delay):
		}
		delay *= 2
		if delay > p.Max {
			delay = p.Max
		}
	}
}
