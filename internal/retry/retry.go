// Package retry repeats short network calls that fail while a web server is
// reloading: nginx briefly refuses or resets connections while its workers
// are replaced.
package retry

import (
	"context"
	"errors"
	"io"
	"syscall"
	"time"
)

// Policy describes how often and how far apart a call is repeated. The
// caller's context bounds the total time spent, including pauses.
type Policy struct {
	Attempts int
	// Delay is the first pause. It doubles after every failure up to
	// MaxDelay.
	Delay    time.Duration
	MaxDelay time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Nil means Transient.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, returns an error the policy does not retry,
// runs out of attempts, or ctx is done. The last error from fn is returned,
// except when ctx ends first.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(p.Attempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = Transient
	}

	delay := p.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil || attempt >= attempts || !retryable(err) {
			return err
		}

		if delay > 0 {
			if !pause(ctx, delay) {
				return err
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
	}
}

// Transient reports whether err looks like a connection dropped by a
// restarting server. Timeouts and cancellation are not transient: waiting
// again would only exceed the caller's budget.
func Transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}

func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
