// Package retry implements the bounded retry policy used by the repositories.
//
// Delays grow linearly: baseDelay × attempt number. Only transient store
// failures are retried; errors wrapped with Permanent (lookup misses, bad
// statements) abort immediately and are returned unwrapped.
package retry

import (
	"context"
	"errors"
	"time"
)

type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Default matches the store client budget: 3 attempts, 1s base delay.
var Default = Policy{Attempts: 3, BaseDelay: time.Second}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, returns a permanent error, or the attempt
// budget is exhausted. After exhaustion the last error is returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = Default.Attempts
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		var pe *permanentError
		if errors.As(err, &pe) {
			return pe.err
		}
		last = err

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.BaseDelay * time.Duration(attempt)):
		}
	}
	return last
}
