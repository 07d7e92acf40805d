// Package services – bounded retry for atomic units of work.
//
// A unit of work (one GORM transaction) either applies completely or not at
// all. When it fails because of a lost race — a unique-index collision on the
// token sequence, a conditional status update that matched zero rows, or a
// transient SQLite lock — the whole unit is re-run from the top. Failures that
// cannot be resolved by re-running (not-found, paused, permission) pass
// through untouched.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mediqueue/go-queue-backend/internal/repo"
)

// defaultMaxAttempts bounds how often a unit of work is re-run before the
// conflict is surfaced to the caller as ErrConflict.
const defaultMaxAttempts = 5

// retryBaseDelay is the first backoff step; attempt n waits n*retryBaseDelay.
const retryBaseDelay = 5 * time.Millisecond

// retryable reports whether err is worth re-running the unit of work for.
func retryable(err error) bool {
	return errors.Is(err, ErrConflict) || repo.IsDuplicate(err) || repo.IsBusy(err)
}

// withRetry runs op up to attempts times, backing off linearly between runs.
// A non-retryable error aborts immediately; exhausted retries surface as
// ErrConflict wrapping the last failure. name labels the retry counter metric.
func withRetry(ctx context.Context, name string, attempts int, op func() error) error {
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		unitRetries.WithLabelValues(name).Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * retryBaseDelay):
		}
	}
	if errors.Is(err, ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}
