package simulator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidConfig is returned when the run configuration is unusable.
	ErrInvalidConfig = errors.New("invalid simulator config")
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrUnexpectedStatus is returned for non-success HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrRateLimited is returned when the server answers 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrVerification is returned when a session ledger is inconsistent.
	ErrVerification = errors.New("verification failed")
)

// rateLimitedError carries the server's Retry-After hint and unwraps to
// ErrRateLimited.
type rateLimitedError struct {
	op         string
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s (retry after %s)", e.op, ErrRateLimited, e.retryAfter)
}

func (e *rateLimitedError) Unwrap() error { return ErrRateLimited }
