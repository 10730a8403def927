// Package resilience builds the circuit breakers guarding outbound
// collaborator calls. Breakers never retry; an open breaker fails fast with
// gobreaker.ErrOpenState until its timeout elapses.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/mood-recommender/internal/logging"
)

type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
	// IsSuccessful, when set, decides which errors count as failures.
	// Errors caused by the caller's own context are never counted.
	IsSuccessful func(err error) bool
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
	}
}

// NewBreaker trips after FailureThreshold consecutive failures and lets a
// single trial request through once Timeout has passed.
func NewBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	log := logging.Component("resilience")
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  1,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		IsExcluded:   CallerDone,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// callerDoneError marks an error returned after the caller's context ended.
type callerDoneError struct {
	err error
}

func (e *callerDoneError) Error() string { return e.err.Error() }
func (e *callerDoneError) Unwrap() error { return e.err }

// CallerDone reports whether err came from the caller giving up: a
// cancellation, or any error seen by Execute after ctx was done.
func CallerDone(err error) bool {
	var done *callerDoneError
	return errors.As(err, &done) || errors.Is(err, context.Canceled)
}

// Execute runs fn through cb. A failure that happens after ctx is done is
// the caller's, not the upstream's, and is left out of the breaker counts.
// The error is returned unchanged.
func Execute[T any](ctx context.Context, cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (T, error) {
		v, err := fn()
		if err != nil && ctx.Err() != nil {
			return v, &callerDoneError{err: err}
		}
		return v, err
	})
	var done *callerDoneError
	if errors.As(err, &done) {
		err = done.err
	}
	return v, err
}
