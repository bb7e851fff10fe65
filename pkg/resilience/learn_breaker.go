// Package resilience provides fault tolerance for calls to the model backends.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32        // requests allowed while half-open
	Interval            time.Duration // closed-state counter reset interval
	Timeout             time.Duration // open-state duration before half-open
	ConsecutiveFailures uint32
	MinRequests         uint32
	FailureRatio        float64
}

// DefaultBreakerConfig returns the settings used for every model backend.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		MinRequests:         10,
		FailureRatio:        0.6,
	}
}

// Breaker wraps a gobreaker circuit breaker. Caller-side cancellation does not
// count as a backend failure.
type Breaker struct {
	cb  *gobreaker.CircuitBreaker
	log zerolog.Logger
}

// nonCircuitError carries an error that must not trip the breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string { return e.err.Error() }

func NewBreaker(cfg BreakerConfig, log zerolog.Logger) *Breaker {
	b := &Breaker{log: log.With().Str("component", "circuit_breaker").Str("breaker", cfg.Name).Logger()}

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures > cfg.ConsecutiveFailures {
				return true
			}
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var nce *nonCircuitError
			return errors.As(err, &nce)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return b
}

// Execute runs fn through the breaker. When the breaker is open fn is not
// called and gobreaker.ErrOpenState is returned.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		err := fn(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, &nonCircuitError{err: err}
		}
		return nil, err
	})

	var nce *nonCircuitError
	if errors.As(err, &nce) {
		return nce.err
	}
	return err
}

// State returns the current breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// IsRejected reports whether err came from the breaker refusing the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
