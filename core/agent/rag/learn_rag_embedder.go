package rag

import (
	"context"
	"errors"
	"time"

	"learning_server/core/domain"
	"learning_server/core/port/out"
	"learning_server/pkg/resilience"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

var errEmptyVector = errors.New("embedding backend returned an empty vector")

type EmbedderConfig struct {
	Timeout    time.Duration // per attempt
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration // total backoff budget
}

func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Timeout:    15 * time.Second,
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// Embedder adapts an embedding backend with per-attempt timeouts, jittered
// retries and a circuit breaker. Every failure is a *domain.EmbeddingError.
type Embedder struct {
	backend out.EmbeddingBackend
	breaker *resilience.Breaker
	cfg     EmbedderConfig
	log     zerolog.Logger
}

func NewEmbedder(backend out.EmbeddingBackend, breaker *resilience.Breaker, cfg EmbedderConfig, log zerolog.Logger) *Embedder {
	def := DefaultEmbedderConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return &Embedder{
		backend: backend,
		breaker: breaker,
		cfg:     cfg,
		log:     log.With().Str("component", "embedder").Logger(),
	}
}

func (e *Embedder) backoff() retry.Backoff {
	b := retry.NewExponential(e.cfg.BaseDelay)
	b = retry.WithMaxDuration(e.cfg.MaxDelay, b)
	b = retry.WithJitter(e.cfg.BaseDelay/2, b)
	return retry.WithMaxRetries(uint64(e.cfg.MaxRetries), b)
}

// Embed returns the vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	var vec []float32
	attempt := 0

	err := retry.Do(ctx, e.backoff(), func(ctx context.Context) error {
		attempt++
		v, err := e.attempt(ctx, text)
		if err == nil {
			vec = v
			return nil
		}
		if resilience.IsRejected(err) || ctx.Err() != nil {
			return err
		}
		e.log.Debug().Err(err).Int("attempt", attempt).Msg("embedding attempt failed")
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	return vec, nil
}

// attempt applies the timeout inside the breaker so a hung backend counts as
// a failure while caller cancellation does not.
func (e *Embedder) attempt(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	call := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()

		v, err := e.backend.Embedding(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return errEmptyVector
		}
		vec = v
		return nil
	}

	var err error
	if e.breaker != nil {
		err = e.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	return vec, err
}
