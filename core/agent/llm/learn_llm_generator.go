package llm

import (
	"context"
	"time"

	"learning_server/core/domain"
	"learning_server/core/port/out"
	"learning_server/pkg/resilience"

	"github.com/rs/zerolog"
)

const DefaultGenerationTimeout = 60 * time.Second

// Generator issues one structured-output request per call. It returns the raw
// completion text and leaves parsing to the validator.
type Generator struct {
	backend out.GenerationBackend
	breaker *resilience.Breaker
	timeout time.Duration
	log     zerolog.Logger
}

func NewGenerator(backend out.GenerationBackend, breaker *resilience.Breaker, timeout time.Duration, log zerolog.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Generator{
		backend: backend,
		breaker: breaker,
		timeout: timeout,
		log:     log.With().Str("component", "generator").Logger(),
	}
}

// Generate fails only with *domain.GenerationError.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	var raw string
	call := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.backend.CompleteWithSystem(ctx, systemPrompt, userPrompt)
		if err != nil {
			return err
		}
		raw = text
		return nil
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		g.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("generation request failed")
		return "", &domain.GenerationError{Err: err}
	}

	g.log.Debug().Dur("elapsed", time.Since(start)).Int("bytes", len(raw)).Msg("generation completed")
	return raw, nil
}
