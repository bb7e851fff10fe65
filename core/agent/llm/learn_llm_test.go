package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"learning_server/core/domain"
	"learning_server/pkg/resilience"

	"github.com/rs/zerolog"
)

type fakeBackend struct {
	text  string
	err   error
	block bool
	calls int

	gotSystem string
	gotUser   string
}

func (f *fakeBackend) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func TestGeneratorGenerate(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
		wantErr bool
	}{
		{
			name:    "returns raw text",
			backend: &fakeBackend{text: "not json"},
			want:    "not json",
		},
		{
			name:    "backend failure",
			backend: &fakeBackend{err: errors.New("quota exceeded")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.backend, nil, time.Second, zerolog.Nop())
			got, err := g.Generate(context.Background(), "system", "user")

			if tt.wantErr {
				var genErr *domain.GenerationError
				if !errors.As(err, &genErr) {
					t.Fatalf("expected GenerationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if tt.backend.gotSystem != "system" || tt.backend.gotUser != "user" {
				t.Errorf("prompts not forwarded: %q %q", tt.backend.gotSystem, tt.backend.gotUser)
			}
		})
	}
}

func TestGeneratorTimeout(t *testing.T) {
	backend := &fakeBackend{block: true}
	g := NewGenerator(backend, nil, 20*time.Millisecond, zerolog.Nop())

	_, err := g.Generate(context.Background(), "system", "user")

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", err)
	}
}

func TestGeneratorBreakerOpens(t *testing.T) {
	cfg := resilience.DefaultBreakerConfig("generation-test")
	cfg.ConsecutiveFailures = 1
	breaker := resilience.NewBreaker(cfg, zerolog.Nop())

	backend := &fakeBackend{err: errors.New("connection refused")}
	g := NewGenerator(backend, breaker, time.Second, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := g.Generate(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected error")
		}
	}
	calls := backend.calls

	_, err := g.Generate(context.Background(), "s", "u")
	if !resilience.IsRejected(err) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
	if backend.calls != calls {
		t.Errorf("backend called while breaker open")
	}
}

func TestPrompts(t *testing.T) {
	t.Run("recommendation mentions topic and style", func(t *testing.T) {
		p := RecommendationPrompt("Photosynthesis", domain.StyleVisual, "CTX")
		for _, want := range []string{`"Photosynthesis"`, "visual learner", "CTX"} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt missing %q", want)
			}
		}
	})

	t.Run("summary uses style label", func(t *testing.T) {
		p := SummaryPrompt(domain.StyleAuditory, "CTX")
		if !strings.Contains(p, "auditory learner") {
			t.Errorf("prompt missing style label: %s", p)
		}
	})

	t.Run("system prompts fix cardinality", func(t *testing.T) {
		if !strings.Contains(RecommendationSystemPrompt, "8-12") {
			t.Error("recommendation system prompt missing cardinality")
		}
		if !strings.Contains(AnalysisSystemPrompt, "difficultyLevel") {
			t.Error("analysis system prompt missing difficultyLevel")
		}
	})
}
