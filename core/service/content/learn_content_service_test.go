package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"learning_server/core/agent/rag"
	"learning_server/core/agent/validate"
	"learning_server/core/domain"
	"learning_server/pkg/metrics"

	"github.com/rs/zerolog"
)

type fakeGenerator struct {
	text string
	err  error

	calls      int
	lastSystem string
	lastPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", &domain.GenerationError{Err: f.err}
	}
	return f.text, nil
}

type fakeEmbedder struct {
	mu      sync.Mutex
	failAll bool
	vectors map[string]domain.EmbeddingVector
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, &domain.EmbeddingError{Err: errors.New("unreachable")}
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return domain.EmbeddingVector{1, 1}, nil
}

// embedderFailingChunks fails every text except the query.
type embedderFailingChunks struct {
	query string
}

func (e *embedderFailingChunks) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	if text == e.query {
		return domain.EmbeddingVector{1, 0}, nil
	}
	return nil, &domain.EmbeddingError{Err: errors.New("rate limited")}
}

const recommendationJSON = `{"recommendations":[
 {"title":"Go by Example","description":"Annotated programs","type":"reading","url":"https://gobyexample.com","source":"Go by Example"},
 {"title":"Go Talks","description":"Conference talks","type":"auditory","url":"https://go.dev/talks","source":"go.dev"}
]}`

const document = "Goroutines are lightweight threads. Channels connect goroutines. " +
	"The scheduler multiplexes goroutines onto threads. Select waits on many channels."

func newTestService(t *testing.T, embedder rag.VectorEmbedder, gen Generator) (*Service, *metrics.Pipeline) {
	t.Helper()
	v, err := validate.New()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}
	m := metrics.NewPipeline(100)
	retriever := rag.NewRetriever(embedder, 2, zerolog.Nop())
	svc := NewService(nil, retriever, gen, v, m, Config{MaxChunkSize: 40, TopK: 2}, zerolog.Nop())
	return svc, m
}

func assertFallbackList(t *testing.T, items []domain.RecommendationItem, style domain.LearningStyle) {
	t.Helper()
	if len(items) < 8 {
		t.Fatalf("expected at least 8 items, got %d", len(items))
	}
	types := make(map[domain.LearningStyle]bool)
	for _, item := range items {
		types[item.Type] = true
	}
	for _, s := range domain.AllStyles {
		if !types[s] {
			t.Errorf("fallback list missing %s items", s)
		}
	}
	if items[0].Type != style {
		t.Errorf("expected %s item first, got %s", style, items[0].Type)
	}
}

func TestGetPersonalizedContent(t *testing.T) {
	tests := []struct {
		name         string
		gen          *fakeGenerator
		wantFallback bool
		wantReason   string
		wantFailed   domain.Stage
		wantItems    int
	}{
		{
			name:      "generated list",
			gen:       &fakeGenerator{text: recommendationJSON},
			wantItems: 2,
		},
		{
			name:         "not json",
			gen:          &fakeGenerator{text: "not json"},
			wantFallback: true,
			wantReason:   "validation",
			wantFailed:   domain.StageValidating,
		},
		{
			name:         "generation fails",
			gen:          &fakeGenerator{err: errors.New("quota exceeded")},
			wantFallback: true,
			wantReason:   "generation",
			wantFailed:   domain.StageGenerating,
		},
		{
			name:         "fenced but incomplete",
			gen:          &fakeGenerator{text: "```json\n[{\"title\":\"x\"}]\n```"},
			wantFallback: true,
			wantReason:   "validation",
			wantFailed:   domain.StageValidating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t, &fakeEmbedder{}, tt.gen)

			items, outcome := svc.GetPersonalizedContent(context.Background(), "Concurrency", domain.StyleKinesthetic, "")

			if outcome.Stage != domain.StageDone {
				t.Errorf("expected done stage, got %s", outcome.Stage)
			}
			if outcome.Retrieval != domain.RetrievalNone {
				t.Errorf("expected no retrieval without document, got %s", outcome.Retrieval)
			}
			if outcome.Fallback != tt.wantFallback {
				t.Fatalf("expected fallback=%v, got %v", tt.wantFallback, outcome.Fallback)
			}
			if tt.wantFallback {
				if outcome.FallbackReason != tt.wantReason {
					t.Errorf("expected reason %s, got %s", tt.wantReason, outcome.FallbackReason)
				}
				if outcome.FailedStage != tt.wantFailed {
					t.Errorf("expected failed stage %s, got %s", tt.wantFailed, outcome.FailedStage)
				}
				assertFallbackList(t, items, domain.StyleKinesthetic)
				if m.Count("recommend.fallback."+tt.wantReason) != 1 {
					t.Error("fallback counter not incremented")
				}
				return
			}
			if len(items) != tt.wantItems {
				t.Errorf("expected %d items, got %d", tt.wantItems, len(items))
			}
			if m.Count("recommend.runs") != 1 {
				t.Error("run counter not incremented")
			}
		})
	}
}

func TestGetPersonalizedContentUsesDocument(t *testing.T) {
	query := "Concurrency for a visual learner"
	target := "Channels connect goroutines."
	embedder := &fakeEmbedder{vectors: map[string]domain.EmbeddingVector{
		query:  {0, 1},
		target: {0, 1},
	}}
	gen := &fakeGenerator{text: recommendationJSON}
	svc, _ := newTestService(t, embedder, gen)

	_, outcome := svc.GetPersonalizedContent(context.Background(), "Concurrency", domain.StyleVisual, document)

	if outcome.Retrieval != domain.RetrievalRanked {
		t.Fatalf("expected ranked retrieval, got %s", outcome.Retrieval)
	}
	if outcome.Chunks == 0 || outcome.EmbeddedChunks != outcome.Chunks {
		t.Errorf("unexpected chunk counts %+v", outcome)
	}
	if outcome.ContextChunks != 2 {
		t.Errorf("expected 2 context chunks, got %d", outcome.ContextChunks)
	}

	excerpts := gen.lastPrompt[strings.Index(gen.lastPrompt, "Relevant Document Excerpts:"):]
	if !strings.HasPrefix(excerpts, "Relevant Document Excerpts:\n"+target) {
		t.Errorf("expected best chunk first in context, got:\n%s", excerpts)
	}
	if !strings.Contains(gen.lastPrompt, "Learning Style Information:") {
		t.Error("expected knowledge base notes in prompt")
	}
}

func TestGetPersonalizedContentAllEmbeddingsFail(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend down")}
	svc, _ := newTestService(t, &fakeEmbedder{failAll: true}, gen)

	items, outcome := svc.GetPersonalizedContent(context.Background(), "Concurrency", domain.StyleReading, document)

	if len(items) == 0 {
		t.Fatal("expected non-empty recommendation list")
	}
	if outcome.Retrieval != domain.RetrievalSliced {
		t.Errorf("expected sliced retrieval, got %s", outcome.Retrieval)
	}
	if outcome.RetrievalError == "" {
		t.Error("expected retrieval error to be recorded")
	}
	if outcome.EmbeddedChunks != 0 {
		t.Errorf("expected 0 embedded chunks, got %d", outcome.EmbeddedChunks)
	}
}

func TestGetPersonalizedContentChunkFailuresStillGenerate(t *testing.T) {
	query := "Concurrency for a visual learner"
	gen := &fakeGenerator{text: recommendationJSON}
	svc, _ := newTestService(t, &embedderFailingChunks{query: query}, gen)

	items, outcome := svc.GetPersonalizedContent(context.Background(), "Concurrency", domain.StyleVisual, document)

	if outcome.Fallback {
		t.Fatalf("expected generated content, got fallback (%s)", outcome.FallbackReason)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 generated items, got %d", len(items))
	}
	if !strings.Contains(gen.lastPrompt, "Goroutines are lightweight threads.") {
		t.Error("expected leading chunk in context when ranking is unavailable")
	}
}

func TestUnknownStyleDegrades(t *testing.T) {
	gen := &fakeGenerator{text: "garbage"}
	svc, _ := newTestService(t, &fakeEmbedder{}, gen)

	items, outcome := svc.GetPersonalizedContent(context.Background(), "Chess", domain.LearningStyle("olfactory"), "")

	if strings.Contains(gen.lastPrompt, "Learning Style Information:") {
		t.Error("expected no knowledge base notes for unknown style")
	}
	if len(items) != 8 || !outcome.Fallback {
		t.Errorf("expected full fallback catalog, got %d items", len(items))
	}
}

func TestGenerateDocumentSummary(t *testing.T) {
	valid := `{"keyPoints":["k"],"visualSummary":[],"textSummary":["t"],"structure":[],"keyData":[]}`

	t.Run("generated", func(t *testing.T) {
		gen := &fakeGenerator{text: valid}
		svc, _ := newTestService(t, &fakeEmbedder{}, gen)

		summary, outcome := svc.GenerateDocumentSummary(context.Background(), document, domain.StyleAuditory)
		if outcome.Fallback {
			t.Fatalf("unexpected fallback: %s", outcome.FallbackReason)
		}
		if len(summary.KeyPoints) != 1 || summary.KeyPoints[0] != "k" {
			t.Errorf("unexpected summary %+v", summary)
		}
		if !strings.Contains(gen.lastPrompt, "auditory learner") {
			t.Error("expected style label in prompt")
		}
	})

	t.Run("fallback", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("timeout")}
		svc, _ := newTestService(t, &fakeEmbedder{}, gen)

		summary, outcome := svc.GenerateDocumentSummary(context.Background(), "", "")
		if !outcome.Fallback || outcome.FallbackReason != "generation" {
			t.Errorf("expected generation fallback, got %+v", outcome)
		}
		if summary == nil || len(summary.KeyPoints) == 0 || len(summary.Structure) == 0 {
			t.Errorf("expected template summary, got %+v", summary)
		}
	})
}

func TestAnalyzeContent(t *testing.T) {
	scores := domain.AssessmentScores{CognitiveScore: 30, EmotionalScore: 20, PhysicalScore: 10}

	t.Run("prompt carries scores", func(t *testing.T) {
		gen := &fakeGenerator{text: `{"summary":"s","keyPoints":["a"],"personalizedExplanation":"p","learningRecommendations":["r"],"difficultyLevel":"advanced"}`}
		svc, _ := newTestService(t, &fakeEmbedder{}, gen)

		analysis, outcome := svc.AnalyzeContent(context.Background(), document, scores)
		if outcome.Fallback {
			t.Fatalf("unexpected fallback: %s", outcome.FallbackReason)
		}
		if analysis.DifficultyLevel != domain.DifficultyAdvanced {
			t.Errorf("expected generated difficulty, got %s", analysis.DifficultyLevel)
		}
		if !strings.Contains(gen.lastPrompt, "- Cognitive Score: 30") {
			t.Error("expected assessment scores in prompt")
		}
	})

	t.Run("fallback derives difficulty", func(t *testing.T) {
		gen := &fakeGenerator{text: `{"summary":"s"}`}
		svc, _ := newTestService(t, &fakeEmbedder{}, gen)

		analysis, outcome := svc.AnalyzeContent(context.Background(), document, scores)
		if !outcome.Fallback || outcome.FallbackReason != "validation" {
			t.Fatalf("expected validation fallback, got %+v", outcome)
		}
		if analysis.DifficultyLevel != domain.DifficultyBeginner {
			t.Errorf("expected beginner, got %s", analysis.DifficultyLevel)
		}
	})
}

func TestNilGeneratorFallsBack(t *testing.T) {
	v, err := validate.New()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}
	svc := NewService(nil, nil, nil, v, nil, Config{}, zerolog.Nop())

	items, outcome := svc.GetPersonalizedContent(context.Background(), "Art", domain.StyleVisual, document)
	if len(items) != 8 || outcome.FallbackReason != "generation" {
		t.Errorf("expected generation fallback, got %d items, %+v", len(items), outcome)
	}
}
